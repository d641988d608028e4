package importer

import (
	"errors"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/presettab/internal/model"
)

func saveDrawing(t *testing.T, build func(d *drawing.Drawing) error) string {
	t.Helper()
	d := dxf.NewDrawing()
	if err := build(d); err != nil {
		t.Fatalf("failed to build drawing: %v", err)
	}
	path := filepath.Join(t.TempDir(), "bed.dxf")
	if err := d.SaveAs(path); err != nil {
		t.Fatalf("failed to save drawing: %v", err)
	}
	return path
}

func rectLines(d *drawing.Drawing, x, y, w, h float64) error {
	corners := [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	for i, c := range corners {
		n := corners[(i+1)%len(corners)]
		if _, err := d.Line(c[0], c[1], 0, n[0], n[1], 0); err != nil {
			return err
		}
	}
	return nil
}

func TestBedShapeDXF_Polyline(t *testing.T) {
	path := saveDrawing(t, func(d *drawing.Drawing) error {
		_, err := d.LwPolyline(true, []float64{10, 20}, []float64{260, 20}, []float64{260, 230}, []float64{10, 230})
		return err
	})

	v, warnings, err := BedShapeDXF(path)
	if err != nil {
		t.Fatalf("BedShapeDXF returned error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if v.Kind != model.KindPoints {
		t.Fatalf("expected points value, got %s", v.Kind)
	}
	if got, want := v.String(), "0x0,250x0,250x210,0x210"; got != want {
		t.Errorf("expected bed %s, got %s", want, got)
	}
}

func TestBedShapeDXF_ChainedLinesPickLargest(t *testing.T) {
	path := saveDrawing(t, func(d *drawing.Drawing) error {
		if err := rectLines(d, -50, -50, 300, 200); err != nil {
			return err
		}
		_, err := d.Circle(100, 50, 0, 20)
		return err
	})

	v, warnings, err := BedShapeDXF(path)
	if err != nil {
		t.Fatalf("BedShapeDXF returned error: %v", err)
	}
	if len(v.Points) != 4 {
		t.Fatalf("expected the rectangle to win, got %d points", len(v.Points))
	}
	min, max := model.Outline(v.Points).BoundingBox()
	if min != (model.Point2D{}) || max != (model.Point2D{X: 300, Y: 200}) {
		t.Errorf("unexpected bounds %v - %v", min, max)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "using the largest") {
		t.Errorf("expected a single largest-shape warning, got %v", warnings)
	}
}

func TestBedShapeDXF_Circle(t *testing.T) {
	path := saveDrawing(t, func(d *drawing.Drawing) error {
		_, err := d.Circle(0, 0, 0, 100)
		return err
	})

	v, _, err := BedShapeDXF(path)
	if err != nil {
		t.Fatalf("BedShapeDXF returned error: %v", err)
	}
	if len(v.Points) != circleSegments {
		t.Fatalf("expected %d points, got %d", circleSegments, len(v.Points))
	}
	if v.Points[0] != (model.Point2D{X: 200, Y: 100}) {
		t.Errorf("expected first point 200x100, got %v", v.Points[0])
	}
	area := model.Outline(v.Points).Area()
	if math.Abs(area-math.Pi*100*100) > 0.01*math.Pi*100*100 {
		t.Errorf("circle area %.0f too far from %.0f", area, math.Pi*100*100)
	}
}

func TestBedShapeDXF_ArcAndLines(t *testing.T) {
	// A 200 wide slot with a rounded top.
	path := saveDrawing(t, func(d *drawing.Drawing) error {
		if _, err := d.Line(0, 0, 0, 200, 0, 0); err != nil {
			return err
		}
		if _, err := d.Line(200, 0, 0, 200, 100, 0); err != nil {
			return err
		}
		if _, err := d.Arc(100, 100, 0, 100, 0, 180); err != nil {
			return err
		}
		_, err := d.Line(0, 100, 0, 0, 0, 0)
		return err
	})

	v, warnings, err := BedShapeDXF(path)
	if err != nil {
		t.Fatalf("BedShapeDXF returned error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	_, max := model.Outline(v.Points).BoundingBox()
	if math.Abs(max.X-200) > 0.001 || math.Abs(max.Y-200) > 0.001 {
		t.Errorf("expected 200x200 bounds, got %v", max)
	}
}

func TestBedShapeDXF_NoClosedShape(t *testing.T) {
	path := saveDrawing(t, func(d *drawing.Drawing) error {
		_, err := d.Line(0, 0, 0, 100, 0, 0)
		return err
	})

	_, warnings, err := BedShapeDXF(path)
	if !errors.Is(err, ErrNoOutline) {
		t.Fatalf("expected ErrNoOutline, got %v", err)
	}
	if len(warnings) != 1 {
		t.Errorf("expected an open chain warning, got %v", warnings)
	}
}

func TestBedShapeDXF_MissingFile(t *testing.T) {
	if _, _, err := BedShapeDXF(filepath.Join(t.TempDir(), "nope.dxf")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestChainSegments(t *testing.T) {
	segs := []segment{
		{start: model.Point2D{X: 0, Y: 0}, end: model.Point2D{X: 10, Y: 0}},
		{start: model.Point2D{X: 10, Y: 10}, end: model.Point2D{X: 10, Y: 0}},
		{start: model.Point2D{X: 10, Y: 10}, end: model.Point2D{X: 0, Y: 0.005}},
		{start: model.Point2D{X: 50, Y: 50}, end: model.Point2D{X: 60, Y: 50}},
	}

	closed, open := chainSegments(segs, chainTolerance)
	if len(closed) != 1 {
		t.Fatalf("expected 1 closed outline, got %d", len(closed))
	}
	if len(closed[0]) != 3 {
		t.Errorf("expected a triangle, got %d points", len(closed[0]))
	}
	if open != 1 {
		t.Errorf("expected 1 open chain, got %d", open)
	}
}

func TestBulgeArcPoints(t *testing.T) {
	tests := []struct {
		name  string
		bulge float64
		mid   model.Point2D
	}{
		{name: "counter-clockwise", bulge: math.Tan(math.Pi / 8), mid: model.Point2D{X: math.Sqrt2 / 2, Y: math.Sqrt2 / 2}},
		{name: "clockwise", bulge: -math.Tan(3 * math.Pi / 8), mid: model.Point2D{X: -math.Sqrt2 / 2, Y: -math.Sqrt2 / 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pts := bulgeArcPoints(model.Point2D{X: 1, Y: 0}, model.Point2D{X: 0, Y: 1}, tt.bulge, 32)
			if len(pts) != 33 {
				t.Fatalf("expected 33 points, got %d", len(pts))
			}
			for _, p := range pts {
				if r := math.Hypot(p.X, p.Y); math.Abs(r-1) > 1e-9 {
					t.Fatalf("point %v off the unit circle (r=%f)", p, r)
				}
			}
			mid := pts[16]
			if !pointsClose(mid, tt.mid, 1e-9) {
				t.Errorf("expected arc midpoint %v, got %v", tt.mid, mid)
			}
		})
	}
}
