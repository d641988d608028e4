// Package importer reads printer geometry from CAD drawings.
package importer

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/presettab/internal/model"
)

// ErrNoOutline is returned when a drawing holds no usable closed shape.
var ErrNoOutline = errors.New("no closed shapes found in DXF file")

const (
	chainTolerance = 0.01
	arcSegments    = 32
	circleSegments = 64
	// Bed coordinates are kept to micrometres.
	coordPrecision = 1000
)

// segment is a line between two points, used for chaining loose LINE and ARC
// entities into closed outlines.
type segment struct {
	start model.Point2D
	end   model.Point2D
}

// BedShapeDXF reads a custom bed outline from a DXF drawing. Closed shapes are
// LWPOLYLINE and CIRCLE entities plus chains of connected LINE and ARC
// entities; the one with the largest area wins. The outline is translated so
// its bounding box starts at the origin and returned as a points value for
// bed_shape. Skipped entities are reported as warnings.
func BedShapeDXF(path string) (model.Value, []string, error) {
	drawing, err := dxf.Open(path)
	if err != nil {
		return model.Value{}, nil, fmt.Errorf("cannot open DXF file: %w", err)
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		return model.Value{}, nil, fmt.Errorf("%w: drawing is empty", ErrNoOutline)
	}

	var (
		warnings []string
		outlines []model.Outline
		segments []segment
	)
	for _, ent := range entities {
		switch e := ent.(type) {
		case *entity.LwPolyline:
			o := lwPolylineToOutline(e)
			if len(o) < 3 {
				warnings = append(warnings, "skipped LWPOLYLINE with fewer than 3 vertices")
				continue
			}
			outlines = append(outlines, o)
		case *entity.Circle:
			outlines = append(outlines, circleToOutline(e, circleSegments))
		case *entity.Arc:
			segments = append(segments, pointsToSegments(arcToPoints(e, arcSegments))...)
		case *entity.Line:
			segments = append(segments, segment{
				start: model.Point2D{X: e.Start[0], Y: e.Start[1]},
				end:   model.Point2D{X: e.End[0], Y: e.End[1]},
			})
		}
	}

	closed, open := chainSegments(segments, chainTolerance)
	outlines = append(outlines, closed...)
	if open > 0 {
		warnings = append(warnings, fmt.Sprintf("ignored %d open chain(s) of LINE/ARC entities", open))
	}

	outlines = slices.DeleteFunc(outlines, func(o model.Outline) bool {
		min, max := o.BoundingBox()
		if max.X-min.X < chainTolerance || max.Y-min.Y < chainTolerance {
			warnings = append(warnings, fmt.Sprintf("skipped degenerate shape (%.2f x %.2f mm)", max.X-min.X, max.Y-min.Y))
			return true
		}
		return false
	})
	if len(outlines) == 0 {
		return model.Value{}, warnings, ErrNoOutline
	}

	slices.SortStableFunc(outlines, func(a, b model.Outline) int {
		return cmp.Compare(b.Area(), a.Area())
	})
	if len(outlines) > 1 {
		warnings = append(warnings, fmt.Sprintf("found %d closed shapes, using the largest", len(outlines)))
	}

	return model.Points(normalizeOutline(outlines[0])...), warnings, nil
}

// lwPolylineToOutline converts a LWPOLYLINE to an outline. Vertices with a
// bulge produce interpolated arc points up to the next vertex.
func lwPolylineToOutline(lw *entity.LwPolyline) model.Outline {
	var outline model.Outline
	for i, v := range lw.Vertices {
		current := model.Point2D{X: v[0], Y: v[1]}
		bulge := 0.0
		if i < len(lw.Bulges) {
			bulge = lw.Bulges[i]
		}
		if math.Abs(bulge) <= 1e-9 {
			outline = append(outline, current)
			continue
		}
		n := lw.Vertices[(i+1)%len(lw.Vertices)]
		pts := bulgeArcPoints(current, model.Point2D{X: n[0], Y: n[1]}, bulge, arcSegments)
		outline = append(outline, pts[:len(pts)-1]...)
	}
	return outline
}

// bulgeArcPoints samples the arc between p1 and p2 described by a DXF bulge,
// the tangent of a quarter of the included angle. Positive bulges run
// counter-clockwise.
func bulgeArcPoints(p1, p2 model.Point2D, bulge float64, n int) model.Outline {
	mx, my := (p1.X+p2.X)/2, (p1.Y+p2.Y)/2
	dx, dy := p2.X-p1.X, p2.Y-p1.Y
	chord := math.Hypot(dx, dy)
	if chord < 1e-9 {
		return model.Outline{p1, p2}
	}

	sagitta := math.Abs(bulge) * chord / 2
	radius := (chord*chord/(4*sagitta) + sagitta) / 2

	perpX, perpY := -dy/chord, dx/chord
	if bulge < 0 {
		perpX, perpY = -perpX, -perpY
	}
	dist := radius - sagitta
	cx, cy := mx+perpX*dist, my+perpY*dist

	start := math.Atan2(p1.Y-cy, p1.X-cx)
	end := math.Atan2(p2.Y-cy, p2.X-cx)
	if bulge < 0 && end > start {
		end -= 2 * math.Pi
	}
	if bulge > 0 && end < start {
		end += 2 * math.Pi
	}

	pts := make(model.Outline, 0, n+1)
	for i := 0; i <= n; i++ {
		a := start + float64(i)/float64(n)*(end-start)
		pts = append(pts, model.Point2D{X: cx + radius*math.Cos(a), Y: cy + radius*math.Sin(a)})
	}
	return pts
}

// circleToOutline approximates a circle as a regular polygon.
func circleToOutline(c *entity.Circle, n int) model.Outline {
	outline := make(model.Outline, n)
	cx, cy, r := c.Center[0], c.Center[1], c.Radius
	for i := range outline {
		a := 2 * math.Pi * float64(i) / float64(n)
		outline[i] = model.Point2D{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)}
	}
	return outline
}

// arcToPoints samples an ARC entity counter-clockwise from its start angle.
func arcToPoints(a *entity.Arc, n int) []model.Point2D {
	cx, cy, r := a.Circle.Center[0], a.Circle.Center[1], a.Circle.Radius
	start := a.Angle[0] * math.Pi / 180
	end := a.Angle[1] * math.Pi / 180
	if end <= start {
		end += 2 * math.Pi
	}
	pts := make([]model.Point2D, n+1)
	for i := range pts {
		t := start + float64(i)/float64(n)*(end-start)
		pts[i] = model.Point2D{X: cx + r*math.Cos(t), Y: cy + r*math.Sin(t)}
	}
	return pts
}

func pointsToSegments(pts []model.Point2D) []segment {
	if len(pts) < 2 {
		return nil
	}
	segs := make([]segment, 0, len(pts)-1)
	for i := 0; i < len(pts)-1; i++ {
		segs = append(segs, segment{start: pts[i], end: pts[i+1]})
	}
	return segs
}

// chainSegments joins segments whose endpoints lie within tolerance. It
// returns the closed outlines and the number of chains that stayed open.
func chainSegments(segs []segment, tolerance float64) (closed []model.Outline, open int) {
	used := make([]bool, len(segs))
	for start := range segs {
		if used[start] {
			continue
		}
		used[start] = true
		chain := []model.Point2D{segs[start].start, segs[start].end}

		for extended := true; extended; {
			extended = false
			tail := chain[len(chain)-1]
		search:
			for i, s := range segs {
				if used[i] {
					continue
				}
				switch {
				case pointsClose(tail, s.start, tolerance):
					chain = append(chain, s.end)
				case pointsClose(tail, s.end, tolerance):
					chain = append(chain, s.start)
				default:
					continue
				}
				used[i] = true
				extended = true
				break search
			}
		}

		if len(chain) >= 4 && pointsClose(chain[0], chain[len(chain)-1], tolerance) {
			closed = append(closed, model.Outline(chain[:len(chain)-1]))
		} else {
			open++
		}
	}
	return closed, open
}

func pointsClose(a, b model.Point2D, tolerance float64) bool {
	return math.Hypot(a.X-b.X, a.Y-b.Y) <= tolerance
}

// normalizeOutline moves the outline's bounding box to the origin and rounds
// the coordinates.
func normalizeOutline(o model.Outline) model.Outline {
	min, _ := o.BoundingBox()
	out := o.Translate(-min.X, -min.Y)
	for i, p := range out {
		out[i] = model.Point2D{X: roundCoord(p.X), Y: roundCoord(p.Y)}
	}
	return out
}

func roundCoord(v float64) float64 {
	r := math.Round(v*coordPrecision) / coordPrecision
	if r == 0 {
		return 0
	}
	return r
}
