package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Point2D represents a 2D coordinate in mm.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// String formats the point as "XxY", the notation used by bed_shape and
// extruder_offset.
func (p Point2D) String() string {
	return strconv.FormatFloat(p.X, 'g', -1, 64) + "x" + strconv.FormatFloat(p.Y, 'g', -1, 64)
}

// ParsePoint reads a point written as "XxY".
func ParsePoint(s string) (Point2D, error) {
	s = strings.TrimSpace(s)
	xs, ys, ok := strings.Cut(s, "x")
	if !ok {
		return Point2D{}, fmt.Errorf("invalid point %q: expected XxY", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return Point2D{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return Point2D{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return Point2D{X: x, Y: y}, nil
}

// Outline represents a closed polygon as a sequence of 2D points.
// The outline is implicitly closed: the last point connects back to the first.
type Outline []Point2D

// BoundingBox returns the min and max corners of the outline.
func (o Outline) BoundingBox() (min, max Point2D) {
	if len(o) == 0 {
		return Point2D{}, Point2D{}
	}
	min, max = o[0], o[0]
	for _, p := range o[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
	}
	return min, max
}

// Translate shifts all points by dx, dy.
func (o Outline) Translate(dx, dy float64) Outline {
	result := make(Outline, len(o))
	for i, p := range o {
		result[i] = Point2D{X: p.X + dx, Y: p.Y + dy}
	}
	return result
}

// Area returns the absolute polygon area (shoelace formula).
func (o Outline) Area() float64 {
	n := len(o)
	if n < 3 {
		return 0
	}
	var area float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		area += o[i].X*o[j].Y - o[j].X*o[i].Y
	}
	if area < 0 {
		area = -area
	}
	return area / 2
}

// RectBed returns the rectangular bed outline of the given size with its
// origin at (0, 0).
func RectBed(w, h float64) Outline {
	return Outline{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}
