// Package geometry resolves shapes and named ports to absolute anchor points.
package geometry

import "math"

// Point is an absolute position in document units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p translated by (dx, dy).
func (p Point) Add(dx, dy float64) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Rect is an axis-aligned rectangle anchored at its top-left corner.
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Center returns the centre point of the rectangle.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Bounds returns r itself, so a bare rectangle can stand in for a shape.
func (r Rect) Bounds() Rect { return r }

// Contains reports whether p lies inside r, edges included.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width &&
		p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Normalize returns the rectangle spanned by two opposite corners given in
// any order.
func Normalize(a, b Point) Rect {
	return Rect{
		X:      math.Min(a.X, b.X),
		Y:      math.Min(a.Y, b.Y),
		Width:  math.Abs(b.X - a.X),
		Height: math.Abs(b.Y - a.Y),
	}
}

// Shape is anything with resolved bounds: nodes and containers.
type Shape interface {
	Bounds() Rect
}

// Anchor returns the midpoint of the edge named by port. Unknown ports
// resolve to the centre of the shape.
func Anchor(shape Shape, port Port) Point {
	r := shape.Bounds()
	switch port {
	case Top:
		return Point{X: r.X + r.Width/2, Y: r.Y}
	case Right:
		return Point{X: r.X + r.Width, Y: r.Y + r.Height/2}
	case Bottom:
		return Point{X: r.X + r.Width/2, Y: r.Y + r.Height}
	case Left:
		return Point{X: r.X, Y: r.Y + r.Height/2}
	default:
		return r.Center()
	}
}

// NearestPort picks the port whose edge is closest to p. Ties go to left,
// then right, top, bottom.
func NearestPort(r Rect, p Point) Port {
	best := Left
	bestDist := math.Abs(p.X - r.X)

	if d := math.Abs(p.X - (r.X + r.Width)); d < bestDist {
		best, bestDist = Right, d
	}
	if d := math.Abs(p.Y - r.Y); d < bestDist {
		best, bestDist = Top, d
	}
	if d := math.Abs(p.Y - (r.Y + r.Height)); d < bestDist {
		best = Bottom
	}
	return best
}

// Collinear reports whether a and b share exactly one coordinate, i.e. the
// segment between them is horizontal or vertical and not degenerate.
func Collinear(a, b Point) bool {
	return (a.X == b.X) != (a.Y == b.Y)
}

// ManhattanDistance returns |dx| + |dy|.
func ManhattanDistance(a, b Point) float64 {
	return math.Abs(b.X-a.X) + math.Abs(b.Y-a.Y)
}
