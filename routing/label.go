package routing

import (
	"math"

	"flowsmith/geometry"
)

const (
	labelDistance = 20.0
	labelRatio    = 0.3

	// LabelOffset is the perpendicular distance between a branch label and
	// its connection's first segment.
	LabelOffset = 12.0
)

// Label places a decision branch label along the first segment of a route.
// Yes and no labels sit on opposite sides of the line so two branches
// leaving through the same port never overlap.
func Label(points []geometry.Point, yes bool) (geometry.Point, bool) {
	if len(points) < 2 {
		return geometry.Point{}, false
	}

	start := points[0]
	next := start
	for _, p := range points[1:] {
		if p != start {
			next = p
			break
		}
	}
	if next == start {
		return geometry.Point{}, false
	}

	dx, dy := next.X-start.X, next.Y-start.Y
	length := math.Hypot(dx, dy)
	ux, uy := dx/length, dy/length

	along := math.Min(labelDistance, labelRatio*length)
	side := LabelOffset
	if !yes {
		side = -side
	}

	return geometry.Point{
		X: start.X + ux*along - uy*side,
		Y: start.Y + uy*along + ux*side,
	}, true
}
