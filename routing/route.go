// Package routing computes orthogonal polylines between shape ports.
package routing

import (
	"math"

	"flowsmith/geometry"
)

const (
	// ExtensionOffset is how far a path leaves a shape before turning.
	ExtensionOffset = 40.0
	// DecisionRise is how far a "yes" branch climbs above a decision's top port.
	DecisionRise = 40.0
	// ApproachOffset is the length of the final segment into the target edge.
	ApproachOffset = 2.0
	// DefaultHalfExtent is the assumed half size of a shape when only its
	// anchor is known.
	DefaultHalfExtent = 60.0
)

// Route returns the waypoints of an orthogonal path from one anchor to
// another. The first point is from, the last point is to, and the last
// segment enters the destination edge along its inward normal. Coincident
// anchors have no route and return nil.
//
// Without the shapes themselves, each anchor is taken to sit on a shape
// reaching DefaultHalfExtent to either side of it.
func Route(from geometry.Point, fromPort geometry.Port, to geometry.Point, toPort geometry.Port, yesFromTop bool) []geometry.Point {
	return route(from, fromPort, to, toPort, yesFromTop,
		spanAround(from, fromPort), spanAround(to, fromPort))
}

// Between routes from a port of one shape to a port of another. Knowing the
// shapes lets a path that has to turn back pass clear of both.
func Between(from geometry.Shape, fromPort geometry.Port, to geometry.Shape, toPort geometry.Port, yesFromTop bool) []geometry.Point {
	return route(
		geometry.Anchor(from, fromPort), fromPort,
		geometry.Anchor(to, toPort), toPort,
		yesFromTop,
		spanOf(from.Bounds(), fromPort), spanOf(to.Bounds(), fromPort),
	)
}

func route(from geometry.Point, fromPort geometry.Port, to geometry.Point, toPort geometry.Port, yesFromTop bool, fromSpan, toSpan span) []geometry.Point {
	if from == to {
		return nil
	}

	var waypoints []geometry.Point
	switch {
	case yesFromTop:
		waypoints = riseAndDrop(from, to)
	case fromPort.Valid() && toPort.Valid() && fromPort.Opposite() == toPort:
		waypoints = extendCrossExtend(from, fromPort, to, toPort, fromSpan, toSpan)
	case fromPort.Valid() && toPort.Valid() && fromPort.Horizontal() != toPort.Horizontal():
		waypoints = []geometry.Point{corner(from, fromPort, to)}
	case fromPort.Valid() && fromPort == toPort:
		waypoints = sharedOffset(from, fromPort, to)
	default:
		waypoints = []geometry.Point{corner(from, fromPort, to)}
	}

	return finish(from, waypoints, to, toPort)
}

// span is the extent of a shape across the axis a port faces along: its
// vertical extent for left and right ports, its horizontal one otherwise.
type span struct{ lo, hi float64 }

func spanOf(r geometry.Rect, port geometry.Port) span {
	if port.Vertical() {
		return span{r.X, r.X + r.Width}
	}
	return span{r.Y, r.Y + r.Height}
}

func spanAround(p geometry.Point, port geometry.Port) span {
	c := p.Y
	if port.Vertical() {
		c = p.X
	}
	return span{c - DefaultHalfExtent, c + DefaultHalfExtent}
}

// crossing picks the line a backward path runs along: the middle of the
// gap between the two shapes, or past both when they overlap.
func crossing(a, b span) float64 {
	switch {
	case a.hi <= b.lo:
		return (a.hi + b.lo) / 2
	case b.hi <= a.lo:
		return (b.hi + a.lo) / 2
	}
	return math.Max(a.hi, b.hi) + ExtensionOffset
}

// riseAndDrop is the fixed shape for a decision's "yes" branch leaving from
// the top: up, across to the target column, then down.
func riseAndDrop(from, to geometry.Point) []geometry.Point {
	y := from.Y - DecisionRise
	return []geometry.Point{
		{X: from.X, Y: y},
		{X: to.X, Y: y},
	}
}

// corner returns the single bend of an L: horizontal first when the source
// port faces sideways, vertical first otherwise.
func corner(from geometry.Point, fromPort geometry.Port, to geometry.Point) geometry.Point {
	if fromPort.Vertical() {
		return geometry.Point{X: from.X, Y: to.Y}
	}
	return geometry.Point{X: to.X, Y: from.Y}
}

// extendCrossExtend handles facing ports on the same axis. Both ends step
// out of their shapes first so the path never cuts through either one. When
// the target lies behind the source the path turns back between or around
// the two shapes.
func extendCrossExtend(from geometry.Point, fromPort geometry.Port, to geometry.Point, toPort geometry.Port, fromSpan, toSpan span) []geometry.Point {
	e1 := fromPort.Extend(from, ExtensionOffset)
	e2 := toPort.Extend(to, ExtensionOffset)

	points := []geometry.Point{e1}
	dx, dy := fromPort.Outward()

	if fromPort.Horizontal() {
		switch {
		case (e2.X-e1.X)*dx < 0:
			y := crossing(fromSpan, toSpan)
			points = append(points, geometry.Point{X: e1.X, Y: y}, geometry.Point{X: e2.X, Y: y})
		case e1.Y != e2.Y:
			mid := (e1.X + e2.X) / 2
			points = append(points, geometry.Point{X: mid, Y: e1.Y}, geometry.Point{X: mid, Y: e2.Y})
		}
	} else {
		switch {
		case (e2.Y-e1.Y)*dy < 0:
			x := crossing(fromSpan, toSpan)
			points = append(points, geometry.Point{X: x, Y: e1.Y}, geometry.Point{X: x, Y: e2.Y})
		case e1.X != e2.X:
			mid := (e1.Y + e2.Y) / 2
			points = append(points, geometry.Point{X: e1.X, Y: mid}, geometry.Point{X: e2.X, Y: mid})
		}
	}

	return append(points, e2)
}

// sharedOffset routes both ends through one line beyond the outermost of
// the two anchors, so the path wraps around rather than between the shapes.
func sharedOffset(from geometry.Point, port geometry.Port, to geometry.Point) []geometry.Point {
	switch port {
	case geometry.Top:
		y := math.Min(from.Y, to.Y) - ExtensionOffset
		return []geometry.Point{{X: from.X, Y: y}, {X: to.X, Y: y}}
	case geometry.Bottom:
		y := math.Max(from.Y, to.Y) + ExtensionOffset
		return []geometry.Point{{X: from.X, Y: y}, {X: to.X, Y: y}}
	case geometry.Left:
		x := math.Min(from.X, to.X) - ExtensionOffset
		return []geometry.Point{{X: x, Y: from.Y}, {X: x, Y: to.Y}}
	default:
		x := math.Max(from.X, to.X) + ExtensionOffset
		return []geometry.Point{{X: x, Y: from.Y}, {X: x, Y: to.Y}}
	}
}

// finish closes the path into the destination: an orthogonal corner when
// the last waypoint is off-axis, the short approach point, then the anchor.
func finish(from geometry.Point, waypoints []geometry.Point, to geometry.Point, toPort geometry.Port) []geometry.Point {
	points := make([]geometry.Point, 0, len(waypoints)+4)
	points = append(points, from)
	points = append(points, waypoints...)

	approach := to
	if toPort.Valid() {
		approach = toPort.Extend(to, ApproachOffset)
	}

	last := points[len(points)-1]
	if last.X != approach.X && last.Y != approach.Y {
		if toPort.Horizontal() {
			points = append(points, geometry.Point{X: last.X, Y: approach.Y})
		} else {
			points = append(points, geometry.Point{X: approach.X, Y: last.Y})
		}
	}

	if toPort.Valid() {
		points = append(points, approach)
	}
	points = append(points, to)

	return dedupe(points)
}

func dedupe(points []geometry.Point) []geometry.Point {
	out := points[:1]
	for _, p := range points[1:] {
		if p != out[len(out)-1] {
			out = append(out, p)
		}
	}
	return out
}
