package geometry

// Port names one of the four attachment sides of a shape.
type Port string

const (
	Top    Port = "top"
	Right  Port = "right"
	Bottom Port = "bottom"
	Left   Port = "left"
)

// Ports lists the valid ports in clockwise order.
var Ports = []Port{Top, Right, Bottom, Left}

// Valid reports whether p is one of the four sides.
func (p Port) Valid() bool {
	switch p {
	case Top, Right, Bottom, Left:
		return true
	}
	return false
}

// Horizontal reports whether the port faces left or right.
func (p Port) Horizontal() bool {
	return p == Left || p == Right
}

// Vertical reports whether the port faces up or down.
func (p Port) Vertical() bool {
	return p == Top || p == Bottom
}

// Opposite returns the port on the other side of the shape.
func (p Port) Opposite() Port {
	switch p {
	case Top:
		return Bottom
	case Right:
		return Left
	case Bottom:
		return Top
	case Left:
		return Right
	default:
		return p
	}
}

// Outward returns the unit vector pointing away from the shape through the
// port. Unknown ports return the zero vector.
func (p Port) Outward() (dx, dy float64) {
	switch p {
	case Top:
		return 0, -1
	case Right:
		return 1, 0
	case Bottom:
		return 0, 1
	case Left:
		return -1, 0
	default:
		return 0, 0
	}
}

// Extend returns the point at distance d from anchor, outward through p.
func (p Port) Extend(anchor Point, d float64) Point {
	dx, dy := p.Outward()
	return anchor.Add(dx*d, dy*d)
}

// String implements fmt.Stringer.
func (p Port) String() string {
	return string(p)
}
