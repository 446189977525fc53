package editor

import (
	"math"

	"flowsmith/document"
	"flowsmith/geometry"
	"flowsmith/routing"
)

// Route is a connection resolved for drawing.
type Route struct {
	ConnectionID string
	From         string
	To           string
	Points       []geometry.Point
	Decision     document.DecisionType
	Label        geometry.Point
	HasLabel     bool
}

// Routes resolves every drawable connection. Connections whose endpoints are
// missing, or whose anchors coincide, are left out.
func (s *Session) Routes() []Route {
	doc := s.model.Document()
	nodes := make(map[string]document.Node, len(doc.Nodes))
	for _, n := range doc.Nodes {
		nodes[n.ID] = n
	}

	routes := make([]Route, 0, len(doc.Connections))
	for _, c := range doc.Connections {
		from, ok := nodes[c.From]
		if !ok {
			continue
		}
		to, ok := nodes[c.To]
		if !ok {
			continue
		}

		yesFromTop := from.Type == document.Decision && c.DecisionType == document.Yes && c.FromPort == geometry.Top
		points := routing.Between(from, c.FromPort, to, c.ToPort, yesFromTop)
		if points == nil {
			continue
		}

		r := Route{
			ConnectionID: c.ID,
			From:         c.From,
			To:           c.To,
			Points:       points,
			Decision:     c.DecisionType,
		}
		if c.DecisionType.Valid() {
			r.Label, r.HasLabel = routing.Label(points, c.DecisionType == document.Yes)
		}
		routes = append(routes, r)
	}
	return routes
}

// NodeAt returns the topmost node containing p.
func (s *Session) NodeAt(p geometry.Point) (string, bool) {
	nodes := s.model.Nodes()
	for i := len(nodes) - 1; i >= 0; i-- {
		if nodes[i].Bounds().Contains(p) {
			return nodes[i].ID, true
		}
	}
	return "", false
}

// ContainerAt returns the topmost container containing p.
func (s *Session) ContainerAt(p geometry.Point) (string, bool) {
	containers := s.model.Containers()
	for i := len(containers) - 1; i >= 0; i-- {
		if containers[i].Bounds().Contains(p) {
			return containers[i].ID, true
		}
	}
	return "", false
}

// PortAt picks the port of node id nearest to p.
func (s *Session) PortAt(id string, p geometry.Point) (geometry.Port, bool) {
	n, ok := s.model.Node(id)
	if !ok {
		return "", false
	}
	return geometry.NearestPort(n.Bounds(), p), true
}

// ConnectionAt returns the connection whose route passes within tolerance of
// p, measured in Manhattan distance.
func (s *Session) ConnectionAt(p geometry.Point, tolerance float64) (string, bool) {
	best := math.Inf(1)
	bestID := ""
	for _, r := range s.Routes() {
		for i := 0; i+1 < len(r.Points); i++ {
			q := closestOnSegment(r.Points[i], r.Points[i+1], p)
			if d := geometry.ManhattanDistance(p, q); d < best {
				best = d
				bestID = r.ConnectionID
			}
		}
	}
	if bestID == "" || best > tolerance {
		return "", false
	}
	return bestID, true
}

// closestOnSegment clamps p onto an axis-aligned segment.
func closestOnSegment(a, b, p geometry.Point) geometry.Point {
	return geometry.Point{
		X: clamp(p.X, math.Min(a.X, b.X), math.Max(a.X, b.X)),
		Y: clamp(p.Y, math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
