package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowsmith/document"
	"flowsmith/geometry"
)

func TestRoutes_RightToLeftScenario(t *testing.T) {
	s := newSession(t)
	a := mustNode(t, s, document.Process, 0, 0)
	b := mustNode(t, s, document.Process, 300, 0)
	_, ok := s.AddConnection(a.ID, b.ID, geometry.Right, geometry.Left, "")
	require.True(t, ok)

	routes := s.Routes()
	require.Len(t, routes, 1)
	points := routes[0].Points
	assert.Equal(t, pt{X: 120, Y: 40}, points[0])
	assert.Equal(t, pt{X: 300, Y: 40}, points[len(points)-1])
	for i := 0; i+1 < len(points); i++ {
		assert.True(t, geometry.Collinear(points[i], points[i+1]))
	}
	assert.False(t, routes[0].HasLabel)
}

func TestRoutes_BackwardConnectionGoesAroundNodes(t *testing.T) {
	s := newSession(t)
	a := mustNode(t, s, document.Process, 0, 0)
	b := mustNode(t, s, document.Process, -300, 0)
	_, ok := s.AddConnection(a.ID, b.ID, geometry.Right, geometry.Left, "")
	require.True(t, ok)

	routes := s.Routes()
	require.Len(t, routes, 1)
	points := routes[0].Points
	assert.Equal(t, pt{X: -300, Y: 40}, points[len(points)-1])
	for i := 0; i+1 < len(points); i++ {
		p, q := points[i], points[i+1]
		for _, n := range []document.Node{a, b} {
			r := n.Bounds()
			through := min(p.X, q.X) < r.X+r.Width && max(p.X, q.X) > r.X &&
				min(p.Y, q.Y) < r.Y+r.Height && max(p.Y, q.Y) > r.Y
			assert.Falsef(t, through, "segment %v -> %v runs through node %s", p, q, n.ID)
		}
	}
}

func TestRoutes_RightToRightBulges(t *testing.T) {
	s := newSession(t)
	a := mustNode(t, s, document.Process, 0, 0)
	b := mustNode(t, s, document.Process, 0, 200)
	_, ok := s.AddConnection(a.ID, b.ID, geometry.Right, geometry.Right, "")
	require.True(t, ok)

	routes := s.Routes()
	require.Len(t, routes, 1)
	maxX := 0.0
	for _, p := range routes[0].Points {
		maxX = max(maxX, p.X)
	}
	assert.Equal(t, 160.0, maxX)
}

func TestRoutes_SkipDanglingAndDegenerate(t *testing.T) {
	s := newSession(t)
	raw := `{
		"nodes": [
			{"id":"a","type":"process","position":{"x":0,"y":0}},
			{"id":"b","type":"process","position":{"x":120,"y":0}},
			{"id":"c","type":"process","position":{"x":0,"y":300}}
		],
		"connections": [
			{"id":"dangling","from":"a","to":"gone","fromPort":"right","toPort":"left"},
			{"id":"touching","from":"a","to":"b","fromPort":"right","toPort":"left"},
			{"id":"ok","from":"a","to":"c","fromPort":"bottom","toPort":"top"}
		]
	}`
	require.NoError(t, s.Load(raw))

	routes := s.Routes()
	require.Len(t, routes, 1)
	assert.Equal(t, "ok", routes[0].ConnectionID)
}

func TestHitTesting(t *testing.T) {
	s := newSession(t)
	a := mustNode(t, s, document.Process, 0, 0)
	b := mustNode(t, s, document.Process, 300, 0)
	over := mustNode(t, s, document.Connector, 10, 10)
	box, ok := s.AddContainer(document.Container{X: -50, Y: -50, Width: 600, Height: 300})
	require.True(t, ok)
	conn, ok := s.AddConnection(a.ID, b.ID, geometry.Right, geometry.Left, "")
	require.True(t, ok)

	id, ok := s.NodeAt(pt{X: 20, Y: 20})
	require.True(t, ok)
	assert.Equal(t, over.ID, id, "later nodes are on top")

	id, ok = s.NodeAt(pt{X: 100, Y: 70})
	require.True(t, ok)
	assert.Equal(t, a.ID, id)

	_, ok = s.NodeAt(pt{X: 200, Y: 200})
	assert.False(t, ok)

	id, ok = s.ContainerAt(pt{X: 200, Y: 200})
	require.True(t, ok)
	assert.Equal(t, box.ID, id)

	id, ok = s.ConnectionAt(pt{X: 200, Y: 42}, 5)
	require.True(t, ok)
	assert.Equal(t, conn.ID, id)

	_, ok = s.ConnectionAt(pt{X: 200, Y: 60}, 5)
	assert.False(t, ok)

	port, ok := s.PortAt(b.ID, pt{X: 302, Y: 40})
	require.True(t, ok)
	assert.Equal(t, geometry.Left, port)
}
