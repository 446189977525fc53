package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"flowsmith/document"
	"flowsmith/editor"
	"flowsmith/geometry"
)

func newTestSession(t *testing.T) *editor.Session {
	t.Helper()
	n := 0
	return editor.New(
		editor.WithLogger(zap.NewNop()),
		editor.WithIDs(func(kind string) string {
			n++
			return fmt.Sprintf("%s-%d", kind, n)
		}),
	)
}

func runeAt(lines []string, col, row int) rune {
	return []rune(lines[row])[col]
}

func TestRenderProcessNode(t *testing.T) {
	s := newTestSession(t)
	_, ok := s.AddNode(document.Process, geometry.Point{})
	require.True(t, ok)

	lines := Render(s, 20, 6, 0, 0, renderOptions{}).Lines()

	assert.Equal(t, "┌──────────┐        ", lines[0])
	assert.Equal(t, "│ Process  │        ", lines[1])
	assert.Equal(t, "│          │        ", lines[2])
	assert.Equal(t, "└──────────┘        ", lines[3])
}

func TestRenderSelectedNodeUsesHashBorder(t *testing.T) {
	s := newTestSession(t)
	n, _ := s.AddNode(document.Process, geometry.Point{})
	s.Select(n.ID)

	lines := Render(s, 20, 6, 0, 0, renderOptions{}).Lines()
	assert.Equal(t, '#', runeAt(lines, 0, 0))
	assert.Equal(t, '#', runeAt(lines, 11, 3))
}

func TestRenderPanShiftsView(t *testing.T) {
	s := newTestSession(t)
	s.AddNode(document.Process, geometry.Point{X: 100, Y: 100})

	lines := Render(s, 20, 6, 10, 5, renderOptions{}).Lines()
	assert.Equal(t, '┌', runeAt(lines, 0, 0))
}

func TestRenderRouteArrowhead(t *testing.T) {
	s := newTestSession(t)
	a, _ := s.AddNode(document.Process, geometry.Point{X: 0, Y: 0})
	b, _ := s.AddNode(document.Process, geometry.Point{X: 0, Y: 200})
	_, ok := s.AddConnection(a.ID, b.ID, geometry.Bottom, geometry.Top, "")
	require.True(t, ok)

	lines := Render(s, 20, 16, 0, 0, renderOptions{}).Lines()
	assert.Equal(t, '│', runeAt(lines, 6, 5))
	assert.Equal(t, '▼', runeAt(lines, 6, 9))
	assert.Equal(t, '┌', runeAt(lines, 0, 10))
}

func TestRenderDecisionLabel(t *testing.T) {
	s := newTestSession(t)
	d, _ := s.AddNode(document.Decision, geometry.Point{X: 0, Y: 0})
	p, _ := s.AddNode(document.Process, geometry.Point{X: 0, Y: 300})
	_, ok := s.AddConnection(d.ID, p.ID, geometry.Bottom, geometry.Top, document.Yes)
	require.True(t, ok)

	routes := s.Routes()
	require.Len(t, routes, 1)
	require.True(t, routes[0].HasLabel)

	lines := Render(s, 30, 20, 0, 0, renderOptions{}).Lines()
	col, row := toCol(routes[0].Label.X), toRow(routes[0].Label.Y)
	assert.Equal(t, "yes", string([]rune(lines[row])[col:col+3]))
}

func TestRenderContainerDraft(t *testing.T) {
	s := newTestSession(t)
	require.True(t, s.BeginContainer(geometry.Point{}))
	require.True(t, s.ExtendContainer(geometry.Point{X: 100, Y: 80}))

	lines := Render(s, 20, 6, 0, 0, renderOptions{}).Lines()
	assert.Equal(t, '+', runeAt(lines, 0, 0))
	assert.Equal(t, '.', runeAt(lines, 1, 0))
	assert.Equal(t, ':', runeAt(lines, 0, 1))
}

func TestCornerChar(t *testing.T) {
	tests := []struct {
		name          string
		from, mid, to cellPoint
		want          rune
	}{
		{"right then down", cellPoint{0, 0}, cellPoint{5, 0}, cellPoint{5, 5}, '┐'},
		{"left then down", cellPoint{5, 0}, cellPoint{0, 0}, cellPoint{0, 5}, '┌'},
		{"right then up", cellPoint{0, 5}, cellPoint{5, 5}, cellPoint{5, 0}, '┘'},
		{"left then up", cellPoint{5, 5}, cellPoint{0, 5}, cellPoint{0, 0}, '└'},
		{"down then right", cellPoint{0, 0}, cellPoint{0, 5}, cellPoint{5, 5}, '└'},
		{"down then left", cellPoint{5, 0}, cellPoint{5, 5}, cellPoint{0, 5}, '┘'},
		{"up then right", cellPoint{0, 5}, cellPoint{0, 0}, cellPoint{5, 0}, '┌'},
		{"up then left", cellPoint{5, 5}, cellPoint{5, 0}, cellPoint{0, 0}, '┐'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cornerChar(tt.from, tt.mid, tt.to))
		})
	}
}

func TestStyledLinesKeepText(t *testing.T) {
	c := NewCanvas(4, 1, 0, 0)
	c.writeString(0, 0, "ab", "#ff0000", true)
	c.writeString(2, 0, "cd", "", false)

	line := c.StyledLines()[0]
	assert.Contains(t, line, "ab")
	assert.Contains(t, line, "cd")
	assert.Equal(t, 'a', c.at(0, 0))
	assert.Equal(t, rune(0), c.at(9, 0))
}
