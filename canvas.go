package main

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"flowsmith/document"
	"flowsmith/editor"
	"flowsmith/geometry"
	"flowsmith/routing"
)

type cell struct {
	r     rune
	color string
	bold  bool
}

// Canvas is a screen-sized grid of cells the document is drawn into.
type Canvas struct {
	width  int
	height int
	panX   int
	panY   int
	cells  [][]cell
}

func NewCanvas(width, height, panX, panY int) *Canvas {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c := &Canvas{width: width, height: height, panX: panX, panY: panY}
	c.cells = make([][]cell, height)
	for y := range c.cells {
		row := make([]cell, width)
		for x := range row {
			row[x] = cell{r: ' '}
		}
		c.cells[y] = row
	}
	return c
}

func toCol(x float64) int { return int(math.Floor(x / cellWidth)) }
func toRow(y float64) int { return int(math.Floor(y / cellHeight)) }

// set writes at world cell (col, row); cells outside the view are dropped.
func (c *Canvas) set(col, row int, r rune, color string, bold bool) {
	x, y := col-c.panX, row-c.panY
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return
	}
	c.cells[y][x] = cell{r: r, color: color, bold: bold}
}

func (c *Canvas) at(x, y int) rune {
	if x < 0 || y < 0 || x >= c.width || y >= c.height {
		return 0
	}
	return c.cells[y][x].r
}

func (c *Canvas) writeString(col, row int, s, color string, bold bool) {
	for i, r := range []rune(s) {
		c.set(col+i, row, r, color, bold)
	}
}

// Lines returns the grid as plain text.
func (c *Canvas) Lines() []string {
	lines := make([]string, c.height)
	for y, row := range c.cells {
		runes := make([]rune, len(row))
		for x, cl := range row {
			runes[x] = cl.r
		}
		lines[y] = string(runes)
	}
	return lines
}

// StyledLines returns the grid with segment colours applied.
func (c *Canvas) StyledLines() []string {
	lines := make([]string, c.height)
	for y, row := range c.cells {
		var b strings.Builder
		start := 0
		for x := 1; x <= len(row); x++ {
			if x < len(row) && row[x].color == row[start].color && row[x].bold == row[start].bold {
				continue
			}
			run := make([]rune, 0, x-start)
			for _, cl := range row[start:x] {
				run = append(run, cl.r)
			}
			b.WriteString(styleRun(string(run), row[start].color, row[start].bold))
			start = x
		}
		lines[y] = b.String()
	}
	return lines
}

func styleRun(s, color string, bold bool) string {
	if color == "" && !bold {
		return s
	}
	style := lipgloss.NewStyle().Bold(bold)
	if color != "" {
		style = style.Foreground(lipgloss.Color(color))
	}
	return style.Render(s)
}

type shapeGlyphs struct {
	tl, tr, bl, br rune
	h              rune
	vl, vr         rune
}

var nodeGlyphs = map[document.NodeType]shapeGlyphs{
	document.StartEnd:    {'╭', '╮', '╰', '╯', '─', '(', ')'},
	document.Process:     {'┌', '┐', '└', '┘', '─', '│', '│'},
	document.Decision:    {'/', '\\', '\\', '/', '─', '<', '>'},
	document.InputOutput: {'╱', '╱', '╱', '╱', '─', '╱', '╱'},
	document.Connector:   {'╭', '╮', '╰', '╯', '─', '│', '│'},
}

var selectedGlyphs = shapeGlyphs{'#', '#', '#', '#', '#', '#', '#'}

// cellBounds returns the inclusive cell rectangle covered by r.
func cellBounds(r geometry.Rect) (left, top, right, bottom int) {
	left, top = toCol(r.X), toRow(r.Y)
	right = int(math.Ceil((r.X+r.Width)/cellWidth)) - 1
	bottom = int(math.Ceil((r.Y+r.Height)/cellHeight)) - 1
	if right <= left {
		right = left + 1
	}
	if bottom <= top {
		bottom = top + 1
	}
	return left, top, right, bottom
}

func (c *Canvas) drawFrame(r geometry.Rect, g shapeGlyphs, color string, bold bool) (left, top, right, bottom int) {
	left, top, right, bottom = cellBounds(r)
	for x := left + 1; x < right; x++ {
		c.set(x, top, g.h, color, bold)
		c.set(x, bottom, g.h, color, bold)
	}
	for y := top + 1; y < bottom; y++ {
		c.set(left, y, g.vl, color, bold)
		c.set(right, y, g.vr, color, bold)
		for x := left + 1; x < right; x++ {
			c.set(x, y, ' ', "", false)
		}
	}
	c.set(left, top, g.tl, color, bold)
	c.set(right, top, g.tr, color, bold)
	c.set(left, bottom, g.bl, color, bold)
	c.set(right, bottom, g.br, color, bold)
	return left, top, right, bottom
}

func (c *Canvas) DrawContainer(ct document.Container, selected bool) {
	g := shapeGlyphs{'+', '+', '+', '+', '┄', '┆', '┆'}
	if selected {
		g = selectedGlyphs
	}
	left, top, right, _ := cellBounds(ct.Bounds())
	c.drawOutline(ct.Bounds(), g, ct.BorderColor, selected)
	title := ct.Title
	if room := right - left - 3; room > 0 {
		if len([]rune(title)) > room {
			title = string([]rune(title)[:room])
		}
		c.writeString(left+2, top, title, ct.BorderColor, true)
	}
}

// drawOutline draws only the border, leaving whatever is inside visible.
func (c *Canvas) drawOutline(r geometry.Rect, g shapeGlyphs, color string, bold bool) {
	left, top, right, bottom := cellBounds(r)
	for x := left + 1; x < right; x++ {
		c.set(x, top, g.h, color, bold)
		c.set(x, bottom, g.h, color, bold)
	}
	for y := top + 1; y < bottom; y++ {
		c.set(left, y, g.vl, color, bold)
		c.set(right, y, g.vr, color, bold)
	}
	c.set(left, top, g.tl, color, bold)
	c.set(right, top, g.tr, color, bold)
	c.set(left, bottom, g.bl, color, bold)
	c.set(right, bottom, g.br, color, bold)
}

func (c *Canvas) DrawNode(n document.Node, color string, selected bool) {
	g, ok := nodeGlyphs[n.Type]
	if !ok {
		g = nodeGlyphs[document.Process]
	}
	if selected {
		g = selectedGlyphs
	}
	left, top, right, bottom := c.drawFrame(n.Bounds(), g, color, selected)

	inner := right - left - 1
	rows := bottom - top - 1
	if inner <= 0 || rows <= 0 {
		return
	}
	lines := strings.Split(n.Text, "\n")
	if len(lines) > rows {
		lines = lines[:rows]
	}
	first := top + 1 + (rows-len(lines))/2
	for i, line := range lines {
		runes := []rune(line)
		if len(runes) > inner {
			runes = runes[:inner]
		}
		x := left + 1 + (inner-len(runes))/2
		c.writeString(x, first+i, string(runes), "", false)
	}
	if len(n.Documents) > 0 || n.LinkedFile != "" {
		c.set(right-1, top+1, '*', color, true)
	}
}

type cellPoint struct{ col, row int }

func cellPath(points []geometry.Point) []cellPoint {
	path := make([]cellPoint, 0, len(points))
	for _, p := range points {
		cp := cellPoint{toCol(p.X), toRow(p.Y)}
		if len(path) > 0 && path[len(path)-1] == cp {
			continue
		}
		path = append(path, cp)
	}
	return path
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func lineChar(from, to cellPoint) rune {
	if from.col == to.col {
		return '│'
	}
	return '─'
}

func cornerChar(from, mid, to cellPoint) rune {
	in := cellPoint{sign(mid.col - from.col), sign(mid.row - from.row)}
	out := cellPoint{sign(to.col - mid.col), sign(to.row - mid.row)}

	if in.row == 0 && out.row > 0 {
		if in.col > 0 {
			return '┐'
		}
		return '┌'
	}
	if in.row == 0 && out.row < 0 {
		if in.col > 0 {
			return '┘'
		}
		return '└'
	}
	if in.col == 0 && out.col != 0 {
		if in.row > 0 {
			if out.col > 0 {
				return '└'
			}
			return '┘'
		}
		if out.col > 0 {
			return '┌'
		}
		return '┐'
	}
	return lineChar(from, to)
}

func arrowChar(from, to geometry.Point) rune {
	switch {
	case to.Y > from.Y:
		return '▼'
	case to.Y < from.Y:
		return '▲'
	case to.X > from.X:
		return '►'
	case to.X < from.X:
		return '◄'
	}
	return '●'
}

// DrawPolyline draws an orthogonal route with an arrowhead in front of the
// last point.
func (c *Canvas) DrawPolyline(points []geometry.Point, color string, arrow bool) {
	path := cellPath(points)
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		ch := lineChar(a, b)
		dc, dr := sign(b.col-a.col), sign(b.row-a.row)
		for p := a; p != b; p = (cellPoint{p.col + dc, p.row + dr}) {
			c.set(p.col, p.row, ch, color, false)
		}
		c.set(b.col, b.row, ch, color, false)
	}
	for i := 1; i+1 < len(path); i++ {
		c.set(path[i].col, path[i].row, cornerChar(path[i-1], path[i], path[i+1]), color, false)
	}

	if !arrow || len(points) < 2 {
		return
	}
	last, prev := points[len(points)-1], points[len(points)-2]
	dx, dy := last.X-prev.X, last.Y-prev.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	tip := geometry.Point{X: last.X - dx/length, Y: last.Y - dy/length}
	c.set(toCol(tip.X), toRow(tip.Y), arrowChar(prev, last), color, true)
}

func (c *Canvas) DrawRoute(r editor.Route) {
	c.DrawPolyline(r.Points, "", true)
	if r.HasLabel {
		c.writeString(toCol(r.Label.X), toRow(r.Label.Y), string(r.Decision), "", true)
	}
}

// renderOptions carries the transient editor state drawn over the document.
type renderOptions struct {
	cursor geometry.Point
}

// Render draws the session's document into a width x height grid.
func Render(s *editor.Session, width, height, panX, panY int, opts renderOptions) *Canvas {
	c := NewCanvas(width, height, panX, panY)
	doc := s.Document()

	colors := make(map[string]string, len(doc.Segments))
	for _, seg := range doc.Segments {
		colors[seg.ID] = seg.Color
	}

	for _, ct := range doc.Containers {
		c.DrawContainer(ct, s.IsSelected(ct.ID))
	}
	for _, r := range s.Routes() {
		c.DrawRoute(r)
	}
	for _, n := range doc.Nodes {
		c.DrawNode(n, colors[n.Segment], s.IsSelected(n.ID))
	}

	if draft, ok := s.Connecting(); ok {
		if from, ok := s.Node(draft.From); ok {
			anchor := geometry.Anchor(from, draft.FromPort)
			preview := routing.Route(anchor, draft.FromPort, opts.cursor, draft.FromPort.Opposite(), false)
			c.DrawPolyline(preview, "#5f87ff", false)
		}
	}
	if rect, ok := s.DrawingContainer(); ok {
		c.drawOutline(rect, shapeGlyphs{'+', '+', '+', '+', '.', ':', ':'}, "#5f87ff", true)
	}
	return c
}
