package main

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"flowsmith/document"
	"flowsmith/editor"
	"flowsmith/geometry"
)

const exportPadding = 40.0

// exportBounds is the area covered by nodes, containers and routes.
func exportBounds(doc document.Document, routes []editor.Route) (geometry.Rect, bool) {
	var minX, minY, maxX, maxY float64
	has := false
	grow := func(r geometry.Rect) {
		if !has {
			minX, minY, maxX, maxY = r.X, r.Y, r.X+r.Width, r.Y+r.Height
			has = true
			return
		}
		minX = math.Min(minX, r.X)
		minY = math.Min(minY, r.Y)
		maxX = math.Max(maxX, r.X+r.Width)
		maxY = math.Max(maxY, r.Y+r.Height)
	}

	for _, n := range doc.Nodes {
		grow(n.Bounds())
	}
	for _, c := range doc.Containers {
		grow(c.Bounds())
	}
	for _, r := range routes {
		for _, p := range r.Points {
			grow(geometry.Rect{X: p.X, Y: p.Y})
		}
	}
	if !has {
		return geometry.Rect{}, false
	}
	return geometry.Rect{
		X:      minX - exportPadding,
		Y:      minY - exportPadding,
		Width:  maxX - minX + 2*exportPadding,
		Height: maxY - minY + 2*exportPadding,
	}, true
}

// ExportPNG draws the document at one pixel per document unit.
func ExportPNG(s *editor.Session, filename string) error {
	doc := s.Document()
	routes := s.Routes()
	bounds, ok := exportBounds(doc, routes)
	if !ok {
		return fmt.Errorf("nothing to export")
	}

	dc := gg.NewContext(int(math.Ceil(bounds.Width)), int(math.Ceil(bounds.Height)))
	dc.SetColor(color.White)
	dc.Clear()
	dc.Translate(-bounds.X, -bounds.Y)

	ttfFont, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}
	dc.SetFontFace(truetype.NewFace(ttfFont, &truetype.Options{
		Size:    12,
		DPI:     72,
		Hinting: font.HintingFull,
	}))

	colors := make(map[string]string, len(doc.Segments))
	for _, seg := range doc.Segments {
		colors[seg.ID] = seg.Color
	}

	for _, c := range doc.Containers {
		drawContainerPNG(dc, c)
	}
	for _, r := range routes {
		drawRoutePNG(dc, r)
	}
	for _, n := range doc.Nodes {
		drawNodePNG(dc, n, colors[n.Segment])
	}

	return dc.SavePNG(filename)
}

func setHex(dc *gg.Context, hex, fallback string) {
	if hex == "" {
		hex = fallback
	}
	dc.SetHexColor(hex)
}

func drawContainerPNG(dc *gg.Context, c document.Container) {
	setHex(dc, c.Color, "#f5f5f5")
	dc.DrawRectangle(c.X, c.Y, c.Width, c.Height)
	dc.Fill()

	dc.SetLineWidth(1.5)
	dc.SetDash(6, 4)
	setHex(dc, c.BorderColor, "#9e9e9e")
	dc.DrawRectangle(c.X, c.Y, c.Width, c.Height)
	dc.Stroke()
	dc.SetDash()

	if c.Title != "" {
		dc.DrawStringAnchored(c.Title, c.X+8, c.Y+8, 0, 1)
	}
}

func drawRoutePNG(dc *gg.Context, r editor.Route) {
	if len(r.Points) < 2 {
		return
	}
	dc.SetLineWidth(1.5)
	dc.SetColor(color.Black)
	dc.MoveTo(r.Points[0].X, r.Points[0].Y)
	for _, p := range r.Points[1:] {
		dc.LineTo(p.X, p.Y)
	}
	dc.Stroke()

	n := len(r.Points)
	drawArrowPNG(dc, r.Points[n-2], r.Points[n-1])

	if r.HasLabel {
		dc.DrawStringAnchored(string(r.Decision), r.Label.X, r.Label.Y, 0.5, 0.5)
	}
}

func drawArrowPNG(dc *gg.Context, from, to geometry.Point) {
	dx, dy := to.X-from.X, to.Y-from.Y
	length := math.Hypot(dx, dy)
	if length < 0.1 {
		return
	}
	dx /= length
	dy /= length

	const size, spread = 8.0, 0.5
	dc.MoveTo(to.X, to.Y)
	dc.LineTo(to.X-size*dx+size*dy*spread, to.Y-size*dy-size*dx*spread)
	dc.LineTo(to.X-size*dx-size*dy*spread, to.Y-size*dy+size*dx*spread)
	dc.ClosePath()
	dc.Fill()
}

func nodePath(dc *gg.Context, n document.Node) {
	b := n.Bounds()
	switch n.Type {
	case document.StartEnd:
		dc.DrawRoundedRectangle(b.X, b.Y, b.Width, b.Height, b.Height/2)
	case document.Decision:
		c := b.Center()
		dc.MoveTo(c.X, b.Y)
		dc.LineTo(b.X+b.Width, c.Y)
		dc.LineTo(c.X, b.Y+b.Height)
		dc.LineTo(b.X, c.Y)
		dc.ClosePath()
	case document.InputOutput:
		skew := b.Width * 0.15
		dc.MoveTo(b.X+skew, b.Y)
		dc.LineTo(b.X+b.Width, b.Y)
		dc.LineTo(b.X+b.Width-skew, b.Y+b.Height)
		dc.LineTo(b.X, b.Y+b.Height)
		dc.ClosePath()
	case document.Connector:
		c := b.Center()
		dc.DrawEllipse(c.X, c.Y, b.Width/2, b.Height/2)
	default:
		dc.DrawRectangle(b.X, b.Y, b.Width, b.Height)
	}
}

func drawNodePNG(dc *gg.Context, n document.Node, segmentColor string) {
	nodePath(dc, n)
	dc.SetColor(color.White)
	dc.Fill()

	nodePath(dc, n)
	dc.SetLineWidth(2)
	setHex(dc, segmentColor, "#000000")
	dc.Stroke()

	dc.SetColor(color.Black)
	b := n.Bounds()
	c := b.Center()
	lines := strings.Split(n.Text, "\n")
	lineHeight := dc.FontHeight() * 1.3
	top := c.Y - lineHeight*float64(len(lines)-1)/2
	for i, line := range lines {
		dc.DrawStringAnchored(line, c.X, top+float64(i)*lineHeight, 0.5, 0.5)
	}
}

// exportText writes the chart as it appears on screen, without the cursor.
func (m *model) exportText(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	width := m.width
	if width < 1 {
		width = 80
	}
	height := m.height - 1
	if height < 1 {
		height = 24
	}

	canvas := Render(m.session, width, height, m.panX, m.panY, renderOptions{cursor: m.worldPoint()})
	for _, line := range canvas.Lines() {
		fmt.Fprintln(file, strings.TrimRight(line, " "))
	}
	return nil
}
