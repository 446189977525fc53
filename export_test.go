package main

import (
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flowsmith/document"
	"flowsmith/geometry"
)

func TestExportPNGEmptyChart(t *testing.T) {
	s := newTestSession(t)
	err := ExportPNG(s, filepath.Join(t.TempDir(), "empty.png"))
	assert.EqualError(t, err, "nothing to export")
}

func TestExportPNGCoversChart(t *testing.T) {
	s := newTestSession(t)
	d, _ := s.AddNode(document.Decision, geometry.Point{X: 0, Y: 0})
	p, _ := s.AddNode(document.Process, geometry.Point{X: 200, Y: 300})
	_, ok := s.AddConnection(d.ID, p.ID, geometry.Right, geometry.Top, document.No)
	require.True(t, ok)
	_, ok = s.AddContainer(document.Container{X: -20, Y: -20, Width: 400, Height: 450, Title: "Flow"})
	require.True(t, ok)

	path := filepath.Join(t.TempDir(), "chart.png")
	require.NoError(t, ExportPNG(s, path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)

	assert.Equal(t, 400+2*int(exportPadding), cfg.Width)
	assert.Equal(t, 450+2*int(exportPadding), cfg.Height)
}

func TestExportBoundsIncludesRoutes(t *testing.T) {
	s := newTestSession(t)
	a, _ := s.AddNode(document.Process, geometry.Point{X: 0, Y: 0})
	b, _ := s.AddNode(document.Process, geometry.Point{X: 0, Y: 200})
	_, ok := s.AddConnection(a.ID, b.ID, geometry.Left, geometry.Left, "")
	require.True(t, ok)

	bounds, ok := exportBounds(s.Document(), s.Routes())
	require.True(t, ok)
	assert.Less(t, bounds.X, -exportPadding)
}

func TestExportText(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "2")

	path := filepath.Join(t.TempDir(), "chart.txt")
	require.NoError(t, m.exportText(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "│ Process  │")
	assert.NotContains(t, string(data), "█")
}
