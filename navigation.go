package main

import "flowsmith/geometry"

func (m *model) handleCursorMove(key string) {
	speed := m.getMoveSpeed(key)
	switch key {
	case "h", "left", "shift+left":
		m.cursorX -= speed
	case "l", "right", "shift+right":
		m.cursorX += speed
	case "k", "up", "shift+up":
		m.cursorY -= speed
	case "j", "down", "shift+down":
		m.cursorY += speed
	}
	m.ensureCursorInBounds()
}

// handlePan shifts the view so the cursor keeps its screen position.
func (m *model) handlePan(key string) {
	switch key {
	case "ctrl+left":
		m.panX -= 4
	case "ctrl+right":
		m.panX += 4
	case "ctrl+up":
		m.panY -= 2
	case "ctrl+down":
		m.panY += 2
	}
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "shift+left", "shift+right", "shift+up", "shift+down":
		return 4
	default:
		return 1
	}
}

// moveDelta returns the document-unit step for a movement key in move mode.
func moveDelta(key string, speed int) (dx, dy float64, ok bool) {
	switch key {
	case "h", "left", "shift+left":
		return -float64(cellWidth * speed), 0, true
	case "l", "right", "shift+right":
		return float64(cellWidth * speed), 0, true
	case "k", "up", "shift+up":
		return 0, -float64(cellHeight * speed), true
	case "j", "down", "shift+down":
		return 0, float64(cellHeight * speed), true
	}
	return 0, 0, false
}

func (m *model) ensureCursorInBounds() {
	maxX := m.width - 1
	maxY := m.height - 2
	if maxX < 0 {
		maxX = 0
	}
	if maxY < 0 {
		maxY = 0
	}
	if m.cursorX < 0 {
		m.cursorX = 0
	} else if m.cursorX > maxX {
		m.cursorX = maxX
	}
	if m.cursorY < 0 {
		m.cursorY = 0
	} else if m.cursorY > maxY {
		m.cursorY = maxY
	}
}

// worldPoint is the document position at the centre of the cursor cell.
func (m *model) worldPoint() geometry.Point {
	return geometry.Point{
		X: float64((m.cursorX+m.panX)*cellWidth) + cellWidth/2,
		Y: float64((m.cursorY+m.panY)*cellHeight) + cellHeight/2,
	}
}

// worldCorner is the document position at the top-left of the cursor cell.
func (m *model) worldCorner() geometry.Point {
	return geometry.Point{
		X: float64((m.cursorX + m.panX) * cellWidth),
		Y: float64((m.cursorY + m.panY) * cellHeight),
	}
}
