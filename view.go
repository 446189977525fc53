package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#d0d0d0")).Background(lipgloss.Color("#303030"))
	modeStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#87afff"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ff5f5f"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#87d787"))
	pickStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#87afff"))
)

var helpLines = []string{
	"flowsmith help",
	"==============",
	"",
	"Navigation:",
	"-----------",
	"  h/←/j/↓/k/↑/l/→  Move cursor",
	"  Shift+arrows     Move cursor 4x faster",
	"  Ctrl+arrows      Pan the view",
	"",
	"Nodes:",
	"------",
	"  1                Add start/end node at cursor",
	"  2                Add process node",
	"  3                Add decision node",
	"  4                Add input/output node",
	"  5                Add connector",
	"  e                Edit text of node (or title of container) under cursor",
	"                   Enter=newline, Ctrl+V=paste, Ctrl+S=save, Esc=cancel",
	"  c                Cycle the node's segment",
	"  f                Attach a local document to the node",
	"  F                Link a local file to the node",
	"",
	"Selection and moving:",
	"---------------------",
	"  Space            Select item under cursor",
	"  v                Add/remove item under cursor from the selection",
	"  m                Move item under cursor (and the rest of the selection)",
	"                   hjkl/arrows=move, Enter=finish, Esc=cancel",
	"  Alt+hjkl/arrows  Nudge the selection one cell",
	"  d                Delete selection, or the node/connection/container under cursor",
	"",
	"Connections:",
	"------------",
	"  a                Start a connection at the nearest side of the node",
	"  a/Enter          Finish on the target node",
	"  y/n              Choose the branch when leaving a decision",
	"",
	"Containers:",
	"-----------",
	"  g                Draw a container from the cursor, Enter=finish, Esc=cancel",
	"",
	"File operations:",
	"----------------",
	"  s                Save chart",
	"  o                Open a saved chart",
	"  S                Export as PNG (or .txt for a text snapshot)",
	"  Y                Copy node text, or the whole chart, to the clipboard",
	"",
	"General:",
	"--------",
	"  T                Edit chart title",
	"  L                Lock/unlock the chart",
	"  u                Undo",
	"  U                Redo",
	"  R                Revert to the last saved state (u/U step on from there)",
	"  n                New chart",
	"  ?                Toggle this help screen",
	"  q/Ctrl+C         Quit",
}

func (m model) View() string {
	if m.help {
		return m.helpView()
	}

	width := m.width
	if width < 1 {
		width = 1
	}
	height := m.height - 1
	if height < 1 {
		height = 1
	}

	var result strings.Builder
	if m.mode == ModeFileInput && m.fileOp == FileOpOpen {
		result.WriteString(m.fileListView(width, height))
	} else {
		canvas := Render(m.session, width, height, m.panX, m.panY, renderOptions{cursor: m.worldPoint()})
		if m.mode != ModeFileInput && m.cursorY < height && m.cursorX < width {
			canvas.cells[m.cursorY][m.cursorX] = cell{r: '█'}
		}
		result.WriteString(strings.Join(canvas.StyledLines(), "\n"))
	}

	result.WriteString("\n")
	result.WriteString(m.statusLine())
	return result.String()
}

func (m model) fileListView(width, height int) string {
	lines := []string{"Select a saved chart:", strings.Repeat("─", width)}
	if len(m.fileList) == 0 {
		lines = append(lines, "(No saved charts found)")
	}

	maxFiles := height - 3
	if maxFiles < 1 {
		maxFiles = 1
	}
	start := 0
	if m.selectedFileIndex >= maxFiles {
		start = m.selectedFileIndex - maxFiles + 1
	}
	end := min(start+maxFiles, len(m.fileList))
	for i := start; i < end; i++ {
		name := strings.TrimSuffix(m.fileList[i], filepath.Ext(m.fileList[i]))
		if i == m.selectedFileIndex {
			lines = append(lines, pickStyle.Render("> "+name))
		} else {
			lines = append(lines, "  "+name)
		}
	}
	lines = append(lines, strings.Repeat("─", width))
	for len(lines) < height {
		lines = append(lines, "")
	}
	return strings.Join(lines[:height], "\n")
}

// withCursor renders text on one line with a block cursor at pos.
func withCursor(text string, pos int) string {
	runes := []rune(strings.ReplaceAll(text, "\n", "↵"))
	if pos >= len(runes) {
		return string(runes) + "█"
	}
	runes[pos] = '█'
	return string(runes)
}

func (m model) statusLine() string {
	var status string
	switch m.mode {
	case ModeEditing:
		status = fmt.Sprintf("Text: %s | ←/→=cursor, Enter=newline, Ctrl+S=save, Esc=cancel", withCursor(m.editText, m.editCursorPos))
	case ModeTitle:
		status = fmt.Sprintf("Title: %s | Enter=save, Esc=cancel", withCursor(m.editText, m.editCursorPos))
	case ModeMove:
		status = "hjkl/arrows=move, Enter=finish, Esc=cancel"
	case ModeConnect:
		status = "Move to the target node, a/Enter=connect, Esc=cancel"
	case ModeBranch:
		status = "Branch: y=yes, n=no, Esc=cancel"
	case ModeContainer:
		status = "hjkl/arrows=resize, Enter=finish, Esc=cancel"
	case ModeFileInput:
		var op string
		switch m.fileOp {
		case FileOpSave:
			op = "Save"
		case FileOpOpen:
			op = "Open"
		case FileOpSavePNG:
			op = "Export"
		case FileOpAttach:
			op = "Attach file"
		case FileOpLink:
			op = "Link file"
		}
		status = fmt.Sprintf("%s: %s█ | Enter=confirm, Esc=cancel", op, m.filename)
	case ModeConfirm:
		switch m.confirmAction {
		case ConfirmQuit:
			status = "Quit with unsaved changes? (y/n)"
		case ConfirmNewChart:
			status = "Create new chart? Unsaved changes will be lost. (y/n)"
		case ConfirmOpen:
			status = fmt.Sprintf("Open %s? Unsaved changes will be lost. (y/n)", m.filename)
		case ConfirmOverwriteFile:
			status = fmt.Sprintf("File %s already exists. Overwrite? (y/n)", m.filename)
		}
	default:
		status = m.normalStatus()
	}

	line := modeStyle.Render(" "+m.modeString()+" ") + statusStyle.Render(" "+status+" ")
	if m.errorMessage != "" {
		line += " " + errorStyle.Render("ERROR: "+m.errorMessage)
	} else if m.successMessage != "" {
		line += " " + successStyle.Render(m.successMessage)
	}
	return line
}

func (m model) normalStatus() string {
	title := m.session.Title()
	if title == "" {
		title = "untitled"
	}
	parts := []string{title}
	if m.currentFile != "" {
		parts[0] += " (" + filepath.Base(m.currentFile) + ")"
	}
	if m.session.IsDirty() {
		parts[0] += " *"
	}
	if m.session.IsLocked() {
		parts = append(parts, "LOCKED")
	}
	if sel := m.session.Selection(); !sel.Empty() {
		parts = append(parts, fmt.Sprintf("%d selected", len(sel.Nodes)+len(sel.Containers)))
	}
	parts = append(parts, fmt.Sprintf("history %d/%d @ %s",
		m.session.HistoryCursor()+1, m.session.HistoryLen(), m.session.HistoryTime().Format("15:04:05")))
	if m.errorMessage == "" && m.successMessage == "" {
		parts = append(parts, "? for help")
	}
	return strings.Join(parts, " | ")
}

func (m model) modeString() string {
	switch m.mode {
	case ModeNormal:
		return "NORMAL"
	case ModeEditing:
		return "EDIT"
	case ModeTitle:
		return "TITLE"
	case ModeMove:
		return "MOVE"
	case ModeConnect:
		return "CONNECT"
	case ModeBranch:
		return "BRANCH"
	case ModeContainer:
		return "CONTAINER"
	case ModeFileInput:
		return "FILE"
	case ModeConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

func (m model) helpView() string {
	visible := m.height - 1
	if visible < 1 {
		visible = 1
	}
	start := min(m.helpScroll, max(len(helpLines)-visible, 0))
	end := min(start+visible, len(helpLines))

	result := strings.Join(helpLines[start:end], "\n")
	result += "\n" + statusStyle.Render(fmt.Sprintf("Help (%d-%d of %d lines) | j/k to scroll, Esc to close", start+1, end, len(helpLines)))
	return result
}
