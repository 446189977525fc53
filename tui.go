package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"flowsmith/document"
	"flowsmith/editor"
)

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ensureCursorInBounds()
		return m, nil

	case tea.KeyMsg:
		if m.help {
			m.handleHelpKey(msg.String())
			return m, nil
		}

		var cmd tea.Cmd
		switch m.mode {
		case ModeNormal:
			cmd = m.handleNormalKey(msg)
		case ModeEditing:
			m.handleEditKey(msg)
		case ModeTitle:
			m.handleTitleKey(msg)
		case ModeMove:
			m.handleMoveKey(msg.String())
		case ModeConnect:
			m.handleConnectKey(msg.String())
		case ModeBranch:
			m.handleBranchKey(msg.String())
		case ModeContainer:
			m.handleContainerKey(msg.String())
		case ModeFileInput:
			m.handleFileKey(msg)
		case ModeConfirm:
			cmd = m.handleConfirmKey(msg.String())
		}
		return m, cmd
	}
	return m, nil
}

func isMoveKey(key string) bool {
	_, _, ok := moveDelta(key, 1)
	return ok
}

func (m *model) clearMessages() {
	m.errorMessage = ""
	m.successMessage = ""
}

// refuse reports why an edit did nothing.
func (m *model) refuse(what string) {
	if m.session.IsLocked() {
		m.errorMessage = "Chart is locked (L to unlock)"
		return
	}
	m.errorMessage = what
}

func (m *model) nodeUnderCursor() (string, bool) {
	return m.session.NodeAt(m.worldPoint())
}

func (m *model) handleNormalKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	m.clearMessages()

	if isMoveKey(key) {
		m.handleCursorMove(key)
		return nil
	}
	if dir, ok := strings.CutPrefix(key, "alt+"); ok && isMoveKey(dir) {
		m.nudgeSelection(dir)
		return nil
	}

	switch key {
	case "ctrl+left", "ctrl+right", "ctrl+up", "ctrl+down":
		m.handlePan(key)

	case "1", "2", "3", "4", "5":
		t := document.NodeTypes[int(key[0]-'1')]
		if _, ok := m.session.AddNode(t, m.worldCorner()); !ok {
			m.refuse("Cannot add node here")
		}

	case " ":
		p := m.worldPoint()
		if id, ok := m.session.NodeAt(p); ok {
			m.session.Select(id)
		} else if id, ok := m.session.ContainerAt(p); ok {
			m.session.SelectContainer(id)
		} else {
			m.session.ClearSelection()
		}

	case "v":
		p := m.worldPoint()
		if id, ok := m.session.NodeAt(p); ok {
			m.session.ToggleSelect(id)
		} else if id, ok := m.session.ContainerAt(p); ok {
			m.session.ToggleSelectContainer(id)
		}

	case "esc":
		m.session.ClearSelection()
		m.session.CancelConnection()

	case "m":
		p := m.worldPoint()
		var target editor.DragTarget
		if id, ok := m.session.NodeAt(p); ok {
			target.NodeID = id
		} else if id, ok := m.session.ContainerAt(p); ok {
			target.ContainerID = id
		} else {
			m.errorMessage = "Nothing to move under cursor"
			return nil
		}
		if !m.session.BeginDrag(target) {
			m.refuse("Cannot move this item")
			return nil
		}
		m.mode = ModeMove

	case "a":
		id, ok := m.nodeUnderCursor()
		if !ok {
			m.errorMessage = "Place the cursor on a node to start a connection"
			return nil
		}
		port, _ := m.session.PortAt(id, m.worldPoint())
		if !m.session.StartConnection(id, port) {
			m.refuse("Cannot connect from here")
			return nil
		}
		m.mode = ModeConnect

	case "g":
		if !m.session.BeginContainer(m.worldCorner()) {
			m.refuse("Cannot draw a container")
			return nil
		}
		m.session.ExtendContainer(m.worldCorner().Add(cellWidth, cellHeight))
		m.mode = ModeContainer

	case "e":
		p := m.worldPoint()
		if id, ok := m.session.NodeAt(p); ok {
			n, _ := m.session.Node(id)
			m.startEdit(id, "", n.Text)
		} else if id, ok := m.session.ContainerAt(p); ok {
			c, _ := m.session.Container(id)
			m.startEdit("", id, c.Title)
		} else {
			m.errorMessage = "Nothing to edit under cursor"
		}

	case "T":
		m.editText = m.session.Title()
		m.editCursorPos = len([]rune(m.editText))
		m.mode = ModeTitle

	case "c":
		id, ok := m.nodeUnderCursor()
		if !ok {
			m.errorMessage = "No node under cursor"
			return nil
		}
		if !m.session.CycleSegment(id) {
			m.refuse("Only one segment defined")
		}

	case "d":
		m.deleteUnderCursor()

	case "L":
		m.session.ToggleLock()
		if m.session.IsLocked() {
			m.successMessage = "Chart locked"
		} else {
			m.successMessage = "Chart unlocked"
		}

	case "u":
		if !m.session.Undo() {
			m.refuse("Nothing to undo")
		}

	case "U":
		if !m.session.Redo() {
			m.refuse("Nothing to redo")
		}

	case "R":
		if !m.session.RevertToSaved() {
			m.refuse("Nothing to revert")
			return nil
		}
		m.successMessage = "Reverted to last saved state"

	case "s":
		m.startFileInput(FileOpSave)
		if m.currentFile != "" {
			m.filename = strings.TrimSuffix(filepath.Base(m.currentFile), filepath.Ext(m.currentFile))
		}

	case "o":
		m.startFileInput(FileOpOpen)
		m.scanFiles()

	case "S":
		m.startFileInput(FileOpSavePNG)

	case "f", "F":
		id, ok := m.nodeUnderCursor()
		if !ok {
			m.errorMessage = "No node under cursor"
			return nil
		}
		if key == "f" {
			m.startFileInput(FileOpAttach)
		} else {
			m.startFileInput(FileOpLink)
		}
		m.editNodeID = id

	case "Y":
		m.yank()

	case "n":
		if m.needsConfirm() {
			m.confirm(ConfirmNewChart)
			return nil
		}
		m.newChart()

	case "?":
		m.help = true
		m.helpScroll = 0

	case "q", "ctrl+c":
		if m.needsConfirm() {
			m.confirm(ConfirmQuit)
			return nil
		}
		return tea.Quit
	}
	return nil
}

func (m *model) needsConfirm() bool {
	return m.config.Confirmations && m.session.IsDirty()
}

func (m *model) confirm(action ConfirmAction) {
	m.confirmAction = action
	m.mode = ModeConfirm
}

func (m *model) deleteUnderCursor() {
	if !m.session.Selection().Empty() {
		if !m.session.DeleteSelection() {
			m.refuse("Nothing deleted")
		}
		return
	}

	p := m.worldPoint()
	var ok bool
	if id, found := m.session.NodeAt(p); found {
		ok = m.session.DeleteNode(id)
	} else if id, found := m.session.ConnectionAt(p, connectionHitTolerance); found {
		ok = m.session.DeleteConnection(id)
	} else if id, found := m.session.ContainerAt(p); found {
		ok = m.session.DeleteContainer(id)
	} else {
		m.errorMessage = "Nothing to delete under cursor"
		return
	}
	if !ok {
		m.refuse("Nothing deleted")
	}
}

func (m *model) yank() {
	text := ""
	if id, ok := m.nodeUnderCursor(); ok {
		n, _ := m.session.Node(id)
		text = n.Text
	} else {
		raw, err := m.session.Serialize()
		if err != nil {
			m.errorMessage = fmt.Sprintf("Error serializing chart: %s", err)
			return
		}
		text = raw
	}
	if err := copyText(text); err != nil {
		m.log.Warn("clipboard write failed", zap.Error(err))
		m.errorMessage = fmt.Sprintf("Clipboard unavailable: %s", err)
		return
	}
	m.successMessage = "Copied to clipboard"
}

func (m *model) newChart() {
	m.session.New()
	m.currentFile = ""
	m.cursorX, m.cursorY = 0, 0
	m.panX, m.panY = 0, 0
}

func (m *model) handleHelpKey(key string) {
	switch key {
	case "j", "down":
		maxScroll := len(helpLines) - (m.height - 1)
		if m.helpScroll < maxScroll {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	default:
		m.help = false
		m.helpScroll = 0
	}
}

func (m *model) startEdit(nodeID, containerID, text string) {
	m.editNodeID = nodeID
	m.editContainerID = containerID
	m.editText = text
	m.editCursorPos = len([]rune(text))
	m.mode = ModeEditing
}

func (m *model) endEdit() {
	m.editNodeID = ""
	m.editContainerID = ""
	m.editText = ""
	m.editCursorPos = 0
	m.mode = ModeNormal
}

// editLine applies a text-editing key to editText. It returns false for keys
// it does not handle.
func (m *model) editLine(msg tea.KeyMsg, multiline bool) bool {
	runes := []rune(m.editText)
	if m.editCursorPos > len(runes) {
		m.editCursorPos = len(runes)
	}
	insert := func(s string) {
		ins := []rune(s)
		out := make([]rune, 0, len(runes)+len(ins))
		out = append(out, runes[:m.editCursorPos]...)
		out = append(out, ins...)
		out = append(out, runes[m.editCursorPos:]...)
		m.editText = string(out)
		m.editCursorPos += len(ins)
	}

	switch {
	case msg.Type == tea.KeyLeft:
		if m.editCursorPos > 0 {
			m.editCursorPos--
		}
	case msg.Type == tea.KeyRight:
		if m.editCursorPos < len(runes) {
			m.editCursorPos++
		}
	case msg.Type == tea.KeyHome:
		m.editCursorPos = 0
	case msg.Type == tea.KeyEnd:
		m.editCursorPos = len(runes)
	case msg.Type == tea.KeyBackspace:
		if m.editCursorPos > 0 {
			m.editText = string(append(runes[:m.editCursorPos-1:m.editCursorPos-1], runes[m.editCursorPos:]...))
			m.editCursorPos--
		}
	case msg.Type == tea.KeyDelete:
		if m.editCursorPos < len(runes) {
			m.editText = string(append(runes[:m.editCursorPos:m.editCursorPos], runes[m.editCursorPos+1:]...))
		}
	case msg.Type == tea.KeyEnter && multiline:
		insert("\n")
	case msg.Type == tea.KeyCtrlV:
		text, err := pasteText()
		if err != nil {
			m.errorMessage = fmt.Sprintf("Clipboard unavailable: %s", err)
			return true
		}
		if !multiline {
			text = strings.ReplaceAll(text, "\n", " ")
		}
		insert(text)
	case msg.Type == tea.KeySpace:
		insert(" ")
	case msg.Type == tea.KeyRunes:
		insert(string(msg.Runes))
	default:
		return false
	}
	return true
}

func (m *model) handleEditKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEsc:
		m.endEdit()
		return
	case tea.KeyCtrlS:
		text := m.editText
		var ok bool
		if m.editNodeID != "" {
			ok = m.session.SetText(m.editNodeID, text)
		} else {
			ok = m.session.UpdateContainer(m.editContainerID, document.ContainerPatch{Title: &text})
		}
		if !ok {
			m.refuse("Text unchanged")
		}
		m.endEdit()
		return
	}
	m.editLine(msg, true)
}

func (m *model) handleTitleKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEsc:
		m.endEdit()
	case tea.KeyEnter:
		if !m.session.SetTitle(m.editText) {
			m.errorMessage = "Title unchanged"
		}
		m.endEdit()
	default:
		m.editLine(msg, false)
	}
}

// nudgeSelection moves the selection one cell without entering move mode.
func (m *model) nudgeSelection(key string) {
	if m.session.Selection().Empty() {
		m.errorMessage = "Nothing selected"
		return
	}
	dx, dy, _ := moveDelta(key, 1)
	if !m.session.MoveSelection(dx, dy) {
		m.refuse("Cannot move the selection")
	}
}

func (m *model) handleMoveKey(key string) {
	if !m.session.Dragging() {
		m.mode = ModeNormal
		return
	}
	switch key {
	case "enter":
		m.session.EndDrag()
		m.mode = ModeNormal
	case "esc":
		m.session.CancelDrag()
		m.mode = ModeNormal
	default:
		dx, dy, ok := moveDelta(key, m.getMoveSpeed(key))
		if !ok {
			return
		}
		m.session.DragBy(dx, dy)
		m.handleCursorMove(key)
	}
}

func (m *model) handleConnectKey(key string) {
	if isMoveKey(key) {
		m.handleCursorMove(key)
		return
	}
	switch key {
	case "esc":
		m.session.CancelConnection()
		m.mode = ModeNormal
	case "a", "enter":
		id, ok := m.nodeUnderCursor()
		if !ok {
			m.errorMessage = "Place the cursor on the target node"
			return
		}
		port, _ := m.session.PortAt(id, m.worldPoint())
		_, outcome := m.session.CompleteConnection(id, port)
		switch outcome {
		case document.Created:
			m.successMessage = "Connected"
			m.mode = ModeNormal
		case document.Pending:
			m.mode = ModeBranch
		default:
			m.errorMessage = "Connection rejected"
			m.mode = ModeNormal
		}
	}
}

func (m *model) handleBranchKey(key string) {
	var branch document.DecisionType
	switch key {
	case "y":
		branch = document.Yes
	case "n":
		branch = document.No
	case "esc":
		m.session.CancelConnection()
		m.mode = ModeNormal
		return
	default:
		return
	}
	if _, ok := m.session.ChooseBranch(branch); !ok {
		m.refuse("Connection rejected")
	}
	m.mode = ModeNormal
}

func (m *model) handleContainerKey(key string) {
	if isMoveKey(key) {
		m.handleCursorMove(key)
		m.session.ExtendContainer(m.worldCorner().Add(cellWidth, cellHeight))
		return
	}
	switch key {
	case "enter":
		if _, ok := m.session.FinishContainer(); !ok {
			m.refuse("Container too small")
		}
		m.mode = ModeNormal
	case "esc":
		m.session.CancelContainer()
		m.mode = ModeNormal
	}
}

func (m *model) startFileInput(op FileOperation) {
	m.fileOp = op
	m.filename = ""
	m.fileList = nil
	m.selectedFileIndex = -1
	m.mode = ModeFileInput
}

func (m *model) scanFiles() {
	files, err := m.files.List()
	if err != nil {
		m.errorMessage = err.Error()
		return
	}
	m.fileList = files
	if len(files) > 0 {
		m.selectedFileIndex = 0
		m.filename = strings.TrimSuffix(files[0], filepath.Ext(files[0]))
	}
}

func (m *model) selectFile(delta int) {
	if len(m.fileList) == 0 {
		return
	}
	m.selectedFileIndex = (m.selectedFileIndex + delta + len(m.fileList)) % len(m.fileList)
	name := m.fileList[m.selectedFileIndex]
	m.filename = strings.TrimSuffix(name, filepath.Ext(name))
}

func (m *model) handleFileKey(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeNormal
		m.filename = ""
		m.errorMessage = ""
		return
	case tea.KeyUp:
		if m.fileOp == FileOpOpen {
			m.selectFile(-1)
		}
		return
	case tea.KeyDown:
		if m.fileOp == FileOpOpen {
			m.selectFile(1)
		}
		return
	case tea.KeyEnter:
		m.submitFile()
		return
	case tea.KeyBackspace:
		if r := []rune(m.filename); len(r) > 0 {
			m.filename = string(r[:len(r)-1])
			m.selectedFileIndex = -1
		}
		return
	case tea.KeyRunes:
		m.filename += string(msg.Runes)
		m.selectedFileIndex = -1
	case tea.KeySpace:
		m.filename += " "
		m.selectedFileIndex = -1
	}
}

func (m *model) submitFile() {
	name := strings.TrimSpace(m.filename)
	if name == "" {
		m.errorMessage = "Please enter a filename"
		return
	}

	switch m.fileOp {
	case FileOpSave:
		path := m.files.Path(name)
		if _, err := os.Stat(path); err == nil && path != m.currentFile {
			m.filename = name
			m.confirm(ConfirmOverwriteFile)
			return
		}
		if !m.saveFile(name) {
			return
		}

	case FileOpOpen:
		raw, err := m.files.Open(name)
		if err != nil {
			m.errorMessage = fmt.Sprintf("Error opening file: %s", err)
			return
		}
		if m.needsConfirm() {
			m.filename = name
			m.pendingRaw = raw
			m.confirm(ConfirmOpen)
			return
		}
		if !m.loadRaw(name, raw) {
			return
		}

	case FileOpSavePNG:
		if !m.exportFile(name) {
			return
		}

	case FileOpAttach, FileOpLink:
		d, err := m.files.Pick(name)
		if err != nil {
			m.errorMessage = err.Error()
			return
		}
		var ok bool
		if m.fileOp == FileOpAttach {
			ok = m.session.AttachDocument(m.editNodeID, d)
		} else {
			ok = m.session.LinkFile(m.editNodeID, d.Path)
		}
		if !ok {
			m.refuse("File already attached")
			m.mode = ModeNormal
			return
		}
		if m.fileOp == FileOpAttach {
			m.successMessage = fmt.Sprintf("Attached %s", d.Name)
		} else {
			m.successMessage = fmt.Sprintf("Linked %s", d.Name)
		}
		m.editNodeID = ""
	}

	m.mode = ModeNormal
	m.filename = ""
}

func (m *model) exportFile(name string) bool {
	path := m.config.GetSavePath(name)
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt":
		err = m.exportText(path)
	case ".png":
		err = ExportPNG(m.session, path)
	default:
		path += ".png"
		err = ExportPNG(m.session, path)
	}
	if err != nil {
		m.errorMessage = fmt.Sprintf("Error exporting: %s", err)
		return false
	}
	abs, _ := filepath.Abs(path)
	m.successMessage = fmt.Sprintf("Exported to %s", abs)
	m.log.Info("chart exported", zap.String("path", abs))
	return true
}

func (m *model) saveFile(name string) bool {
	text, err := m.session.Serialize()
	if err != nil {
		m.errorMessage = fmt.Sprintf("Error saving file: %s", err)
		return false
	}
	path, err := m.files.Save(name, text)
	if err != nil {
		m.errorMessage = fmt.Sprintf("Error saving file: %s", err)
		return false
	}
	m.session.MarkSaved()
	m.currentFile = path
	m.errorMessage = ""
	m.successMessage = fmt.Sprintf("Saved to %s", path)
	m.log.Info("chart saved", zap.String("path", path))
	return true
}

// openFile loads a saved chart, replacing the current one without asking.
func (m *model) openFile(name string) bool {
	raw, err := m.files.Open(name)
	if err != nil {
		m.errorMessage = fmt.Sprintf("Error opening file: %s", err)
		return false
	}
	return m.loadRaw(name, raw)
}

func (m *model) loadRaw(name, raw string) bool {
	if err := m.session.Load(raw); err != nil {
		if errors.Is(err, document.ErrMalformed) {
			m.errorMessage = fmt.Sprintf("%s is not a valid chart", name)
		} else {
			m.errorMessage = fmt.Sprintf("Error opening file: %s", err)
		}
		return false
	}
	m.currentFile = m.files.Path(name)
	m.cursorX, m.cursorY = 0, 0
	m.panX, m.panY = 0, 0
	m.errorMessage = ""
	m.successMessage = fmt.Sprintf("Opened %s", m.currentFile)
	return true
}

func (m *model) handleConfirmKey(key string) tea.Cmd {
	switch key {
	case "y", "Y":
		action := m.confirmAction
		m.mode = ModeNormal
		switch action {
		case ConfirmQuit:
			return tea.Quit
		case ConfirmNewChart:
			m.newChart()
		case ConfirmOpen:
			m.loadRaw(m.filename, m.pendingRaw)
			m.pendingRaw = ""
		case ConfirmOverwriteFile:
			if !m.saveFile(m.filename) {
				m.mode = ModeFileInput
				return nil
			}
		}
		m.filename = ""
	case "n", "N", "esc":
		if m.confirmAction == ConfirmOverwriteFile {
			m.mode = ModeFileInput
			m.fileOp = FileOpSave
			return nil
		}
		m.pendingRaw = ""
		m.filename = ""
		m.mode = ModeNormal
	}
	return nil
}
