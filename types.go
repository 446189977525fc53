package main

import (
	"go.uber.org/zap"

	"flowsmith/editor"
	"flowsmith/storage"
)

type model struct {
	width  int
	height int

	cursorX int
	cursorY int
	panX    int
	panY    int

	session *editor.Session
	files   storage.Files
	config  *Config
	log     *zap.Logger

	mode       Mode
	help       bool
	helpScroll int

	editNodeID      string
	editContainerID string
	editText        string
	editCursorPos   int

	filename          string
	currentFile       string
	fileList          []string
	selectedFileIndex int
	fileOp            FileOperation
	confirmAction     ConfirmAction
	pendingRaw        string

	errorMessage   string
	successMessage string
}
