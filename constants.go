package main

type Mode int

const (
	ModeNormal Mode = iota
	ModeEditing
	ModeTitle
	ModeMove
	ModeConnect
	ModeBranch
	ModeContainer
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpSave FileOperation = iota
	FileOpOpen
	FileOpSavePNG
	FileOpAttach
	FileOpLink
)

type ConfirmAction int

const (
	ConfirmQuit ConfirmAction = iota
	ConfirmNewChart
	ConfirmOpen
	ConfirmOverwriteFile
)

// One terminal cell covers cellWidth x cellHeight document units.
const (
	cellWidth  = 10
	cellHeight = 20
)

const connectionHitTolerance = 10.0
