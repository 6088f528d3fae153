package main

type Mode int

const (
	ModeNormal Mode = iota
	ModePalette
	ModeMove
	ModeEditing
	ModeExport
	ModeFileInput
	ModeConfirm
)

type FileOperation int

const (
	FileOpSaveArtifacts FileOperation = iota
	FileOpSavePNG
)

type ConfirmAction int

const (
	ConfirmQuit ConfirmAction = iota
	ConfirmOverwriteFile
)

type ActionType int

const (
	ActionEdit ActionType = iota
	ActionMove
)

const (
	panelWidth     = 36
	paletteKeys    = "lbh"
	statusReserved = 1
)
