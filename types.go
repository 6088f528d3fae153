package main

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	"go.uber.org/zap"
)

type model struct {
	width          int
	height         int
	cursorX        int
	cursorY        int
	panX           int
	panY           int
	zPanMode       bool
	mode           Mode
	help           bool
	helpScroll     int
	registry       *Registry
	bridge         *Bridge
	theme          Theme
	exporter       Exporter
	undoStack      []Action
	redoStack      []Action
	moving         *Element
	originalMove   Position
	grabX          int
	grabY          int
	editProps      []string
	editInputs     []textinput.Model
	editFocus      int
	exportView     viewport.Model
	artifacts      Artifacts
	filename       string
	fileOp         FileOperation
	confirmAction  ConfirmAction
	errorMessage   string
	successMessage string
	config         *Config
	logger         *zap.Logger
}

// Action records one stored change as the element before and after it.
type Action struct {
	Type    ActionType
	Data    Element
	Inverse Element
}
