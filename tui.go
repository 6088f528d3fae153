package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"
	"go.uber.org/zap"
)

func newModel(cfg *Config, logger *zap.Logger) model {
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := NewRegistry()
	return model{
		registry:   reg,
		bridge:     NewBridge(reg),
		theme:      cfg.ElementTheme(),
		exporter:   cfg.Exporter(),
		exportView: viewport.New(80, 20),
		config:     cfg,
		logger:     logger,
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.exportView.Width = msg.Width
		m.exportView.Height = max(msg.Height-statusReserved, 1)
		if m.mode == ModeExport {
			m.refreshExportView()
		}
		m.ensureCursorInBounds()
		return m, nil

	case tea.MouseMsg:
		cmd := m.handleMouse(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.help {
			m.updateHelp(msg)
			return m, nil
		}

		switch m.mode {
		case ModeNormal:
			cmd := m.updateNormal(msg)
			return m, cmd
		case ModePalette:
			m.updatePalette(msg)
			return m, nil
		case ModeMove:
			m.updateMove(msg)
			return m, nil
		case ModeEditing:
			cmd := m.updateEditing(msg)
			return m, cmd
		case ModeExport:
			cmd := m.updateExport(msg)
			return m, cmd
		case ModeFileInput:
			m.updateFileInput(msg)
			return m, nil
		case ModeConfirm:
			cmd := m.updateConfirm(msg)
			return m, cmd
		}
	}

	if m.mode == ModeExport {
		var cmd tea.Cmd
		m.exportView, cmd = m.exportView.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) updateNormal(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	m.errorMessage = ""
	m.successMessage = ""

	switch key {
	case "ctrl+c", "q":
		if m.config.Confirmations && m.registry.Len() > 0 {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmQuit
			return nil
		}
		return tea.Quit
	case "esc":
		m.zPanMode = false
		m.bridge.Clear()
	case "?":
		m.help = true
	case "z":
		m.zPanMode = !m.zPanMode
	case "1", "2", "3":
		m.dropNew(elementTypes[key[0]-'1'], PalettePosition)
	case "i":
		m.mode = ModePalette
	case "enter", " ":
		m.selectAtCursor()
	case "tab":
		m.cycleSelection(1)
	case "shift+tab":
		m.cycleSelection(-1)
	case "m":
		m.startMove()
	case "e":
		return m.startEditing()
	case "x":
		m.openExport()
	case "y":
		m.copyExport()
	case "s":
		m.startFileInput(FileOpSaveArtifacts)
	case "S":
		m.startFileInput(FileOpSavePNG)
	case "u":
		m.undo()
	case "U":
		m.redo()
	default:
		if isDirectionKey(key) {
			m.handleNavigation(key, m.getMoveSpeed(key))
		}
	}
	return nil
}

func (m *model) updatePalette(msg tea.KeyMsg) {
	m.mode = ModeNormal
	key := msg.String()
	if len(key) != 1 {
		return
	}
	if i := strings.Index(paletteKeys, key); i >= 0 {
		x, y := m.worldCoords()
		m.dropNew(elementTypes[i], Position{Top: y, Left: x})
	}
}

// dropNew creates a widget the way a completed palette drag does.
func (m *model) dropNew(t ElementType, pos Position) {
	res, err := HandleDrop(m.registry, m.theme, DropPayload{Type: t.String(), Position: &pos})
	if err != nil {
		m.errorMessage = err.Error()
		m.logger.Error("create element failed", zap.Error(err))
		return
	}
	m.bridge.Select(res.Element.ID)
	m.logger.Info("element created", elementFields(res.Element)...)
}

func (m *model) selectAtCursor() {
	x, y := m.worldCoords()
	if el, ok := m.canvas().ElementAt(x, y); ok {
		m.bridge.Select(el.ID)
		return
	}
	m.bridge.Clear()
}

func (m *model) cycleSelection(step int) {
	elements := m.registry.Elements()
	if len(elements) == 0 {
		return
	}
	next := 0
	if step < 0 {
		next = len(elements) - 1
	}
	if id, ok := m.bridge.Selected(); ok {
		for i, el := range elements {
			if el.ID == id {
				next = (i + step + len(elements)) % len(elements)
				break
			}
		}
	}
	el := elements[next]
	m.bridge.Select(el.ID)
	m.cursorX = el.Position.Left - m.panX
	m.cursorY = el.Position.Top - m.panY
	m.ensureCursorInBounds()
}

func (m *model) startMove() {
	el, ok := m.selectedElement()
	if !ok {
		x, y := m.worldCoords()
		el, ok = m.canvas().ElementAt(x, y)
	}
	if !ok {
		m.errorMessage = "No widget selected"
		return
	}
	m.beginMove(el)
}

func (m *model) beginMove(el Element) {
	ghost := el.Clone()
	m.grabX, m.grabY = 0, 0
	m.moving = &ghost
	m.originalMove = el.Position
	m.bridge.Select(el.ID)
	m.mode = ModeMove
}

func (m *model) updateMove(msg tea.KeyMsg) {
	key := msg.String()
	switch key {
	case "enter":
		m.commitMove()
	case "esc":
		m.moving = nil
		m.mode = ModeNormal
	default:
		if isDirectionKey(key) {
			m.moveGhost(key, m.getMoveSpeed(key))
		}
	}
}

// commitMove completes the relocation drop for the ghost element.
func (m *model) commitMove() {
	ghost := m.moving
	m.moving = nil
	m.mode = ModeNormal
	if ghost == nil || ghost.Position == m.originalMove {
		return
	}

	before, _ := m.registry.FindByID(ghost.ID)
	pos := ghost.Position
	res, err := HandleDrop(m.registry, m.theme, DropPayload{
		ID:           ghost.ID,
		Type:         ghost.Type.String(),
		Position:     &pos,
		IsRelocation: true,
	})
	if err != nil || !res.Moved {
		return
	}
	m.recordAction(ActionMove, before, res.Element)
	m.logger.Info("element relocated", elementFields(res.Element)...)
}

func (m *model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.mode != ModeNormal && m.mode != ModeMove {
		return nil
	}
	x, y := msg.X+m.panX, msg.Y+m.panY

	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || m.mode != ModeNormal {
			return nil
		}
		m.cursorX, m.cursorY = msg.X, msg.Y
		m.ensureCursorInBounds()
		if el, ok := m.canvas().ElementAt(x, y); ok {
			m.beginMove(el)
			// Keep the grabbed cell under the pointer while dragging.
			m.grabX, m.grabY = x-el.Position.Left, y-el.Position.Top
			return nil
		}
		m.bridge.Clear()
	case tea.MouseActionMotion:
		if m.moving != nil {
			m.dragGhostTo(x, y)
		}
	case tea.MouseActionRelease:
		if m.moving != nil {
			m.dragGhostTo(x, y)
			m.commitMove()
		}
	}
	return nil
}

func (m *model) dragGhostTo(x, y int) {
	m.moving.Position = Position{
		Top:  max(y-m.grabY, 0),
		Left: max(x-m.grabX, 0),
	}
}

func (m *model) startEditing() tea.Cmd {
	el, ok := m.selectedElement()
	if !ok {
		x, y := m.worldCoords()
		if el, ok = m.canvas().ElementAt(x, y); ok {
			m.bridge.Select(el.ID)
		}
	}
	if !ok {
		m.errorMessage = "No widget selected"
		return nil
	}

	m.editProps = EditableProperties(el.Type)
	m.editInputs = make([]textinput.Model, len(m.editProps))
	for i := range m.editProps {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		ti.Width = panelWidth - 6
		m.editInputs[i] = ti
	}
	m.syncEditInputs()
	m.editFocus = 0
	m.mode = ModeEditing
	m.ensureCursorInBounds()
	return m.editInputs[0].Focus()
}

// syncEditInputs reloads every field from the selection view, which
// reflects what the registry actually stored.
func (m *model) syncEditInputs() {
	view := m.bridge.View()
	for i, prop := range m.editProps {
		m.editInputs[i].SetValue(view.Get(prop))
	}
}

func (m *model) focusEdit(i int) tea.Cmd {
	n := len(m.editInputs)
	m.editInputs[m.editFocus].Blur()
	m.editFocus = (i + n) % n
	return m.editInputs[m.editFocus].Focus()
}

func (m *model) updateEditing(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.editInputs[m.editFocus].Blur()
		m.mode = ModeNormal
		m.ensureCursorInBounds()
		return nil
	case "tab", "down":
		return m.focusEdit(m.editFocus + 1)
	case "shift+tab", "up":
		return m.focusEdit(m.editFocus - 1)
	case "enter":
		m.applyFocusedEdit()
		return m.focusEdit(m.editFocus + 1)
	case "ctrl+v":
		text, err := readClipboardText()
		if err != nil {
			m.errorMessage = fmt.Sprintf("Clipboard: %v", err)
			return nil
		}
		in := &m.editInputs[m.editFocus]
		in.SetValue(in.Value() + cleanClipboardText(text))
		return nil
	}

	var cmd tea.Cmd
	m.editInputs[m.editFocus], cmd = m.editInputs[m.editFocus].Update(msg)
	return cmd
}

func (m *model) applyFocusedEdit() {
	id, ok := m.bridge.Selected()
	if !ok {
		return
	}
	prop := m.editProps[m.editFocus]
	raw := m.editInputs[m.editFocus].Value()

	before, _ := m.registry.FindByID(id)
	if m.bridge.ApplyEdit(id, prop, raw) {
		after, _ := m.registry.FindByID(id)
		if !after.sameAs(before) {
			m.recordAction(ActionEdit, before, after)
			m.logger.Debug("element edited", zap.String("id", string(id)), zap.String("property", prop))
		}
	} else {
		m.logger.Debug("edit rejected", zap.String("id", string(id)), zap.String("property", prop), zap.String("value", raw))
	}
	m.syncEditInputs()
}

func (m *model) currentArtifacts() Artifacts {
	return m.exporter.Export(m.registry.Elements())
}

func (m *model) openExport() {
	m.artifacts = m.currentArtifacts()
	m.mode = ModeExport
	m.refreshExportView()
	m.exportView.GotoTop()
	m.logger.Info("export produced",
		zap.Int("elements", len(m.artifacts.Snapshot)),
		zap.Uint64("revision", m.registry.Revision()))
}

func (m *model) refreshExportView() {
	width := max(m.exportView.Width-1, 20)
	m.exportView.SetContent(wordwrap.String(m.artifacts.Bundle(), width))
}

func (m *model) updateExport(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q", "x":
		m.mode = ModeNormal
		return nil
	case "y":
		m.copyExport()
		return nil
	case "s":
		m.startFileInput(FileOpSaveArtifacts)
		return nil
	}
	var cmd tea.Cmd
	m.exportView, cmd = m.exportView.Update(msg)
	return cmd
}

func (m *model) copyExport() {
	if err := writeClipboardText(m.currentArtifacts().Bundle()); err != nil {
		m.errorMessage = fmt.Sprintf("Clipboard: %v", err)
		m.logger.Warn("clipboard write failed", zap.Error(err))
		return
	}
	m.successMessage = "Export copied to clipboard"
}

func (m *model) startFileInput(op FileOperation) {
	m.fileOp = op
	m.mode = ModeFileInput
	m.errorMessage = ""
}

func (m *model) updateFileInput(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEnter:
		m.saveFile()
	case tea.KeyEsc:
		m.mode = ModeNormal
	case tea.KeyBackspace:
		if r := []rune(m.filename); len(r) > 0 {
			m.filename = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.filename += " "
	case tea.KeyRunes:
		m.filename += string(msg.Runes)
	}
}

func (m *model) savePath() string {
	name := sanitizeFilename(m.filename)
	if m.fileOp == FileOpSavePNG {
		return m.config.GetSavePath(name + ".png")
	}
	return m.config.GetSavePath(name + ".html")
}

func (m *model) saveFile() {
	if sanitizeFilename(m.filename) == "" {
		m.errorMessage = "Filename cannot be empty"
		return
	}
	if m.config.Confirmations {
		if _, err := os.Stat(m.savePath()); err == nil {
			m.mode = ModeConfirm
			m.confirmAction = ConfirmOverwriteFile
			return
		}
	}
	m.writeFile()
}

func (m *model) writeFile() {
	m.mode = ModeNormal
	name := sanitizeFilename(m.filename)

	switch m.fileOp {
	case FileOpSavePNG:
		if m.config.SaveDirectory != "" {
			if err := os.MkdirAll(m.config.SaveDirectory, 0755); err != nil {
				m.errorMessage = fmt.Sprintf("Error saving: %v", err)
				return
			}
		}
		path := m.savePath()
		if err := m.canvas().ExportToPNG(path); err != nil {
			m.errorMessage = fmt.Sprintf("Error exporting PNG: %v", err)
			m.logger.Error("png export failed", zap.String("path", path), zap.Error(err))
			return
		}
		m.successMessage = fmt.Sprintf("Exported %s", path)
		m.logger.Info("png exported", zap.String("path", path))
	default:
		written, err := writeArtifacts(m.config.SaveDirectory, name, m.currentArtifacts())
		if err != nil {
			m.errorMessage = fmt.Sprintf("Error saving: %v", err)
			m.logger.Error("artifact save failed", zap.Error(err))
			return
		}
		m.successMessage = fmt.Sprintf("Saved %d files as %s.*", len(written), m.config.GetSavePath(name))
		m.logger.Info("artifacts saved", zap.Strings("paths", written))
	}
}

func (m *model) updateConfirm(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		switch m.confirmAction {
		case ConfirmQuit:
			return tea.Quit
		case ConfirmOverwriteFile:
			m.writeFile()
		}
	case "n", "N", "esc":
		m.mode = ModeNormal
	}
	return nil
}

func (m *model) updateHelp(msg tea.KeyMsg) {
	switch msg.String() {
	case "esc", "q", "?":
		m.help = false
		m.helpScroll = 0
	case "j", "down":
		maxScroll := len(helpLines) - max(m.height-1, 1)
		if m.helpScroll < maxScroll {
			m.helpScroll++
		}
	case "k", "up":
		if m.helpScroll > 0 {
			m.helpScroll--
		}
	}
}
