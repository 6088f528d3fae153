package main

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) model {
	t.Helper()
	m := newModel(&Config{SaveDirectory: t.TempDir()}, nil)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return next.(model)
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

func press(m model, keys ...string) model {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(model)
	}
	return m
}

func TestModelPaletteAdd(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "1", "2", "3")

	elements := m.registry.Elements()
	require.Len(t, elements, 3)
	assert.Equal(t, []ElementType{Label, Button, Hyperlink},
		[]ElementType{elements[0].Type, elements[1].Type, elements[2].Type})
	for _, el := range elements {
		assert.Equal(t, PalettePosition, el.Position)
	}

	id, ok := m.bridge.Selected()
	require.True(t, ok)
	assert.Equal(t, elements[2].ID, id, "the new widget is selected")
}

func TestModelDropAtCursor(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "l", "l", "j", "j", "j", "i", "b")

	require.Equal(t, 1, m.registry.Len())
	el := m.registry.Elements()[0]
	assert.Equal(t, Button, el.Type)
	assert.Equal(t, Position{Top: 3, Left: 2}, el.Position)
	assert.Equal(t, ModeNormal, m.mode)

	m = press(m, "i", "q")
	assert.Equal(t, 1, m.registry.Len(), "unknown palette key cancels")
}

func TestModelMoveUndoRedo(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "1", "m", "l", "l", "j")
	assert.Equal(t, ModeMove, m.mode)

	el := m.registry.Elements()[0]
	assert.Equal(t, PalettePosition, el.Position, "registry untouched until drop")

	m = press(m, "enter")
	el = m.registry.Elements()[0]
	assert.Equal(t, Position{Top: 1, Left: 2}, el.Position)
	require.Len(t, m.undoStack, 1)

	m = press(m, "u")
	assert.Equal(t, PalettePosition, m.registry.Elements()[0].Position)
	m = press(m, "U")
	assert.Equal(t, Position{Top: 1, Left: 2}, m.registry.Elements()[0].Position)

	m = press(m, "m", "l", "esc")
	assert.Equal(t, Position{Top: 1, Left: 2}, m.registry.Elements()[0].Position)
	assert.Len(t, m.undoStack, 1)
}

func TestModelEditing(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "1", "e")
	require.Equal(t, ModeEditing, m.mode)
	require.Equal(t, EditableProperties(Label), m.editProps)
	assert.Equal(t, "Label Text", m.editInputs[0].Value())
	assert.Equal(t, "16", m.editInputs[1].Value())
	assert.Equal(t, "3", m.editInputs[2].Value())

	m.editInputs[0].SetValue("Hello")
	m = press(m, "enter")
	assert.Equal(t, "Hello", m.registry.Elements()[0].Text)
	assert.Equal(t, 1, m.editFocus)

	m.editInputs[1].SetValue("24")
	m = press(m, "enter")
	assert.Equal(t, "24px", m.registry.Elements()[0].Style[StyleFontSize])
	assert.Equal(t, "24", m.editInputs[1].Value())

	m = press(m, "tab", "tab", "tab")
	assert.Equal(t, 1, m.editFocus, "focus wraps around")

	m.editInputs[1].SetValue("big")
	m = press(m, "enter")
	assert.Equal(t, "24px", m.registry.Elements()[0].Style[StyleFontSize])
	assert.Equal(t, "24", m.editInputs[1].Value(), "rejected input shows the stored value")

	m = press(m, "esc")
	assert.Equal(t, ModeNormal, m.mode)
	require.Len(t, m.undoStack, 2)

	m = press(m, "u", "u")
	el := m.registry.Elements()[0]
	assert.Equal(t, "Label Text", el.Text)
	assert.Equal(t, "16px", el.Style[StyleFontSize])
}

func TestModelEditWithoutSelection(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "e")
	assert.Equal(t, ModeNormal, m.mode)
	assert.NotEmpty(t, m.errorMessage)
}

func TestModelSelection(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "1", "j", "j", "i", "h")
	first := m.registry.Elements()[0]

	m = press(m, "k", "k", "esc")
	_, ok := m.bridge.Selected()
	assert.False(t, ok)

	m = press(m, "enter")
	id, ok := m.bridge.Selected()
	require.True(t, ok)
	assert.Equal(t, first.ID, id, "cursor at origin selects the label")

	m = press(m, "tab")
	id, _ = m.bridge.Selected()
	assert.Equal(t, m.registry.Elements()[1].ID, id)
}

func TestModelExport(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "1", "x")
	require.Equal(t, ModeExport, m.mode)
	assert.Contains(t, m.artifacts.Structure, "<label")
	assert.Contains(t, m.View(), "── HTML ──")

	m = press(m, "esc")
	assert.Equal(t, ModeNormal, m.mode)
}

func TestModelSaveArtifacts(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "2", "s")
	require.Equal(t, ModeFileInput, m.mode)

	m = press(m, "p", "a", "g", "e", "x", "backspace", "enter")
	assert.Equal(t, ModeNormal, m.mode)
	assert.Empty(t, m.errorMessage)
	assert.FileExists(t, m.config.GetSavePath("page.html"))
	assert.FileExists(t, m.config.GetSavePath("page.json"))
}

func TestModelSaveOverwriteConfirm(t *testing.T) {
	m := newTestModel(t)
	m.config.Confirmations = true
	m.filename = "page"
	m = press(m, "1", "s", "enter")
	require.FileExists(t, m.config.GetSavePath("page.html"))

	m = press(m, "s", "enter")
	require.Equal(t, ModeConfirm, m.mode)
	assert.Equal(t, ConfirmOverwriteFile, m.confirmAction)
	m = press(m, "y")
	assert.Equal(t, ModeNormal, m.mode)
}

func sendMouse(m model, msgs ...tea.MouseMsg) model {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(model)
	}
	return m
}

func TestModelMouseDrag(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "2")

	m = sendMouse(m, tea.MouseMsg{X: 1, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	require.Equal(t, ModeMove, m.mode)
	m = sendMouse(m,
		tea.MouseMsg{X: 10, Y: 5, Action: tea.MouseActionMotion, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: 12, Y: 6, Action: tea.MouseActionRelease},
	)

	// Grabbed one cell in from the corner, so the corner lands one cell
	// up and left of the release point.
	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, Position{Top: 5, Left: 11}, m.registry.Elements()[0].Position)
	assert.Len(t, m.undoStack, 1)
}

func TestModelMouseClickDoesNotMove(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "2")

	m = sendMouse(m,
		tea.MouseMsg{X: 2, Y: 1, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: 2, Y: 1, Action: tea.MouseActionRelease},
	)

	assert.Equal(t, ModeNormal, m.mode)
	assert.Equal(t, PalettePosition, m.registry.Elements()[0].Position)
	assert.Empty(t, m.undoStack)

	id, ok := m.bridge.Selected()
	require.True(t, ok)
	assert.Equal(t, m.registry.Elements()[0].ID, id, "a click still selects")
}

func TestModelMouseDragClampsAtOrigin(t *testing.T) {
	m := newTestModel(t)
	m = press(m, "l", "l", "l", "j", "j", "i", "b")
	require.Equal(t, Position{Top: 2, Left: 3}, m.registry.Elements()[0].Position)

	m = sendMouse(m,
		tea.MouseMsg{X: 5, Y: 3, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft},
		tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionRelease},
	)
	assert.Equal(t, Position{Top: 0, Left: 0}, m.registry.Elements()[0].Position)
}

func TestModelView(t *testing.T) {
	m := newTestModel(t)
	assert.Contains(t, m.View(), emptyHint)

	m = press(m, "1")
	view := m.View()
	assert.NotContains(t, view, emptyHint)
	assert.Contains(t, view, "Widgets: 1")

	m = press(m, "e")
	assert.Contains(t, m.View(), "fontSize")

	m = press(m, "esc", "?")
	assert.True(t, strings.HasPrefix(m.View(), "widgetpad Help"))
}

func TestModelQuit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	m.config.Confirmations = true
	m = press(m, "1", "q")
	assert.Equal(t, ModeConfirm, m.mode)
	m = press(m, "n")
	assert.Equal(t, ModeNormal, m.mode)
}
