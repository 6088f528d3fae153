package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const emptyHint = "Press 1/2/3 to add a label, button or hyperlink"

var (
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	panelStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)
	panelTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	labelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	focusLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
)

func (m model) View() string {
	if m.help {
		return m.helpView()
	}
	if m.mode == ModeExport {
		return m.exportView.View() + "\n" + m.statusLine()
	}

	width, height := m.canvasWidth(), m.canvasHeight()
	opts := renderOptions{
		panX:       m.panX,
		panY:       m.panY,
		ghost:      m.moving,
		hint:       emptyHint,
		showCursor: m.mode != ModeFileInput,
		cursorX:    m.cursorX,
		cursorY:    m.cursorY,
	}
	if id, ok := m.bridge.Selected(); ok {
		opts.selected = id
	}
	lines := m.canvas().Render(width, height, opts)

	body := strings.Join(lines, "\n")
	if m.mode == ModeEditing {
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, m.panelView(height))
	}
	return body + "\n" + m.statusLine()
}

func (m model) panelView(height int) string {
	view := m.bridge.View()
	var b strings.Builder
	b.WriteString(panelTitleStyle.Render(view.Type.String()))
	b.WriteString("\n\n")
	for i, prop := range m.editProps {
		style := labelStyle
		if i == m.editFocus {
			style = focusLabelStyle
		}
		b.WriteString(style.Render(prop))
		b.WriteString("\n")
		b.WriteString(m.editInputs[i].View())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("enter apply · tab next · esc done"))

	return panelStyle.
		Width(panelWidth - 2).
		Height(max(height-2, 1)).
		Render(b.String())
}

func (m model) statusLine() string {
	var status string
	switch m.mode {
	case ModePalette:
		status = "Mode: PALETTE | l=label b=button h=hyperlink | any other key cancels"
	case ModeMove:
		status = "Mode: MOVE | hjkl/arrows=move, Enter=drop, Esc=cancel"
		if m.moving != nil {
			status = fmt.Sprintf("Mode: MOVE | %s at (%d,%d) | hjkl/arrows=move, Enter=drop, Esc=cancel",
				m.moving.Type, m.moving.Position.Left, m.moving.Position.Top)
		}
	case ModeEditing:
		status = fmt.Sprintf("Mode: EDIT | %s", m.editProps[m.editFocus])
	case ModeExport:
		status = fmt.Sprintf("Mode: EXPORT | %3.f%% | y=copy, s=save, Esc=back", m.exportView.ScrollPercent()*100)
	case ModeFileInput:
		op := "Save artifacts"
		if m.fileOp == FileOpSavePNG {
			op = "Export PNG"
		}
		status = fmt.Sprintf("Mode: FILE | %s filename: %s█ | Enter=confirm, Esc=cancel", op, m.filename)
	case ModeConfirm:
		message := "Quit widgetpad? (y/n)"
		if m.confirmAction == ConfirmOverwriteFile {
			message = fmt.Sprintf("File %s already exists. Overwrite? (y/n)", m.savePath())
		}
		status = fmt.Sprintf("Mode: CONFIRM | %s", message)
	default:
		modeStr := m.modeString()
		if m.zPanMode {
			modeStr = "PAN"
		}
		status = fmt.Sprintf("Mode: %s | Cursor: (%d,%d) | Widgets: %d", modeStr, m.cursorX, m.cursorY, m.registry.Len())
		if el, ok := m.selectedElement(); ok {
			status += fmt.Sprintf(" | Selected: %s %q", el.Type, el.Text)
		}
		if m.successMessage == "" && m.errorMessage == "" {
			status += " | ? for help | q to quit"
		}
	}

	line := statusStyle.Render(status)
	if m.errorMessage != "" {
		line += " " + errorStyle.Render("ERROR: "+m.errorMessage)
	} else if m.successMessage != "" {
		line += " " + successStyle.Render(m.successMessage)
	}
	return line
}

func (m model) modeString() string {
	switch m.mode {
	case ModeNormal:
		return "NORMAL"
	case ModePalette:
		return "PALETTE"
	case ModeMove:
		return "MOVE"
	case ModeEditing:
		return "EDIT"
	case ModeExport:
		return "EXPORT"
	case ModeFileInput:
		return "FILE"
	case ModeConfirm:
		return "CONFIRM"
	default:
		return "UNKNOWN"
	}
}

var helpLines = []string{
	"widgetpad Help",
	"==============",
	"",
	"Navigation:",
	"-----------",
	"  h/←/j/↓/k/↑/l/→  Move cursor around the canvas",
	"  Shift+h/j/k/l    Move cursor 2x faster",
	"  z                Toggle pan mode (direction keys scroll the canvas)",
	"",
	"Palette:",
	"--------",
	"  1 / 2 / 3        Add a Label / Button / Hyperlink at the palette origin",
	"  i then l/b/h     Drop a Label / Button / Hyperlink at the cursor",
	"",
	"Selection:",
	"----------",
	"  Enter/Space      Select the widget under the cursor",
	"  Tab / Shift+Tab  Cycle through widgets",
	"  Esc              Clear selection",
	"",
	"Widgets:",
	"--------",
	"  m                Move the selected widget (or drag it with the mouse)",
	"  e                Edit properties of the selected widget",
	"                   Tab/↑/↓ switch field, Enter applies, Ctrl+V pastes, Esc closes",
	"  u                Undo last edit or move",
	"  U                Redo last undone action",
	"",
	"Export:",
	"-------",
	"  x                Show HTML, CSS, JavaScript and JSON snapshot",
	"  y                Copy the export bundle to the clipboard",
	"  s                Save .html, .css, .js and .json files",
	"  S                Export a PNG wireframe",
	"",
	"General:",
	"  ?                Toggle this help screen",
	"  q/Ctrl+C         Quit",
}

func (m model) helpView() string {
	visibleHeight := max(m.height-1, 1)

	start := min(m.helpScroll, max(len(helpLines)-visibleHeight, 0))
	end := min(start+visibleHeight, len(helpLines))

	var b strings.Builder
	b.WriteString(strings.Join(helpLines[start:end], "\n"))
	for i := end - start; i < visibleHeight; i++ {
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(statusStyle.Render("Mode: HELP | j/k=scroll, ?/Esc=close"))
	return b.String()
}
