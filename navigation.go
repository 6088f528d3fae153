package main

import tea "github.com/charmbracelet/bubbletea"

func (m *model) handleNavigation(key string, speed int) (tea.Model, tea.Cmd) {
	if m.zPanMode {
		return m.handlePan(key, speed), nil
	}
	return m.handleCursorMove(key, speed), nil
}

func (m *model) handlePan(key string, speed int) tea.Model {
	switch key {
	case "h", "left", "H", "shift+left":
		m.panX -= speed
	case "l", "right", "L", "shift+right":
		m.panX += speed
	case "k", "up", "K", "shift+up":
		m.panY -= speed
	case "j", "down", "J", "shift+down":
		m.panY += speed
	}
	return m
}

func (m *model) handleCursorMove(key string, speed int) tea.Model {
	dx, dy := direction(key)
	m.cursorX += dx * speed
	m.cursorY += dy * speed
	m.ensureCursorInBounds()
	return m
}

// moveGhost shifts the element being relocated; the registry is only
// touched when the move is committed.
func (m *model) moveGhost(key string, speed int) {
	if m.moving == nil {
		return
	}
	dx, dy := direction(key)
	m.moving.Position.Left += dx * speed
	m.moving.Position.Top += dy * speed
	if m.moving.Position.Left < 0 {
		m.moving.Position.Left = 0
	}
	if m.moving.Position.Top < 0 {
		m.moving.Position.Top = 0
	}
}

func direction(key string) (int, int) {
	switch key {
	case "h", "left", "H", "shift+left":
		return -1, 0
	case "l", "right", "L", "shift+right":
		return 1, 0
	case "k", "up", "K", "shift+up":
		return 0, -1
	case "j", "down", "J", "shift+down":
		return 0, 1
	}
	return 0, 0
}

func isDirectionKey(key string) bool {
	dx, dy := direction(key)
	return dx != 0 || dy != 0
}

func (m *model) getMoveSpeed(key string) int {
	switch key {
	case "H", "L", "K", "J", "shift+left", "shift+right", "shift+up", "shift+down":
		return 2
	default:
		return 1
	}
}

func (m *model) ensureCursorInBounds() {
	if m.cursorX < 0 {
		m.cursorX = 0
	}
	if m.cursorY < 0 {
		m.cursorY = 0
	}
	if w := m.canvasWidth(); w > 0 && m.cursorX >= w {
		m.cursorX = w - 1
	}
	maxY := m.canvasHeight() - 1
	if maxY < 0 {
		maxY = 0
	}
	if m.cursorY > maxY {
		m.cursorY = maxY
	}
}

func (m *model) worldCoords() (int, int) {
	return m.cursorX + m.panX, m.cursorY + m.panY
}
