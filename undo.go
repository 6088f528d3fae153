package main

import "go.uber.org/zap"

func (m *model) recordAction(actionType ActionType, before, after Element) {
	m.undoStack = append(m.undoStack, Action{
		Type:    actionType,
		Data:    after,
		Inverse: before,
	})
	m.redoStack = m.redoStack[:0]
}

func (m *model) undo() {
	if len(m.undoStack) == 0 {
		return
	}

	lastIndex := len(m.undoStack) - 1
	action := m.undoStack[lastIndex]
	m.undoStack = m.undoStack[:lastIndex]

	if !m.registry.restore(action.Inverse) {
		m.logger.Debug("undo target missing", zap.String("id", string(action.Inverse.ID)))
		return
	}
	m.bridge.View()
	m.redoStack = append(m.redoStack, action)
}

func (m *model) redo() {
	if len(m.redoStack) == 0 {
		return
	}

	lastIndex := len(m.redoStack) - 1
	action := m.redoStack[lastIndex]
	m.redoStack = m.redoStack[:lastIndex]

	if !m.registry.restore(action.Data) {
		m.logger.Debug("redo target missing", zap.String("id", string(action.Data.ID)))
		return
	}
	m.bridge.View()
	m.undoStack = append(m.undoStack, action)
}
