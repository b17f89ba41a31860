package tui

import (
	tea "charm.land/bubbletea/v2"
	"github.com/thenoetrevino/tasks/internal/tui/state"
)

// Update handles all messages and updates the model accordingly
// This implements the "Update" part of the Model-View-Update pattern
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	select {
	case <-m.Ctx.Done():
		return m, tea.Quit
	default:
	}

	switch msg := msg.(type) {
	case TasksChangedMsg:
		// The observer only sees tasks that are not deleted
		next := m.waitForChange()
		if m.UiState.ShowDeleted() {
			return m, tea.Batch(m.loadTasks(), next)
		}
		m.setItems(msg.Tasks)
		return m, next

	case TasksLoadedMsg:
		m.setItems(msg.Tasks)
		return m, nil

	case ErrorMsg:
		m.reportError(msg.Op, msg.Err)
		return m, nil

	case SyncToggledMsg:
		if msg.Err != nil {
			m.reportError("toggle sync", msg.Err)
			return m, nil
		}
		m.NotificationState.Add(state.LevelInfo, "sync "+string(msg.State))
		return m, nil

	case tea.WindowSizeMsg:
		m.UiState.SetSize(msg.Width, msg.Height)
		return m, nil
	}

	if m.UiState.Mode() == state.TaskFormMode {
		return m.updateTaskForm(msg)
	}

	if msg, ok := msg.(tea.KeyPressMsg); ok {
		switch m.UiState.Mode() {
		case state.DeleteConfirmMode:
			return m.handleDeleteConfirm(msg)
		case state.HelpMode:
			m.UiState.SetMode(state.NormalMode)
			return m, nil
		default:
			return m.handleNormalMode(msg)
		}
	}

	return m, nil
}
