package tui

import (
	"context"
	"errors"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"github.com/thenoetrevino/tasks/internal/events"
	"github.com/thenoetrevino/tasks/internal/tui/state"
)

// ============================================================================
// NORMAL MODE HANDLERS
// ============================================================================

// handleNormalMode dispatches key events in NormalMode to specific handlers.
func (m Model) handleNormalMode(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	m.NotificationState.Clear()

	keys := m.Keys

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Help):
		m.UiState.SetMode(state.HelpMode)
		return m, nil
	case key.Matches(msg, keys.Up):
		m.UiState.MoveUp()
		return m, nil
	case key.Matches(msg, keys.Down):
		m.UiState.MoveDown(len(m.items))
		return m, nil
	case key.Matches(msg, keys.Toggle):
		return m.handleToggleTask()
	case key.Matches(msg, keys.Add):
		return m.openTaskForm("", "")
	case key.Matches(msg, keys.Edit):
		return m.handleEditTask()
	case key.Matches(msg, keys.Delete):
		return m.handleDeleteTask()
	case key.Matches(msg, keys.ShowDeleted):
		m.UiState.ToggleShowDeleted()
		return m, m.loadTasks()
	case key.Matches(msg, keys.EvictDeleted):
		return m.handleEvictDeleted()
	case key.Matches(msg, keys.ToggleSync):
		return m, m.toggleSync()
	}

	return m, nil
}

func (m Model) handleToggleTask() (tea.Model, tea.Cmd) {
	task, ok := m.SelectedTask()
	if !ok {
		return m, nil
	}
	if task.Deleted {
		m.NotificationState.Add(state.LevelWarning, "deleted tasks cannot be changed")
		return m, nil
	}

	ctx, cancel := m.DbContext()
	defer cancel()

	if err := m.Tasks.MarkTaskComplete(ctx, task.ID, !task.Done); err != nil {
		m.reportError("toggle task", err)
		return m, nil
	}
	return m, m.loadTasks()
}

func (m Model) handleEditTask() (tea.Model, tea.Cmd) {
	task, ok := m.SelectedTask()
	if !ok || task.Deleted {
		return m, nil
	}
	return m.openTaskForm(task.ID, task.Title)
}

func (m Model) handleDeleteTask() (tea.Model, tea.Cmd) {
	task, ok := m.SelectedTask()
	if !ok || task.Deleted {
		return m, nil
	}
	m.UiState.SetMode(state.DeleteConfirmMode)
	return m, nil
}

// handleDeleteConfirm handles the y/n prompt shown before deleting a task
func (m Model) handleDeleteConfirm(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		m.UiState.SetMode(state.NormalMode)
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}

		ctx, cancel := m.DbContext()
		defer cancel()

		if err := m.Tasks.DeleteTask(ctx, task.ID); err != nil {
			m.reportError("delete task", err)
			return m, nil
		}
		return m, m.loadTasks()

	case "n", "N", "esc":
		m.UiState.SetMode(state.NormalMode)
	}
	return m, nil
}

func (m Model) handleEvictDeleted() (tea.Model, tea.Cmd) {
	ctx, cancel := m.DbContext()
	defer cancel()

	if err := m.Tasks.EvictDeletedTasks(ctx); err != nil {
		m.reportError("evict deleted tasks", err)
		return m, nil
	}
	m.NotificationState.Add(state.LevelInfo, "evicted deleted tasks")
	return m, m.loadTasks()
}

// toggleSync runs off the update loop since connecting may block
func (m Model) toggleSync() tea.Cmd {
	if m.Sync == nil {
		return func() tea.Msg {
			return SyncToggledMsg{Err: errors.New("sync is not available")}
		}
	}

	sync := m.Sync
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.Ctx, operationTimeout)
		defer cancel()

		if err := sync.ToggleSync(ctx); err != nil {
			return SyncToggledMsg{Err: events.ClassifyFeedError(err)}
		}
		return SyncToggledMsg{State: sync.SyncState()}
	}
}
