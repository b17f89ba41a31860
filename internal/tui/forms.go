package tui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/huh/v2"
	"github.com/thenoetrevino/tasks/internal/tui/huhforms"
	"github.com/thenoetrevino/tasks/internal/tui/state"
)

// openTaskForm shows the task form. editingID is "" for a new task.
func (m Model) openTaskForm(editingID, title string) (tea.Model, tea.Cmd) {
	m.FormState.Reset(editingID, title)
	m.FormState.Form = huhforms.CreateTaskForm(
		&m.FormState.FormTitle,
		&m.FormState.FormConfirm,
		editingID != "",
	).WithTheme(huhforms.CreateTheme(m.Config.ColorScheme))

	m.UiState.SetMode(state.TaskFormMode)
	return m, m.FormState.Form.Init()
}

// updateTaskForm forwards messages to the form and saves it on completion.
// Esc is intercepted so it always discards the form.
func (m Model) updateTaskForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.FormState.Form == nil {
		m.UiState.SetMode(state.NormalMode)
		return m, nil
	}

	if key, ok := msg.(tea.KeyPressMsg); ok && key.String() == "esc" {
		m.closeTaskForm()
		return m, nil
	}

	model, cmd := m.FormState.Form.Update(msg)
	if form, ok := model.(*huh.Form); ok {
		m.FormState.Form = form
	}

	switch m.FormState.Form.State {
	case huh.StateCompleted:
		return m.saveTaskForm()
	case huh.StateAborted:
		m.closeTaskForm()
		return m, nil
	}

	return m, cmd
}

func (m Model) saveTaskForm() (tea.Model, tea.Cmd) {
	title := strings.TrimSpace(m.FormState.FormTitle)
	confirmed := m.FormState.FormConfirm
	editingID := m.FormState.EditingTaskID
	m.closeTaskForm()

	if !confirmed || title == "" {
		return m, nil
	}

	ctx, cancel := m.DbContext()
	defer cancel()

	if editingID != "" {
		if err := m.Tasks.UpdateTaskTitle(ctx, editingID, title); err != nil {
			m.reportError("edit task", err)
			return m, nil
		}
	} else {
		if _, err := m.Tasks.AddTask(ctx, title, false); err != nil {
			m.reportError("add task", err)
			return m, nil
		}
	}

	return m, m.loadTasks()
}

func (m *Model) closeTaskForm() {
	m.FormState.Clear()
	m.UiState.SetMode(state.NormalMode)
}
