package tui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/muesli/reflow/wordwrap"
	"github.com/thenoetrevino/tasks/internal/tui/components"
	"github.com/thenoetrevino/tasks/internal/tui/notifications"
	"github.com/thenoetrevino/tasks/internal/tui/state"
	"github.com/thenoetrevino/tasks/internal/tui/theme"
)

// chromeLines is the number of lines used by everything but the task rows:
// title, blank line, detail (2), blank line, notification, status bar
const chromeLines = 7

// View renders the current state of the application
func (m Model) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

func (m Model) render() string {
	switch m.UiState.Mode() {
	case state.TaskFormMode:
		if m.FormState.Form != nil {
			return m.renderPage(m.FormState.Form.View())
		}
	case state.HelpMode:
		return m.renderPage(m.renderHelp())
	}
	return m.renderPage(m.renderList())
}

// renderPage adds the status bar below body
func (m Model) renderPage(body string) string {
	open, done := 0, 0
	for _, task := range m.items {
		if task.Deleted {
			continue
		}
		if task.Done {
			done++
		} else {
			open++
		}
	}

	bar := components.RenderStatusBar(components.StatusBarProps{
		Width:     m.UiState.Width(),
		Mode:      m.UiState.Mode().String(),
		SyncState: m.syncState(),
		Open:      open,
		Done:      done,
		LastError: m.NotificationState.LastError(),
	})

	if m.UiState.Height() > 0 {
		gap := m.UiState.Height() - lipgloss.Height(body) - 1
		if gap > 0 {
			body += strings.Repeat("\n", gap)
		}
	}
	return body + "\n" + bar
}

func (m Model) renderList() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Accent)).Render("Tasks")
	if m.UiState.ShowDeleted() {
		title += lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Subtle)).Render(" (including deleted)")
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")

	if len(m.items) == 0 {
		b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Subtle)).
			Render(fmt.Sprintf("No tasks. Press %s to add one.", m.Config.KeyMappings.AddTask)))
	} else {
		start, end := m.UiState.VisibleRange(len(m.items), m.UiState.Height()-chromeLines)
		rows := make([]string, 0, end-start)
		for i := start; i < end; i++ {
			rows = append(rows, components.RenderTaskRow(m.items[i], i == m.UiState.Selected(), m.UiState.Width()))
		}
		b.WriteString(strings.Join(rows, "\n"))

		if task, ok := m.SelectedTask(); ok {
			b.WriteString("\n\n")
			b.WriteString(components.RenderTaskDetail(task, m.UiState.Width()))
		}
	}

	if m.UiState.Mode() == state.DeleteConfirmMode {
		b.WriteString("\n")
		b.WriteString(notifications.RenderInline(notifications.Warning, "Delete this task? (y/n)"))
	}

	for _, n := range m.NotificationState.All() {
		b.WriteString("\n")
		b.WriteString(notifications.RenderInlineFromState(n))
	}

	return b.String()
}

func (m Model) renderHelp() string {
	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Accent)).Width(14)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Normal))

	lines := []string{lipgloss.NewStyle().Bold(true).Render("Keys"), ""}
	for _, binding := range m.Keys.Bindings() {
		h := binding.Help()
		lines = append(lines, keyStyle.Render(h.Key)+descStyle.Render(h.Desc))
	}

	footer := "Changes made by other sessions appear as soon as they are synced. Press any key to go back."
	if w := m.UiState.Width(); w > 0 {
		footer = wordwrap.String(footer, w)
	}
	lines = append(lines, "", lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Subtle)).Render(footer))

	return strings.Join(lines, "\n")
}
