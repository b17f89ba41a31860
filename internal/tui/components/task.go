package components

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/thenoetrevino/tasks/internal/models"
	"github.com/thenoetrevino/tasks/internal/tui/theme"
)

// Checkbox returns the checkbox shown in front of a task
func Checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// RenderTaskRow renders one list row: cursor, checkbox and title.
// Titles longer than the row are cut with an ellipsis.
func RenderTaskRow(task models.Task, selected bool, width int) string {
	cursor := "  "
	if selected {
		cursor = "> "
	}

	line := cursor + Checkbox(task.Done) + " " + task.Title
	if task.Deleted {
		line += " (deleted)"
	}
	if width > 0 {
		line = truncate.StringWithTail(line, uint(width), "…")
	}

	style := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Normal))
	switch {
	case task.Deleted:
		style = style.Foreground(lipgloss.Color(theme.Deleted)).Strikethrough(true)
	case task.Done:
		style = style.Foreground(lipgloss.Color(theme.Done))
	}
	if selected {
		style = style.
			Foreground(lipgloss.Color(theme.SelectedFg)).
			Background(lipgloss.Color(theme.SelectedBg)).
			Bold(true)
		if width > 0 {
			style = style.Width(width)
		}
	}

	return style.Render(line)
}

// RenderTaskDetail renders the full title and id of the selected task,
// wrapped to width
func RenderTaskDetail(task models.Task, width int) string {
	subtle := lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Subtle))

	title := task.Title
	if width > 0 {
		title = wordwrap.String(title, width)
	}

	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(theme.Accent)).Render(title))
	b.WriteString("\n")
	b.WriteString(subtle.Render(task.ID))
	return b.String()
}
