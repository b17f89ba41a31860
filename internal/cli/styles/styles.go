package styles

import (
	"charm.land/lipgloss/v2"
	"github.com/thenoetrevino/tasks/internal/config"
	"github.com/thenoetrevino/tasks/internal/models"
)

var (
	// Text styles
	TitleStyle    lipgloss.Style
	SubtitleStyle lipgloss.Style
	IDStyle       lipgloss.Style

	// Task state styles
	DoneStyle    lipgloss.Style
	OpenStyle    lipgloss.Style
	DeletedStyle lipgloss.Style

	// Status styles
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
)

func init() {
	Init(config.DefaultColorScheme())
}

// Init initializes all CLI styles with the given color scheme
func Init(colors config.ColorScheme) {
	TitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.Accent))

	SubtitleStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Subtle))

	IDStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Subtle))

	DoneStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Done))

	OpenStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Normal))

	DeletedStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.Deleted)).
		Strikethrough(true)

	SuccessStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.InfoFg))

	ErrorStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(colors.ErrorFg))

	WarningStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color(colors.WarningFg))
}

// TaskLine renders a task as "id | X/O | title", marking deleted tasks
func TaskLine(task models.Task) string {
	status := OpenStyle.Render(task.Status())
	if task.Done {
		status = DoneStyle.Render(task.Status())
	}

	title := task.Title
	if task.Deleted {
		title = DeletedStyle.Render(title) + " (deleted)"
	}

	return IDStyle.Render(task.ID) + " | " + status + " | " + title
}
