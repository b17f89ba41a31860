package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/thenoetrevino/tasks/internal/models"
	"github.com/thenoetrevino/tasks/internal/tui/theme"
)

type StatusBarProps struct {
	Width     int
	Mode      string
	SyncState models.SyncState
	Open      int
	Done      int
	LastError string
}

// RenderStatusBar renders a status bar with left and right aligned text
// Left side: mode, sync state and task counts
// Right side: the last error, or the help hint
func RenderStatusBar(props StatusBarProps) string {
	base := lipgloss.NewStyle().
		Foreground(lipgloss.Color(theme.StatusBarFg)).
		Background(lipgloss.Color(theme.StatusBarBg))

	mode := base.Bold(true).Padding(0, 1).Render(props.Mode)
	sync := base.Foreground(syncColor(props.SyncState)).Padding(0, 1).Render(syncLabel(props.SyncState))
	counts := base.Padding(0, 1).Render(fmt.Sprintf("%d open, %d done", props.Open, props.Done))
	left := lipgloss.JoinHorizontal(lipgloss.Top, mode, sync, counts)

	right := base.Padding(0, 1).Render("press ? for help")
	if props.LastError != "" {
		right = base.Foreground(lipgloss.Color(theme.ErrorFg)).Padding(0, 1).Render(props.LastError)
	}

	// Calculate space between left and right text
	gapWidth := props.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gapWidth < 1 {
		gapWidth = 1
	}
	gap := base.Render(strings.Repeat(" ", gapWidth))

	return lipgloss.JoinHorizontal(lipgloss.Top, left, gap, right)
}

func syncLabel(s models.SyncState) string {
	switch s {
	case models.SyncActive:
		return "● syncing"
	case models.SyncStopped:
		return "○ sync stopped"
	default:
		return "○ sync off"
	}
}

func syncColor(s models.SyncState) color.Color {
	if s == models.SyncActive {
		return lipgloss.Color(theme.Done)
	}
	return lipgloss.Color(theme.Subtle)
}
