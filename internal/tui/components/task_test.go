package components

import (
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"

	"github.com/thenoetrevino/tasks/internal/models"
)

func TestRenderTaskRow(t *testing.T) {
	row := ansi.Strip(RenderTaskRow(models.Task{ID: "a", Title: "Open task"}, false, 0))
	assert.Contains(t, row, "[ ] Open task")

	row = ansi.Strip(RenderTaskRow(models.Task{ID: "b", Title: "Done task", Done: true}, true, 0))
	assert.Contains(t, row, "> [x] Done task")

	row = ansi.Strip(RenderTaskRow(models.Task{ID: "c", Title: "Gone", Deleted: true}, false, 0))
	assert.Contains(t, row, "Gone")
	assert.Contains(t, row, "(deleted)")
}

func TestRenderTaskRow_Truncates(t *testing.T) {
	long := strings.Repeat("word ", 40)
	row := RenderTaskRow(models.Task{ID: "a", Title: long}, false, 30)
	assert.LessOrEqual(t, lipgloss.Width(row), 30)
	assert.Contains(t, ansi.Strip(row), "…")
}

func TestRenderStatusBar(t *testing.T) {
	bar := RenderStatusBar(StatusBarProps{
		Width:     100,
		Mode:      "NORMAL",
		SyncState: models.SyncActive,
		Open:      2,
		Done:      1,
	})
	assert.Contains(t, bar, "syncing")
	assert.Contains(t, bar, "2 open, 1 done")
	assert.Contains(t, bar, "press ? for help")
	assert.Equal(t, 100, lipgloss.Width(bar))

	bar = RenderStatusBar(StatusBarProps{Width: 100, Mode: "NORMAL", LastError: "delete task: boom"})
	assert.Contains(t, bar, "delete task: boom")
	assert.NotContains(t, bar, "press ? for help")
	assert.Contains(t, bar, "sync off")
}
