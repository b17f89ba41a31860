package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/thenoetrevino/tasks/internal/cli/styles"
	"github.com/thenoetrevino/tasks/internal/models"
)

// syncBanner frames every result set printed by --monitor
const syncBanner = "-------------- Tasks Sync --------------"

const markdownWrap = 80

// RenderTaskLines renders one "id | X/O | title" line per task
func RenderTaskLines(tasks []models.Task) string {
	lines := make([]string, 0, len(tasks))
	for _, task := range tasks {
		lines = append(lines, styles.TaskLine(task))
	}
	return strings.Join(lines, "\n")
}

// TasksMarkdown renders the tasks as a GitHub-flavoured checklist
func TasksMarkdown(tasks []models.Task) string {
	var b strings.Builder
	b.WriteString("# Tasks\n\n")
	for _, task := range tasks {
		box := " "
		if task.Done {
			box = "x"
		}
		title := task.Title
		if task.Deleted {
			title = "~~" + title + "~~"
		}
		fmt.Fprintf(&b, "- [%s] %s `%s`\n", box, title, task.ID)
	}
	return b.String()
}

// RenderMarkdown renders the checklist for a terminal, falling back to the
// raw markdown when the renderer cannot be built
func RenderMarkdown(tasks []models.Task) string {
	md := TasksMarkdown(tasks)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(markdownWrap),
	)
	if err != nil {
		return md
	}

	rendered, err := renderer.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(rendered, "\n")
}

// RenderMonitorFrame renders the block printed for each monitor delivery
func RenderMonitorFrame(tasks []models.Task) string {
	return syncBanner + "\n" + RenderTaskLines(tasks) + "\n" + strings.Repeat("-", len(syncBanner))
}
