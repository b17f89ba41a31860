package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/thenoetrevino/tasks/internal/models"
	taskservice "github.com/thenoetrevino/tasks/internal/services/task"
)

// Options holds the command flags of a single invocation
type Options struct {
	Add        []string
	Complete   []string
	Incomplete []string
	Toggle     []string
	Title      []string // TASK_ID,TITLE pairs
	Delete     []string
	Query      []string

	List    bool
	ListAll bool
	Monitor bool
	Cleanup bool

	JSON     bool
	Quiet    bool
	Markdown bool
}

// HasCommands reports whether any command flag was given
func (o Options) HasCommands() bool {
	return len(o.Add) > 0 || len(o.Complete) > 0 || len(o.Incomplete) > 0 ||
		len(o.Toggle) > 0 || len(o.Title) > 0 || len(o.Delete) > 0 ||
		len(o.Query) > 0 || o.List || o.ListAll || o.Monitor || o.Cleanup
}

// Runner executes a batch of commands against the task service.
// Every service call and every write to the output happens under mu,
// including monitor deliveries.
type Runner struct {
	tasks taskservice.Service
	out   *OutputFormatter

	mu       sync.Mutex
	firstErr error
}

// NewRunner creates a runner writing through the given formatter
func NewRunner(tasks taskservice.Service, out *OutputFormatter) *Runner {
	return &Runner{tasks: tasks, out: out}
}

// Run executes the commands in a fixed order: add, complete, incomplete,
// toggle, title, delete, cleanup, query, list, monitor. A failing item is
// reported and the batch continues. The returned exit code reflects the
// first failure.
func (r *Runner) Run(ctx context.Context, opts Options) int {
	var sub *taskservice.Subscription
	if opts.Monitor {
		var err error
		sub, err = r.tasks.RegisterObserver(ctx, r.printMonitorFrame)
		if err != nil {
			r.fail("monitor", "", err)
			return ExitCodeFor(r.firstErr)
		}
		defer sub.Cancel()
	}

	for _, title := range opts.Add {
		r.locked(func() { r.add(ctx, title) })
	}
	for _, id := range opts.Complete {
		r.locked(func() { r.setDone(ctx, "complete", id, true) })
	}
	for _, id := range opts.Incomplete {
		r.locked(func() { r.setDone(ctx, "incomplete", id, false) })
	}
	for _, id := range opts.Toggle {
		r.locked(func() { r.toggle(ctx, id) })
	}
	for _, arg := range opts.Title {
		r.locked(func() { r.retitle(ctx, arg) })
	}
	for _, id := range opts.Delete {
		r.locked(func() { r.delete(ctx, id) })
	}
	if opts.Cleanup {
		r.locked(func() { r.cleanup(ctx) })
	}
	for _, q := range opts.Query {
		r.locked(func() { r.query(ctx, q) })
	}
	if opts.List || opts.ListAll {
		r.locked(func() { r.list(ctx, opts.ListAll, opts.Markdown) })
	}

	if opts.Monitor {
		r.locked(func() { r.out.Println("Monitoring tasks for changes. Press Ctrl+C to stop.") })
		<-ctx.Done()
		sub.Cancel()
		r.locked(func() { r.out.Println("Monitoring canceled") })
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return ExitCodeFor(r.firstErr)
}

func (r *Runner) locked(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn()
}

// fail reports a failed item on stderr and remembers the first failure.
// Callers hold r.mu.
func (r *Runner) fail(op, arg string, err error) {
	if r.firstErr == nil {
		r.firstErr = err
	}

	slog.Warn("command failed", "op", op, "arg", arg, "error", err)

	message := op
	if arg != "" {
		message += " " + arg
	}
	message += ": " + err.Error()

	if outErr := r.out.ErrorWithSuggestion(ErrorCode(err), message, suggestionFor(err)); outErr != nil {
		slog.Error("failed to write error output", "error", outErr)
	}
}

func (r *Runner) success(message string, data any) {
	if err := r.out.Success(message, data); err != nil {
		slog.Error("failed to write output", "error", err)
	}
}

func suggestionFor(err error) string {
	switch {
	case errors.Is(err, taskservice.ErrNotFound):
		return "run with --list-all to see task ids"
	case errors.Is(err, taskservice.ErrAmbiguous):
		return "use a longer part of the task id"
	default:
		return ""
	}
}

// validateTaskSubstring rejects id fragments too short to identify a task
func validateTaskSubstring(id string) error {
	if len(id) < models.MinTaskIDSubstring {
		return fmt.Errorf("%w: TASK_ID must be at least %d characters", taskservice.ErrInvalidArgument, models.MinTaskIDSubstring)
	}
	return nil
}

func (r *Runner) resolve(ctx context.Context, id string) (models.Task, error) {
	if err := validateTaskSubstring(id); err != nil {
		return models.Task{}, err
	}
	return r.tasks.FindMatchingTask(ctx, id)
}

func (r *Runner) add(ctx context.Context, title string) {
	if title == "" {
		r.fail("add", title, fmt.Errorf("%w: TITLE must not be empty", taskservice.ErrInvalidArgument))
		return
	}

	id, err := r.tasks.AddTask(ctx, title, false)
	if err != nil {
		r.fail("add", title, err)
		return
	}

	r.success(fmt.Sprintf("Added task: %s: %s", id, title), models.Task{ID: id, Title: title})
}

func (r *Runner) setDone(ctx context.Context, op, id string, done bool) {
	task, err := r.resolve(ctx, id)
	if err != nil {
		r.fail(op, id, err)
		return
	}

	if err := r.tasks.MarkTaskComplete(ctx, task.ID, done); err != nil {
		r.fail(op, id, err)
		return
	}

	message := "Marked task complete: " + task.ID
	if !done {
		message = "Marked task incomplete: " + task.ID
	}
	task.Done = done
	r.success(message, task)
}

func (r *Runner) toggle(ctx context.Context, id string) {
	task, err := r.resolve(ctx, id)
	if err != nil {
		r.fail("toggle", id, err)
		return
	}

	if err := r.tasks.MarkTaskComplete(ctx, task.ID, !task.Done); err != nil {
		r.fail("toggle", id, err)
		return
	}

	task.Done = !task.Done
	r.success("Toggled task completion: "+task.ID, task)
}

func (r *Runner) retitle(ctx context.Context, arg string) {
	id, title, ok := strings.Cut(arg, ",")
	if !ok {
		r.fail("title", arg, fmt.Errorf("%w: argument must be of the form 'TASK_ID,TITLE'", taskservice.ErrInvalidArgument))
		return
	}
	if title == "" {
		r.fail("title", arg, fmt.Errorf("%w: title must not be empty", taskservice.ErrInvalidArgument))
		return
	}

	task, err := r.resolve(ctx, id)
	if err != nil {
		r.fail("title", arg, err)
		return
	}

	if err := r.tasks.UpdateTaskTitle(ctx, task.ID, title); err != nil {
		r.fail("title", arg, err)
		return
	}

	task.Title = title
	r.success(fmt.Sprintf("Changed title of %s to '%s'", task.ID, title), task)
}

func (r *Runner) delete(ctx context.Context, id string) {
	task, err := r.resolve(ctx, id)
	if err != nil {
		r.fail("delete", id, err)
		return
	}

	if err := r.tasks.DeleteTask(ctx, task.ID); err != nil {
		r.fail("delete", id, err)
		return
	}

	task.Deleted = true
	r.success("Deleted task: "+task.ID, task)
}

func (r *Runner) cleanup(ctx context.Context) {
	if err := r.tasks.EvictDeletedTasks(ctx); err != nil {
		r.fail("cleanup", "", err)
		return
	}
	r.success("Evicted all deleted tasks", map[string]any{"evicted": true})
}

func (r *Runner) query(ctx context.Context, statement string) {
	result, err := r.tasks.ExecuteQuery(ctx, statement)
	if err != nil {
		r.fail("query", "["+statement+"]", err)
		return
	}
	r.success(fmt.Sprintf("[%s] result: \n%s", statement, result), json.RawMessage(result))
}

func (r *Runner) list(ctx context.Context, includeDeleted, markdown bool) {
	tasks, err := r.tasks.GetTasks(ctx, includeDeleted)
	if err != nil {
		r.fail("list", "", err)
		return
	}

	switch {
	case r.out.JSON:
		if tasks == nil {
			tasks = []models.Task{}
		}
		r.success("", tasks)
	case r.out.Quiet:
		for _, task := range tasks {
			r.success("", task)
		}
	case len(tasks) == 0:
		r.out.Println("No tasks found")
	case markdown:
		r.out.Println(RenderMarkdown(tasks))
	default:
		r.out.Println(RenderTaskLines(tasks))
	}
}

// printMonitorFrame runs on the observer goroutine
func (r *Runner) printMonitorFrame(tasks []models.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(tasks) == 0 {
		return
	}
	if r.out.JSON {
		r.success("", tasks)
		return
	}
	r.out.Println(RenderMonitorFrame(tasks))
}
