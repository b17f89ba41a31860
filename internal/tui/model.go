package tui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/thenoetrevino/tasks/internal/config"
	"github.com/thenoetrevino/tasks/internal/models"
	taskservice "github.com/thenoetrevino/tasks/internal/services/task"
	"github.com/thenoetrevino/tasks/internal/tui/state"
	"github.com/thenoetrevino/tasks/internal/tui/theme"
)

// operationTimeout bounds a single store call made from the UI
const operationTimeout = 5 * time.Second

// SyncController is the part of the session the UI drives
type SyncController interface {
	ToggleSync(ctx context.Context) error
	SyncState() models.SyncState
}

// Model represents the application state for the TUI
type Model struct {
	Ctx    context.Context
	Tasks  taskservice.Service
	Sync   SyncController // nil when the session cannot sync
	Config *config.Config
	Keys   KeyMap

	UiState           *state.UIState
	FormState         *state.FormState
	NotificationState *state.NotificationState

	items        []models.Task
	updates      chan []models.Task
	subscription *taskservice.Subscription
}

// New creates the TUI model and registers a live query over the task list.
// Call Close once the program has exited.
func New(ctx context.Context, tasks taskservice.Service, sync SyncController, cfg *config.Config) (Model, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	theme.Init(cfg.ColorScheme)

	m := Model{
		Ctx:               ctx,
		Tasks:             tasks,
		Sync:              sync,
		Config:            cfg,
		Keys:              NewKeyMap(cfg.KeyMappings),
		UiState:           state.NewUIState(),
		FormState:         state.NewFormState(),
		NotificationState: state.NewNotificationState(),
		updates:           make(chan []models.Task, 1),
	}

	sub, err := tasks.RegisterObserver(ctx, m.publishChange)
	if err != nil {
		return Model{}, fmt.Errorf("failed to watch tasks: %w", err)
	}
	m.subscription = sub

	return m, nil
}

// publishChange runs on the observer goroutine. Only the latest result set
// is kept when the UI falls behind.
func (m Model) publishChange(tasks []models.Task) {
	for {
		select {
		case m.updates <- tasks:
			return
		default:
		}
		select {
		case <-m.updates:
		default:
		}
	}
}

// Close stops the live query
func (m Model) Close() {
	m.subscription.Cancel()
}

// Init loads the task list and starts listening for changes
// Required by tea.Model interface
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.loadTasks(), m.waitForChange())
}

// Items returns the tasks currently shown
func (m Model) Items() []models.Task {
	return m.items
}

// SelectedTask returns the task under the cursor, if any
func (m Model) SelectedTask() (models.Task, bool) {
	if len(m.items) == 0 {
		return models.Task{}, false
	}
	idx := m.UiState.Selected()
	if idx < 0 || idx >= len(m.items) {
		return models.Task{}, false
	}
	return m.items[idx], true
}

// DbContext returns a context for a single store call
func (m Model) DbContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(m.Ctx, operationTimeout)
}

func (m Model) loadTasks() tea.Cmd {
	includeDeleted := m.UiState.ShowDeleted()
	return func() tea.Msg {
		ctx, cancel := m.DbContext()
		defer cancel()

		tasks, err := m.Tasks.GetTasks(ctx, includeDeleted)
		if err != nil {
			return ErrorMsg{Op: "load tasks", Err: err}
		}
		return TasksLoadedMsg{Tasks: tasks}
	}
}

func (m Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		select {
		case tasks := <-m.updates:
			return TasksChangedMsg{Tasks: tasks}
		case <-m.Ctx.Done():
			return nil
		}
	}
}

func (m *Model) setItems(tasks []models.Task) {
	m.items = tasks
	m.UiState.ClampSelection(len(tasks))
}

func (m *Model) reportError(op string, err error) {
	slog.Error("tui operation failed", "op", op, "error", err)
	m.NotificationState.Add(state.LevelError, fmt.Sprintf("%s: %v", op, err))
}

func (m Model) syncState() models.SyncState {
	if m.Sync == nil {
		return models.SyncNotStarted
	}
	return m.Sync.SyncState()
}
