package tui

import "github.com/thenoetrevino/tasks/internal/models"

// TasksChangedMsg carries a fresh result set from the task observer
type TasksChangedMsg struct {
	Tasks []models.Task
}

// TasksLoadedMsg carries the result of an explicit reload
type TasksLoadedMsg struct {
	Tasks []models.Task
}

// ErrorMsg reports a failed background operation
type ErrorMsg struct {
	Op  string
	Err error
}

// SyncToggledMsg reports the outcome of toggling sync
type SyncToggledMsg struct {
	State models.SyncState
	Err   error
}
