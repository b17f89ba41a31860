package state

import (
	"charm.land/huh/v2"
)

// FormState holds the task form and the values its fields write into.
type FormState struct {
	Form          *huh.Form
	EditingTaskID string // "" when creating a task
	FormTitle     string
	FormConfirm   bool
}

// NewFormState creates a new FormState with default values.
func NewFormState() *FormState {
	return &FormState{FormConfirm: true}
}

// Reset prepares the fields for a new form. editingID is "" for a new task.
func (s *FormState) Reset(editingID, title string) {
	s.Form = nil
	s.EditingTaskID = editingID
	s.FormTitle = title
	s.FormConfirm = true
}

// Clear drops the form once it is submitted or aborted
func (s *FormState) Clear() {
	s.Reset("", "")
}

// IsEditing reports whether the form edits an existing task
func (s *FormState) IsEditing() bool {
	return s.EditingTaskID != ""
}
