package huhforms

import (
	"errors"
	"strings"

	"charm.land/huh/v2"
)

// CreateTaskForm creates a huh form for adding/editing a task
// The form uses pointers to update values in place
func CreateTaskForm(title *string, confirm *bool, editing bool) *huh.Form {
	heading := "New task"
	if editing {
		heading = "Edit task"
	}

	fields := []huh.Field{
		huh.NewInput().
			Key("title").
			Title(heading).
			Placeholder("Enter task title...").
			Validate(validateTitle).
			Value(title),
		huh.NewConfirm().
			Key("confirm").
			Title("Save this task?").
			Affirmative("Yes").
			Negative("No").
			Value(confirm),
	}

	form := huh.NewForm(huh.NewGroup(fields...))
	return form.WithShowHelp(false)
}

func validateTitle(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("title must not be empty")
	}
	return nil
}
