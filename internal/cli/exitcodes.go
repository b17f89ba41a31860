package cli

import (
	"errors"

	taskservice "github.com/thenoetrevino/tasks/internal/services/task"
)

// Exit codes for CLI commands.
// These codes follow Unix conventions and provide consistent error reporting
// across all CLI commands.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitError indicates a general error occurred.
	// Use for: Store failures, sync failures, unexpected failures,
	// or any error that doesn't fit the specific categories below.
	ExitError = 1

	// ExitUsage indicates incorrect command usage.
	// Use for: Invalid flag combinations, or a task id substring that
	// matches more than one task.
	ExitUsage = 2

	// ExitNotFound indicates a requested task was not found.
	ExitNotFound = 3

	// ExitDataErr indicates invalid or malformed data.
	// Use for: Invalid JSON input or rows that cannot be decoded.
	ExitDataErr = 4

	// ExitValidation indicates a validation error.
	// Use for: Empty titles, short task ids, malformed TASK_ID,TITLE pairs.
	ExitValidation = 5
)

// ExitCodeFor maps a task service error to its exit code
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, taskservice.ErrNotFound):
		return ExitNotFound
	case errors.Is(err, taskservice.ErrAmbiguous):
		return ExitUsage
	case errors.Is(err, taskservice.ErrInvalidArgument):
		return ExitValidation
	default:
		return ExitError
	}
}

// ErrorCode maps a task service error to the code reported in JSON output
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, taskservice.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, taskservice.ErrAmbiguous):
		return "AMBIGUOUS"
	case errors.Is(err, taskservice.ErrInvalidArgument):
		return "INVALID_ARGUMENT"
	case errors.Is(err, taskservice.ErrStoreFailure):
		return "STORE_FAILURE"
	default:
		return "ERROR"
	}
}
