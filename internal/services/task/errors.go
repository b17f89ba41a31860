package task

import (
	"errors"
	"fmt"
)

// Error kinds returned by the task service. Callers classify failures with
// errors.Is against these values.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("no tasks found")
	ErrAmbiguous       = errors.New("more than one task found")
	ErrStoreFailure    = errors.New("store failure")
)

// Validation errors
var (
	ErrEmptyTitle     = fmt.Errorf("%w: task title cannot be empty", ErrInvalidArgument)
	ErrEmptyTaskID    = fmt.Errorf("%w: task id cannot be empty", ErrInvalidArgument)
	ErrEmptySubstring = fmt.Errorf("%w: id substring must not be empty", ErrInvalidArgument)
	ErrEmptyQuery     = fmt.Errorf("%w: query must not be empty", ErrInvalidArgument)
	ErrNilCallback    = fmt.Errorf("%w: observer callback must not be nil", ErrInvalidArgument)
)

// StoreError wraps a failure reported by the document store
type StoreError struct {
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, ErrStoreFailure, e.Err)
}

// Unwrap returns the underlying store error
func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrStoreFailure
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreFailure
}

func storeError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

func notFound(id string) error {
	return fmt.Errorf("%w with id %q", ErrNotFound, id)
}

func ambiguous(id string) error {
	return fmt.Errorf("%w with id %q", ErrAmbiguous, id)
}
