package storage

import "errors"

var (
	ErrNotFound  = errors.New("task not found")
	ErrMissingID = errors.New("task has no id")
	ErrHasID     = errors.New("task already has an id")
)

// Error is returned by every Store operation that fails. The failed
// operation should be abandoned; state read before the call is still valid.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}
