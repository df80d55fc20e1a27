package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyKey is returned when a patch tries to write an empty key.
	ErrEmptyKey = errors.New("key cannot be empty")
	// ErrNilValue is returned when a patch tries to put a nil value.
	ErrNilValue = errors.New("value cannot be nil")
	// ErrClosed is returned by every operation on a closed database.
	ErrClosed = errors.New("database is closed")
)

// Error is a failure of a store operation. Op names the operation ("open",
// "snapshot", "merge", ...) and Err is the underlying cause. The store never
// retries; the caller decides what to do.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}
