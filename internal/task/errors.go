package task

import (
	"errors"
	"fmt"
)

var ErrInvalidText = errors.New("text must not be empty")

// BackendError reports that the persistence backend was unreachable or a
// query failed. The operation made no change visible to callers.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }
