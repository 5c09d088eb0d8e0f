// Package enrich turns listing entries into output records by looking up
// their files and rendering their metadata pages.
package enrich

import (
	"errors"
	"fmt"
)

// ErrRunAborted indicates the run stopped after too many consecutive render failures.
var ErrRunAborted = errors.New("run aborted")

// AbortError is returned by Run when the failure threshold is reached.
// It matches both ErrRunAborted and the last render error.
type AbortError struct {
	Failures int
	Err      error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%v after %d consecutive render failures: %v", ErrRunAborted, e.Failures, e.Err)
}

func (e *AbortError) Unwrap() []error {
	return []error{ErrRunAborted, e.Err}
}
