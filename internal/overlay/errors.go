package overlay

import (
	"errors"
	"fmt"
)

var (
	// ErrClassRegistrationFailed means no toast can be created for the rest of the process
	ErrClassRegistrationFailed = errors.New("window class registration failed")
	// ErrWindowCreationFailed is fatal to a single toast only
	ErrWindowCreationFailed = errors.New("window creation failed")
	// ErrPlatformResourceFailure covers DC and bitmap allocation failures during paint
	ErrPlatformResourceFailure = errors.New("platform resource allocation failed")
	// ErrPlatformCallFailed covers non-fatal alpha, redraw and message calls
	ErrPlatformCallFailed = errors.New("platform call failed")
	// ErrPreconditionFailed is returned when a fade cannot start
	ErrPreconditionFailed = errors.New("precondition failed")
)

// Error is an overlay failure. errors.Is matches both Kind and the wrapped cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
