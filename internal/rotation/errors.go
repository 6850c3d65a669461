package rotation

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a template or assignment id does not resolve.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the actor is not the assignment's current
	// assignee.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState is returned when an assignment's status disallows the
	// requested transition.
	ErrInvalidState = errors.New("invalid state")
)

// ValidationError rejects a template save: empty or non-member rotation
// lists, unrecognized frequency descriptors. Nothing is persisted when one is
// returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

func validationErrorf(format string, args ...any) *ValidationError {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
