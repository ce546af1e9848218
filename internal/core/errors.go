package core

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors returned by the domain services. Callers classify failures
// with errors.Is; the web adapter maps each to an HTTP status.
var (
	// ErrNotFound indicates a referenced plan, request, section, or item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBudgetExceeded indicates a purchase request total exceeds the
	// remaining budget of its target plan. No mutation has occurred.
	ErrBudgetExceeded = errors.New("budget exceeded")

	// ErrSequenceConflict indicates a generated reference number collided with
	// an existing one and retries were exhausted.
	ErrSequenceConflict = errors.New("reference number conflict")

	// ErrInvalidStateTransition indicates a lifecycle operation was attempted
	// from a status that does not permit it.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrForbidden indicates the acting user lacks ownership or the admin
	// flag required for the operation.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError reports a malformed or incomplete submitted structure.
// Fields holds one human-readable message per offending field or collection.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields, "; "))
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
