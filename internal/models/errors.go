package models

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the holdings store. Callers branch on these
// with errors.Is for field-level display; none of them indicates a bug.
var (
	// ErrDuplicateSymbol is returned when adding a symbol already held and
	// the duplicate policy is "reject".
	ErrDuplicateSymbol = errors.New("symbol already held")

	// ErrHoldingNotFound is returned when editing an unknown holding id.
	// Deletes of unknown ids are a no-op, not an error.
	ErrHoldingNotFound = errors.New("holding not found")

	// ErrStoreBusy is returned when a mutation is issued while another
	// mutation is still in flight.
	ErrStoreBusy = errors.New("another mutation is in progress")
)

// ValidationError reports a rejected user-owned field value. It is caught
// before any I/O and never mutates state.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a field-specific validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// QuoteFetchError wraps a failed price lookup. The store recovers from it
// locally (pending-price placeholder); it is never surfaced as a fatal add
// failure.
type QuoteFetchError struct {
	Symbol string
	Err    error
}

func (e *QuoteFetchError) Error() string {
	return fmt.Sprintf("quote fetch failed for %s: %v", e.Symbol, e.Err)
}

func (e *QuoteFetchError) Unwrap() error {
	return e.Err
}
