package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrState         = errors.New("invalid state")
	ErrTemporal      = errors.New("invalid timestamp")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
// Mutating operations validate every field before giving up, so the caller
// always receives the full batch, never just the first failure.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// StateError reports an operation that is not allowed in the drop point's
// current lifecycle state, e.g. removing an already removed drop point.
type StateError struct {
	Number int
	Op     string
	Reason string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s drop point %d: %s", e.Op, e.Number, e.Reason)
}

func (e *StateError) Unwrap() error { return ErrState }

// NewStateError creates a StateError for the given operation.
func NewStateError(number int, op, reason string) *StateError {
	return &StateError{Number: number, Op: op, Reason: reason}
}

// TemporalError reports a timestamp outside the window an operation
// accepts: in the future, or before the drop point was created.
type TemporalError struct {
	Field  string
	Time   time.Time
	Reason string
}

func (e *TemporalError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Field, e.Time.Format(time.RFC3339), e.Reason)
}

func (e *TemporalError) Unwrap() error { return ErrTemporal }

// NewTemporalError creates a TemporalError for the given field.
func NewTemporalError(field string, t time.Time, reason string) *TemporalError {
	return &TemporalError{Field: field, Time: t, Reason: reason}
}
