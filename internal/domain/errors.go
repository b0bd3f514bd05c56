package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrUnauthorized is returned when an operation is not permitted.
	ErrUnauthorized = errors.New("unauthorized operation")
)

// ValidationError describes a validation failure on a specific field. API
// handlers surface the field and message to clients, so both must stay free
// of internal detail.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for the given field. The
// wrapped err may be nil when there is no underlying cause.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrValidation. Every field-level validation
// failure satisfies errors.Is(err, ErrValidation) even when no cause is
// wrapped.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
