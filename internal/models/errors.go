package models

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden         = errors.New("access denied")
	ErrInvalid           = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError reports a missing or malformed field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Invalid builds a ValidationError for field.
func Invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// PermissionError reports an operation the actor's role may not perform.
type PermissionError struct {
	Op   string
	Role Role
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("access denied: %s not permitted for role %s", e.Op, e.Role)
}

func (e *PermissionError) Unwrap() error { return ErrForbidden }

// NotFound wraps ErrNotFound with the kind and id of the missing entity.
func NotFound(kind, id string) error {
	return fmt.Errorf("%s %q: %w", kind, id, ErrNotFound)
}
