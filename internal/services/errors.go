package services

import (
	"errors"
	"fmt"
	"strings"
)

// Common service errors
var (
	ErrNotFound        = errors.New("record not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidState    = errors.New("invalid state transition")
	ErrDuplicate       = errors.New("duplicate record")
)

// ValidationError carries per-field messages for a rejected request. It is
// surfaced as HTTP 422 with a field-keyed error map.
type ValidationError struct {
	Fields map[string][]string
}

// NewValidationError creates an empty validation error
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string][]string)}
}

// Add appends a message for a field and returns the error for chaining
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields[field] = append(e.Fields[field], message)
	return e
}

// HasErrors reports whether any field message was recorded
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, messages := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(messages, "; ")))
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// AsValidationError unwraps err into a *ValidationError when possible
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
