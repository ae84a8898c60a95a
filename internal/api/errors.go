package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthorized is returned when Boosty rejects the supplied credentials.
// The user has to re-export a fresh cookie and authorization header.
var ErrUnauthorized = errors.New("boosty: unauthorized, credentials rejected or expired")

// NoUsernameError is returned when the remote reports the author handle does
// not exist.
type NoUsernameError struct {
	Author string
}

func (e *NoUsernameError) Error() string {
	return fmt.Sprintf("boosty: username not found: %s", e.Author)
}

// UnknownError covers any unexpected non-2xx status from the API.
type UnknownError struct {
	Status  int
	Details string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("boosty: unknown error [%d]: %s", e.Status, e.Details)
}

// FieldError is one field-level diagnostic inside a ValidationError.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError is returned when a response does not match the expected
// structure. It usually means the API changed shape and the client needs an
// update; the per-field diagnostics go into the bug report.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "boosty: response validation error"
	}
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "boosty: response validation error: " + strings.Join(parts, "; ")
}

func validationErr(field, format string, args ...any) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: fmt.Sprintf(format, args...)}}}
}
