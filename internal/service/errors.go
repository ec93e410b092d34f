package service

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy surfaced across the service boundary. Handlers map
// these onto HTTP statuses; anything else is treated as internal.
var (
	// ErrNotFound: the referenced submission does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict: the submission already left the pending state. Not
	// retryable without a fresh view.
	ErrConflict = errors.New("already reviewed")
	// ErrTxAborted: the atomic approve-and-publish unit could not
	// commit. Safe to retry; the pending re-check prevents double
	// effects.
	ErrTxAborted = errors.New("transaction aborted")
	// ErrForbidden: the caller is not an allowed reviewer.
	ErrForbidden = errors.New("forbidden")
)

// FieldError names one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports every offending field in one response rather
// than failing on the first.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
