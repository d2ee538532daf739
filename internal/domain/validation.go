package domain

import (
	"errors"
	"sort"
	"strings"
)

// ValidationError reports per-field problems with a request. It carries the
// EINVALID code so generic error handling treats it as a 400.
type ValidationError struct {
	Op     string
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + ": " + e.Fields[name]
	}
	msg := "validation failed: " + strings.Join(parts, "; ")
	if e.Op != "" {
		return e.Op + ": " + msg
	}
	return msg
}

// Unwrap exposes an *Error so ErrorCode and ErrorMessage work unchanged.
func (e *ValidationError) Unwrap() error {
	return &Error{Code: EINVALID, Op: e.Op, Message: "Validation failed"}
}

func NewValidationError(op, field, message string) error {
	return &ValidationError{Op: op, Fields: map[string]string{field: message}}
}

// AddFieldError adds a field to err when it is a ValidationError, and
// otherwise starts a new one.
func AddFieldError(err error, field, message string) error {
	var ve *ValidationError
	if errors.As(err, &ve) {
		ve.Fields[field] = message
		return ve
	}
	return NewValidationError(ErrorOp(err), field, message)
}
