// Package apperr defines the error taxonomy shared across the application.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

// ValidationError carries per-field messages for a rejected mutation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidation builds a ValidationError from field/message pairs.
func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

// ImportError reports a snapshot that failed structural validation.
// The live collection state is guaranteed untouched.
type ImportError struct {
	Reason string
}

func (e *ImportError) Error() string {
	return "import rejected: " + e.Reason
}

// PersistenceError reports a failed snapshot write. The in-memory state
// remains authoritative; the write is retried on the next mutation.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "persistence failed: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
