/*
errors.go - Centralized error taxonomy for the rota engine

PURPOSE:
  All error types in one place. Three categories cover every failure the
  public operations can produce:

  1. Validation errors - malformed or logically inconsistent input,
     rejected before any write is attempted
  2. Not-found errors  - an id or series that does not exist; a normal,
     expected outcome (e.g. double-click delete)
  3. Storage errors    - the persistence layer failed to commit or query

USAGE:
  Callers classify with errors.Is / errors.As:

    if rota.IsNotFound(err) {
        // already removed, not a failure
    }

SEE ALSO:
  - materializer.go: produces ValidationError
  - store.go: store implementations produce NotFoundError / StorageError
*/
package rota

import (
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrValidation is the root of every input validation failure.
	ErrValidation = errors.New("invalid input")

	// ErrNotFound is returned when an operation targets an instance or
	// series that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrStorage is returned when the persistence layer fails.
	ErrStorage = errors.New("storage failure")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// FieldViolation names one violated field and why.
type FieldViolation struct {
	Field   string
	Message string
}

// ValidationError lists every violated field of a rejected input. It is
// always produced before any write is attempted.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Fields returns the violated field names, in input order.
func (e *ValidationError) Fields() []string {
	fields := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		fields[i] = v.Field
	}
	return fields
}

// NotFoundError identifies what was looked up and missed.
type NotFoundError struct {
	Kind string // "shift", "time_off", "series"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// StorageError wraps a persistence failure with the operation that hit it.
type StorageError struct {
	Op  string // e.g. "replace template window"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return ErrStorage }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsValidation returns true if the error is due to invalid caller input.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFound returns true if the error indicates a missing instance or series.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

// IsStorage returns true if the persistence layer failed; safe to retry.
func IsStorage(err error) bool { return errors.Is(err, ErrStorage) }

// validator accumulates field violations during input checks.
type validator struct {
	violations []FieldViolation
}

func (v *validator) add(field, format string, args ...any) {
	v.violations = append(v.violations, FieldViolation{
		Field:   field,
		Message: fmt.Sprintf(format, args...),
	})
}

func (v *validator) err() error {
	if len(v.violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: v.violations}
}
