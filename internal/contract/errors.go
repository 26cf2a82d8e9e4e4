package contract

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the analysis pipeline. Callers match them with errors.Is.
var (
	// ErrInvalidConfig is returned when the configuration fails validation.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrRepositoryNotFound is returned when the repository path is missing or is not a repository root.
	ErrRepositoryNotFound = errors.New("repository not found")

	// ErrCorruptHistory is returned when a commit, tree or diff cannot be read.
	ErrCorruptHistory = errors.New("corrupt history")

	// ErrOutputWrite is returned when results cannot be written to their destination.
	ErrOutputWrite = errors.New("output write failure")
)

// FieldError names the configuration field that failed validation.
type FieldError struct {
	Field  string
	Value  any
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: --%s=%v %s", ErrInvalidConfig, e.Field, e.Value, e.Reason)
}

// Unwrap makes errors.Is(err, ErrInvalidConfig) hold for every FieldError.
func (e *FieldError) Unwrap() error {
	return ErrInvalidConfig
}

func invalidField(field string, value any, format string, args ...any) error {
	return &FieldError{Field: field, Value: value, Reason: fmt.Sprintf(format, args...)}
}
