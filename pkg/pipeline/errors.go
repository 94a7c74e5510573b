package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOperation is the category of InvalidOperationError.
	ErrOperation = errors.New("operation error")
	// ErrRegistry is the category of registry lookups and registrations.
	ErrRegistry = errors.New("registry error")

	ErrSealed   = errors.New("pipeline is sealed")
	ErrNoConfig = errors.New("pipeline has no configuration to save")
)

// InvalidOperationError reports an operation-internal invariant violation,
// such as too few rows or a zero standard deviation.
type InvalidOperationError struct {
	Operation string
	Reason    string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Operation, e.Reason)
}

func (e *InvalidOperationError) Is(target error) bool { return target == ErrOperation }

// Invalid is shorthand for building an InvalidOperationError.
func Invalid(op, format string, args ...any) error {
	return &InvalidOperationError{Operation: op, Reason: fmt.Sprintf(format, args...)}
}

type DuplicateRegistrationError struct {
	Name string
}

func (e *DuplicateRegistrationError) Error() string {
	return fmt.Sprintf("operation %q is already registered", e.Name)
}

func (e *DuplicateRegistrationError) Is(target error) bool { return target == ErrRegistry }

// UnknownOperationError reports a name with no registered factory.
type UnknownOperationError struct {
	Name       string
	Known      []string
	Suggestion string
}

func (e *UnknownOperationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "unknown operation %q", e.Name)
	if e.Suggestion != "" {
		fmt.Fprintf(&b, " (did you mean %q?)", e.Suggestion)
	}
	fmt.Fprintf(&b, "; valid operations: %s", strings.Join(e.Known, ", "))
	return b.String()
}

func (e *UnknownOperationError) Is(target error) bool { return target == ErrRegistry }

// StepError is returned when an operation fails during a fail-fast run.
// Metrics holds the measurements of the steps that completed before it.
type StepError struct {
	Index     int
	Operation string
	Err       error
	Metrics   []OperationMetrics
}

func (e *StepError) Error() string {
	return fmt.Sprintf("operation %d (%s) failed: %v", e.Index, e.Operation, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }

// ValidationError is one problem found by a dry run. Index is -1 for
// pipeline-level problems.
type ValidationError struct {
	Index     int
	Operation string
	Err       error
}

func (e ValidationError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("operation %d (%s): %v", e.Index, e.Operation, e.Err)
}

func (e ValidationError) Unwrap() error { return e.Err }

// ValidationErrors collects every problem found by a dry run.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Unwrap exposes every collected error to errors.Is and errors.As.
func (e ValidationErrors) Unwrap() []error {
	out := make([]error, len(e))
	for i, v := range e {
		out[i] = v
	}
	return out
}
