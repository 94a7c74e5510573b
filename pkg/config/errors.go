package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfig is the category matched by every configuration error.
var ErrConfig = errors.New("config error")

// Position locates an operation inside a pipeline document. Index is the
// zero-based position in the operations list, -1 when unknown. Line is
// 1-based, 0 when unknown.
type Position struct {
	Index int
	Line  int
}

// NoPosition is the position of an error not yet tied to a document.
var NoPosition = Position{Index: -1}

func (p Position) String() string {
	switch {
	case p.Index < 0:
		return ""
	case p.Line > 0:
		return fmt.Sprintf("operations[%d] (line %d)", p.Index, p.Line)
	default:
		return fmt.Sprintf("operations[%d]", p.Index)
	}
}

func (p Position) prefix() string {
	if s := p.String(); s != "" {
		return s + ": "
	}
	return ""
}

func (p *Position) locate(pos Position) {
	if p.Index < 0 {
		*p = pos
	}
}

type locatable interface {
	locate(pos Position)
}

// PositionedError ties an error that has no position of its own to an
// operation of a document.
type PositionedError struct {
	Position
	Err error
}

func (e *PositionedError) Error() string { return e.prefix() + e.Err.Error() }
func (e *PositionedError) Unwrap() error { return e.Err }

// Locate stamps pos onto the first config error in err's chain that has no
// position yet. Any other error is wrapped in a PositionedError.
func Locate(err error, pos Position) error {
	if err == nil {
		return nil
	}
	var l locatable
	if errors.As(err, &l) {
		l.locate(pos)
		return err
	}
	if pos.Index < 0 {
		return err
	}
	return &PositionedError{Position: pos, Err: err}
}

// ParseSyntaxError reports a malformed document.
type ParseSyntaxError struct {
	Format string
	Line   int
	Column int
	Msg    string
}

func (e *ParseSyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s syntax error at line %d, column %d: %s", e.Format, e.Line, e.Column, e.Msg)
	}
	return fmt.Sprintf("%s syntax error: %s", e.Format, e.Msg)
}

func (e *ParseSyntaxError) Is(target error) bool { return target == ErrConfig }

// UnknownOperationTypeError reports a `type` that no registered factory
// handles.
type UnknownOperationTypeError struct {
	Position
	Type       string
	Known      []string
	Suggestion string
}

func (e *UnknownOperationTypeError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%sunknown operation type %q", e.prefix(), e.Type)
	if e.Suggestion != "" {
		fmt.Fprintf(&b, " (did you mean %q?)", e.Suggestion)
	}
	if len(e.Known) > 0 {
		fmt.Fprintf(&b, "; valid types: %s", strings.Join(e.Known, ", "))
	}
	return b.String()
}

func (e *UnknownOperationTypeError) Is(target error) bool { return target == ErrConfig }

// MissingParameterError reports a required field that is absent.
type MissingParameterError struct {
	Position
	Op    string
	Field string
	// Found is a present but unread key close enough to Field to be a typo.
	Found string
}

func (e *MissingParameterError) Error() string {
	var b strings.Builder
	b.WriteString(e.prefix())
	if e.Op != "" {
		b.WriteString(e.Op + ": ")
	}
	fmt.Fprintf(&b, "missing required parameter %q", e.Field)
	if e.Found != "" {
		fmt.Fprintf(&b, " (found %q; did you mean %q?)", e.Found, e.Field)
	}
	return b.String()
}

func (e *MissingParameterError) Is(target error) bool { return target == ErrConfig }

// TypeMismatchError reports a field whose value has the wrong kind.
type TypeMismatchError struct {
	Position
	Op       string
	Field    string
	Expected string
	Got      string
}

func (e *TypeMismatchError) Error() string {
	op := ""
	if e.Op != "" {
		op = e.Op + ": "
	}
	return fmt.Sprintf("%s%sparameter %q expects %s, got %s", e.prefix(), op, e.Field, e.Expected, e.Got)
}

func (e *TypeMismatchError) Is(target error) bool { return target == ErrConfig }

// UnknownParameterError reports a field the operation does not accept.
type UnknownParameterError struct {
	Position
	Op         string
	Field      string
	Suggestion string
}

func (e *UnknownParameterError) Error() string {
	msg := fmt.Sprintf("%s%s: unknown parameter %q", e.prefix(), e.Op, e.Field)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

func (e *UnknownParameterError) Is(target error) bool { return target == ErrConfig }
