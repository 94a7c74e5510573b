package timeseries

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wdm0006/industryts/pkg/frame"
)

// ErrSchema is the category matched by every schema error.
var ErrSchema = errors.New("schema error")

// ColumnNotFoundError reports a column the data does not carry.
type ColumnNotFoundError struct {
	Column    string
	Available []string
}

func (e *ColumnNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("column not found: %s", e.Column)
	}
	return fmt.Sprintf("column not found: %s (available: %s)", e.Column, strings.Join(e.Available, ", "))
}

func (e *ColumnNotFoundError) Is(target error) bool { return target == ErrSchema }

// TimeColumnNotFoundError reports a missing time column.
type TimeColumnNotFoundError struct {
	Column string
}

func (e *TimeColumnNotFoundError) Error() string {
	if e.Column == "" {
		return "time column not found: data has no columns"
	}
	return fmt.Sprintf("time column not found: %s", e.Column)
}

func (e *TimeColumnNotFoundError) Is(target error) bool { return target == ErrSchema }

// TypeIncompatibleError reports a column whose type does not fit the operation.
type TypeIncompatibleError struct {
	Column   string
	Expected string
	Got      frame.Kind
}

func (e *TypeIncompatibleError) Error() string {
	return fmt.Sprintf("column %s has type %s, expected %s", e.Column, e.Got, e.Expected)
}

func (e *TypeIncompatibleError) Is(target error) bool { return target == ErrSchema }
