package frame

import (
	"fmt"
	"time"
)

// Column is a typed, nullable column abstraction.
type Column interface {
	Name() string
	Kind() Kind
	Len() int
	IsNull(i int) bool
	Value(i int) any
	SetNull(i int)
	NullCount() int
	AppendNull()
	Clone() Column
	Take(rows []int) Column
	Renamed(name string) Column
}

// Cell is the set of Go types a column can hold.
type Cell interface {
	bool | int64 | float64 | string | time.Time
}

// Series is the storage behind every concrete column type.
type Series[T Cell] struct {
	name  string
	kind  Kind
	data  []T
	nulls []bool
}

type (
	BoolColumn   = Series[bool]
	IntColumn    = Series[int64]
	FloatColumn  = Series[float64]
	StringColumn = Series[string]
	TimeColumn   = Series[time.Time]
)

func newSeries[T Cell](name string, kind Kind, n int) *Series[T] {
	return &Series[T]{name: name, kind: kind, data: make([]T, n), nulls: make([]bool, n)}
}

func NewBoolColumn(name string, n int) *BoolColumn { return newSeries[bool](name, KindBool, n) }
func NewIntColumn(name string, n int) *IntColumn   { return newSeries[int64](name, KindInt, n) }
func NewFloatColumn(name string, n int) *FloatColumn {
	return newSeries[float64](name, KindFloat, n)
}
func NewStringColumn(name string, n int) *StringColumn {
	return newSeries[string](name, KindString, n)
}
func NewTimeColumn(name string, n int) *TimeColumn { return newSeries[time.Time](name, KindTime, n) }

// NewColumn allocates an all-null column of the given kind.
func NewColumn(name string, k Kind, n int) Column {
	var c Column
	switch k {
	case KindBool:
		c = NewBoolColumn(name, n)
	case KindInt:
		c = NewIntColumn(name, n)
	case KindFloat:
		c = NewFloatColumn(name, n)
	case KindString:
		c = NewStringColumn(name, n)
	case KindTime:
		c = NewTimeColumn(name, n)
	default:
		panic("invalid column kind")
	}
	for i := 0; i < n; i++ {
		c.SetNull(i)
	}
	return c
}

// NewFloatColumnFrom copies values; valid may be nil when every value is present.
func NewFloatColumnFrom(name string, values []float64, valid []bool) *FloatColumn {
	c := NewFloatColumn(name, len(values))
	copy(c.data, values)
	for i := range c.nulls {
		c.nulls[i] = valid != nil && !valid[i]
	}
	return c
}

func NewTimeColumnFrom(name string, values []time.Time) *TimeColumn {
	c := NewTimeColumn(name, len(values))
	copy(c.data, values)
	return c
}

func (c *Series[T]) Name() string      { return c.name }
func (c *Series[T]) Kind() Kind        { return c.kind }
func (c *Series[T]) Len() int          { return len(c.data) }
func (c *Series[T]) IsNull(i int) bool { return c.nulls[i] }
func (c *Series[T]) SetNull(i int)     { c.nulls[i] = true }
func (c *Series[T]) Get(i int) (T, bool) {
	return c.data[i], !c.nulls[i]
}

// Value returns row i boxed, or nil when it is null.
func (c *Series[T]) Value(i int) any {
	if c.nulls[i] {
		return nil
	}
	return c.data[i]
}

func (c *Series[T]) Set(i int, v T) { c.data[i] = v; c.nulls[i] = false }
func (c *Series[T]) AppendNull() {
	var zero T
	c.data = append(c.data, zero)
	c.nulls = append(c.nulls, true)
}
func (c *Series[T]) Append(v T) { c.data = append(c.data, v); c.nulls = append(c.nulls, false) }

func (c *Series[T]) NullCount() int {
	n := 0
	for _, null := range c.nulls {
		if null {
			n++
		}
	}
	return n
}

func (c *Series[T]) Clone() Column {
	return &Series[T]{
		name:  c.name,
		kind:  c.kind,
		data:  append([]T(nil), c.data...),
		nulls: append([]bool(nil), c.nulls...),
	}
}

func (c *Series[T]) Take(rows []int) Column {
	out := newSeries[T](c.name, c.kind, len(rows))
	for i, r := range rows {
		if r < 0 || c.nulls[r] {
			out.nulls[i] = true
			continue
		}
		out.data[i] = c.data[r]
	}
	return out
}

func (c *Series[T]) Renamed(name string) Column {
	out := c.Clone().(*Series[T])
	out.name = name
	return out
}

// Float reads a numeric column as float64 values plus a validity mask.
func Float(c Column) ([]float64, []bool, error) {
	n := c.Len()
	vals := make([]float64, n)
	valid := make([]bool, n)
	switch col := c.(type) {
	case *FloatColumn:
		for i := 0; i < n; i++ {
			vals[i], valid[i] = col.Get(i)
		}
	case *IntColumn:
		for i := 0; i < n; i++ {
			v, ok := col.Get(i)
			vals[i], valid[i] = float64(v), ok
		}
	default:
		return nil, nil, fmt.Errorf("column %s is %s, not numeric", c.Name(), c.Kind())
	}
	return vals, valid, nil
}

// Present returns only the non-null entries of vals.
func Present(vals []float64, valid []bool) []float64 {
	out := make([]float64, 0, len(vals))
	for i, v := range vals {
		if valid[i] {
			out = append(out, v)
		}
	}
	return out
}
