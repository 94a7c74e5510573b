package timeseries

import "github.com/wdm0006/industryts/pkg/frame"

// Schema is the shape of a Data value, used to validate a pipeline without
// running it.
type Schema struct {
	TimeColumn string
	Columns    []frame.ColumnSchema
	// Rows is the row count, or negative when unknown.
	Rows int
}

// NewSchema builds a schema with an unknown row count.
func NewSchema(timeColumn string, cols ...frame.ColumnSchema) Schema {
	return Schema{TimeColumn: timeColumn, Columns: cols, Rows: -1}
}

func (s Schema) Names() []string {
	return frame.Schema{Columns: s.Columns}.Names()
}

func (s Schema) Lookup(name string) (frame.ColumnSchema, bool) {
	return frame.Schema{Columns: s.Columns}.Lookup(name)
}

func (s Schema) RequireColumn(name string) (frame.ColumnSchema, error) {
	cs, ok := s.Lookup(name)
	if !ok {
		return cs, &ColumnNotFoundError{Column: name, Available: s.Names()}
	}
	return cs, nil
}

// RequireNumeric checks that every named column exists and holds int or float
// values.
func (s Schema) RequireNumeric(names ...string) error {
	for _, name := range names {
		cs, err := s.RequireColumn(name)
		if err != nil {
			return err
		}
		if !cs.Type.Numeric() {
			return &TypeIncompatibleError{Column: name, Expected: "numeric", Got: cs.Type}
		}
	}
	return nil
}

// RequireTime checks that the time column exists and holds datetimes.
func (s Schema) RequireTime() error {
	cs, ok := s.Lookup(s.TimeColumn)
	if !ok {
		return &TimeColumnNotFoundError{Column: s.TimeColumn}
	}
	if cs.Type != frame.KindTime {
		return &TypeIncompatibleError{Column: s.TimeColumn, Expected: "datetime", Got: cs.Type}
	}
	return nil
}

// Features lists every column except the time column.
func (s Schema) Features() []string {
	out := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name != s.TimeColumn {
			out = append(out, c.Name)
		}
	}
	return out
}

// NumericFeatures lists the int and float feature columns.
func (s Schema) NumericFeatures() []string {
	out := make([]string, 0, len(s.Columns))
	for _, c := range s.Columns {
		if c.Name != s.TimeColumn && c.Type.Numeric() {
			out = append(out, c.Name)
		}
	}
	return out
}
