// Package opbase holds the pieces shared by the built-in operations: static
// metadata, column selection and float column access.
package opbase

import (
	"strconv"
	"strings"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/frame"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/timeseries"
)

const Version = "1.0.0"

// Base implements Name and Metadata.
type Base struct {
	meta pipeline.Metadata
}

func NewBase(name string, c pipeline.Category, description string) Base {
	return Base{meta: pipeline.Metadata{Name: name, Description: description, Version: Version, Category: c}}
}

func (b Base) Name() string                { return b.meta.Name }
func (b Base) Metadata() pipeline.Metadata { return b.meta }

// Targets returns cols, or the numeric feature columns when cols is empty.
func Targets(s timeseries.Schema, cols []string) []string {
	if len(cols) > 0 {
		return cols
	}
	return s.NumericFeatures()
}

// Floats reads a numeric column of d.
func Floats(d *timeseries.Data, name string) ([]float64, []bool, error) {
	col, ok := d.Frame().ColumnByName(name)
	if !ok {
		return nil, nil, &timeseries.ColumnNotFoundError{Column: name, Available: d.Frame().Schema().Names()}
	}
	if !col.Kind().Numeric() {
		return nil, nil, &timeseries.TypeIncompatibleError{Column: name, Expected: "numeric", Got: col.Kind()}
	}
	return frame.Float(col)
}

// Put adds c to f, replacing a column of the same name.
func Put(f *frame.Frame, c frame.Column) error {
	if _, exists := f.ColumnByName(c.Name()); exists {
		return f.ReplaceColumn(c)
	}
	return f.AddColumn(c)
}

// Spec builds a document entry, leaving out nil and empty values.
func Spec(typ string, kv ...any) config.OperationSpec {
	var t config.Table
	for i := 0; i+1 < len(kv); i += 2 {
		key := kv[i].(string)
		switch v := kv[i+1].(type) {
		case nil:
			continue
		case *float64:
			if v == nil {
				continue
			}
			t.Set(key, config.Float(*v))
			continue
		case []string:
			if len(v) == 0 {
				continue
			}
		case string:
			if v == "" {
				continue
			}
		}
		val, err := config.ValueOf(kv[i+1])
		if err != nil {
			panic(err)
		}
		t.Set(key, val)
	}
	return config.OperationSpec{Type: typ, Params: t}
}

// Choice reads a string parameter restricted to allowed values. An empty def
// makes the parameter required.
func Choice(p *config.Params, key, def string, allowed ...string) (string, error) {
	var v string
	var err error
	if def == "" {
		v, err = p.String(key)
	} else {
		v, err = p.StringOr(key, def)
	}
	if err != nil {
		return "", err
	}
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", &config.TypeMismatchError{
		Position: config.NoPosition,
		Op:       p.Op(),
		Field:    key,
		Expected: "one of " + strings.Join(allowed, ", "),
		Got:      strconv.Quote(v),
	}
}
