package quality

import (
	"context"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/timeseries"
	"github.com/wdm0006/industryts/pkg/transform/opbase"
)

// ValidateRange fails the step when any value falls outside [Min, Max] or,
// with AllowNulls false, when a column has nulls. The data passes through
// unchanged.
type ValidateRange struct {
	opbase.Base
	Columns    []string
	Min        *float64
	Max        *float64
	AllowNulls bool
}

func NewValidateRange(lo, hi *float64, columns ...string) *ValidateRange {
	return &ValidateRange{
		Base:       opbase.NewBase("validate_range", pipeline.DataQuality, "fail when values fall outside a range"),
		Columns:    columns,
		Min:        lo,
		Max:        hi,
		AllowNulls: true,
	}
}

func newValidateRange(p *config.Params) (pipeline.Operation, error) {
	cols, err := p.StringsOr("columns", nil)
	if err != nil {
		return nil, err
	}
	op := NewValidateRange(nil, nil, cols...)
	if op.Min, err = p.OptionalFloat("min"); err != nil {
		return nil, err
	}
	if op.Max, err = p.OptionalFloat("max"); err != nil {
		return nil, err
	}
	if op.AllowNulls, err = p.BoolOr("allow_nulls", true); err != nil {
		return nil, err
	}
	if op.Min == nil && op.Max == nil && op.AllowNulls {
		return nil, &config.MissingParameterError{Position: config.NoPosition, Op: "validate_range", Field: "min"}
	}
	return op, nil
}

func (o *ValidateRange) Spec() config.OperationSpec {
	spec := opbase.Spec("validate_range", "columns", o.Columns, "min", o.Min, "max", o.Max)
	if !o.AllowNulls {
		spec.Params.Set("allow_nulls", config.Boolean(false))
	}
	return spec
}

func (o *ValidateRange) Validate(s timeseries.Schema) error {
	return s.RequireNumeric(opbase.Targets(s, o.Columns)...)
}

func (o *ValidateRange) Execute(ctx context.Context, d *timeseries.Data) (*timeseries.Data, error) {
	if err := o.Validate(d.Schema()); err != nil {
		return nil, err
	}
	for _, name := range opbase.Targets(d.Schema(), o.Columns) {
		vals, valid, err := opbase.Floats(d, name)
		if err != nil {
			return nil, err
		}
		var bad, nulls int
		for i, v := range vals {
			if !valid[i] {
				nulls++
				continue
			}
			if o.Min != nil && v < *o.Min {
				bad++
			}
			if o.Max != nil && v > *o.Max {
				bad++
			}
		}
		if bad > 0 {
			return nil, pipeline.Invalid(o.Name(), "column %s has %d out-of-range values", name, bad)
		}
		if nulls > 0 && !o.AllowNulls {
			return nil, pipeline.Invalid(o.Name(), "column %s has %d null values", name, nulls)
		}
	}
	return d, nil
}
