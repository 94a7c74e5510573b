package scale

import (
	"context"

	"gonum.org/v1/gonum/floats"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/timeseries"
	"github.com/wdm0006/industryts/pkg/transform/opbase"
)

// Normalize maps each column onto [0, 1] by its observed min and max.
type Normalize struct {
	opbase.Base
	Columns []string
}

func NewNormalize(columns ...string) *Normalize {
	return &Normalize{Base: opbase.NewBase("normalize", pipeline.Transform, "min-max scale columns to [0, 1]"), Columns: columns}
}

func newNormalize(p *config.Params) (pipeline.Operation, error) {
	cols, err := p.StringsOr("columns", nil)
	if err != nil {
		return nil, err
	}
	return NewNormalize(cols...), nil
}

func (o *Normalize) Spec() config.OperationSpec {
	return opbase.Spec("normalize", "columns", o.Columns)
}

func (o *Normalize) Validate(s timeseries.Schema) error {
	return s.RequireNumeric(opbase.Targets(s, o.Columns)...)
}

func (o *Normalize) Execute(ctx context.Context, d *timeseries.Data) (*timeseries.Data, error) {
	if err := o.Validate(d.Schema()); err != nil {
		return nil, err
	}
	return apply(d, o.Columns, func(name string, present []float64) (func(float64) float64, error) {
		if len(present) == 0 {
			return nil, pipeline.Invalid(o.Name(), "column %s has no values", name)
		}
		lo, hi := floats.Min(present), floats.Max(present)
		if hi == lo {
			return nil, pipeline.Invalid(o.Name(), "range is zero for column %s", name)
		}
		return func(x float64) float64 { return (x - lo) / (hi - lo) }, nil
	})
}
