package scale

import (
	"context"

	"gonum.org/v1/gonum/stat"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/timeseries"
	"github.com/wdm0006/industryts/pkg/transform/opbase"
)

// Standardize maps x to (x - mean) / std using the sample standard deviation.
type Standardize struct {
	opbase.Base
	Columns []string
}

func NewStandardize(columns ...string) *Standardize {
	return &Standardize{Base: opbase.NewBase("standardize", pipeline.Transform, "z-score columns"), Columns: columns}
}

func newStandardize(p *config.Params) (pipeline.Operation, error) {
	cols, err := p.StringsOr("columns", nil)
	if err != nil {
		return nil, err
	}
	return NewStandardize(cols...), nil
}

func (o *Standardize) Spec() config.OperationSpec {
	return opbase.Spec("standardize", "columns", o.Columns)
}

func (o *Standardize) Validate(s timeseries.Schema) error {
	return s.RequireNumeric(opbase.Targets(s, o.Columns)...)
}

func (o *Standardize) Execute(ctx context.Context, d *timeseries.Data) (*timeseries.Data, error) {
	if err := o.Validate(d.Schema()); err != nil {
		return nil, err
	}
	return apply(d, o.Columns, func(name string, present []float64) (func(float64) float64, error) {
		if len(present) < 2 {
			return nil, pipeline.Invalid(o.Name(), "column %s needs at least 2 values, has %d", name, len(present))
		}
		mean, std := stat.MeanStdDev(present, nil)
		if std == 0 {
			return nil, pipeline.Invalid(o.Name(), "standard deviation is zero for column %s", name)
		}
		return func(x float64) float64 { return (x - mean) / std }, nil
	})
}
