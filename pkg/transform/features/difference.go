package features

import (
	"context"
	"fmt"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/frame"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/timeseries"
	"github.com/wdm0006/industryts/pkg/transform/opbase"
)

// Difference adds <column>_diff_<lag> = x[i] - x[i-lag].
type Difference struct {
	opbase.Base
	Lag     int
	Columns []string
}

func NewDifference(lag int, columns ...string) *Difference {
	return &Difference{Base: opbase.NewBase("difference", pipeline.Features, "add lagged differences of columns"), Lag: lag, Columns: columns}
}

func newDifference(p *config.Params) (pipeline.Operation, error) {
	lag, err := p.IntOr("lag", 1)
	if err != nil {
		return nil, err
	}
	if lag < 1 {
		return nil, pipeline.Invalid("difference", "lag must be positive, got %d", lag)
	}
	cols, err := p.StringsOr("columns", nil)
	if err != nil {
		return nil, err
	}
	return NewDifference(int(lag), cols...), nil
}

func (o *Difference) Spec() config.OperationSpec {
	return opbase.Spec("difference", "lag", o.Lag, "columns", o.Columns)
}

func (o *Difference) Validate(s timeseries.Schema) error {
	return s.RequireNumeric(opbase.Targets(s, o.Columns)...)
}

func (o *Difference) Execute(ctx context.Context, d *timeseries.Data) (*timeseries.Data, error) {
	if err := o.Validate(d.Schema()); err != nil {
		return nil, err
	}
	out := d.Frame().Clone()
	for _, name := range opbase.Targets(d.Schema(), o.Columns) {
		vals, valid, err := opbase.Floats(d, name)
		if err != nil {
			return nil, err
		}
		diff := frame.NewFloatColumn(fmt.Sprintf("%s_diff_%d", name, o.Lag), len(vals))
		for i := range vals {
			j := i - o.Lag
			if j < 0 || !valid[i] || !valid[j] {
				diff.SetNull(i)
				continue
			}
			diff.Set(i, vals[i]-vals[j])
		}
		if err := opbase.Put(out, diff); err != nil {
			return nil, err
		}
	}
	return d.WithFrame(out)
}
