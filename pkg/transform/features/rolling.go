package features

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/frame"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/timeseries"
	"github.com/wdm0006/industryts/pkg/transform/opbase"
)

var rollingStats = []string{"mean", "sum", "min", "max", "std"}

// Rolling adds <column>_rolling_<stat>_<window>, computed over the trailing
// Window rows. Rows with fewer than MinPeriods present values are null.
type Rolling struct {
	opbase.Base
	Window     int
	Stat       string
	MinPeriods int
	Columns    []string
}

func NewRolling(window int, stat string, columns ...string) *Rolling {
	return &Rolling{
		Base:       opbase.NewBase("rolling", pipeline.Features, "add trailing window statistics"),
		Window:     window,
		Stat:       stat,
		MinPeriods: window,
		Columns:    columns,
	}
}

func newRolling(p *config.Params) (pipeline.Operation, error) {
	window, err := p.Int("window")
	if err != nil {
		return nil, err
	}
	if window < 1 {
		return nil, pipeline.Invalid("rolling", "window must be positive, got %d", window)
	}
	st, err := opbase.Choice(p, "stat", "mean", rollingStats...)
	if err != nil {
		return nil, err
	}
	cols, err := p.StringsOr("columns", nil)
	if err != nil {
		return nil, err
	}
	op := NewRolling(int(window), st, cols...)
	minp, err := p.IntOr("min_periods", window)
	if err != nil {
		return nil, err
	}
	if minp < 1 || minp > window {
		return nil, pipeline.Invalid("rolling", "min_periods must be within 1..%d", window)
	}
	op.MinPeriods = int(minp)
	return op, nil
}

func (o *Rolling) Spec() config.OperationSpec {
	spec := opbase.Spec("rolling", "window", o.Window, "stat", o.Stat, "columns", o.Columns)
	if o.MinPeriods != o.Window {
		spec.Params.Set("min_periods", config.Integer(int64(o.MinPeriods)))
	}
	return spec
}

func (o *Rolling) Validate(s timeseries.Schema) error {
	if err := s.RequireNumeric(opbase.Targets(s, o.Columns)...); err != nil {
		return err
	}
	if s.Rows >= 0 && s.Rows < o.MinPeriods {
		return pipeline.Invalid(o.Name(), "need at least %d rows, have %d", o.MinPeriods, s.Rows)
	}
	return nil
}

func (o *Rolling) reduce(window []float64) float64 {
	switch o.Stat {
	case "sum":
		return floats.Sum(window)
	case "min":
		return floats.Min(window)
	case "max":
		return floats.Max(window)
	case "std":
		return stat.StdDev(window, nil)
	default:
		return stat.Mean(window, nil)
	}
}

func (o *Rolling) Execute(ctx context.Context, d *timeseries.Data) (*timeseries.Data, error) {
	if err := o.Validate(d.Schema()); err != nil {
		return nil, err
	}
	out := d.Frame().Clone()
	buf := make([]float64, 0, o.Window)
	for _, name := range opbase.Targets(d.Schema(), o.Columns) {
		vals, valid, err := opbase.Floats(d, name)
		if err != nil {
			return nil, err
		}
		col := frame.NewFloatColumn(fmt.Sprintf("%s_rolling_%s_%d", name, o.Stat, o.Window), len(vals))
		for i := range vals {
			buf = buf[:0]
			for j := max(0, i-o.Window+1); j <= i; j++ {
				if valid[j] {
					buf = append(buf, vals[j])
				}
			}
			// a sample std needs two values
			if len(buf) < o.MinPeriods || (o.Stat == "std" && len(buf) < 2) {
				col.SetNull(i)
				continue
			}
			col.Set(i, o.reduce(buf))
		}
		if err := opbase.Put(out, col); err != nil {
			return nil, err
		}
	}
	return d.WithFrame(out)
}
