package quality

import (
	"context"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/frame"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/timeseries"
	"github.com/wdm0006/industryts/pkg/transform/opbase"
)

// Clip caps values into [Min, Max]. Bounds may instead be given as quantiles
// of each column, which turns it into an outlier capper.
type Clip struct {
	opbase.Base
	Columns       []string
	Min           *float64
	Max           *float64
	LowerQuantile *float64
	UpperQuantile *float64
}

func NewClip(lo, hi *float64, columns ...string) *Clip {
	return &Clip{Base: opbase.NewBase("clip", pipeline.DataQuality, "cap values to a range"), Min: lo, Max: hi, Columns: columns}
}

func newClip(p *config.Params) (pipeline.Operation, error) {
	cols, err := p.StringsOr("columns", nil)
	if err != nil {
		return nil, err
	}
	op := NewClip(nil, nil, cols...)
	for _, b := range []struct {
		key string
		dst **float64
	}{
		{"min", &op.Min}, {"max", &op.Max},
		{"lower_quantile", &op.LowerQuantile}, {"upper_quantile", &op.UpperQuantile},
	} {
		if *b.dst, err = p.OptionalFloat(b.key); err != nil {
			return nil, err
		}
	}
	if op.Min == nil && op.Max == nil && op.LowerQuantile == nil && op.UpperQuantile == nil {
		return nil, &config.MissingParameterError{Position: config.NoPosition, Op: "clip", Field: "min"}
	}
	for _, q := range []*float64{op.LowerQuantile, op.UpperQuantile} {
		if q != nil && (*q < 0 || *q > 1) {
			return nil, pipeline.Invalid("clip", "quantile %v outside [0, 1]", *q)
		}
	}
	return op, nil
}

func (o *Clip) Spec() config.OperationSpec {
	return opbase.Spec("clip",
		"columns", o.Columns,
		"min", o.Min, "max", o.Max,
		"lower_quantile", o.LowerQuantile, "upper_quantile", o.UpperQuantile,
	)
}

func (o *Clip) Validate(s timeseries.Schema) error {
	return s.RequireNumeric(opbase.Targets(s, o.Columns)...)
}

func (o *Clip) bounds(present []float64) (lo, hi *float64) {
	lo, hi = o.Min, o.Max
	if (o.LowerQuantile == nil && o.UpperQuantile == nil) || len(present) == 0 {
		return lo, hi
	}
	sorted := append([]float64(nil), present...)
	sort.Float64s(sorted)
	if o.LowerQuantile != nil {
		q := stat.Quantile(*o.LowerQuantile, stat.Empirical, sorted, nil)
		lo = &q
	}
	if o.UpperQuantile != nil {
		q := stat.Quantile(*o.UpperQuantile, stat.Empirical, sorted, nil)
		hi = &q
	}
	return lo, hi
}

func (o *Clip) Execute(ctx context.Context, d *timeseries.Data) (*timeseries.Data, error) {
	if err := o.Validate(d.Schema()); err != nil {
		return nil, err
	}
	out := d.Clone()
	for _, name := range opbase.Targets(d.Schema(), o.Columns) {
		col, _ := out.Frame().ColumnByName(name)
		vals, valid, err := frame.Float(col)
		if err != nil {
			return nil, err
		}
		lo, hi := o.bounds(frame.Present(vals, valid))
		switch c := col.(type) {
		case *frame.FloatColumn:
			for i := 0; i < c.Len(); i++ {
				if c.IsNull(i) {
					continue
				}
				v, _ := c.Get(i)
				if lo != nil && v < *lo {
					v = *lo
				}
				if hi != nil && v > *hi {
					v = *hi
				}
				c.Set(i, v)
			}
		case *frame.IntColumn:
			for i := 0; i < c.Len(); i++ {
				if c.IsNull(i) {
					continue
				}
				v, _ := c.Get(i)
				if lo != nil && float64(v) < *lo {
					v = int64(*lo)
				}
				if hi != nil && float64(v) > *hi {
					v = int64(*hi)
				}
				c.Set(i, v)
			}
		}
	}
	return out, nil
}
