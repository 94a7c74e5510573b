// Package scale rescales numeric columns in place. Integer columns come out
// as float columns; nulls stay null.
package scale

import (
	"github.com/wdm0006/industryts/pkg/frame"
	"github.com/wdm0006/industryts/pkg/timeseries"
	"github.com/wdm0006/industryts/pkg/transform/opbase"
)

// fitFunc inspects the present values of a column and returns the per-value
// mapping to apply.
type fitFunc func(name string, present []float64) (func(float64) float64, error)

func apply(d *timeseries.Data, columns []string, fit fitFunc) (*timeseries.Data, error) {
	out := d.Frame().Clone()
	for _, name := range opbase.Targets(d.Schema(), columns) {
		vals, valid, err := opbase.Floats(d, name)
		if err != nil {
			return nil, err
		}
		f, err := fit(name, frame.Present(vals, valid))
		if err != nil {
			return nil, err
		}
		for i := range vals {
			if valid[i] {
				vals[i] = f(vals[i])
			}
		}
		if err := opbase.Put(out, frame.NewFloatColumnFrom(name, vals, valid)); err != nil {
			return nil, err
		}
	}
	return d.WithFrame(out)
}
