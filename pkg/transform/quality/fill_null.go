// Package quality holds data-quality operations: null filling, clipping and
// range checks.
package quality

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/frame"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/timeseries"
	"github.com/wdm0006/industryts/pkg/transform/opbase"
)

type FillMethod string

const (
	FillForward  FillMethod = "forward"
	FillBackward FillMethod = "backward"
	FillMean     FillMethod = "mean"
	FillMedian   FillMethod = "median"
	FillMode     FillMethod = "mode"
	FillZero     FillMethod = "zero"
	FillConstant FillMethod = "constant"
)

var fillMethods = []string{"forward", "backward", "mean", "median", "mode", "zero", "constant"}

// directional methods work on any column kind, the rest need numbers.
func (m FillMethod) directional() bool { return m == FillForward || m == FillBackward }

// FillNull replaces nulls. Forward and backward carry the nearest present
// value; leading (or trailing) nulls with nothing to carry stay null.
type FillNull struct {
	opbase.Base
	Method  FillMethod
	Value   float64 // for FillConstant
	Columns []string
}

func NewFillNull(method FillMethod, columns ...string) *FillNull {
	return &FillNull{
		Base:    opbase.NewBase("fill_null", pipeline.DataQuality, "fill null values"),
		Method:  method,
		Columns: columns,
	}
}

func newFillNull(p *config.Params) (pipeline.Operation, error) {
	m, err := opbase.Choice(p, "method", "", fillMethods...)
	if err != nil {
		return nil, err
	}
	cols, err := p.StringsOr("columns", nil)
	if err != nil {
		return nil, err
	}
	op := NewFillNull(FillMethod(m), cols...)
	if op.Method == FillConstant {
		if op.Value, err = p.Float("value"); err != nil {
			return nil, err
		}
	}
	return op, nil
}

func (o *FillNull) Spec() config.OperationSpec {
	var value *float64
	if o.Method == FillConstant {
		value = &o.Value
	}
	return opbase.Spec("fill_null", "method", string(o.Method), "value", value, "columns", o.Columns)
}

func (o *FillNull) Validate(s timeseries.Schema) error {
	cols := opbase.Targets(s, o.Columns)
	if o.Method.directional() {
		for _, c := range cols {
			if _, err := s.RequireColumn(c); err != nil {
				return err
			}
		}
		return nil
	}
	return s.RequireNumeric(cols...)
}

func (o *FillNull) Execute(ctx context.Context, d *timeseries.Data) (*timeseries.Data, error) {
	if err := o.Validate(d.Schema()); err != nil {
		return nil, err
	}
	out := d.Clone()
	for _, name := range opbase.Targets(d.Schema(), o.Columns) {
		col, _ := out.Frame().ColumnByName(name)
		if col.NullCount() == 0 {
			continue
		}
		if o.Method.directional() {
			carry(col, o.Method == FillBackward)
			continue
		}
		o.fillStat(col)
	}
	return out, nil
}

func carry(col frame.Column, backward bool) {
	switch c := col.(type) {
	case *frame.FloatColumn:
		carrySeries(c, backward)
	case *frame.IntColumn:
		carrySeries(c, backward)
	case *frame.StringColumn:
		carrySeries(c, backward)
	case *frame.BoolColumn:
		carrySeries(c, backward)
	case *frame.TimeColumn:
		carrySeries(c, backward)
	}
}

func carrySeries[T frame.Cell](s *frame.Series[T], backward bool) {
	n := s.Len()
	var last T
	have := false
	for k := 0; k < n; k++ {
		i := k
		if backward {
			i = n - 1 - k
		}
		if v, ok := s.Get(i); ok {
			last, have = v, true
		} else if have {
			s.Set(i, last)
		}
	}
}

func (o *FillNull) fillStat(col frame.Column) {
	vals, valid, err := frame.Float(col)
	if err != nil {
		return
	}
	present := frame.Present(vals, valid)
	var fill float64
	switch o.Method {
	case FillZero:
		fill = 0
	case FillConstant:
		fill = o.Value
	default:
		if len(present) == 0 {
			return
		}
		switch o.Method {
		case FillMean:
			fill = stat.Mean(present, nil)
		case FillMedian:
			fill = median(present)
		case FillMode:
			fill, _ = stat.Mode(present, nil)
		}
	}
	switch c := col.(type) {
	case *frame.FloatColumn:
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				c.Set(i, fill)
			}
		}
	case *frame.IntColumn:
		// round to nearest
		v := int64(math.Round(fill))
		for i := 0; i < c.Len(); i++ {
			if c.IsNull(i) {
				c.Set(i, v)
			}
		}
	}
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
