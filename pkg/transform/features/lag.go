// Package features derives new columns from existing ones: lags,
// differences, rolling statistics and cyclical time encodings.
package features

import (
	"context"
	"fmt"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/timeseries"
	"github.com/wdm0006/industryts/pkg/transform/opbase"
)

// Lag adds one shifted copy of each column per period, named
// <column>_lag_<|period|>. A positive period looks back, a negative one
// looks ahead; shifted-in rows are null.
type Lag struct {
	opbase.Base
	Periods []int
	Columns []string
}

func NewLag(periods []int, columns ...string) *Lag {
	return &Lag{Base: opbase.NewBase("lag", pipeline.Features, "add lagged copies of columns"), Periods: periods, Columns: columns}
}

func newLag(p *config.Params) (pipeline.Operation, error) {
	raw, err := p.Ints("periods")
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, pipeline.Invalid("lag", "periods must not be empty")
	}
	periods := make([]int, len(raw))
	seen := make(map[int64]int64, len(raw))
	for i, v := range raw {
		if v == 0 {
			return nil, pipeline.Invalid("lag", "period 0 would copy the column")
		}
		// x_lag_<n> names by magnitude, so 1 and -1 would collide
		abs := max(v, -v)
		if prev, ok := seen[abs]; ok {
			return nil, pipeline.Invalid("lag", "periods %d and %d both produce <column>_lag_%d", prev, v, abs)
		}
		seen[abs] = v
		periods[i] = int(v)
	}
	cols, err := p.StringsOr("columns", nil)
	if err != nil {
		return nil, err
	}
	return NewLag(periods, cols...), nil
}

func (o *Lag) Spec() config.OperationSpec {
	return opbase.Spec("lag", "periods", o.Periods, "columns", o.Columns)
}

func (o *Lag) Validate(s timeseries.Schema) error {
	for _, c := range opbase.Targets(s, o.Columns) {
		if _, err := s.RequireColumn(c); err != nil {
			return err
		}
	}
	return nil
}

// shiftRows maps each output row to its source row, -1 where nothing shifts in.
func shiftRows(n, period int) []int {
	rows := make([]int, n)
	for i := range rows {
		src := i - period
		if src < 0 || src >= n {
			src = -1
		}
		rows[i] = src
	}
	return rows
}

func lagName(col string, period int) string {
	if period < 0 {
		period = -period
	}
	return fmt.Sprintf("%s_lag_%d", col, period)
}

func (o *Lag) Execute(ctx context.Context, d *timeseries.Data) (*timeseries.Data, error) {
	if err := o.Validate(d.Schema()); err != nil {
		return nil, err
	}
	targets := opbase.Targets(d.Schema(), o.Columns)
	out := d.Frame().Clone()
	for _, name := range targets {
		col, _ := d.Frame().ColumnByName(name)
		for _, p := range o.Periods {
			shifted := col.Take(shiftRows(col.Len(), p)).Renamed(lagName(name, p))
			if err := opbase.Put(out, shifted); err != nil {
				return nil, err
			}
		}
	}
	return d.WithFrame(out)
}
