package pipeline_test

import (
	"context"
	"time"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/frame"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/timeseries"
)

func makeData(rows int) *timeseries.Data {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ts := make([]time.Time, rows)
	vals := make([]float64, rows)
	for i := range ts {
		ts[i] = base.Add(time.Duration(i) * time.Minute)
		vals[i] = float64(i)
	}
	f, err := frame.FromColumns(frame.NewTimeColumnFrom("DateTime", ts), frame.NewFloatColumnFrom("temp", vals, nil))
	if err != nil {
		panic(err)
	}
	d, err := timeseries.New(f, "")
	if err != nil {
		panic(err)
	}
	return d
}

// stubOp is an instrumented operation: it remembers the data it was given,
// optionally fails, and otherwise returns a clone keeping the first keep rows.
type stubOp struct {
	name   string
	keep   int
	fail   error
	column string
	calls  int
	got    *timeseries.Data
	out    *timeseries.Data
}

func (p *stubOp) Name() string { return p.name }

func (p *stubOp) Metadata() pipeline.Metadata {
	return pipeline.Metadata{Name: p.name, Description: "test stub", Version: "0.0.1", Category: pipeline.Transform}
}

func (p *stubOp) Validate(s timeseries.Schema) error {
	if p.column == "" {
		return nil
	}
	_, err := s.RequireColumn(p.column)
	return err
}

func (p *stubOp) Execute(_ context.Context, d *timeseries.Data) (*timeseries.Data, error) {
	p.calls++
	p.got = d
	if p.fail != nil {
		return nil, p.fail
	}
	out := d.Clone()
	if p.keep > 0 && p.keep < d.Len() {
		rows := make([]int, p.keep)
		for i := range rows {
			rows[i] = i
		}
		var err error
		if out, err = d.WithFrame(d.Frame().Take(rows)); err != nil {
			return nil, err
		}
	}
	p.out = out
	return out, nil
}

func (p *stubOp) Spec() config.OperationSpec {
	return config.OperationSpec{Type: "head", Params: config.MustTable("keep", p.keep)}
}

func stubRegistry() *pipeline.Registry {
	r := pipeline.NewRegistry()
	r.MustRegister("head", pipeline.Transform, "keeps the first rows", func(p *config.Params) (pipeline.Operation, error) {
		keep, err := p.IntOr("keep", 0)
		if err != nil {
			return nil, err
		}
		if keep < 0 {
			return nil, pipeline.Invalid("head", "keep must not be negative, got %d", keep)
		}
		return &stubOp{name: "head", keep: int(keep)}, nil
	})
	r.MustRegister("needs_column", pipeline.DataQuality, "requires a column", func(p *config.Params) (pipeline.Operation, error) {
		col, err := p.String("column")
		if err != nil {
			return nil, err
		}
		return &stubOp{name: "needs_column", column: col}, nil
	})
	return r
}
