// Package temporal holds operations that change the time axis.
package temporal

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/frame"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/timeseries"
	"github.com/wdm0006/industryts/pkg/transform/opbase"
)

// Aggregation reduces the values of one window or group.
type Aggregation string

const (
	AggMean  Aggregation = "mean"
	AggSum   Aggregation = "sum"
	AggMin   Aggregation = "min"
	AggMax   Aggregation = "max"
	AggFirst Aggregation = "first"
	AggLast  Aggregation = "last"
	AggCount Aggregation = "count"
)

// Aggregations lists every accepted aggregation name.
var Aggregations = []string{"mean", "sum", "min", "max", "first", "last", "count"}

// Reduce applies a to the rows of one window. first and last take the
// boundary value even when it is null; the others skip nulls and yield null
// for an all-null window.
func (a Aggregation) Reduce(vals []float64, valid []bool, rows []int) (float64, bool) {
	switch a {
	case AggFirst:
		r := rows[0]
		return vals[r], valid[r]
	case AggLast:
		r := rows[len(rows)-1]
		return vals[r], valid[r]
	}
	present := make([]float64, 0, len(rows))
	for _, r := range rows {
		if valid[r] {
			present = append(present, vals[r])
		}
	}
	if a == AggCount {
		return float64(len(present)), true
	}
	if len(present) == 0 {
		return 0, false
	}
	switch a {
	case AggMean:
		return stat.Mean(present, nil), true
	case AggSum:
		return floats.Sum(present), true
	case AggMin:
		return floats.Min(present), true
	case AggMax:
		return floats.Max(present), true
	}
	return 0, false
}

// ParseRule reads a resampling rule such as "30s", "10min", "1h", "1d" or
// "2w". A bare number is seconds.
func ParseRule(rule string) (time.Duration, error) {
	r := strings.TrimSpace(rule)
	i := strings.IndexFunc(r, func(c rune) bool { return c < '0' || c > '9' })
	if i < 0 {
		i = len(r)
	}
	n, err := strconv.Atoi(r[:i])
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid rule format: %q", rule)
	}
	var unit time.Duration
	switch strings.ToLower(r[i:]) {
	case "", "s", "sec", "second", "seconds":
		unit = time.Second
	case "min", "minute", "minutes":
		unit = time.Minute
	case "h", "hour", "hours":
		unit = time.Hour
	case "d", "day", "days":
		unit = 24 * time.Hour
	case "w", "week", "weeks":
		unit = 7 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("unsupported time unit in rule: %q", rule)
	}
	return time.Duration(n) * unit, nil
}

// Resample buckets rows into fixed windows starting at the first timestamp.
// Windows are closed on the left and labelled by their start; empty windows
// are dropped. Input must be sorted by time.
type Resample struct {
	opbase.Base
	Rule        string
	Every       time.Duration
	Aggregation Aggregation
	Columns     []string
}

func NewResample(rule string, agg Aggregation, columns ...string) (*Resample, error) {
	every, err := ParseRule(rule)
	if err != nil {
		return nil, pipeline.Invalid("resample", "%v", err)
	}
	return &Resample{
		Base:        opbase.NewBase("resample", pipeline.Temporal, "aggregate into fixed time windows"),
		Rule:        rule,
		Every:       every,
		Aggregation: agg,
		Columns:     columns,
	}, nil
}

func newResample(p *config.Params) (pipeline.Operation, error) {
	rule, err := p.String("rule")
	if err != nil {
		return nil, err
	}
	agg, err := opbase.Choice(p, "aggregation", "mean", Aggregations...)
	if err != nil {
		return nil, err
	}
	cols, err := p.StringsOr("columns", nil)
	if err != nil {
		return nil, err
	}
	if _, err := ParseRule(rule); err != nil {
		return nil, &config.TypeMismatchError{Position: config.NoPosition, Op: "resample", Field: "rule", Expected: "duration rule like 10min", Got: strconv.Quote(rule)}
	}
	return NewResample(rule, Aggregation(agg), cols...)
}

func (o *Resample) Spec() config.OperationSpec {
	return opbase.Spec("resample", "rule", o.Rule, "aggregation", string(o.Aggregation), "columns", o.Columns)
}

func (o *Resample) Validate(s timeseries.Schema) error {
	if err := s.RequireTime(); err != nil {
		return err
	}
	return s.RequireNumeric(opbase.Targets(s, o.Columns)...)
}

// Windows groups row positions by window start.
func Windows(times *frame.TimeColumn, every time.Duration) ([]time.Time, [][]int, error) {
	var labels []time.Time
	var groups [][]int
	var start, prev time.Time
	for i := 0; i < times.Len(); i++ {
		t, ok := times.Get(i)
		if !ok {
			return nil, nil, fmt.Errorf("null timestamp at row %d", i)
		}
		if i == 0 {
			start = t
		} else if t.Before(prev) {
			return nil, nil, fmt.Errorf("time column is not sorted at row %d", i)
		}
		prev = t
		label := start.Add(t.Sub(start) / every * every)
		if n := len(labels); n == 0 || !labels[n-1].Equal(label) {
			labels = append(labels, label)
			groups = append(groups, nil)
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], i)
	}
	return labels, groups, nil
}

func (o *Resample) Execute(ctx context.Context, d *timeseries.Data) (*timeseries.Data, error) {
	if err := o.Validate(d.Schema()); err != nil {
		return nil, err
	}
	labels, groups, err := Windows(d.Times(), o.Every)
	if err != nil {
		return nil, pipeline.Invalid(o.Name(), "%v", err)
	}
	out, err := frame.FromColumns(frame.NewTimeColumnFrom(d.TimeColumn(), labels))
	if err != nil {
		return nil, err
	}
	for _, name := range opbase.Targets(d.Schema(), o.Columns) {
		vals, valid, err := opbase.Floats(d, name)
		if err != nil {
			return nil, err
		}
		if err := out.AddColumn(o.Aggregation.Column(name, vals, valid, groups)); err != nil {
			return nil, err
		}
	}
	return d.WithFrame(out)
}

// Column reduces each group of rows into one value of a new column named
// name. count produces an int column, the rest float columns.
func (a Aggregation) Column(name string, vals []float64, valid []bool, groups [][]int) frame.Column {
	if a == AggCount {
		c := frame.NewIntColumn(name, len(groups))
		for g, rows := range groups {
			v, _ := a.Reduce(vals, valid, rows)
			c.Set(g, int64(v))
		}
		return c
	}
	c := frame.NewFloatColumn(name, len(groups))
	for g, rows := range groups {
		if v, ok := a.Reduce(vals, valid, rows); ok {
			c.Set(g, v)
		} else {
			c.SetNull(g)
		}
	}
	return c
}
