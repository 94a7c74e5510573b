// Package aggregate collapses rows that share key values.
package aggregate

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/frame"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/timeseries"
	"github.com/wdm0006/industryts/pkg/transform/opbase"
	"github.com/wdm0006/industryts/pkg/transform/temporal"
)

// GroupBy emits one row per distinct combination of By, in order of first
// appearance. The time column holds the first timestamp of each group.
// Nulls in key columns form their own group.
type GroupBy struct {
	opbase.Base
	By          []string
	Aggregation temporal.Aggregation
	Columns     []string
}

func NewGroupBy(by []string, agg temporal.Aggregation, columns ...string) *GroupBy {
	return &GroupBy{
		Base:        opbase.NewBase("group_by", pipeline.Aggregation, "aggregate rows sharing key values"),
		By:          by,
		Aggregation: agg,
		Columns:     columns,
	}
}

func newGroupBy(p *config.Params) (pipeline.Operation, error) {
	by, err := p.Strings("by")
	if err != nil {
		return nil, err
	}
	if len(by) == 0 {
		return nil, pipeline.Invalid("group_by", "by must name at least one column")
	}
	agg, err := opbase.Choice(p, "aggregation", "mean", temporal.Aggregations...)
	if err != nil {
		return nil, err
	}
	cols, err := p.StringsOr("columns", nil)
	if err != nil {
		return nil, err
	}
	return NewGroupBy(by, temporal.Aggregation(agg), cols...), nil
}

func (o *GroupBy) Spec() config.OperationSpec {
	return opbase.Spec("group_by", "by", o.By, "aggregation", string(o.Aggregation), "columns", o.Columns)
}

// values lists the aggregated columns: Columns, or every numeric feature
// that is not a key.
func (o *GroupBy) values(s timeseries.Schema) []string {
	if len(o.Columns) > 0 {
		return o.Columns
	}
	var out []string
	for _, c := range s.NumericFeatures() {
		if !slices.Contains(o.By, c) {
			out = append(out, c)
		}
	}
	return out
}

func (o *GroupBy) Validate(s timeseries.Schema) error {
	for _, k := range o.By {
		if k == s.TimeColumn {
			return pipeline.Invalid(o.Name(), "cannot group by the time column %s", k)
		}
		if _, err := s.RequireColumn(k); err != nil {
			return err
		}
	}
	for _, c := range o.values(s) {
		if slices.Contains(o.By, c) {
			return pipeline.Invalid(o.Name(), "column %s is both a key and a value", c)
		}
	}
	return s.RequireNumeric(o.values(s)...)
}

func groupKey(keys []frame.Column, row int) string {
	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%T:%v\x00", k.Value(row), k.Value(row))
	}
	return b.String()
}

// Groups returns row positions per distinct key, in order of first appearance.
func Groups(keys []frame.Column, rows int) [][]int {
	index := make(map[string]int)
	var groups [][]int
	for r := 0; r < rows; r++ {
		k := groupKey(keys, r)
		g, ok := index[k]
		if !ok {
			g = len(groups)
			index[k] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], r)
	}
	return groups
}

func (o *GroupBy) Execute(ctx context.Context, d *timeseries.Data) (*timeseries.Data, error) {
	if err := o.Validate(d.Schema()); err != nil {
		return nil, err
	}
	keys := make([]frame.Column, len(o.By))
	for i, k := range o.By {
		keys[i], _ = d.Frame().ColumnByName(k)
	}
	groups := Groups(keys, d.Len())
	first := make([]int, len(groups))
	for g, rows := range groups {
		first[g] = rows[0]
	}

	times, _ := d.Frame().ColumnByName(d.TimeColumn())
	out, err := frame.FromColumns(times.Take(first))
	if err != nil {
		return nil, err
	}
	for _, k := range keys {
		if err := out.AddColumn(k.Take(first)); err != nil {
			return nil, err
		}
	}
	for _, name := range o.values(d.Schema()) {
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
