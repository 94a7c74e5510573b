package features

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/frame"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/timeseries"
	"github.com/wdm0006/industryts/pkg/transform/opbase"
)

type component struct {
	period float64
	value  func(t time.Time) float64
}

var components = map[string]component{
	"minute":       {60, func(t time.Time) float64 { return float64(t.Minute()) }},
	"hour":         {24, func(t time.Time) float64 { return float64(t.Hour()) + float64(t.Minute())/60 }},
	"day_of_week":  {7, func(t time.Time) float64 { return float64(t.Weekday()) }},
	"day_of_month": {31, func(t time.Time) float64 { return float64(t.Day() - 1) }},
	"day_of_year":  {366, func(t time.Time) float64 { return float64(t.YearDay() - 1) }},
	"month":        {12, func(t time.Time) float64 { return float64(t.Month() - 1) }},
}

var componentNames = []string{"minute", "hour", "day_of_week", "day_of_month", "day_of_year", "month"}

// Cyclical encodes calendar components of the time column as <component>_sin
// and <component>_cos so that, say, 23:00 and 00:00 end up close together.
type Cyclical struct {
	opbase.Base
	Components []string
}

func NewCyclical(components ...string) *Cyclical {
	return &Cyclical{Base: opbase.NewBase("cyclical", pipeline.Features, "sin/cos encodings of calendar components"), Components: components}
}

func newCyclical(p *config.Params) (pipeline.Operation, error) {
	comps, err := p.StringsOr("components", []string{"hour"})
	if err != nil {
		return nil, err
	}
	if len(comps) == 0 {
		return nil, pipeline.Invalid("cyclical", "components must not be empty")
	}
	for _, c := range comps {
		if _, ok := components[c]; !ok {
			return nil, &config.TypeMismatchError{Position: config.NoPosition, Op: "cyclical", Field: "components", Expected: "names from " + strings.Join(componentNames, ", "), Got: c}
		}
	}
	return NewCyclical(comps...), nil
}

func (o *Cyclical) Spec() config.OperationSpec {
	return opbase.Spec("cyclical", "components", o.Components)
}

func (o *Cyclical) Validate(s timeseries.Schema) error {
	return s.RequireTime()
}

func (o *Cyclical) Execute(ctx context.Context, d *timeseries.Data) (*timeseries.Data, error) {
	if err := o.Validate(d.Schema()); err != nil {
		return nil, err
	}
	times := d.Times()
	out := d.Frame().Clone()
	for _, name := range o.Components {
		comp := components[name]
		sin := frame.NewFloatColumn(name+"_sin", times.Len())
		cos := frame.NewFloatColumn(name+"_cos", times.Len())
		for i := 0; i < times.Len(); i++ {
			t, ok := times.Get(i)
			if !ok {
				sin.SetNull(i)
				cos.SetNull(i)
				continue
			}
			angle := 2 * math.Pi * comp.value(t) / comp.period
			sin.Set(i, math.Sin(angle))
			cos.Set(i, math.Cos(angle))
		}
		for _, c := range []frame.Column{sin, cos} {
			if err := opbase.Put(out, c); err != nil {
				return nil, err
			}
		}
	}
	return d.WithFrame(out)
}
