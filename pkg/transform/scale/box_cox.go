package scale

import (
	"context"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/timeseries"
	"github.com/wdm0006/industryts/pkg/transform/opbase"
)

// lambda search grid for EstimateLambda
const (
	lambdaMin  = -2.0
	lambdaMax  = 2.0
	lambdaStep = 0.01
)

// BoxCox applies the Box-Cox power transform. With Lambda unset, lambda is
// estimated per column by maximum likelihood. Every value must be positive.
type BoxCox struct {
	opbase.Base
	Lambda  *float64
	Columns []string
}

func NewBoxCox(lambda *float64, columns ...string) *BoxCox {
	return &BoxCox{Base: opbase.NewBase("box_cox", pipeline.Transform, "Box-Cox power transform"), Lambda: lambda, Columns: columns}
}

func newBoxCox(p *config.Params) (pipeline.Operation, error) {
	lambda, err := p.OptionalFloat("lambda")
	if err != nil {
		return nil, err
	}
	cols, err := p.StringsOr("columns", nil)
	if err != nil {
		return nil, err
	}
	return NewBoxCox(lambda, cols...), nil
}

func (o *BoxCox) Spec() config.OperationSpec {
	return opbase.Spec("box_cox", "lambda", o.Lambda, "columns", o.Columns)
}

func (o *BoxCox) Validate(s timeseries.Schema) error {
	return s.RequireNumeric(opbase.Targets(s, o.Columns)...)
}

// BoxCoxValue transforms one positive value.
func BoxCoxValue(x, lambda float64) float64 {
	if math.Abs(lambda) < 1e-12 {
		return math.Log(x)
	}
	return (math.Pow(x, lambda) - 1) / lambda
}

// LogLikelihood is the Box-Cox profile log-likelihood of lambda for xs.
func LogLikelihood(xs []float64, lambda float64) float64 {
	y := make([]float64, len(xs))
	var logSum float64
	for i, x := range xs {
		y[i] = BoxCoxValue(x, lambda)
		logSum += math.Log(x)
	}
	n := float64(len(xs))
	return -n/2*math.Log(stat.PopVariance(y, nil)) + (lambda-1)*logSum
}

// EstimateLambda picks the lambda in [-2, 2] that maximises LogLikelihood.
func EstimateLambda(xs []float64) float64 {
	steps := int(math.Round((lambdaMax - lambdaMin) / lambdaStep))
	lls := make([]float64, steps+1)
	for i := range lls {
		ll := LogLikelihood(xs, lambdaMin+float64(i)*lambdaStep)
		if math.IsNaN(ll) {
			ll = math.Inf(-1)
		}
		lls[i] = ll
	}
	return lambdaMin + float64(floats.MaxIdx(lls))*lambdaStep
}

func (o *BoxCox) Execute(ctx context.Context, d *timeseries.Data) (*timeseries.Data, error) {
	if err := o.Validate(d.Schema()); err != nil {
		return nil, err
	}
	return apply(d, o.Columns, func(name string, present []float64) (func(float64) float64, error) {
		if len(present) == 0 {
			return nil, pipeline.Invalid(o.Name(), "column %s has no values", name)
		}
		if floats.Min(present) <= 0 {
			return nil, pipeline.Invalid(o.Name(), "column %s has non-positive values", name)
		}
		var lambda float64
		switch {
		case o.Lambda != nil:
			lambda = *o.Lambda
		case floats.Max(present) == floats.Min(present):
			return nil, pipeline.Invalid(o.Name(), "cannot estimate lambda for constant column %s", name)
		default:
			lambda = EstimateLambda(present)
		}
		return func(x float64) float64 { return BoxCoxValue(x, lambda) }, nil
	})
}
