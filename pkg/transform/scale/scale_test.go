package scale

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/frame"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/timeseries"
)

func makeData(t *testing.T, x []float64, valid []bool) *timeseries.Data {
	t.Helper()
	times := make([]time.Time, len(x))
	for i := range times {
		times[i] = time.Date(2024, 3, 1, 0, i, 0, 0, time.UTC)
	}
	n := frame.NewIntColumn("n", len(x))
	for i := range x {
		n.Set(i, int64(10*(i+1)))
	}
	f, err := frame.FromColumns(frame.NewTimeColumnFrom("timestamp", times), frame.NewFloatColumnFrom("x", x, valid), n)
	if err != nil {
		t.Fatal(err)
	}
	d, err := timeseries.New(f, "")
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func read(t *testing.T, d *timeseries.Data, name string) ([]float64, []bool) {
	t.Helper()
	col, ok := d.Frame().ColumnByName(name)
	if !ok {
		t.Fatalf("no column %s", name)
	}
	vals, valid, err := frame.Float(col)
	if err != nil {
		t.Fatal(err)
	}
	return vals, valid
}

func TestStandardize(t *testing.T) {
	in := makeData(t, []float64{2, 4, 0, 6, 8}, []bool{true, true, false, true, true})
	out, err := NewStandardize().Execute(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"x", "n"} {
		vals, valid := read(t, out, name)
		present := frame.Present(vals, valid)
		mean, std := stat.MeanStdDev(present, nil)
		if math.Abs(mean) > 1e-9 || math.Abs(std-1) > 1e-9 {
			t.Fatalf("%s: mean %v std %v", name, mean, std)
		}
	}
	if _, valid := read(t, out, "x"); valid[2] {
		t.Fatal("null was filled")
	}
	if col, _ := out.Frame().ColumnByName("n"); col.Kind() != frame.KindFloat {
		t.Fatalf("n kind = %s", col.Kind())
	}
	if out.TimeColumn() != "timestamp" {
		t.Fatalf("time column = %s", out.TimeColumn())
	}
	// input untouched
	if vals, _ := read(t, in, "x"); vals[0] != 2 {
		t.Fatalf("input mutated: %v", vals)
	}
}

func TestStandardizeZeroStd(t *testing.T) {
	_, err := NewStandardize("x").Execute(context.Background(), makeData(t, []float64{3, 3, 3}, nil))
	if !errors.Is(err, pipeline.ErrOperation) {
		t.Fatalf("err = %v", err)
	}
}

func TestNormalize(t *testing.T) {
	out, err := NewNormalize("x").Execute(context.Background(), makeData(t, []float64{5, 10, 15}, nil))
	if err != nil {
		t.Fatal(err)
	}
	vals, _ := read(t, out, "x")
	want := []float64{0, 0.5, 1}
	for i := range want {
		if math.Abs(vals[i]-want[i]) > 1e-12 {
			t.Fatalf("x = %v", vals)
		}
	}
	// n was not selected
	if col, _ := out.Frame().ColumnByName("n"); col.Kind() != frame.KindInt {
		t.Fatal("n was rescaled")
	}
	_, err = NewNormalize("x").Execute(context.Background(), makeData(t, []float64{1, 1}, nil))
	if !errors.Is(err, pipeline.ErrOperation) {
		t.Fatalf("err = %v", err)
	}
}

func TestBoxCoxFixedLambda(t *testing.T) {
	one := 1.0
	out, err := NewBoxCox(&one, "x").Execute(context.Background(), makeData(t, []float64{1, 2, 3}, nil))
	if err != nil {
		t.Fatal(err)
	}
	vals, _ := read(t, out, "x")
	for i, want := range []float64{0, 1, 2} {
		if math.Abs(vals[i]-want) > 1e-12 {
			t.Fatalf("x = %v", vals)
		}
	}
	zero := 0.0
	out, err = NewBoxCox(&zero, "x").Execute(context.Background(), makeData(t, []float64{1, math.E}, nil))
	if err != nil {
		t.Fatal(err)
	}
	if vals, _ := read(t, out, "x"); math.Abs(vals[1]-1) > 1e-12 {
		t.Fatalf("log(e) = %v", vals[1])
	}
}

func TestBoxCoxEstimate(t *testing.T) {
	xs := []float64{1, 1.5, 2.2, 3.9, 5.1, 8.7, 14.2, 30}
	lambda := EstimateLambda(xs)
	if lambda < -2 || lambda > 2 {
		t.Fatalf("lambda = %v", lambda)
	}
	best := LogLikelihood(xs, lambda)
	for _, l := range []float64{-1, 0, 1} {
		if LogLikelihood(xs, l) > best+1e-9 {
			t.Fatalf("lambda %v beats estimate %v", l, lambda)
		}
	}
	if _, err := NewBoxCox(nil, "x").Execute(context.Background(), makeData(t, xs, nil)); err != nil {
		t.Fatal(err)
	}
}

func TestBoxCoxRejectsNonPositive(t *testing.T) {
	_, err := NewBoxCox(nil, "x").Execute(context.Background(), makeData(t, []float64{1, 0, 2}, nil))
	if !errors.Is(err, pipeline.ErrOperation) {
		t.Fatalf("err = %v", err)
	}
}

func TestRegister(t *testing.T) {
	r := pipeline.NewRegistry()
	if err := Register(r); err != nil {
		t.Fatal(err)
	}
	if got := len(r.ListByCategory(pipeline.Transform)); got != 3 {
		t.Fatalf("transform ops = %d", got)
	}
	op, err := r.Create("box_cox", config.MustTable("lambda", 0.5, "columns", []string{"x"}))
	if err != nil {
		t.Fatal(err)
	}
	if !op.(pipeline.Configurable).Spec().Params.Equal(config.MustTable("lambda", 0.5, "columns", []string{"x"})) {
		t.Fatalf("spec = %v", op.(pipeline.Configurable).Spec().Params)
	}
	if _, err := r.Create("normalize", config.MustTable("colums", []string{"x"})); err == nil {
		t.Fatal("expected unknown parameter error")
	}
}
