package transform

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"gonum.org/v1/gonum/stat"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/frame"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/timeseries"
)

const cleanDoc = `
[pipeline]
name = "clean"

[[operations]]
type = "fill_null"
method = "forward"

[[operations]]
type = "standardize"
`

// five rows, temperature null at row 2
func sensorData(t *testing.T) *timeseries.Data {
	t.Helper()
	times := make([]time.Time, 5)
	for i := range times {
		times[i] = time.Date(2024, 1, 1, i, 0, 0, 0, time.UTC)
	}
	temp := frame.NewFloatColumnFrom("temperature", []float64{20.5, 21.0, 0, 22.5, 23.0}, []bool{true, true, false, true, true})
	f, err := frame.FromColumns(frame.NewTimeColumnFrom("DateTime", times), temp)
	if err != nil {
		t.Fatal(err)
	}
	d, err := timeseries.New(f, "")
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestStandardRegistry(t *testing.T) {
	Convey("The standard registry", t, func() {
		r := StandardRegistry()

		Convey("holds every built-in operation", func() {
			So(r.Names(), ShouldResemble, []string{
				"box_cox", "clip", "cyclical", "difference", "fill_null", "group_by",
				"lag", "normalize", "resample", "rolling", "standardize", "validate_range",
			})
			So(len(r.ListByCategory(pipeline.Features)), ShouldEqual, 4)
		})

		Convey("registering twice fails", func() {
			err := RegisterAll(r)
			So(errors.Is(err, pipeline.ErrRegistry), ShouldBeTrue)
		})
	})
}

func TestFillThenStandardize(t *testing.T) {
	Convey("Given forward fill followed by standardize", t, func() {
		p, err := pipeline.FromTOMLString(cleanDoc, StandardRegistry())
		So(err, ShouldBeNil)
		So(p.Name(), ShouldEqual, "clean")

		out, ec, err := p.ProcessWithContext(context.Background(), sensorData(t), nil)
		So(err, ShouldBeNil)
		So(out.Len(), ShouldEqual, 5)
		So(len(ec.Metrics), ShouldEqual, 2)

		col, _ := out.Frame().ColumnByName("temperature")
		So(col.NullCount(), ShouldEqual, 0)
		vals, _, err := frame.Float(col)
		So(err, ShouldBeNil)
		mean, std := stat.MeanStdDev(vals, nil)
		So(math.Abs(mean), ShouldBeLessThan, 1e-9)
		So(math.Abs(std-1), ShouldBeLessThan, 1e-9)
	})
}

func TestUnknownOperationMessage(t *testing.T) {
	Convey("An unknown type names the valid operations", t, func() {
		_, err := pipeline.FromTOMLString("[[operations]]\ntype = \"standardise\"\n", StandardRegistry())
		var ue *config.UnknownOperationTypeError
		So(errors.As(err, &ue), ShouldBeTrue)
		So(ue.Suggestion, ShouldEqual, "standardize")
		So(err.Error(), ShouldContainSubstring, "fill_null")
		So(err.Error(), ShouldContainSubstring, "resample")
	})
}

func TestConfigRoundTrip(t *testing.T) {
	doc := `
[pipeline]
name = "features"
time_column = "DateTime"

[[operations]]
type = "resample"
rule = "1h"
aggregation = "max"

[[operations]]
type = "lag"
periods = [1, 2]
columns = ["temperature"]

[[operations]]
type = "rolling"
window = 3
stat = "std"
min_periods = 2

[[operations]]
type = "clip"
lower_quantile = 0.05
upper_quantile = 0.95
`
	Convey("A pipeline written back out loads to the same document", t, func() {
		r := StandardRegistry()
		p, err := pipeline.FromTOMLString(doc, r)
		So(err, ShouldBeNil)
		b, err := p.MarshalTOML()
		So(err, ShouldBeNil)
		again, err := pipeline.FromTOMLString(string(b), r)
		So(err, ShouldBeNil)

		c1, _ := p.Config()
		c2, _ := again.Config()
		So(c1.Equal(c2), ShouldBeTrue)
		So(strings.Index(string(b), "[pipeline]"), ShouldBeLessThan, strings.Index(string(b), "[[operations]]"))
	})
}

func TestBuiltPipelineValidates(t *testing.T) {
	Convey("Dry-run validation reports every bad step", t, func() {
		cfg, err := config.ParseTOML([]byte(`
[[operations]]
type = "lag"

[[operations]]
type = "rolling"
window = "three"

[[operations]]
type = "normalize"
`))
		So(err, ShouldBeNil)
		err = pipeline.ValidateConfig(cfg, StandardRegistry())
		var verrs pipeline.ValidationErrors
		So(errors.As(err, &verrs), ShouldBeTrue)
		So(len(verrs), ShouldEqual, 2)
		So(verrs[0].Index, ShouldEqual, 0)
		So(verrs[1].Index, ShouldEqual, 1)
	})
}
