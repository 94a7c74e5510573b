package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/wdm0006/industryts/pkg/frame"
	"github.com/wdm0006/industryts/pkg/io/csvio"
	"github.com/wdm0006/industryts/pkg/io/jsonlio"
	"github.com/wdm0006/industryts/pkg/io/parquetio"
	"github.com/wdm0006/industryts/pkg/pipeline"
)

const (
	sensorsCSV   = "../../examples/data/sensors.csv"
	cleanTOML    = "../../examples/configs/clean.toml"
	featuresTOML = "../../examples/configs/features.toml"
	perSensor    = "../../examples/configs/per_sensor.yaml"
)

func run(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := realMain(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func nulls(f *frame.Frame, name string) int {
	col, ok := f.ColumnByName(name)
	So(ok, ShouldBeTrue)
	n := 0
	for i := 0; i < col.Len(); i++ {
		if col.IsNull(i) {
			n++
		}
	}
	return n
}

func TestUsage(t *testing.T) {
	Convey("no command prints usage", t, func() {
		code, _, stderr := run()
		So(code, ShouldEqual, 2)
		So(stderr, ShouldContainSubstring, "usage: industryts")
	})

	Convey("an unknown command is rejected", t, func() {
		code, _, stderr := run("frobnicate")
		So(code, ShouldEqual, 2)
		So(stderr, ShouldContainSubstring, `unknown command "frobnicate"`)
	})

	Convey("version prints the version", t, func() {
		code, stdout, _ := run("version")
		So(code, ShouldEqual, 0)
		So(stdout, ShouldContainSubstring, version)
	})
}

func TestOps(t *testing.T) {
	Convey("ops lists every registered operation", t, func() {
		code, stdout, _ := run("ops")
		So(code, ShouldEqual, 0)
		for _, name := range []string{"fill_null", "resample", "rolling", "group_by", "box_cox"} {
			So(stdout, ShouldContainSubstring, name)
		}
	})

	Convey("ops filters by category", t, func() {
		code, stdout, _ := run("ops", "-category", "Features")
		So(code, ShouldEqual, 0)
		So(stdout, ShouldContainSubstring, "cyclical")
		So(stdout, ShouldNotContainSubstring, "fill_null")
	})

	Convey("an unknown category is a usage error", t, func() {
		code, _, _ := run("ops", "-category", "Magic")
		So(code, ShouldEqual, 2)
	})
}

func TestRun(t *testing.T) {
	Convey("Given the sensor sample", t, func() {
		dir := t.TempDir()

		Convey("clean.toml fills every gap", func() {
			out := filepath.Join(dir, "clean.csv")
			code, _, stderr := run("run", "-config", cleanTOML, "-input", sensorsCSV, "-output", out, "-summary-json")
			So(code, ShouldEqual, 0)
			So(stderr, ShouldContainSubstring, `"input_xxh3"`)
			So(stderr, ShouldContainSubstring, `"total_operations": 3`)

			f, _, err := csvio.ReadFile(out, csvio.ReaderOptions{HasHeader: true})
			So(err, ShouldBeNil)
			So(f.Rows(), ShouldEqual, 48)
			So(nulls(f, "temperature"), ShouldEqual, 0)
			So(nulls(f, "pressure"), ShouldEqual, 0)
		})

		Convey("output - writes CSV to stdout", func() {
			code, stdout, _ := run("run", "-config", cleanTOML, "-input", sensorsCSV, "-output", "-", "-log-level", "error")
			So(code, ShouldEqual, 0)
			So(strings.HasPrefix(stdout, "DateTime,"), ShouldBeTrue)
		})

		Convey("features.toml resamples hourly into Parquet", func() {
			out := filepath.Join(dir, "features.parquet")
			code, _, stderr := run("run", "-config", featuresTOML, "-input", sensorsCSV, "-output", out, "-metrics")
			So(code, ShouldEqual, 0)
			So(stderr, ShouldContainSubstring, `industryts_operations_total{operation="resample",pipeline="sensors-features",status="ok"} 1`)

			f, err := parquetio.ReadFile(out)
			So(err, ShouldBeNil)
			So(f.Rows(), ShouldEqual, 24)
			names := f.Schema().Names()
			So(names, ShouldContain, "temperature_lag_1")
			So(names, ShouldContain, "temperature_rolling_mean_3")
			So(names, ShouldContain, "hour_sin")
			So(nulls(f, "temperature_lag_24"), ShouldEqual, 24)
		})

		Convey("a YAML document groups by sensor", func() {
			out := filepath.Join(dir, "per_sensor.csv")
			code, _, _ := run("run", "-config", perSensor, "-input", sensorsCSV, "-output", out)
			So(code, ShouldEqual, 0)
			f, _, err := csvio.ReadFile(out, csvio.ReaderOptions{HasHeader: true})
			So(err, ShouldBeNil)
			So(f.Rows(), ShouldEqual, 2)
		})

		Convey("a failing step exits 1 and writes nothing", func() {
			cfg := filepath.Join(dir, "strict.toml")
			So(os.WriteFile(cfg, []byte("[[operations]]\ntype = \"validate_range\"\ncolumns = [\"temperature\"]\nallow_nulls = false\n"), 0o644), ShouldBeNil)
			out := filepath.Join(dir, "strict.csv")
			code, _, stderr := run("run", "-config", cfg, "-input", sensorsCSV, "-output", out)
			So(code, ShouldEqual, 1)
			So(stderr, ShouldContainSubstring, "pipeline failed")
			_, err := os.Stat(out)
			So(os.IsNotExist(err), ShouldBeTrue)
		})

		Convey("JSON Lines output follows the extension", func() {
			out := filepath.Join(dir, "clean.jsonl")
			code, _, _ := run("run", "-config", cleanTOML, "-input", sensorsCSV, "-output", out)
			So(code, ShouldEqual, 0)
			f, err := jsonlio.ReadFile(out, jsonlio.ReaderOptions{})
			So(err, ShouldBeNil)
			So(f.Rows(), ShouldEqual, 48)
			So(f.Schema().Names()[0], ShouldEqual, "DateTime")
		})

		Convey("-config is required", func() {
			code, _, _ := run("run", "-input", sensorsCSV)
			So(code, ShouldEqual, 2)
		})
	})
}

func TestSummaryJSON(t *testing.T) {
	Convey("a summary that cannot be encoded is reported, not printed", t, func() {
		ec := pipeline.NewExecutionContext()
		ec.RecordOperation(pipeline.OperationMetrics{Operation: "lag", OutputRows: 3, Throughput: math.NaN()})
		var buf bytes.Buffer
		err := writeSummaryJSON(&buf, ec)
		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldStartWith, "run summary:")
		So(buf.Len(), ShouldEqual, 0)
	})
}

func TestValidate(t *testing.T) {
	Convey("a good document against the sample passes", t, func() {
		code, stdout, _ := run("validate", "-config", featuresTOML, "-input", sensorsCSV)
		So(code, ShouldEqual, 0)
		So(stdout, ShouldContainSubstring, "7 operations OK")
	})

	Convey("a misspelt type gets a suggestion", t, func() {
		cfg := filepath.Join(t.TempDir(), "typo.toml")
		So(os.WriteFile(cfg, []byte("[[operations]]\ntype = \"standardise\"\n"), 0o644), ShouldBeNil)
		code, stdout, _ := run("validate", "-config", cfg)
		So(code, ShouldEqual, 1)
		So(stdout, ShouldContainSubstring, `did you mean "standardize"?`)
	})

	Convey("columns missing from the input are reported", t, func() {
		cfg := filepath.Join(t.TempDir(), "missing.toml")
		So(os.WriteFile(cfg, []byte("[[operations]]\ntype = \"lag\"\nperiods = [1]\ncolumns = [\"humidity\"]\n"), 0o644), ShouldBeNil)
		code, stdout, _ := run("validate", "-config", cfg, "-input", sensorsCSV)
		So(code, ShouldEqual, 1)
		So(stdout, ShouldContainSubstring, "humidity")
	})
}
