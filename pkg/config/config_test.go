package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

const sensorsTOML = `# hourly sensor cleanup
[pipeline]
name = "sensors"
time_column = "DateTime"

[[operations]]
type = "fill_null"
method = "forward"
columns = ["temp", "pressure"]

[[operations]]
type = "lag"
periods = [1, 2]

[[operations]]
type = "clip"
min = 0
max = 99.5
`

const sensorsYAML = `pipeline:
  name: sensors
  time_column: DateTime
operations:
  - type: fill_null
    method: forward
    columns: [temp, pressure]
  - type: lag
    periods: [1, 2]
  - type: clip
    min: 0
    max: 99.5
`

func TestParseTOML(t *testing.T) {
	Convey("Given a pipeline document", t, func() {
		cfg, err := ParseTOML([]byte(sensorsTOML))
		So(err, ShouldBeNil)

		Convey("pipeline settings are read", func() {
			So(cfg.Name, ShouldEqual, "sensors")
			So(cfg.TimeColumn, ShouldEqual, "DateTime")
		})

		Convey("operations keep document order and lines", func() {
			So(cfg.Types(), ShouldResemble, []string{"fill_null", "lag", "clip"})
			So(cfg.Operations[0].Line, ShouldEqual, 6)
			So(cfg.Operations[1].Line, ShouldEqual, 11)
			So(cfg.Operations[2].Line, ShouldEqual, 15)
		})

		Convey("parameter keys keep document order without type", func() {
			So(cfg.Operations[0].Params.Keys(), ShouldResemble, []string{"method", "columns"})
			So(cfg.Operations[2].Params.Keys(), ShouldResemble, []string{"min", "max"})
		})

		Convey("values keep their kinds", func() {
			min, _ := cfg.Operations[2].Params.Get("min")
			So(min.Kind(), ShouldEqual, KindInteger)
			max, _ := cfg.Operations[2].Params.Get("max")
			So(max.Kind(), ShouldEqual, KindFloat)
			periods, _ := cfg.Operations[1].Params.Get("periods")
			So(periods.Equal(Array(Integer(1), Integer(2))), ShouldBeTrue)
		})
	})
}

func TestParseYAMLMatchesTOML(t *testing.T) {
	fromTOML, err := ParseTOML([]byte(sensorsTOML))
	if err != nil {
		t.Fatal(err)
	}
	fromYAML, err := ParseYAML([]byte(sensorsYAML))
	if err != nil {
		t.Fatal(err)
	}
	if !fromTOML.Equal(fromYAML) {
		t.Fatalf("yaml config differs:\n%+v\n%+v", fromTOML, fromYAML)
	}
	if fromYAML.Operations[1].Line != 8 {
		t.Fatalf("yaml line = %d", fromYAML.Operations[1].Line)
	}
}

func TestRoundTrip(t *testing.T) {
	cfg, err := ParseTOML([]byte(sensorsTOML))
	if err != nil {
		t.Fatal(err)
	}
	out, err := cfg.MarshalTOML()
	if err != nil {
		t.Fatal(err)
	}
	back, err := ParseTOML(out)
	if err != nil {
		t.Fatalf("re-parse: %v\n%s", err, out)
	}
	if !cfg.Equal(back) {
		t.Fatalf("round trip changed config:\n%s", out)
	}
	if got := back.Operations[0].Params.Keys(); got[0] != "method" {
		t.Fatalf("key order lost: %v", got)
	}

	path := filepath.Join(t.TempDir(), "p.toml")
	if err := cfg.SaveTOML(path); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Equal(loaded) {
		t.Fatal("saved file differs")
	}
}

func TestParseErrors(t *testing.T) {
	Convey("Given malformed documents", t, func() {
		Convey("a syntax error reports its line", func() {
			_, err := ParseTOML([]byte("[pipeline]\nname = \"x\"\n\n[[operations]\ntype = \"lag\"\n"))
			var se *ParseSyntaxError
			So(errors.As(err, &se), ShouldBeTrue)
			So(se.Line, ShouldEqual, 4)
			So(errors.Is(err, ErrConfig), ShouldBeTrue)
		})

		Convey("an operation without type is a missing parameter", func() {
			_, err := ParseTOML([]byte("[pipeline]\nname = \"x\"\n\n[[operations]]\nmethod = \"mean\"\n"))
			var me *MissingParameterError
			So(errors.As(err, &me), ShouldBeTrue)
			So(me.Field, ShouldEqual, "type")
			So(me.Index, ShouldEqual, 0)
			So(me.Line, ShouldEqual, 4)
		})

		Convey("a non-string type is a type mismatch", func() {
			_, err := ParseTOML([]byte("[[operations]]\ntype = 3\n"))
			var tm *TypeMismatchError
			So(errors.As(err, &tm), ShouldBeTrue)
			So(tm.Got, ShouldEqual, "integer")
		})

		Convey("an unknown top-level key gets a suggestion", func() {
			_, err := ParseTOML([]byte("[pipelin]\nname = \"x\"\n"))
			var ue *UnknownParameterError
			So(errors.As(err, &ue), ShouldBeTrue)
			So(ue.Suggestion, ShouldEqual, "pipeline")
		})

		Convey("an unknown pipeline key is rejected", func() {
			_, err := ParseTOML([]byte("[pipeline]\nname = \"x\"\ntime_colum = \"ts\"\n"))
			var ue *UnknownParameterError
			So(errors.As(err, &ue), ShouldBeTrue)
			So(ue.Suggestion, ShouldEqual, "time_column")
		})
	})
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadTOML(filepath.Join(t.TempDir(), "none.toml"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v", err)
	}
}
