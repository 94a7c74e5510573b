package timeseries

import (
	"errors"
	"testing"
	"time"

	"github.com/wdm0006/industryts/pkg/frame"
)

func sensorFrame(timeName string) *frame.Frame {
	ts := frame.NewTimeColumnFrom(timeName, []time.Time{
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 1, 0, 0, 0, time.UTC),
	})
	f, _ := frame.FromColumns(
		frame.NewStringColumn("tag", 2),
		ts,
		frame.NewFloatColumnFrom("temp", []float64{20, 21}, nil),
	)
	return f
}

func TestNewDetectsTimeColumn(t *testing.T) {
	d, err := New(sensorFrame("tagTime"), "")
	if err != nil {
		t.Fatal(err)
	}
	if d.TimeColumn() != "tagTime" {
		t.Fatalf("time column = %q", d.TimeColumn())
	}
	feats := d.FeatureColumns()
	if len(feats) != 2 || feats[0] != "tag" || feats[1] != "temp" {
		t.Fatalf("features = %v", feats)
	}
	if d.Len() != 2 {
		t.Fatalf("len = %d", d.Len())
	}
}

func TestNewFallsBackToFirstColumn(t *testing.T) {
	// first column is a string, so the fallback must fail the type check
	_, err := New(sensorFrame("when"), "")
	var tie *TypeIncompatibleError
	if !errors.As(err, &tie) || tie.Column != "tag" {
		t.Fatalf("err = %v", err)
	}
	if !errors.Is(err, ErrSchema) {
		t.Fatal("expected schema category")
	}
}

func TestNewExplicitMissing(t *testing.T) {
	_, err := New(sensorFrame("ts"), "nope")
	var tnf *TimeColumnNotFoundError
	if !errors.As(err, &tnf) || tnf.Column != "nope" {
		t.Fatalf("err = %v", err)
	}
}

func TestSchemaRequire(t *testing.T) {
	d, err := New(sensorFrame("ts"), "ts")
	if err != nil {
		t.Fatal(err)
	}
	s := d.Schema()
	if got := s.NumericFeatures(); len(got) != 1 || got[0] != "temp" {
		t.Fatalf("numeric = %v", got)
	}
	var cnf *ColumnNotFoundError
	if err := s.RequireNumeric("pressure"); !errors.As(err, &cnf) || cnf.Column != "pressure" {
		t.Fatalf("err = %v", err)
	}
	var tie *TypeIncompatibleError
	if err := s.RequireNumeric("tag"); !errors.As(err, &tie) {
		t.Fatalf("err = %v", err)
	}
}

func TestWithTimeColumnAndClone(t *testing.T) {
	f := sensorFrame("ts")
	_ = f.AddColumn(frame.NewTimeColumnFrom("recorded", []time.Time{{}, {}}))
	d, _ := New(f, "ts")
	d2, err := d.WithTimeColumn("recorded")
	if err != nil {
		t.Fatal(err)
	}
	if d2.TimeColumn() != "recorded" || d.TimeColumn() != "ts" {
		t.Fatal("rebinding changed the original")
	}
	c := d.Clone()
	col, _ := c.Frame().ColumnByName("temp")
	col.SetNull(0)
	orig, _ := d.Frame().ColumnByName("temp")
	if orig.IsNull(0) {
		t.Fatal("clone shares storage")
	}
}
