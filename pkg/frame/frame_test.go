package frame_test

import (
	"testing"
	"time"

	"github.com/wdm0006/industryts/pkg/frame"
)

func makeFrame(t *testing.T) *frame.Frame {
	t.Helper()
	s := frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "ts", Type: frame.KindTime, Nullable: true},
		{Name: "x", Type: frame.KindFloat, Nullable: true},
		{Name: "n", Type: frame.KindInt, Nullable: true},
	}}
	f := frame.NewFrame(s)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		f.AppendNullRow()
		if err := f.SetCell(i, "ts", base.Add(time.Duration(i)*time.Hour)); err != nil {
			t.Fatal(err)
		}
	}
	_ = f.SetCell(0, "x", 1.5)
	_ = f.SetCell(2, "x", 3)
	_ = f.SetCell(1, "n", int64(7))
	return f
}

func TestSetCellAndNulls(t *testing.T) {
	f := makeFrame(t)
	if f.Rows() != 3 || f.Cols() != 3 {
		t.Fatalf("shape = %dx%d", f.Rows(), f.Cols())
	}
	col, _ := f.ColumnByName("x")
	if col.NullCount() != 1 {
		t.Fatalf("null count = %d", col.NullCount())
	}
	x := col.(*frame.FloatColumn)
	if v, ok := x.Get(2); !ok || v != 3 {
		t.Fatalf("x[2] = %v %v", v, ok)
	}
	if err := f.SetCell(0, "x", "nope"); err == nil {
		t.Fatal("expected type error")
	}
	if err := f.SetCell(0, "missing", 1.0); err == nil {
		t.Fatal("expected unknown column error")
	}
}

func TestCloneIsDeep(t *testing.T) {
	f := makeFrame(t)
	c := f.Clone()
	col, _ := c.ColumnByName("x")
	col.(*frame.FloatColumn).Set(1, 42)
	orig, _ := f.ColumnByName("x")
	if !orig.IsNull(1) {
		t.Fatal("clone shares storage with original")
	}
}

func TestAddAndReplaceColumn(t *testing.T) {
	f := makeFrame(t)
	if err := f.AddColumn(frame.NewFloatColumn("y", 2)); err == nil {
		t.Fatal("expected length mismatch")
	}
	if err := f.AddColumn(frame.NewFloatColumn("x", 3)); err == nil {
		t.Fatal("expected duplicate column")
	}
	if err := f.AddColumn(frame.NewFloatColumnFrom("y", []float64{1, 2, 3}, nil)); err != nil {
		t.Fatal(err)
	}
	if got := f.Schema().Names(); len(got) != 4 || got[3] != "y" {
		t.Fatalf("names = %v", got)
	}
	if err := f.ReplaceColumn(frame.NewFloatColumn("n", 3)); err != nil {
		t.Fatal(err)
	}
	cs, _ := f.Schema().Lookup("n")
	if cs.Type != frame.KindFloat {
		t.Fatalf("replaced kind = %s", cs.Type)
	}
}

func TestFloatAndTake(t *testing.T) {
	f := makeFrame(t)
	col, _ := f.ColumnByName("n")
	vals, valid, err := frame.Float(col)
	if err != nil {
		t.Fatal(err)
	}
	if got := frame.Present(vals, valid); len(got) != 1 || got[0] != 7 {
		t.Fatalf("present = %v", got)
	}
	ts, _ := f.ColumnByName("ts")
	if _, _, err := frame.Float(ts); err == nil {
		t.Fatal("expected non-numeric error")
	}

	sub := f.Take([]int{2, -1})
	if sub.Rows() != 2 {
		t.Fatalf("rows = %d", sub.Rows())
	}
	x, _ := sub.ColumnByName("x")
	if x.IsNull(0) || !x.IsNull(1) {
		t.Fatal("take did not carry values and nulls")
	}
}
