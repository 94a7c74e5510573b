package parquetio

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/wdm0006/industryts/pkg/frame"
)

func makeFrame(rows int) *frame.Frame {
	s := frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "ts", Type: frame.KindTime, Nullable: true},
		{Name: "a", Type: frame.KindFloat, Nullable: true},
		{Name: "b", Type: frame.KindInt, Nullable: true},
		{Name: "tag", Type: frame.KindString, Nullable: true},
	}}
	f := frame.NewFrame(s)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < rows; i++ {
		f.AppendNullRow()
		_ = f.SetCell(i, "ts", base.Add(time.Duration(i)*time.Second))
		if i%7 != 3 {
			_ = f.SetCell(i, "a", float64(i%100)/4)
		}
		_ = f.SetCell(i, "b", int64(i%10))
		_ = f.SetCell(i, "tag", "s"+string(rune('a'+i%3)))
	}
	return f
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "frame.parquet")
	in := makeFrame(20)
	if err := WriteFile(path, in); err != nil {
		t.Fatal(err)
	}
	out, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if out.Rows() != 20 {
		t.Fatalf("rows = %d", out.Rows())
	}
	for _, cs := range in.Schema().Columns {
		got, ok := out.Schema().Lookup(cs.Name)
		if !ok || got.Type != cs.Type {
			t.Fatalf("%s: got %+v", cs.Name, got)
		}
		ic, _ := in.ColumnByName(cs.Name)
		oc, _ := out.ColumnByName(cs.Name)
		for r := 0; r < in.Rows(); r++ {
			iv, ov := ic.Value(r), oc.Value(r)
			if it, ok := iv.(time.Time); ok {
				if !it.Equal(ov.(time.Time)) {
					t.Fatalf("%s[%d] = %v, want %v", cs.Name, r, ov, iv)
				}
				continue
			}
			if iv != ov {
				t.Fatalf("%s[%d] = %v, want %v", cs.Name, r, ov, iv)
			}
		}
	}
}

func BenchmarkParquetWrite(b *testing.B) {
	f := makeFrame(50000)
	path := filepath.Join(b.TempDir(), "bench.parquet")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := WriteFile(path, f); err != nil {
			b.Fatal(err)
		}
	}
}
