package profile

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/wdm0006/industryts/pkg/frame"
)

func sample(t *testing.T) *frame.Frame {
	t.Helper()
	s := frame.Schema{Columns: []frame.ColumnSchema{
		{Name: "DateTime", Type: frame.KindTime, Nullable: true},
		{Name: "temp", Type: frame.KindFloat, Nullable: true},
		{Name: "sensor", Type: frame.KindString, Nullable: true},
		{Name: "ok", Type: frame.KindBool, Nullable: true},
	}}
	f := frame.NewFrame(s)
	base := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		f.AppendNullRow()
		_ = f.SetCell(i, "DateTime", base.Add(time.Duration(i)*time.Hour))
		if i != 2 {
			_ = f.SetCell(i, "temp", float64(i))
		}
		_ = f.SetCell(i, "sensor", []string{"a", "b", "a", "a"}[i])
		_ = f.SetCell(i, "ok", i%2 == 0)
	}
	return f
}

func TestCollector(t *testing.T) {
	c := Of(sample(t), 1)
	temp, _ := c.Column("temp")
	if temp.Num.Count != 3 || temp.Num.Nulls != 1 || temp.Num.Min != 0 || temp.Num.Max != 3 {
		t.Fatalf("temp = %+v", temp.Num)
	}
	if m := temp.Num.Mean(); m != 4.0/3 {
		t.Fatalf("mean = %v", m)
	}
	ts, _ := c.Column("DateTime")
	if ts.Time.Count != 4 || !ts.Time.Last.Equal(time.Date(2024, 2, 1, 3, 0, 0, 0, time.UTC)) {
		t.Fatalf("time = %+v", ts.Time)
	}
	ok, _ := c.Column("ok")
	if ok.Bool.True != 2 || ok.Bool.False != 2 {
		t.Fatalf("ok = %+v", ok.Bool)
	}

	text := c.ReportText()
	if !strings.Contains(text, `* "a": 3`) || strings.Contains(text, `"b"`) {
		t.Fatalf("report:\n%s", text)
	}
	if _, err := json.Marshal(c.ReportJSON()); err != nil {
		t.Fatal(err)
	}
}

func TestConsumeFrameAccumulates(t *testing.T) {
	f := sample(t)
	c := NewCollector(f.Schema(), 0)
	c.ConsumeFrame(f)
	c.ConsumeFrame(f)
	s, _ := c.Column("sensor")
	if s.Str.Count != 8 || len(s.Str.Freqs) != 0 {
		t.Fatalf("sensor = %+v", s.Str)
	}
}
