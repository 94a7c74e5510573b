// Package profile summarises the columns of a frame: counts, nulls, numeric
// ranges, time spans and the most frequent strings.
package profile

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/wdm0006/industryts/pkg/frame"
)

type NumStats struct {
	Count int     `json:"count"`
	Nulls int     `json:"nulls"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Sum   float64 `json:"sum"`
}

// Mean is Sum/Count, 0 for an all-null column.
func (n *NumStats) Mean() float64 {
	if n.Count == 0 {
		return 0
	}
	return n.Sum / float64(n.Count)
}

type BoolStats struct {
	Count int `json:"count"`
	Nulls int `json:"nulls"`
	True  int `json:"true"`
	False int `json:"false"`
}

type TimeStats struct {
	Count int       `json:"count"`
	Nulls int       `json:"nulls"`
	First time.Time `json:"first"`
	Last  time.Time `json:"last"`
}

type StringStats struct {
	Count int
	Nulls int
	Freqs map[string]int
}

type ColumnProfile struct {
	Name string
	Kind frame.Kind
	Num  *NumStats
	Bool *BoolStats
	Time *TimeStats
	Str  *StringStats
}

// Collector accumulates statistics over one or more frames sharing a schema.
type Collector struct {
	cols  []ColumnProfile
	index map[string]int
	topK  int
}

func NewCollector(schema frame.Schema, topK int) *Collector {
	c := &Collector{index: make(map[string]int), topK: topK}
	c.cols = make([]ColumnProfile, len(schema.Columns))
	for i, cs := range schema.Columns {
		cp := ColumnProfile{Name: cs.Name, Kind: cs.Type}
		switch cs.Type {
		case frame.KindFloat, frame.KindInt:
			cp.Num = &NumStats{Min: math.Inf(1), Max: math.Inf(-1)}
		case frame.KindBool:
			cp.Bool = &BoolStats{}
		case frame.KindTime:
			cp.Time = &TimeStats{}
		default:
			cp.Str = &StringStats{Freqs: make(map[string]int)}
		}
		c.cols[i] = cp
		c.index[cs.Name] = i
	}
	return c
}

// Of profiles a single frame.
func Of(f *frame.Frame, topK int) *Collector {
	c := NewCollector(f.Schema(), topK)
	c.ConsumeFrame(f)
	return c
}

// ConsumeFrame adds the rows of f. Columns not in the collector's schema
// are ignored.
func (c *Collector) ConsumeFrame(f *frame.Frame) {
	for i := 0; i < f.Cols(); i++ {
		col := f.Column(i)
		idx, ok := c.index[col.Name()]
		if !ok {
			continue
		}
		cp := &c.cols[idx]
		for r := 0; r < col.Len(); r++ {
			cp.add(col.Value(r), c.topK > 0)
		}
	}
}

func (cp *ColumnProfile) add(v any, freqs bool) {
	switch {
	case cp.Num != nil:
		var x float64
		switch t := v.(type) {
		case nil:
			cp.Num.Nulls++
			return
		case float64:
			x = t
		case int64:
			x = float64(t)
		}
		cp.Num.Count++
		cp.Num.Min = math.Min(cp.Num.Min, x)
		cp.Num.Max = math.Max(cp.Num.Max, x)
		cp.Num.Sum += x
	case cp.Bool != nil:
		b, ok := v.(bool)
		if !ok {
			cp.Bool.Nulls++
			return
		}
		cp.Bool.Count++
		if b {
			cp.Bool.True++
		} else {
			cp.Bool.False++
		}
	case cp.Time != nil:
		t, ok := v.(time.Time)
		if !ok {
			cp.Time.Nulls++
			return
		}
		if cp.Time.Count == 0 || t.Before(cp.Time.First) {
			cp.Time.First = t
		}
		if cp.Time.Count == 0 || t.After(cp.Time.Last) {
			cp.Time.Last = t
		}
		cp.Time.Count++
	default:
		s, ok := v.(string)
		if !ok {
			cp.Str.Nulls++
			return
		}
		cp.Str.Count++
		if freqs {
			cp.Str.Freqs[s]++
		}
	}
}

// Column returns the profile of one column.
func (c *Collector) Column(name string) (ColumnProfile, bool) {
	i, ok := c.index[name]
	if !ok {
		return ColumnProfile{}, false
	}
	return c.cols[i], true
}

type Freq struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

func (c *Collector) top(s *StringStats) []Freq {
	arr := make([]Freq, 0, len(s.Freqs))
	for k, v := range s.Freqs {
		arr = append(arr, Freq{k, v})
	}
	sort.Slice(arr, func(i, j int) bool {
		if arr[i].Count != arr[j].Count {
			return arr[i].Count > arr[j].Count
		}
		return arr[i].Value < arr[j].Value
	})
	if c.topK > 0 && c.topK < len(arr) {
		arr = arr[:c.topK]
	}
	return arr
}

func (c *Collector) ReportText() string {
	var b strings.Builder
	b.WriteString("Profile Summary\n")
	for _, cp := range c.cols {
		fmt.Fprintf(&b, "- %s (%v): ", cp.Name, cp.Kind)
		switch {
		case cp.Num != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d min=%.6g max=%.6g mean=%.6g\n", cp.Num.Count, cp.Num.Nulls, cp.Num.Min, cp.Num.Max, cp.Num.Mean())
		case cp.Bool != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d true=%d false=%d\n", cp.Bool.Count, cp.Bool.Nulls, cp.Bool.True, cp.Bool.False)
		case cp.Time != nil:
			fmt.Fprintf(&b, "count=%d nulls=%d", cp.Time.Count, cp.Time.Nulls)
			if cp.Time.Count > 0 {
				fmt.Fprintf(&b, " first=%s last=%s", cp.Time.First.Format(time.RFC3339), cp.Time.Last.Format(time.RFC3339))
			}
			b.WriteByte('\n')
		default:
			fmt.Fprintf(&b, "count=%d nulls=%d\n", cp.Str.Count, cp.Str.Nulls)
			for _, f := range c.top(cp.Str) {
				fmt.Fprintf(&b, "  * %q: %d\n", f.Value, f.Count)
			}
		}
	}
	return b.String()
}

type JSONProfile struct {
	Columns []JSONColumn `json:"columns"`
}

type JSONColumn struct {
	Name string     `json:"name"`
	Kind string     `json:"kind"`
	Num  *NumStats  `json:"num,omitempty"`
	Bool *BoolStats `json:"bool,omitempty"`
	Time *TimeStats `json:"time,omitempty"`
	Str  *JSONStr   `json:"str,omitempty"`
}

type JSONStr struct {
	Count int    `json:"count"`
	Nulls int    `json:"nulls"`
	Top   []Freq `json:"top,omitempty"`
}

func (c *Collector) ReportJSON() JSONProfile {
	out := JSONProfile{Columns: make([]JSONColumn, 0, len(c.cols))}
	for _, cp := range c.cols {
		jc := JSONColumn{Name: cp.Name, Kind: cp.Kind.String(), Num: cp.Num, Bool: cp.Bool, Time: cp.Time}
		if cp.Str != nil {
			jc.Str = &JSONStr{Count: cp.Str.Count, Nulls: cp.Str.Nulls, Top: c.top(cp.Str)}
		}
		out.Columns = append(out.Columns, jc)
	}
	return out
}
