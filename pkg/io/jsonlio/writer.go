package jsonlio

import (
	"bufio"
	"encoding/json"
	"io"
	"math"
	"time"

	"github.com/wdm0006/industryts/pkg/frame"
	iox "github.com/wdm0006/industryts/pkg/io/ioutils"
)

// Write emits one object per row with keys in column order. Nulls and
// non-finite floats are left out of the object.
func Write(w io.Writer, f *frame.Frame) error {
	bw := bufio.NewWriter(w)
	keys := make([][]byte, f.Cols())
	for i, name := range f.Schema().Names() {
		b, err := json.Marshal(name)
		if err != nil {
			return err
		}
		keys[i] = b
	}
	for r := 0; r < f.Rows(); r++ {
		_ = bw.WriteByte('{')
		first := true
		for c := range keys {
			v := f.Column(c).Value(r)
			switch t := v.(type) {
			case nil:
				continue
			case float64:
				if math.IsNaN(t) || math.IsInf(t, 0) {
					continue
				}
			case time.Time:
				v = t.Format(time.RFC3339Nano)
			}
			b, err := json.Marshal(v)
			if err != nil {
				return err
			}
			if !first {
				_ = bw.WriteByte(',')
			}
			first = false
			_, _ = bw.Write(keys[c])
			_ = bw.WriteByte(':')
			_, _ = bw.Write(b)
		}
		if _, err := bw.WriteString("}\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func WriteFile(path string, f *frame.Frame) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	if err := Write(out, f); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
