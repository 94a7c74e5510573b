package csvio

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/wdm0006/industryts/pkg/frame"
	iox "github.com/wdm0006/industryts/pkg/io/ioutils"
)

type WriterOptions struct {
	Delimiter  rune   // default ','
	TimeLayout string // default RFC3339Nano
}

// WriteFile writes f to path ("-" for stdout, .gz compressed).
func WriteFile(path string, f *frame.Frame, opt WriterOptions) error {
	out, err := iox.CreateMaybeCompressed(path)
	if err != nil {
		return err
	}
	if err := Write(out, f, opt); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// Write writes a header row and every row of f. Nulls become empty fields.
func Write(w io.Writer, f *frame.Frame, opt WriterOptions) error {
	cw := csv.NewWriter(w)
	if opt.Delimiter != 0 {
		cw.Comma = opt.Delimiter
	}
	layout := opt.TimeLayout
	if layout == "" {
		layout = time.RFC3339Nano
	}
	if err := cw.Write(f.Schema().Names()); err != nil {
		return err
	}
	row := make([]string, f.Cols())
	for r := 0; r < f.Rows(); r++ {
		for c := range row {
			row[c] = format(f.Column(c).Value(r), layout)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func format(v any, layout string) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	case time.Time:
		return x.Format(layout)
	}
	return ""
}
