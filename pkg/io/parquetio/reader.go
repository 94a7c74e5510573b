// Package parquetio moves frames in and out of Parquet files. Reading goes
// through segmentio/parquet-go, writing through xitongsys/parquet-go.
package parquetio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	parquet "github.com/segmentio/parquet-go"

	"github.com/wdm0006/industryts/pkg/frame"
)

// TimeLayout is how datetime columns are stored as UTF8 strings.
const TimeLayout = time.RFC3339Nano

type Reader struct {
	file   *os.File
	reader *parquet.Reader
	schema frame.Schema
}

// OpenReader opens a flat Parquet file. Nested columns are rejected.
func OpenReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("parquet open %s: %w", path, err)
	}
	schema, err := frameSchema(pf.Schema())
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Reader{file: f, reader: parquet.NewReader(pf), schema: schema}, nil
}

func (r *Reader) Close() error {
	_ = r.reader.Close()
	return r.file.Close()
}

// Schema is the frame schema derived from the file's physical types.
// UTF8 columns are reported as strings until ReadAll finds that every value
// is a timestamp.
func (r *Reader) Schema() frame.Schema { return r.schema }

func frameSchema(s *parquet.Schema) (frame.Schema, error) {
	var out frame.Schema
	for _, field := range s.Fields() {
		if !field.Leaf() {
			return frame.Schema{}, fmt.Errorf("parquet column %s is nested", field.Name())
		}
		var k frame.Kind
		switch field.Type().Kind() {
		case parquet.Boolean:
			k = frame.KindBool
		case parquet.Int32, parquet.Int64:
			k = frame.KindInt
		case parquet.Float, parquet.Double:
			k = frame.KindFloat
		case parquet.ByteArray, parquet.FixedLenByteArray:
			k = frame.KindString
		default:
			return frame.Schema{}, fmt.Errorf("parquet column %s has unsupported type %s", field.Name(), field.Type())
		}
		out.Columns = append(out.Columns, frame.ColumnSchema{Name: field.Name(), Type: k, Nullable: true})
	}
	return out, nil
}

// ReadAll reads every row into a frame.
func (r *Reader) ReadAll() (*frame.Frame, error) {
	f := frame.NewFrame(r.schema)
	names := r.schema.Names()
	buf := make([]parquet.Row, 1024)
	for {
		n, err := r.reader.ReadRows(buf)
		for _, row := range buf[:n] {
			f.AppendNullRow()
			at := f.Rows() - 1
			for _, v := range row {
				if v.IsNull() || v.Column() >= len(names) {
					continue
				}
				if err := f.SetCell(at, names[v.Column()], cell(v)); err != nil {
					return nil, err
				}
			}
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parquet read rows: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return promoteTimes(f)
}

func cell(v parquet.Value) any {
	switch v.Kind() {
	case parquet.Boolean:
		return v.Boolean()
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Int64:
		return v.Int64()
	case parquet.Float:
		return float64(v.Float())
	case parquet.Double:
		return v.Double()
	default:
		return string(v.ByteArray())
	}
}

// promoteTimes turns string columns whose every value parses as TimeLayout
// into datetime columns.
func promoteTimes(f *frame.Frame) (*frame.Frame, error) {
	for i := 0; i < f.Cols(); i++ {
		sc, ok := f.Column(i).(*frame.StringColumn)
		if !ok || sc.NullCount() == sc.Len() {
			continue
		}
		tc := frame.NewTimeColumn(sc.Name(), sc.Len())
		promote := true
		for r := 0; r < sc.Len() && promote; r++ {
			s, ok := sc.Get(r)
			if !ok {
				continue
			}
			t, err := time.Parse(TimeLayout, s)
			if err != nil {
				promote = false
				break
			}
			tc.Set(r, t)
		}
		if promote {
			if err := f.ReplaceColumn(tc); err != nil {
				return nil, err
			}
		}
	}
	return f, nil
}

// ReadFile opens, reads and closes path.
func ReadFile(path string) (*frame.Frame, error) {
	r, err := OpenReader(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return r.ReadAll()
}
