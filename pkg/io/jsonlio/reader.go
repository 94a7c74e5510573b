// Package jsonlio reads and writes frames as JSON Lines, one object per row.
package jsonlio

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/wdm0006/industryts/pkg/frame"
	"github.com/wdm0006/industryts/pkg/io/csvio"
	iox "github.com/wdm0006/industryts/pkg/io/ioutils"
)

type ReaderOptions struct {
	// SampleRows bounds schema inference; 0 means 1000.
	SampleRows  int
	TimeLayouts []string
}

type record map[string]any

type Reader struct {
	dec  *json.Decoder
	opt  ReaderOptions
	buf  []record
	keys []string
	line int
}

func NewReader(r io.Reader, opt ReaderOptions) *Reader {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	return &Reader{dec: dec, opt: opt}
}

// Open reads path, "-" meaning stdin. Gzipped input is detected.
func Open(path string, opt ReaderOptions) (*Reader, io.Closer, error) {
	if iox.IsStd(path) {
		return NewReader(os.Stdin, opt), io.NopCloser(nil), nil
	}
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	return NewReader(rc, opt), rc, nil
}

func ReadFile(path string, opt ReaderOptions) (*frame.Frame, error) {
	r, c, err := Open(path, opt)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()
	schema, err := r.InferSchema()
	if err != nil {
		return nil, err
	}
	return r.ReadAll(schema)
}

func (r *Reader) layouts() []string {
	if len(r.opt.TimeLayouts) > 0 {
		return r.opt.TimeLayouts
	}
	return csvio.DefaultTimeLayouts
}

// next decodes one object, recording keys in first-seen order.
func (r *Reader) next() (record, error) {
	tok, err := r.dec.Token()
	if err != nil {
		return nil, err
	}
	r.line++
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("jsonl record %d: expected object, got %v", r.line, tok)
	}
	rec := record{}
	for r.dec.More() {
		tok, err := r.dec.Token()
		if err != nil {
			return nil, fmt.Errorf("jsonl record %d: %w", r.line, err)
		}
		key := tok.(string)
		var v any
		if err := r.dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("jsonl record %d, key %s: %w", r.line, key, err)
		}
		if _, seen := rec[key]; !seen && !r.known(key) {
			r.keys = append(r.keys, key)
		}
		rec[key] = v
	}
	if _, err := r.dec.Token(); err != nil {
		return nil, fmt.Errorf("jsonl record %d: %w", r.line, err)
	}
	return rec, nil
}

func (r *Reader) known(key string) bool {
	for _, k := range r.keys {
		if k == key {
			return true
		}
	}
	return false
}

// InferSchema samples records and picks a kind per key. The sampled records
// are kept for ReadAll.
func (r *Reader) InferSchema() (frame.Schema, error) {
	limit := r.opt.SampleRows
	if limit <= 0 {
		limit = 1000
	}
	for len(r.buf) < limit {
		rec, err := r.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return frame.Schema{}, err
		}
		r.buf = append(r.buf, rec)
	}
	var schema frame.Schema
	for _, k := range r.keys {
		schema.Columns = append(schema.Columns, frame.ColumnSchema{Name: k, Type: r.inferKind(k), Nullable: true})
	}
	return schema, nil
}

func (r *Reader) inferKind(key string) frame.Kind {
	var nInt, nFloat, nBool, nTime, nStr int
	for _, rec := range r.buf {
		switch t := rec[key].(type) {
		case nil:
		case json.Number:
			if strings.ContainsAny(t.String(), ".eE") {
				nFloat++
			} else {
				nInt++
			}
		case bool:
			nBool++
		case string:
			if strings.TrimSpace(t) == "" {
				continue
			}
			if _, ok := r.parseTime(t); ok {
				nTime++
			} else {
				nStr++
			}
		default:
			nStr++
		}
	}
	switch {
	case nStr > 0 || (nBool > 0 && nInt+nFloat+nTime > 0) || (nTime > 0 && nInt+nFloat > 0):
		return frame.KindString
	case nTime > 0:
		return frame.KindTime
	case nBool > 0:
		return frame.KindBool
	case nFloat > 0:
		return frame.KindFloat
	case nInt > 0:
		return frame.KindInt
	default:
		return frame.KindString
	}
}

func (r *Reader) parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range r.layouts() {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ReadAll reads every remaining record. Keys outside schema are ignored and
// values that do not fit their column become null.
func (r *Reader) ReadAll(schema frame.Schema) (*frame.Frame, error) {
	f := frame.NewFrame(schema)
	add := func(rec record) error {
		f.AppendNullRow()
		row := f.Rows() - 1
		for _, cs := range schema.Columns {
			v, ok := r.convert(cs.Type, rec[cs.Name])
			if !ok {
				continue
			}
			if err := f.SetCell(row, cs.Name, v); err != nil {
				return err
			}
		}
		return nil
	}
	for _, rec := range r.buf {
		if err := add(rec); err != nil {
			return nil, err
		}
	}
	r.buf = nil
	for {
		rec, err := r.next()
		if errors.Is(err, io.EOF) {
			return f, nil
		}
		if err != nil {
			return nil, err
		}
		if err := add(rec); err != nil {
			return nil, err
		}
	}
}

func (r *Reader) convert(k frame.Kind, v any) (any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case json.Number:
		switch k {
		case frame.KindInt:
			x, err := t.Int64()
			return x, err == nil
		case frame.KindFloat:
			x, err := t.Float64()
			return x, err == nil
		case frame.KindString:
			return t.String(), true
		}
	case bool:
		switch k {
		case frame.KindBool:
			return t, true
		case frame.KindString:
			return fmt.Sprint(t), true
		}
	case string:
		switch k {
		case frame.KindTime:
			return r.parseTime(t)
		case frame.KindString:
			return t, true
		}
	default:
		if k == frame.KindString {
			b, err := json.Marshal(t)
			return string(b), err == nil
		}
	}
	return nil, false
}
