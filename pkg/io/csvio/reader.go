// Package csvio reads CSV files into frames, inferring column kinds from a
// sample of rows, and writes frames back out.
package csvio

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/wdm0006/industryts/pkg/frame"
	iox "github.com/wdm0006/industryts/pkg/io/ioutils"
)

// DefaultTimeLayouts are tried in order when inferring and parsing datetime
// columns. Values without a zone are read as UTC.
var DefaultTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006/01/02 15:04:05",
	"2006-01-02",
}

var numre = regexp.MustCompile(`^[-+]?[0-9]*\.?[0-9]+([eE][-+]?[0-9]+)?$`)

type ReaderOptions struct {
	HasHeader   bool
	Delimiter   rune // 0 = sniff, default ','
	SampleRows  int  // for inference; default 100
	Strict      bool // if true, error on short/long records
	TimeLayouts []string
}

func (o ReaderOptions) layouts() []string {
	if len(o.TimeLayouts) > 0 {
		return o.TimeLayouts
	}
	return DefaultTimeLayouts
}

type Reader struct {
	r      *csv.Reader
	opt    ReaderOptions
	buf    [][]string
	layout map[string]string // column -> detected time layout

	shortRecords int
	longRecords  int
}

// NewReader wraps r. With Delimiter 0 the first 4KiB are sniffed.
func NewReader(r io.Reader, opt ReaderOptions) *Reader {
	br := bufio.NewReader(r)
	cr := csv.NewReader(br)
	if opt.Delimiter == 0 {
		sample, _ := br.Peek(4096)
		d, lazy := sniffDelimiterAndQuotes(sample)
		cr.Comma = d
		cr.LazyQuotes = lazy
	} else {
		cr.Comma = opt.Delimiter
	}
	cr.FieldsPerRecord = -1
	return &Reader{r: cr, opt: opt, layout: make(map[string]string)}
}

// Open opens a possibly gzipped CSV file (or stdin for "-"). The caller
// closes the returned closer.
func Open(path string, opt ReaderOptions) (*Reader, io.Closer, error) {
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return nil, nil, err
	}
	return NewReader(rc, opt), rc, nil
}

// ReadFile opens, infers and reads path in one go. The second result
// summarises repaired records, empty when there were none.
func ReadFile(path string, opt ReaderOptions) (*frame.Frame, string, error) {
	r, c, err := Open(path, opt)
	if err != nil {
		return nil, "", err
	}
	defer func() { _ = c.Close() }()
	schema, err := r.InferSchema()
	if err != nil {
		return nil, "", fmt.Errorf("csv infer schema: %w", err)
	}
	f, err := r.ReadAll(schema)
	if err != nil {
		return nil, "", err
	}
	return f, r.Warnings(), nil
}

// InferSchema reads the header (if present) and samples rows to determine
// column kinds. Sampled rows are kept for ReadAll.
func (r *Reader) InferSchema() (frame.Schema, error) {
	rec, err := r.r.Read()
	if err != nil {
		return frame.Schema{}, err
	}
	names := make([]string, len(rec))
	if r.opt.HasHeader {
		for i := range rec {
			names[i] = strings.ToValidUTF8(strings.TrimSpace(rec[i]), "?")
		}
		names[0] = strings.TrimPrefix(names[0], "\ufeff")
		if rec, err = r.r.Read(); err != nil && err != io.EOF {
			return frame.Schema{}, err
		}
	} else {
		for i := range names {
			names[i] = "col_" + strconv.Itoa(i)
		}
	}

	var sample [][]string
	if rec != nil {
		sample = append(sample, append([]string(nil), rec...))
	}
	limit := r.opt.SampleRows
	if limit <= 0 {
		limit = 100
	}
	for len(sample) > 0 && len(sample) < limit {
		rr, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return frame.Schema{}, err
		}
		sample = append(sample, append([]string(nil), rr...))
	}

	kinds, layouts := inferKinds(sample, len(names), r.opt.layouts())
	schema := frame.Schema{Columns: make([]frame.ColumnSchema, len(names))}
	for i := range names {
		schema.Columns[i] = frame.ColumnSchema{Name: names[i], Type: kinds[i], Nullable: true}
		if kinds[i] == frame.KindTime {
			r.layout[names[i]] = layouts[i]
		}
	}
	r.buf = sample
	return schema, nil
}

// ReadAll loads the sampled rows and the rest of the input into a frame.
// Cells that fail to parse as their column's kind are left null.
func (r *Reader) ReadAll(schema frame.Schema) (*frame.Frame, error) {
	f := frame.NewFrame(schema)
	for _, rec := range r.buf {
		if err := r.appendRecord(f, schema, rec); err != nil {
			return nil, err
		}
	}
	r.buf = nil
	for {
		rec, err := r.r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := r.appendRecord(f, schema, rec); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func (r *Reader) appendRecord(f *frame.Frame, schema frame.Schema, rec []string) error {
	n := len(schema.Columns)
	switch {
	case len(rec) < n:
		r.shortRecords++
		if r.opt.Strict {
			return fmt.Errorf("csv short record at row %d: need %d fields, got %d", f.Rows()+1, n, len(rec))
		}
	case len(rec) > n:
		r.longRecords++
		if r.opt.Strict {
			return fmt.Errorf("csv long record at row %d: need %d fields, got %d", f.Rows()+1, n, len(rec))
		}
	}
	f.AppendNullRow()
	row := f.Rows() - 1
	for i, cs := range schema.Columns {
		if i >= len(rec) {
			break
		}
		val := strings.ToValidUTF8(strings.TrimSpace(rec[i]), "?")
		if val == "" {
			continue
		}
		if v, ok := r.parse(cs, val); ok {
			_ = f.SetCell(row, cs.Name, v)
		}
	}
	return nil
}

func (r *Reader) parse(cs frame.ColumnSchema, val string) (any, bool) {
	switch cs.Type {
	case frame.KindFloat:
		x, err := strconv.ParseFloat(val, 64)
		return x, err == nil
	case frame.KindInt:
		x, err := strconv.ParseInt(val, 10, 64)
		return x, err == nil
	case frame.KindBool:
		x, err := strconv.ParseBool(strings.ToLower(val))
		return x, err == nil
	case frame.KindTime:
		if l, ok := r.layout[cs.Name]; ok {
			if t, err := time.Parse(l, val); err == nil {
				return t, true
			}
		}
		return parseTime(val, r.opt.layouts())
	default:
		return val, true
	}
}

func parseTime(v string, layouts []string) (time.Time, bool) {
	for _, l := range layouts {
		if t, err := time.Parse(l, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// inferKinds picks a kind per column from the sample. A column is datetime
// when every non-empty value parses with one layout, otherwise int, float,
// bool or string, in that order of preference.
func inferKinds(rows [][]string, ncol int, layouts []string) ([]frame.Kind, []string) {
	kinds := make([]frame.Kind, ncol)
	found := make([]string, ncol)
	for c := 0; c < ncol; c++ {
		var vals []string
		for _, row := range rows {
			if c < len(row) {
				if v := strings.TrimSpace(row[c]); v != "" {
					vals = append(vals, v)
				}
			}
		}
		kinds[c], found[c] = inferKind(vals, layouts)
	}
	return kinds, found
}

func inferKind(vals []string, layouts []string) (frame.Kind, string) {
	if len(vals) == 0 {
		return frame.KindString, ""
	}
	num, integer, boolean := 0, 0, 0
	for _, v := range vals {
		if numre.MatchString(v) {
			num++
			if !strings.ContainsAny(v, ".eE") {
				integer++
			}
			continue
		}
		if lv := strings.ToLower(v); lv == "true" || lv == "false" {
			boolean++
		}
	}
	switch {
	case integer == len(vals):
		return frame.KindInt, ""
	case num == len(vals):
		return frame.KindFloat, ""
	case boolean == len(vals):
		return frame.KindBool, ""
	}
	for _, l := range layouts {
		ok := true
		for _, v := range vals {
			if _, err := time.Parse(l, v); err != nil {
				ok = false
				break
			}
		}
		if ok {
			return frame.KindTime, l
		}
	}
	return frame.KindString, ""
}

func sniffDelimiterAndQuotes(sample []byte) (rune, bool) {
	if len(sample) == 0 {
		return ',', false
	}
	best, bestCount := byte(','), -1
	for _, c := range []byte{',', '\t', ';', '|'} {
		cnt := 0
		for _, b := range sample {
			if b == c {
				cnt++
			}
		}
		if cnt > bestCount {
			best, bestCount = c, cnt
		}
	}
	quotes := 0
	for _, b := range sample {
		if b == '"' {
			quotes++
		}
	}
	return rune(best), quotes%2 != 0
}

// Warnings returns a summary of any repairs encountered.
func (r *Reader) Warnings() string {
	var parts []string
	if r.shortRecords > 0 {
		parts = append(parts, fmt.Sprintf("short_records=%d", r.shortRecords))
	}
	if r.longRecords > 0 {
		parts = append(parts, fmt.Sprintf("long_records=%d", r.longRecords))
	}
	return strings.Join(parts, ", ")
}
