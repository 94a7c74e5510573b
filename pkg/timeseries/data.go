// Package timeseries binds a frame to the column holding its timestamps.
package timeseries

import (
	"github.com/wdm0006/industryts/pkg/frame"
)

// TimeColumnCandidates are tried in order when no time column is named.
var TimeColumnCandidates = []string{
	"DateTime", "datetime", "tagTime", "tagtime",
	"timestamp", "Timestamp", "time", "Time", "date", "Date",
}

// Data is a frame plus the name of its time column. Every other column is a
// feature column.
type Data struct {
	frame      *frame.Frame
	timeColumn string
}

// New wraps f. An empty timeColumn is auto-detected from
// TimeColumnCandidates, falling back to the first column.
func New(f *frame.Frame, timeColumn string) (*Data, error) {
	if timeColumn == "" {
		timeColumn = detectTimeColumn(f.Schema())
	}
	d := &Data{frame: f, timeColumn: timeColumn}
	if err := d.Schema().RequireTime(); err != nil {
		return nil, err
	}
	return d, nil
}

func detectTimeColumn(s frame.Schema) string {
	for _, name := range TimeColumnCandidates {
		if _, ok := s.Lookup(name); ok {
			return name
		}
	}
	if len(s.Columns) > 0 {
		return s.Columns[0].Name
	}
	return ""
}

func (d *Data) Frame() *frame.Frame { return d.frame }
func (d *Data) TimeColumn() string  { return d.timeColumn }
func (d *Data) Len() int            { return d.frame.Rows() }

// FeatureColumns lists every column except the time column, in frame order.
func (d *Data) FeatureColumns() []string {
	return d.Schema().Features()
}

// Schema snapshots the shape of d.
func (d *Data) Schema() Schema {
	return Schema{TimeColumn: d.timeColumn, Columns: d.frame.Schema().Columns, Rows: d.frame.Rows()}
}

// Times returns the time column.
func (d *Data) Times() *frame.TimeColumn {
	c, _ := d.frame.ColumnByName(d.timeColumn)
	return c.(*frame.TimeColumn)
}

// Clone deep-copies the underlying frame.
func (d *Data) Clone() *Data {
	return &Data{frame: d.frame.Clone(), timeColumn: d.timeColumn}
}

// WithFrame replaces the frame, keeping the time column name.
func (d *Data) WithFrame(f *frame.Frame) (*Data, error) {
	return New(f, d.timeColumn)
}

// WithTimeColumn rebinds the same frame to another time column.
func (d *Data) WithTimeColumn(name string) (*Data, error) {
	if name == d.timeColumn {
		return d, nil
	}
	return New(d.frame, name)
}
