package parquetio

import (
	"encoding/json"
	"fmt"
	"time"

	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"

	"github.com/wdm0006/industryts/pkg/frame"
)

func parquetSchemaJSON(s frame.Schema) (string, error) {
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case frame.KindFloat:
			tag += "DOUBLE"
		case frame.KindInt:
			tag += "INT64"
		case frame.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, err := json.Marshal(sc)
	if err != nil {
		return "", fmt.Errorf("parquet schema: %w", err)
	}
	return string(b), nil
}

// WriteFile writes f to path. Datetime columns are stored as TimeLayout
// strings so ReadFile can restore them.
func WriteFile(path string, f *frame.Frame) (err error) {
	schema, err := parquetSchemaJSON(f.Schema())
	if err != nil {
		return err
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := fw.Close(); err == nil {
			err = cerr
		}
	}()
	writer, err := pw.NewJSONWriter(schema, fw, 4)
	if err != nil {
		return fmt.Errorf("parquet writer init: %w", err)
	}
	names := f.Schema().Names()
	rec := make(map[string]any, len(names))
	for r := 0; r < f.Rows(); r++ {
		clear(rec)
		for c, name := range names {
			switch v := f.Column(c).Value(r).(type) {
			case nil:
			case time.Time:
				rec[name] = v.Format(TimeLayout)
			default:
				rec[name] = v
			}
		}
		b, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("parquet encode row %d: %w", r, err)
		}
		if err := writer.Write(string(b)); err != nil {
			return fmt.Errorf("parquet write row: %w", err)
		}
	}
	if err := writer.WriteStop(); err != nil {
		return fmt.Errorf("parquet write stop: %w", err)
	}
	return nil
}
