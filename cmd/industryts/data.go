package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/wdm0006/industryts/pkg/frame"
	"github.com/wdm0006/industryts/pkg/io/csvio"
	iox "github.com/wdm0006/industryts/pkg/io/ioutils"
	"github.com/wdm0006/industryts/pkg/io/jsonlio"
	"github.com/wdm0006/industryts/pkg/io/parquetio"
)

type format int

const (
	formatCSV format = iota
	formatParquet
	formatJSONL
)

func formatOf(path string) format {
	switch strings.ToLower(filepath.Ext(iox.TrimGz(path))) {
	case ".parquet":
		return formatParquet
	case ".jsonl", ".ndjson":
		return formatJSONL
	default:
		return formatCSV
	}
}

// readFrame loads a CSV, JSON Lines (both optionally gzipped, "-" for stdin
// as CSV) or Parquet file.
func readFrame(path string) (*frame.Frame, string, error) {
	switch formatOf(path) {
	case formatParquet:
		f, err := parquetio.ReadFile(path)
		return f, "", err
	case formatJSONL:
		f, err := jsonlio.ReadFile(path, jsonlio.ReaderOptions{})
		return f, "", err
	}
	return csvio.ReadFile(path, csvio.ReaderOptions{HasHeader: true})
}

// writeFrame writes f to path; "-" goes to stdout as CSV.
func writeFrame(path string, f *frame.Frame, stdout io.Writer) error {
	if iox.IsStd(path) {
		return csvio.Write(stdout, f, csvio.WriterOptions{})
	}
	switch formatOf(path) {
	case formatParquet:
		return parquetio.WriteFile(path, f)
	case formatJSONL:
		return jsonlio.WriteFile(path, f)
	}
	return csvio.WriteFile(path, f, csvio.WriterOptions{})
}

// fingerprint hashes the raw bytes of path so a run can be tied to the exact
// input it saw.
func fingerprint(path string) (string, error) {
	if iox.IsStd(path) {
		return "", nil
	}
	rc, err := iox.OpenMaybeCompressed(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = rc.Close() }()
	h := xxh3.New()
	if _, err := io.Copy(h, rc); err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", path, err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
