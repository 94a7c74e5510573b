package metrics

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/wdm0006/industryts/pkg/pipeline"
)

func TestRecorderCounts(t *testing.T) {
	r, err := NewRecorder("clean")
	if err != nil {
		t.Fatal(err)
	}
	r.RecordOperation(pipeline.OperationMetrics{Index: 0, Operation: "fill_null", InputRows: 5, OutputRows: 5, Duration: time.Millisecond})
	r.RecordOperation(pipeline.OperationMetrics{Index: 0, Operation: "fill_null", InputRows: 5, OutputRows: 4, Duration: time.Millisecond})
	r.RecordFailure(pipeline.StepFailure{Index: 1, Operation: "standardize", Err: errors.New("boom"), Duration: time.Millisecond})

	if got := testutil.ToFloat64(r.operations.WithLabelValues("clean", "fill_null", StatusOK)); got != 2 {
		t.Fatalf("fill_null ok = %v", got)
	}
	if got := testutil.ToFloat64(r.operations.WithLabelValues("clean", "standardize", StatusError)); got != 1 {
		t.Fatalf("standardize error = %v", got)
	}
	if got := testutil.ToFloat64(r.outputRows.WithLabelValues("clean", "fill_null", "0")); got != 4 {
		t.Fatalf("output rows = %v", got)
	}
	if n := testutil.CollectAndCount(r.duration); n != 2 {
		t.Fatalf("duration series = %d", n)
	}
}

func TestRecorderWriteText(t *testing.T) {
	r, err := NewRecorder("p")
	if err != nil {
		t.Fatal(err)
	}
	r.RecordOperation(pipeline.OperationMetrics{Operation: "lag", OutputRows: 3})
	var buf bytes.Buffer
	if err := r.WriteText(&buf); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`industryts_operations_total{operation="lag",pipeline="p",status="ok"} 1`,
		"# TYPE industryts_operation_duration_seconds histogram",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("missing %q in\n%s", want, buf.String())
		}
	}
}

func TestPushNeedsURL(t *testing.T) {
	r, err := NewRecorder("p")
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Push("", "job"); err == nil {
		t.Fatal("expected error")
	}
}
