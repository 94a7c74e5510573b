package pipeline

import (
	"time"

	"github.com/google/uuid"
)

// OperationMetrics is the measurement of one successful step.
type OperationMetrics struct {
	Index      int
	Operation  string
	InputRows  int
	OutputRows int
	Duration   time.Duration
	// Throughput is output rows per second, 0 when Duration is 0.
	Throughput float64
}

func newOperationMetrics(index int, op string, in, out int, d time.Duration) OperationMetrics {
	m := OperationMetrics{Index: index, Operation: op, InputRows: in, OutputRows: out, Duration: d}
	if d > 0 {
		m.Throughput = float64(out) / d.Seconds()
	}
	return m
}

// StepFailure records a step that failed, whether or not the run went on.
type StepFailure struct {
	Index     int
	Operation string
	Err       error
	Duration  time.Duration
}

// Recorder receives step outcomes as a run progresses.
type Recorder interface {
	RecordOperation(m OperationMetrics)
	RecordFailure(f StepFailure)
}

// NopRecorder discards everything.
type NopRecorder struct{}

func (NopRecorder) RecordOperation(OperationMetrics) {}
func (NopRecorder) RecordFailure(StepFailure)        {}

type multiRecorder []Recorder

// MultiRecorder fans every record out to rs in order.
func MultiRecorder(rs ...Recorder) Recorder { return multiRecorder(rs) }

func (m multiRecorder) RecordOperation(om OperationMetrics) {
	for _, r := range m {
		r.RecordOperation(om)
	}
}

func (m multiRecorder) RecordFailure(f StepFailure) {
	for _, r := range m {
		r.RecordFailure(f)
	}
}

// ExecutionContext accumulates the metrics of one run. Create a fresh one per
// run; it is not safe to share between concurrent runs.
type ExecutionContext struct {
	RunID    string
	Metadata map[string]string
	Metrics  []OperationMetrics
	Failures []StepFailure
}

func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{RunID: uuid.NewString(), Metadata: make(map[string]string)}
}

func (ec *ExecutionContext) SetMetadata(key, value string) {
	if ec.Metadata == nil {
		ec.Metadata = make(map[string]string)
	}
	ec.Metadata[key] = value
}

func (ec *ExecutionContext) Get(key string) (string, bool) {
	v, ok := ec.Metadata[key]
	return v, ok
}

func (ec *ExecutionContext) RecordOperation(m OperationMetrics) {
	ec.Metrics = append(ec.Metrics, m)
}

func (ec *ExecutionContext) RecordFailure(f StepFailure) {
	ec.Failures = append(ec.Failures, f)
}

// Summary aggregates the recorded metrics.
type Summary struct {
	TotalOperations    int
	TotalDuration      time.Duration
	TotalRowsProcessed int
	AverageThroughput  float64
}

// Summary totals the recorded steps. TotalRowsProcessed is the output row
// count of the last recorded step.
func (ec *ExecutionContext) Summary() Summary {
	s := Summary{TotalOperations: len(ec.Metrics)}
	for _, m := range ec.Metrics {
		s.TotalDuration += m.Duration
	}
	if n := len(ec.Metrics); n > 0 {
		s.TotalRowsProcessed = ec.Metrics[n-1].OutputRows
	}
	if s.TotalDuration > 0 {
		s.AverageThroughput = float64(s.TotalRowsProcessed) / s.TotalDuration.Seconds()
	}
	return s
}
