// Package metrics exports pipeline step outcomes to Prometheus.
//
// A Recorder is passed to a pipeline with pipeline.WithRecorder. It owns its
// registry, so several pipelines in one process do not collide, and it can be
// written out in text format or pushed to a Pushgateway after a batch run.
package metrics

import (
	"fmt"
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/prometheus/common/expfmt"

	"github.com/wdm0006/industryts/pkg/pipeline"
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Recorder implements pipeline.Recorder.
type Recorder struct {
	pipeline string
	reg      *prometheus.Registry

	operations *prometheus.CounterVec   // industryts_operations_total
	duration   *prometheus.HistogramVec // industryts_operation_duration_seconds
	outputRows *prometheus.GaugeVec     // industryts_operation_output_rows
}

var _ pipeline.Recorder = (*Recorder)(nil)

// NewRecorder builds a recorder whose series carry pipelineName as the
// pipeline label.
func NewRecorder(pipelineName string) (*Recorder, error) {
	reg := prometheus.NewRegistry()

	operations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "industryts_operations_total",
			Help: "Operation executions, partitioned by pipeline, operation and status.",
		},
		[]string{"pipeline", "operation", "status"},
	)
	duration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "industryts_operation_duration_seconds",
			Help:    "Operation duration in seconds.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 10),
		},
		[]string{"pipeline", "operation", "status"},
	)
	outputRows := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "industryts_operation_output_rows",
			Help: "Rows produced by the most recent run of each step.",
		},
		[]string{"pipeline", "operation", "index"},
	)

	for name, c := range map[string]prometheus.Collector{
		"operations counter": operations,
		"duration histogram": duration,
		"output rows gauge":  outputRows,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("metrics: register %s: %w", name, err)
		}
	}

	return &Recorder{
		pipeline:   pipelineName,
		reg:        reg,
		operations: operations,
		duration:   duration,
		outputRows: outputRows,
	}, nil
}

func (r *Recorder) RecordOperation(m pipeline.OperationMetrics) {
	r.operations.WithLabelValues(r.pipeline, m.Operation, StatusOK).Inc()
	r.duration.WithLabelValues(r.pipeline, m.Operation, StatusOK).Observe(m.Duration.Seconds())
	r.outputRows.WithLabelValues(r.pipeline, m.Operation, strconv.Itoa(m.Index)).Set(float64(m.OutputRows))
}

func (r *Recorder) RecordFailure(f pipeline.StepFailure) {
	r.operations.WithLabelValues(r.pipeline, f.Operation, StatusError).Inc()
	r.duration.WithLabelValues(r.pipeline, f.Operation, StatusError).Observe(f.Duration.Seconds())
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// WriteText writes every collected family in the Prometheus text format.
func (r *Recorder) WriteText(w io.Writer) error {
	families, err := r.reg.Gather()
	if err != nil {
		return fmt.Errorf("metrics: gather: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("metrics: write %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// Push sends the collected metrics to a Pushgateway under job.
func (r *Recorder) Push(gatewayURL, job string) error {
	if gatewayURL == "" {
		return fmt.Errorf("metrics: gateway URL is required")
	}
	if job == "" {
		job = "industryts"
	}
	return push.New(gatewayURL, job).Gatherer(r.reg).Push()
}
