package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/timeseries"
)

type settings struct {
	name            string
	timeColumn      string
	continueOnError bool
	logger          zerolog.Logger
	recorders       []Recorder
}

// Option configures a pipeline at construction, or a single run when passed
// to Process.
type Option func(*settings)

func WithName(name string) Option { return func(s *settings) { s.name = name } }

// WithTimeColumn rebinds input data to the named time column before the first
// step.
func WithTimeColumn(col string) Option { return func(s *settings) { s.timeColumn = col } }

// WithContinueOnError makes a failing step log and record its error and hand
// the last good data to the next step instead of aborting.
func WithContinueOnError(on bool) Option {
	return func(s *settings) { s.continueOnError = on }
}

func WithLogger(l zerolog.Logger) Option { return func(s *settings) { s.logger = l } }

// WithRecorder adds a recorder that sees every step outcome.
func WithRecorder(r Recorder) Option {
	return func(s *settings) { s.recorders = append(s.recorders, r) }
}

// Pipeline composes a sequence of Operations.
type Pipeline struct {
	settings settings
	ops      []Operation
	source   *config.PipelineConfig
	sealed   bool
}

// New returns an empty, unsealed pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{settings: settings{logger: log.Logger}}
	for _, o := range opts {
		o(&p.settings)
	}
	return p
}

// AddOperation appends op. Sealed pipelines reject it with ErrSealed.
func (p *Pipeline) AddOperation(op Operation) error {
	if p.sealed {
		return ErrSealed
	}
	p.ops = append(p.ops, op)
	return nil
}

// Seal freezes the operation list. A sealed pipeline may be shared by
// concurrent runs.
func (p *Pipeline) Seal() *Pipeline {
	p.sealed = true
	return p
}

func (p *Pipeline) Sealed() bool       { return p.sealed }
func (p *Pipeline) Len() int           { return len(p.ops) }
func (p *Pipeline) Name() string       { return p.settings.name }
func (p *Pipeline) TimeColumn() string { return p.settings.timeColumn }

// OperationInfo describes one step for listings.
type OperationInfo struct {
	Index    int
	Name     string
	Metadata Metadata
}

func (p *Pipeline) Operations() []OperationInfo {
	out := make([]OperationInfo, len(p.ops))
	for i, op := range p.ops {
		out[i] = OperationInfo{Index: i, Name: op.Name(), Metadata: op.Metadata()}
	}
	return out
}

// Process runs every operation in order. By default the first failure stops
// the run and is returned as a *StepError.
func (p *Pipeline) Process(ctx context.Context, data *timeseries.Data, opts ...Option) (*timeseries.Data, error) {
	return p.run(ctx, data, NopRecorder{}, opts)
}

// ProcessWithContext is Process that records per-step metrics into ec. A nil
// ec gets a fresh context. When a step fails the metrics of the completed
// steps stay in ec and are copied onto the *StepError.
func (p *Pipeline) ProcessWithContext(ctx context.Context, data *timeseries.Data, ec *ExecutionContext, opts ...Option) (*timeseries.Data, *ExecutionContext, error) {
	if ec == nil {
		ec = NewExecutionContext()
	}
	out, err := p.run(ctx, data, ec, opts)
	var se *StepError
	if errors.As(err, &se) {
		se.Metrics = append([]OperationMetrics(nil), ec.Metrics...)
	}
	return out, ec, err
}

func (p *Pipeline) run(ctx context.Context, data *timeseries.Data, rec Recorder, opts []Option) (*timeseries.Data, error) {
	s := p.settings
	s.recorders = append([]Recorder(nil), s.recorders...)
	for _, o := range opts {
		o(&s)
	}
	if len(s.recorders) > 0 {
		rec = MultiRecorder(append([]Recorder{rec}, s.recorders...)...)
	}
	if data == nil {
		return nil, Invalid("pipeline", "no input data")
	}
	if s.timeColumn != "" {
		rebound, err := data.WithTimeColumn(s.timeColumn)
		if err != nil {
			return nil, err
		}
		data = rebound
	}

	logger := s.logger.With().Str("pipeline", s.name).Logger()
	cur := data
	for i, op := range p.ops {
		inRows := cur.Len()
		start := time.Now()
		out, err := op.Execute(ctx, cur)
		elapsed := time.Since(start)
		if err == nil && out == nil {
			err = Invalid(op.Name(), "returned no data")
		}
		if err != nil {
			rec.RecordFailure(StepFailure{Index: i, Operation: op.Name(), Err: err, Duration: elapsed})
			if s.continueOnError {
				logger.Warn().Err(err).Int("index", i).Str("operation", op.Name()).Msg("operation failed, passing previous data on")
				continue
			}
			logger.Error().Err(err).Int("index", i).Str("operation", op.Name()).Msg("operation failed")
			return nil, &StepError{Index: i, Operation: op.Name(), Err: err}
		}
		m := newOperationMetrics(i, op.Name(), inRows, out.Len(), elapsed)
		rec.RecordOperation(m)
		logger.Debug().
			Int("index", i).
			Str("operation", op.Name()).
			Int("rows_in", m.InputRows).
			Int("rows_out", m.OutputRows).
			Dur("duration", m.Duration).
			Msg("operation finished")
		cur = out
	}
	return cur, nil
}

// Validate dry-runs the pipeline: every operation is checked against the
// same input schema and every problem is collected. Nothing is executed.
func (p *Pipeline) Validate(schema timeseries.Schema) error {
	var errs ValidationErrors
	if tc := p.settings.timeColumn; tc != "" {
		schema.TimeColumn = tc
		if err := schema.RequireTime(); err != nil {
			errs = append(errs, ValidationError{Index: -1, Operation: "pipeline", Err: err})
		}
	}
	for i, op := range p.ops {
		if err := op.Validate(schema); err != nil {
			errs = append(errs, ValidationError{Index: i, Operation: op.Name(), Err: err})
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// ValidateData is Validate against the schema of data.
func (p *Pipeline) ValidateData(data *timeseries.Data) error {
	return p.Validate(data.Schema())
}
