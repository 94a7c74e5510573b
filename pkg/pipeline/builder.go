package pipeline

import "github.com/rs/zerolog"

// Builder assembles a pipeline fluently. Every method returns an updated
// copy, so a partially built chain can be branched safely.
type Builder struct {
	ops  []Operation
	opts []Option
}

func NewBuilder() Builder { return Builder{} }

func (b Builder) AddOperation(op Operation) Builder {
	b.ops = append(append([]Operation(nil), b.ops...), op)
	return b
}

func (b Builder) with(o Option) Builder {
	b.opts = append(append([]Option(nil), b.opts...), o)
	return b
}

func (b Builder) Name(name string) Builder        { return b.with(WithName(name)) }
func (b Builder) TimeColumn(col string) Builder   { return b.with(WithTimeColumn(col)) }
func (b Builder) ContinueOnError(on bool) Builder { return b.with(WithContinueOnError(on)) }
func (b Builder) Logger(l zerolog.Logger) Builder { return b.with(WithLogger(l)) }
func (b Builder) Recorder(r Recorder) Builder     { return b.with(WithRecorder(r)) }

// Build returns a sealed pipeline.
func (b Builder) Build() *Pipeline {
	p := New(b.opts...)
	p.ops = append([]Operation(nil), b.ops...)
	return p.Seal()
}
