package pipeline

import (
	"errors"
	"fmt"
	"os"

	"github.com/wdm0006/industryts/pkg/config"
)

// FromConfig builds a sealed pipeline from a parsed document. The first
// unknown type or bad parameter aborts construction; the error carries the
// operation's index and line.
func FromConfig(cfg *config.PipelineConfig, reg *Registry, opts ...Option) (*Pipeline, error) {
	base := []Option{WithName(cfg.Name)}
	if cfg.TimeColumn != "" {
		base = append(base, WithTimeColumn(cfg.TimeColumn))
	}
	p := New(append(base, opts...)...)
	for i, spec := range cfg.Operations {
		op, err := createFromSpec(reg, i, spec)
		if err != nil {
			return nil, err
		}
		p.ops = append(p.ops, op)
	}
	src := *cfg
	src.Operations = cloneSpecs(cfg.Operations)
	p.source = &src
	return p.Seal(), nil
}

// cloneSpecs copies specs deeply enough that Set on a copy's Params leaves
// the original alone.
func cloneSpecs(specs []config.OperationSpec) []config.OperationSpec {
	out := make([]config.OperationSpec, len(specs))
	for i, s := range specs {
		s.Params = s.Params.Clone()
		out[i] = s
	}
	return out
}

func createFromSpec(reg *Registry, i int, spec config.OperationSpec) (Operation, error) {
	pos := config.Position{Index: i, Line: spec.Line}
	op, err := reg.Create(spec.Type, spec.Params)
	var unknown *UnknownOperationError
	if errors.As(err, &unknown) {
		return nil, &config.UnknownOperationTypeError{
			Position:   pos,
			Type:       spec.Type,
			Known:      unknown.Known,
			Suggestion: unknown.Suggestion,
		}
	}
	if err != nil {
		return nil, config.Locate(err, pos)
	}
	return op, nil
}

// FromTOML loads a pipeline document from path.
func FromTOML(path string, reg *Registry, opts ...Option) (*Pipeline, error) {
	cfg, err := config.LoadTOML(path)
	if err != nil {
		return nil, err
	}
	return FromConfig(cfg, reg, opts...)
}

func FromTOMLString(doc string, reg *Registry, opts ...Option) (*Pipeline, error) {
	cfg, err := config.ParseTOML([]byte(doc))
	if err != nil {
		return nil, err
	}
	return FromConfig(cfg, reg, opts...)
}

func FromYAMLString(doc string, reg *Registry, opts ...Option) (*Pipeline, error) {
	cfg, err := config.ParseYAML([]byte(doc))
	if err != nil {
		return nil, err
	}
	return FromConfig(cfg, reg, opts...)
}

// ValidateConfig checks every operation of cfg against reg and returns all
// problems as ValidationErrors instead of stopping at the first.
func ValidateConfig(cfg *config.PipelineConfig, reg *Registry) error {
	var errs ValidationErrors
	for i, spec := range cfg.Operations {
		if _, err := createFromSpec(reg, i, spec); err != nil {
			errs = append(errs, ValidationError{Index: i, Operation: spec.Type, Err: err})
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Config returns the document the pipeline was loaded from or, for pipelines
// built in code, one derived from its Configurable operations.
func (p *Pipeline) Config() (*config.PipelineConfig, error) {
	if p.source != nil {
		out := *p.source
		out.Operations = cloneSpecs(p.source.Operations)
		return &out, nil
	}
	cfg := &config.PipelineConfig{Name: p.settings.name, TimeColumn: p.settings.timeColumn}
	for i, op := range p.ops {
		c, ok := op.(Configurable)
		if !ok {
			return nil, fmt.Errorf("operation %d (%s) cannot be described as config: %w", i, op.Name(), ErrNoConfig)
		}
		cfg.Operations = append(cfg.Operations, c.Spec())
	}
	if len(cfg.Operations) == 0 && cfg.Name == "" {
		return nil, ErrNoConfig
	}
	return cfg, nil
}

func (p *Pipeline) MarshalTOML() ([]byte, error) {
	cfg, err := p.Config()
	if err != nil {
		return nil, err
	}
	return cfg.MarshalTOML()
}

// ToTOML writes the pipeline document to path.
func (p *Pipeline) ToTOML(path string) error {
	b, err := p.MarshalTOML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write pipeline config: %w", err)
	}
	return nil
}
