// Package config models pipeline documents: an ordered list of typed,
// parameterized operations plus pipeline-level settings. Documents are read
// and written as TOML; YAML is accepted on input.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// OperationSpec is one [[operations]] entry. Params never contains "type".
type OperationSpec struct {
	Type   string
	Params Table
	// Line is the 1-based document line of the entry, 0 when built in code.
	Line int
}

// PipelineConfig is the parsed form of a pipeline document.
type PipelineConfig struct {
	Name       string
	TimeColumn string
	Operations []OperationSpec
}

// Types lists the operation types in execution order.
func (c *PipelineConfig) Types() []string {
	out := make([]string, len(c.Operations))
	for i, op := range c.Operations {
		out[i] = op.Type
	}
	return out
}

// Equal compares names, order of types and parameter tables. Line numbers are
// ignored.
func (c *PipelineConfig) Equal(o *PipelineConfig) bool {
	if c.Name != o.Name || c.TimeColumn != o.TimeColumn || len(c.Operations) != len(o.Operations) {
		return false
	}
	for i := range c.Operations {
		a, b := c.Operations[i], o.Operations[i]
		if a.Type != b.Type || !a.Params.Equal(b.Params) {
			return false
		}
	}
	return true
}

// Load reads a document, choosing the format from the file extension.
func Load(path string) (*PipelineConfig, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		return LoadTOML(path)
	}
}

func LoadTOML(path string) (*PipelineConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config: %w", err)
	}
	return ParseTOML(b)
}

func LoadYAML(path string) (*PipelineConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline config: %w", err)
	}
	return ParseYAML(b)
}

// SaveTOML writes c to path.
func (c *PipelineConfig) SaveTOML(path string) error {
	b, err := c.MarshalTOML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write pipeline config: %w", err)
	}
	return nil
}

// rawDoc is the format-independent shape both parsers produce.
type rawDoc struct {
	pipeline    Table
	hasPipeline bool
	operations  []rawOp
	unknown     []string
}

type rawOp struct {
	line   int
	params Table
}

var topLevelKeys = []string{"pipeline", "operations"}

func (d rawDoc) build() (*PipelineConfig, error) {
	if len(d.unknown) > 0 {
		return nil, &UnknownParameterError{
			Position:   NoPosition,
			Op:         "document",
			Field:      d.unknown[0],
			Suggestion: Suggest(d.unknown[0], topLevelKeys),
		}
	}
	cfg := &PipelineConfig{}
	if d.hasPipeline {
		p := NewParams("pipeline", d.pipeline)
		var err error
		if cfg.Name, err = p.StringOr("name", ""); err != nil {
			return nil, err
		}
		if cfg.TimeColumn, err = p.StringOr("time_column", ""); err != nil {
			return nil, err
		}
		if err := p.CheckUnused(); err != nil {
			return nil, err
		}
	}
	for i, op := range d.operations {
		pos := Position{Index: i, Line: op.line}
		tv, ok := op.params.Get("type")
		if !ok {
			return nil, &MissingParameterError{Position: pos, Field: "type"}
		}
		typ, ok := tv.AsString()
		if !ok {
			return nil, &TypeMismatchError{Position: pos, Field: "type", Expected: "string", Got: tv.Kind().String()}
		}
		var params Table
		for _, k := range op.params.Keys() {
			if k == "type" {
				continue
			}
			v, _ := op.params.Get(k)
			params.Set(k, v)
		}
		cfg.Operations = append(cfg.Operations, OperationSpec{Type: typ, Params: params, Line: op.line})
	}
	return cfg, nil
}
