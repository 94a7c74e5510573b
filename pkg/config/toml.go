package config

import (
	"bytes"
	"errors"
	"fmt"
	"sort"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pelletier/go-toml/v2/unstable"
)

// ParseTOML decodes a pipeline document. Key order and the line of every
// [[operations]] header are preserved.
func ParseTOML(b []byte) (*PipelineConfig, error) {
	var raw map[string]any
	if err := toml.Unmarshal(b, &raw); err != nil {
		return nil, tomlSyntaxError(err)
	}
	layout, err := scanTOML(b)
	if err != nil {
		return nil, tomlSyntaxError(err)
	}

	var doc rawDoc
	for _, k := range sortedKeys(raw) {
		if k != "pipeline" && k != "operations" {
			doc.unknown = append(doc.unknown, k)
		}
	}
	if v, ok := raw["pipeline"]; ok {
		m, ok := v.(map[string]any)
		if !ok {
			return nil, &TypeMismatchError{Position: NoPosition, Field: "pipeline", Expected: "table", Got: fmt.Sprintf("%T", v)}
		}
		t, err := orderedTable(m, layout.pipelineKeys)
		if err != nil {
			return nil, err
		}
		doc.pipeline, doc.hasPipeline = t, true
	}
	if v, ok := raw["operations"]; ok {
		list, ok := v.([]any)
		if !ok {
			return nil, &TypeMismatchError{Position: NoPosition, Field: "operations", Expected: "array of tables", Got: fmt.Sprintf("%T", v)}
		}
		for i, e := range list {
			pos := Position{Index: i}
			var order []string
			if i < len(layout.opLines) {
				pos.Line = layout.opLines[i]
				order = layout.opKeys[i]
			}
			m, ok := e.(map[string]any)
			if !ok {
				return nil, &TypeMismatchError{Position: pos, Field: "operations", Expected: "table", Got: fmt.Sprintf("%T", e)}
			}
			t, err := orderedTable(m, order)
			if err != nil {
				return nil, Locate(err, pos)
			}
			doc.operations = append(doc.operations, rawOp{line: pos.Line, params: t})
		}
	}
	return doc.build()
}

func tomlSyntaxError(err error) error {
	var derr *toml.DecodeError
	if errors.As(err, &derr) {
		line, col := derr.Position()
		return &ParseSyntaxError{Format: "toml", Line: line, Column: col, Msg: derr.Error()}
	}
	var perr *unstable.ParserError
	if errors.As(err, &perr) {
		return &ParseSyntaxError{Format: "toml", Msg: perr.Error()}
	}
	return &ParseSyntaxError{Format: "toml", Msg: err.Error()}
}

type tomlLayout struct {
	pipelineKeys []string
	opLines      []int
	opKeys       [][]string
}

// scanTOML walks the document with the low-level parser to recover what a
// map decode loses: key order and line numbers.
func scanTOML(b []byte) (tomlLayout, error) {
	var l tomlLayout
	var target *[]string

	p := unstable.Parser{}
	p.Reset(b)
	for p.NextExpression() {
		e := p.Expression()
		switch e.Kind {
		case unstable.Table, unstable.ArrayTable:
			it := e.Key()
			it.Next()
			head := it.Node()
			var sub string
			if it.Next() {
				sub = string(it.Node().Data)
			}
			target = nil
			switch string(head.Data) {
			case "pipeline":
				if sub == "" {
					target = &l.pipelineKeys
				}
			case "operations":
				if e.Kind == unstable.ArrayTable && sub == "" {
					l.opLines = append(l.opLines, p.Shape(head.Raw).Start.Line)
					l.opKeys = append(l.opKeys, nil)
					target = &l.opKeys[len(l.opKeys)-1]
				} else if sub != "" && len(l.opKeys) > 0 {
					addKey(&l.opKeys[len(l.opKeys)-1], sub)
				}
			}
		case unstable.KeyValue:
			if target != nil {
				it := e.Key()
				it.Next()
				addKey(target, string(it.Node().Data))
			}
		}
	}
	return l, p.Error()
}

func addKey(keys *[]string, k string) {
	for _, have := range *keys {
		if have == k {
			return
		}
	}
	*keys = append(*keys, k)
}

func orderedTable(m map[string]any, order []string) (Table, error) {
	var t Table
	seen := make(map[string]bool, len(m))
	put := func(k string) error {
		v, err := ValueOf(m[k])
		if err != nil {
			return &TypeMismatchError{Position: NoPosition, Field: k, Expected: "string, number, boolean, array or table", Got: fmt.Sprintf("%T", m[k])}
		}
		t.Set(k, v)
		seen[k] = true
		return nil
	}
	for _, k := range order {
		if _, ok := m[k]; ok && !seen[k] {
			if err := put(k); err != nil {
				return t, err
			}
		}
	}
	for _, k := range sortedKeys(m) {
		if !seen[k] {
			if err := put(k); err != nil {
				return t, err
			}
		}
	}
	return t, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalTOML renders c as a pipeline document: [pipeline] first, then one
// [[operations]] table per operation with `type` leading.
func (c *PipelineConfig) MarshalTOML() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("[pipeline]\n")
	if err := writeKV(&buf, "name", c.Name); err != nil {
		return nil, err
	}
	if c.TimeColumn != "" {
		if err := writeKV(&buf, "time_column", c.TimeColumn); err != nil {
			return nil, err
		}
	}
	for i, op := range c.Operations {
		if op.Type == "" {
			return nil, &MissingParameterError{Position: Position{Index: i}, Field: "type"}
		}
		buf.WriteString("\n[[operations]]\n")
		if err := writeKV(&buf, "type", op.Type); err != nil {
			return nil, err
		}
		for _, k := range op.Params.Keys() {
			if k == "type" {
				continue
			}
			v, _ := op.Params.Get(k)
			if err := writeKV(&buf, k, v.Interface()); err != nil {
				return nil, fmt.Errorf("operations[%d] %s: %w", i, k, err)
			}
		}
	}
	return buf.Bytes(), nil
}

func writeKV(buf *bytes.Buffer, key string, v any) error {
	enc := toml.NewEncoder(buf)
	enc.SetTablesInline(true)
	return enc.Encode(map[string]any{key: v})
}
