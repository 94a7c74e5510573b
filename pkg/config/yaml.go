package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes the YAML form of a pipeline document:
//
//	pipeline:
//	  name: sensors
//	operations:
//	  - type: fill_null
//	    method: forward
func ParseYAML(b []byte) (*PipelineConfig, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(b, &root); err != nil {
		return nil, &ParseSyntaxError{Format: "yaml", Msg: err.Error()}
	}
	var doc rawDoc
	if len(root.Content) == 0 {
		return doc.build()
	}
	top := root.Content[0]
	if top.Kind != yaml.MappingNode {
		return nil, &ParseSyntaxError{Format: "yaml", Line: top.Line, Column: top.Column, Msg: "document must be a mapping"}
	}
	for i := 0; i+1 < len(top.Content); i += 2 {
		key, val := top.Content[i], top.Content[i+1]
		switch key.Value {
		case "pipeline":
			t, err := yamlTable(val)
			if err != nil {
				return nil, err
			}
			doc.pipeline, doc.hasPipeline = t, true
		case "operations":
			if val.Kind != yaml.SequenceNode {
				return nil, &TypeMismatchError{Position: NoPosition, Field: "operations", Expected: "sequence", Got: yamlKind(val)}
			}
			for j, item := range val.Content {
				t, err := yamlTable(item)
				if err != nil {
					return nil, Locate(err, Position{Index: j, Line: item.Line})
				}
				doc.operations = append(doc.operations, rawOp{line: item.Line, params: t})
			}
		default:
			doc.unknown = append(doc.unknown, key.Value)
		}
	}
	return doc.build()
}

func yamlTable(n *yaml.Node) (Table, error) {
	var t Table
	if n.Kind != yaml.MappingNode {
		return t, &TypeMismatchError{Position: NoPosition, Field: n.Value, Expected: "mapping", Got: yamlKind(n)}
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		var raw any
		if err := val.Decode(&raw); err != nil {
			return t, &ParseSyntaxError{Format: "yaml", Line: val.Line, Column: val.Column, Msg: err.Error()}
		}
		v, err := ValueOf(raw)
		if err != nil {
			return t, &TypeMismatchError{Position: NoPosition, Field: key.Value, Expected: "string, number, boolean, sequence or mapping", Got: fmt.Sprintf("%T", raw)}
		}
		t.Set(key.Value, v)
	}
	return t, nil
}

func yamlKind(n *yaml.Node) string {
	switch n.Kind {
	case yaml.MappingNode:
		return "mapping"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	default:
		return "node"
	}
}
