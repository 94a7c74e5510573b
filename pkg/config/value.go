package config

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindInvalid ValueKind = iota
	KindString
	KindInteger
	KindFloat
	KindBoolean
	KindArray
	KindTable
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindArray:
		return "array"
	case KindTable:
		return "table"
	default:
		return "invalid"
	}
}

// Value is a single operation parameter.
type Value struct {
	kind ValueKind
	str  string
	i    int64
	f    float64
	b    bool
	arr  []Value
	tbl  Table
}

func String(s string) Value   { return Value{kind: KindString, str: s} }
func Integer(i int64) Value   { return Value{kind: KindInteger, i: i} }
func Float(f float64) Value   { return Value{kind: KindFloat, f: f} }
func Boolean(b bool) Value    { return Value{kind: KindBoolean, b: b} }
func Array(vs ...Value) Value { return Value{kind: KindArray, arr: vs} }
func TableValue(t Table) Value {
	return Value{kind: KindTable, tbl: t}
}

// ValueOf converts a decoded document value (TOML or YAML) into a Value.
func ValueOf(v any) (Value, error) {
	switch t := v.(type) {
	case Value:
		return t, nil
	case string:
		return String(t), nil
	case bool:
		return Boolean(t), nil
	case int:
		return Integer(int64(t)), nil
	case int32:
		return Integer(int64(t)), nil
	case int64:
		return Integer(t), nil
	case uint64:
		return Integer(int64(t)), nil
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case time.Time:
		return String(t.Format(time.RFC3339Nano)), nil
	case fmt.Stringer:
		// toml.LocalDate and friends
		return String(t.String()), nil
	case []any:
		out := make([]Value, len(t))
		for i, e := range t {
			ev, err := ValueOf(e)
			if err != nil {
				return Value{}, err
			}
			out[i] = ev
		}
		return Array(out...), nil
	case []string:
		out := make([]Value, len(t))
		for i, e := range t {
			out[i] = String(e)
		}
		return Array(out...), nil
	case []int:
		out := make([]Value, len(t))
		for i, e := range t {
			out[i] = Integer(int64(e))
		}
		return Array(out...), nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var tbl Table
		for _, k := range keys {
			ev, err := ValueOf(t[k])
			if err != nil {
				return Value{}, err
			}
			tbl.Set(k, ev)
		}
		return TableValue(tbl), nil
	default:
		return Value{}, fmt.Errorf("unsupported value type %T", v)
	}
}

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) AsString() (string, bool) { return v.str, v.kind == KindString }
func (v Value) AsInteger() (int64, bool) { return v.i, v.kind == KindInteger }
func (v Value) AsBoolean() (bool, bool)  { return v.b, v.kind == KindBoolean }
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }
func (v Value) AsTable() (Table, bool)   { return v.tbl, v.kind == KindTable }

// AsFloat accepts integers too, so `min = 0` binds to a float parameter.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInteger:
		return float64(v.i), true
	}
	return 0, false
}

// Interface converts back to plain Go values for encoding.
func (v Value) Interface() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindInteger:
		return v.i
	case KindFloat:
		return v.f
	case KindBoolean:
		return v.b
	case KindArray:
		out := make([]any, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case KindTable:
		return v.tbl.Map()
	}
	return nil
}

// Equal reports semantic equality, including element order for arrays.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.str == o.str
	case KindInteger:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f
	case KindBoolean:
		return v.b == o.b
	case KindArray:
		if len(v.arr) != len(o.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(o.arr[i]) {
				return false
			}
		}
		return true
	case KindTable:
		return v.tbl.Equal(o.tbl)
	}
	return true
}

func (v Value) String() string {
	switch v.kind {
	case KindString:
		return fmt.Sprintf("%q", v.str)
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, e := range v.arr {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindTable:
		return v.tbl.String()
	}
	return fmt.Sprint(v.Interface())
}

// Table is an ordered string-keyed map of values. The zero value is empty
// and ready to use.
type Table struct {
	keys []string
	vals map[string]Value
}

// NewTable builds a table from alternating keys and values.
func NewTable(kv ...any) (Table, error) {
	var t Table
	if len(kv)%2 != 0 {
		return t, fmt.Errorf("odd number of key/value arguments")
	}
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return t, fmt.Errorf("key %v is not a string", kv[i])
		}
		v, err := ValueOf(kv[i+1])
		if err != nil {
			return t, fmt.Errorf("key %s: %w", k, err)
		}
		t.Set(k, v)
	}
	return t, nil
}

// MustTable is NewTable that panics on error, for literals in code and tests.
func MustTable(kv ...any) Table {
	t, err := NewTable(kv...)
	if err != nil {
		panic(err)
	}
	return t
}

// Set adds or replaces key, keeping the original position on replace.
func (t *Table) Set(key string, v Value) {
	if t.vals == nil {
		t.vals = make(map[string]Value)
	}
	if _, ok := t.vals[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.vals[key] = v
}

func (t Table) Get(key string) (Value, bool) {
	v, ok := t.vals[key]
	return v, ok
}

func (t Table) Has(key string) bool {
	_, ok := t.vals[key]
	return ok
}

// Keys returns the keys in insertion order.
func (t Table) Keys() []string { return append([]string(nil), t.keys...) }
func (t Table) Len() int       { return len(t.keys) }

func (t Table) Clone() Table {
	var out Table
	for _, k := range t.keys {
		out.Set(k, t.vals[k])
	}
	return out
}

// Equal compares keys and values, ignoring key order.
func (t Table) Equal(o Table) bool {
	if len(t.keys) != len(o.keys) {
		return false
	}
	for _, k := range t.keys {
		ov, ok := o.vals[k]
		if !ok || !t.vals[k].Equal(ov) {
			return false
		}
	}
	return true
}

// Map converts to a plain map for encoding.
func (t Table) Map() map[string]any {
	out := make(map[string]any, len(t.keys))
	for _, k := range t.keys {
		out[k] = t.vals[k].Interface()
	}
	return out
}

func (t Table) String() string {
	parts := make([]string, len(t.keys))
	for i, k := range t.keys {
		parts[i] = k + " = " + t.vals[k].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
