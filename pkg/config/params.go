package config

import "sort"

// Params is the read side of an operation's parameter table handed to a
// factory. It records every key the factory asks for, so leftovers can be
// reported as unknown parameters.
type Params struct {
	op        string
	table     Table
	requested map[string]bool
}

func NewParams(op string, t Table) *Params {
	return &Params{op: op, table: t, requested: make(map[string]bool)}
}

// Op is the operation type the parameters belong to.
func (p *Params) Op() string { return p.op }

// Table returns the raw parameters.
func (p *Params) Table() Table { return p.table }

func (p *Params) lookup(key string) (Value, bool) {
	p.requested[key] = true
	return p.table.Get(key)
}

func (p *Params) missing(key string) error {
	return &MissingParameterError{Position: NoPosition, Op: p.op, Field: key}
}

func (p *Params) mismatch(key, expected string, got Value) error {
	return &TypeMismatchError{Position: NoPosition, Op: p.op, Field: key, Expected: expected, Got: got.Kind().String()}
}

// Has reports whether key is present and marks it as known.
func (p *Params) Has(key string) bool {
	_, ok := p.lookup(key)
	return ok
}

func (p *Params) String(key string) (string, error) {
	v, ok := p.lookup(key)
	if !ok {
		return "", p.missing(key)
	}
	s, ok := v.AsString()
	if !ok {
		return "", p.mismatch(key, "string", v)
	}
	return s, nil
}

func (p *Params) StringOr(key, def string) (string, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.String(key)
}

func (p *Params) Int(key string) (int64, error) {
	v, ok := p.lookup(key)
	if !ok {
		return 0, p.missing(key)
	}
	i, ok := v.AsInteger()
	if !ok {
		return 0, p.mismatch(key, "integer", v)
	}
	return i, nil
}

func (p *Params) IntOr(key string, def int64) (int64, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.Int(key)
}

func (p *Params) Float(key string) (float64, error) {
	v, ok := p.lookup(key)
	if !ok {
		return 0, p.missing(key)
	}
	f, ok := v.AsFloat()
	if !ok {
		return 0, p.mismatch(key, "float", v)
	}
	return f, nil
}

func (p *Params) FloatOr(key string, def float64) (float64, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.Float(key)
}

// OptionalFloat returns nil when key is absent.
func (p *Params) OptionalFloat(key string) (*float64, error) {
	if !p.Has(key) {
		return nil, nil
	}
	f, err := p.Float(key)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (p *Params) BoolOr(key string, def bool) (bool, error) {
	v, ok := p.lookup(key)
	if !ok {
		return def, nil
	}
	b, ok := v.AsBoolean()
	if !ok {
		return false, p.mismatch(key, "boolean", v)
	}
	return b, nil
}

// Strings reads an array of strings.
func (p *Params) Strings(key string) ([]string, error) {
	v, ok := p.lookup(key)
	if !ok {
		return nil, p.missing(key)
	}
	arr, ok := v.AsArray()
	if !ok {
		return nil, p.mismatch(key, "array of strings", v)
	}
	out := make([]string, len(arr))
	for i, e := range arr {
		s, ok := e.AsString()
		if !ok {
			return nil, p.mismatch(key, "array of strings", e)
		}
		out[i] = s
	}
	return out, nil
}

// StringsOr is Strings with a default for an absent key.
func (p *Params) StringsOr(key string, def []string) ([]string, error) {
	if !p.Has(key) {
		return def, nil
	}
	return p.Strings(key)
}

// Ints reads an array of integers.
func (p *Params) Ints(key string) ([]int64, error) {
	v, ok := p.lookup(key)
	if !ok {
		return nil, p.missing(key)
	}
	arr, ok := v.AsArray()
	if !ok {
		return nil, p.mismatch(key, "array of integers", v)
	}
	out := make([]int64, len(arr))
	for i, e := range arr {
		n, ok := e.AsInteger()
		if !ok {
			return nil, p.mismatch(key, "array of integers", e)
		}
		out[i] = n
	}
	return out, nil
}

// Requested lists the keys the factory asked for, sorted.
func (p *Params) Requested() []string {
	out := make([]string, 0, len(p.requested))
	for k := range p.requested {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Unused lists present keys that were never requested, in document order.
func (p *Params) Unused() []string {
	var out []string
	for _, k := range p.table.Keys() {
		if !p.requested[k] {
			out = append(out, k)
		}
	}
	return out
}

// CheckUnused fails on the first key that was never requested.
func (p *Params) CheckUnused() error {
	unused := p.Unused()
	if len(unused) == 0 {
		return nil
	}
	return &UnknownParameterError{
		Position:   NoPosition,
		Op:         p.op,
		Field:      unused[0],
		Suggestion: Suggest(unused[0], p.Requested()),
	}
}
