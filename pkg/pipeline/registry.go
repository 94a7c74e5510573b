package pipeline

import (
	"errors"
	"sort"

	"github.com/wdm0006/industryts/pkg/config"
)

// Factory builds an operation from its parameters. It should read every
// parameter it accepts through p; keys it never reads are rejected as unknown.
type Factory func(p *config.Params) (Operation, error)

// Registration is one entry of a Registry.
type Registration struct {
	Name        string
	Category    Category
	Description string
	Factory     Factory
}

// Registry maps operation type names to factories. It is not safe for
// concurrent registration; fill it at startup and share it read-only.
type Registry struct {
	entries map[string]Registration
	order   []string
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Registration)}
}

// Register adds a factory. Registering a name twice is an error and keeps the
// first entry.
func (r *Registry) Register(name string, category Category, description string, factory Factory) error {
	if _, dup := r.entries[name]; dup {
		return &DuplicateRegistrationError{Name: name}
	}
	r.entries[name] = Registration{Name: name, Category: category, Description: description, Factory: factory}
	r.order = append(r.order, name)
	return nil
}

// MustRegister is Register that panics on a duplicate.
func (r *Registry) MustRegister(name string, category Category, description string, factory Factory) {
	if err := r.Register(name, category, description, factory); err != nil {
		panic(err)
	}
}

func (r *Registry) Lookup(name string) (Registration, bool) {
	reg, ok := r.entries[name]
	return reg, ok
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	out := append([]string(nil), r.order...)
	sort.Strings(out)
	return out
}

// List returns registrations in registration order.
func (r *Registry) List() []Registration {
	out := make([]Registration, len(r.order))
	for i, n := range r.order {
		out[i] = r.entries[n]
	}
	return out
}

func (r *Registry) ListByCategory(c Category) []Registration {
	var out []Registration
	for _, n := range r.order {
		if reg := r.entries[n]; reg.Category == c {
			out = append(out, reg)
		}
	}
	return out
}

// Create instantiates the operation registered under name.
func (r *Registry) Create(name string, params config.Table) (Operation, error) {
	reg, ok := r.entries[name]
	if !ok {
		known := r.Names()
		return nil, &UnknownOperationError{Name: name, Known: known, Suggestion: config.Suggest(name, known)}
	}
	p := config.NewParams(name, params)
	op, err := reg.Factory(p)
	if err != nil {
		var me *config.MissingParameterError
		if errors.As(err, &me) && me.Found == "" {
			me.Found = config.Suggest(me.Field, p.Unused())
		}
		return nil, err
	}
	if err := p.CheckUnused(); err != nil {
		return nil, err
	}
	return op, nil
}
