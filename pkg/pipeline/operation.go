// Package pipeline runs ordered sequences of time-series operations built
// in code or from a pipeline document.
package pipeline

import (
	"context"
	"fmt"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/timeseries"
)

// Operation is one step of a pipeline.
//
// Validate checks the operation against a schema without touching data.
// Execute consumes its input and returns the transformed value; on error the
// input is left as it was.
type Operation interface {
	Name() string
	Metadata() Metadata
	Validate(schema timeseries.Schema) error
	Execute(ctx context.Context, data *timeseries.Data) (*timeseries.Data, error)
}

// Configurable operations can describe themselves as a document entry, which
// lets code-built pipelines be saved.
type Configurable interface {
	Spec() config.OperationSpec
}

// Metadata is static, diagnostic-only information about an operation.
type Metadata struct {
	Name        string
	Description string
	Version     string
	Category    Category
}

// Category groups operations for listing. It never affects dispatch.
type Category int

const (
	DataQuality Category = iota
	Temporal
	Features
	Aggregation
	Transform
)

var categoryNames = [...]string{"DataQuality", "Temporal", "Features", "Aggregation", "Transform"}

func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return fmt.Sprintf("Category(%d)", int(c))
	}
	return categoryNames[c]
}

// Categories lists every category in declaration order.
func Categories() []Category {
	return []Category{DataQuality, Temporal, Features, Aggregation, Transform}
}

// ParseCategory accepts the names printed by String.
func ParseCategory(s string) (Category, error) {
	for i, n := range categoryNames {
		if n == s {
			return Category(i), nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}
