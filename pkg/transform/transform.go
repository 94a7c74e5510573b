// Package transform assembles the built-in operations into a registry.
package transform

import (
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/transform/aggregate"
	"github.com/wdm0006/industryts/pkg/transform/features"
	"github.com/wdm0006/industryts/pkg/transform/quality"
	"github.com/wdm0006/industryts/pkg/transform/scale"
	"github.com/wdm0006/industryts/pkg/transform/temporal"
)

// RegisterAll adds every built-in operation to r.
func RegisterAll(r *pipeline.Registry) error {
	for _, register := range []func(*pipeline.Registry) error{
		quality.Register,
		temporal.Register,
		features.Register,
		scale.Register,
		aggregate.Register,
	} {
		if err := register(r); err != nil {
			return err
		}
	}
	return nil
}

// StandardRegistry returns a fresh registry holding the built-in operations.
func StandardRegistry() *pipeline.Registry {
	r := pipeline.NewRegistry()
	if err := RegisterAll(r); err != nil {
		panic(err)
	}
	return r
}
