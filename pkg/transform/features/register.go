package features

import "github.com/wdm0006/industryts/pkg/pipeline"

// Register adds lag, difference, rolling and cyclical to r.
func Register(r *pipeline.Registry) error {
	for _, e := range []struct {
		name, desc string
		f          pipeline.Factory
	}{
		{"lag", "add <column>_lag_<n> copies shifted by each period", newLag},
		{"difference", "add <column>_diff_<lag> differences", newDifference},
		{"rolling", "add trailing window statistics", newRolling},
		{"cyclical", "add sin/cos encodings of calendar components", newCyclical},
	} {
		if err := r.Register(e.name, pipeline.Features, e.desc, e.f); err != nil {
			return err
		}
	}
	return nil
}
