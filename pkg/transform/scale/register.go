package scale

import "github.com/wdm0006/industryts/pkg/pipeline"

// Register adds standardize, normalize and box_cox to r.
func Register(r *pipeline.Registry) error {
	for _, e := range []struct {
		name, desc string
		f          pipeline.Factory
	}{
		{"standardize", "z-score columns using the sample standard deviation", newStandardize},
		{"normalize", "min-max scale columns to [0, 1]", newNormalize},
		{"box_cox", "Box-Cox power transform, lambda estimated when omitted", newBoxCox},
	} {
		if err := r.Register(e.name, pipeline.Transform, e.desc, e.f); err != nil {
			return err
		}
	}
	return nil
}
