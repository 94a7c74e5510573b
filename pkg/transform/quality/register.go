package quality

import "github.com/wdm0006/industryts/pkg/pipeline"

// Register adds fill_null, clip and validate_range to r.
func Register(r *pipeline.Registry) error {
	for _, e := range []struct {
		name, desc string
		f          pipeline.Factory
	}{
		{"fill_null", "fill nulls (forward, backward, mean, median, mode, zero, constant)", newFillNull},
		{"clip", "cap values to fixed bounds or quantiles", newClip},
		{"validate_range", "fail when values fall outside a range", newValidateRange},
	} {
		if err := r.Register(e.name, pipeline.DataQuality, e.desc, e.f); err != nil {
			return err
		}
	}
	return nil
}
