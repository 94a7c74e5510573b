package temporal

import "github.com/wdm0006/industryts/pkg/pipeline"

// Register adds resample to r.
func Register(r *pipeline.Registry) error {
	return r.Register("resample", pipeline.Temporal, "aggregate into fixed time windows (rule like 10min, 1h, 1d)", newResample)
}
