package aggregate

import "github.com/wdm0006/industryts/pkg/pipeline"

// Register adds group_by to r.
func Register(r *pipeline.Registry) error {
	return r.Register("group_by", pipeline.Aggregation, "aggregate rows sharing key values (mean, sum, min, max, first, last, count)", newGroupBy)
}
