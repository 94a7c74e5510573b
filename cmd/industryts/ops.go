package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/transform"
)

func opsCmd(args []string, stdout, stderr io.Writer) int {
	fs, _ := newFlagSet("ops", stderr)
	category := fs.String("category", "", "only list one category (DataQuality, Temporal, Features, Aggregation, Transform)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	reg := transform.StandardRegistry()
	entries := reg.List()
	if *category != "" {
		c, err := pipeline.ParseCategory(*category)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 2
		}
		entries = reg.ListByCategory(c)
	}
	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCATEGORY\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Name, e.Category, e.Description)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}
