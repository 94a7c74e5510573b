package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/timeseries"
	"github.com/wdm0006/industryts/pkg/transform"
)

func validateCmd(args []string, stdout, stderr io.Writer) int {
	fs, common := newFlagSet("validate", stderr)
	configPath := fs.String("config", "", "pipeline document (.toml, .yaml)")
	input := fs.String("input", "", "optional CSV or Parquet file whose schema the pipeline is checked against")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *configPath == "" {
		fmt.Fprintln(stderr, "validate: -config is required")
		return 2
	}
	logger, err := common.logger(stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}
	if !exists(*configPath) {
		fmt.Fprintf(stderr, "validate: %s does not exist\n", *configPath)
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(stdout, err)
		return 1
	}
	reg := transform.StandardRegistry()
	if err := pipeline.ValidateConfig(cfg, reg); err != nil {
		printProblems(stdout, err)
		return 1
	}
	if *input != "" {
		p, err := pipeline.FromConfig(cfg, reg, pipeline.WithLogger(logger))
		if err != nil {
			fmt.Fprintln(stdout, err)
			return 1
		}
		f, _, err := readFrame(*input)
		if err != nil {
			logger.Error().Err(err).Str("input", *input).Msg("read input")
			return 1
		}
		data, err := timeseries.New(f, p.TimeColumn())
		if err != nil {
			fmt.Fprintln(stdout, err)
			return 1
		}
		if err := p.ValidateData(data); err != nil {
			printProblems(stdout, err)
			return 1
		}
	}
	fmt.Fprintf(stdout, "%s: %d operations OK\n", *configPath, len(cfg.Operations))
	return 0
}

func printProblems(w io.Writer, err error) {
	var verrs pipeline.ValidationErrors
	if !errors.As(err, &verrs) {
		fmt.Fprintln(w, err)
		return
	}
	for _, v := range verrs {
		fmt.Fprintln(w, v.Error())
	}
}

// exists gives a clearer message than the loader for a mistyped path.
func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
