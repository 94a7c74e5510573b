package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/metrics"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/profile"
	"github.com/wdm0006/industryts/pkg/timeseries"
	"github.com/wdm0006/industryts/pkg/transform"
)

func runCmd(args []string, stdout, stderr io.Writer) int {
	fs, common := newFlagSet("run", stderr)
	var (
		configPath      = fs.String("config", "", "pipeline document (.toml, .yaml)")
		input           = fs.String("input", "-", "input .csv, .jsonl or .parquet file, - for CSV on stdin")
		output          = fs.String("output", "-", "output .csv, .jsonl or .parquet file, - for CSV on stdout")
		timeColumn      = fs.String("time-column", "", "override the time column")
		continueOnError = fs.Bool("continue-on-error", false, "skip failing steps instead of aborting")
		showMetrics     = fs.Bool("metrics", false, "print Prometheus metrics to stderr after the run")
		pushgateway     = fs.String("pushgateway", "", "push metrics to this Pushgateway URL")
		showProfile     = fs.Bool("profile", false, "print a profile of the output to stderr")
		summaryJSON     = fs.Bool("summary-json", false, "print the run summary as JSON to stderr")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *configPath == "" {
		fmt.Fprintln(stderr, "run: -config is required")
		return 2
	}
	logger, err := common.logger(stderr)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error().Err(err).Str("config", *configPath).Msg("load pipeline")
		return 1
	}
	rec, err := metrics.NewRecorder(cfg.Name)
	if err != nil {
		logger.Error().Err(err).Msg("metrics")
		return 1
	}
	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(*continueOnError),
		pipeline.WithRecorder(rec),
	}
	if *timeColumn != "" {
		opts = append(opts, pipeline.WithTimeColumn(*timeColumn))
	}
	p, err := pipeline.FromConfig(cfg, transform.StandardRegistry(), opts...)
	if err != nil {
		logger.Error().Err(err).Str("config", *configPath).Msg("build pipeline")
		return 1
	}

	f, warnings, err := readFrame(*input)
	if err != nil {
		logger.Error().Err(err).Str("input", *input).Msg("read input")
		return 1
	}
	if warnings != "" {
		logger.Warn().Str("input", *input).Str("repairs", warnings).Msg("input records repaired")
	}
	data, err := timeseries.New(f, p.TimeColumn())
	if err != nil {
		logger.Error().Err(err).Msg("input is not a time series")
		return 1
	}

	ec := pipeline.NewExecutionContext()
	ec.SetMetadata("config", *configPath)
	ec.SetMetadata("input", *input)
	if sum, err := fingerprint(*input); err != nil {
		logger.Warn().Err(err).Msg("fingerprint input")
	} else if sum != "" {
		ec.SetMetadata("input_xxh3", sum)
	}

	out, ec, err := p.ProcessWithContext(context.Background(), data, ec)
	code := 0
	if err != nil {
		var se *pipeline.StepError
		if errors.As(err, &se) {
			logger.Error().Err(se.Err).Int("index", se.Index).Str("operation", se.Operation).Int("completed", len(se.Metrics)).Msg("pipeline failed")
		} else {
			logger.Error().Err(err).Msg("pipeline failed")
		}
		code = 1
	} else if err := writeFrame(*output, out.Frame(), stdout); err != nil {
		logger.Error().Err(err).Str("output", *output).Msg("write output")
		code = 1
	}

	s := ec.Summary()
	logger.Info().
		Str("run_id", ec.RunID).
		Int("operations", s.TotalOperations).
		Int("rows", s.TotalRowsProcessed).
		Dur("duration", s.TotalDuration).
		Float64("rows_per_sec", s.AverageThroughput).
		Int("failures", len(ec.Failures)).
		Msg("run finished")
	if *summaryJSON {
		if err := writeSummaryJSON(stderr, ec); err != nil {
			logger.Warn().Err(err).Msg("write run summary")
		}
	}
	if *showProfile && out != nil {
		fmt.Fprint(stderr, profile.Of(out.Frame(), 5).ReportText())
	}
	if *showMetrics {
		if err := rec.WriteText(stderr); err != nil {
			logger.Warn().Err(err).Msg("write metrics")
		}
	}
	if *pushgateway != "" {
		if err := rec.Push(*pushgateway, "industryts"); err != nil {
			logger.Warn().Err(err).Str("url", *pushgateway).Msg("push metrics")
		}
	}
	return code
}

func writeSummaryJSON(w io.Writer, ec *pipeline.ExecutionContext) error {
	s := ec.Summary()
	steps := make([]map[string]any, 0, len(ec.Metrics))
	for _, m := range ec.Metrics {
		steps = append(steps, map[string]any{
			"index":       m.Index,
			"operation":   m.Operation,
			"input_rows":  m.InputRows,
			"output_rows": m.OutputRows,
			"duration_ms": float64(m.Duration.Microseconds()) / 1000,
			"throughput":  m.Throughput,
		})
	}
	b, err := json.MarshalIndent(map[string]any{
		"run_id":            ec.RunID,
		"metadata":          ec.Metadata,
		"total_operations":  s.TotalOperations,
		"total_duration_ms": float64(s.TotalDuration.Microseconds()) / 1000,
		"rows":              s.TotalRowsProcessed,
		"rows_per_sec":      s.AverageThroughput,
		"failures":          len(ec.Failures),
		"steps":             steps,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("run summary: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
