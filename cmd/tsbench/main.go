// Command tsbench measures pipeline throughput on synthetic sensor data.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math"
	"math/rand"
	"os"
	"runtime"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/wdm0006/industryts/pkg/config"
	"github.com/wdm0006/industryts/pkg/frame"
	"github.com/wdm0006/industryts/pkg/pipeline"
	"github.com/wdm0006/industryts/pkg/timeseries"
	"github.com/wdm0006/industryts/pkg/transform"
	"github.com/wdm0006/industryts/pkg/transform/features"
	"github.com/wdm0006/industryts/pkg/transform/quality"
	"github.com/wdm0006/industryts/pkg/transform/scale"
)

type options struct {
	rows     int
	cols     int
	interval time.Duration
	missing  float64
	seed     int64
	runs     int
	parallel int
	config   string
}

// generate builds a frame of cols random-walk sensors sampled every interval.
func generate(o options) (*timeseries.Data, error) {
	rnd := rand.New(rand.NewSource(o.seed))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, o.rows)
	for i := range times {
		times[i] = base.Add(time.Duration(i) * o.interval)
	}
	cols := []frame.Column{frame.NewTimeColumnFrom("DateTime", times)}
	for c := 0; c < o.cols; c++ {
		vals := make([]float64, o.rows)
		valid := make([]bool, o.rows)
		level := 50 + rnd.Float64()*50
		for i := range vals {
			level += rnd.NormFloat64()
			vals[i] = level
			valid[i] = rnd.Float64() >= o.missing
		}
		cols = append(cols, frame.NewFloatColumnFrom(fmt.Sprintf("s%d", c), vals, valid))
	}
	f, err := frame.FromColumns(cols...)
	if err != nil {
		return nil, err
	}
	return timeseries.New(f, "DateTime")
}

// defaultPipeline fills, clips, adds lag and rolling features, then
// standardizes s0.
func defaultPipeline(logger zerolog.Logger) *pipeline.Pipeline {
	lo, hi := -1e6, 1e6
	return pipeline.NewBuilder().
		Name("tsbench").
		Logger(logger).
		AddOperation(quality.NewFillNull(quality.FillForward)).
		AddOperation(quality.NewClip(&lo, &hi)).
		AddOperation(features.NewLag([]int{1, 2}, "s0")).
		AddOperation(features.NewRolling(12, "mean", "s0")).
		AddOperation(scale.NewStandardize("s0")).
		Build()
}

func buildPipeline(o options, logger zerolog.Logger) (*pipeline.Pipeline, error) {
	if o.config == "" {
		return defaultPipeline(logger), nil
	}
	cfg, err := config.Load(o.config)
	if err != nil {
		return nil, err
	}
	return pipeline.FromConfig(cfg, transform.StandardRegistry(), pipeline.WithLogger(logger))
}

type opStats struct {
	Operation string  `json:"operation"`
	MeanMs    float64 `json:"mean_ms"`
	MaxMs     float64 `json:"max_ms"`
}

type summary struct {
	Rows        int       `json:"rows"`
	Cols        int       `json:"cols"`
	Runs        int       `json:"runs"`
	Parallel    int       `json:"parallel"`
	ElapsedMs   int64     `json:"elapsed_ms"`
	RowsPerSec  float64   `json:"rows_per_sec"`
	TotalAlloc  uint64    `json:"mem_total_alloc_bytes"`
	GCCycles    uint32    `json:"gc_num"`
	OutputCols  int       `json:"output_cols"`
	Operations  []opStats `json:"operations"`
	MissingProb float64   `json:"missing_prob"`
}

// bench runs p o.runs times, at most o.parallel at once, over the same input.
func bench(ctx context.Context, o options, p *pipeline.Pipeline, in *timeseries.Data) (summary, error) {
	contexts := make([]*pipeline.ExecutionContext, o.runs)
	outCols := make([]int, o.runs)

	var before, after runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&before)
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, o.parallel))
	for i := 0; i < o.runs; i++ {
		i := i
		g.Go(func() error {
			ec := pipeline.NewExecutionContext()
			ec.SetMetadata("run", fmt.Sprint(i))
			out, ec, err := p.ProcessWithContext(gctx, in, ec)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			contexts[i] = ec
			outCols[i] = out.Frame().Cols()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return summary{}, err
	}
	elapsed := time.Since(start)
	runtime.ReadMemStats(&after)

	s := summary{
		Rows:        in.Len(),
		Cols:        in.Frame().Cols() - 1,
		Runs:        o.runs,
		Parallel:    o.parallel,
		ElapsedMs:   elapsed.Milliseconds(),
		TotalAlloc:  after.TotalAlloc - before.TotalAlloc,
		GCCycles:    after.NumGC - before.NumGC,
		MissingProb: o.missing,
		Operations:  perOperation(contexts),
	}
	if len(outCols) > 0 {
		s.OutputCols = outCols[0]
	}
	if elapsed > 0 {
		s.RowsPerSec = float64(in.Len()*o.runs) / elapsed.Seconds()
	}
	return s, nil
}

func perOperation(contexts []*pipeline.ExecutionContext) []opStats {
	type acc struct {
		name     string
		sum, top time.Duration
		n        int
	}
	byIndex := map[int]*acc{}
	for _, ec := range contexts {
		for _, m := range ec.Metrics {
			a, ok := byIndex[m.Index]
			if !ok {
				a = &acc{name: m.Operation}
				byIndex[m.Index] = a
			}
			a.sum += m.Duration
			a.top = max(a.top, m.Duration)
			a.n++
		}
	}
	idx := make([]int, 0, len(byIndex))
	for i := range byIndex {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	out := make([]opStats, 0, len(idx))
	for _, i := range idx {
		a := byIndex[i]
		out = append(out, opStats{
			Operation: a.name,
			MeanMs:    ms(a.sum / time.Duration(a.n)),
			MaxMs:     ms(a.top),
		})
	}
	return out
}

func ms(d time.Duration) float64 { return math.Round(float64(d.Microseconds())) / 1000 }

func writeText(w io.Writer, s summary) {
	fmt.Fprintf(w, "Rows: %d x %d sensors, %d runs (%d parallel)\n", s.Rows, s.Cols, s.Runs, s.Parallel)
	fmt.Fprintf(w, "Elapsed: %dms\n", s.ElapsedMs)
	fmt.Fprintf(w, "Throughput: %.0f rows/s\n", s.RowsPerSec)
	fmt.Fprintf(w, "Total Alloc (delta): %d MB\n", s.TotalAlloc/1024/1024)
	fmt.Fprintf(w, "GC cycles (delta): %d\n", s.GCCycles)
	for _, op := range s.Operations {
		fmt.Fprintf(w, "  %-16s mean %8.3fms  max %8.3fms\n", op.Operation, op.MeanMs, op.MaxMs)
	}
}

func main() {
	var o options
	flag.IntVar(&o.rows, "rows", 500_000, "rows per sensor")
	flag.IntVar(&o.cols, "sensors", 4, "number of sensor columns")
	flag.DurationVar(&o.interval, "interval", time.Minute, "sampling interval")
	flag.Float64Var(&o.missing, "missing", 0.05, "probability of a missing reading")
	flag.Int64Var(&o.seed, "seed", 42, "random seed")
	flag.IntVar(&o.runs, "runs", 4, "pipeline runs over the same input")
	flag.IntVar(&o.parallel, "parallel", runtime.GOMAXPROCS(0), "maximum concurrent runs")
	flag.StringVar(&o.config, "config", "", "pipeline document to benchmark instead of the built-in one")
	jsonOut := flag.Bool("json", false, "emit JSON summary")
	flag.Parse()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel).With().Timestamp().Logger()
	p, err := buildPipeline(o, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("build pipeline")
	}
	in, err := generate(o)
	if err != nil {
		logger.Fatal().Err(err).Msg("generate input")
	}
	if err := p.ValidateData(in); err != nil {
		logger.Fatal().Err(err).Msg("pipeline does not fit the generated data")
	}
	s, err := bench(context.Background(), o, p, in)
	if err != nil {
		logger.Fatal().Err(err).Msg("benchmark")
	}
	if *jsonOut {
		b, _ := json.MarshalIndent(s, "", "  ")
		fmt.Println(string(b))
		return
	}
	writeText(os.Stdout, s)
}
