// Command industryts runs, validates and lists time-series pipelines.
//
//	industryts run -config pipeline.toml -input in.csv -output out.csv
//	industryts validate -config pipeline.toml [-input in.csv]
//	industryts ops [-category Features]
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var version = "0.1.0-dev"

const usage = `usage: industryts <command> [flags]

commands:
  run        execute a pipeline document against a CSV, JSON Lines or Parquet file
  validate   check a pipeline document, optionally against an input schema
  ops        list the available operations
  version    print the version

run "industryts <command> -h" for command flags
`

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

func realMain(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}
	switch args[0] {
	case "run":
		return runCmd(args[1:], stdout, stderr)
	case "validate":
		return validateCmd(args[1:], stdout, stderr)
	case "ops":
		return opsCmd(args[1:], stdout, stderr)
	case "version", "-version", "--version":
		fmt.Fprintln(stdout, "industryts", version)
		return 0
	case "-h", "-help", "--help", "help":
		fmt.Fprint(stdout, usage)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", args[0], usage)
		return 2
	}
}

// commonFlags registers the flags every command shares.
type commonFlags struct {
	logLevel string
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	c := &commonFlags{}
	fs.StringVar(&c.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	return fs, c
}

func (c *commonFlags) logger(w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(c.logLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid -log-level: %w", err)
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(lvl).
		With().
		Timestamp().
		Logger(), nil
}
