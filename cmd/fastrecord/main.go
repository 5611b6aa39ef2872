package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	internal "github.com/ZanzyTHEbar/fast-record/fastrec"
	"github.com/ZanzyTHEbar/fast-record/fastrec/batch"
	"github.com/ZanzyTHEbar/fast-record/fastrec/config"
	"github.com/ZanzyTHEbar/fast-record/fastrec/dataset"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/pflag"
)

const usage = `Usage: fastrecord <command> --input DIR [flags]

Commands:
  classifier   build a single-text classification dataset
  similarity   build a text-pair similarity dataset
  tagging      build a token/tag sequence labeling dataset
  help         show this message

Run 'fastrecord <command> --help' for the flags of a command.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return 1
	}
	switch args[0] {
	case "help", "-h", "--help":
		fmt.Fprint(stderr, usage)
		return 0
	}

	task, err := config.ParseTask(args[0])
	if err != nil {
		fmt.Fprintf(stderr, "fastrecord: %v\n\n%s", err, usage)
		return 1
	}

	fs := pflag.NewFlagSet(string(task), pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "config file (default ./fastrecord.yaml if present)")
	noProgress := fs.Bool("no-progress", false, "disable progress bars")
	config.RegisterFlags(fs, task)
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}

	cfg, err := config.LoadConfig(*configPath, task, fs)
	if err != nil {
		fmt.Fprintf(stderr, "fastrecord: %v\n", err)
		return 1
	}

	logger := internal.GetLoggerWithLevel(cfg.LogLevel)
	opts := dataset.Options{Logger: logger}
	if !*noProgress {
		opts.Progress = progressBars(stderr)
	}

	rep, err := dataset.Run(ctx, cfg, opts)
	if err != nil {
		logger.Error().Err(err).Str("task", string(task)).Msg("Build failed")
		fmt.Fprintf(stderr, "fastrecord: %v\n", err)
		return 1
	}

	for _, sr := range rep.Splits {
		fmt.Fprintf(stderr, "%-5s %7d samples  %5d dropped  %5d truncated  -> %s\n",
			sr.Split, sr.Samples, sr.Dropped.GetCardinality(), sr.Truncated.GetCardinality(), sr.Path)
	}
	return 0
}

// progressBars draws one bar per split phase on w
func progressBars(w io.Writer) dataset.ProgressFunc {
	return func(split dataset.Split, phase string, total int) batch.Progress {
		return progressbar.NewOptions64(int64(total),
			progressbar.OptionSetWriter(w),
			progressbar.OptionSetDescription(fmt.Sprintf("%-5s %-6s", split, phase)),
			progressbar.OptionShowCount(),
			progressbar.OptionThrottle(100*time.Millisecond),
			progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
		)
	}
}
