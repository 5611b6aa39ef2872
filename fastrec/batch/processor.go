package batch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/iter"
)

// Progress observes completed items. Implementations must be safe for
// concurrent use since workers report independently.
type Progress interface {
	Add(n int) error
	Finish() error
}

// Stats tracks performance metrics of one Map call
type Stats struct {
	Items    int
	Failed   int
	Duration time.Duration
}

// Processor applies a function to every item of a slice using a bounded set of
// goroutines. Results are collected by position, so output order always equals
// input order regardless of scheduling.
type Processor struct {
	maxWorkers int
	logger     zerolog.Logger
}

// NewProcessor creates a processor with the given worker bound.
// A non-positive bound means one worker per CPU.
func NewProcessor(maxWorkers int, logger zerolog.Logger) *Processor {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}
	return &Processor{maxWorkers: maxWorkers, logger: logger}
}

// Workers returns the worker bound
func (p *Processor) Workers() int {
	return p.maxWorkers
}

// Map runs fn over items and returns the results in input order. fn receives
// the item's index and must only read shared state. Every item is attempted;
// if any fail, the error of the lowest failing index is returned (annotated
// with the total failure count) and no results are returned. progress may be nil.
func Map[T, R any](ctx context.Context, p *Processor, phase string, items []T, progress Progress, fn func(i int, item *T) (R, error)) ([]R, Stats, error) {
	start := time.Now()

	positions := make([]int, len(items))
	for i := range positions {
		positions[i] = i
	}
	// each worker writes only its own slot
	errs := make([]error, len(items))

	mapper := iter.Mapper[int, R]{MaxGoroutines: p.maxWorkers}
	results := mapper.Map(positions, func(i *int) R {
		var r R
		if err := ctx.Err(); err != nil {
			errs[*i] = err
			return r
		}
		r, errs[*i] = fn(*i, &items[*i])
		if progress != nil {
			_ = progress.Add(1)
		}
		return r
	})
	if progress != nil {
		_ = progress.Finish()
	}

	stats := Stats{Items: len(items), Duration: time.Since(start)}
	var firstErr error
	for _, err := range errs {
		if err == nil {
			continue
		}
		stats.Failed++
		if firstErr == nil {
			firstErr = err
		}
	}

	p.logger.Debug().
		Str("phase", phase).
		Int("items", stats.Items).
		Int("failed", stats.Failed).
		Int("workers", p.maxWorkers).
		Dur("duration", stats.Duration).
		Msg("Parallel map completed")

	if firstErr != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, stats, ctxErr
		}
		if stats.Failed > 1 {
			return nil, stats, fmt.Errorf("%s: %w (and %d more failures)", phase, firstErr, stats.Failed-1)
		}
		return nil, stats, fmt.Errorf("%s: %w", phase, firstErr)
	}
	return results, stats, nil
}
