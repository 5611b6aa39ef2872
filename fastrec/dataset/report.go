package dataset

import (
	"sort"
	"time"

	"github.com/ZanzyTHEbar/fast-record/fastrec/config"
	"github.com/ZanzyTHEbar/fast-record/fastrec/encoder"

	roaring "github.com/RoaringBitmap/roaring"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Report summarizes one build
type Report struct {
	BuildID   string
	Task      config.Task
	VocabSize int
	Splits    []*SplitReport
	Duration  time.Duration
}

// Split returns the report of split, or nil if it was not built
func (r *Report) Split(split Split) *SplitReport {
	for _, s := range r.Splits {
		if s.Split == split {
			return s
		}
	}
	return nil
}

// LengthStats describes token counts before fitting to the maximum length
type LengthStats struct {
	Mean float64
	P95  float64
	Max  int
}

// SplitReport describes one built split. Dropped holds the line numbers
// rejected by the parser; Truncated holds the row indices that lost tokens.
type SplitReport struct {
	Split     Split
	Path      string
	Samples   int
	Dropped   *roaring.Bitmap
	Truncated *roaring.Bitmap
	Unknown   int
	Lengths   LengthStats
	Batches   int
	Duration  time.Duration
}

func newSplitReport(split Split, samples int, dropped *roaring.Bitmap, records []encoder.Record, maxLen int) *SplitReport {
	rep := &SplitReport{
		Split:     split,
		Samples:   samples,
		Dropped:   dropped,
		Truncated: roaring.New(),
	}
	if rep.Dropped == nil {
		rep.Dropped = roaring.New()
	}

	var lengths []float64
	for i := range records {
		r := &records[i]
		if r.Truncated(maxLen) {
			rep.Truncated.Add(uint32(i))
		}
		rep.Unknown += r.Unknown
		for _, n := range r.Lengths {
			lengths = append(lengths, float64(n))
		}
	}
	rep.Lengths = summarizeLengths(lengths)
	return rep
}

func summarizeLengths(xs []float64) LengthStats {
	if len(xs) == 0 {
		return LengthStats{}
	}
	sort.Float64s(xs)
	return LengthStats{
		Mean: stat.Mean(xs, nil),
		P95:  stat.Quantile(0.95, stat.Empirical, xs, nil),
		Max:  int(floats.Max(xs)),
	}
}

// MarshalZerologObject logs the split summary
func (r *SplitReport) MarshalZerologObject(e *zerolog.Event) {
	e.Str("split", string(r.Split)).
		Str("path", r.Path).
		Int("samples", r.Samples).
		Uint64("dropped", r.Dropped.GetCardinality()).
		Uint64("truncated", r.Truncated.GetCardinality()).
		Int("unknown", r.Unknown).
		Float64("length_mean", r.Lengths.Mean).
		Float64("length_p95", r.Lengths.P95).
		Int("length_max", r.Lengths.Max).
		Int("batches", r.Batches).
		Dur("duration", r.Duration)
}

var _ zerolog.LogObjectMarshaler = (*SplitReport)(nil)

