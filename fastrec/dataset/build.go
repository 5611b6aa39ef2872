package dataset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	internal "github.com/ZanzyTHEbar/fast-record/fastrec"
	"github.com/ZanzyTHEbar/fast-record/fastrec/columnar"
	"github.com/ZanzyTHEbar/fast-record/fastrec/common"
	"github.com/ZanzyTHEbar/fast-record/fastrec/config"

	"github.com/google/uuid"
)

// Run builds the dataset described by cfg, choosing the variant from cfg.Task.
// Every log line of the build carries a fresh build_id.
func Run(ctx context.Context, cfg *config.Config, opts Options) (*Report, error) {
	buildID := uuid.NewString()
	opts.Logger = opts.Logger.With().
		Str("build_id", buildID).
		Str("task", string(cfg.Task)).
		Logger()

	var (
		rep *Report
		err error
	)
	switch cfg.Task {
	case config.TaskClassifier:
		var t *Classifier
		if t, err = NewClassifier(cfg, opts); err == nil {
			rep, err = Build[ClassifierSample](ctx, cfg, t, opts)
		}
	case config.TaskSimilarity:
		var t *Similarity
		if t, err = NewSimilarity(cfg, opts); err == nil {
			rep, err = Build[SimilaritySample](ctx, cfg, t, opts)
		}
	case config.TaskTagging:
		var t *Tagging
		if t, err = NewTagging(cfg, opts); err == nil {
			rep, err = Build[TaggingSample](ctx, cfg, t, opts)
		}
	default:
		return nil, fmt.Errorf("unknown task %q: %w", cfg.Task, common.ErrInvalidConfig)
	}
	if err != nil {
		return nil, err
	}
	rep.BuildID = buildID
	return rep, nil
}

// Build runs read, encode and serialize for train, dev and test in that
// order. The vocabulary and label maps are derived from the train samples
// and reused unchanged for dev and test. The first failure aborts the build.
func Build[S any](ctx context.Context, cfg *config.Config, task Task[S], opts Options) (*Report, error) {
	start := time.Now()
	logger := opts.Logger

	format, err := columnar.ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %s: %w", cfg.Output, err)
	}
	ser := columnar.NewSerializer(format, logger)

	rep := &Report{Task: task.Name()}
	for _, split := range Splits {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		splitStart := time.Now()
		logger.Info().Str("split", string(split)).Msg("Processing split")

		samples, dropped, err := task.Read(ctx, split)
		if err != nil {
			return nil, common.WrapError(err, "read %s", split)
		}
		if n := dropped.GetCardinality(); n > 0 {
			logger.Warn().
				Str("split", string(split)).
				Uint64("dropped", n).
				Uint32("first_line", dropped.Minimum()).
				Msg("Dropped malformed lines")
		}

		if split == SplitTrain {
			if err := task.Init(ctx, samples); err != nil {
				return nil, common.WrapError(err, "init from %s", split)
			}
			vocabPath := filepath.Join(cfg.Output, internal.DefaultVocabFile)
			if err := task.SaveVocab(vocabPath); err != nil {
				return nil, common.WrapError(err, "save vocabulary")
			}
			rep.VocabSize = task.Vocabulary().Size()
		}

		records, err := task.Encode(ctx, split, samples)
		if err != nil {
			return nil, common.WrapError(err, "encode %s", split)
		}

		path := filepath.Join(cfg.Output, split.RecordFile(format))
		stats, err := ser.Write(path, task.Schema(), records)
		if err != nil {
			return nil, err
		}

		sr := newSplitReport(split, len(samples), dropped, records, cfg.SequenceLength)
		sr.Path = stats.Path
		sr.Batches = stats.Batches
		sr.Duration = time.Since(splitStart)
		rep.Splits = append(rep.Splits, sr)
		logger.Info().EmbedObject(sr).Msg("Split built")
	}

	rep.Duration = time.Since(start)
	logger.Info().
		Int("vocab_size", rep.VocabSize).
		Dur("duration", rep.Duration).
		Msg("Build completed")
	return rep, nil
}
