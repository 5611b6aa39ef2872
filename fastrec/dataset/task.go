package dataset

import (
	"context"
	"path/filepath"

	internal "github.com/ZanzyTHEbar/fast-record/fastrec"
	"github.com/ZanzyTHEbar/fast-record/fastrec/batch"
	"github.com/ZanzyTHEbar/fast-record/fastrec/columnar"
	"github.com/ZanzyTHEbar/fast-record/fastrec/common"
	"github.com/ZanzyTHEbar/fast-record/fastrec/config"
	"github.com/ZanzyTHEbar/fast-record/fastrec/encoder"
	"github.com/ZanzyTHEbar/fast-record/fastrec/tokenizer"
	"github.com/ZanzyTHEbar/fast-record/fastrec/vocab"

	roaring "github.com/RoaringBitmap/roaring"
	"github.com/rs/zerolog"
)

// Split names one of the three fixed dataset partitions
type Split string

const (
	SplitTrain Split = "train"
	SplitDev   Split = "dev"
	SplitTest  Split = "test"
)

// Splits lists the partitions in build order
var Splits = []Split{SplitTrain, SplitDev, SplitTest}

// InputFile returns the split's file name inside the input directory
func (s Split) InputFile() string {
	return string(s) + ".txt"
}

// RecordFile returns the split's records file name for format
func (s Split) RecordFile(format columnar.Format) string {
	return string(s) + internal.DefaultRecordSuffix + format.Ext()
}

// Task is the capability set every dataset variant provides. S is the
// variant's sample shape. Init is called exactly once, with the training
// samples, before any Encode.
type Task[S any] interface {
	Name() config.Task
	Read(ctx context.Context, split Split) ([]S, *roaring.Bitmap, error)
	Init(ctx context.Context, train []S) error
	Encode(ctx context.Context, split Split, samples []S) ([]encoder.Record, error)
	Schema() *columnar.Schema
	Vocabulary() *vocab.Vocabulary
	SaveVocab(path string) error
}

// ProgressFunc creates a progress sink for one phase of one split. It may return nil.
type ProgressFunc func(split Split, phase string, total int) batch.Progress

// Options carries the collaborators shared by every variant
type Options struct {
	Logger   zerolog.Logger
	Progress ProgressFunc
}

// base holds the state shared by the three variants: configuration, the
// worker pool, and once Init ran, the vocabulary and its encoder.
type base struct {
	cfg      *config.Config
	proc     *batch.Processor
	logger   zerolog.Logger
	progress ProgressFunc
	tok      tokenizer.Tokenizer
	policy   encoder.Policy
	schema   *columnar.Schema

	vocab *vocab.Vocabulary
	enc   *encoder.Encoder
}

func newBase(cfg *config.Config, opts Options, policy encoder.Policy, schema *columnar.Schema) (*base, error) {
	tok, err := tokenizer.New(tokenizer.Config{
		Mode:      tokenizer.Mode(cfg.TokenizerLang()),
		Normalize: tokenizer.Normalization(cfg.Normalize),
	})
	if err != nil {
		return nil, err
	}
	return &base{
		cfg:      cfg,
		proc:     batch.NewProcessor(cfg.Workers, opts.Logger),
		logger:   opts.Logger,
		progress: opts.Progress,
		tok:      tok,
		policy:   policy,
		schema:   schema,
	}, nil
}

func (b *base) Schema() *columnar.Schema {
	return b.schema
}

func (b *base) Vocabulary() *vocab.Vocabulary {
	return b.vocab
}

func (b *base) SaveVocab(path string) error {
	if b.vocab == nil {
		return common.WrapError(common.ErrInvalidConfig, "vocabulary not initialized")
	}
	return vocab.Save(b.vocab, path)
}

func (b *base) inputPath(name string) string {
	return filepath.Join(b.cfg.Input, name)
}

func (b *base) progressFor(split Split, phase string, total int) batch.Progress {
	if b.progress == nil {
		return nil
	}
	return b.progress(split, phase, total)
}

// readSplit reads the split file and parses each line in parallel
func readSplit[S any](ctx context.Context, b *base, split Split, parse func(Line) (S, bool)) ([]S, *roaring.Bitmap, error) {
	lines, err := ReadLines(b.inputPath(split.InputFile()))
	if err != nil {
		return nil, nil, err
	}
	return parseLines(ctx, b.proc, "parse "+string(split), lines, b.progressFor(split, "parse", len(lines)), parse)
}

// initVocab loads vocab.txt when configured to, otherwise builds the
// vocabulary from the tokens add feeds into the builder. Either way the
// encoder is ready afterwards.
func (b *base) initVocab(add func(*vocab.Builder)) error {
	var v *vocab.Vocabulary
	var err error

	if b.cfg.Vocab.WithVocab {
		path := b.inputPath(internal.DefaultVocabFile)
		if v, err = vocab.Load(path, b.cfg.Vocab.Padding, b.cfg.Vocab.Unknown); err != nil {
			return err
		}
		b.logger.Info().Str("path", path).Int("size", v.Size()).Msg("Loaded vocabulary")
	} else {
		var stop vocab.Stopwords
		if b.cfg.Vocab.Stopwords != "" {
			if stop, err = vocab.LoadStopwords(b.cfg.Vocab.Stopwords); err != nil {
				return err
			}
		}

		builder := vocab.NewBuilder(b.cfg.Vocab.Padding, b.cfg.Vocab.Unknown, stop)
		add(builder)
		if b.cfg.Vocab.MaxSize > 0 && builder.Distinct() > b.cfg.Vocab.MaxSize {
			// the configured maximum is reported, never enforced
			b.logger.Warn().
				Int("distinct", builder.Distinct()).
				Int("max_size", b.cfg.Vocab.MaxSize).
				Msg("Vocabulary exceeds configured maximum size")
		}
		if v, err = builder.Build(); err != nil {
			return err
		}
		b.logger.Info().
			Int("size", v.Size()).
			Int("distinct", builder.Distinct()).
			Int("stopwords", len(stop)).
			Int64("occurrences", builder.Occurrences()).
			Msg("Built vocabulary")
	}

	enc, err := encoder.New(v, b.cfg.SequenceLength, b.policy)
	if err != nil {
		return err
	}
	b.vocab, b.enc = v, enc
	return nil
}

// encodeSplit maps samples to records on the worker pool in input order
func encodeSplit[S any](ctx context.Context, b *base, split Split, samples []S, fn func(s *S) (encoder.Record, error)) ([]encoder.Record, error) {
	if b.enc == nil {
		return nil, common.WrapError(common.ErrInvalidConfig, "encode %s before init", split)
	}
	records, _, err := batch.Map(ctx, b.proc, "encode "+string(split), samples, b.progressFor(split, "encode", len(samples)), func(_ int, s *S) (encoder.Record, error) {
		return fn(s)
	})
	return records, err
}
