package dataset

import (
	"context"
	"fmt"

	"github.com/ZanzyTHEbar/fast-record/fastrec/columnar"
	"github.com/ZanzyTHEbar/fast-record/fastrec/common"
	"github.com/ZanzyTHEbar/fast-record/fastrec/config"
	"github.com/ZanzyTHEbar/fast-record/fastrec/encoder"
	"github.com/ZanzyTHEbar/fast-record/fastrec/labels"
	"github.com/ZanzyTHEbar/fast-record/fastrec/vocab"

	roaring "github.com/RoaringBitmap/roaring"
)

// Tagging builds token/tag sequence labeling datasets. Tokens are taken as
// written in the input, one per line, and sequences longer than the maximum
// length fail the build instead of being truncated.
type Tagging struct {
	*base
	tags *labels.TagMap
}

var _ Task[TaggingSample] = (*Tagging)(nil)

// NewTagging creates the sequence labeling variant
func NewTagging(cfg *config.Config, opts Options) (*Tagging, error) {
	b, err := newBase(cfg, opts, encoder.FailOnOverflow, columnar.TaggingSchema(cfg.SequenceLength))
	if err != nil {
		return nil, err
	}
	return &Tagging{base: b}, nil
}

func (t *Tagging) Name() config.Task {
	return config.TaskTagging
}

// Read groups lines into samples. Grouping depends on neighbouring lines so
// it runs on the control goroutine.
func (t *Tagging) Read(ctx context.Context, split Split) ([]TaggingSample, *roaring.Bitmap, error) {
	lines, err := ReadLines(t.inputPath(split.InputFile()))
	if err != nil {
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	samples, dropped := GroupTagging(lines, t.cfg.Tagging.Separator)
	return samples, dropped, nil
}

// Init builds the vocabulary and the tag map from train
func (t *Tagging) Init(ctx context.Context, train []TaggingSample) error {
	tb := labels.NewTagMapBuilder(t.cfg.Tagging.PadTag)
	for i := range train {
		tb.Add(train[i].Tags)
	}
	tags, err := tb.Build()
	if err != nil {
		return err
	}
	t.tags = tags
	t.logger.Info().Int("tags", tags.Len()).Msg("Built tag map")

	return t.initVocab(func(b *vocab.Builder) {
		for i := range train {
			b.Add(train[i].Tokens)
		}
	})
}

// Tags returns the tag map built by Init
func (t *Tagging) Tags() *labels.TagMap {
	return t.tags
}

func (t *Tagging) Encode(ctx context.Context, split Split, samples []TaggingSample) ([]encoder.Record, error) {
	return encodeSplit(ctx, t.base, split, samples, func(s *TaggingSample) (encoder.Record, error) {
		if len(s.Tokens) != len(s.Tags) {
			return encoder.Record{}, fmt.Errorf("%s line %d: %d tokens, %d tags: %w",
				split.InputFile(), s.Line, len(s.Tokens), len(s.Tags), common.ErrMisalignedSample)
		}
		seq, err := t.enc.Encode(s.Tokens)
		if err != nil {
			return encoder.Record{}, common.WrapError(err, "%s sample at line %d", split.InputFile(), s.Line)
		}
		tags, err := t.enc.EncodeTags(s.Tags, t.tags)
		if err != nil {
			return encoder.Record{}, common.WrapError(err, "%s sample at line %d", split.InputFile(), s.Line)
		}
		return encoder.Record{
			Tokens:  [][]uint32{seq.IDs},
			Tags:    tags,
			Lengths: []int{seq.Length},
			Unknown: seq.Unknown,
		}, nil
	})
}
