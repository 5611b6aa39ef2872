package dataset

import (
	"context"

	internal "github.com/ZanzyTHEbar/fast-record/fastrec"
	"github.com/ZanzyTHEbar/fast-record/fastrec/columnar"
	"github.com/ZanzyTHEbar/fast-record/fastrec/common"
	"github.com/ZanzyTHEbar/fast-record/fastrec/config"
	"github.com/ZanzyTHEbar/fast-record/fastrec/encoder"
	"github.com/ZanzyTHEbar/fast-record/fastrec/labels"
	"github.com/ZanzyTHEbar/fast-record/fastrec/vocab"

	roaring "github.com/RoaringBitmap/roaring"
)

// Classifier builds single-text classification datasets. Labels come from
// class.txt by line index, or are the label field itself with with_label_id.
type Classifier struct {
	*base
	labels labels.Resolver
}

var _ Task[ClassifierSample] = (*Classifier)(nil)

// NewClassifier creates the classification variant
func NewClassifier(cfg *config.Config, opts Options) (*Classifier, error) {
	b, err := newBase(cfg, opts, encoder.TruncateToFit, columnar.ClassifierSchema(cfg.SequenceLength))
	if err != nil {
		return nil, err
	}
	return &Classifier{base: b}, nil
}

func (c *Classifier) Name() config.Task {
	return config.TaskClassifier
}

func (c *Classifier) Read(ctx context.Context, split Split) ([]ClassifierSample, *roaring.Bitmap, error) {
	sep := c.cfg.Classifier.Separator
	return readSplit(ctx, c.base, split, func(l Line) (ClassifierSample, bool) {
		text, label, ok := ParseClassifierLine(l.Text, sep)
		return ClassifierSample{Line: l.Number, Text: text, Label: label}, ok
	})
}

// Init resolves the label source and builds the vocabulary from train
func (c *Classifier) Init(ctx context.Context, train []ClassifierSample) error {
	if c.cfg.Classifier.WithLabelID {
		c.labels = labels.DirectID{}
	} else {
		cl, err := labels.LoadClassList(c.inputPath(internal.DefaultClassFile))
		if err != nil {
			return err
		}
		c.logger.Info().Int("classes", cl.Len()).Msg("Loaded class list")
		c.labels = cl
	}

	return c.initVocab(func(b *vocab.Builder) {
		for i := range train {
			b.Add(c.tok.Tokenize(train[i].Text))
		}
	})
}

func (c *Classifier) Encode(ctx context.Context, split Split, samples []ClassifierSample) ([]encoder.Record, error) {
	return encodeSplit(ctx, c.base, split, samples, func(s *ClassifierSample) (encoder.Record, error) {
		seq, err := c.enc.Encode(c.tok.Tokenize(s.Text))
		if err != nil {
			return encoder.Record{}, common.WrapError(err, "%s line %d", split.InputFile(), s.Line)
		}
		label, err := c.labels.Resolve(s.Label)
		if err != nil {
			return encoder.Record{}, common.WrapError(err, "%s line %d", split.InputFile(), s.Line)
		}
		return encoder.Record{
			Tokens:  [][]uint32{seq.IDs},
			Label:   label,
			Lengths: []int{seq.Length},
			Unknown: seq.Unknown,
		}, nil
	})
}
