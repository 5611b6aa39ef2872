package dataset

import (
	"context"

	"github.com/ZanzyTHEbar/fast-record/fastrec/columnar"
	"github.com/ZanzyTHEbar/fast-record/fastrec/common"
	"github.com/ZanzyTHEbar/fast-record/fastrec/config"
	"github.com/ZanzyTHEbar/fast-record/fastrec/encoder"
	"github.com/ZanzyTHEbar/fast-record/fastrec/labels"
	"github.com/ZanzyTHEbar/fast-record/fastrec/vocab"

	roaring "github.com/RoaringBitmap/roaring"
)

// Similarity builds text-pair datasets. Both texts share one vocabulary and
// are encoded into two sequences of the same length.
type Similarity struct {
	*base
	labels labels.SimilarityLabel
}

var _ Task[SimilaritySample] = (*Similarity)(nil)

// NewSimilarity creates the text-pair variant
func NewSimilarity(cfg *config.Config, opts Options) (*Similarity, error) {
	b, err := newBase(cfg, opts, encoder.TruncateToFit, columnar.SimilaritySchema(cfg.SequenceLength))
	if err != nil {
		return nil, err
	}
	return &Similarity{
		base:   b,
		labels: labels.SimilarityLabel{Bool: cfg.Similarity.WithBool},
	}, nil
}

func (s *Similarity) Name() config.Task {
	return config.TaskSimilarity
}

func (s *Similarity) Read(ctx context.Context, split Split) ([]SimilaritySample, *roaring.Bitmap, error) {
	sentSep, labelSep := s.cfg.Similarity.SentSep, s.cfg.Similarity.LabelSep
	return readSplit(ctx, s.base, split, func(l Line) (SimilaritySample, bool) {
		a, b, label, ok := ParseSimilarityLine(l.Text, sentSep, labelSep)
		return SimilaritySample{Line: l.Number, TextA: a, TextB: b, Label: label}, ok
	})
}

// Init builds the vocabulary from both texts of every training pair
func (s *Similarity) Init(ctx context.Context, train []SimilaritySample) error {
	return s.initVocab(func(b *vocab.Builder) {
		for i := range train {
			b.Add(s.tok.Tokenize(train[i].TextA))
			b.Add(s.tok.Tokenize(train[i].TextB))
		}
	})
}

func (s *Similarity) Encode(ctx context.Context, split Split, samples []SimilaritySample) ([]encoder.Record, error) {
	return encodeSplit(ctx, s.base, split, samples, func(p *SimilaritySample) (encoder.Record, error) {
		a, err := s.enc.Encode(s.tok.Tokenize(p.TextA))
		if err != nil {
			return encoder.Record{}, common.WrapError(err, "%s line %d text a", split.InputFile(), p.Line)
		}
		b, err := s.enc.Encode(s.tok.Tokenize(p.TextB))
		if err != nil {
			return encoder.Record{}, common.WrapError(err, "%s line %d text b", split.InputFile(), p.Line)
		}
		label, err := s.labels.Resolve(p.Label)
		if err != nil {
			return encoder.Record{}, common.WrapError(err, "%s line %d", split.InputFile(), p.Line)
		}
		return encoder.Record{
			Tokens:  [][]uint32{a.IDs, b.IDs},
			Label:   label,
			Lengths: []int{a.Length, b.Length},
			Unknown: a.Unknown + b.Unknown,
		}, nil
	})
}
