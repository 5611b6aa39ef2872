package encoder

import (
	"fmt"

	"github.com/ZanzyTHEbar/fast-record/fastrec/common"
	"github.com/ZanzyTHEbar/fast-record/fastrec/labels"
	"github.com/ZanzyTHEbar/fast-record/fastrec/vocab"
)

// Policy decides what happens to sequences longer than the maximum length
type Policy int

const (
	// TruncateToFit keeps the first max-length ids and drops the tail
	TruncateToFit Policy = iota
	// FailOnOverflow rejects any sequence longer than the maximum length
	FailOnOverflow
)

func (p Policy) String() string {
	switch p {
	case TruncateToFit:
		return "truncate-to-fit"
	case FailOnOverflow:
		return "fail-on-overflow"
	default:
		return fmt.Sprintf("policy(%d)", int(p))
	}
}

// PadID fills sequences up to the maximum length. It is both the padding
// token id and the padding tag id.
const PadID = 0

// Record is the fixed-length encoded form of one sample.
// Tokens holds one sequence (classification, tagging) or two (similarity).
// Either Label or Tags is meaningful depending on the task.
type Record struct {
	Tokens [][]uint32
	Label  uint8
	Tags   []uint8

	// Not serialized: per-sequence token counts before fitting and unknown-id hits.
	Lengths []int
	Unknown int
}

// Truncated reports whether any sequence lost its tail
func (r *Record) Truncated(maxLen int) bool {
	for _, n := range r.Lengths {
		if n > maxLen {
			return true
		}
	}
	return false
}

// Sequence is one encoded token sequence with its bookkeeping
type Sequence struct {
	IDs     []uint32
	Length  int
	Unknown int
}

// Encoder maps token sequences to fixed-length id sequences against a
// read-only vocabulary. Safe for concurrent use.
type Encoder struct {
	vocab  *vocab.Vocabulary
	maxLen int
	policy Policy
}

// New creates an encoder producing sequences of exactly maxLen ids
func New(v *vocab.Vocabulary, maxLen int, policy Policy) (*Encoder, error) {
	if v == nil {
		return nil, fmt.Errorf("encoder needs a vocabulary: %w", common.ErrInvalidConfig)
	}
	if maxLen <= 0 {
		return nil, fmt.Errorf("max length must be positive, got %d: %w", maxLen, common.ErrInvalidConfig)
	}
	return &Encoder{vocab: v, maxLen: maxLen, policy: policy}, nil
}

// MaxLength returns the fixed output length
func (e *Encoder) MaxLength() int {
	return e.maxLen
}

// Policy returns the overflow policy
func (e *Encoder) Policy() Policy {
	return e.policy
}

// Encode looks every token up, substituting the unknown id on a miss, then fits
// the ids to the maximum length under the encoder's policy.
func (e *Encoder) Encode(tokens []string) (Sequence, error) {
	if err := e.checkLength(len(tokens)); err != nil {
		return Sequence{}, err
	}

	unk := e.vocab.UnknownID()
	ids := make([]uint32, len(tokens), max(len(tokens), e.maxLen))
	seq := Sequence{Length: len(tokens)}
	for i, tok := range tokens {
		id, ok := e.vocab.Lookup(tok)
		if !ok {
			id = unk
			seq.Unknown++
		}
		ids[i] = id
	}

	fitted, err := Fit(ids, e.maxLen, e.policy)
	if err != nil {
		return Sequence{}, err
	}
	seq.IDs = fitted
	return seq, nil
}

// EncodeTags resolves tags and pads them exactly like token ids so position i
// of the tag sequence stays aligned with position i of the token sequence.
func (e *Encoder) EncodeTags(tags []string, r labels.Resolver) ([]uint8, error) {
	if err := e.checkLength(len(tags)); err != nil {
		return nil, err
	}

	ids := make([]uint8, len(tags), max(len(tags), e.maxLen))
	for i, tag := range tags {
		id, err := r.Resolve(tag)
		if err != nil {
			return nil, common.WrapError(err, "tag at position %d", i)
		}
		ids[i] = id
	}
	return Fit(ids, e.maxLen, e.policy)
}

func (e *Encoder) checkLength(n int) error {
	if e.policy == FailOnOverflow && n > e.maxLen {
		return fmt.Errorf("length %d > max length %d (%s): %w", n, e.maxLen, e.policy, common.ErrSequenceOverflow)
	}
	return nil
}

// Fit truncates ids from the right or right-pads them with PadID so the result
// has exactly maxLen elements. Under FailOnOverflow a longer input is an error.
func Fit[T ~uint8 | ~uint32](ids []T, maxLen int, policy Policy) ([]T, error) {
	switch {
	case len(ids) > maxLen:
		if policy == FailOnOverflow {
			return nil, fmt.Errorf("length %d > max length %d (%s): %w", len(ids), maxLen, policy, common.ErrSequenceOverflow)
		}
		return ids[:maxLen:maxLen], nil
	case len(ids) < maxLen:
		// zero values are PadID
		return append(ids, make([]T, maxLen-len(ids))...), nil
	default:
		return ids, nil
	}
}
