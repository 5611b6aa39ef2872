package vocab

import (
	"fmt"
	"math"

	"github.com/armon/go-radix"
)

// Vocabulary is an immutable token -> id mapping.
// The padding token is always id 0 and the unknown token is always the last id.
type Vocabulary struct {
	ids     map[string]uint32
	tokens  []string
	padding string
	unknown string
}

// Size returns the total number of entries including both special tokens
func (v *Vocabulary) Size() int {
	return len(v.tokens)
}

// PadID is the id of the padding token
func (v *Vocabulary) PadID() uint32 {
	return 0
}

// UnknownID is the id substituted for any token absent from the vocabulary
func (v *Vocabulary) UnknownID() uint32 {
	return uint32(len(v.tokens) - 1)
}

// Padding returns the padding token string
func (v *Vocabulary) Padding() string {
	return v.padding
}

// Unknown returns the unknown token string
func (v *Vocabulary) Unknown() string {
	return v.unknown
}

// Lookup returns the id of token and whether it is a member
func (v *Vocabulary) Lookup(token string) (uint32, bool) {
	id, ok := v.ids[token]
	return id, ok
}

// ID returns the id of token, falling back to the unknown id on a miss
func (v *Vocabulary) ID(token string) uint32 {
	if id, ok := v.ids[token]; ok {
		return id
	}
	return v.UnknownID()
}

// Token returns the token bound to id
func (v *Vocabulary) Token(id uint32) (string, bool) {
	if int(id) >= len(v.tokens) {
		return "", false
	}
	return v.tokens[id], true
}

// Builder accumulates the distinct tokens of the training split.
// Tokens live in a radix tree so ids can be assigned in lexicographic order,
// which keeps the id assignment identical across runs.
type Builder struct {
	padding   string
	unknown   string
	stopwords Stopwords
	counts    *radix.Tree // token -> occurrence count
	total     int64
}

// NewBuilder creates a vocabulary builder. stopwords may be nil.
func NewBuilder(padding, unknown string, stopwords Stopwords) *Builder {
	return &Builder{
		padding:   padding,
		unknown:   unknown,
		stopwords: stopwords,
		counts:    radix.New(),
	}
}

// Add records the tokens of one sample. Not safe for concurrent use.
func (b *Builder) Add(tokens []string) {
	for _, tok := range tokens {
		count := 0
		if v, ok := b.counts.Get(tok); ok {
			count = v.(int)
		}
		b.counts.Insert(tok, count+1)
		b.total++
	}
}

// Distinct returns the number of distinct tokens seen so far, stopwords included
func (b *Builder) Distinct() int {
	return b.counts.Len()
}

// Occurrences returns the number of tokens added so far
func (b *Builder) Occurrences() int64 {
	return b.total
}

// Count returns how often token was added
func (b *Builder) Count(token string) int {
	if v, ok := b.counts.Get(token); ok {
		return v.(int)
	}
	return 0
}

// Build assigns padding to 0, every non-stopword token to 1..N in lexicographic
// order, then unknown to N+1. Tokens equal to either special token are skipped
// so neither special id can be rebound.
func (b *Builder) Build() (*Vocabulary, error) {
	v := &Vocabulary{
		ids:     make(map[string]uint32, b.counts.Len()+2),
		tokens:  make([]string, 0, b.counts.Len()+2),
		padding: b.padding,
		unknown: b.unknown,
	}
	v.insert(b.padding)

	b.counts.Walk(func(tok string, _ interface{}) bool {
		if tok == b.padding || tok == b.unknown || b.stopwords.Contains(tok) {
			return false
		}
		v.insert(tok)
		return false
	})

	if len(v.tokens) >= math.MaxUint32 {
		return nil, fmt.Errorf("vocabulary of %d tokens does not fit unsigned 32-bit ids", len(v.tokens))
	}
	v.insert(b.unknown)
	return v, nil
}

func (v *Vocabulary) insert(tok string) {
	v.ids[tok] = uint32(len(v.tokens))
	v.tokens = append(v.tokens, tok)
}
