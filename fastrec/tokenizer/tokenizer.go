package tokenizer

import (
	"fmt"
	"strings"

	"github.com/ZanzyTHEbar/fast-record/fastrec/common"

	"golang.org/x/text/unicode/norm"
)

// Tokenizer splits raw text into an ordered sequence of token strings
type Tokenizer interface {
	Tokenize(text string) []string
}

// Mode selects word or character tokenization
type Mode string

const (
	ModeWord Mode = "word"
	ModeChar Mode = "char"
)

// Normalization selects the unicode normal form applied before splitting
type Normalization string

const (
	NormalizeNone Normalization = "none"
	NormalizeNFC  Normalization = "nfc"
	NormalizeNFKC Normalization = "nfkc"
)

// Config holds basic tokenizer settings
type Config struct {
	Mode      Mode
	Normalize Normalization
}

// New returns the tokenizer for cfg. An empty normalization means none.
func New(cfg Config) (Tokenizer, error) {
	var base Tokenizer
	switch cfg.Mode {
	case ModeWord:
		base = Word{}
	case ModeChar:
		base = Char{}
	default:
		return nil, fmt.Errorf("unsupported tokenizer mode %q: %w", cfg.Mode, common.ErrInvalidConfig)
	}

	switch cfg.Normalize {
	case NormalizeNone, "":
		return base, nil
	case NormalizeNFC:
		return normalized{form: norm.NFC, next: base}, nil
	case NormalizeNFKC:
		return normalized{form: norm.NFKC, next: base}, nil
	default:
		return nil, fmt.Errorf("unsupported normalization %q: %w", cfg.Normalize, common.ErrInvalidConfig)
	}
}

// Word splits on every single space. Consecutive spaces yield empty tokens,
// which are kept: "a  b" is ["a", "", "b"].
type Word struct{}

func (Word) Tokenize(text string) []string {
	return strings.Split(text, " ")
}

// Char yields every unicode scalar value as its own token
type Char struct{}

func (Char) Tokenize(text string) []string {
	tokens := make([]string, 0, len(text))
	for _, r := range text {
		tokens = append(tokens, string(r))
	}
	return tokens
}

type normalized struct {
	form norm.Form
	next Tokenizer
}

func (n normalized) Tokenize(text string) []string {
	return n.next.Tokenize(n.form.String(text))
}
