package vocab

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/fast-record/fastrec/common"
)

// Stopwords is a set of tokens excluded from vocabulary membership
type Stopwords map[string]struct{}

// Contains reports whether tok is a stopword. A nil set contains nothing.
func (s Stopwords) Contains(tok string) bool {
	_, ok := s[tok]
	return ok
}

// LoadStopwords reads one excluded token per line
func LoadStopwords(path string) (Stopwords, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stopwords file %s: %w", path, err)
	}
	defer f.Close()

	words := make(Stopwords)
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		words[common.TrimLineEnding(scanner.Text())] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stopwords file %s: %w", path, err)
	}
	return words, nil
}

// Save writes one `id<TAB>token` line per entry in ascending id order
func Save(v *Vocabulary, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create vocab file %s: %w", path, err)
	}

	w := bufio.NewWriter(f)
	for id, tok := range v.tokens {
		if _, err := fmt.Fprintf(w, "%d\t%s\n", id, tok); err != nil {
			f.Close()
			return fmt.Errorf("write vocab line %d: %w", id, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("flush vocab file %s: %w", path, err)
	}
	return f.Close()
}

// Load reads a vocabulary written by Save. The file must bind padding to 0,
// unknown to the last id, and use every id in between exactly once.
func Load(path, padding, unknown string) (*Vocabulary, error) {
	if err := common.RequireFile(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vocab file %s: %w", path, err)
	}
	defer f.Close()

	entries := make(map[uint32]string)
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := common.TrimLineEnding(scanner.Text())
		idField, tok, ok := strings.Cut(text, "\t")
		if !ok {
			return nil, fmt.Errorf("%s:%d: missing tab separator: %w", path, line, common.ErrInvalidVocabulary)
		}
		id, err := strconv.ParseUint(idField, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: bad id %q: %w", path, line, idField, common.ErrInvalidVocabulary)
		}
		if _, dup := entries[uint32(id)]; dup {
			return nil, fmt.Errorf("%s:%d: id %d bound twice: %w", path, line, id, common.ErrInvalidVocabulary)
		}
		if _, dup := seen[tok]; dup {
			return nil, fmt.Errorf("%s:%d: token %q bound twice: %w", path, line, tok, common.ErrInvalidVocabulary)
		}
		entries[uint32(id)] = tok
		seen[tok] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocab file %s: %w", path, err)
	}

	v := &Vocabulary{
		ids:     make(map[string]uint32, len(entries)),
		tokens:  make([]string, 0, len(entries)),
		padding: padding,
		unknown: unknown,
	}
	for id := 0; id < len(entries); id++ {
		tok, ok := entries[uint32(id)]
		if !ok {
			return nil, fmt.Errorf("%s: id %d missing, ids must be dense: %w", path, id, common.ErrInvalidVocabulary)
		}
		v.insert(tok)
	}

	if v.Size() < 2 {
		return nil, fmt.Errorf("%s: needs at least the padding and unknown tokens: %w", path, common.ErrInvalidVocabulary)
	}
	if v.tokens[0] != padding {
		return nil, fmt.Errorf("%s: id 0 is %q, want padding %q: %w", path, v.tokens[0], padding, common.ErrInvalidVocabulary)
	}
	if last := v.tokens[v.Size()-1]; last != unknown {
		return nil, fmt.Errorf("%s: last id is %q, want unknown %q: %w", path, last, unknown, common.ErrInvalidVocabulary)
	}
	return v, nil
}
