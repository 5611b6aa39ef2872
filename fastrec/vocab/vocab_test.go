package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ZanzyTHEbar/fast-record/fastrec/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVocabularyBuilder(t *testing.T) {
	tests := []struct {
		name string
		test func(t *testing.T)
	}{
		{"SpecialTokenIDs", testBuilderSpecialTokenIDs},
		{"LexicographicOrder", testBuilderLexicographicOrder},
		{"Stopwords", testBuilderStopwords},
		{"SpecialTokensInData", testBuilderSpecialTokensInData},
		{"EmptyTraining", testBuilderEmptyTraining},
		{"Counts", testBuilderCounts},
		{"Deterministic", testBuilderDeterministic},
	}

	for _, tt := range tests {
		t.Run(tt.name, tt.test)
	}
}

func testBuilderSpecialTokenIDs(t *testing.T) {
	b := NewBuilder("<PAD>", "<UNK>", nil)
	b.Add([]string{"a", "b"})

	v, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, 4, v.Size())
	id, ok := v.Lookup("<PAD>")
	require.True(t, ok)
	assert.Equal(t, uint32(0), id)
	id, ok = v.Lookup("<UNK>")
	require.True(t, ok)
	assert.Equal(t, uint32(v.Size()-1), id)
	assert.Equal(t, v.UnknownID(), id)
	assert.Equal(t, uint32(0), v.PadID())
}

func testBuilderLexicographicOrder(t *testing.T) {
	b := NewBuilder("<PAD>", "<UNK>", nil)
	b.Add([]string{"b", "a", "c", "a"})

	v, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, uint32(1), v.ID("a"))
	assert.Equal(t, uint32(2), v.ID("b"))
	assert.Equal(t, uint32(3), v.ID("c"))
	assert.Equal(t, uint32(4), v.UnknownID())
	assert.Equal(t, uint32(4), v.ID("zzz"), "misses resolve to the unknown id")

	tok, ok := v.Token(2)
	assert.True(t, ok)
	assert.Equal(t, "b", tok)
	_, ok = v.Token(99)
	assert.False(t, ok)
}

func testBuilderStopwords(t *testing.T) {
	b := NewBuilder("<PAD>", "<UNK>", Stopwords{"the": {}})
	b.Add([]string{"the", "cat", "sat"})

	v, err := b.Build()
	require.NoError(t, err)

	_, ok := v.Lookup("the")
	assert.False(t, ok)
	assert.Equal(t, 4, v.Size())
	assert.Equal(t, v.UnknownID(), v.ID("the"))
	assert.Equal(t, 3, b.Distinct(), "distinct counts the raw token set")
}

func testBuilderSpecialTokensInData(t *testing.T) {
	b := NewBuilder("<PAD>", "<UNK>", nil)
	b.Add([]string{"<UNK>", "x", "<PAD>"})

	v, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, 3, v.Size())
	assert.Equal(t, uint32(0), v.ID("<PAD>"))
	assert.Equal(t, uint32(1), v.ID("x"))
	assert.Equal(t, uint32(2), v.ID("<UNK>"))
}

func testBuilderEmptyTraining(t *testing.T) {
	v, err := NewBuilder("<PAD>", "<UNK>", nil).Build()
	require.NoError(t, err)

	assert.Equal(t, 2, v.Size())
	assert.Equal(t, uint32(1), v.UnknownID())
	assert.Equal(t, "<PAD>", v.Padding())
	assert.Equal(t, "<UNK>", v.Unknown())
}

func testBuilderCounts(t *testing.T) {
	b := NewBuilder("<PAD>", "<UNK>", nil)
	b.Add([]string{"a", "b", "a", ""})
	b.Add([]string{"a"})

	assert.Equal(t, 3, b.Count("a"))
	assert.Equal(t, 1, b.Count(""))
	assert.Equal(t, 0, b.Count("z"))
	assert.Equal(t, int64(5), b.Occurrences())
	assert.Equal(t, 3, b.Distinct())
}

func testBuilderDeterministic(t *testing.T) {
	build := func() *Vocabulary {
		b := NewBuilder("<PAD>", "<UNK>", nil)
		b.Add([]string{"delta", "alpha", "charlie", "bravo"})
		v, err := b.Build()
		require.NoError(t, err)
		return v
	}

	first, second := build(), build()
	assert.Equal(t, first.tokens, second.tokens)
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.txt")

	b := NewBuilder("<PAD>", "<UNK>", nil)
	b.Add([]string{"b", "a", "", "x\ty"})
	v, err := b.Build()
	require.NoError(t, err)
	require.NoError(t, Save(v, path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "0\t<PAD>\n1\t\n2\ta\n3\tb\n4\tx\ty\n5\t<UNK>\n", string(content))

	loaded, err := Load(path, "<PAD>", "<UNK>")
	require.NoError(t, err)
	assert.Equal(t, v.tokens, loaded.tokens)
	assert.Equal(t, uint32(4), loaded.ID("x\ty"))
}

func TestLoadRejectsMalformed(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing tab", "0\t<PAD>\n1 a\n2\t<UNK>\n"},
		{"bad id", "0\t<PAD>\nx\ta\n2\t<UNK>\n"},
		{"sparse ids", "0\t<PAD>\n2\ta\n3\t<UNK>\n"},
		{"duplicate id", "0\t<PAD>\n1\ta\n1\tb\n2\t<UNK>\n"},
		{"duplicate token", "0\t<PAD>\n1\ta\n2\ta\n3\t<UNK>\n"},
		{"padding not first", "0\ta\n1\t<PAD>\n2\t<UNK>\n"},
		{"unknown not last", "0\t<PAD>\n1\t<UNK>\n2\ta\n"},
		{"too small", "0\t<PAD>\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "vocab.txt")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Load(path, "<PAD>", "<UNK>")
			assert.ErrorIs(t, err, common.ErrInvalidVocabulary)
		})
	}
}

func TestLoadStopwords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stop.txt")
	require.NoError(t, os.WriteFile(path, []byte("the\r\na\n"), 0o644))

	words, err := LoadStopwords(path)
	require.NoError(t, err)
	assert.True(t, words.Contains("the"))
	assert.True(t, words.Contains("a"))
	assert.False(t, words.Contains("cat"))

	_, err = LoadStopwords(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)

	var none Stopwords
	assert.False(t, none.Contains("the"))
}
