package labels

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ZanzyTHEbar/fast-record/fastrec/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadClassList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "class.txt")
	require.NoError(t, os.WriteFile(path, []byte("pos\r\nneg\nneutral\n"), 0o644))

	cl, err := LoadClassList(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cl.Len())

	for label, want := range map[string]uint8{"pos": 0, "neg": 1, "neutral": 2} {
		id, err := cl.Resolve(label)
		require.NoError(t, err)
		assert.Equal(t, want, id, label)
	}

	_, err = cl.Resolve("mixed")
	assert.ErrorIs(t, err, common.ErrUnknownLabel)

	_, err = LoadClassList(filepath.Join(dir, "missing.txt"))
	assert.ErrorIs(t, err, common.ErrMissingInput)
}

func TestNewClassListValidation(t *testing.T) {
	_, err := NewClassList([]string{"a", "b", "a"})
	assert.ErrorIs(t, err, common.ErrDuplicateClass)

	names := make([]string, 257)
	for i := range names {
		names[i] = fmt.Sprintf("c%d", i)
	}
	_, err = NewClassList(names)
	assert.ErrorIs(t, err, common.ErrLabelOverflow)

	cl, err := NewClassList(names[:256])
	require.NoError(t, err)
	id, err := cl.Resolve("c255")
	require.NoError(t, err)
	assert.Equal(t, uint8(255), id)
}

func TestDirectID(t *testing.T) {
	var r Resolver = DirectID{}

	id, err := r.Resolve("7")
	require.NoError(t, err)
	assert.Equal(t, uint8(7), id)

	id, err = r.Resolve(" 255 ")
	require.NoError(t, err)
	assert.Equal(t, uint8(255), id)

	for _, bad := range []string{"", "pos", "-1", "256", "1.5"} {
		_, err := r.Resolve(bad)
		assert.ErrorIs(t, err, common.ErrInvalidLabel, bad)
	}
}

func TestSimilarityLabel(t *testing.T) {
	boolean := SimilarityLabel{Bool: true}
	for label, want := range map[string]uint8{"true": 1, "false": 0, "TRUE": 1, "False": 0} {
		id, err := boolean.Resolve(label)
		require.NoError(t, err)
		assert.Equal(t, want, id, label)
	}
	_, err := boolean.Resolve("1")
	assert.ErrorIs(t, err, common.ErrInvalidLabel)

	integer := SimilarityLabel{}
	id, err := integer.Resolve("1")
	require.NoError(t, err)
	assert.Equal(t, uint8(1), id)
	_, err = integer.Resolve("true")
	assert.ErrorIs(t, err, common.ErrInvalidLabel)
}

func TestTagMap(t *testing.T) {
	b := NewTagMapBuilder("<PAD>")
	b.Add([]string{"O", "B-PER", "I-PER", "O"})
	b.Add([]string{"B-LOC", "<PAD>"})

	tm, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"<PAD>", "B-LOC", "B-PER", "I-PER", "O"}, tm.Tags())
	assert.Equal(t, 5, tm.Len())

	id, err := tm.Resolve("B-PER")
	require.NoError(t, err)
	assert.Equal(t, uint8(2), id)

	id, err = tm.Resolve("<PAD>")
	require.NoError(t, err)
	assert.Equal(t, uint8(0), id)

	id, err = tm.Resolve("B-MISC")
	require.NoError(t, err, "unseen tags are padding, not errors")
	assert.Equal(t, uint8(0), id)
}

func TestTagMapOverflow(t *testing.T) {
	b := NewTagMapBuilder("<PAD>")
	tags := make([]string, 256)
	for i := range tags {
		tags[i] = "T" + strings.Repeat("x", i)
	}
	b.Add(tags)

	_, err := b.Build()
	assert.ErrorIs(t, err, common.ErrLabelOverflow)

	b = NewTagMapBuilder("<PAD>")
	b.Add(tags[:255])
	tm, err := b.Build()
	require.NoError(t, err)
	assert.Equal(t, 256, tm.Len())
}
