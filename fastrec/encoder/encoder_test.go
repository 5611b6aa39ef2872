package encoder

import (
	"testing"

	"github.com/ZanzyTHEbar/fast-record/fastrec/common"
	"github.com/ZanzyTHEbar/fast-record/fastrec/labels"
	"github.com/ZanzyTHEbar/fast-record/fastrec/tokenizer"
	"github.com/ZanzyTHEbar/fast-record/fastrec/vocab"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// charVocab builds {<PAD>:0, a:1, b:2, <UNK>:3} from the training text "ab"
func charVocab(t *testing.T) *vocab.Vocabulary {
	t.Helper()
	b := vocab.NewBuilder("<PAD>", "<UNK>", nil)
	b.Add(tokenizer.Char{}.Tokenize("ab"))
	v, err := b.Build()
	require.NoError(t, err)
	return v
}

func TestEncodeTruncateToFit(t *testing.T) {
	enc, err := New(charVocab(t), 4, TruncateToFit)
	require.NoError(t, err)

	tests := []struct {
		name    string
		text    string
		want    []uint32
		unknown int
	}{
		{"padded", "ab", []uint32{1, 2, 0, 0}, 0},
		{"unknown then padded", "abc", []uint32{1, 2, 3, 0}, 1},
		{"exact", "abab", []uint32{1, 2, 1, 2}, 0},
		{"truncated keeps head", "abcde", []uint32{1, 2, 3, 3}, 3},
		{"empty", "", []uint32{0, 0, 0, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens := tokenizer.Char{}.Tokenize(tt.text)
			seq, err := enc.Encode(tokens)
			require.NoError(t, err)
			assert.Equal(t, tt.want, seq.IDs)
			assert.Len(t, seq.IDs, enc.MaxLength())
			assert.Equal(t, len(tokens), seq.Length)
			assert.Equal(t, tt.unknown, seq.Unknown)
		})
	}
}

func TestEncodeFailOnOverflow(t *testing.T) {
	enc, err := New(charVocab(t), 4, FailOnOverflow)
	require.NoError(t, err)
	assert.Equal(t, FailOnOverflow, enc.Policy())

	seq, err := enc.Encode([]string{"a", "b", "a", "b"})
	require.NoError(t, err)
	assert.Equal(t, []uint32{1, 2, 1, 2}, seq.IDs)

	_, err = enc.Encode([]string{"a", "b", "a", "b", "a"})
	assert.ErrorIs(t, err, common.ErrSequenceOverflow)
}

func TestEncodeTags(t *testing.T) {
	tb := labels.NewTagMapBuilder("<PAD>")
	tb.Add([]string{"B", "I", "O"})
	tags, err := tb.Build()
	require.NoError(t, err)

	enc, err := New(charVocab(t), 4, FailOnOverflow)
	require.NoError(t, err)

	ids, err := enc.EncodeTags([]string{"O", "B", "X"}, tags)
	require.NoError(t, err)
	assert.Equal(t, []uint8{3, 1, 0, 0}, ids, "unseen tag X resolves to padding")

	_, err = enc.EncodeTags([]string{"O", "O", "O", "O", "O"}, tags)
	assert.ErrorIs(t, err, common.ErrSequenceOverflow)

	_, err = enc.EncodeTags([]string{"pos"}, labels.DirectID{})
	assert.ErrorIs(t, err, common.ErrInvalidLabel)
}

func TestFit(t *testing.T) {
	out, err := Fit([]uint32{5, 6}, 3, TruncateToFit)
	require.NoError(t, err)
	assert.Equal(t, []uint32{5, 6, 0}, out)

	out, err = Fit([]uint32{5, 6, 7, 8}, 3, TruncateToFit)
	require.NoError(t, err)
	assert.Equal(t, []uint32{5, 6, 7}, out)
	assert.Equal(t, 3, cap(out), "truncated slice must not expose the dropped tail")

	tags, err := Fit([]uint8{1}, 2, FailOnOverflow)
	require.NoError(t, err)
	assert.Equal(t, []uint8{1, 0}, tags)

	_, err = Fit([]uint8{1, 2, 3}, 2, FailOnOverflow)
	assert.ErrorIs(t, err, common.ErrSequenceOverflow)
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, 4, TruncateToFit)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	_, err = New(charVocab(t), 0, TruncateToFit)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestRecordTruncated(t *testing.T) {
	r := Record{Lengths: []int{3, 6}}
	assert.True(t, r.Truncated(4))
	assert.False(t, r.Truncated(6))
}

func TestPolicyString(t *testing.T) {
	assert.Equal(t, "truncate-to-fit", TruncateToFit.String())
	assert.Equal(t, "fail-on-overflow", FailOnOverflow.String())
}
