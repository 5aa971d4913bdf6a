package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/go-tokenizers/pretokenize"
)

func TestCleanUpTokenizationAppliesSubstitutionsInOrder(t *testing.T) {
	got := CleanUpTokenization("I do not think it 's fine , are n't you ?")
	assert.Equal(t, "I don't think it's fine, aren't you?", got)
}

func TestTokenizeWithOffsetsEmptyInput(t *testing.T) {
	bt := NewBertTokenizer(bertTestVocab(t), true, false)
	assert.Nil(t, TokenizeWithOffsets(bt, "   "))
}

func TestEncodeListPreservesOrder(t *testing.T) {
	bt := NewBertTokenizer(bertTestVocab(t), true, false)
	out, err := EncodeList(bt, []string{"hello", "world"}, 0, pretokenize.DoNotTruncate, 0)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, []int64{1, 5, 2}, out[0].TokenIDs)
	assert.Equal(t, []int64{1, 6, 2}, out[1].TokenIDs)
}

func TestEncodePairListPreservesOrder(t *testing.T) {
	bt := NewBertTokenizer(bertTestVocab(t), true, false)
	out, err := EncodePairList(bt, [][2]string{{"hello", "world"}}, 0, pretokenize.DoNotTruncate, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []int64{1, 5, 2, 6, 2}, out[0].TokenIDs)
}

func TestDecodeListPreservesOrder(t *testing.T) {
	bt := NewBertTokenizer(bertTestVocab(t), true, false)
	got := DecodeList(bt, [][]int64{{5}, {6}}, true, false)
	assert.Equal(t, []string{"hello", "world"}, got)
}

func TestConvertTokensToIdsFallsBackToUnknown(t *testing.T) {
	bt := NewBertTokenizer(bertTestVocab(t), true, false)
	toks := TokenizeWithOffsets(bt, "zzz")
	ids := ConvertTokensToIds(bt, toks)
	assert.Equal(t, bt.V.UnknownID(), ids[0])
}
