package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/go-tokenizers/bpe"
	"github.com/gomlx/go-tokenizers/offset"
	"github.com/gomlx/go-tokenizers/vocab"
)

func gpt2TestVocab(t *testing.T) (*vocab.BaseVocab, *vocab.BpePairVocab) {
	t.Helper()
	lowHi := bpe.BytesToUnicode("lo")
	loRune := []rune(lowHi)
	values := map[string]int64{
		"<unk>": 0, "<s>": 1, "</s>": 2,
		string(loRune): 3,
	}
	v, err := vocab.NewBaseVocab(values, vocab.SpecialTokenMap{UnkToken: "<unk>", BosToken: "<s>", EosToken: "</s>"})
	require.NoError(t, err)
	ranks := &vocab.BpePairVocab{Values: map[vocab.BpePair]int{
		{Left: "l", Right: "o"}: 0,
	}}
	return v, ranks
}

func TestGpt2TokenizeMergesByteLevelPair(t *testing.T) {
	v, ranks := gpt2TestVocab(t)
	tok := NewGpt2Tokenizer(v, ranks)
	toks := tok.TokenizeToTokens(offset.NewIdentityTokenRef("lo"))
	require.Len(t, toks, 1)
	assert.Equal(t, bpe.BytesToUnicode("lo"), toks[0].Text)
}

func TestRobertaAddsPrefixSpace(t *testing.T) {
	v, ranks := gpt2TestVocab(t)
	tok := NewRobertaTokenizer(v, ranks, true)
	toks := tok.TokenizeToTokens(offset.NewIdentityTokenRef("lo"))
	require.NotEmpty(t, toks)
	assert.Equal(t, bpe.BytesToUnicode(" "), toks[0].Text)
	assert.Equal(t, uint32(0), toks[0].ReferenceOffsets[0])
}

func TestRobertaBuildInputDoubleEos(t *testing.T) {
	v, ranks := gpt2TestVocab(t)
	tok := NewRobertaTokenizer(v, ranks, false)
	seq1 := TokenIdsWithOffsets{Ids: []int64{3}}
	seq2 := TokenIdsWithOffsets{Ids: []int64{3}}
	got := tok.BuildInputWithSpecialTokens(seq1, &seq2)
	assert.Equal(t, []int64{1, 3, 2, 2, 3, 2}, got.TokenIDs)
	for _, s := range got.SegmentIDs {
		assert.Equal(t, int8(0), s)
	}
}

func TestConvertByteLevelToStringRoundTrips(t *testing.T) {
	encoded := bpe.BytesToUnicode("hi!")
	got := convertByteLevelToString([]string{encoded})
	assert.Equal(t, "hi!", got)
}
