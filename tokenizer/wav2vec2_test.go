package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/go-tokenizers/offset"
	"github.com/gomlx/go-tokenizers/vocab"
)

func wav2vec2TestVocab(t *testing.T) *vocab.BaseVocab {
	t.Helper()
	values := map[string]int64{"<unk>": 0, "<pad>": 1, "|": 2, "h": 3, "i": 4}
	v, err := vocab.NewBaseVocab(values, vocab.SpecialTokenMap{UnkToken: "<unk>", PadToken: "<pad>", SepToken: "|"})
	require.NoError(t, err)
	return v
}

func TestWav2Vec2TokenizeOneTokenPerChar(t *testing.T) {
	tok := NewWav2Vec2Tokenizer(wav2vec2TestVocab(t))
	toks := tok.TokenizeToTokens(offset.NewIdentityTokenRef("hi"))
	require.Len(t, toks, 2)
	assert.Equal(t, "h", toks[0].Text)
	assert.Equal(t, "i", toks[1].Text)
}

func TestWav2Vec2TokenizeUnknownChar(t *testing.T) {
	tok := NewWav2Vec2Tokenizer(wav2vec2TestVocab(t))
	toks := tok.TokenizeToTokens(offset.NewIdentityTokenRef("hz"))
	require.Len(t, toks, 2)
	assert.Equal(t, offset.Unknown, toks[1].Mask)
}

func TestWav2Vec2ConvertTokensToStringCollapsesDuplicatesAndPad(t *testing.T) {
	tok := NewWav2Vec2Tokenizer(wav2vec2TestVocab(t))
	got := tok.ConvertTokensToString([]string{"h", "h", "<pad>", "i", "|", "h", "i"})
	assert.Equal(t, "hi hi", got)
}

func TestProphetNetBuildInputNoClsSepOnly(t *testing.T) {
	v := bertTestVocab(t)
	pn := NewProphetNetTokenizer(NewBertTokenizer(v, true, false))
	seq1 := TokenIdsWithOffsets{Ids: []int64{5}}
	got := pn.BuildInputWithSpecialTokens(seq1, nil)
	assert.Equal(t, []int64{5, 2}, got.TokenIDs)
}
