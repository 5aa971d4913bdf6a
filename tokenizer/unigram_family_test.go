package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/go-tokenizers/offset"
	"github.com/gomlx/go-tokenizers/vocab"
)

func unigramTestVocab(t *testing.T) (*vocab.SentencePieceVocab, []vocab.SentencePieceEntry) {
	t.Helper()
	entries := []vocab.SentencePieceEntry{
		{Piece: "<unk>", ID: 0, Score: 0},
		{Piece: "<s>", ID: 1, Score: 0},
		{Piece: "</s>", ID: 2, Score: 0},
		{Piece: "[CLS]", ID: 3, Score: 0},
		{Piece: "[SEP]", ID: 4, Score: 0},
		{Piece: "▁hello", ID: 5, Score: -1},
		{Piece: "▁world", ID: 6, Score: -1},
	}
	special := vocab.SpecialTokenMap{UnkToken: "<unk>", BosToken: "<s>", EosToken: "</s>", ClsToken: "[CLS]", SepToken: "[SEP]"}
	v := vocab.SentencePieceVocabFromProtoPieces(toProtoPieces(entries), special)
	return v, entries
}

func toProtoPieces(entries []vocab.SentencePieceEntry) []vocab.SentencePieceProtoPiece {
	out := make([]vocab.SentencePieceProtoPiece, len(entries))
	for i, e := range entries {
		out[i] = vocab.SentencePieceProtoPiece{Piece: e.Piece, Score: e.Score}
	}
	return out
}

func TestAlbertTokenizeToTokens(t *testing.T) {
	v, entries := unigramTestVocab(t)
	tok := NewAlbertTokenizer(entries, v, false)
	toks := tok.TokenizeToTokens(offset.NewIdentityTokenRef("hello world"))
	var texts []string
	for _, tk := range toks {
		texts = append(texts, tk.Text)
	}
	assert.Equal(t, []string{"▁hello", "▁world"}, texts)
}

func TestAlbertPostProcessSplitsTrailingComma(t *testing.T) {
	v, entries := unigramTestVocab(t)
	entries = append(entries, vocab.SentencePieceEntry{Piece: "▁5,", ID: 7, Score: -1})
	v = vocab.SentencePieceVocabFromProtoPieces(toProtoPieces(entries), v.Special)
	tok := NewAlbertTokenizer(entries, v, false)
	toks := tok.TokenizeToTokens(offset.NewIdentityTokenRef("5,"))
	require.NotEmpty(t, toks)
	assert.Equal(t, ",", toks[len(toks)-1].Text)
}

func TestT5BuildInputAppendsEos(t *testing.T) {
	v, entries := unigramTestVocab(t)
	tok := NewT5Tokenizer(entries, v)
	seq1 := TokenIdsWithOffsets{Ids: []int64{5}}
	got := tok.BuildInputWithSpecialTokens(seq1, nil)
	assert.Equal(t, []int64{5, 2}, got.TokenIDs)
}

func TestXLNetBuildInputTrailingClsSep(t *testing.T) {
	v, entries := unigramTestVocab(t)
	tok := NewXLNetTokenizer(entries, v, false)
	seq1 := TokenIdsWithOffsets{Ids: []int64{5}}
	got := tok.BuildInputWithSpecialTokens(seq1, nil)
	assert.Equal(t, []int64{5, 4, 3}, got.TokenIDs)
	assert.Equal(t, []int8{0, 0, 2}, got.SegmentIDs)
}

func TestReformerBuildInputNoMarkers(t *testing.T) {
	v, entries := unigramTestVocab(t)
	tok := NewReformerTokenizer(entries, v)
	seq1 := TokenIdsWithOffsets{Ids: []int64{5}}
	seq2 := TokenIdsWithOffsets{Ids: []int64{6}}
	got := tok.BuildInputWithSpecialTokens(seq1, &seq2)
	assert.Equal(t, []int64{5, 6}, got.TokenIDs)
}

func TestDebertaV2ByteFallbackSplicesPerByteTokens(t *testing.T) {
	v, entries := unigramTestVocab(t)
	tok := NewDebertaV2Tokenizer(entries, v, false)
	// "x" matches no registered piece, so the unigram model emits a
	// synthetic unknown node for it; ByteFallback must splice that single
	// piece into one "<0xHH>" token per UTF-8 byte, not just flag it unknown.
	toks := tok.TokenizeToTokens(offset.NewIdentityTokenRef("x"))
	require.NotEmpty(t, toks)
	var texts []string
	for _, tk := range toks {
		texts = append(texts, tk.Text)
	}
	assert.Contains(t, texts, "<0x78>")
}

func TestConvertSentencePieceToStringReplacesMetaspace(t *testing.T) {
	got := convertSentencePieceToString([]string{"▁hello", "▁world"})
	assert.Equal(t, "hello world", got)
}
