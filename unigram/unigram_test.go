package unigram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/go-tokenizers/offset"
	"github.com/gomlx/go-tokenizers/vocab"
)

func testModel() *Model {
	return NewModel([]vocab.SentencePieceEntry{
		{Piece: "<unk>", ID: 0, Score: 0},
		{Piece: "▁", ID: 1, Score: -1},
		{Piece: "▁hel", ID: 2, Score: -2},
		{Piece: "lo", ID: 3, Score: -1},
		{Piece: "▁hello", ID: 4, Score: -1.5},
		{Piece: "l", ID: 5, Score: -3},
		{Piece: "o", ID: 6, Score: -3},
		{Piece: "h", ID: 7, Score: -3},
		{Piece: "e", ID: 8, Score: -3},
	})
}

func TestTokenizePrefersHigherScoringWholeWord(t *testing.T) {
	m := testModel()
	tok := offset.NewIdentityTokenRef("▁hello")
	got := m.Tokenize(tok)
	require.Len(t, got, 1)
	assert.Equal(t, "▁hello", got[0].Text)
}

func TestTokenizeFallsBackToCharsWhenNoVocabMatch(t *testing.T) {
	m := NewModel([]vocab.SentencePieceEntry{{Piece: "<unk>", ID: 0, Score: 0}})
	tok := offset.NewIdentityTokenRef("xyz")
	got := m.Tokenize(tok)
	require.Len(t, got, 1)
	assert.Equal(t, offset.Unknown, got[0].Mask)
	assert.Equal(t, "xyz", got[0].Text)
}

func TestCommonPrefixSearch(t *testing.T) {
	m := testModel()
	matches := m.commonPrefixSearch("▁hello world")
	var texts []string
	for _, n := range matches {
		texts = append(texts, n.text)
	}
	assert.Contains(t, texts, "▁hel")
	assert.Contains(t, texts, "▁hello")
}
