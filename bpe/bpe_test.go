package bpe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/go-tokenizers/offset"
	"github.com/gomlx/go-tokenizers/vocab"
)

func ranksFromPairs(pairs ...[2]string) *vocab.BpePairVocab {
	values := make(map[vocab.BpePair]int, len(pairs))
	for rank, p := range pairs {
		values[vocab.BpePair{Left: p[0], Right: p[1]}] = rank
	}
	return &vocab.BpePairVocab{Values: values}
}

func TestBytesToUnicodeRoundTrip(t *testing.T) {
	original := "hello, world! 日本語"
	encoded := BytesToUnicode(original)
	decoded := UnicodeToBytes(encoded)
	assert.Equal(t, original, string(decoded))
}

func TestBpeMerge(t *testing.T) {
	ranks := ranksFromPairs([2]string{"l", "o"}, [2]string{"lo", "w"})
	symbols, counts := Bpe("low", ranks)
	assert.Equal(t, []string{"low", "e", "r"}[:1], symbols[:1])
	assert.Equal(t, len(symbols), len(counts))
}

func TestOpenAIGptBpeStripsEndOfWordFromCounts(t *testing.T) {
	ranks := ranksFromPairs([2]string{"c", "a"}, [2]string{"ca", "t</w>"})
	symbols, counts := OpenAIGptBpe("cat", ranks)
	total := 0
	for _, c := range counts {
		total += c
	}
	assert.Equal(t, 3, total)
	assert.NotEmpty(t, symbols)
}

func TestCtrlBpeAppendsContinuationMarker(t *testing.T) {
	ranks := ranksFromPairs([2]string{"c", "a"}, [2]string{"ca", "t</w>"})
	symbols, _ := CtrlBpe("cat", ranks)
	last := symbols[len(symbols)-1]
	assert.NotContains(t, last, "</w>")
	for _, s := range symbols[:len(symbols)-1] {
		assert.Contains(t, s, "@@")
	}
}

func TestSplitOnBpePairsCachesByText(t *testing.T) {
	ranks := ranksFromPairs([2]string{"l", "o"}, [2]string{"lo", "w"})
	cache, err := NewCache(100)
	require.NoError(t, err)

	tok := offset.NewIdentityTokenRef("low")
	got1 := SplitOnBpePairs(tok, Bpe, ranks, cache, false)
	got2 := SplitOnBpePairs(tok, Bpe, ranks, cache, false)
	require.Equal(t, len(got1), len(got2))
	for i := range got1 {
		assert.Equal(t, got1[i].Text, got2[i].Text)
	}
}

func TestSplitOnBpePairsAsBytesExpandsOffsets(t *testing.T) {
	ranks := ranksFromPairs()
	cache, err := NewCache(100)
	require.NoError(t, err)

	tok := offset.NewIdentityTokenRef("日a")
	got := SplitOnBpePairs(tok, Bpe, ranks, cache, true)
	require.NotEmpty(t, got)
	last := got[len(got)-1]
	assert.Equal(t, uint32(2), last.Offset.End)
}
