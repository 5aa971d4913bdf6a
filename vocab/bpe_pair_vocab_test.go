package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBpePairVocabFromMergesFileSkipsHeader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "merges.txt")
	content := "#version: 0.2\nh e\nhe l\nhel l\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	v, err := BpePairVocabFromMergesFile(path)
	require.NoError(t, err)
	rank, ok := v.Rank("h", "e")
	require.True(t, ok)
	assert.Equal(t, 0, rank)
	rank, ok = v.Rank("hel", "l")
	require.True(t, ok)
	assert.Equal(t, 2, rank)
	_, ok = v.Rank("never", "merged")
	assert.False(t, ok)
}

func TestBpePairVocabFromMergesFileRejectsMalformedLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "merges.txt")
	content := "#version: 0.2\nh e\nbadline\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	_, err := BpePairVocabFromMergesFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVocabParsing)
}

func TestBpePairVocabFromJSONMerges(t *testing.T) {
	v, err := BpePairVocabFromJSONMerges([]string{"h e", "he l"})
	require.NoError(t, err)
	rank, ok := v.Rank("h", "e")
	require.True(t, ok)
	assert.Equal(t, 0, rank)
	rank, ok = v.Rank("he", "l")
	require.True(t, ok)
	assert.Equal(t, 1, rank)
}

func TestBpePairVocabFromJSONMergesRejectsMalformedEntry(t *testing.T) {
	_, err := BpePairVocabFromJSONMerges([]string{"h e", "onefield"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVocabParsing)
}
