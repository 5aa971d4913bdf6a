package vocab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseVocabRegistersSpecialTokens(t *testing.T) {
	values := map[string]int64{"[UNK]": 0, "[CLS]": 1, "[SEP]": 2, "hello": 3}
	v, err := NewBaseVocab(values, SpecialTokenMap{UnkToken: "[UNK]", ClsToken: "[CLS]", SepToken: "[SEP]"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), v.TokenToID("[CLS]"))
	assert.Equal(t, int64(3), v.TokenToID("hello"))
	assert.True(t, v.IsSpecial("[CLS]"))
	assert.False(t, v.IsSpecial("hello"))
}

func TestNewBaseVocabFailsOnMissingSpecialToken(t *testing.T) {
	values := map[string]int64{"[UNK]": 0, "hello": 1}
	_, err := NewBaseVocab(values, SpecialTokenMap{UnkToken: "[UNK]", ClsToken: "[CLS]"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenNotFound)
}

func TestTokenToIDFallsBackToUnknown(t *testing.T) {
	values := map[string]int64{"[UNK]": 0, "hello": 1}
	v, err := NewBaseVocab(values, SpecialTokenMap{UnkToken: "[UNK]"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), v.TokenToID("never-seen"))
	assert.Equal(t, int64(0), v.UnknownID())
}

func TestIDToTokenFallsBackToUnknown(t *testing.T) {
	values := map[string]int64{"[UNK]": 0, "hello": 1}
	v, err := NewBaseVocab(values, SpecialTokenMap{UnkToken: "[UNK]"})
	require.NoError(t, err)
	assert.Equal(t, "hello", v.IDToToken(1))
	assert.Equal(t, "[UNK]", v.IDToToken(99))
}

func TestSpecialTokensSortedDescendingLengthThenLexicographic(t *testing.T) {
	values := map[string]int64{
		"[UNK]": 0, "[CLS]": 1, "[SEP]": 2, "<mask>": 3,
	}
	v, err := NewBaseVocab(values, SpecialTokenMap{
		UnkToken: "[UNK]", ClsToken: "[CLS]", SepToken: "[SEP]", MaskToken: "<mask>",
	})
	require.NoError(t, err)
	got := v.SpecialTokens()
	require.Len(t, got, 4)
	// "<mask>" (6 chars) sorts first; the three 5-char tokens follow
	// lexicographically.
	assert.Equal(t, []string{"<mask>", "[CLS]", "[SEP]", "[UNK]"}, got)
}

func TestFromFlatFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.txt")
	require.NoError(t, os.WriteFile(path, []byte("[UNK]\n[CLS]\nhello\nworld\n"), 0o644))
	values, err := FromFlatFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"[UNK]": 0, "[CLS]": 1, "hello": 2, "world": 3}, values)
}

func TestFromFlatFileMissing(t *testing.T) {
	_, err := FromFlatFile(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestFromJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"hello": 0, "world": 1}`), 0o644))
	values, err := FromJSONFile(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"hello": 0, "world": 1}, values)
}

func TestFromJSONFileMalformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vocab.json")
	require.NoError(t, os.WriteFile(path, []byte(`not json`), 0o644))
	_, err := FromJSONFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVocabParsing)
}

func TestFromNLLBTokenizerJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tokenizer.json")
	content := `{"model": {"vocab": {"eng_Latn": 0, "fra_Latn": 1}}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	values, err := FromNLLBTokenizerJSON(path)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"eng_Latn": 0, "fra_Latn": 1}, values)
}

func TestSpecialTokenMapFromJSONFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "special_tokens_map.json")
	content := `{"unk_token": "<unk>", "bos_token": "<s>", "eos_token": "</s>"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	m, err := SpecialTokenMapFromJSONFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<unk>", m.UnkToken)
	assert.Equal(t, "<s>", m.BosToken)
	assert.Equal(t, "</s>", m.EosToken)
}

func TestSpecialTokenMapFromJSONFileNLLBNestedMaskToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "special_tokens_map.json")
	content := `{"unk_token": "<unk>", "mask_token": {"mask_token": "<mask>"}}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	m, err := SpecialTokenMapFromJSONFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<mask>", m.MaskToken)
}

func TestSpecialTokenMapFromJSONFileRequiresUnkToken(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "special_tokens_map.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"bos_token": "<s>"}`), 0o644))
	_, err := SpecialTokenMapFromJSONFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVocabParsing)
}
