package pretokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/go-tokenizers/offset"
)

func TestWhitespaceTokenize(t *testing.T) {
	tok := offset.NewIdentityTokenRef("Hello  world")
	got := WhitespaceTokenize(tok)
	var texts []string
	for _, tr := range got {
		texts = append(texts, tr.Text)
	}
	assert.Equal(t, []string{"Hello", "world"}, texts)
}

func TestSplitOnPunctKeepsSeparators(t *testing.T) {
	tok := offset.NewIdentityTokenRef("don't")
	got := SplitOnPunct(tok)
	var texts []string
	var masks []offset.Mask
	for _, tr := range got {
		texts = append(texts, tr.Text)
		masks = append(masks, tr.Mask)
	}
	assert.Equal(t, []string{"don", "'", "t"}, texts)
	assert.Equal(t, []offset.Mask{offset.None, offset.Punctuation, offset.None}, masks)
}

func TestTokenizeCJKChars(t *testing.T) {
	tok := offset.NewIdentityTokenRef("a中b")
	got := TokenizeCJKChars(tok)
	require.Len(t, got, 3)
	assert.Equal(t, "中", got[1].Text)
	assert.Equal(t, offset.CJK, got[1].Mask)
}

func TestCleanTextDropsControlAndNormalizesWhitespace(t *testing.T) {
	owned := offset.NewIdentityTokenRef("a\tb\x00c").ToOwned()
	CleanText(&owned, true)
	assert.Equal(t, "a bc", owned.Text)
	assert.Equal(t, len(owned.Text), runeCount(owned.Text))
	assert.Equal(t, len(owned.ReferenceOffsets), runeCount(owned.Text))
}

func TestLowercaseExpandsSharpS(t *testing.T) {
	owned := offset.NewIdentityTokenRef("Straße").ToOwned()
	Lowercase(&owned)
	assert.Equal(t, "strasse", owned.Text)
	assert.Equal(t, len(owned.ReferenceOffsets), runeCount(owned.Text))
}

func TestStripAccents(t *testing.T) {
	owned := offset.NewIdentityTokenRef("café").ToOwned()
	StripAccents(&owned)
	assert.Equal(t, "cafe", owned.Text)
}

func TestReplaceStringKeepsOffsetsAligned(t *testing.T) {
	owned := offset.NewIdentityTokenRef("a##b").ToOwned()
	ReplaceString(&owned, "##", "")
	assert.Equal(t, "ab", owned.Text)
	assert.Equal(t, []uint32{0, 3}, owned.ReferenceOffsets)
}

type fakeSpecialVocab struct {
	specials []string
	unk      string
}

func (f fakeSpecialVocab) SpecialTokens() []string { return f.specials }
func (f fakeSpecialVocab) UnknownToken() string    { return f.unk }

func TestSplitOnSpecialTokens(t *testing.T) {
	vocab := fakeSpecialVocab{specials: []string{"[CLS]", "[UNK]"}, unk: "[UNK]"}
	tok := offset.NewIdentityTokenRef("[CLS] hello [UNK]")
	got := SplitOnSpecialTokens(tok, vocab)
	require.True(t, len(got) >= 3)
	assert.Equal(t, "[CLS]", got[0].Text)
	assert.Equal(t, offset.Special, got[0].Mask)
	last := got[len(got)-1]
	assert.Equal(t, "[UNK]", last.Text)
	assert.Equal(t, offset.Unknown, last.Mask)
}

func TestSplitOnLanguageCode(t *testing.T) {
	codes := map[string]bool{"en_XX": true}
	tok := offset.NewIdentityTokenRef("en_XX hello world")
	got := SplitOnLanguageCode(tok, 5, codes)
	require.Len(t, got, 2)
	assert.Equal(t, "en_XX", got[0].Text)
	assert.Equal(t, offset.Special, got[0].Mask)
	assert.Equal(t, "hello world", got[1].Text)
}

type fakeByteFallbackVocab struct{ present map[string]bool }

func (f fakeByteFallbackVocab) Contains(text string) bool { return f.present[text] }

func TestUnknownByteFallback(t *testing.T) {
	vocab := fakeByteFallbackVocab{present: map[string]bool{"hello": true}}
	tok := offset.NewIdentityTokenRef("€")
	tok.Offset = offset.Offset{Begin: 2, End: 3}
	out := UnknownByteFallback(tok, vocab)
	require.Len(t, out, 3) // "€" is 3 bytes in UTF-8
	for _, b := range out {
		assert.Equal(t, offset.Offset{Begin: 3, End: 3}, b.Offset)
	}

	none := UnknownByteFallback(offset.NewIdentityTokenRef("hello"), vocab)
	assert.Nil(t, none)
}

func TestTruncateSequencesLongestFirst(t *testing.T) {
	seq1 := TokenIdsWithOffsets{Ids: []int64{1, 2, 3, 4}}
	seq2 := TokenIdsWithOffsets{Ids: []int64{5, 6}}
	out1, out2, overflow, _, err := TruncateSequences(seq1, &seq2, 3, LongestFirst, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, out1.len()+out2.len())
	assert.Len(t, overflow, 3)
}

func TestTruncateSequencesDoNotTruncateErrors(t *testing.T) {
	seq1 := TokenIdsWithOffsets{Ids: []int64{1, 2, 3}}
	_, _, _, _, err := TruncateSequences(seq1, nil, 1, DoNotTruncate, 0)
	require.Error(t, err)
}
