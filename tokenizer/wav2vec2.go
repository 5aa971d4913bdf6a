package tokenizer

import (
	"strings"

	"github.com/gomlx/go-tokenizers/offset"
	"github.com/gomlx/go-tokenizers/pretokenize"
	"github.com/gomlx/go-tokenizers/vocab"
)

// Wav2Vec2Tokenizer implements the character-vocabulary family used for
// CTC-style acoustic models: split_on_special_tokens, then one token per
// character (a character absent from the vocabulary keeps its text, is
// tagged Mask.Unknown and converts to the unknown id). Per spec.md §4.7.
type Wav2Vec2Tokenizer struct {
	V *vocab.BaseVocab
}

func NewWav2Vec2Tokenizer(v *vocab.BaseVocab) *Wav2Vec2Tokenizer {
	return &Wav2Vec2Tokenizer{V: v}
}

func (t *Wav2Vec2Tokenizer) Vocab() Vocab { return t.V }

func (t *Wav2Vec2Tokenizer) TokenizeToTokens(token offset.TokenRef) []offset.Token {
	var out []offset.Token
	for _, part := range pretokenize.SplitOnSpecialTokens(token, t.V) {
		if part.Mask == offset.Special || part.Mask == offset.Unknown {
			out = append(out, part.ToOwned())
			continue
		}
		runeIdx := 0
		for _, r := range part.Text {
			text := string(r)
			mask := offset.None
			if _, ok := t.V.Values[text]; !ok {
				mask = offset.Unknown
			}
			out = append(out, offset.Token{
				Text:             text,
				Offset:           offset.Offset{Begin: part.ReferenceOffsets[runeIdx], End: part.ReferenceOffsets[runeIdx] + 1},
				ReferenceOffsets: []uint32{part.ReferenceOffsets[runeIdx]},
				Mask:             mask,
			})
			runeIdx++
		}
	}
	return out
}

// BuildInputWithSpecialTokens assembles "A <sep>"; a pair is separated by
// two "<sep>" markers (the pair form is exercised but unusual per spec.md
// §4.7).
func (t *Wav2Vec2Tokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	b := &builder{}
	sep := t.V.TokenToID(t.V.Special.SepToken)
	b.sequence(seq1, 0)
	b.marker(sep, 0)
	if seq2 != nil {
		b.marker(sep, 0)
		b.sequence(*seq2, 0)
		b.marker(sep, 0)
	}
	return b.build()
}

// ConvertTokensToString implements CTC decoding: collapse adjacent
// duplicate characters, drop pad tokens, turn the sep token into a space.
func (t *Wav2Vec2Tokenizer) ConvertTokensToString(pieces []string) string {
	pad := t.V.Special.PadToken
	sep := t.V.Special.SepToken
	var sb strings.Builder
	var prev string
	first := true
	for _, p := range pieces {
		if !first && p == prev {
			continue
		}
		first = false
		prev = p
		switch p {
		case pad:
			continue
		case sep:
			sb.WriteByte(' ')
		default:
			sb.WriteString(p)
		}
	}
	return sb.String()
}
