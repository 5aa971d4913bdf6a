package tokenizer

import (
	"strings"

	"github.com/gomlx/go-tokenizers/offset"
	"github.com/gomlx/go-tokenizers/vocab"
)

// BaseTokenizer runs only the shared BaseTokenizer pre-tokenization
// pipeline (whitespace/special/punctuation/CJK/clean_text/lowercase/
// strip-accents) with no subword engine: each surviving piece is itself a
// token. Useful standalone and as the common ancestor BertTokenizer builds
// on. Grounded on BaseTokenizer in the reference tokenization_utils.rs.
type BaseTokenizer struct {
	V            *vocab.BaseVocab
	Lowercase    bool
	StripAccents bool
}

func NewBaseTokenizer(v *vocab.BaseVocab, lowercase, stripAccents bool) *BaseTokenizer {
	return &BaseTokenizer{V: v, Lowercase: lowercase, StripAccents: stripAccents}
}

func (t *BaseTokenizer) Vocab() Vocab { return t.V }

func (t *BaseTokenizer) TokenizeToTokens(token offset.TokenRef) []offset.Token {
	out := baseTokenizerSplit(token, t.V, t.Lowercase, t.StripAccents)
	offset.FixMask(out)
	return out
}

// BuildInputWithSpecialTokens concatenates with no markers; BaseTokenizer
// has no canonical special-token scheme of its own.
func (t *BaseTokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	b := &builder{}
	b.sequence(seq1, 0)
	if seq2 != nil {
		b.sequence(*seq2, 1)
	}
	return b.build()
}

// ConvertTokensToString joins pieces with spaces.
func (t *BaseTokenizer) ConvertTokensToString(pieces []string) string {
	return strings.Join(pieces, " ")
}
