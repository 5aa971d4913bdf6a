package tokenizer

import (
	"strings"

	"github.com/gomlx/go-tokenizers/offset"
	"github.com/gomlx/go-tokenizers/vocab"
	"github.com/gomlx/go-tokenizers/wordpiece"
)

// BertTokenizer implements the WordPiece family: BaseTokenizer
// pre-tokenization (whitespace/special/punctuation/CJK/clean_text/
// lowercase/strip-accents) followed by greedy longest-match WordPiece.
// Grounded on BaseTokenizer and tokenize_wordpiece in the reference
// tokenization_utils.rs.
type BertTokenizer struct {
	V             *vocab.BaseVocab
	Lowercase     bool
	StripAccents  bool
	MaxWordLen    int
}

// NewBertTokenizer builds a BertTokenizer. MaxWordLen defaults to
// wordpiece.DefaultMaxWordLen (100) when zero.
func NewBertTokenizer(v *vocab.BaseVocab, lowercase, stripAccents bool) *BertTokenizer {
	return &BertTokenizer{V: v, Lowercase: lowercase, StripAccents: stripAccents, MaxWordLen: wordpiece.DefaultMaxWordLen}
}

func (t *BertTokenizer) Vocab() Vocab { return t.V }

func (t *BertTokenizer) TokenizeToTokens(token offset.TokenRef) []offset.Token {
	base := baseTokenizerSplit(token, t.V, t.Lowercase, t.StripAccents)
	var out []offset.Token
	for _, piece := range base {
		if piece.Mask == offset.Special || piece.Mask == offset.Unknown {
			out = append(out, piece)
			continue
		}
		out = append(out, wordpiece.Tokenize(piece.AsRef(), t.V, t.MaxWordLen)...)
	}
	offset.FixMask(out)
	return out
}

// BuildInputWithSpecialTokens assembles "[CLS] A [SEP]" (single) or
// "[CLS] A [SEP] B [SEP]" (pair); segment ids are 0 for the A-side
// (including [CLS] and the first [SEP]), 1 for the B-side.
func (t *BertTokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	b := &builder{}
	clsID := t.V.TokenToID(t.V.Special.ClsToken)
	sepID := t.V.TokenToID(t.V.Special.SepToken)
	b.marker(clsID, 0)
	b.sequence(seq1, 0)
	b.marker(sepID, 0)
	if seq2 != nil {
		b.sequence(*seq2, 1)
		b.marker(sepID, 1)
	}
	return b.build()
}

// ConvertTokensToString joins WordPiece pieces with spaces, dropping the
// "##" continuation marker.
func (t *BertTokenizer) ConvertTokensToString(pieces []string) string {
	var sb strings.Builder
	for i, p := range pieces {
		p = strings.TrimPrefix(p, "##")
		if i > 0 && !strings.HasPrefix(pieces[i], "##") {
			sb.WriteByte(' ')
		}
		sb.WriteString(p)
	}
	return sb.String()
}
