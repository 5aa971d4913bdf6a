package tokenizer

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/gomlx/go-tokenizers/bpe"
	"github.com/gomlx/go-tokenizers/offset"
	"github.com/gomlx/go-tokenizers/pretokenize"
	"github.com/gomlx/go-tokenizers/vocab"
)

// openAIGptRegexPattern segments on whitespace only (runs of non-whitespace
// characters), then delegates word-internal segmentation to word-ending BPE
// merges (the "</w>" marker).
const openAIGptRegexPattern = `\S+`

var openAIGptRegex = regexp2.MustCompile(openAIGptRegexPattern, regexp2.None)

// GptTokenizer implements the original OpenAI-GPT family: lowercase ->
// whitespace split -> char-level BPE with a "</w>" end-of-word marker, no
// special markers on encode.
type GptTokenizer struct {
	v        *vocab.BaseVocab
	bpeRanks *vocab.BpePairVocab
	cache    *bpe.Cache
}

func NewGptTokenizer(v *vocab.BaseVocab, bpeRanks *vocab.BpePairVocab) *GptTokenizer {
	cache, _ := bpe.NewCache(1 << 16)
	return &GptTokenizer{v: v, bpeRanks: bpeRanks, cache: cache}
}

func (t *GptTokenizer) Vocab() Vocab { return t.v }

func (t *GptTokenizer) TokenizeToTokens(token offset.TokenRef) []offset.Token {
	owned := token.ToOwned()
	pretokenize.Lowercase(&owned)
	token = owned.AsRef()

	var out []offset.Token
	for _, special := range pretokenize.SplitOnSpecialTokens(token, t.v) {
		if special.Mask == offset.Special || special.Mask == offset.Unknown {
			out = append(out, special.ToOwned())
			continue
		}
		for _, word := range pretokenize.SplitOnRegex(special, openAIGptRegex) {
			out = append(out, bpe.SplitOnBpePairs(word, bpe.OpenAIGptBpe, t.bpeRanks, t.cache, false)...)
		}
	}
	offset.FixMask(out)
	return out
}

func (t *GptTokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	b := &builder{}
	b.sequence(seq1, 0)
	if seq2 != nil {
		b.sequence(*seq2, 0)
	}
	return b.build()
}

// ConvertTokensToString joins pieces with spaces and strips the "</w>"
// end-of-word marker.
func (t *GptTokenizer) ConvertTokensToString(pieces []string) string {
	var sb strings.Builder
	for i, p := range pieces {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strings.TrimSuffix(p, "</w>"))
	}
	return sb.String()
}

// ctrlRegexPattern splits on runs of non-whitespace, optionally followed by
// a single newline, per spec.md §4.7.
const ctrlRegexPattern = `\S+\n?`

var ctrlRegex = regexp2.MustCompile(ctrlRegexPattern, regexp2.None)

// CtrlTokenizer: BaseTokenizer-like splitting -> split_on_regex(`\S+\n?`) ->
// character-level BPE with "@@" continuation markers.
type CtrlTokenizer struct {
	v        *vocab.BaseVocab
	bpeRanks *vocab.BpePairVocab
	cache    *bpe.Cache
}

func NewCtrlTokenizer(v *vocab.BaseVocab, bpeRanks *vocab.BpePairVocab) *CtrlTokenizer {
	cache, _ := bpe.NewCache(1 << 16)
	return &CtrlTokenizer{v: v, bpeRanks: bpeRanks, cache: cache}
}

func (t *CtrlTokenizer) Vocab() Vocab { return t.v }

func (t *CtrlTokenizer) TokenizeToTokens(token offset.TokenRef) []offset.Token {
	var out []offset.Token
	for _, ws := range pretokenize.WhitespaceTokenize(token) {
		for _, special := range pretokenize.SplitOnSpecialTokens(ws, t.v) {
			if special.Mask == offset.Special || special.Mask == offset.Unknown {
				out = append(out, special.ToOwned())
				continue
			}
			for _, word := range pretokenize.SplitOnRegex(special, ctrlRegex) {
				out = append(out, bpe.SplitOnBpePairs(word, bpe.CtrlBpe, t.bpeRanks, t.cache, false)...)
			}
		}
	}
	offset.FixMask(out)
	return out
}

func (t *CtrlTokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	b := &builder{}
	b.sequence(seq1, 0)
	if seq2 != nil {
		b.sequence(*seq2, 0)
	}
	return b.build()
}

// ConvertTokensToString joins pieces with spaces and strips the "@@"
// continuation marker.
func (t *CtrlTokenizer) ConvertTokensToString(pieces []string) string {
	joined := strings.Join(pieces, " ")
	return strings.ReplaceAll(joined, "@@ ", "")
}
