package tokenizer

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/gomlx/go-tokenizers/bpe"
	"github.com/gomlx/go-tokenizers/offset"
	"github.com/gomlx/go-tokenizers/pretokenize"
	"github.com/gomlx/go-tokenizers/vocab"
)

// gpt2RegexPattern is the GPT-2/RoBERTa pre-tokenization regex: contractions,
// letter runs, digit runs, symbol runs, and runs of whitespace. It is applied
// inside the spans produced by gpt2LookaheadPattern, so the last whitespace
// character before a word stays attached to that word.
const gpt2RegexPattern = `'s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+`

// gpt2LookaheadPattern finds a whitespace run followed by a non-space
// character; SplitOnRegexWithLookahead cuts before the last two characters of
// each hit.
const gpt2LookaheadPattern = `\s+\S`

var gpt2Regex = regexp2.MustCompile(gpt2RegexPattern, regexp2.None)
var gpt2LookaheadRegex = regexp2.MustCompile(gpt2LookaheadPattern, regexp2.None)

// byteLevelBase is the shared GPT-2/RoBERTa/XLM-RoBERTa-BPE pre-tokenization
// and subword pipeline: optional lowercase -> split_on_special_tokens ->
// split_on_regex_with_lookahead -> byte-level BPE. Per spec.md §4.7.
type byteLevelBase struct {
	v             *vocab.BaseVocab
	bpeRanks      *vocab.BpePairVocab
	cache         *bpe.Cache
	Lowercase     bool
	AddPrefixSpace bool
}

func newByteLevelBase(v *vocab.BaseVocab, bpeRanks *vocab.BpePairVocab, lowercase, addPrefixSpace bool) byteLevelBase {
	cache, _ := bpe.NewCache(1 << 16)
	return byteLevelBase{v: v, bpeRanks: bpeRanks, cache: cache, Lowercase: lowercase, AddPrefixSpace: addPrefixSpace}
}

func (g *byteLevelBase) vocab() Vocab { return g.v }

func (g *byteLevelBase) tokenize(token offset.TokenRef) []offset.Token {
	if g.AddPrefixSpace && !strings.HasPrefix(token.Text, " ") {
		refs := make([]uint32, 0, len(token.ReferenceOffsets)+1)
		firstRef := uint32(0)
		if len(token.ReferenceOffsets) > 0 {
			firstRef = token.ReferenceOffsets[0]
		}
		refs = append(refs, firstRef)
		refs = append(refs, token.ReferenceOffsets...)
		token = offset.TokenRef{
			Text:             " " + token.Text,
			Offset:           offset.OffsetFromReferenceOffsets(refs),
			ReferenceOffsets: refs,
			Mask:             token.Mask,
		}
	}
	var owned offset.Token
	if g.Lowercase {
		owned = token.ToOwned()
		pretokenize.Lowercase(&owned)
		token = owned.AsRef()
	}

	var out []offset.Token
	for _, special := range pretokenize.SplitOnSpecialTokens(token, g.v) {
		if special.Mask == offset.Special || special.Mask == offset.Unknown {
			out = append(out, special.ToOwned())
			continue
		}
		for _, word := range pretokenize.SplitOnRegexWithLookahead(special, gpt2LookaheadRegex, gpt2Regex) {
			out = append(out, bpe.SplitOnBpePairs(word, bpe.Bpe, g.bpeRanks, g.cache, true)...)
		}
	}
	offset.FixMask(out)
	return out
}

// convertByteLevelToString inverts the byte-level table to recover raw
// bytes and joins pieces with no separator.
func convertByteLevelToString(pieces []string) string {
	var sb strings.Builder
	for _, p := range pieces {
		sb.Write(bpe.UnicodeToBytes(p))
	}
	return sb.String()
}

func robertaBuildInput(bosID, eosID int64, seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	b := &builder{}
	b.marker(bosID, 0)
	b.sequence(seq1, 0)
	b.marker(eosID, 0)
	if seq2 != nil {
		b.marker(eosID, 0)
		b.sequence(*seq2, 0)
		b.marker(eosID, 0)
	}
	return b.build()
}

// --- GPT-2 ---

// Gpt2Tokenizer implements the byte-level BPE family, no special markers on
// encode (segment ids all 0).
type Gpt2Tokenizer struct{ byteLevelBase }

func NewGpt2Tokenizer(v *vocab.BaseVocab, bpeRanks *vocab.BpePairVocab) *Gpt2Tokenizer {
	return &Gpt2Tokenizer{newByteLevelBase(v, bpeRanks, false, false)}
}

func (t *Gpt2Tokenizer) Vocab() Vocab { return t.vocab() }
func (t *Gpt2Tokenizer) TokenizeToTokens(token offset.TokenRef) []offset.Token {
	return t.tokenize(token)
}
func (t *Gpt2Tokenizer) ConvertTokensToString(pieces []string) string {
	return convertByteLevelToString(pieces)
}
func (t *Gpt2Tokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	b := &builder{}
	b.sequence(seq1, 0)
	if seq2 != nil {
		b.sequence(*seq2, 0)
	}
	return b.build()
}

// --- RoBERTa ---

// RobertaTokenizer: byte-level BPE with add_prefix_space, "<s> A </s>" /
// "<s> A </s></s> B </s>"; all segment ids 0.
type RobertaTokenizer struct{ byteLevelBase }

func NewRobertaTokenizer(v *vocab.BaseVocab, bpeRanks *vocab.BpePairVocab, addPrefixSpace bool) *RobertaTokenizer {
	return &RobertaTokenizer{newByteLevelBase(v, bpeRanks, false, addPrefixSpace)}
}

func (t *RobertaTokenizer) Vocab() Vocab { return t.vocab() }
func (t *RobertaTokenizer) TokenizeToTokens(token offset.TokenRef) []offset.Token {
	return t.tokenize(token)
}
func (t *RobertaTokenizer) ConvertTokensToString(pieces []string) string {
	return convertByteLevelToString(pieces)
}
func (t *RobertaTokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	return robertaBuildInput(t.v.TokenToID(t.v.Special.BosToken), t.v.TokenToID(t.v.Special.EosToken), seq1, seq2)
}

// --- DeBERTa (v1) ---

// DebertaTokenizer reuses the BERT WordPiece pipeline with RoBERTa-style
// special tokens (v1 predates the SentencePiece rewrite in v2).
type DebertaTokenizer struct {
	*BertTokenizer
}

func NewDebertaTokenizer(v *vocab.BaseVocab, lowercase, stripAccents bool) *DebertaTokenizer {
	return &DebertaTokenizer{NewBertTokenizer(v, lowercase, stripAccents)}
}

func (t *DebertaTokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	return robertaBuildInput(t.V.TokenToID(t.V.Special.BosToken), t.V.TokenToID(t.V.Special.EosToken), seq1, seq2)
}

// --- XLM-RoBERTa ---

// XLMRobertaTokenizer: SentencePiece-unigram vocabulary with RoBERTa-shaped
// build_input_with_special_tokens.
type XLMRobertaTokenizer struct{ unigramBase }

func NewXLMRobertaTokenizer(entries []vocab.SentencePieceEntry, v *vocab.SentencePieceVocab) *XLMRobertaTokenizer {
	return &XLMRobertaTokenizer{newUnigramBase(entries, v, false, true, false, false)}
}

func (t *XLMRobertaTokenizer) Vocab() Vocab { return t.vocab() }
func (t *XLMRobertaTokenizer) TokenizeToTokens(token offset.TokenRef) []offset.Token {
	return t.tokenize(token)
}
func (t *XLMRobertaTokenizer) ConvertTokensToString(pieces []string) string {
	return convertSentencePieceToString(pieces)
}
func (t *XLMRobertaTokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	return robertaBuildInput(t.v.TokenToID(t.v.Special.BosToken), t.v.TokenToID(t.v.Special.EosToken), seq1, seq2)
}
