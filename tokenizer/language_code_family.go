package tokenizer

import (
	"github.com/gomlx/go-tokenizers/offset"
	"github.com/gomlx/go-tokenizers/pretokenize"
	"github.com/gomlx/go-tokenizers/spbpe"
	"github.com/gomlx/go-tokenizers/vocab"
)

// languageCodeBase is the shared pre-tokenization and subword pipeline for
// M2M100, MBart-50 and NLLB: extract the language-code prefix via
// split_on_language_code (exact byte length differs per family), then run
// SentencePiece-BPE on the remainder. Per spec.md §4.7.
type languageCodeBase struct {
	v             *vocab.BaseVocab
	model         *spbpe.Model
	codeLength    int
	languageCodes map[string]bool
}

func newLanguageCodeBase(v *vocab.BaseVocab, bpeRanks *vocab.BpeMergeVocab, codeLength int, languageCodes map[string]bool) languageCodeBase {
	return languageCodeBase{v: v, model: spbpe.NewModel(bpeRanks), codeLength: codeLength, languageCodes: languageCodes}
}

func (l *languageCodeBase) vocab() Vocab { return l.v }

func (l *languageCodeBase) tokenize(token offset.TokenRef) []offset.Token {
	var out []offset.Token
	for _, part := range pretokenize.SplitOnLanguageCode(token, l.codeLength, l.languageCodes) {
		if part.Mask == offset.Special {
			out = append(out, part.ToOwned())
			continue
		}
		prepared := sentencePiecePrepare(part, false, false)
		out = append(out, l.model.TokenizeToTokens(prepared.AsRef())...)
	}
	offset.FixMask(out)
	return out
}

// --- M2M100 ---

// M2M100Tokenizer: 7-byte language codes (e.g. ">>nl.<<"), SentencePiece-BPE
// body, leading language-code Special token then the sequence then "</s>".
type M2M100Tokenizer struct{ languageCodeBase }

func NewM2M100Tokenizer(v *vocab.BaseVocab, bpeRanks *vocab.BpeMergeVocab, languageCodes map[string]bool) *M2M100Tokenizer {
	return &M2M100Tokenizer{newLanguageCodeBase(v, bpeRanks, 7, languageCodes)}
}

func (t *M2M100Tokenizer) Vocab() Vocab { return t.vocab() }
func (t *M2M100Tokenizer) TokenizeToTokens(token offset.TokenRef) []offset.Token {
	return t.tokenize(token)
}
func (t *M2M100Tokenizer) ConvertTokensToString(pieces []string) string {
	return convertSentencePieceToString(pieces)
}
func (t *M2M100Tokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	return langCodeBuildInput(t.v, seq1, seq2)
}

// --- MBart-50 ---

// MBart50Tokenizer: 6-byte language codes (e.g. ">>en<<"), SentencePiece-BPE
// body.
type MBart50Tokenizer struct{ languageCodeBase }

func NewMBart50Tokenizer(v *vocab.BaseVocab, bpeRanks *vocab.BpeMergeVocab, languageCodes map[string]bool) *MBart50Tokenizer {
	return &MBart50Tokenizer{newLanguageCodeBase(v, bpeRanks, 6, languageCodes)}
}

func (t *MBart50Tokenizer) Vocab() Vocab { return t.vocab() }
func (t *MBart50Tokenizer) TokenizeToTokens(token offset.TokenRef) []offset.Token {
	return t.tokenize(token)
}
func (t *MBart50Tokenizer) ConvertTokensToString(pieces []string) string {
	return convertSentencePieceToString(pieces)
}
func (t *MBart50Tokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	return langCodeBuildInput(t.v, seq1, seq2)
}

// --- NLLB ---

// NLLBTokenizer: Flores-200-style language codes (e.g. "eng_Latn"),
// SentencePiece-BPE body.
type NLLBTokenizer struct{ languageCodeBase }

func NewNLLBTokenizer(v *vocab.BaseVocab, bpeRanks *vocab.BpeMergeVocab, languageCodes map[string]bool) *NLLBTokenizer {
	return &NLLBTokenizer{newLanguageCodeBase(v, bpeRanks, 8, languageCodes)}
}

func (t *NLLBTokenizer) Vocab() Vocab { return t.vocab() }
func (t *NLLBTokenizer) TokenizeToTokens(token offset.TokenRef) []offset.Token {
	return t.tokenize(token)
}
func (t *NLLBTokenizer) ConvertTokensToString(pieces []string) string {
	return convertSentencePieceToString(pieces)
}
func (t *NLLBTokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	return langCodeBuildInput(t.v, seq1, seq2)
}

// langCodeBuildInput assembles the shared M2M100/MBart-50/NLLB shape: a
// leading language-code Special token (already the first entry of seq1,
// produced by split_on_language_code) then the sequence then a trailing
// "</s>".
func langCodeBuildInput(v *vocab.BaseVocab, seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	b := &builder{}
	eos := v.TokenToID(v.Special.EosToken)
	b.sequence(seq1, 0)
	if seq2 != nil {
		b.sequence(*seq2, 0)
	}
	b.marker(eos, 0)
	return b.build()
}
