package tokenizer

import (
	"strings"

	"github.com/gomlx/go-tokenizers/offset"
	"github.com/gomlx/go-tokenizers/pretokenize"
	"github.com/gomlx/go-tokenizers/unigram"
	"github.com/gomlx/go-tokenizers/vocab"
)

// unigramBase is the shared SentencePiece-unigram pre-tokenization and
// subword pipeline used by ALBERT, FNet, XLNet, T5, Pegasus and DeBERTa-v2:
// clean_text -> decompose_nfkc -> optional lowercase -> optional
// strip-accents -> replace whitespace with the metaspace marker -> ensure a
// leading metaspace marker -> SentencePiece unigram. Per spec.md §4.7.
type unigramBase struct {
	model           *unigram.Model
	v               *vocab.SentencePieceVocab
	Lowercase       bool
	StripAccents    bool
	PostProcess     bool
	ByteFallback    bool
}

func newUnigramBase(entries []vocab.SentencePieceEntry, v *vocab.SentencePieceVocab, lowercase, stripAccents, postProcess, byteFallback bool) unigramBase {
	return unigramBase{
		model:        unigram.NewModel(entries),
		v:            v,
		Lowercase:    lowercase,
		StripAccents: stripAccents,
		PostProcess:  postProcess,
		ByteFallback: byteFallback,
	}
}

func (u *unigramBase) tokenize(token offset.TokenRef) []offset.Token {
	prepared := sentencePiecePrepare(token, u.Lowercase, u.StripAccents)
	pieces := u.model.Tokenize(prepared.AsRef())
	if u.PostProcess {
		pieces = postProcessUnigramPieces(pieces, func(ref offset.TokenRef) []offset.Token {
			return u.model.Tokenize(ref)
		})
	}
	if u.ByteFallback {
		spliced := make([]offset.Token, 0, len(pieces))
		for i := range pieces {
			if fallback := pretokenize.UnknownByteFallback(pieces[i].AsRef(), u.v); fallback != nil {
				spliced = append(spliced, fallback...)
				continue
			}
			spliced = append(spliced, pieces[i])
		}
		pieces = spliced
	}
	offset.FixMask(pieces)
	return pieces
}

func (u *unigramBase) vocab() Vocab { return u.v }

// convertSentencePieceToString replaces the metaspace marker with a space
// and joins the pieces, trimming the leading space it introduces.
func convertSentencePieceToString(pieces []string) string {
	var sb strings.Builder
	for _, p := range pieces {
		sb.WriteString(strings.ReplaceAll(p, string(pretokenize.MetaspaceMarker), " "))
	}
	return strings.TrimPrefix(sb.String(), " ")
}

// --- ALBERT ---

// AlbertTokenizer: SentencePiece-unigram with the ALBERT post-process-pieces
// rule and BERT-style ([CLS] A [SEP]) build_input_with_special_tokens.
type AlbertTokenizer struct{ unigramBase }

func NewAlbertTokenizer(entries []vocab.SentencePieceEntry, v *vocab.SentencePieceVocab, lowercase bool) *AlbertTokenizer {
	return &AlbertTokenizer{newUnigramBase(entries, v, lowercase, true, true, false)}
}

func (t *AlbertTokenizer) Vocab() Vocab { return t.vocab() }
func (t *AlbertTokenizer) TokenizeToTokens(token offset.TokenRef) []offset.Token {
	return t.tokenize(token)
}
func (t *AlbertTokenizer) ConvertTokensToString(pieces []string) string {
	return convertSentencePieceToString(pieces)
}

// BuildInputWithSpecialTokens assembles "[CLS] A [SEP]" / "[CLS] A [SEP] B [SEP]".
func (t *AlbertTokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	b := &builder{}
	clsID := t.v.Special.ClsToken
	sepID := t.v.Special.SepToken
	cls := t.v.TokenToID(clsID)
	sep := t.v.TokenToID(sepID)
	b.marker(cls, 0)
	b.sequence(seq1, 0)
	b.marker(sep, 0)
	if seq2 != nil {
		b.sequence(*seq2, 1)
		b.marker(sep, 1)
	}
	return b.build()
}

// --- FNet ---

// FNetTokenizer: SentencePiece-unigram, BERT-shaped build_input (no
// post-process-pieces rule).
type FNetTokenizer struct{ unigramBase }

func NewFNetTokenizer(entries []vocab.SentencePieceEntry, v *vocab.SentencePieceVocab, lowercase bool) *FNetTokenizer {
	return &FNetTokenizer{newUnigramBase(entries, v, lowercase, true, false, false)}
}

func (t *FNetTokenizer) Vocab() Vocab { return t.vocab() }
func (t *FNetTokenizer) TokenizeToTokens(token offset.TokenRef) []offset.Token {
	return t.tokenize(token)
}
func (t *FNetTokenizer) ConvertTokensToString(pieces []string) string {
	return convertSentencePieceToString(pieces)
}
func (t *FNetTokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	b := &builder{}
	cls := t.v.TokenToID(t.v.Special.ClsToken)
	sep := t.v.TokenToID(t.v.Special.SepToken)
	b.marker(cls, 0)
	b.sequence(seq1, 0)
	b.marker(sep, 0)
	if seq2 != nil {
		b.sequence(*seq2, 1)
		b.marker(sep, 1)
	}
	return b.build()
}

// --- XLNet ---

// XLNetTokenizer: SentencePiece-unigram, trailing markers: "A <sep> <cls>"
// single, "A <sep> B <sep> <cls>" pair, with segment ids 0, 0, 1, 2.
type XLNetTokenizer struct{ unigramBase }

func NewXLNetTokenizer(entries []vocab.SentencePieceEntry, v *vocab.SentencePieceVocab, lowercase bool) *XLNetTokenizer {
	return &XLNetTokenizer{newUnigramBase(entries, v, lowercase, true, false, false)}
}

func (t *XLNetTokenizer) Vocab() Vocab { return t.vocab() }
func (t *XLNetTokenizer) TokenizeToTokens(token offset.TokenRef) []offset.Token {
	return t.tokenize(token)
}
func (t *XLNetTokenizer) ConvertTokensToString(pieces []string) string {
	return convertSentencePieceToString(pieces)
}
func (t *XLNetTokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	b := &builder{}
	sep := t.v.TokenToID(t.v.Special.SepToken)
	cls := t.v.TokenToID(t.v.Special.ClsToken)
	b.sequence(seq1, 0)
	b.marker(sep, 0)
	if seq2 != nil {
		b.sequence(*seq2, 1)
		b.marker(sep, 1)
		b.marker(cls, 2)
	} else {
		b.marker(cls, 2)
	}
	return b.build()
}

// --- T5 ---

// T5Tokenizer: SentencePiece-unigram, "A </s>" (no BOS, no CLS).
type T5Tokenizer struct{ unigramBase }

func NewT5Tokenizer(entries []vocab.SentencePieceEntry, v *vocab.SentencePieceVocab) *T5Tokenizer {
	return &T5Tokenizer{newUnigramBase(entries, v, false, true, false, false)}
}

func (t *T5Tokenizer) Vocab() Vocab { return t.vocab() }
func (t *T5Tokenizer) TokenizeToTokens(token offset.TokenRef) []offset.Token {
	return t.tokenize(token)
}
func (t *T5Tokenizer) ConvertTokensToString(pieces []string) string {
	return convertSentencePieceToString(pieces)
}
func (t *T5Tokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	b := &builder{}
	eos := t.v.TokenToID(t.v.Special.EosToken)
	b.sequence(seq1, 0)
	if seq2 != nil {
		b.marker(eos, 0)
		b.sequence(*seq2, 0)
	}
	b.marker(eos, 0)
	return b.build()
}

// --- Pegasus ---

// PegasusTokenizer: SentencePiece-unigram, "A </s>".
type PegasusTokenizer struct{ unigramBase }

func NewPegasusTokenizer(entries []vocab.SentencePieceEntry, v *vocab.SentencePieceVocab) *PegasusTokenizer {
	return &PegasusTokenizer{newUnigramBase(entries, v, false, true, false, false)}
}

func (t *PegasusTokenizer) Vocab() Vocab { return t.vocab() }
func (t *PegasusTokenizer) TokenizeToTokens(token offset.TokenRef) []offset.Token {
	return t.tokenize(token)
}
func (t *PegasusTokenizer) ConvertTokensToString(pieces []string) string {
	return convertSentencePieceToString(pieces)
}
func (t *PegasusTokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	b := &builder{}
	eos := t.v.TokenToID(t.v.Special.EosToken)
	b.sequence(seq1, 0)
	if seq2 != nil {
		b.marker(eos, 0)
		b.sequence(*seq2, 0)
	}
	b.marker(eos, 0)
	return b.build()
}

// --- DeBERTa-v2 ---

// DebertaV2Tokenizer: SentencePiece-unigram with post-process-pieces and
// unknown_byte_fallback, RoBERTa-shaped build_input_with_special_tokens.
type DebertaV2Tokenizer struct{ unigramBase }

func NewDebertaV2Tokenizer(entries []vocab.SentencePieceEntry, v *vocab.SentencePieceVocab, lowercase bool) *DebertaV2Tokenizer {
	return &DebertaV2Tokenizer{newUnigramBase(entries, v, lowercase, true, true, true)}
}

func (t *DebertaV2Tokenizer) Vocab() Vocab { return t.vocab() }
func (t *DebertaV2Tokenizer) TokenizeToTokens(token offset.TokenRef) []offset.Token {
	return t.tokenize(token)
}
func (t *DebertaV2Tokenizer) ConvertTokensToString(pieces []string) string {
	return convertSentencePieceToString(pieces)
}
func (t *DebertaV2Tokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	return robertaBuildInput(t.v.TokenToID(t.v.Special.BosToken), t.v.TokenToID(t.v.Special.EosToken), seq1, seq2)
}

// --- Reformer ---

// ReformerTokenizer: SentencePiece-unigram, no special tokens inserted on
// build_input_with_special_tokens (raw concatenation), per the original's
// reformer_tokenizer.
type ReformerTokenizer struct{ unigramBase }

func NewReformerTokenizer(entries []vocab.SentencePieceEntry, v *vocab.SentencePieceVocab) *ReformerTokenizer {
	return &ReformerTokenizer{newUnigramBase(entries, v, false, false, false, false)}
}

func (t *ReformerTokenizer) Vocab() Vocab { return t.vocab() }
func (t *ReformerTokenizer) TokenizeToTokens(token offset.TokenRef) []offset.Token {
	return t.tokenize(token)
}
func (t *ReformerTokenizer) ConvertTokensToString(pieces []string) string {
	return convertSentencePieceToString(pieces)
}
func (t *ReformerTokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	b := &builder{}
	b.sequence(seq1, 0)
	if seq2 != nil {
		b.sequence(*seq2, 0)
	}
	return b.build()
}
