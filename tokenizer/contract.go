// Package tokenizer defines the "Tokenizer" capability every concrete
// model family implements, the default-implemented operations derived
// from it, and one file per concrete family (BERT, GPT-2, SentencePiece
// variants, ...). Grounded on the Tokenizer trait and TokenizedInput/
// TokenIdsWithOffsets in the reference base_tokenizer.rs.
package tokenizer

import (
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/gomlx/go-tokenizers/offset"
	"github.com/gomlx/go-tokenizers/pretokenize"
)

// Vocab is the minimal surface a Tokenizer's vocabulary must expose to the
// default-implemented operations in this package.
type Vocab interface {
	TokenToID(token string) int64
	IDToToken(id int64) string
	UnknownID() int64
	// IsSpecial reports whether token is a registered special token (e.g.
	// [CLS], <s>, <0x1F> is NOT special -- it's a byte-fallback piece).
	IsSpecial(token string) bool
}

// Capability is the minimal set of operations a concrete tokenizer family
// must implement; every other operation in this package (Encode, Decode,
// ...) is derived from it.
type Capability interface {
	// TokenizeToTokens is the one required primitive: decompose a
	// whole-input TokenRef into owned subword Tokens.
	TokenizeToTokens(token offset.TokenRef) []offset.Token
	// Vocab returns the tokenizer's vocabulary.
	Vocab() Vocab
	// BuildInputWithSpecialTokens assembles one or two encoded sequences
	// into the family's canonical marker layout (e.g. "[CLS] A [SEP]").
	BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput
	// ConvertTokensToString joins subword piece strings back into
	// (approximately) the original surface text.
	ConvertTokensToString(pieces []string) string
}

// TokenIdsWithOffsets is one sequence mid-encoding, before special-token
// assembly: parallel ids/offsets/referenceOffsets/masks slices.
type TokenIdsWithOffsets struct {
	Ids              []int64
	Offsets          []*offset.Offset
	ReferenceOffsets [][]uint32
	Masks            []offset.Mask
}

func (t TokenIdsWithOffsets) Len() int { return len(t.Ids) }

// TokenizedInput is the final output of Encode: parallel vectors, one
// entry per output token, per spec.md §6 "Output".
type TokenizedInput struct {
	TokenIDs           []int64
	SegmentIDs         []int8
	SpecialTokensMask  []int8
	OverflowingTokens  []int64
	NumTruncatedTokens uint
	TokenOffsets       []*offset.Offset
	ReferenceOffsets   [][]uint32
	Mask               []offset.Mask
}

// TokenizeWithOffsets builds the initial identity TokenRef for text and
// dispatches to t.TokenizeToTokens; an all-whitespace (or empty) input
// produces no tokens.
func TokenizeWithOffsets(t Capability, text string) []offset.Token {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return t.TokenizeToTokens(offset.NewIdentityTokenRef(text))
}

// Tokenize is TokenizeWithOffsets, discarding the offset/mask metadata.
func Tokenize(t Capability, text string) []string {
	tokens := TokenizeWithOffsets(t, text)
	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Text
	}
	return out
}

// ConvertTokensToIds maps each token to its vocabulary id; a token absent
// from the vocabulary silently maps to the unknown id (token-to-id lookup
// never fails, per spec.md §4.8).
func ConvertTokensToIds(t Capability, tokens []offset.Token) []int64 {
	vocab := t.Vocab()
	ids := make([]int64, len(tokens))
	for i, tok := range tokens {
		ids[i] = vocab.TokenToID(tok.Text)
	}
	return ids
}

func tokensToSequence(vocab Vocab, tokens []offset.Token) TokenIdsWithOffsets {
	seq := TokenIdsWithOffsets{
		Ids:              make([]int64, len(tokens)),
		Offsets:          make([]*offset.Offset, len(tokens)),
		ReferenceOffsets: make([][]uint32, len(tokens)),
		Masks:            make([]offset.Mask, len(tokens)),
	}
	for i, tok := range tokens {
		seq.Ids[i] = vocab.TokenToID(tok.Text)
		off := tok.Offset
		seq.Offsets[i] = &off
		seq.ReferenceOffsets[i] = tok.ReferenceOffsets
		seq.Masks[i] = tok.Mask
	}
	return seq
}

// Encode tokenizes text1 (and, if present, text2), truncates the combined
// sequence to maxLen tokens (accounting for the special-token overhead
// BuildInputWithSpecialTokens will add) and assembles the final
// TokenizedInput. Grounded on spec.md §4.6's encode algorithm.
func Encode(t Capability, text1 string, text2 *string, maxLen int, strategy pretokenize.TruncationStrategy, stride int) (TokenizedInput, error) {
	vocab := t.Vocab()
	tokens1 := TokenizeWithOffsets(t, text1)
	seq1 := tokensToSequence(vocab, tokens1)

	var seq2 *TokenIdsWithOffsets
	if text2 != nil {
		tokens2 := TokenizeWithOffsets(t, *text2)
		s2 := tokensToSequence(vocab, tokens2)
		seq2 = &s2
	}

	emptySecond := &TokenIdsWithOffsets{}
	if seq2 == nil {
		emptySecond = nil
	}
	overhead := specialTokenOverhead(t, emptySecond != nil)

	total := seq1.Len() + overhead
	if seq2 != nil {
		total += seq2.Len()
	}

	var overflowIds []int64
	var overflowOffsets []*offset.Offset
	numTruncated := 0
	if maxLen > 0 && total > maxLen {
		toRemove := total - maxLen
		var truncSeq1 pretokenize.TokenIdsWithOffsets
		truncSeq1.Ids = seq1.Ids
		truncSeq1.Offsets = seq1.Offsets
		truncSeq1.ReferenceOffsets = seq1.ReferenceOffsets
		truncSeq1.Masks = seq1.Masks

		var truncSeq2Ptr *pretokenize.TokenIdsWithOffsets
		if seq2 != nil {
			truncSeq2Ptr = &pretokenize.TokenIdsWithOffsets{
				Ids: seq2.Ids, Offsets: seq2.Offsets, ReferenceOffsets: seq2.ReferenceOffsets, Masks: seq2.Masks,
			}
		}

		outSeq1, outSeq2, overflow, overflowOff, err := pretokenize.TruncateSequences(truncSeq1, truncSeq2Ptr, toRemove, strategy, stride)
		if err != nil {
			return TokenizedInput{}, errors.Wrap(err, "encode: truncation failed")
		}
		seq1 = TokenIdsWithOffsets{Ids: outSeq1.Ids, Offsets: outSeq1.Offsets, ReferenceOffsets: outSeq1.ReferenceOffsets, Masks: outSeq1.Masks}
		if outSeq2 != nil {
			seq2 = &TokenIdsWithOffsets{Ids: outSeq2.Ids, Offsets: outSeq2.Offsets, ReferenceOffsets: outSeq2.ReferenceOffsets, Masks: outSeq2.Masks}
		}
		overflowIds = overflow
		overflowOffsets = overflowOff
		numTruncated = toRemove
	}

	assembled := t.BuildInputWithSpecialTokens(seq1, seq2)
	assembled.OverflowingTokens = overflowIds
	assembled.NumTruncatedTokens = uint(numTruncated)
	if assembled.TokenOffsets == nil {
		assembled.TokenOffsets = overflowOffsets
	}
	klog.V(3).Infof("encode: produced %d tokens (%d truncated)", len(assembled.TokenIDs), numTruncated)
	return assembled, nil
}

// specialTokenOverhead measures how many marker tokens
// BuildInputWithSpecialTokens inserts for empty sides, so Encode knows how
// much headroom to leave before truncating.
func specialTokenOverhead(t Capability, withSecond bool) int {
	var seq2 *TokenIdsWithOffsets
	if withSecond {
		seq2 = &TokenIdsWithOffsets{}
	}
	assembled := t.BuildInputWithSpecialTokens(TokenIdsWithOffsets{}, seq2)
	return len(assembled.TokenIDs)
}

// EncodeList encodes each input independently, in input order.
func EncodeList(t Capability, texts []string, maxLen int, strategy pretokenize.TruncationStrategy, stride int) ([]TokenizedInput, error) {
	out := make([]TokenizedInput, len(texts))
	for i, text := range texts {
		encoded, err := Encode(t, text, nil, maxLen, strategy, stride)
		if err != nil {
			return nil, err
		}
		out[i] = encoded
	}
	return out, nil
}

// EncodePairList encodes each (text1, text2) pair independently, in input
// order.
func EncodePairList(t Capability, pairs [][2]string, maxLen int, strategy pretokenize.TruncationStrategy, stride int) ([]TokenizedInput, error) {
	out := make([]TokenizedInput, len(pairs))
	for i, pair := range pairs {
		text2 := pair[1]
		encoded, err := Encode(t, pair[0], &text2, maxLen, strategy, stride)
		if err != nil {
			return nil, err
		}
		out[i] = encoded
	}
	return out, nil
}

// Decode converts a sequence of ids back to a surface string: ids map to
// vocabulary tokens, special tokens are optionally dropped, pieces are
// joined via ConvertTokensToString, and the result optionally passes
// through CleanUpTokenization.
func Decode(t Capability, ids []int64, skipSpecialTokens bool, cleanUp bool) string {
	vocab := t.Vocab()
	pieces := make([]string, 0, len(ids))
	for _, id := range ids {
		token := vocab.IDToToken(id)
		if skipSpecialTokens && vocab.IsSpecial(token) {
			continue
		}
		pieces = append(pieces, token)
	}
	decoded := t.ConvertTokensToString(pieces)
	if cleanUp {
		decoded = CleanUpTokenization(decoded)
	}
	return decoded
}

// DecodeList decodes each id sequence independently, in input order.
func DecodeList(t Capability, idsList [][]int64, skipSpecialTokens, cleanUp bool) []string {
	out := make([]string, len(idsList))
	for i, ids := range idsList {
		out[i] = Decode(t, ids, skipSpecialTokens, cleanUp)
	}
	return out
}

// cleanUpSubstitutions is the fixed, ordered substitution list applied by
// CleanUpTokenization, per spec.md §4.6.
var cleanUpSubstitutions = []struct{ from, to string }{
	{" .", "."},
	{" !", "!"},
	{" ?", "?"},
	{" ,", ","},
	{" ' ", "'"},
	{" n't", "n't"},
	{" 'm", "'m"},
	{" do not", " don't"},
	{" 's", "'s"},
	{" 've", "'ve"},
	{" 're", "'re"},
}

// CleanUpTokenization applies the fixed substitution list that tidies up
// whitespace artifacts left behind by ConvertTokensToString.
func CleanUpTokenization(s string) string {
	for _, sub := range cleanUpSubstitutions {
		s = strings.ReplaceAll(s, sub.from, sub.to)
	}
	return s
}
