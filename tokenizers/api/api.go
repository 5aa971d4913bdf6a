// Package api defines a narrow, embedding-friendly Tokenizer interface
// (plain int ids in and out) and an Adapter that implements it on top of
// any family in package tokenizer -- for callers that only want
// encode/decode and don't need the richer TokenizedInput shape.
package api

import (
	"github.com/pkg/errors"

	"github.com/gomlx/go-tokenizers/tokenizer"
	"github.com/gomlx/go-tokenizers/vocab"
)

// TokenOffset represents the character span of a token in the original text.
// This is useful for token classification tasks (NER, chunking) where you need
// to map token predictions back to character positions in the original text.
type TokenOffset struct {
	Start int // start character position (inclusive)
	End   int // end character position (exclusive)
}

// EncodingResult contains tokens with their offsets.
type EncodingResult struct {
	IDs     []int         // token IDs
	Offsets []TokenOffset // character offsets for each token
}

// Tokenizer interface allows one convert test to "tokens" (integer ids) and back.
//
// It also allows mapping of special tokens: tokens with a common semantic (like padding) but that
// may map to different ids (int) for different tokenizers.
type Tokenizer interface {
	Encode(text string) []int
	Decode([]int) string

	// SpecialTokenID returns ID for given special token if registered, or an error if not.
	SpecialTokenID(token SpecialToken) (int, error)
}

// TokenizerWithOffsets extends Tokenizer with offset tracking capability.
// This is useful for token classification tasks (NER, chunking) where you need
// to map token predictions back to character positions in the original text.
type TokenizerWithOffsets interface {
	Tokenizer
	// EncodeWithOffsets returns tokens along with their character offsets in the original text.
	EncodeWithOffsets(text string) EncodingResult
}

// SpecialToken is an enum of commonly used special tokens.
type SpecialToken int

const (
	TokBeginningOfSentence SpecialToken = iota
	TokEndOfSentence
	TokUnknown
	TokPad
	TokMask
	TokClassification
	TokSpecialTokensCount
)

//go:generate enumer -type=SpecialToken -trimprefix=Tok -transform=snake -values -text -json -yaml api.go

// Adapter implements Tokenizer and TokenizerWithOffsets on top of any
// tokenizer.Capability, given the special-token mapping that capability was
// built with.
type Adapter struct {
	T       tokenizer.Capability
	Special vocab.SpecialTokenMap
}

// NewAdapter wraps t as the narrow Tokenizer/TokenizerWithOffsets API.
func NewAdapter(t tokenizer.Capability, special vocab.SpecialTokenMap) *Adapter {
	return &Adapter{T: t, Special: special}
}

var _ Tokenizer = (*Adapter)(nil)
var _ TokenizerWithOffsets = (*Adapter)(nil)

// Encode tokenizes text and converts the result to int ids.
func (a *Adapter) Encode(text string) []int {
	toks := tokenizer.TokenizeWithOffsets(a.T, text)
	ids := tokenizer.ConvertTokensToIds(a.T, toks)
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}

// Decode converts ids back to a surface string, skipping special tokens and
// applying clean-up-tokenization.
func (a *Adapter) Decode(ids []int) string {
	ids64 := make([]int64, len(ids))
	for i, id := range ids {
		ids64[i] = int64(id)
	}
	return tokenizer.Decode(a.T, ids64, true, true)
}

// EncodeWithOffsets is Encode, additionally reporting each token's
// character span in text.
func (a *Adapter) EncodeWithOffsets(text string) EncodingResult {
	toks := tokenizer.TokenizeWithOffsets(a.T, text)
	ids := tokenizer.ConvertTokensToIds(a.T, toks)
	out := EncodingResult{IDs: make([]int, len(ids)), Offsets: make([]TokenOffset, len(ids))}
	for i, id := range ids {
		out.IDs[i] = int(id)
		out.Offsets[i] = TokenOffset{Start: int(toks[i].Offset.Begin), End: int(toks[i].Offset.End)}
	}
	return out
}

// SpecialTokenID returns the id of the requested special token, or an error
// if this tokenizer's special-token mapping doesn't register one.
func (a *Adapter) SpecialTokenID(token SpecialToken) (int, error) {
	var s string
	switch token {
	case TokBeginningOfSentence:
		s = a.Special.BosToken
	case TokEndOfSentence:
		s = a.Special.EosToken
	case TokUnknown:
		s = a.Special.UnkToken
	case TokPad:
		s = a.Special.PadToken
	case TokMask:
		s = a.Special.MaskToken
	case TokClassification:
		s = a.Special.ClsToken
	default:
		return 0, errors.Errorf("unknown special token %v", token)
	}
	if s == "" {
		return 0, errors.Errorf("special token %v not registered for this tokenizer", token)
	}
	return int(a.T.Vocab().TokenToID(s)), nil
}
