// Package wordpiece implements the greedy longest-match-first WordPiece
// subword algorithm used by BERT, DeBERTa (v1) and ProphetNet: grounded on
// tokenize_wordpiece in the reference tokenization_utils.rs.
package wordpiece

import (
	"github.com/gomlx/go-tokenizers/offset"
)

// DefaultMaxWordLen is the maximum character length of a single "word" (a
// whitespace-delimited unit) before it is given up as Mask.Unknown without
// attempting to split it.
const DefaultMaxWordLen = 100

// Vocab is the minimal surface the WordPiece engine needs from a
// vocabulary.
type Vocab interface {
	Contains(text string) bool
	UnknownToken() string
}

// Tokenize greedily splits token into the longest vocabulary-present
// prefixes, each non-initial piece prefixed with "##". If token has more
// characters than maxWordLen, or no valid WordPiece segmentation exists, a
// single Mask.Unknown token is returned instead.
func Tokenize(token offset.TokenRef, vocab Vocab, maxWordLen int) []offset.Token {
	if maxWordLen <= 0 {
		maxWordLen = DefaultMaxWordLen
	}
	charLen := len(token.ReferenceOffsets)
	if charLen > maxWordLen {
		return []offset.Token{unknownToken(token, vocab)}
	}

	charIndices := make([]int, 0, charLen+1)
	for i := range token.Text {
		charIndices = append(charIndices, i)
	}
	charIndices = append(charIndices, len(token.Text))
	maxEnd := len(token.Text)

	var tokens []offset.Token
	start := 0   // bytes
	posBegin := 0 // chars

	for start < maxEnd {
		end := maxEnd
		posEnd := len(charIndices) - 1
		isUnk := true
		for start < end {
			substr := token.Text[start:end]
			charLength := posEnd - posBegin
			subOffset := offset.Offset{
				Begin: token.Offset.Begin + uint32(posBegin),
				End:   token.Offset.Begin + uint32(posBegin+charLength),
			}
			piece := substr
			if start > 0 {
				piece = "##" + substr
			}
			if vocab.Contains(piece) {
				mask := token.Mask
				if start > 0 {
					mask = offset.Continuation
				}
				tokens = append(tokens, offset.Token{
					Text:             piece,
					Offset:           subOffset,
					ReferenceOffsets: append([]uint32{}, token.ReferenceOffsets[posBegin:posBegin+charLength]...),
					Mask:             mask,
				})
				isUnk = false
				break
			}
			posEnd--
			end = charIndices[posEnd]
		}
		if isUnk {
			return []offset.Token{unknownToken(token, vocab)}
		}
		start = end
		posBegin = posEnd
	}

	offset.FixMask(tokens)
	return tokens
}

func unknownToken(token offset.TokenRef, vocab Vocab) offset.Token {
	return offset.Token{
		Text:             vocab.UnknownToken(),
		Offset:           token.Offset,
		ReferenceOffsets: append([]uint32{}, token.ReferenceOffsets...),
		Mask:             offset.Unknown,
	}
}
