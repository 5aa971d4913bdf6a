package unigram

import (
	"math"

	"github.com/gomlx/go-tokenizers/offset"
	"github.com/gomlx/go-tokenizers/pretokenize"
)

// node is one edge of the decoded lattice: a vocabulary piece spanning
// character positions [Start, End) of the token being decoded.
type node struct {
	text             string
	score            float32
	index            int64
	start, end       int
	referenceOffsets []uint32
}

var negInf = float32(math.Inf(-1))
var f32Min = float32(-math.MaxFloat32)

// decodeForward runs the forward Viterbi pass over token, returning one
// slot per character boundary (length = rune count + 1); decodeForward[i]
// holds the highest-scoring node ending at boundary i, or nil if no
// vocabulary piece reaches that boundary (synthetic unknown-node fallback
// included, mirroring decode_forward_token_ref).
func (m *Model) decodeForward(token offset.TokenRef) []*node {
	charPositions := make([]int, 0, len(token.ReferenceOffsets)+1)
	for i := range token.Text {
		charPositions = append(charPositions, i)
	}
	charPositions = append(charPositions, len(token.Text))

	results := make([]*node, len(charPositions))
	scores := make([]float32, len(charPositions))
	for i := range scores {
		scores[i] = negInf
	}
	scores[0] = 0

	for charStart := 0; charStart < len(charPositions)-1; charStart++ {
		matches := m.commonPrefixSearch(token.Text[charPositions[charStart]:])
		for _, match := range matches {
			localScore := scores[charStart] + match.score
			charEnd := charStart + match.len
			if localScore > scores[charEnd] {
				results[charEnd] = &node{
					text:             token.Text[charPositions[charStart]:charPositions[charEnd]],
					score:            localScore,
					index:            match.index,
					start:            charStart,
					end:              charEnd,
					referenceOffsets: token.ReferenceOffsets[charStart:charEnd],
				}
				scores[charEnd] = localScore
			}
		}
		if scores[charStart+1] <= f32Min {
			results[charStart+1] = &node{
				text:             token.Text[charPositions[charStart]:charPositions[charStart+1]],
				score:            f32Min,
				index:            0,
				start:            charStart,
				end:              charStart + 1,
				referenceOffsets: token.ReferenceOffsets[charStart : charStart+1],
			}
			scores[charStart+1] = 0
		}
	}
	return results
}

// decodeBackward walks nodes from the end back to the start following each
// node's start pointer, returning the best path in forward order.
func (m *Model) decodeBackward(nodes []*node) []*node {
	if len(nodes) == 0 {
		return nil
	}
	var best []*node
	next := nodes[len(nodes)-1]
	for next != nil {
		best = append(best, next)
		next = nodes[next.start]
	}
	for i, j := 0, len(best)-1; i < j; i, j = i+1, j-1 {
		best[i], best[j] = best[j], best[i]
	}
	return best
}

// parseNodesToTokens converts a best-path node sequence to owned tokens,
// merging consecutive synthetic unknown nodes (index == 0, the reserved
// unknown-piece position) into a single Mask.Unknown token.
func (m *Model) parseNodesToTokens(nodes []*node) []offset.Token {
	var output []offset.Token
	var unknown []bool
	isPrevUnknown := false
	for _, n := range nodes {
		if isPrevUnknown && n.index == 0 {
			prev := &output[len(output)-1]
			prev.Text += n.text
			prev.ReferenceOffsets = append(prev.ReferenceOffsets, n.referenceOffsets...)
		} else {
			refs := append([]uint32{}, n.referenceOffsets...)
			output = append(output, offset.Token{
				Text:             n.text,
				ReferenceOffsets: refs,
				Mask:             offset.None,
			})
			unknown = append(unknown, n.index == 0)
		}
		isPrevUnknown = n.index == 0
	}
	m.populateMasks(output, pretokenize.MetaspaceMarker)
	for i := range output {
		if unknown[i] {
			output[i].Mask = offset.Unknown
		}
		output[i].Offset = offset.OffsetFromReferenceOffsets(output[i].ReferenceOffsets)
	}
	return output
}

// populateMasks fills in the Mask field for a decoded token sequence:
// single punctuation/whitespace characters get their own mask, and any
// token that doesn't start the metaspace marker (and doesn't follow a
// punctuation/whitespace token) is a Continuation of the preceding token.
func (m *Model) populateMasks(tokens []offset.Token, whitespaceToken rune) {
	previousMask := offset.None
	for i := range tokens {
		token := &tokens[i]
		if runeCount(token.Text) == 1 {
			r := firstRune(token.Text)
			if pretokenize.IsPunctuation(r) {
				token.Mask = offset.Punctuation
				previousMask = offset.Punctuation
				continue
			}
			if pretokenize.IsWhitespace(r) {
				token.Mask = offset.Whitespace
				previousMask = offset.Punctuation
				continue
			}
		}
		if !startsWithRune(token.Text, whitespaceToken) && previousMask != offset.Punctuation && previousMask != offset.Whitespace {
			token.Mask = offset.Continuation
			previousMask = offset.Continuation
		} else {
			previousMask = offset.None
		}
	}
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func startsWithRune(s string, r rune) bool {
	first := firstRune(s)
	return first == r
}

// Tokenize decomposes token into its best-scoring sequence of SentencePiece
// vocabulary pieces: forward Viterbi pass, backward best-path walk, unknown
// merging and mask population.
func (m *Model) Tokenize(token offset.TokenRef) []offset.Token {
	forward := m.decodeForward(token)
	best := m.decodeBackward(forward)
	return m.parseNodesToTokens(best)
}
