package pretokenize

import "github.com/gomlx/go-tokenizers/offset"

// charIndex pairs a rune with the byte offset it starts at within a string,
// the Go analogue of Rust's char_indices().enumerate().
type charIndex struct {
	byteIdx int
	r       rune
}

func charIndices(s string) []charIndex {
	out := make([]charIndex, 0, len(s))
	for i, r := range s {
		out = append(out, charIndex{byteIdx: i, r: r})
	}
	return out
}

// SplitOnChar splits token wherever testCharacter(r) is true. When
// addSeparators is true, the matched characters are kept as their own
// singleton tokens carrying setMask; otherwise they are dropped from the
// output entirely. A token already carrying a non-None mask is returned
// unsplit, matching the "don't reprocess an already classified token"
// convention used throughout this pipeline.
func SplitOnChar(token offset.TokenRef, testCharacter func(rune) bool, addSeparators bool, setMask offset.Mask) []offset.TokenRef {
	if token.Mask != offset.None {
		return []offset.TokenRef{token}
	}
	chars := charIndices(token.Text)
	var tokens []offset.TokenRef
	charBegin := 0
	bytesBegin := 0
	charCount := 0

	for charIdx, ci := range chars {
		charCount++
		if testCharacter(ci.r) {
			if charBegin < charIdx {
				tokens = append(tokens, subToken(token, bytesBegin, ci.byteIdx, charBegin, charIdx, offset.None))
			}
			if addSeparators {
				tokens = append(tokens, subToken(token, ci.byteIdx, ci.byteIdx+runeLen(ci.r), charIdx, charIdx+1, setMask))
			}
			charBegin = charIdx + 1
			bytesBegin = ci.byteIdx + runeLen(ci.r)
		}
	}

	if charCount == 0 {
		return []offset.TokenRef{token}
	}
	if bytesBegin < len(token.Text) {
		tokens = append(tokens, subToken(token, bytesBegin, len(token.Text), charBegin, charCount, offset.None))
	}
	return tokens
}

func runeLen(r rune) int {
	return len(string(r))
}

// subToken carves out the [charBegin:charEnd) slice of token (byte range
// [byteBegin:byteEnd)) as a fresh TokenRef with the given mask.
func subToken(token offset.TokenRef, byteBegin, byteEnd, charBegin, charEnd int, mask offset.Mask) offset.TokenRef {
	return offset.TokenRef{
		Text: token.Text[byteBegin:byteEnd],
		Offset: offset.Offset{
			Begin: token.Offset.Begin + uint32(charBegin),
			End:   token.Offset.Begin + uint32(charEnd),
		},
		ReferenceOffsets: token.ReferenceOffsets[charBegin:charEnd],
		Mask:             mask,
	}
}

// WhitespaceTokenize splits token on whitespace, dropping the whitespace
// itself.
func WhitespaceTokenize(token offset.TokenRef) []offset.TokenRef {
	return SplitOnChar(token, IsWhitespace, false, offset.Whitespace)
}

// SplitOnPunct splits token on punctuation characters, keeping each as its
// own singleton token.
func SplitOnPunct(token offset.TokenRef) []offset.TokenRef {
	return SplitOnChar(token, IsPunctuation, true, offset.Punctuation)
}

// TokenizeCJKChars splits token so that every CJK ideograph becomes its own
// token.
func TokenizeCJKChars(token offset.TokenRef) []offset.TokenRef {
	return SplitOnChar(token, IsCJKChar, true, offset.CJK)
}

// SubstrMatch is the result of testing a string suffix for a substring
// match: MatchedBytes/MatchedChars are 0 when there is no match at this
// position, otherwise the length of the match and the mask to tag it with.
type SubstrMatch struct {
	MatchedBytes int
	MatchedChars int
	SetMask      offset.Mask
}

// SplitOnSubstr splits token wherever testSubstr(token.Text[byteIdx:])
// reports a match, trimming trailing whitespace off of the non-matched
// spans it emits (mirroring the original's trim_end on buffered segments).
// When addSeparators is true, matched spans are kept as singleton tokens
// carrying the mask testSubstr returned.
func SplitOnSubstr(token offset.TokenRef, testSubstr func(s string) SubstrMatch, addSeparators bool) []offset.TokenRef {
	var tokens []offset.TokenRef
	charBegin := 0
	bytesBegin := 0
	charCount := 0

	if token.Mask == offset.None {
		chars := charIndices(token.Text)
		for charIdx, ci := range chars {
			charCount++
			m := testSubstr(token.Text[ci.byteIdx:])
			if m.MatchedChars > 0 {
				if charBegin < charIdx {
					trimmed := trimTrailingWhitespace(token.Text[bytesBegin:ci.byteIdx])
					trimmedLen := runeCount(trimmed)
					if trimmedLen > 0 {
						tokens = append(tokens, subToken(token, bytesBegin, bytesBegin+len(trimmed), charBegin, charBegin+trimmedLen, offset.None))
					}
				}
				if addSeparators {
					tokens = append(tokens, subToken(token, ci.byteIdx, ci.byteIdx+m.MatchedBytes, charIdx, charIdx+m.MatchedChars, m.SetMask))
				}
				charBegin = charIdx + m.MatchedChars
				bytesBegin = ci.byteIdx + m.MatchedBytes
			}
		}
	}
	if bytesBegin < len(token.Text) {
		text := token.Text[bytesBegin:]
		if charCount == 0 {
			charCount = runeCount(text)
		}
		tokens = append(tokens, subToken(token, bytesBegin, len(token.Text), charBegin, charCount, offset.None))
	}
	return tokens
}

func runeCount(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

func trimTrailingWhitespace(s string) string {
	end := len(s)
	for end > 0 {
		r, size := lastRune(s[:end])
		if !IsWhitespace(r) {
			break
		}
		end -= size
	}
	return s[:end]
}

func lastRune(s string) (rune, int) {
	runes := []rune(s)
	if len(runes) == 0 {
		return 0, 0
	}
	r := runes[len(runes)-1]
	return r, len(string(r))
}

// Vocab is the minimal surface SplitOnSpecialTokens needs from a
// vocabulary: its set of special tokens and its designated unknown token.
type Vocab interface {
	SpecialTokens() []string
	UnknownToken() string
}

// SplitOnSpecialTokens splits token on any special token recognized by
// vocab (BOS/EOS/UNK/... markers), tagging the unknown token as Mask.Unknown
// and every other special token as Mask.Special.
func SplitOnSpecialTokens(token offset.TokenRef, vocab Vocab) []offset.TokenRef {
	specials := vocab.SpecialTokens()
	unk := vocab.UnknownToken()
	testSubstr := func(s string) SubstrMatch {
		for _, special := range specials {
			if hasPrefix(s, special) {
				mask := offset.Special
				if special == unk {
					mask = offset.Unknown
				}
				return SubstrMatch{MatchedBytes: len(special), MatchedChars: runeCount(special), SetMask: mask}
			}
		}
		return SubstrMatch{}
	}
	return SplitOnSubstr(token, testSubstr, true)
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
