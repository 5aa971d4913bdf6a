package pretokenize

import "github.com/gomlx/go-tokenizers/offset"

// SplitOnLanguageCode extracts a fixed-width leading language code (e.g.
// MBart50's 7-byte ">>nl.<<" or M2M100's 6-byte ">>en<<") from token, skipping any leading
// whitespace first. If the bytes at that position are present in
// languageCodes, they are split off as their own Mask.Special token; either
// way, the remainder of token (after skipping any further leading
// whitespace) is returned as a second, unmasked token. Grounded on the
// original's split_on_language_code.
func SplitOnLanguageCode(token offset.TokenRef, codeLength int, languageCodes map[string]bool) []offset.TokenRef {
	if len(token.Text) < codeLength {
		return []offset.TokenRef{token}
	}

	chars := charIndices(token.Text)
	beginChar := 0
	startByte := 0
	idx := 0
	for idx < len(chars) {
		if !IsWhitespace(chars[idx].r) {
			break
		}
		startByte = chars[idx].byteIdx + runeLen(chars[idx].r)
		beginChar++
		idx++
	}

	var tokens []offset.TokenRef
	if startByte+codeLength <= len(token.Text) {
		leading := token.Text[startByte : startByte+codeLength]
		if languageCodes[leading] {
			tokens = append(tokens, subToken(token, startByte, startByte+codeLength, beginChar, beginChar+codeLength, offset.Special))
			startByte += codeLength
			beginChar += codeLength
			idx += codeLength
		}
	}

	for idx < len(chars) {
		if !IsWhitespace(chars[idx].r) {
			break
		}
		startByte = chars[idx].byteIdx + runeLen(chars[idx].r)
		beginChar++
		idx++
	}

	tokens = append(tokens, offset.TokenRef{
		Text: token.Text[startByte:],
		Offset: offset.Offset{
			Begin: token.Offset.Begin + uint32(beginChar),
			End:   token.Offset.Begin + uint32(runeCount(token.Text)),
		},
		ReferenceOffsets: token.ReferenceOffsets[beginChar:],
		Mask:             offset.None,
	})
	return tokens
}

// ByteFallbackVocab is the minimal surface UnknownByteFallback needs: a
// membership test for whether a piece string is present in the vocabulary.
type ByteFallbackVocab interface {
	Contains(text string) bool
}

// UnknownByteFallback reports whether token.Text is absent from vocab; if
// so, it returns one singleton Token per UTF-8 byte of token.Text, each
// rendered as "<0xXX>" and anchored at token's end offset (matching the
// original's unknown_byte_fallback byte-escaping convention used by
// SentencePiece-unigram's "byte_fallback" option). Returns nil when
// token.Text is already in the vocabulary.
func UnknownByteFallback(token offset.TokenRef, vocab ByteFallbackVocab) []offset.Token {
	if vocab.Contains(token.Text) {
		return nil
	}
	lastRef := uint32(0)
	if len(token.ReferenceOffsets) > 0 {
		lastRef = token.ReferenceOffsets[len(token.ReferenceOffsets)-1]
	}
	out := make([]offset.Token, 0, len(token.Text))
	for i := 0; i < len(token.Text); i++ {
		out = append(out, offset.Token{
			Text:             byteHex(token.Text[i]),
			Offset:           offset.Offset{Begin: token.Offset.End, End: token.Offset.End},
			ReferenceOffsets: []uint32{lastRef},
			Mask:             token.Mask,
		})
	}
	return out
}

const hexDigits = "0123456789ABCDEF"

func byteHex(b byte) string {
	out := make([]byte, 0, 6)
	out = append(out, '<', '0', 'x', hexDigits[b>>4], hexDigits[b&0xF], '>')
	return string(out)
}
