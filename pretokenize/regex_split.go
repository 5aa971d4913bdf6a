package pretokenize

import (
	"github.com/dlclark/regexp2"

	"github.com/gomlx/go-tokenizers/offset"
)

// SplitOnRegexWithLookahead splits token first on pattern_lookahead matches
// (used by GPT-2/RoBERTa's byte-level regex, which needs lookahead to find
// whitespace-run boundaries) and then re-tokenizes each resulting span with
// patternTokenization. Grounded on the original's split_on_regex_with_lookahead:
// each lookahead hit's last two characters mark where the actual cut falls,
// just before them, so the final separator stays with the character after it.
func SplitOnRegexWithLookahead(token offset.TokenRef, patternLookahead, patternTokenization *regexp2.Regexp) []offset.TokenRef {
	if token.Mask != offset.None {
		return []offset.TokenRef{token}
	}

	var splits []string
	i := 0
	m, _ := patternLookahead.FindStringMatch(token.Text)
	for m != nil {
		hitRunes := []rune(m.String())
		if len(hitRunes) < 2 {
			m, _ = patternLookahead.FindNextMatch(m)
			continue
		}
		start := hitRunes[len(hitRunes)-1]
		sep := hitRunes[len(hitRunes)-2]
		endByte := m.Index + m.Length - len(string(sep)) - len(string(start))
		splits = append(splits, token.Text[i:endByte])
		i = endByte
		m, _ = patternLookahead.FindNextMatch(m)
	}
	splits = append(splits, token.Text[i:])

	var subWords []string
	for _, sub := range splits {
		sm, _ := patternTokenization.FindStringMatch(sub)
		for sm != nil {
			subWords = append(subWords, sm.String())
			sm, _ = patternTokenization.FindNextMatch(sm)
		}
	}

	tokens := make([]offset.TokenRef, 0, len(subWords))
	beginChar := 0
	for _, subWord := range subWords {
		endChar := beginChar + runeCount(subWord)
		tokens = append(tokens, offset.TokenRef{
			Text: subWord,
			Offset: offset.Offset{
				Begin: token.Offset.Begin + uint32(beginChar),
				End:   token.Offset.Begin + uint32(endChar),
			},
			ReferenceOffsets: token.ReferenceOffsets[beginChar:endChar],
			Mask:             offset.None,
		})
		beginChar = endChar
	}
	return tokens
}

// SplitOnRegex splits token into exactly its patternTokenization matches,
// discarding any unmatched characters (used by CTRL/OpenAI-GPT's
// word-boundary regexes).
func SplitOnRegex(token offset.TokenRef, patternTokenization *regexp2.Regexp) []offset.TokenRef {
	var tokens []offset.TokenRef
	beginChar := 0
	m, _ := patternTokenization.FindStringMatch(token.Text)
	for m != nil {
		startByte := m.Index
		if startByte > 0 {
			beginChar = runeCount(token.Text[:startByte])
		}
		text := m.String()
		endChar := beginChar + runeCount(text)
		tokens = append(tokens, offset.TokenRef{
			Text: text,
			Offset: offset.Offset{
				Begin: token.Offset.Begin + uint32(beginChar),
				End:   token.Offset.Begin + uint32(endChar),
			},
			ReferenceOffsets: token.ReferenceOffsets[beginChar:endChar],
			Mask:             offset.None,
		})
		beginChar = endChar
		m, _ = patternTokenization.FindNextMatch(m)
	}
	return tokens
}
