package pretokenize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/gomlx/go-tokenizers/offset"
)

// replacementChar is the Unicode replacement character U+FFFD, dropped by
// CleanText like the null character and control characters.
const replacementChar = '�'

// CleanText drops control characters, the null character and U+FFFD, and
// replaces any whitespace character with a single ASCII space. When strict
// is true, control-character classification uses the extended table (see
// IsControl); each surviving character keeps its source's reference offset.
func CleanText(token *offset.Token, strict bool) {
	var cleaned strings.Builder
	cleaned.Grow(len(token.Text))
	refs := make([]uint32, 0, len(token.ReferenceOffsets))
	i := 0
	for _, r := range token.Text {
		pos := token.ReferenceOffsets[i]
		i++
		if IsControl(r, strict) || r == 0 || r == replacementChar {
			continue
		}
		if IsWhitespace(r) {
			cleaned.WriteRune(' ')
		} else {
			cleaned.WriteRune(r)
		}
		refs = append(refs, pos)
	}
	token.Text = cleaned.String()
	token.ReferenceOffsets = refs
	token.Offset = offset.OffsetFromReferenceOffsets(refs)
}

// caseFolder applies Unicode case folding (golang.org/x/text/cases), the
// ecosystem equivalent of Rust's char::to_lowercase used by the original's
// lowercase primitive.
var caseFolder = cases.Fold()

// Lowercase applies Unicode case folding to token; a single character may
// expand into several (e.g. German "ß" -> "ss"), in which case every
// produced character inherits the source character's reference offset.
func Lowercase(token *offset.Token) {
	var out strings.Builder
	out.Grow(len(token.Text))
	refs := make([]uint32, 0, len(token.ReferenceOffsets))
	i := 0
	for _, r := range token.Text {
		pos := token.ReferenceOffsets[i]
		i++
		folded := caseFolder.String(string(r))
		for _, c := range folded {
			out.WriteRune(c)
			refs = append(refs, pos)
		}
	}
	token.Text = out.String()
	token.ReferenceOffsets = refs
	token.Offset = offset.OffsetFromReferenceOffsets(refs)
}

// StripAccents applies canonical (NFD) decomposition and drops any
// character in the Unicode "Mark, Nonspacing" (Mn) category; retained
// characters inherit their source character's reference offset.
func StripAccents(token *offset.Token) {
	var out strings.Builder
	out.Grow(len(token.Text))
	refs := make([]uint32, 0, len(token.ReferenceOffsets))
	i := 0
	for _, r := range token.Text {
		pos := token.ReferenceOffsets[i]
		i++
		decomposed := norm.NFD.String(string(r))
		for _, c := range decomposed {
			if unicode.Is(unicode.Mn, c) {
				continue
			}
			out.WriteRune(c)
			refs = append(refs, pos)
		}
	}
	token.Text = out.String()
	token.ReferenceOffsets = refs
	token.Offset = offset.OffsetFromReferenceOffsets(refs)
}

// DecomposeNFKC applies NFKC normalization to token. golang.org/x/text/unicode/norm
// does not expose a per-character expansion count, so reference offsets are
// recovered by normalizing successive prefixes of the source and diffing
// their lengths against the full normalization: each newly emitted character
// inherits the reference offset of the source character whose prefix
// produced it, matching the original's "extra-character" bookkeeping in
// decompose_nfkc.
func DecomposeNFKC(token *offset.Token) {
	if len(token.Text) == 0 {
		return
	}
	srcRunes := []rune(token.Text)
	srcRefs := token.ReferenceOffsets
	normalizedFull := norm.NFKC.String(token.Text)

	var out strings.Builder
	out.Grow(len(normalizedFull))
	refs := make([]uint32, 0, len(srcRefs))

	prevNormLen := 0
	for srcIdx := 1; srcIdx <= len(srcRunes); srcIdx++ {
		normPrefix := norm.NFKC.String(string(srcRunes[:srcIdx]))
		end := len(normPrefix)
		if end > len(normalizedFull) {
			end = len(normalizedFull)
		}
		if end < prevNormLen {
			end = prevNormLen
		}
		segment := normalizedFull[prevNormLen:end]
		refPos := srcRefs[srcIdx-1]
		for _, c := range segment {
			out.WriteRune(c)
			refs = append(refs, refPos)
		}
		prevNormLen = end
	}
	if prevNormLen < len(normalizedFull) {
		tail := normalizedFull[prevNormLen:]
		lastRef := srcRefs[len(srcRefs)-1]
		for _, c := range tail {
			out.WriteRune(c)
			refs = append(refs, lastRef)
		}
	}

	token.Text = out.String()
	token.ReferenceOffsets = refs
	token.Offset = offset.OffsetFromReferenceOffsets(refs)
}

// ReplaceString replaces every occurrence of pattern in token.Text with
// replacement, keeping reference offsets aligned: every inserted character
// shares the first matched character's reference offset.
func ReplaceString(token *offset.Token, pattern, replacement string) {
	if pattern == "" || !strings.Contains(token.Text, pattern) {
		return
	}
	patternRuneLen := utf8RuneCountInString(pattern)
	replacementRunes := []rune(replacement)

	srcRunes := []rune(token.Text)
	srcRefs := token.ReferenceOffsets

	var out strings.Builder
	refs := make([]uint32, 0, len(srcRefs))

	i := 0
	for i < len(srcRunes) {
		if i+patternRuneLen <= len(srcRunes) && string(srcRunes[i:i+patternRuneLen]) == pattern {
			refPos := srcRefs[i]
			for _, c := range replacementRunes {
				out.WriteRune(c)
				refs = append(refs, refPos)
			}
			i += patternRuneLen
			continue
		}
		out.WriteRune(srcRunes[i])
		refs = append(refs, srcRefs[i])
		i++
	}

	token.Text = out.String()
	token.ReferenceOffsets = refs
	token.Offset = offset.OffsetFromReferenceOffsets(refs)
}

func utf8RuneCountInString(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
