package pretokenize

import "unicode"

// These helpers centralize the stdlib unicode.Is(...) calls so constants.go
// reads like a direct transcription of the WHITESPACE_CHARS/CONTROL_CHARS/
// PUNCTUATION_CHARS tables in spec.md §4.1: no ecosystem library in the
// retrieved pack offers a richer categorization than Go's own unicode
// tables (golang.org/x/text builds on the same category data), so this is
// the one place this package leans on the standard library directly.
func isZs(r rune) bool              { return unicode.Is(unicode.Zs, r) }
func isControlCc(r rune) bool       { return unicode.IsControl(r) }
func isControlCategory(r rune) bool { return unicode.IsControl(r) }
func isPunctCategory(r rune) bool   { return unicode.IsPunct(r) }
