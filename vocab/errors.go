package vocab

import "github.com/pkg/errors"

// Sentinel errors for the vocabulary error taxonomy (spec §7): callers can
// test against these with errors.Is even though every occurrence is wrapped
// with contextual detail via pkg/errors.
var (
	// ErrFileNotFound is returned when a vocabulary artifact is missing or
	// unreadable.
	ErrFileNotFound = errors.New("vocabulary file not found")
	// ErrVocabParsing is returned when a vocabulary artifact is malformed.
	ErrVocabParsing = errors.New("vocabulary parsing error")
	// ErrTokenNotFound is returned when a registered special token is absent
	// from the vocabulary at construction time.
	ErrTokenNotFound = errors.New("special token not found in vocabulary")
)
