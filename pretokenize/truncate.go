package pretokenize

import (
	"github.com/pkg/errors"

	"github.com/gomlx/go-tokenizers/offset"
)

// TruncationStrategy selects how TruncateSequences removes tokens from one
// or two sequences to fit a maximum length.
type TruncationStrategy int

const (
	// LongestFirst truncates whichever of the two sequences is currently
	// longer, one token at a time, until enough tokens have been removed.
	LongestFirst TruncationStrategy = iota
	// OnlyFirst truncates only the first sequence.
	OnlyFirst
	// OnlySecond truncates only the second sequence.
	OnlySecond
	// DoNotTruncate disables truncation; TruncateSequences errors if any
	// truncation is required.
	DoNotTruncate
)

// TokenIdsWithOffsets is one sequence mid-encoding: parallel ids/offsets/
// referenceOffsets/masks slices, all the same length as Ids.
type TokenIdsWithOffsets struct {
	Ids              []int64
	Offsets          []*offset.Offset
	ReferenceOffsets [][]uint32
	Masks            []offset.Mask
}

func (t *TokenIdsWithOffsets) len() int { return len(t.Ids) }

// ErrTruncation is returned by TruncateSequences when the requested
// truncation cannot be satisfied by the given strategy (e.g. asking to
// remove more tokens than a sequence has, or passing DoNotTruncate when
// truncation is actually needed).
var ErrTruncation = errors.New("truncation error")

// TruncateSequences removes numTokensToRemove tokens total from seq1 (and,
// if present, seq2) according to strategy, returning the resulting
// sequences plus the removed "overflow" ids/offsets — with stride trailing
// tokens from the retained sequence re-prepended to the overflow so callers
// can build overlapping follow-up windows. Grounded on the original's
// truncate_sequences / truncate_with_overflow.
func TruncateSequences(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets, numTokensToRemove int, strategy TruncationStrategy, stride int) (TokenIdsWithOffsets, *TokenIdsWithOffsets, []int64, []*offset.Offset, error) {
	if numTokensToRemove == 0 {
		return seq1, seq2, nil, nil, nil
	}

	if seq2 != nil {
		switch strategy {
		case LongestFirst:
			if seq1.len()+seq2.len() < numTokensToRemove {
				return seq1, seq2, nil, nil, errors.Wrap(ErrTruncation, "combined sequence length too short for requested truncation amount")
			}
			var overflowTokens []int64
			var overflowOffsets []*offset.Offset
			for i := 0; i < numTokensToRemove; i++ {
				if seq1.len() >= seq2.len() {
					n := seq1.len()
					overflowTokens = append([]int64{seq1.Ids[n-1]}, overflowTokens...)
					if len(seq1.Offsets) > 0 {
						overflowOffsets = append([]*offset.Offset{seq1.Offsets[n-1]}, overflowOffsets...)
						seq1.Offsets = seq1.Offsets[:n-1]
					}
					seq1.Ids = seq1.Ids[:n-1]
					if len(seq1.ReferenceOffsets) > 0 {
						seq1.ReferenceOffsets = seq1.ReferenceOffsets[:n-1]
					}
					if len(seq1.Masks) > 0 {
						seq1.Masks = seq1.Masks[:n-1]
					}
				} else {
					n := seq2.len()
					overflowTokens = append([]int64{seq2.Ids[n-1]}, overflowTokens...)
					if len(seq2.Offsets) > 0 {
						overflowOffsets = append([]*offset.Offset{seq2.Offsets[n-1]}, overflowOffsets...)
						seq2.Offsets = seq2.Offsets[:n-1]
					}
					seq2.Ids = seq2.Ids[:n-1]
					if len(seq2.ReferenceOffsets) > 0 {
						seq2.ReferenceOffsets = seq2.ReferenceOffsets[:n-1]
					}
					if len(seq2.Masks) > 0 {
						seq2.Masks = seq2.Masks[:n-1]
					}
				}
			}
			windowLen := minInt(seq1.len(), stride)
			if windowLen > 0 {
				overflowTokens = append(append([]int64{}, seq1.Ids[seq1.len()-windowLen:]...), overflowTokens...)
				if len(seq1.Offsets) > 0 {
					overflowOffsets = append(append([]*offset.Offset{}, seq1.Offsets[len(seq1.Offsets)-windowLen:]...), overflowOffsets...)
				}
			}
			return seq1, seq2, overflowTokens, overflowOffsets, nil

		case OnlyFirst:
			if seq1.len() < numTokensToRemove {
				return seq1, seq2, nil, nil, errors.Wrap(ErrTruncation, "first sequence too short for first-only truncation")
			}
			overflowTokens, overflowOffsets := truncateWithOverflow(&seq1, numTokensToRemove, stride)
			return seq1, seq2, overflowTokens, overflowOffsets, nil

		case OnlySecond:
			if seq2.len() < numTokensToRemove {
				return seq1, seq2, nil, nil, errors.Wrap(ErrTruncation, "second sequence too short for second-only truncation")
			}
			overflowTokens, overflowOffsets := truncateWithOverflow(seq2, numTokensToRemove, stride)
			return seq1, seq2, overflowTokens, overflowOffsets, nil

		default: // DoNotTruncate
			return seq1, seq2, nil, nil, errors.Wrap(ErrTruncation, "truncation needed but no truncation requested")
		}
	}

	if seq1.len() < numTokensToRemove {
		return seq1, seq2, nil, nil, errors.Wrap(ErrTruncation, "first sequence too short for requested truncation amount")
	}
	switch strategy {
	case LongestFirst, OnlyFirst:
		overflowTokens, overflowOffsets := truncateWithOverflow(&seq1, numTokensToRemove, stride)
		return seq1, seq2, overflowTokens, overflowOffsets, nil
	case OnlySecond:
		return seq1, seq2, nil, nil, errors.Wrap(ErrTruncation, "invalid truncation strategy for single-sequence truncation")
	default:
		return seq1, seq2, nil, nil, errors.Wrap(ErrTruncation, "truncation needed but no truncation requested")
	}
}

func truncateWithOverflow(seq *TokenIdsWithOffsets, numTokensToRemove, stride int) ([]int64, []*offset.Offset) {
	cutoff := seq.len() - numTokensToRemove
	overflowTokens := append([]int64{}, seq.Ids[cutoff:]...)
	seq.Ids = seq.Ids[:cutoff]

	var overflowOffsets []*offset.Offset
	if len(seq.Offsets) > 0 {
		overflowOffsets = append([]*offset.Offset{}, seq.Offsets[cutoff:]...)
		seq.Offsets = seq.Offsets[:cutoff]
	}
	if len(seq.Masks) > 0 {
		seq.Masks = seq.Masks[:cutoff]
		seq.ReferenceOffsets = seq.ReferenceOffsets[:cutoff]
	}

	windowLen := minInt(seq.len(), stride)
	if windowLen > 0 {
		window := append([]int64{}, seq.Ids[seq.len()-windowLen:]...)
		overflowTokens = append(window, overflowTokens...)
		if len(seq.Offsets) > 0 {
			offWindow := append([]*offset.Offset{}, seq.Offsets[len(seq.Offsets)-windowLen:]...)
			overflowOffsets = append(offWindow, overflowOffsets...)
		}
	}
	return overflowTokens, overflowOffsets
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
