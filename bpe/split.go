package bpe

import (
	"github.com/gomlx/go-tokenizers/offset"
	"github.com/gomlx/go-tokenizers/vocab"
)

// MergeFunc is one of Bpe, CtrlBpe or OpenAIGptBpe: a merge algorithm that
// reduces a token's surface text to its final BPE symbols, alongside the
// character count each symbol covers.
type MergeFunc func(token string, bpeRanks *vocab.BpePairVocab) ([]string, []int)

// SplitOnBpePairs runs a byte-pair-encoding merge over token, optionally
// first re-encoding token.Text at the byte level (GPT-2/RoBERTa's
// BytesToUnicode convention). Results are memoized in cache by surface
// text. Grounded on split_on_bpe_pairs in the reference
// tokenization_utils.rs.
func SplitOnBpePairs(token offset.TokenRef, bpeFunction MergeFunc, bpeRanks *vocab.BpePairVocab, cache *Cache, asBytes bool) []offset.Token {
	var text string
	var referenceOffsets []uint32

	if asBytes {
		text = BytesToUnicode(token.Text)
		offsets := byteOffsets(token.Text)
		referenceOffsets = make([]uint32, len(offsets))
		for i, charIdx := range offsets {
			referenceOffsets[i] = token.ReferenceOffsets[charIdx]
		}
	} else {
		text = token.Text
		referenceOffsets = token.ReferenceOffsets
	}

	entry, cached := cache.get(text)
	if !cached {
		symbols, counts := bpeFunction(text, bpeRanks)
		entry = cacheEntry{symbols: symbols, counts: counts}
		cache.set(text, entry)
	}

	return buildTokens(entry, referenceOffsets, asBytes)
}

func buildTokens(entry cacheEntry, referenceOffsets []uint32, inexact bool) []offset.Token {
	tokens := make([]offset.Token, 0, len(entry.symbols))
	start := 0
	multi := len(entry.symbols) > 1
	for idx, sub := range entry.symbols {
		count := entry.counts[idx]
		refs := append([]uint32{}, referenceOffsets[start:start+count]...)

		mask := offset.None
		if multi {
			if idx == 0 {
				mask = offset.Begin
			} else {
				mask = offset.Continuation
			}
			// A byte-level re-encoding can place two adjacent pieces' boundary
			// inside what was originally a single multi-byte character: flag
			// that with the Inexact variant so downstream consumers know the
			// offset span is approximate rather than character-exact.
			if inexact && idx > 0 && referenceOffsets[start] == referenceOffsets[start-1] {
				if mask == offset.Begin {
					mask = offset.InexactBegin
				} else {
					mask = offset.InexactContinuation
				}
			}
		}

		tokens = append(tokens, offset.Token{
			Text:             sub,
			Offset:           offset.Offset{Begin: refs[0], End: refs[len(refs)-1] + 1},
			ReferenceOffsets: refs,
			Mask:             mask,
		})
		start += count
	}
	return tokens
}
