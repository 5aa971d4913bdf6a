package bpe

import (
	"strings"

	"github.com/gomlx/go-tokenizers/vocab"
)

// pair is an adjacent symbol pair candidate for merging.
type pair struct {
	left, right string
}

func getPairs(symbols []string) map[pair]bool {
	if len(symbols) < 2 {
		return nil
	}
	out := make(map[pair]bool, len(symbols))
	for i := 0; i < len(symbols)-1; i++ {
		out[pair{symbols[i], symbols[i+1]}] = true
	}
	return out
}

// groupCommonPairs merges the single lowest-ranked adjacent pair across
// symbols, once. The returned bool is true when no further merge is
// possible (no pairs left, or the lowest-ranked pair is not in bpeRanks).
func groupCommonPairs(symbols []string, bpeRanks *vocab.BpePairVocab) ([]string, bool) {
	pairs := getPairs(symbols)
	if pairs == nil {
		return symbols, true
	}

	bestRank := int(^uint(0) >> 1) // max int
	var best pair
	found := false
	for p := range pairs {
		if rank, ok := bpeRanks.Rank(p.left, p.right); ok {
			if rank < bestRank {
				bestRank = rank
				best = p
				found = true
			}
		}
	}
	if !found {
		return symbols, true
	}

	merged := make([]string, 0, len(symbols))
	i := 0
	for i < len(symbols) {
		j := indexOf(symbols, best.left, i)
		if j < 0 {
			merged = append(merged, symbols[i:]...)
			break
		}
		merged = append(merged, symbols[i:j]...)
		i = j
		if symbols[i] == best.left && i < len(symbols)-1 {
			if symbols[i+1] == best.right {
				merged = append(merged, best.left+best.right)
				i += 2
			} else {
				merged = append(merged, best.left)
				i++
			}
		} else {
			merged = append(merged, best.left)
			i++
		}
	}

	if len(merged) == 1 {
		return merged, true
	}
	return merged, false
}

func indexOf(symbols []string, target string, from int) int {
	for i := from; i < len(symbols); i++ {
		if symbols[i] == target {
			return i
		}
	}
	return -1
}

// Bpe is the default byte-level BPE merge function used by RoBERTa/GPT-2:
// it starts from one symbol per character (no end-of-word marker) and
// greedily merges the lowest-ranked adjacent pair until none remain.
func Bpe(token string, bpeRanks *vocab.BpePairVocab) ([]string, []int) {
	symbols := splitChars(token)
	for {
		var done bool
		symbols, done = groupCommonPairs(symbols, bpeRanks)
		if done {
			break
		}
	}
	counts := make([]int, len(symbols))
	for i, s := range symbols {
		counts[i] = runeCount(s)
	}
	return symbols, counts
}

// OpenAIGptBpe is like Bpe, but appends the end-of-word marker "</w>" to
// the final character before merging; the marker is stripped from the
// reported character counts once merging completes (OpenAI-GPT vocab
// entries keep the literal "</w>" suffix on the final merged piece).
func OpenAIGptBpe(token string, bpeRanks *vocab.BpePairVocab) ([]string, []int) {
	symbols := splitChars(token)
	if len(symbols) > 0 {
		symbols[len(symbols)-1] += "</w>"
	}
	for {
		var done bool
		symbols, done = groupCommonPairs(symbols, bpeRanks)
		if done {
			break
		}
	}
	counts := make([]int, len(symbols))
	for i, s := range symbols {
		counts[i] = runeCount(strings.TrimSuffix(s, "</w>"))
	}
	return symbols, counts
}

// CtrlBpe is like OpenAIGptBpe, but additionally appends "@@" to every
// merged piece except the last (CTRL's continuation marker) and strips the
// "</w>" marker from the final piece's text (not just its reported count).
func CtrlBpe(token string, bpeRanks *vocab.BpePairVocab) ([]string, []int) {
	symbols := splitChars(token)
	if len(symbols) > 0 {
		symbols[len(symbols)-1] += "</w>"
	}
	for {
		var done bool
		symbols, done = groupCommonPairs(symbols, bpeRanks)
		if done {
			break
		}
	}
	length := len(symbols)
	for i := range symbols {
		switch {
		case i < length-1:
			symbols[i] += "@@"
		case i == length-1:
			symbols[i] = strings.TrimSuffix(symbols[i], "</w>")
		}
	}
	counts := make([]int, len(symbols))
	for i, s := range symbols {
		counts[i] = runeCount(strings.TrimSuffix(s, "@@"))
	}
	return symbols, counts
}

func splitChars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func runeCount(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
