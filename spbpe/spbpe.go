// Package spbpe implements the SentencePiece-BPE subword engine: a
// doubly-linked symbol list merged via a priority queue of candidate pairs,
// ranked by merge rank (lower merges first) with a left-index tiebreak.
// Grounded on SentencePieceBpeModel in the reference
// sentence_piece_bpe_model.rs.
package spbpe

import (
	"container/heap"

	"github.com/gomlx/go-tokenizers/offset"
	"github.com/gomlx/go-tokenizers/pretokenize"
	"github.com/gomlx/go-tokenizers/vocab"
)

// Model performs SentencePiece-BPE decomposition against a rank vocabulary
// (lower rank merges earlier).
type Model struct {
	bpeRanks *vocab.BpeMergeVocab
}

// NewModel builds a Model from a SentencePiece-BPE merge-rank vocabulary.
func NewModel(bpeRanks *vocab.BpeMergeVocab) *Model {
	return &Model{bpeRanks: bpeRanks}
}

// symbol is one node of the doubly-linked symbol list being merged; prev/
// next are indices into the backing slice, or -1 at either end. A merged-
// away symbol is represented by alive == false.
type symbol struct {
	startByte, endByte     int
	startOffset, endOffset int
	prev, next             int
	size                   int
	alive                  bool
}

type symbolList struct {
	symbols []symbol
}

func newSymbolList(token offset.TokenRef) *symbolList {
	var syms []symbol
	index := 0
	runeTotal := len(token.ReferenceOffsets)
	for byteIdx, r := range token.Text {
		next := index + 1
		if index == runeTotal-1 {
			next = -1
		}
		syms = append(syms, symbol{
			startByte: byteIdx, endByte: byteIdx + len(string(r)),
			startOffset: index, endOffset: index + 1,
			prev: index - 1, next: next,
			size: 1, alive: true,
		})
		index++
	}
	return &symbolList{symbols: syms}
}

func (l *symbolList) len() int { return len(l.symbols) }

func (l *symbolList) get(i int) (symbol, bool) {
	if i < 0 || i >= len(l.symbols) || !l.symbols[i].alive {
		return symbol{}, false
	}
	return l.symbols[i], true
}

// mergeSymbols merges symbols at index1 and index2 (index1 must precede
// index2), validating that their combined size matches sizeValidation (a
// stale-pair guard: a symbol may have already grown via an earlier merge
// since this pair was queued). Returns the merged symbol and true on
// success.
func (l *symbolList) mergeSymbols(index1, index2, sizeValidation int) (symbol, bool) {
	left, ok1 := l.get(index1)
	right, ok2 := l.get(index2)
	if !ok1 || !ok2 {
		return symbol{}, false
	}
	if left.size+right.size != sizeValidation {
		return symbol{}, false
	}
	if right.next != -1 {
		l.symbols[right.next].prev = index1
	}
	merged := symbol{
		startByte: left.startByte, endByte: right.endByte,
		startOffset: left.startOffset, endOffset: right.endOffset,
		prev: left.prev, next: right.next,
		size: left.size + right.size, alive: true,
	}
	l.symbols[index2].alive = false
	l.symbols[index1] = merged
	return merged, true
}

// symbolPair is a candidate merge, ordered by ascending score (merge rank)
// with ties broken by ascending left index -- both directions implemented
// via container/heap's min-heap convention (Less reports true for the
// higher-priority element).
type symbolPair struct {
	left, right int
	score       int64
	pairSize    int
}

type pairAgenda []symbolPair

func (a pairAgenda) Len() int { return len(a) }
func (a pairAgenda) Less(i, j int) bool {
	if a[i].score != a[j].score {
		return a[i].score < a[j].score
	}
	return a[i].left < a[j].left
}
func (a pairAgenda) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a *pairAgenda) Push(x any)        { *a = append(*a, x.(symbolPair)) }
func (a *pairAgenda) Pop() any {
	old := *a
	n := len(old)
	item := old[n-1]
	*a = old[:n-1]
	return item
}

func (m *Model) maybeAddPair(leftIndex, rightIndex int, inputText string, symbols *symbolList, agenda *pairAgenda) {
	if leftIndex == -1 || rightIndex == -1 {
		return
	}
	left, ok1 := symbols.get(leftIndex)
	right, ok2 := symbols.get(rightIndex)
	if !ok1 || !ok2 {
		return
	}
	mergedText := inputText[left.startByte:right.endByte]
	if rank, ok := m.bpeRanks.Rank(mergedText); ok {
		heap.Push(agenda, symbolPair{left: leftIndex, right: rightIndex, score: rank, pairSize: left.size + right.size})
	}
}

// TokenizeToTokens decomposes initialToken into its SentencePiece-BPE
// pieces. A token already marked Mask.Special or Mask.Unknown is passed
// through unchanged (special tokens and unknown-byte-fallback markers are
// never re-segmented).
func (m *Model) TokenizeToTokens(initialToken offset.TokenRef) []offset.Token {
	var subTokens []offset.Token
	if initialToken.Mask != offset.Special && initialToken.Mask != offset.Unknown {
		agenda := &pairAgenda{}
		heap.Init(agenda)
		symbols := newSymbolList(initialToken)

		for i := 1; i < symbols.len(); i++ {
			m.maybeAddPair(i-1, i, initialToken.Text, symbols, agenda)
		}

		for agenda.Len() > 0 {
			pair := heap.Pop(agenda).(symbolPair)
			if pair.left == -1 || pair.right == -1 {
				continue
			}
			merged, ok := symbols.mergeSymbols(pair.left, pair.right, pair.pairSize)
			if ok {
				m.maybeAddPair(merged.prev, pair.left, initialToken.Text, symbols, agenda)
				m.maybeAddPair(pair.left, merged.next, initialToken.Text, symbols, agenda)
			}
		}

		for _, s := range symbols.symbols {
			if !s.alive {
				continue
			}
			subTokens = append(subTokens, offset.Token{
				Text: initialToken.Text[s.startByte:s.endByte],
				Offset: offset.Offset{
					Begin: initialToken.Offset.Begin + uint32(s.startOffset),
					End:   initialToken.Offset.Begin + uint32(s.endOffset),
				},
				ReferenceOffsets: append([]uint32{}, initialToken.ReferenceOffsets[s.startOffset:s.endOffset]...),
				Mask:             offset.None,
			})
		}
	} else {
		subTokens = append(subTokens, initialToken.ToOwned())
	}
	m.populateMasks(subTokens, pretokenize.MetaspaceMarker)
	return subTokens
}

// populateMasks mirrors unigram's mask population exactly (both engines
// use the same SentencePiece convention for marking punctuation,
// whitespace and continuation pieces).
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

func runeCount(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func startsWithRune(s string, r rune) bool {
	return firstRune(s) == r
}
