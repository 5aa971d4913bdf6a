// Package unigram implements the SentencePiece-unigram subword engine: a
// trie over scored vocabulary pieces, decoded with a forward Viterbi pass
// and a backward best-path walk. Grounded on SentencePieceModel in the
// reference sentence_piece_unigram_model.rs.
package unigram

import "github.com/gomlx/go-tokenizers/vocab"

// trieNode is one node of the prefix trie: text is the full piece text
// this node represents (from the trie root), end marks whether a
// vocabulary piece actually ends here (as opposed to being a prefix of a
// longer piece with no entry of its own).
type trieNode struct {
	text     string
	len      int // rune count of text
	score    float32
	index    int64
	end      bool
	children map[rune]*trieNode
}

func newTrieNode(text string) *trieNode {
	return &trieNode{text: text, len: runeCount(text), children: make(map[rune]*trieNode)}
}

func runeCount(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}

// Model is the SentencePiece-unigram vocabulary: a trie of scored pieces
// supporting common-prefix search.
type Model struct {
	root *trieNode
}

// NewModel builds a Model from a SentencePiece vocabulary's scored pieces,
// indexed by their position in the model file.
func NewModel(entries []vocab.SentencePieceEntry) *Model {
	m := &Model{root: newTrieNode("")}
	for _, e := range entries {
		m.insert(e.Piece, e.Score, e.ID)
	}
	return m
}

func (m *Model) insert(word string, score float32, index int64) {
	charCount := runeCount(word)
	node := m.root
	idx := 0
	for _, r := range word {
		child, ok := node.children[r]
		if !ok {
			child = newTrieNode(node.text + string(r))
			node.children[r] = child
		}
		node = child
		if idx == charCount-1 {
			node.end = true
			node.score = score
			node.index = index
		}
		idx++
	}
}

// commonPrefixSearch returns, in trie order, every trie node along text's
// leading character path that is itself a complete vocabulary piece.
func (m *Model) commonPrefixSearch(text string) []*trieNode {
	var results []*trieNode
	runes := []rune(text)
	if len(runes) == 0 {
		return results
	}
	node, ok := m.root.children[runes[0]]
	if !ok {
		return results
	}
	if node.end {
		results = append(results, node)
	}
	for _, r := range runes[1:] {
		child, ok := node.children[r]
		if !ok {
			break
		}
		node = child
		if node.end {
			results = append(results, node)
		}
	}
	return results
}
