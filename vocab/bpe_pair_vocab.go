package vocab

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// BpePair is an ordered pair of BPE symbols, used as a map key for merge
// ranks.
type BpePair struct {
	Left  string
	Right string
}

// BpePairVocab maps an ordered symbol pair to its merge rank: a lower rank
// means the pair merges earlier. Pairs absent from Values are treated as
// having infinite rank (never merged).
type BpePairVocab struct {
	Values map[BpePair]int
}

// Rank returns the merge rank for a pair, and whether it is present.
func (v *BpePairVocab) Rank(left, right string) (int, bool) {
	r, ok := v.Values[BpePair{Left: left, Right: right}]
	return r, ok
}

// BpePairVocabFromMergesFile reads a merges file: one "left right" pair per
// line, line order is the merge rank. A header line (one that does not
// split into exactly two fields) is skipped, matching the convention of
// GPT-2-style merges.txt files whose first line is "#version: 0.2".
func BpePairVocabFromMergesFile(path string) (*BpePairVocab, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrFileNotFound, "%q: %v", path, err)
	}
	defer f.Close()

	values := map[BpePair]int{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	rank := 0
	first := true
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 2 {
			if first {
				first = false
				continue
			}
			return nil, errors.Wrapf(ErrVocabParsing, "%q: malformed merge line %q", path, line)
		}
		first = false
		values[BpePair{Left: fields[0], Right: fields[1]}] = rank
		rank++
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(ErrVocabParsing, "%q: %v", path, err)
	}
	return &BpePairVocab{Values: values}, nil
}

// BpePairVocabFromJSONMerges builds a BpePairVocab from an already-parsed
// ordered list of "left right" merge strings, as embedded in a
// HuggingFace-style tokenizer.json `model.merges` array.
func BpePairVocabFromJSONMerges(merges []string) (*BpePairVocab, error) {
	values := make(map[BpePair]int, len(merges))
	for rank, merge := range merges {
		fields := strings.Fields(merge)
		if len(fields) != 2 {
			return nil, errors.Wrapf(ErrVocabParsing, "malformed merge entry %q", merge)
		}
		values[BpePair{Left: fields[0], Right: fields[1]}] = rank
	}
	return &BpePairVocab{Values: values}, nil
}
