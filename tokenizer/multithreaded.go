package tokenizer

import (
	"github.com/sourcegraph/conc/iter"

	"github.com/gomlx/go-tokenizers/pretokenize"
)

// EncodeListConcurrent is EncodeList, fanned out across a worker pool via
// sourcegraph/conc/iter.Map: each text is tokenized independently (the
// vocabulary and merge cache are read-only/lock-free, see vocab.BaseVocab
// and bpe.Cache), and results land back in input order. Per spec.md §5
// "data-parallel list operations preserving input order".
func EncodeListConcurrent(t Capability, texts []string, maxLen int, strategy pretokenize.TruncationStrategy, stride int) ([]TokenizedInput, error) {
	results := iter.Map(texts, func(text *string) encodeResult {
		encoded, err := Encode(t, *text, nil, maxLen, strategy, stride)
		return encodeResult{encoded: encoded, err: err}
	})
	out := make([]TokenizedInput, len(results))
	for i, r := range results {
		if r.err != nil {
			return nil, r.err
		}
		out[i] = r.encoded
	}
	return out, nil
}

type encodeResult struct {
	encoded TokenizedInput
	err     error
}

// DecodeListConcurrent is DecodeList, fanned out across a worker pool.
func DecodeListConcurrent(t Capability, idsList [][]int64, skipSpecialTokens, cleanUp bool) []string {
	return iter.Map(idsList, func(ids *[]int64) string {
		return Decode(t, *ids, skipSpecialTokens, cleanUp)
	})
}
