package tokenizer

import "github.com/gomlx/go-tokenizers/offset"

// builder accumulates the parallel vectors of a TokenizedInput as markers
// and encoded sequences are appended in order.
type builder struct {
	out TokenizedInput
}

// marker appends a single inserted special-token id with no surface offset,
// per spec.md §4.6: "inserted markers contribute None to token_offsets,
// empty vectors to reference_offsets, Special to mask, and 1 to
// special_tokens_mask."
func (b *builder) marker(id int64, segment int8) {
	b.out.TokenIDs = append(b.out.TokenIDs, id)
	b.out.SegmentIDs = append(b.out.SegmentIDs, segment)
	b.out.SpecialTokensMask = append(b.out.SpecialTokensMask, 1)
	b.out.TokenOffsets = append(b.out.TokenOffsets, nil)
	b.out.ReferenceOffsets = append(b.out.ReferenceOffsets, nil)
	b.out.Mask = append(b.out.Mask, offset.Special)
}

// sequence appends every entry of seq, tagged with the given segment id.
func (b *builder) sequence(seq TokenIdsWithOffsets, segment int8) {
	b.out.TokenIDs = append(b.out.TokenIDs, seq.Ids...)
	b.out.TokenOffsets = append(b.out.TokenOffsets, seq.Offsets...)
	b.out.ReferenceOffsets = append(b.out.ReferenceOffsets, seq.ReferenceOffsets...)
	b.out.Mask = append(b.out.Mask, seq.Masks...)
	for range seq.Ids {
		b.out.SegmentIDs = append(b.out.SegmentIDs, segment)
		b.out.SpecialTokensMask = append(b.out.SpecialTokensMask, 0)
	}
}

func (b *builder) build() TokenizedInput { return b.out }
