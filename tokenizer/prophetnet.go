package tokenizer

// ProphetNetTokenizer reuses the BERT WordPiece pipeline with its own
// build_input_with_special_tokens: "[SEP]"-only, no "[CLS]" (per the
// original's prophetnet_tokenizer test vectors).
type ProphetNetTokenizer struct {
	*BertTokenizer
}

func NewProphetNetTokenizer(b *BertTokenizer) *ProphetNetTokenizer {
	return &ProphetNetTokenizer{b}
}

func (t *ProphetNetTokenizer) BuildInputWithSpecialTokens(seq1 TokenIdsWithOffsets, seq2 *TokenIdsWithOffsets) TokenizedInput {
	b := &builder{}
	sep := t.V.TokenToID(t.V.Special.SepToken)
	b.sequence(seq1, 0)
	b.marker(sep, 0)
	if seq2 != nil {
		b.sequence(*seq2, 1)
		b.marker(sep, 1)
	}
	return b.build()
}
