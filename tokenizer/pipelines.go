package tokenizer

import (
	"github.com/gomlx/go-tokenizers/offset"
	"github.com/gomlx/go-tokenizers/pretokenize"
)

// specialVocab adapts a *vocab.BaseVocab (or anything with the same shape)
// to pretokenize.Vocab.
type specialVocab interface {
	SpecialTokens() []string
	UnknownToken() string
}

// baseTokenizerSplit implements the shared "BaseTokenizer" pre-tokenization
// pipeline used by BERT and its relatives: whitespace -> special ->
// punctuation -> CJK -> clean_text -> optional lowercase -> optional
// strip-accents. Per spec.md §4.7.
func baseTokenizerSplit(initial offset.TokenRef, vocab specialVocab, lowercase, stripAccents bool) []offset.Token {
	var refs []offset.TokenRef
	for _, ws := range pretokenize.WhitespaceTokenize(initial) {
		refs = append(refs, pretokenize.SplitOnSpecialTokens(ws, vocab)...)
	}
	var punctSplit []offset.TokenRef
	for _, ref := range refs {
		if ref.Mask == offset.Special || ref.Mask == offset.Unknown {
			punctSplit = append(punctSplit, ref)
			continue
		}
		punctSplit = append(punctSplit, pretokenize.SplitOnPunct(ref)...)
	}
	var cjkSplit []offset.TokenRef
	for _, ref := range punctSplit {
		if ref.Mask == offset.Special || ref.Mask == offset.Unknown {
			cjkSplit = append(cjkSplit, ref)
			continue
		}
		cjkSplit = append(cjkSplit, pretokenize.TokenizeCJKChars(ref)...)
	}

	out := make([]offset.Token, 0, len(cjkSplit))
	for _, ref := range cjkSplit {
		tok := ref.ToOwned()
		if ref.Mask != offset.Special && ref.Mask != offset.Unknown {
			pretokenize.CleanText(&tok, true)
			if lowercase {
				pretokenize.Lowercase(&tok)
			}
			if stripAccents {
				pretokenize.StripAccents(&tok)
			}
		}
		out = append(out, tok)
	}
	return out
}

// sentencePiecePrepare implements the shared normalization pipeline for the
// SentencePiece-unigram family of tokenizers (ALBERT, FNet, XLNet, T5,
// Pegasus, DeBERTa-v2): clean_text -> decompose_nfkc -> optional lowercase
// -> optional strip-accents -> replace whitespace with the metaspace marker
// -> ensure a leading metaspace marker. Per spec.md §4.7.
func sentencePiecePrepare(initial offset.TokenRef, lowercase, stripAccents bool) offset.Token {
	tok := initial.ToOwned()
	pretokenize.CleanText(&tok, false)
	pretokenize.DecomposeNFKC(&tok)
	if lowercase {
		pretokenize.Lowercase(&tok)
	}
	if stripAccents {
		pretokenize.StripAccents(&tok)
	}
	pretokenize.ReplaceString(&tok, " ", string(pretokenize.MetaspaceMarker))
	if len(tok.Text) == 0 || []rune(tok.Text)[0] != pretokenize.MetaspaceMarker {
		newText := string(pretokenize.MetaspaceMarker) + tok.Text
		newRefs := make([]uint32, 0, len(tok.ReferenceOffsets)+1)
		firstRef := uint32(0)
		if len(tok.ReferenceOffsets) > 0 {
			firstRef = tok.ReferenceOffsets[0]
		}
		newRefs = append(newRefs, firstRef)
		newRefs = append(newRefs, tok.ReferenceOffsets...)
		tok.Text = newText
		tok.ReferenceOffsets = newRefs
		tok.Offset = offset.OffsetFromReferenceOffsets(newRefs)
	}
	return tok
}

// postProcessUnigramPieces re-splits a trailing comma off any piece that
// ends in ',' preceded by an ASCII digit, per ALBERT/DeBERTa-v2's "post
// process pieces" step in spec.md §4.7.
func postProcessUnigramPieces(pieces []offset.Token, retokenize func(offset.TokenRef) []offset.Token) []offset.Token {
	var out []offset.Token
	for _, piece := range pieces {
		text := piece.Text
		if len(text) >= 2 && text[len(text)-1] == ',' {
			prev := text[len(text)-2]
			if prev >= '0' && prev <= '9' {
				refs := piece.ReferenceOffsets
				bodyRefs := refs[:len(refs)-1]
				body := text[:len(text)-1]
				bodyRef := offset.TokenRef{
					Text:             body,
					Offset:           offset.OffsetFromReferenceOffsets(bodyRefs),
					ReferenceOffsets: bodyRefs,
					Mask:             offset.None,
				}
				retokenized := retokenize(bodyRef)
				out = append(out, retokenized...)
				out = append(out, offset.Token{
					Text:             ",",
					Offset:           offset.OffsetFromReferenceOffsets(refs[len(refs)-1:]),
					ReferenceOffsets: refs[len(refs)-1:],
					Mask:             offset.Continuation,
				})
				continue
			}
		}
		out = append(out, piece)
	}
	return out
}
