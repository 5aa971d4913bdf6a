// Package bpe implements the merge-rank byte-pair-encoding engine shared by
// CTRL, GPT, GPT-2, RoBERTa and the other byte/char-level BPE tokenizer
// families: grounded on group_common_pairs/ctrl_bpe/openai_gpt_bpe/bpe and
// split_on_bpe_pairs in the reference tokenization_utils.rs, with the
// byte-to-unicode table following the gomlx-go-huggingface hftokenizer's
// GPT-2 byte-level mapping.
package bpe

var byteToUnicode [256]rune
var unicodeToByte map[rune]byte

func init() {
	unicodeToByte = make(map[rune]byte, 256)
	n := 0
	for b := 0; b < 256; b++ {
		if (b >= '!' && b <= '~') || (b >= 0xa1 && b <= 0xac) || (b >= 0xae && b <= 0xff) {
			byteToUnicode[b] = rune(b)
		} else {
			byteToUnicode[b] = rune(256 + n)
			n++
		}
		unicodeToByte[byteToUnicode[b]] = byte(b)
	}
}

// BytesToUnicode maps each byte of s to its GPT-2 byte-level unicode
// codepoint, producing the surface form byte-level BPE merges operate on.
func BytesToUnicode(s string) string {
	runes := make([]rune, 0, len(s))
	for i := 0; i < len(s); i++ {
		runes = append(runes, byteToUnicode[s[i]])
	}
	return string(runes)
}

// UnicodeToBytes inverts BytesToUnicode, recovering the original bytes from
// a byte-level-encoded surface string. Characters absent from the mapping
// (should not occur for correctly byte-level-encoded input) are copied
// through verbatim as their UTF-8 encoding.
func UnicodeToBytes(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := unicodeToByte[r]; ok {
			out = append(out, b)
		} else {
			out = append(out, []byte(string(r))...)
		}
	}
	return out
}

// byteOffsets returns, for each byte of text, the index of the rune (not
// byte) that produced it -- used to expand per-character reference offsets
// to per-byte reference offsets ahead of a byte-level BPE merge pass.
func byteOffsets(text string) []int {
	offsets := make([]int, 0, len(text))
	charIdx := 0
	for _, r := range text {
		n := len(string(r))
		for i := 0; i < n; i++ {
			offsets = append(offsets, charIdx)
		}
		charIdx++
	}
	return offsets
}
