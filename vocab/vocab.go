// Package vocab defines the token-string <-> integer-id mappings used by
// every tokenizer family, along with their on-disk loaders. Vocabularies are
// built once and then treated as immutable; the only mutable shared state in
// this module lives in package bpe's merge cache.
package vocab

import (
	"bufio"
	"encoding/json"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// SpecialTokenMap names the special tokens a tokenizer may register. UnkToken
// is the only required field; every other field, including
// AdditionalSpecialTokens (used for language codes in M2M100/MBart50/NLLB),
// is optional.
type SpecialTokenMap struct {
	UnkToken                string   `json:"unk_token"`
	PadToken                string   `json:"pad_token,omitempty"`
	BosToken                string   `json:"bos_token,omitempty"`
	SepToken                string   `json:"sep_token,omitempty"`
	ClsToken                string   `json:"cls_token,omitempty"`
	EosToken                string   `json:"eos_token,omitempty"`
	MaskToken                string   `json:"mask_token,omitempty"`
	AdditionalSpecialTokens []string `json:"additional_special_tokens,omitempty"`
}

// nllbSpecialTokenMap models the NLLB variant of the special-token-mapping
// file, which nests mask_token under a sub-object (spec.md §6). The raw
// mask_token value is kept so that both the plain-string and the nested form
// can be read.
type nllbSpecialTokenMap struct {
	SpecialTokenMap
	MaskTokenRaw json.RawMessage `json:"mask_token,omitempty"`
}

// SpecialTokenMapFromJSONFile reads a special-token-mapping file as
// described in spec.md §6.
func SpecialTokenMapFromJSONFile(path string) (*SpecialTokenMap, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrFileNotFound, "reading special token map %q: %v", path, err)
	}
	m := &nllbSpecialTokenMap{}
	if err := json.Unmarshal(content, m); err != nil {
		return nil, errors.Wrapf(ErrVocabParsing, "parsing special token map %q: %v", path, err)
	}
	if len(m.MaskTokenRaw) > 0 {
		var nested struct {
			MaskToken string `json:"mask_token"`
		}
		if err := json.Unmarshal(m.MaskTokenRaw, &m.SpecialTokenMap.MaskToken); err != nil {
			if err := json.Unmarshal(m.MaskTokenRaw, &nested); err != nil {
				return nil, errors.Wrapf(ErrVocabParsing, "parsing mask_token in %q: %v", path, err)
			}
			m.SpecialTokenMap.MaskToken = nested.MaskToken
		}
	}
	if m.SpecialTokenMap.UnkToken == "" {
		return nil, errors.Wrapf(ErrVocabParsing, "special token map %q: missing required unk_token", path)
	}
	return &m.SpecialTokenMap, nil
}

// BaseVocab is the shared building block for every concrete vocabulary: a
// token-string -> id map, its reverse, and the subset of both that are
// registered special tokens.
type BaseVocab struct {
	Values         map[string]int64
	Indices        map[int64]string
	SpecialValues  map[string]int64
	SpecialIndices map[int64]string
	Special        SpecialTokenMap
}

// NewBaseVocab builds a BaseVocab from a values map and a special token map,
// registering every non-empty special token. It fails if UnkToken (or any
// other configured special token) is absent from values.
func NewBaseVocab(values map[string]int64, special SpecialTokenMap) (*BaseVocab, error) {
	v := &BaseVocab{
		Values:         values,
		Indices:        swapKeyValues(values),
		SpecialValues:  map[string]int64{},
		SpecialIndices: map[int64]string{},
		Special:        special,
	}
	candidates := append([]string{special.UnkToken, special.PadToken, special.BosToken,
		special.SepToken, special.ClsToken, special.EosToken, special.MaskToken},
		special.AdditionalSpecialTokens...)
	for _, tok := range candidates {
		if tok == "" {
			continue
		}
		if err := v.registerSpecial(tok); err != nil {
			return nil, err
		}
	}
	klog.V(2).Infof("vocab: built %d values, %d special tokens", len(v.Values), len(v.SpecialValues))
	return v, nil
}

func (v *BaseVocab) registerSpecial(token string) error {
	id, ok := v.Values[token]
	if !ok {
		return errors.Wrapf(ErrTokenNotFound, "special token %q", token)
	}
	v.SpecialValues[token] = id
	v.SpecialIndices[id] = token
	return nil
}

// Contains reports whether token is present in the vocabulary, satisfying
// wordpiece.Vocab.
func (v *BaseVocab) Contains(token string) bool {
	_, ok := v.Values[token]
	return ok
}

// TokenToID converts a token string to its id: special values take priority
// over the general vocabulary, and a miss resolves to the unknown id. Lookup
// never fails.
func (v *BaseVocab) TokenToID(token string) int64 {
	if id, ok := v.SpecialValues[token]; ok {
		return id
	}
	if id, ok := v.Values[token]; ok {
		return id
	}
	return v.Values[v.Special.UnkToken]
}

// IDToToken converts an id back to its token string, falling back to the
// unknown token string for unregistered ids.
func (v *BaseVocab) IDToToken(id int64) string {
	if tok, ok := v.SpecialIndices[id]; ok {
		return tok
	}
	if tok, ok := v.Indices[id]; ok {
		return tok
	}
	return v.Special.UnkToken
}

// UnknownID returns the id of the unknown token.
func (v *BaseVocab) UnknownID() int64 {
	return v.Values[v.Special.UnkToken]
}

// SpecialTokens returns every registered special token string, satisfying
// pretokenize.Vocab. The result is sorted by descending length then
// lexicographically, matching the deterministic tie-break
// split_on_special_tokens relies on for longest-match splitting.
func (v *BaseVocab) SpecialTokens() []string {
	out := make([]string, 0, len(v.SpecialValues))
	for tok := range v.SpecialValues {
		out = append(out, tok)
	}
	sortSpecialTokens(out)
	return out
}

// UnknownToken returns the unknown token string, satisfying
// pretokenize.Vocab.
func (v *BaseVocab) UnknownToken() string {
	return v.Special.UnkToken
}

// IsSpecial reports whether token is one of this vocabulary's registered
// special tokens, satisfying the tokenizer.Vocab contract used by
// skip-special-token decoding.
func (v *BaseVocab) IsSpecial(token string) bool {
	_, ok := v.SpecialValues[token]
	return ok
}

// sortSpecialTokens orders tokens by descending length then lexicographically,
// so callers doing greedy longest-match splitting see a deterministic order.
func sortSpecialTokens(tokens []string) {
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
}

// specialTokenSet collects every non-empty token named by a SpecialTokenMap
// into a membership set.
func specialTokenSet(s SpecialTokenMap) map[string]bool {
	set := map[string]bool{}
	for _, tok := range []string{s.UnkToken, s.PadToken, s.BosToken, s.SepToken, s.ClsToken, s.EosToken, s.MaskToken} {
		if tok != "" {
			set[tok] = true
		}
	}
	for _, tok := range s.AdditionalSpecialTokens {
		if tok != "" {
			set[tok] = true
		}
	}
	return set
}

func swapKeyValues(in map[string]int64) map[int64]string {
	out := make(map[int64]string, len(in))
	for k, v := range in {
		out[v] = k
	}
	return out
}

// FromFlatFile reads a flat vocabulary file: one token per line, the line
// number (0-based) is the id. This is the format used by BERT-style
// vocab.txt files.
func FromFlatFile(path string) (map[string]int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrFileNotFound, "%q: %v", path, err)
	}
	defer f.Close()
	return readFlatVocab(f, path)
}

func readFlatVocab(r io.Reader, path string) (map[string]int64, error) {
	values := map[string]int64{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	var idx int64
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n")
		values[line] = idx
		idx++
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(ErrVocabParsing, "%q: %v", path, err)
	}
	return values, nil
}

// FromJSONFile reads a JSON vocabulary file: a mapping of token string to
// id, as used by the BPE families (GPT-2, RoBERTa, ...).
func FromJSONFile(path string) (map[string]int64, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrFileNotFound, "%q: %v", path, err)
	}
	var values map[string]int64
	if err := json.Unmarshal(content, &values); err != nil {
		return nil, errors.Wrapf(ErrVocabParsing, "%q: %v", path, err)
	}
	return values, nil
}

// nllbTokenizerJSON models the nested shape of the NLLB tokenizer.json
// variant described in spec.md §6: a top-level "model" object holding the
// actual "vocab" mapping.
type nllbTokenizerJSON struct {
	Model struct {
		Vocab map[string]int64 `json:"vocab"`
	} `json:"model"`
}

// FromNLLBTokenizerJSON reads the nested `model.vocab` mapping used by the
// NLLB tokenizer.json variant.
func FromNLLBTokenizerJSON(path string) (map[string]int64, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(ErrFileNotFound, "%q: %v", path, err)
	}
	var doc nllbTokenizerJSON
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, errors.Wrapf(ErrVocabParsing, "%q: %v", path, err)
	}
	return doc.Model.Vocab, nil
}
