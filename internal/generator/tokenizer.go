package generator

import (
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

// pretokenPattern is GPT-2's pre-tokenization split, anchored for incremental
// matching. The original ends with `\s+(?!\S)|\s+`; RE2 has no lookahead, so
// the scanner below holds back the final whitespace rune of a run instead,
// letting it attach to the following token via the " ?" alternatives.
var pretokenPattern = regexp.MustCompile(`^('s|'t|'re|'ve|'m|'ll|'d| ?\p{L}+| ?\p{N}+| ?[^\s\p{L}\p{N}]+|\s+)`)

// tokenizer performs GPT-2 byte-level BPE encoding and decoding.
type tokenizer struct {
	vocab *vocab

	mu    sync.Mutex
	cache map[string][]string
}

func newTokenizer(vocabPath, mergesPath string) (*tokenizer, error) {
	v, err := loadVocab(vocabPath, mergesPath)
	if err != nil {
		return nil, err
	}
	return &tokenizer{vocab: v, cache: make(map[string][]string)}, nil
}

// encode converts text into an ordered sequence of token ids.
func (t *tokenizer) encode(text string) []int64 {
	var ids []int64
	for _, pretoken := range pretokenize(text) {
		word := bytesToAlphabet(pretoken)
		for _, sub := range t.bpe(word) {
			if id, ok := t.vocab.lookup(sub); ok {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// decode converts token ids back into text, skipping special tokens.
func (t *tokenizer) decode(ids []int64) string {
	var b strings.Builder
	for _, id := range ids {
		if id == t.vocab.eosID {
			continue
		}
		b.WriteString(t.vocab.token(id))
	}
	return alphabetToBytes(b.String())
}

func (t *tokenizer) eosID() int64 {
	return t.vocab.eosID
}

// bpe decomposes one pre-token (already mapped into the byte alphabet) into
// BPE subwords by repeatedly fusing the lowest-ranked adjacent pair.
func (t *tokenizer) bpe(word string) []string {
	t.mu.Lock()
	if cached, ok := t.cache[word]; ok {
		t.mu.Unlock()
		return cached
	}
	t.mu.Unlock()

	parts := make([]string, 0, utf8.RuneCountInString(word))
	for _, r := range word {
		parts = append(parts, string(r))
	}

	for len(parts) > 1 {
		bestRank := -1
		bestIdx := -1
		for i := 0; i < len(parts)-1; i++ {
			rank, ok := t.vocab.merges[mergePair{parts[i], parts[i+1]}]
			if ok && (bestRank == -1 || rank < bestRank) {
				bestRank = rank
				bestIdx = i
			}
		}
		if bestIdx == -1 {
			break
		}

		// Fuse every occurrence of the winning pair in one pass.
		left, right := parts[bestIdx], parts[bestIdx+1]
		merged := make([]string, 0, len(parts))
		for i := 0; i < len(parts); i++ {
			if i < len(parts)-1 && parts[i] == left && parts[i+1] == right {
				merged = append(merged, left+right)
				i++
			} else {
				merged = append(merged, parts[i])
			}
		}
		parts = merged
	}

	t.mu.Lock()
	t.cache[word] = parts
	t.mu.Unlock()
	return parts
}

// pretokenize splits text into GPT-2 pre-tokens: contractions, words and
// number runs with an optional leading space, punctuation runs, and
// whitespace runs.
func pretokenize(text string) []string {
	var tokens []string
	pos := 0
	for pos < len(text) {
		m := pretokenPattern.FindString(text[pos:])
		if m == "" {
			// Unmatchable rune (should not happen); skip it.
			_, sz := utf8.DecodeRuneInString(text[pos:])
			pos += sz
			continue
		}
		advance := len(m)
		if isAllWhitespace(m) && pos+len(m) < len(text) {
			// Hold back the trailing whitespace rune for the next token.
			_, sz := utf8.DecodeLastRuneInString(m)
			if len(m) > sz {
				m = m[:len(m)-sz]
				advance -= sz
			}
			// A lone non-space whitespace rune (e.g. "\n" before a word)
			// stands as its own token; nothing can absorb it.
		}
		tokens = append(tokens, m)
		pos += advance
	}
	return tokens
}

func isAllWhitespace(s string) bool {
	return strings.TrimSpace(s) == ""
}
