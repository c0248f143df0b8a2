package generator

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// eosToken is both the end-of-sequence and pad token for GPT-2 style models.
const eosToken = "<|endoftext|>"

// mergePair is one BPE merge rule: two adjacent symbols that fuse into one.
type mergePair struct {
	left, right string
}

// vocab holds a GPT-2 byte-level BPE vocabulary: vocab.json maps token
// strings (in the byte-to-unicode alphabet) to ids, merges.txt lists merge
// rules in rank order.
type vocab struct {
	tokenToID map[string]int64
	idToToken map[int64]string
	merges    map[mergePair]int
	eosID     int64
}

// loadVocab reads vocab.json and merges.txt for a fixed pretrained checkpoint.
func loadVocab(vocabPath, mergesPath string) (*vocab, error) {
	data, err := os.ReadFile(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("vocab: %w", err)
	}

	var tokenToID map[string]int64
	if err := json.Unmarshal(data, &tokenToID); err != nil {
		return nil, fmt.Errorf("vocab: failed to parse %s: %w", vocabPath, err)
	}
	if len(tokenToID) == 0 {
		return nil, fmt.Errorf("vocab: file is empty: %s", vocabPath)
	}

	idToToken := make(map[int64]string, len(tokenToID))
	for tok, id := range tokenToID {
		idToToken[id] = tok
	}

	eosID, ok := tokenToID[eosToken]
	if !ok {
		return nil, fmt.Errorf("vocab: missing special token %s", eosToken)
	}

	merges, err := loadMerges(mergesPath)
	if err != nil {
		return nil, err
	}

	return &vocab{
		tokenToID: tokenToID,
		idToToken: idToToken,
		merges:    merges,
		eosID:     eosID,
	}, nil
}

// loadMerges reads merges.txt where each line holds one "left right" pair and
// the line order determines merge priority. A leading "#version" header line
// is skipped.
func loadMerges(path string) (map[mergePair]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("vocab: %w", err)
	}
	defer f.Close()

	merges := make(map[mergePair]int, 50000)
	rank := 0

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#version") {
			continue
		}
		parts := strings.SplitN(line, " ", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("vocab: malformed merge rule %q in %s", line, path)
		}
		merges[mergePair{parts[0], parts[1]}] = rank
		rank++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("vocab: read error: %w", err)
	}

	return merges, nil
}

// lookup returns the token id, reporting whether the token exists.
func (v *vocab) lookup(token string) (int64, bool) {
	id, ok := v.tokenToID[token]
	return id, ok
}

// token returns the token string for an id, or "" for unknown ids.
func (v *vocab) token(id int64) string {
	return v.idToToken[id]
}

// Byte-to-unicode alphabet. GPT-2 works on raw bytes but represents them as
// printable unicode characters so every byte sequence has a reversible string
// form. Printable latin bytes map to themselves; the rest are shifted past
// U+0100.
var (
	byteEncoder [256]rune
	byteDecoder map[rune]byte
)

func init() {
	byteDecoder = make(map[rune]byte, 256)
	printable := func(b int) bool {
		return (b >= '!' && b <= '~') || (b >= 0xA1 && b <= 0xAC) || (b >= 0xAE && b <= 0xFF)
	}
	shift := 0
	for b := 0; b < 256; b++ {
		var r rune
		if printable(b) {
			r = rune(b)
		} else {
			r = rune(256 + shift)
			shift++
		}
		byteEncoder[b] = r
		byteDecoder[r] = byte(b)
	}
}

// bytesToAlphabet maps a UTF-8 string into the BPE alphabet.
func bytesToAlphabet(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		b.WriteRune(byteEncoder[s[i]])
	}
	return b.String()
}

// alphabetToBytes reverses bytesToAlphabet. Runes outside the alphabet are
// dropped.
func alphabetToBytes(s string) string {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := byteDecoder[r]; ok {
			out = append(out, b)
		}
	}
	return string(out)
}
