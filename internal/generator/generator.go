package generator

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// maxNewTokens caps the continuation length: total length is the input
// length plus this many sampled tokens.
const maxNewTokens = 60

// session is the model collaborator contract: one forward pass over a token
// sequence producing flat logits. The ONNX session is the production
// implementation; tests substitute a stub.
type session interface {
	logits(inputIDs, attentionMask []int64, batchSize, seqLen int64) ([]float32, error)
	close() error
}

// Generator wraps a pretrained causal language model and produces short
// natural-language continuations for root-cause prompts. The model and
// tokenizer are loaded once and are read-only afterwards; Generate calls are
// serialized so sampling state never leaks between unrelated requests.
type Generator struct {
	tok     *tokenizer
	sess    session
	sampler *sampler

	mu  sync.Mutex // serializes generation; also guards rng
	rng *rand.Rand
}

// New loads the tokenizer and ONNX model from a fixed checkpoint on disk.
// This is expensive and should happen once at process start.
func New(modelPath, vocabPath, mergesPath, libPath string) (*Generator, error) {
	tok, err := newTokenizer(vocabPath, mergesPath)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	sess, err := newONNXSession(modelPath, libPath)
	if err != nil {
		return nil, fmt.Errorf("generator: %w", err)
	}

	return &Generator{
		tok:     tok,
		sess:    sess,
		sampler: newSampler(),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Generate produces the reasoning continuation for a prompt. Only tokens past
// the original input length are decoded; the prompt itself is never part of
// the returned text. The context bounds total generation time and is checked
// between decode steps.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := g.tok.encode(prompt)
	if len(ids) == 0 {
		return "", fmt.Errorf("generator: prompt produced no tokens")
	}
	inputLen := len(ids)
	eos := g.tok.eosID()

	for len(ids) < inputLen+maxNewTokens {
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("generator: %w", ctx.Err())
		default:
		}

		seqLen := int64(len(ids))
		mask := onesMask(len(ids))

		out, err := g.sess.logits(ids, mask, 1, seqLen)
		if err != nil {
			return "", fmt.Errorf("generator: %w", err)
		}
		if int64(len(out)) == 0 || int64(len(out))%seqLen != 0 {
			return "", fmt.Errorf("generator: unexpected logits size %d for sequence length %d", len(out), seqLen)
		}

		vocabSize := int64(len(out)) / seqLen
		last := out[(seqLen-1)*vocabSize:]

		next := g.sampler.sample(last, g.rng)
		if next == eos {
			break
		}
		ids = append(ids, next)
	}

	return strings.TrimSpace(g.tok.decode(ids[inputLen:])), nil
}

// Ready reports whether the model session is loaded.
func (g *Generator) Ready() bool {
	return g != nil && g.sess != nil
}

// Close releases model resources.
func (g *Generator) Close() error {
	if g.sess != nil {
		return g.sess.close()
	}
	return nil
}

// onesMask builds a full-ones attention mask; the single-sequence case has
// no padding.
func onesMask(n int) []int64 {
	mask := make([]int64, n)
	for i := range mask {
		mask[i] = 1
	}
	return mask
}
