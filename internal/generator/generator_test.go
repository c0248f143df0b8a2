package generator

import (
	"context"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"time"
)

// scriptedSession replays a fixed sequence of next tokens by returning
// logits with a single dominant entry per forward pass.
type scriptedSession struct {
	script    []int64
	vocabSize int
	calls     int
	err       error
}

func (s *scriptedSession) logits(inputIDs, attentionMask []int64, batchSize, seqLen int64) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if int64(len(inputIDs)) != seqLen || int64(len(attentionMask)) != seqLen {
		return nil, errors.New("scripted session: shape mismatch")
	}
	for _, m := range attentionMask {
		if m != 1 {
			return nil, errors.New("scripted session: expected full-ones attention mask")
		}
	}

	next := s.script[len(s.script)-1]
	if s.calls < len(s.script) {
		next = s.script[s.calls]
	}
	s.calls++

	out := make([]float32, seqLen*int64(s.vocabSize))
	out[(seqLen-1)*int64(s.vocabSize)+next] = 100
	return out, nil
}

func (s *scriptedSession) close() error { return nil }

func testGenerator(t *testing.T, sess session) *Generator {
	t.Helper()
	return &Generator{
		tok:     fixtureTokenizer(t),
		sess:    sess,
		sampler: newSampler(),
		rng:     rand.New(rand.NewSource(1)),
	}
}

func TestGenerateDecodesOnlyContinuation(t *testing.T) {
	sess := &scriptedSession{
		script:    []int64{fixtureID(t, "Ġworld"), 0}, // continuation, then eos
		vocabSize: len(fixtureTokens),
	}
	g := testGenerator(t, sess)

	got, err := g.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "world" {
		t.Errorf("expected %q, got %q", "world", got)
	}
	if strings.HasPrefix(got, "hello") {
		t.Errorf("reasoning must not start with the prompt: %q", got)
	}
}

func TestGenerateStopsAtEOS(t *testing.T) {
	sess := &scriptedSession{
		script:    []int64{0}, // immediate eos
		vocabSize: len(fixtureTokens),
	}
	g := testGenerator(t, sess)

	got, err := g.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty continuation, got %q", got)
	}
	if sess.calls != 1 {
		t.Errorf("expected 1 forward pass, got %d", sess.calls)
	}
}

func TestGenerateRespectsMaxLength(t *testing.T) {
	// The model never emits eos; generation must cap at input length + 60.
	sess := &scriptedSession{
		script:    []int64{fixtureID(t, "!")},
		vocabSize: len(fixtureTokens),
	}
	g := testGenerator(t, sess)

	got, err := g.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != strings.Repeat("!", maxNewTokens) {
		t.Errorf("expected %d sampled tokens, got %q", maxNewTokens, got)
	}
	if sess.calls != maxNewTokens {
		t.Errorf("expected %d forward passes, got %d", maxNewTokens, sess.calls)
	}
}

func TestGeneratePropagatesModelFailure(t *testing.T) {
	sess := &scriptedSession{
		err:       errors.New("inference failed"),
		vocabSize: len(fixtureTokens),
	}
	g := testGenerator(t, sess)

	if _, err := g.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected model failure to propagate")
	}
}

func TestGenerateHonorsContext(t *testing.T) {
	sess := &scriptedSession{
		script:    []int64{fixtureID(t, "!")},
		vocabSize: len(fixtureTokens),
	}
	g := testGenerator(t, sess)

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	if _, err := g.Generate(ctx, "hello"); err == nil {
		t.Fatal("expected deadline error")
	}
}

func TestGenerateEmptyPrompt(t *testing.T) {
	sess := &scriptedSession{script: []int64{0}, vocabSize: len(fixtureTokens)}
	g := testGenerator(t, sess)

	// An empty string tokenizes to nothing; the generator refuses it rather
	// than running the model unconditioned.
	if _, err := g.Generate(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty prompt")
	}
}
