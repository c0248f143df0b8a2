package generator

import (
	"math"
	"math/rand"
	"testing"
)

func TestSampleDominantLogit(t *testing.T) {
	s := newSampler()
	rng := rand.New(rand.NewSource(1))

	logits := make([]float32, 100)
	logits[42] = 50

	for i := 0; i < 200; i++ {
		if got := s.sample(logits, rng); got != 42 {
			t.Fatalf("draw %d: expected dominant token 42, got %d", i, got)
		}
	}
}

func TestSampleTopKExcludesTail(t *testing.T) {
	s := newSampler()
	rng := rand.New(rand.NewSource(2))

	// Indices 0..49 share the highest logit; index 99 is far below and must
	// never survive the top-k cut.
	logits := make([]float32, 100)
	for i := 0; i < 50; i++ {
		logits[i] = 10
	}
	logits[99] = -10

	for i := 0; i < 1000; i++ {
		got := s.sample(logits, rng)
		if got >= 50 {
			t.Fatalf("draw %d: sampled token %d outside the top-k set", i, got)
		}
	}
}

func TestSampleTopPExcludesNucleusTail(t *testing.T) {
	s := newSampler()
	rng := rand.New(rand.NewSource(3))

	// Logits chosen so the temperature-scaled softmax is roughly
	// (0.60, 0.38, 0.02). The first two cross the 0.95 mass threshold, so
	// token 2 is cut even though it holds 2% probability.
	logits := []float32{
		float32(sampleTemperature * math.Log(0.60)),
		float32(sampleTemperature * math.Log(0.38)),
		float32(sampleTemperature * math.Log(0.02)),
	}

	for i := 0; i < 1000; i++ {
		if got := s.sample(logits, rng); got == 2 {
			t.Fatalf("draw %d: sampled token outside the nucleus", i)
		}
	}
}

func TestSampleDeterministicWithSeed(t *testing.T) {
	s := newSampler()
	logits := []float32{1.0, 0.9, 0.8, 0.7, 0.6}

	a := rand.New(rand.NewSource(7))
	b := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		if x, y := s.sample(logits, a), s.sample(logits, b); x != y {
			t.Fatalf("draw %d: same seed produced %d and %d", i, x, y)
		}
	}
}

func TestSampleEmptyLogits(t *testing.T) {
	s := newSampler()
	rng := rand.New(rand.NewSource(4))
	if got := s.sample(nil, rng); got != 0 {
		t.Errorf("expected 0 for empty logits, got %d", got)
	}
}
