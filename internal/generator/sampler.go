package generator

import (
	"math"
	"math/rand"
	"sort"
)

// Fixed sampling hyperparameters for explanation generation.
const (
	sampleTopK        = 50
	sampleTopP        = 0.95
	sampleTemperature = 0.7
)

// sampler draws the next token id from a logits vector using temperature
// scaling, top-k restriction, and nucleus (top-p) filtering, in that order.
type sampler struct {
	temperature float64
	topK        int
	topP        float64
}

func newSampler() *sampler {
	return &sampler{
		temperature: sampleTemperature,
		topK:        sampleTopK,
		topP:        sampleTopP,
	}
}

// sample picks one token id from logits. The rng is owned by the caller so
// generation calls can be serialized and, in tests, seeded.
func (s *sampler) sample(logits []float32, rng *rand.Rand) int64 {
	if len(logits) == 0 {
		return 0
	}

	// Rank candidates by raw logit and keep the top-k.
	idx := make([]int, len(logits))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return logits[idx[a]] > logits[idx[b]] })

	k := s.topK
	if k <= 0 || k > len(idx) {
		k = len(idx)
	}
	idx = idx[:k]

	// Temperature-scaled softmax over the survivors. Subtract the max logit
	// before exponentiating to keep this numerically stable.
	maxLogit := float64(logits[idx[0]])
	probs := make([]float64, k)
	var total float64
	for i, id := range idx {
		p := math.Exp((float64(logits[id]) - maxLogit) / s.temperature)
		probs[i] = p
		total += p
	}
	for i := range probs {
		probs[i] /= total
	}

	// Nucleus filter: keep the smallest prefix of the (already descending)
	// distribution whose cumulative mass reaches top-p, always keeping the
	// first token.
	cutoff := k
	var cum float64
	for i, p := range probs {
		cum += p
		if cum >= s.topP {
			cutoff = i + 1
			break
		}
	}
	probs = probs[:cutoff]
	idx = idx[:cutoff]

	var mass float64
	for _, p := range probs {
		mass += p
	}

	r := rng.Float64() * mass
	for i, p := range probs {
		r -= p
		if r <= 0 {
			return int64(idx[i])
		}
	}
	return int64(idx[len(idx)-1])
}
