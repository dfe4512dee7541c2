package embed

import (
	"context"
	"hash/fnv"
	"math"
)

// Local is a hash-based embedder that needs no model files or network
// access. It is deterministic (same text, same vector), which keeps
// repeated storage of identical content stable and makes retrieval
// testable, but the similarity it produces is only a rough lexical signal.
// Swap in the OpenAI provider for real semantic search.
type Local struct {
	dimensions int
}

func NewLocal(dimensions int) *Local {
	return &Local{dimensions: dimensions}
}

// Embed generates a pseudo-embedding seeded by the FNV-1a hash of the text.
func (e *Local) Embed(ctx context.Context, text string) ([]float32, error) {
	h := fnv.New64a()
	h.Write([]byte(text))
	seed := h.Sum64()

	vec := make([]float32, e.dimensions)
	for i := range vec {
		// Linear congruential step per component
		seed = seed*6364136223846793005 + 1442695040888963407
		vec[i] = float32(int64(seed)) / float32(math.MaxInt64)
	}

	return normalize(vec), nil
}

func (e *Local) Dimensions() int {
	return e.dimensions
}

// normalize scales the vector to unit length so dot products behave as
// cosine similarity.
func normalize(vec []float32) []float32 {
	var norm float32
	for _, v := range vec {
		norm += v * v
	}
	if norm == 0 {
		return vec
	}

	norm = float32(math.Sqrt(float64(norm)))
	for i, v := range vec {
		vec[i] = v / norm
	}
	return vec
}
