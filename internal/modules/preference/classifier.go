// README: Embedding classifier mapping text to slots via cosine similarity.
package preference

import (
	"context"
	"fmt"
	"math"
)

// Embedder turns text into a dense vector. Implementations must be
// deterministic for identical input and return unit-normalized vectors, so
// cosine similarity reduces to a dot product.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Classifier scores vectors against the fixed slot label vectors.
// Construct once per process and share; label embeddings are computed a
// single time at construction so parallel sessions reuse them without any
// package-level singleton.
type Classifier struct {
	embedder Embedder
	labels   []labelVector
}

type labelVector struct {
	slot SlotID
	vec  []float64
}

// NewClassifier embeds every slot label description once.
func NewClassifier(ctx context.Context, embedder Embedder) (*Classifier, error) {
	c := &Classifier{embedder: embedder}
	for _, slot := range slotOrder {
		vec, err := embedder.Embed(ctx, slotLabels[slot])
		if err != nil {
			return nil, fmt.Errorf("embed slot label %q: %w", slot, err)
		}
		c.labels = append(c.labels, labelVector{slot: slot, vec: vec})
	}
	return c, nil
}

// Embed delegates to the underlying embedder. Callers must not pass empty
// text to Classify; Embed of empty text is the caller's bug to avoid.
func (c *Classifier) Embed(ctx context.Context, text string) ([]float64, error) {
	return c.embedder.Embed(ctx, text)
}

// Classify returns the slot whose label vector has the highest dot product
// with vec. Ties keep the first-declared slot.
func (c *Classifier) Classify(vec []float64) SlotID {
	best := SlotOther
	bestScore := math.Inf(-1)
	for _, l := range c.labels {
		if score := dot(vec, l.vec); score > bestScore {
			bestScore = score
			best = l.slot
		}
	}
	return best
}

func dot(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// Normalize scales vec to unit length in place and returns it.
// Zero vectors are returned unchanged.
func Normalize(vec []float64) []float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
