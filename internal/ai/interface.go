package ai

import (
	"context"
)

// TextGenerator is the contract for the external text-generation service.
// The output is treated as opaque and occasionally malformed; callers run it
// through the extract package rather than trusting its syntax.
type TextGenerator interface {
	// Generate produces a completion for prompt at the given sampling
	// temperature. Blocking; bound it with a context timeout.
	Generate(ctx context.Context, prompt string, temperature float32) (string, error)
}
