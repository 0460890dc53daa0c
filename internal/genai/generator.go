// Package genai calls an external text-generation service to augment
// search and classification. The service is treated as an unreliable,
// latency-bound collaborator: every call carries a hard timeout and every
// failure degrades to "no result" rather than an error the caller must
// handle.
package genai

import (
	"context"

	"github.com/kitehq/kite/internal/ollama"
)

// Generator abstracts the text-generation endpoint so the adapter can be
// exercised in tests without network access. *ollama.Client satisfies it
// directly; OpenAIGenerator adapts an OpenAI-compatible API.
type Generator interface {
	Generate(ctx context.Context, model, prompt string, opts ollama.Options) (string, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ctx context.Context, model, prompt string, opts ollama.Options) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, model, prompt string, opts ollama.Options) (string, error) {
	return f(ctx, model, prompt, opts)
}
