package genai

import (
	"context"
	"fmt"

	"github.com/kitehq/kite/internal/ollama"
)

// OllamaEmbedder implements index.Embedder on top of a local Ollama
// instance.
type OllamaEmbedder struct {
	client *ollama.Client
	model  string
}

// NewOllamaEmbedder creates an embedder using the given client and model.
func NewOllamaEmbedder(client *ollama.Client, model string) *OllamaEmbedder {
	return &OllamaEmbedder{client: client, model: model}
}

// Embed returns the embedding vector for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec, err := e.client.Embed(ctx, e.model, text)
	if err != nil {
		return nil, fmt.Errorf("embedding text: %w", err)
	}
	return vec, nil
}

// ModelVersion tags vectors with the producing model.
func (e *OllamaEmbedder) ModelVersion() string {
	return "ollama/" + e.model
}
