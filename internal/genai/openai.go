package genai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kitehq/kite/internal/ollama"
)

// OpenAIGenerator adapts an OpenAI-compatible chat-completions API to the
// Generator interface, for deployments without a local Ollama instance.
type OpenAIGenerator struct {
	client *openai.Client
}

// NewOpenAIGenerator creates a generator backed by the given API key.
// Pass a non-empty baseURL to target a self-hosted compatible server.
func NewOpenAIGenerator(apiKey, baseURL string) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGenerator{client: openai.NewClientWithConfig(cfg)}
}

// Generate satisfies Generator by issuing a single-message chat completion.
func (g *OpenAIGenerator) Generate(ctx context.Context, model, prompt string, opts ollama.Options) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: float32(opts.Temperature),
		TopP:        float32(opts.TopP),
		MaxTokens:   opts.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// OpenAIEmbedder implements index.Embedder against an OpenAI-compatible
// embeddings API.
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder creates an embedder for the given model.
func NewOpenAIEmbedder(apiKey, baseURL, model string) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIEmbedder{client: openai.NewClientWithConfig(cfg), model: model}
}

// Embed returns the embedding vector for a single text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding data returned")
	}
	return resp.Data[0].Embedding, nil
}

// ModelVersion tags vectors with the producing model so an index built
// under one model refuses queries from another.
func (e *OpenAIEmbedder) ModelVersion() string {
	return "openai/" + e.model
}
