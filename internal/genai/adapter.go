package genai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kitehq/kite/internal/classify"
	"github.com/kitehq/kite/internal/ollama"
)

// Default timeouts. Classification prompts are short and bounded, answer
// generation is allowed more room.
const (
	DefaultClassifyTimeout = 15 * time.Second
	DefaultAnswerTimeout   = 30 * time.Second
)

// Adapter wraps a Generator with the platform's prompts, timeouts, and
// response parsing.
type Adapter struct {
	gen             Generator
	model           string
	classifyTimeout time.Duration
	answerTimeout   time.Duration
}

// New creates an Adapter using the given generator and model with
// default timeouts.
func New(gen Generator, model string) *Adapter {
	return &Adapter{
		gen:             gen,
		model:           model,
		classifyTimeout: DefaultClassifyTimeout,
		answerTimeout:   DefaultAnswerTimeout,
	}
}

// NewWithTimeouts creates an Adapter with explicit timeouts. Zero values
// fall back to the defaults.
func NewWithTimeouts(gen Generator, model string, classifyTimeout, answerTimeout time.Duration) *Adapter {
	a := New(gen, model)
	if classifyTimeout > 0 {
		a.classifyTimeout = classifyTimeout
	}
	if answerTimeout > 0 {
		a.answerTimeout = answerTimeout
	}
	return a
}

// classification mirrors the JSON object the model is asked to produce.
type classification struct {
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
	Procedures []string `json:"procedures"`
}

// Classify asks the model to categorize an incident description. On any
// failure — network error, timeout, non-JSON output, unknown category —
// it returns nil so the caller falls through to the rule-based path.
// A single attempt, no retries.
func (a *Adapter) Classify(ctx context.Context, description string) *classify.Result {
	if a == nil || a.gen == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, a.classifyTimeout)
	defer cancel()

	raw, err := a.gen.Generate(ctx, a.model, classifyPrompt(description), classifyOptions())
	if err != nil {
		slog.Warn("generative classification failed, using fallback", "error", err)
		return nil
	}

	span, ok := extractJSON(raw)
	if !ok {
		slog.Warn("no JSON object in generative response", "response", truncateForLog(raw))
		return nil
	}

	var parsed classification
	if err := json.Unmarshal([]byte(span), &parsed); err != nil {
		slog.Warn("unparseable generative classification", "error", err, "response", truncateForLog(raw))
		return nil
	}

	if !classify.IsKnown(parsed.Category) {
		slog.Warn("generative classification returned unknown category", "category", parsed.Category)
		return nil
	}

	procedures := parsed.Procedures
	if len(procedures) == 0 {
		procedures = classify.Procedures(parsed.Category)
	}

	return &classify.Result{
		Category:   parsed.Category,
		Confidence: clampConfidence(parsed.Confidence),
		Procedures: procedures,
		Reasoning:  parsed.Reasoning,
	}
}

// Answer generates a natural-language answer to a query grounded in the
// given context snippets. Returns "" when the generative path is
// unavailable; the search results stand on their own in that case.
func (a *Adapter) Answer(ctx context.Context, query string, contextDocs []string) string {
	if a == nil || a.gen == nil {
		return ""
	}

	ctx, cancel := context.WithTimeout(ctx, a.answerTimeout)
	defer cancel()

	answer, err := a.gen.Generate(ctx, a.model, answerPrompt(query, contextDocs), answerOptions())
	if err != nil {
		slog.Warn("generative answer failed", "error", err)
		return ""
	}
	return answer
}

// extractJSON locates the span from the first '{' to the last '}' in s.
// Models routinely wrap their JSON in conversational filler; everything
// outside the braces is discarded.
func extractJSON(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func truncateForLog(s string) string {
	const max = 200
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func classifyPrompt(description string) string {
	return fmt.Sprintf(`Classify this IT incident and suggest 3 resolution procedures.

Incident Description: %s

Available Categories: %s

Respond with JSON format:
{
    "category": "category_name",
    "confidence": 0.95,
    "reasoning": "brief explanation",
    "procedures": ["procedure1", "procedure2", "procedure3"]
}`, description, strings.Join(classify.Categories, ", "))
}

func answerPrompt(query string, contextDocs []string) string {
	return fmt.Sprintf(`Based on the following knowledge base content, provide a helpful response to the user's query.

Context:
%s

User Query: %s

Response (be concise and helpful):`, strings.Join(contextDocs, "\n"), query)
}

func classifyOptions() ollama.Options {
	return ollama.Options{Temperature: 0.3, TopP: 0.9, MaxTokens: 300}
}

func answerOptions() ollama.Options {
	return ollama.Options{Temperature: 0.7, TopP: 0.9, MaxTokens: 200}
}
