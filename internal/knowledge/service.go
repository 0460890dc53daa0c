// Package knowledge orchestrates knowledge-base search: similarity
// ranking over the corpus index, optional generative augmentation, and
// result formatting. Index outages degrade to a single deterministic
// fallback result; only a misconfigured index (corpus and query embedded
// under different transforms) surfaces as an error.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/kitehq/kite/internal/genai"
	"github.com/kitehq/kite/internal/index"
	"github.com/kitehq/kite/internal/metrics"
)

// Result sources.
const (
	SourceKnowledgeBase = "knowledge_base"
	SourceAIAssistant   = "ai_assistant"
	SourceFallback      = "fallback"
)

// snippetLimit caps the content excerpt carried in a result.
const snippetLimit = 300

// aiContextDocs is how many top hits feed the generative answer.
const aiContextDocs = 3

// SearchResult is one ranked search hit as presented to callers.
type SearchResult struct {
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Relevance    float64   `json:"relevance"`
	Source       string    `json:"source"`
	DocumentType string    `json:"document_type"`
	Category     string    `json:"category"`
	Tags         []string  `json:"tags"`
	Timestamp    time.Time `json:"timestamp"`
}

// Service runs the search pipeline.
type Service struct {
	searcher index.Searcher
	ai       *genai.Adapter // nil disables generative augmentation
	sink     metrics.Sink
	now      func() time.Time
}

// NewService wires the search pipeline. Pass a nil adapter to run
// without generative augmentation and a nil sink to drop telemetry.
func NewService(searcher index.Searcher, ai *genai.Adapter, sink metrics.Sink) *Service {
	if sink == nil {
		sink = metrics.Noop{}
	}
	return &Service{searcher: searcher, ai: ai, sink: sink, now: time.Now}
}

// Search ranks the corpus against the query and returns up to maxResults
// hits, most relevant first. When the generative path produces an
// answer, a synthetic result with relevance 1.0 is prepended. The
// includeRelated flag is accepted for API compatibility and reserved for
// cross-corpus expansion.
//
// A non-nil error means the index itself is misconfigured (embedding
// dimension or model mismatch) and no amount of retrying will help;
// every other failure degrades to the fallback result instead.
func (s *Service) Search(ctx context.Context, query string, maxResults int, includeRelated bool) ([]SearchResult, error) {
	start := s.now()
	results, err := s.search(ctx, query, maxResults)
	s.sink.RecordSearch(s.now().Sub(start), len(results))
	return results, err
}

func (s *Service) search(ctx context.Context, query string, maxResults int) ([]SearchResult, error) {
	if maxResults <= 0 {
		maxResults = 10
	}

	hits, err := s.searcher.Search(ctx, query, maxResults)
	if err != nil {
		if errors.Is(err, index.ErrDimensionMismatch) || errors.Is(err, index.ErrModelMismatch) {
			return nil, fmt.Errorf("search index misconfigured: %w", err)
		}
		slog.Error("search path failed, returning fallback result", "error", err)
		return []SearchResult{s.fallbackResult()}, nil
	}

	results := make([]SearchResult, 0, len(hits)+1)
	for i, h := range hits {
		results = append(results, s.formatHit(h, i))
	}

	// Generative augmentation: prepend an AI answer grounded in the top
	// hits. Failure here is routine and leaves the ranked results as-is.
	if s.ai != nil {
		contextDocs := make([]string, 0, aiContextDocs)
		for _, r := range results[:min(len(results), aiContextDocs)] {
			contextDocs = append(contextDocs, r.Content)
		}
		if answer := s.ai.Answer(ctx, query, contextDocs); answer != "" {
			ai := SearchResult{
				Title:        "AI Assistant Response",
				Content:      answer,
				Relevance:    1.0,
				Source:       SourceAIAssistant,
				DocumentType: "ai_response",
				Category:     "ai_generated",
				Tags:         []string{"ai", "assistant"},
				Timestamp:    s.now().UTC(),
			}
			results = append([]SearchResult{ai}, results...)
		}
	}

	return results, nil
}

func (s *Service) formatHit(h index.Hit, position int) SearchResult {
	title := h.Doc.Title
	if title == "" {
		title = fmt.Sprintf("Document %d", position+1)
	}

	timestamp := h.Doc.UpdatedAt
	if timestamp.IsZero() {
		timestamp = h.Doc.CreatedAt
	}

	return SearchResult{
		Title:        title,
		Content:      snippet(h.Doc.Content),
		Relevance:    round3(h.Score),
		Source:       SourceKnowledgeBase,
		DocumentType: h.Doc.DocumentType,
		Category:     h.Doc.Category,
		Tags:         h.Doc.Tags,
		Timestamp:    timestamp,
	}
}

// fallbackResult is the single degraded-but-successful response used
// when the index itself is unavailable.
func (s *Service) fallbackResult() SearchResult {
	return SearchResult{
		Title:        "Fallback: Network Troubleshooting",
		Content:      "Check network connectivity, DNS resolution, and firewall rules.",
		Relevance:    0.85,
		Source:       SourceFallback,
		DocumentType: "procedure",
		Category:     "network",
		Tags:         []string{"network", "troubleshooting"},
		Timestamp:    s.now().UTC(),
	}
}

// snippet truncates content to snippetLimit runes with an ellipsis.
func snippet(content string) string {
	runes := []rune(content)
	if len(runes) <= snippetLimit {
		return content
	}
	return string(runes[:snippetLimit]) + "..."
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
