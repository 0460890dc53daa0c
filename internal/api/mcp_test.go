package api

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kitehq/kite/internal/estimate"
	"github.com/kitehq/kite/internal/index"
	"github.com/kitehq/kite/internal/knowledge"
	"github.com/kitehq/kite/internal/triage"
)

func newTestMCPDeps(t *testing.T) MCPDeps {
	t.Helper()
	idx := index.NewLexical()
	corpus := knowledge.NewCorpus(nil, idx)
	if err := corpus.Seed(knowledge.SampleDocuments()); err != nil {
		t.Fatalf("seeding corpus: %v", err)
	}
	return MCPDeps{
		Knowledge: knowledge.NewService(idx, nil, nil),
		Triage:    triage.NewService(nil, estimate.NewWithJitter(0, 0), triage.SampleIncidents(), nil),
		Corpus:    corpus,
	}
}

func makeToolRequest(name string, args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content type %T", res.Content[0])
	}
	return tc.Text
}

func TestMCPSearchKnowledge(t *testing.T) {
	deps := newTestMCPDeps(t)
	handler := mcpSearchKnowledge(deps)

	res, err := handler(context.Background(), makeToolRequest("search_knowledge", map[string]any{
		"query": "database connection timeout",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), "Database Connection Timeout Resolution") {
		t.Errorf("result missing expected document: %s", resultText(t, res))
	}
}

func TestMCPSearchKnowledgeRequiresQuery(t *testing.T) {
	handler := mcpSearchKnowledge(newTestMCPDeps(t))

	res, err := handler(context.Background(), makeToolRequest("search_knowledge", map[string]any{}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected IsError for missing query")
	}
}

func TestMCPClassifyIncident(t *testing.T) {
	handler := mcpClassifyIncident(newTestMCPDeps(t))

	res, err := handler(context.Background(), makeToolRequest("classify_incident", map[string]any{
		"description": "Users cannot login with correct password",
		"severity":    "critical",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}
	text := resultText(t, res)
	if !strings.Contains(text, "Authentication") {
		t.Errorf("report missing category: %s", text)
	}
	if !strings.Contains(text, "security-team@demo.local") {
		t.Errorf("report missing assignment: %s", text)
	}
}

func TestMCPAddDocumentBecomesSearchable(t *testing.T) {
	deps := newTestMCPDeps(t)
	add := mcpAddDocument(deps)
	search := mcpSearchKnowledge(deps)

	res, err := add(context.Background(), makeToolRequest("add_document", map[string]any{
		"title":   "Kubernetes Pod Eviction",
		"content": "Pods are evicted when a node reports memory pressure. Check node conditions and resource requests.",
		"tags":    []any{"kubernetes", "eviction"},
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", resultText(t, res))
	}

	res, err = search(context.Background(), makeToolRequest("search_knowledge", map[string]any{
		"query": "pod eviction memory pressure",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(resultText(t, res), "Kubernetes Pod Eviction") {
		t.Errorf("added document not returned: %s", resultText(t, res))
	}
}

func TestMCPAddDocumentRequiresContent(t *testing.T) {
	handler := mcpAddDocument(newTestMCPDeps(t))

	res, err := handler(context.Background(), makeToolRequest("add_document", map[string]any{
		"title": "No Content",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Error("expected IsError for missing content")
	}
}
