package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kitehq/kite/internal/index"
	"github.com/kitehq/kite/internal/knowledge"
	"github.com/kitehq/kite/internal/triage"
)

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Knowledge *knowledge.Service
	Triage    *triage.Service
	Corpus    *knowledge.Corpus
}

// NewMCPServer creates an MCP server with the platform tools registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	s := server.NewMCPServer(
		"kite",
		version,
		server.WithToolCapabilities(true),
		server.WithInstructions("kite — knowledge search and incident triage for IT support."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("search_knowledge",
			mcp.WithDescription("Search the IT knowledge base and return ranked results, optionally with an AI-generated answer."),
			mcp.WithString("query", mcp.Description("Search query"), mcp.Required()),
			mcp.WithNumber("max_results", mcp.Description("Maximum number of results (default 5)")),
		),
		mcpSearchKnowledge(deps),
	)

	s.AddTool(
		mcp.NewTool("classify_incident",
			mcp.WithDescription("Classify an incident report, suggest resolution procedures, and assign it to a team."),
			mcp.WithString("description", mcp.Description("Incident description"), mcp.Required()),
			mcp.WithString("severity", mcp.Description("Severity: critical, high, medium, or low (default medium)")),
			mcp.WithString("priority", mcp.Description("Priority label (default normal)")),
		),
		mcpClassifyIncident(deps),
	)

	s.AddTool(
		mcp.NewTool("add_document",
			mcp.WithDescription("Add a document to the knowledge base so it becomes searchable."),
			mcp.WithString("title", mcp.Description("Document title"), mcp.Required()),
			mcp.WithString("content", mcp.Description("Document content"), mcp.Required()),
			mcp.WithString("category", mcp.Description("Optional category label")),
			mcp.WithArray("tags", mcp.Description("Optional tags for categorization")),
		),
		mcpAddDocument(deps),
	)

	return s
}

func mcpSearchKnowledge(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcpError("query is required"), nil
		}
		maxResults := req.GetInt("max_results", 5)
		if maxResults <= 0 {
			maxResults = 5
		}

		results, err := deps.Knowledge.Search(ctx, query, maxResults, false)
		if err != nil {
			return mcpError(fmt.Sprintf("search unavailable: %v", err)), nil
		}
		if len(results) == 0 {
			return mcpText("No results found."), nil
		}

		var b strings.Builder
		for i, r := range results {
			fmt.Fprintf(&b, "%d. %s (relevance %.3f, source %s)\n%s\n\n", i+1, r.Title, r.Relevance, r.Source, r.Content)
		}
		return mcpText(strings.TrimSpace(b.String())), nil
	}
}

func mcpClassifyIncident(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		description, err := req.RequireString("description")
		if err != nil {
			return mcpError("description is required"), nil
		}
		severity := req.GetString("severity", "medium")
		priority := req.GetString("priority", "normal")

		report := deps.Triage.ClassifyIncident(ctx, description, severity, priority)
		payload, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return mcpError(fmt.Sprintf("failed to encode report: %v", err)), nil
		}
		return mcpText(string(payload)), nil
	}
}

func mcpAddDocument(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		title, err := req.RequireString("title")
		if err != nil {
			return mcpError("title is required"), nil
		}
		content, err := req.RequireString("content")
		if err != nil {
			return mcpError("content is required"), nil
		}
		category := req.GetString("category", "")
		tags := req.GetStringSlice("tags", nil)

		now := time.Now().UTC()
		doc := index.Document{
			ID:           "doc_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
			Title:        title,
			Content:      content,
			Category:     category,
			DocumentType: "mcp",
			Tags:         tags,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := deps.Corpus.Add(doc); err != nil {
			return mcpError(fmt.Sprintf("failed to add document: %v", err)), nil
		}
		return mcpText(fmt.Sprintf("Added document %s", doc.ID)), nil
	}
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
