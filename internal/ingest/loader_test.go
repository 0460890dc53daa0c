package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadFileText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "Reset the router before escalating.")

	doc, err := NewLoader().LoadFile(path)
	if err != nil {
		t.Fatalf("loading text file: %v", err)
	}
	if doc.Title != "notes" {
		t.Errorf("title = %q, want %q", doc.Title, "notes")
	}
	if doc.Content != "Reset the router before escalating." {
		t.Errorf("content = %q", doc.Content)
	}
	if doc.DocumentType != "imported" {
		t.Errorf("document type = %q", doc.DocumentType)
	}
	if !strings.HasPrefix(doc.ID, "doc_") || len(doc.ID) != 16 {
		t.Errorf("unexpected ID format %q", doc.ID)
	}
}

func TestLoadFileMarkdownTitleFromHeading(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "guide.md", "# DNS Failover Guide\n\nSteps for DNS failover.")

	doc, err := NewLoader().LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Title != "DNS Failover Guide" {
		t.Errorf("title = %q, want heading text", doc.Title)
	}
}

func TestLoadFileHTMLStripsMarkup(t *testing.T) {
	dir := t.TempDir()
	page := `<html><head><style>body{color:red}</style><script>alert(1)</script></head>` +
		`<body><h1>Firewall Rules</h1><p>Allow port 443.</p></body></html>`
	path := writeFile(t, dir, "rules.html", page)

	doc, err := NewLoader().LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(doc.Content, "Firewall Rules") || !strings.Contains(doc.Content, "Allow port 443.") {
		t.Errorf("content missing text nodes: %q", doc.Content)
	}
	if strings.Contains(doc.Content, "alert") || strings.Contains(doc.Content, "color:red") {
		t.Errorf("script/style content leaked: %q", doc.Content)
	}
}

func TestLoadFileUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "data.csv", "a,b,c")

	if _, err := NewLoader().LoadFile(path); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

func TestLoadFileEmptyContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "blank.txt", "   \n\t\n")

	if _, err := NewLoader().LoadFile(path); err == nil {
		t.Error("expected error for empty file")
	}
}

func TestLoadDirSkipsUnsupportedAndBroken(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.txt", "Document A content.")
	writeFile(t, dir, "b.md", "# Doc B\n\nDocument B content.")
	writeFile(t, dir, "ignored.csv", "x,y")
	writeFile(t, dir, "broken.pdf", "not actually a pdf")

	docs, err := NewLoader().LoadDir(dir)
	if err != nil {
		t.Fatalf("loading directory: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
}

func TestLoadDirRecursive(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, dir, "top.txt", "Top level.")
	writeFile(t, sub, "deep.txt", "Nested file.")

	docs, err := NewLoader().LoadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 2 {
		t.Errorf("expected 2 documents across nesting, got %d", len(docs))
	}
}
