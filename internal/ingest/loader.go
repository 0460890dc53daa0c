// Package ingest loads knowledge-base documents from local files.
// Plain text and Markdown are taken verbatim, HTML is reduced to its
// text content, and PDFs are extracted page by page.
package ingest

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"golang.org/x/net/html"

	"github.com/kitehq/kite/internal/index"
)

// Loader turns files into documents ready for indexing.
type Loader struct {
	logger *slog.Logger
	now    func() time.Time
}

// NewLoader creates a Loader logging through the default slog handler.
func NewLoader() *Loader {
	return &Loader{logger: slog.Default(), now: time.Now}
}

// LoadDir walks dir and loads every supported file into a document.
// Unsupported extensions are skipped; a file that fails to parse is
// logged and skipped rather than failing the whole walk.
func (l *Loader) LoadDir(dir string) ([]index.Document, error) {
	var docs []index.Document
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !supported(path) {
			return nil
		}
		doc, err := l.LoadFile(path)
		if err != nil {
			l.logger.Warn("skipping unreadable file", "path", path, "error", err)
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	l.logger.Info("loaded documents", "dir", dir, "count", len(docs))
	return docs, nil
}

// LoadFile loads a single supported file into a document.
func (l *Loader) LoadFile(path string) (index.Document, error) {
	var content string
	var err error

	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md":
		content, err = readText(path)
	case ".html", ".htm":
		content, err = readHTML(path)
	case ".pdf":
		content, err = readPDF(path)
	default:
		return index.Document{}, fmt.Errorf("unsupported file type: %s", path)
	}
	if err != nil {
		return index.Document{}, err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return index.Document{}, fmt.Errorf("no text content in %s", path)
	}

	now := l.now().UTC()
	return index.Document{
		ID:           "doc_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12],
		Title:        titleFor(path, content),
		Content:      content,
		DocumentType: "imported",
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

func supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".html", ".htm", ".pdf":
		return true
	}
	return false
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// readHTML parses the file and concatenates its text nodes, skipping
// script and style subtrees.
func readHTML(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	root, err := html.Parse(f)
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				b.WriteString(text)
				b.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return b.String(), nil
}

func readPDF(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", err
	}

	reader, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return "", fmt.Errorf("reading pdf: %w", err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			slog.Warn("skipping unreadable pdf page", "path", path, "page", i, "error", err)
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// titleFor prefers the first Markdown heading, falling back to the
// file name without its extension.
func titleFor(path, content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if rest, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(rest)
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
