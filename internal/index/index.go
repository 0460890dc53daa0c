// Package index provides in-process similarity search over a document
// corpus: a lexical TF-IDF index and a dense embedding index. Both keep
// the corpus in an immutable snapshot that is swapped atomically on
// reindex, so queries always read one consistent view.
package index

import (
	"context"
	"log/slog"
	"sort"
	"sync/atomic"
	"time"
)

// DefaultLexicalThreshold filters weak lexical matches before ranking.
// Empirical demo tuning, overridable via SetThreshold.
const DefaultLexicalThreshold = 0.1

// Document is a unit of the searchable corpus. Immutable once indexed;
// replacing a document means reindexing.
type Document struct {
	ID           string
	Title        string
	Content      string
	Category     string
	DocumentType string
	Tags         []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Hit is one search result: the matched document, its similarity score in
// [0, 1], and the document's position in the indexed corpus.
type Hit struct {
	Doc     Document
	Score   float64
	Ordinal int
}

// Searcher is the query surface shared by both index modes. Lexical
// queries never fail; dense queries can (embedding service down,
// configuration mismatch), and callers decide how to degrade.
type Searcher interface {
	Search(ctx context.Context, query string, topK int) ([]Hit, error)
	Size() int
}

// lexicalSnapshot is one immutable generation of the lexical index.
type lexicalSnapshot struct {
	docs []Document
	vecs []termVector
	vec  *vectorizer
}

// Lexical is a TF-IDF similarity index. The zero value is an empty,
// queryable index; Reindex installs a corpus.
type Lexical struct {
	snap      atomic.Pointer[lexicalSnapshot]
	threshold atomic.Int64 // similarity threshold ×1e6; 0 means default
}

// NewLexical returns an empty lexical index with the default threshold.
func NewLexical() *Lexical {
	return &Lexical{}
}

// SetThreshold overrides the minimum similarity for a document to appear
// in results.
func (l *Lexical) SetThreshold(t float64) {
	l.threshold.Store(int64(t * 1e6))
}

func (l *Lexical) minScore() float64 {
	if raw := l.threshold.Load(); raw != 0 {
		return float64(raw) / 1e6
	}
	return DefaultLexicalThreshold
}

// Reindex replaces the entire corpus atomically. In-flight queries keep
// reading the previous snapshot; later queries see only the new one.
// An empty corpus is valid and produces an empty (not broken) index.
func (l *Lexical) Reindex(docs []Document) {
	snap := &lexicalSnapshot{
		docs: make([]Document, len(docs)),
	}
	copy(snap.docs, docs)

	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	snap.vec = fitVectorizer(texts)
	snap.vecs = make([]termVector, len(texts))
	for i, text := range texts {
		snap.vecs[i] = snap.vec.transform(text)
	}

	l.snap.Store(snap)
	slog.Info("lexical index rebuilt", "documents", len(docs))
}

// Size returns the number of indexed documents.
func (l *Lexical) Size() int {
	snap := l.snap.Load()
	if snap == nil {
		return 0
	}
	return len(snap.docs)
}

// Query scores the corpus against the query text and returns up to topK
// hits above the similarity threshold, ordered by score descending with
// ties broken by corpus order. An unindexed or empty corpus yields no
// hits and no error.
func (l *Lexical) Query(query string, topK int) []Hit {
	snap := l.snap.Load()
	if snap == nil || len(snap.docs) == 0 || topK <= 0 {
		return nil
	}

	qv := snap.vec.transform(query)
	if qv == nil {
		return nil
	}

	min := l.minScore()
	hits := make([]Hit, 0, topK)
	for i, dv := range snap.vecs {
		score := qv.dot(dv)
		if score <= min {
			continue
		}
		hits = append(hits, Hit{Doc: snap.docs[i], Score: score, Ordinal: i})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// Search implements Searcher. Lexical queries need no context and cannot
// fail.
func (l *Lexical) Search(_ context.Context, query string, topK int) ([]Hit, error) {
	return l.Query(query, topK), nil
}
