package knowledge

import (
	"fmt"
	"sync"

	"github.com/kitehq/kite/internal/index"
	"github.com/kitehq/kite/internal/storage"
)

// Corpus owns the document set behind the search index. Adds go to the
// database first, then the index is rebuilt, so a crash between the two
// loses at most the in-memory index which Load restores.
type Corpus struct {
	mu    sync.Mutex
	store *storage.Store // optional; nil keeps the corpus in-memory only
	index *index.Lexical
	docs  []index.Document
}

// NewCorpus wraps a lexical index and, optionally, a persistent store.
func NewCorpus(store *storage.Store, idx *index.Lexical) *Corpus {
	return &Corpus{store: store, index: idx}
}

// Load replaces the in-memory document set with the persisted one and
// rebuilds the index. Without a store it is a no-op.
func (c *Corpus) Load() error {
	if c.store == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.store.ListDocuments()
	if err != nil {
		return fmt.Errorf("loading documents: %w", err)
	}
	docs := make([]index.Document, len(records))
	for i, r := range records {
		docs[i] = recordToDocument(r)
	}
	c.docs = docs
	c.index.Reindex(c.docs)
	return nil
}

// Seed adds the given documents if their IDs are not already present.
// Used to load sample data exactly once.
func (c *Corpus) Seed(docs []index.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	existing := make(map[string]bool, len(c.docs))
	for _, d := range c.docs {
		existing[d.ID] = true
	}

	added := false
	for _, d := range docs {
		if existing[d.ID] {
			continue
		}
		if c.store != nil {
			if err := c.store.UpsertDocument(documentToRecord(d)); err != nil {
				return fmt.Errorf("seeding document %s: %w", d.ID, err)
			}
		}
		c.docs = append(c.docs, d)
		added = true
	}
	if added {
		c.index.Reindex(c.docs)
	}
	return nil
}

// Add persists one document and rebuilds the index. An existing ID is
// replaced.
func (c *Corpus) Add(doc index.Document) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.store != nil {
		if err := c.store.UpsertDocument(documentToRecord(doc)); err != nil {
			return fmt.Errorf("saving document %s: %w", doc.ID, err)
		}
	}

	replaced := false
	for i, d := range c.docs {
		if d.ID == doc.ID {
			c.docs[i] = doc
			replaced = true
			break
		}
	}
	if !replaced {
		c.docs = append(c.docs, doc)
	}
	c.index.Reindex(c.docs)
	return nil
}

// Size returns the number of documents in the corpus.
func (c *Corpus) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

// Documents returns a copy of the corpus contents, for building a
// secondary index.
func (c *Corpus) Documents() []index.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]index.Document, len(c.docs))
	copy(out, c.docs)
	return out
}

func recordToDocument(r storage.DocumentRecord) index.Document {
	return index.Document{
		ID:           r.ID,
		Title:        r.Title,
		Content:      r.Content,
		Category:     r.Category,
		DocumentType: r.DocumentType,
		Tags:         r.Tags,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func documentToRecord(d index.Document) storage.DocumentRecord {
	return storage.DocumentRecord{
		ID:           d.ID,
		Title:        d.Title,
		Content:      d.Content,
		Category:     d.Category,
		DocumentType: d.DocumentType,
		Tags:         d.Tags,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
