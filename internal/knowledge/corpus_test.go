package knowledge

import (
	"context"
	"testing"
	"time"

	"github.com/kitehq/kite/internal/index"
	"github.com/kitehq/kite/internal/storage"
)

func testCorpus(t *testing.T) (*Corpus, *storage.Store) {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewCorpus(store, index.NewLexical()), store
}

func TestCorpusSeedIsIdempotent(t *testing.T) {
	corpus, store := testCorpus(t)

	if err := corpus.Seed(SampleDocuments()); err != nil {
		t.Fatalf("seeding: %v", err)
	}
	if err := corpus.Seed(SampleDocuments()); err != nil {
		t.Fatalf("reseeding: %v", err)
	}

	if corpus.Size() != 8 {
		t.Errorf("corpus size = %d, want 8", corpus.Size())
	}
	n, err := store.CountDocuments()
	if err != nil {
		t.Fatal(err)
	}
	if n != 8 {
		t.Errorf("stored documents = %d, want 8", n)
	}
}

func TestCorpusAddIndexesDocument(t *testing.T) {
	idx := index.NewLexical()
	corpus := NewCorpus(nil, idx)

	doc := index.Document{
		ID:        "kb_custom",
		Title:     "Printer Jam Procedure",
		Content:   "Clear the paper path and reseat the toner cartridge before restarting the printer.",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := corpus.Add(doc); err != nil {
		t.Fatalf("adding document: %v", err)
	}

	hits, err := idx.Search(context.Background(), "printer toner cartridge", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) != 1 || hits[0].Doc.ID != "kb_custom" {
		t.Errorf("added document not searchable: %v", hits)
	}
}

func TestCorpusAddReplacesExistingID(t *testing.T) {
	corpus, store := testCorpus(t)

	now := time.Now().UTC()
	doc := index.Document{ID: "kb_1", Title: "v1", Content: "first version", CreatedAt: now, UpdatedAt: now}
	if err := corpus.Add(doc); err != nil {
		t.Fatal(err)
	}
	doc.Title = "v2"
	if err := corpus.Add(doc); err != nil {
		t.Fatal(err)
	}

	if corpus.Size() != 1 {
		t.Errorf("corpus size = %d, want 1", corpus.Size())
	}
	got, err := store.GetDocument("kb_1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "v2" {
		t.Errorf("stored title = %q, want v2", got.Title)
	}
}

func TestCorpusLoadRestoresFromStore(t *testing.T) {
	corpus, store := testCorpus(t)
	if err := corpus.Seed(SampleDocuments()); err != nil {
		t.Fatal(err)
	}

	// A fresh corpus over the same store sees the persisted documents.
	idx := index.NewLexical()
	restored := NewCorpus(store, idx)
	if err := restored.Load(); err != nil {
		t.Fatalf("loading: %v", err)
	}
	if restored.Size() != 8 {
		t.Errorf("restored size = %d, want 8", restored.Size())
	}
	hits, err := idx.Search(context.Background(), "database connection timeout", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) == 0 {
		t.Error("restored index returned no hits")
	}
}

func TestCorpusWithoutStore(t *testing.T) {
	corpus := NewCorpus(nil, index.NewLexical())
	if err := corpus.Load(); err != nil {
		t.Fatalf("load without store: %v", err)
	}
	if err := corpus.Seed(SampleDocuments()); err != nil {
		t.Fatalf("seed without store: %v", err)
	}
	if corpus.Size() != 8 {
		t.Errorf("size = %d, want 8", corpus.Size())
	}
}
