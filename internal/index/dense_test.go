package index

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// mockEmbedder maps a few known words onto orthogonal axes so cosine
// scores are easy to reason about.
type mockEmbedder struct {
	version string
	dim     int
	embedFn func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockEmbedder) ModelVersion() string { return m.version }

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if m.embedFn != nil {
		return m.embedFn(ctx, text)
	}
	axes := []string{"database", "network", "email", "security"}
	vec := make([]float32, m.dim)
	lower := strings.ToLower(text)
	for i, word := range axes {
		if i >= m.dim {
			break
		}
		if strings.Contains(lower, word) {
			vec[i] = 1
		}
	}
	return vec, nil
}

func denseDocs() []Document {
	return []Document{
		{ID: "d1", Content: "database maintenance runbook"},
		{ID: "d2", Content: "network switch inventory"},
		{ID: "d3", Content: "email retention policy"},
	}
}

func TestDenseQuery(t *testing.T) {
	emb := &mockEmbedder{version: "mock-v1", dim: 4}
	idx := NewDense(emb, 0.3)

	if err := idx.Reindex(context.Background(), denseDocs()); err != nil {
		t.Fatalf("Reindex: %v", err)
	}

	hits, err := idx.Query(context.Background(), "database timeout", 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].Doc.ID != "d1" {
		t.Errorf("top hit = %s, want d1", hits[0].Doc.ID)
	}
	if hits[0].Score < 0.99 {
		t.Errorf("score = %v, want ~1.0", hits[0].Score)
	}
}

func TestDenseQueryEmptyIndex(t *testing.T) {
	idx := NewDense(&mockEmbedder{version: "mock-v1", dim: 4}, 0.3)
	hits, err := idx.Query(context.Background(), "anything", 5)
	if err != nil {
		t.Fatalf("Query on empty index: %v", err)
	}
	if hits != nil {
		t.Errorf("got %v, want nil", hits)
	}
}

func TestDenseDimensionMismatch(t *testing.T) {
	emb := &mockEmbedder{version: "mock-v1", dim: 4}
	idx := NewDense(emb, 0.3)
	if err := idx.Reindex(context.Background(), denseDocs()); err != nil {
		t.Fatalf("Reindex: %v", err)
	}

	// A model swap that changes dimensionality but not the version tag.
	emb.dim = 8
	_, err := idx.Query(context.Background(), "database", 2)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("err = %v, want ErrDimensionMismatch", err)
	}
}

func TestDenseModelVersionMismatch(t *testing.T) {
	emb := &mockEmbedder{version: "mock-v1", dim: 4}
	idx := NewDense(emb, 0.3)
	if err := idx.Reindex(context.Background(), denseDocs()); err != nil {
		t.Fatalf("Reindex: %v", err)
	}

	emb.version = "mock-v2"
	_, err := idx.Query(context.Background(), "database", 2)
	if !errors.Is(err, ErrModelMismatch) {
		t.Errorf("err = %v, want ErrModelMismatch", err)
	}
}

func TestDenseReindexFailureKeepsOldSnapshot(t *testing.T) {
	calls := 0
	emb := &mockEmbedder{version: "mock-v1", dim: 4}
	idx := NewDense(emb, 0.3)
	if err := idx.Reindex(context.Background(), denseDocs()); err != nil {
		t.Fatalf("Reindex: %v", err)
	}

	emb.embedFn = func(ctx context.Context, text string) ([]float32, error) {
		calls++
		return nil, errors.New("embedding service down")
	}
	if err := idx.Reindex(context.Background(), denseDocs()); err == nil {
		t.Fatal("Reindex succeeded, want error")
	}
	emb.embedFn = nil

	hits, err := idx.Query(context.Background(), "database", 2)
	if err != nil || len(hits) != 1 {
		t.Errorf("old snapshot unusable after failed reindex: hits=%v err=%v", hits, err)
	}
}
