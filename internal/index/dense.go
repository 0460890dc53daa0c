package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Configuration errors. These indicate a broken deployment (corpus and
// query embedded with different transforms), not an empty result, and
// must surface to the caller instead of degrading.
var (
	ErrDimensionMismatch = errors.New("embedding dimension mismatch between index and query")
	ErrModelMismatch     = errors.New("index was built with a different embedding model")
)

// Embedder produces dense vectors for text. Implementations wrap an
// external embedding service; tests use stand-ins.
type Embedder interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// ModelVersion identifies the model producing the vectors. An index
	// built under one version refuses queries embedded under another.
	ModelVersion() string
}

// embedConcurrency bounds parallel embedding calls during reindex.
const embedConcurrency = 4

// denseSnapshot is one immutable generation of the embedding index.
type denseSnapshot struct {
	docs    []Document
	vecs    [][]float32
	norms   []float32
	dim     int
	version string
}

// Dense is a cosine-similarity index over dense embeddings. Corpus and
// query vectors must come from the same Embedder; the model version is
// recorded at reindex time and checked on every query.
type Dense struct {
	embedder  Embedder
	snap      atomic.Pointer[denseSnapshot]
	threshold float64
}

// NewDense returns an empty dense index using the given embedder.
func NewDense(embedder Embedder, threshold float64) *Dense {
	return &Dense{embedder: embedder, threshold: threshold}
}

// Reindex embeds the corpus and swaps in a new snapshot. The old
// snapshot serves queries until the swap; a failed reindex leaves it in
// place untouched.
func (d *Dense) Reindex(ctx context.Context, docs []Document) error {
	snap := &denseSnapshot{
		docs:    make([]Document, len(docs)),
		vecs:    make([][]float32, len(docs)),
		norms:   make([]float32, len(docs)),
		version: d.embedder.ModelVersion(),
	}
	copy(snap.docs, docs)

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(embedConcurrency)
	for i, doc := range docs {
		g.Go(func() error {
			vec, err := d.embedder.Embed(gCtx, doc.Content)
			if err != nil {
				return fmt.Errorf("embedding document %s: %w", doc.ID, err)
			}
			snap.vecs[i] = vec
			snap.norms[i] = norm32(vec)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, vec := range snap.vecs {
		if snap.dim == 0 {
			snap.dim = len(vec)
		} else if len(vec) != snap.dim {
			return fmt.Errorf("document %s: got %d dimensions, index has %d: %w",
				docs[i].ID, len(vec), snap.dim, ErrDimensionMismatch)
		}
	}

	d.snap.Store(snap)
	slog.Info("dense index rebuilt", "documents", len(docs), "dimensions", snap.dim, "model", snap.version)
	return nil
}

// Size returns the number of indexed documents.
func (d *Dense) Size() int {
	snap := d.snap.Load()
	if snap == nil {
		return 0
	}
	return len(snap.docs)
}

// Query embeds the query text and returns up to topK hits above the
// threshold, score descending, ties by corpus order. Returns
// ErrModelMismatch or ErrDimensionMismatch when the query vector could
// not have come from the indexed transform.
func (d *Dense) Query(ctx context.Context, query string, topK int) ([]Hit, error) {
	snap := d.snap.Load()
	if snap == nil || len(snap.docs) == 0 || topK <= 0 {
		return nil, nil
	}

	if v := d.embedder.ModelVersion(); v != snap.version {
		return nil, fmt.Errorf("index built with %q, query embedder is %q: %w", snap.version, v, ErrModelMismatch)
	}

	qv, err := d.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(qv) != snap.dim {
		return nil, fmt.Errorf("query has %d dimensions, index has %d: %w", len(qv), snap.dim, ErrDimensionMismatch)
	}

	qNorm := norm32(qv)
	if qNorm == 0 {
		return nil, nil
	}

	hits := make([]Hit, 0, topK)
	for i, vec := range snap.vecs {
		score := cosine32(qv, qNorm, vec, snap.norms[i])
		if score <= d.threshold {
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
	return hits, nil
}

// Search implements Searcher.
func (d *Dense) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	return d.Query(ctx, query, topK)
}

// norm32 returns the L2 norm of a vector.
func norm32(v []float32) float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	return float32(math.Sqrt(sum))
}

// cosine32 computes dot(a,b) / (aNorm × bNorm), clamped to [0, 1].
// Precomputed norms avoid rescanning the corpus vectors on every query.
func cosine32(a []float32, aNorm float32, b []float32, bNorm float32) float64 {
	if aNorm == 0 || bNorm == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return clamp01(dot / (float64(aNorm) * float64(bNorm)))
}
