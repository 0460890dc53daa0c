package index

import (
	"sync"
	"testing"
)

func corpus() []Document {
	return []Document{
		{ID: "kb_001", Title: "Network Troubleshooting Guide", Content: "Network connectivity issues can be resolved by checking physical connections and examining firewall rules."},
		{ID: "kb_002", Title: "Database Connection Timeout Resolution", Content: "Database connection timeouts typically occur due to connection pool exhaustion or long-running queries."},
		{ID: "kb_003", Title: "Email Server Configuration", Content: "Email server setup requires configuring SMTP and IMAP settings and DNS MX records."},
		{ID: "kb_004", Title: "Security Incident Response", Content: "Security incident response involves containment, evidence preservation and threat analysis."},
		{ID: "kb_005", Title: "Backup Procedures", Content: "Implement a backup strategy with three copies of data on two different media types."},
	}
}

func TestQueryRanksSharedKeywordsFirst(t *testing.T) {
	idx := NewLexical()
	idx.Reindex([]Document{
		{ID: "kb_001", Content: "Network connectivity issues resolved by checking firewall rules."},
		{ID: "kb_002", Content: "Database connection timeout errors."},
		{ID: "kb_003", Content: "Email server setup requires SMTP settings and DNS MX records."},
		{ID: "kb_004", Content: "Security incident response involves containment and threat analysis."},
		{ID: "kb_005", Content: "Implement a backup strategy with offsite copies."},
	})

	hits := idx.Query("database timeout issues", 3)
	if len(hits) == 0 {
		t.Fatal("no hits")
	}
	if hits[0].Doc.ID != "kb_002" {
		t.Errorf("top hit = %s, want kb_002", hits[0].Doc.ID)
	}
	if hits[0].Score <= 0.5 {
		t.Errorf("top score = %v, want > 0.5", hits[0].Score)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Errorf("hits not sorted descending at %d", i)
		}
	}
}

func TestQueryScoresBounded(t *testing.T) {
	idx := NewLexical()
	idx.Reindex(corpus())

	for _, q := range []string{"database", "network firewall", "smtp records dns", "completely unrelated llamas"} {
		for _, h := range idx.Query(q, 10) {
			if h.Score < 0 || h.Score > 1 {
				t.Errorf("query %q: score %v out of [0,1]", q, h.Score)
			}
		}
	}
}

// More shared keywords must not score lower than fewer, all else equal.
func TestQueryOverlapMonotonic(t *testing.T) {
	idx := NewLexical()
	idx.Reindex([]Document{
		{ID: "more", Content: "database timeout restart failure"},
		{ID: "less", Content: "database cabbage restart failure"},
	})

	hits := idx.Query("database timeout", 2)
	if len(hits) < 2 {
		t.Fatalf("got %d hits, want 2", len(hits))
	}
	if hits[0].Doc.ID != "more" {
		t.Errorf("top hit = %s, want the document sharing more keywords", hits[0].Doc.ID)
	}
}

func TestQueryEmptyCorpus(t *testing.T) {
	idx := NewLexical()
	if hits := idx.Query("anything", 5); hits != nil {
		t.Errorf("unindexed query = %v, want nil", hits)
	}

	idx.Reindex(nil)
	if hits := idx.Query("anything", 5); len(hits) != 0 {
		t.Errorf("empty corpus query returned %d hits, want 0", len(hits))
	}
}

func TestQueryThresholdFiltersWeakMatches(t *testing.T) {
	idx := NewLexical()
	idx.SetThreshold(0.99)
	idx.Reindex(corpus())

	if hits := idx.Query("database timeout", 5); len(hits) != 0 {
		t.Errorf("got %d hits above threshold 0.99, want 0", len(hits))
	}
}

func TestReindexReplacesCorpus(t *testing.T) {
	idx := NewLexical()
	idx.Reindex(corpus())
	if idx.Size() != 5 {
		t.Fatalf("Size = %d, want 5", idx.Size())
	}

	idx.Reindex([]Document{{ID: "only", Content: "database timeout"}})
	hits := idx.Query("database timeout", 10)
	if len(hits) != 1 || hits[0].Doc.ID != "only" {
		t.Errorf("after reindex got %+v, want single hit for %q", hits, "only")
	}
}

// Queries racing a reindex must each see one consistent snapshot.
func TestQueryDuringReindex(t *testing.T) {
	idx := NewLexical()
	idx.Reindex(corpus())

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				for _, h := range idx.Query("database timeout", 3) {
					if h.Score < 0 || h.Score > 1 {
						t.Errorf("score %v out of range", h.Score)
						return
					}
				}
			}
		}()
	}
	for j := 0; j < 50; j++ {
		idx.Reindex(corpus())
	}
	wg.Wait()
}

func TestTokenize(t *testing.T) {
	got := tokenize("The Database, connection-timeout! occurred at 3am.")
	want := []string{"database", "connection", "timeout", "occurred", "3am"}
	if len(got) != len(want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}
