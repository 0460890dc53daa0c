package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()
	c.RecordSearch(200*time.Millisecond, 5)
	c.RecordSearch(400*time.Millisecond, 3)
	c.RecordClassification(250*time.Millisecond, "Database")
	c.RecordClassification(300*time.Millisecond, "Database")
	c.RecordClassification(100*time.Millisecond, "Network")
	c.RecordHealthCheck(10*time.Millisecond, true)

	snap := c.Metrics()
	if snap.SearchMetrics.TotalSearches != 2 {
		t.Errorf("TotalSearches = %d, want 2", snap.SearchMetrics.TotalSearches)
	}
	if snap.SearchMetrics.SearchesLastHour != 2 {
		t.Errorf("SearchesLastHour = %d, want 2", snap.SearchMetrics.SearchesLastHour)
	}
	if snap.SearchMetrics.AvgResponseTimeMs != 300 {
		t.Errorf("AvgResponseTimeMs = %v, want 300", snap.SearchMetrics.AvgResponseTimeMs)
	}
	if snap.IncidentMetrics.TotalIncidents != 3 {
		t.Errorf("TotalIncidents = %d, want 3", snap.IncidentMetrics.TotalIncidents)
	}
	if snap.Categories["Database"] != 2 || snap.Categories["Network"] != 1 {
		t.Errorf("Categories = %v", snap.Categories)
	}
	if snap.SystemHealth.UptimePercentage != 100 {
		t.Errorf("Uptime = %v, want 100", snap.SystemHealth.UptimePercentage)
	}
}

func TestCollectorUptime(t *testing.T) {
	c := NewCollector()
	for i := 0; i < 3; i++ {
		c.RecordHealthCheck(time.Millisecond, true)
	}
	c.RecordHealthCheck(time.Millisecond, false)

	snap := c.Metrics()
	if snap.SystemHealth.UptimePercentage != 75 {
		t.Errorf("Uptime = %v, want 75", snap.SystemHealth.UptimePercentage)
	}
	if snap.SystemHealth.LastCheckHealthy {
		t.Error("LastCheckHealthy = true, want false")
	}
}

func TestCollectorRingBufferCap(t *testing.T) {
	c := NewCollector()
	for i := 0; i < maxSearchSamples+100; i++ {
		c.RecordSearch(time.Millisecond, 1)
	}

	c.mu.Lock()
	n := len(c.searches)
	c.mu.Unlock()
	if n != maxSearchSamples {
		t.Errorf("buffer length = %d, want cap %d", n, maxSearchSamples)
	}
	if got := c.Metrics().SearchMetrics.TotalSearches; got != maxSearchSamples+100 {
		t.Errorf("TotalSearches = %d, want %d", got, maxSearchSamples+100)
	}
}

func TestLatencyTrend(t *testing.T) {
	tests := []struct {
		name string
		lat  []float64
		want string
	}{
		{"too few samples", []float64{1, 2, 3}, TrendInsufficientData},
		{"improving", append(repeat(100, 50), repeat(50, 50)...), TrendImproving},
		{"degrading", append(repeat(100, 50), repeat(200, 50)...), TrendDegrading},
		{"stable", append(repeat(100, 50), repeat(101, 50)...), TrendStable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := latencyTrend(tt.lat); got != tt.want {
				t.Errorf("latencyTrend = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDashboardCategoryBreakdown(t *testing.T) {
	c := NewCollector()
	c.RecordClassification(time.Millisecond, "Database")
	c.RecordClassification(time.Millisecond, "Database")
	c.RecordClassification(time.Millisecond, "Network")
	c.RecordClassification(time.Millisecond, "Security")

	stats := c.Dashboard()
	if got := stats.CategoryBreakdown["Database"]; got.Count != 2 || got.Percentage != 50 {
		t.Errorf("Database breakdown = %+v, want count 2, 50%%", got)
	}
	if got := stats.CategoryBreakdown["Network"].Percentage; got != 25 {
		t.Errorf("Network percentage = %v, want 25", got)
	}
}

func TestDashboardRecentActivity(t *testing.T) {
	c := NewCollector()
	c.RecordSearch(150*time.Millisecond, 4)
	c.RecordClassification(250*time.Millisecond, "Network")

	stats := c.Dashboard()
	if len(stats.RecentActivity) != 2 {
		t.Fatalf("got %d activity entries, want 2", len(stats.RecentActivity))
	}
	// Most recent first.
	if stats.RecentActivity[0].Type != "incident" {
		t.Errorf("first activity = %q, want incident", stats.RecentActivity[0].Type)
	}
}

func TestCollectorConcurrent(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.RecordSearch(time.Millisecond, 1)
				c.RecordClassification(time.Millisecond, "Database")
				c.Metrics()
			}
		}()
	}
	wg.Wait()

	if got := c.Metrics().SearchMetrics.TotalSearches; got != 800 {
		t.Errorf("TotalSearches = %d, want 800", got)
	}
}

func repeat(v float64, n int) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}
