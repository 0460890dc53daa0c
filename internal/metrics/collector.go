package metrics

import (
	"math"
	"sort"
	"sync"
	"time"
)

// Ring buffer capacities. Old samples fall off; the aggregates only ever
// look at recent windows.
const (
	maxSearchSamples   = 1000
	maxIncidentSamples = 1000
	maxHealthSamples   = 100
)

type searchSample struct {
	at        time.Time
	latencyMs float64
	results   int
}

type incidentSample struct {
	at        time.Time
	latencyMs float64
	category  string
}

type healthSample struct {
	at        time.Time
	latencyMs float64
	healthy   bool
}

// Collector is the in-memory metrics aggregator behind /api/metrics and
// the dashboard. It implements Sink.
type Collector struct {
	mu        sync.Mutex
	searches  []searchSample
	incidents []incidentSample
	health    []healthSample

	totalSearches  int
	totalIncidents int

	now func() time.Time
}

// NewCollector creates an empty Collector.
func NewCollector() *Collector {
	return &Collector{now: time.Now}
}

// RecordSearch implements Sink.
func (c *Collector) RecordSearch(latency time.Duration, resultCount int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searches = appendCapped(c.searches, searchSample{
		at:        c.now(),
		latencyMs: float64(latency.Microseconds()) / 1000,
		results:   resultCount,
	}, maxSearchSamples)
	c.totalSearches++
}

// RecordClassification implements Sink.
func (c *Collector) RecordClassification(latency time.Duration, category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.incidents = appendCapped(c.incidents, incidentSample{
		at:        c.now(),
		latencyMs: float64(latency.Microseconds()) / 1000,
		category:  category,
	}, maxIncidentSamples)
	c.totalIncidents++
}

// RecordHealthCheck implements Sink.
func (c *Collector) RecordHealthCheck(latency time.Duration, healthy bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.health = appendCapped(c.health, healthSample{
		at:        c.now(),
		latencyMs: float64(latency.Microseconds()) / 1000,
		healthy:   healthy,
	}, maxHealthSamples)
}

func appendCapped[T any](s []T, v T, max int) []T {
	s = append(s, v)
	if len(s) > max {
		copy(s, s[len(s)-max:])
		s = s[:max]
	}
	return s
}

// Snapshot is the payload behind GET /api/metrics.
type Snapshot struct {
	Timestamp       time.Time      `json:"timestamp"`
	SearchMetrics   SearchMetrics  `json:"search_metrics"`
	IncidentMetrics IncidentStats  `json:"incident_metrics"`
	SystemHealth    SystemHealth   `json:"system_health"`
	Categories      map[string]int `json:"categories"`
}

type SearchMetrics struct {
	TotalSearches     int     `json:"total_searches"`
	SearchesLastHour  int     `json:"searches_last_hour"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
}

type IncidentStats struct {
	TotalIncidents      int     `json:"total_incidents"`
	IncidentsLastHour   int     `json:"incidents_last_hour"`
	AvgProcessingTimeMs float64 `json:"avg_processing_time_ms"`
}

type SystemHealth struct {
	UptimePercentage float64 `json:"uptime_percentage"`
	LastCheckHealthy bool    `json:"last_check_healthy"`
}

// Metrics returns the current aggregate view.
func (c *Collector) Metrics() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	lastHour := now.Add(-time.Hour)

	snap := Snapshot{
		Timestamp: now,
		SearchMetrics: SearchMetrics{
			TotalSearches:     c.totalSearches,
			AvgResponseTimeMs: round2(avgSearchLatency(lastN(c.searches, 100))),
		},
		IncidentMetrics: IncidentStats{
			TotalIncidents:      c.totalIncidents,
			AvgProcessingTimeMs: round2(avgIncidentLatency(lastN(c.incidents, 100))),
		},
		Categories: make(map[string]int),
	}

	for _, s := range c.searches {
		if s.at.After(lastHour) {
			snap.SearchMetrics.SearchesLastHour++
		}
	}
	for _, i := range c.incidents {
		if i.at.After(lastHour) {
			snap.IncidentMetrics.IncidentsLastHour++
		}
		snap.Categories[i.category]++
	}

	snap.SystemHealth = c.systemHealthLocked()
	return snap
}

func (c *Collector) systemHealthLocked() SystemHealth {
	recent := lastN(c.health, 50)
	if len(recent) == 0 {
		return SystemHealth{UptimePercentage: 100}
	}
	healthy := 0
	for _, h := range recent {
		if h.healthy {
			healthy++
		}
	}
	return SystemHealth{
		UptimePercentage: round2(float64(healthy) / float64(len(recent)) * 100),
		LastCheckHealthy: recent[len(recent)-1].healthy,
	}
}

// Trend labels produced by comparing the recent latency window against
// the one before it.
const (
	TrendImproving        = "improving"
	TrendDegrading        = "degrading"
	TrendStable           = "stable"
	TrendInsufficientData = "insufficient_data"
)

// DashboardStats is the payload behind GET /api/dashboard/stats.
type DashboardStats struct {
	Overview          Snapshot           `json:"overview"`
	SearchTrend       string             `json:"search_trend"`
	IncidentTrend     string             `json:"incident_trend"`
	CategoryBreakdown map[string]Percent `json:"categories"`
	RecentActivity    []Activity         `json:"recent_activity"`
}

type Percent struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Activity is one entry of the recent-activity feed.
type Activity struct {
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
}

// Dashboard returns the extended dashboard view with trends and the
// recent-activity feed.
func (c *Collector) Dashboard() DashboardStats {
	stats := DashboardStats{
		Overview:      c.Metrics(),
		SearchTrend:   c.searchTrend(),
		IncidentTrend: c.incidentTrend(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	total := 0
	counts := make(map[string]int)
	for _, i := range c.incidents {
		counts[i.category]++
		total++
	}
	stats.CategoryBreakdown = make(map[string]Percent, len(counts))
	for cat, n := range counts {
		pct := 0.0
		if total > 0 {
			pct = round1(float64(n) / float64(total) * 100)
		}
		stats.CategoryBreakdown[cat] = Percent{Count: n, Percentage: pct}
	}

	stats.RecentActivity = c.recentActivityLocked()
	return stats
}

func (c *Collector) searchTrend() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	lat := make([]float64, len(c.searches))
	for i, s := range c.searches {
		lat[i] = s.latencyMs
	}
	return latencyTrend(lat)
}

func (c *Collector) incidentTrend() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	lat := make([]float64, len(c.incidents))
	for i, s := range c.incidents {
		lat[i] = s.latencyMs
	}
	return latencyTrend(lat)
}

// latencyTrend compares the mean of the most recent 50 samples against
// the 50 before them. Less than 10 samples total is not enough signal.
func latencyTrend(latencies []float64) string {
	if len(latencies) < 10 {
		return TrendInsufficientData
	}

	recent := lastNFloats(latencies, 50)
	older := latencies[:len(latencies)-len(recent)]
	if len(older) > 50 {
		older = older[len(older)-50:]
	}
	if len(older) == 0 {
		return TrendImproving
	}

	recentAvg := mean(recent)
	olderAvg := mean(older)
	switch {
	case recentAvg < olderAvg*0.95:
		return TrendImproving
	case recentAvg > olderAvg*1.05:
		return TrendDegrading
	default:
		return TrendStable
	}
}

func (c *Collector) recentActivityLocked() []Activity {
	lastHour := c.now().Add(-time.Hour)

	var activity []Activity
	for _, s := range lastN(c.searches, 5) {
		if s.at.After(lastHour) {
			activity = append(activity, Activity{
				Type:        "search",
				Timestamp:   s.at,
				Description: describeSearch(s),
			})
		}
	}
	for _, i := range lastN(c.incidents, 3) {
		if i.at.After(lastHour) {
			activity = append(activity, Activity{
				Type:        "incident",
				Timestamp:   i.at,
				Description: "Incident classified as " + i.category,
			})
		}
	}

	sort.Slice(activity, func(i, j int) bool {
		return activity[i].Timestamp.After(activity[j].Timestamp)
	})
	if len(activity) > 10 {
		activity = activity[:10]
	}
	return activity
}

func describeSearch(s searchSample) string {
	return "Knowledge search completed in " + formatMs(s.latencyMs)
}

func formatMs(ms float64) string {
	return time.Duration(ms * float64(time.Millisecond)).Round(time.Millisecond).String()
}

func lastN[T any](s []T, n int) []T {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}

func lastNFloats(s []float64, n int) []float64 {
	return lastN(s, n)
}

func avgSearchLatency(s []searchSample) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		sum += v.latencyMs
	}
	return sum / float64(len(s))
}

func avgIncidentLatency(s []incidentSample) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		sum += v.latencyMs
	}
	return sum / float64(len(s))
}

func mean(s []float64) float64 {
	if len(s) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s {
		sum += v
	}
	return sum / float64(len(s))
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
