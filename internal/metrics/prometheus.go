package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus is a Sink exporting counters and latency histograms for
// scraping. Register it once per process.
type Prometheus struct {
	searches       prometheus.Counter
	searchLatency  prometheus.Histogram
	classification *prometheus.CounterVec
	classifyLat    prometheus.Histogram
	healthChecks   *prometheus.CounterVec
}

// NewPrometheus creates the sink and registers its collectors with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	p := &Prometheus{
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kite_searches_total",
			Help: "Completed knowledge searches.",
		}),
		searchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kite_search_duration_seconds",
			Help:    "Knowledge search latency.",
			Buckets: prometheus.DefBuckets,
		}),
		classification: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kite_classifications_total",
			Help: "Completed incident classifications.",
		}, []string{"category"}),
		classifyLat: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kite_classification_duration_seconds",
			Help:    "Incident classification latency.",
			Buckets: prometheus.DefBuckets,
		}),
		healthChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kite_health_checks_total",
			Help: "Health probe outcomes.",
		}, []string{"healthy"}),
	}
	reg.MustRegister(p.searches, p.searchLatency, p.classification, p.classifyLat, p.healthChecks)
	return p
}

// RecordSearch implements Sink.
func (p *Prometheus) RecordSearch(latency time.Duration, _ int) {
	p.searches.Inc()
	p.searchLatency.Observe(latency.Seconds())
}

// RecordClassification implements Sink.
func (p *Prometheus) RecordClassification(latency time.Duration, category string) {
	p.classification.WithLabelValues(category).Inc()
	p.classifyLat.Observe(latency.Seconds())
}

// RecordHealthCheck implements Sink.
func (p *Prometheus) RecordHealthCheck(_ time.Duration, healthy bool) {
	label := "false"
	if healthy {
		label = "true"
	}
	p.healthChecks.WithLabelValues(label).Inc()
}
