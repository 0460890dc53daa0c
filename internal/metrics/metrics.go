// Package metrics collects operational telemetry for the platform. The
// core services report into a Sink after each orchestration call; sinks
// must never fail back into the request path.
package metrics

import "time"

// Sink receives one record per completed operation. Implementations must
// be safe for concurrent use and must not return errors or panic into
// the caller.
type Sink interface {
	// RecordSearch reports a completed knowledge search.
	RecordSearch(latency time.Duration, resultCount int)

	// RecordClassification reports a completed incident classification.
	RecordClassification(latency time.Duration, category string)

	// RecordHealthCheck reports a health probe outcome.
	RecordHealthCheck(latency time.Duration, healthy bool)
}

// Noop discards every record.
type Noop struct{}

func (Noop) RecordSearch(time.Duration, int)            {}
func (Noop) RecordClassification(time.Duration, string) {}
func (Noop) RecordHealthCheck(time.Duration, bool)      {}

// fanout duplicates records to several sinks.
type fanout []Sink

// Fanout returns a Sink that forwards each record to all of the given
// sinks in order.
func Fanout(sinks ...Sink) Sink {
	return fanout(sinks)
}

func (f fanout) RecordSearch(latency time.Duration, resultCount int) {
	for _, s := range f {
		s.RecordSearch(latency, resultCount)
	}
}

func (f fanout) RecordClassification(latency time.Duration, category string) {
	for _, s := range f {
		s.RecordClassification(latency, category)
	}
}

func (f fanout) RecordHealthCheck(latency time.Duration, healthy bool) {
	for _, s := range f {
		s.RecordHealthCheck(latency, healthy)
	}
}
