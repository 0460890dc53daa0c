// Package estimate turns an incident's category and severity into a rough
// resolution-time figure. The numbers are demo heuristics, not SLAs.
package estimate

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/kitehq/kite/internal/classify"
)

// Default jitter bounds, in minutes. A small random offset keeps repeated
// estimates from looking machine-stamped.
const (
	DefaultJitterMin = -10
	DefaultJitterMax = 15
)

// minimumMinutes is the floor applied after jitter.
const minimumMinutes = 5

// baseMinutes is the expected resolution time per category before the
// severity adjustment.
var baseMinutes = map[classify.Category]int{
	classify.CategoryEmail:          45,
	classify.CategoryDatabase:       30,
	classify.CategoryNetwork:        60,
	classify.CategoryPerformance:    75,
	classify.CategoryAuthentication: 25,
	classify.CategorySecurity:       120,
	classify.CategoryApplication:    40,
	classify.CategoryInfrastructure: 90,
}

const defaultBaseMinutes = 60

// severityMultipliers scale the base time. Critical incidents get the
// fastest response, low-severity ones wait their turn.
var severityMultipliers = map[string]float64{
	"critical": 0.7,
	"high":     0.8,
	"medium":   1.0,
	"low":      1.3,
}

// Estimator computes resolution-time estimates. The zero value is not
// usable; construct with New.
type Estimator struct {
	jitter func() int
}

// New creates an Estimator with the default jitter range. Each Estimate
// call draws independently from the process-wide math/rand/v2 source,
// which is safe for concurrent use without extra locking.
func New() *Estimator {
	return NewWithJitter(DefaultJitterMin, DefaultJitterMax)
}

// NewWithJitter creates an Estimator whose jitter is drawn uniformly from
// [min, max]. Passing min == max makes estimates deterministic, which the
// tests rely on.
func NewWithJitter(min, max int) *Estimator {
	if max < min {
		min, max = max, min
	}
	return &Estimator{
		jitter: func() int {
			return min + rand.IntN(max-min+1)
		},
	}
}

// Minutes returns the estimated resolution time in minutes for the given
// category and severity: round(base × multiplier) + jitter, floored at 5.
// Unknown categories fall back to 60 base minutes, unknown severities to
// a 1.0 multiplier.
func (e *Estimator) Minutes(category classify.Category, severity string) int {
	base, ok := baseMinutes[category]
	if !ok {
		base = defaultBaseMinutes
	}
	mult, ok := severityMultipliers[severity]
	if !ok {
		mult = 1.0
	}

	minutes := int(math.Round(float64(base)*mult)) + e.jitter()
	if minutes < minimumMinutes {
		minutes = minimumMinutes
	}
	return minutes
}

// Estimate returns the formatted resolution-time estimate.
func (e *Estimator) Estimate(category classify.Category, severity string) string {
	return FormatMinutes(e.Minutes(category, severity))
}

// FormatMinutes renders a minute count the way the dashboard displays it:
// "45 minutes", "1 hour", "2 hours", "2h 5m".
func FormatMinutes(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%d minutes", minutes)
	}
	hours := minutes / 60
	rem := minutes % 60
	if rem == 0 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, rem)
}
