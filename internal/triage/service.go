// Package triage classifies incoming incident reports, matches them
// against historical incidents, and produces routing decisions. The
// generative classifier is consulted first; the deterministic keyword
// rules take over whenever it degrades.
package triage

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kitehq/kite/internal/classify"
	"github.com/kitehq/kite/internal/estimate"
	"github.com/kitehq/kite/internal/genai"
	"github.com/kitehq/kite/internal/metrics"
)

// similarityThreshold is the minimum score for a historical incident
// to count as similar. Strictly greater-than.
const similarityThreshold = 0.3

// maxSimilarIncidents caps the similar-incident list in a triage report.
const maxSimilarIncidents = 3

// SimilarIncident summarizes one historical match.
type SimilarIncident struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Similarity     float64  `json:"similarity"`
	ResolutionMins int      `json:"resolution_time"`
	Procedures     []string `json:"procedures"`
}

// Report is the triage outcome for one incident.
type Report struct {
	IncidentID          string            `json:"incident_id"`
	Category            classify.Category `json:"category"`
	Confidence          float64           `json:"confidence"`
	SuggestedProcedures []string          `json:"suggested_procedures"`
	EstimatedResolution string            `json:"estimated_resolution_time"`
	SimilarIncidents    []SimilarIncident `json:"similar_incidents"`
	AutoAssignedTo      string            `json:"auto_assigned_to"`
	Severity            string            `json:"severity"`
	Priority            string            `json:"priority"`
	Timestamp           time.Time         `json:"timestamp"`
}

// Service performs incident triage.
type Service struct {
	ai        *genai.Adapter // nil disables generative classification
	estimator *estimate.Estimator
	history   []HistoricalIncident
	sink      metrics.Sink
	now       func() time.Time
}

// NewService wires a triage service over the given incident history.
// Pass a nil adapter to classify with keyword rules only.
func NewService(ai *genai.Adapter, estimator *estimate.Estimator, history []HistoricalIncident, sink metrics.Sink) *Service {
	if estimator == nil {
		estimator = estimate.New()
	}
	if sink == nil {
		sink = metrics.Noop{}
	}
	return &Service{ai: ai, estimator: estimator, history: history, sink: sink, now: time.Now}
}

// ClassifyIncident triages a new incident report. Severity and priority
// default to "medium" and "normal". Classification never fails: when
// the generative path degrades the keyword rules decide.
func (s *Service) ClassifyIncident(ctx context.Context, description, severity, priority string) Report {
	start := s.now()
	if severity == "" {
		severity = "medium"
	}
	if priority == "" {
		priority = "normal"
	}

	result := s.classify(ctx, description)

	report := Report{
		IncidentID:          s.newIncidentID(),
		Category:            result.Category,
		Confidence:          result.Confidence,
		SuggestedProcedures: result.Procedures,
		EstimatedResolution: s.estimator.Estimate(result.Category, severity),
		SimilarIncidents:    s.findSimilar(description, result.Category),
		AutoAssignedTo:      classify.Team(result.Category),
		Severity:            severity,
		Priority:            priority,
		Timestamp:           s.now().UTC(),
	}

	s.sink.RecordClassification(s.now().Sub(start), string(report.Category))
	return report
}

func (s *Service) classify(ctx context.Context, description string) classify.Result {
	if s.ai != nil {
		if r := s.ai.Classify(ctx, description); r != nil {
			return *r
		}
		slog.Warn("generative classification degraded, using keyword rules")
	}
	return classify.Fallback(description)
}

// newIncidentID builds an identifier of the form INC-YYYYMMDD-XXXXXXXX
// where the suffix is the first eight hex digits of a random UUID.
func (s *Service) newIncidentID() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("INC-%s-%s", s.now().Format("20060102"), suffix)
}

// findSimilar scores the incident history against the description.
// Half the score is a category match, half is word overlap between the
// descriptions relative to the larger word set.
func (s *Service) findSimilar(description string, category classify.Category) []SimilarIncident {
	descWords := wordSet(description)

	var similar []SimilarIncident
	for _, inc := range s.history {
		score := 0.0
		if inc.Category == category {
			score += 0.5
		}

		incWords := wordSet(inc.Description)
		if shared := overlap(descWords, incWords); shared > 0 {
			larger := len(descWords)
			if len(incWords) > larger {
				larger = len(incWords)
			}
			score += float64(shared) / float64(larger) * 0.5
		}

		if score > similarityThreshold {
			similar = append(similar, SimilarIncident{
				ID:             inc.ID,
				Title:          inc.Title,
				Similarity:     round2(score),
				ResolutionMins: inc.ResolutionMins,
				Procedures:     inc.Procedures,
			})
		}
	}

	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].Similarity > similar[j].Similarity
	})
	if len(similar) > maxSimilarIncidents {
		similar = similar[:maxSimilarIncidents]
	}
	return similar
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(s)) {
		set[w] = struct{}{}
	}
	return set
}

func overlap(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for w := range a {
		if _, ok := b[w]; ok {
			n++
		}
	}
	return n
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
