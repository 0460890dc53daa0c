package triage

import "time"

// HistoricalIncident is a resolved incident retained for similarity
// matching against new reports.
type HistoricalIncident struct {
	ID              string
	Title           string
	Description     string
	Category        string
	Severity        string
	ResolutionMins  int
	Procedures      []string
	ResolvedAt      time.Time
}

// SampleIncidents returns the seed incident history used by the demo
// deployment and the test suite.
func SampleIncidents() []HistoricalIncident {
	return []HistoricalIncident{
		{
			ID:             "INC-2024-001",
			Title:          "Email server outage",
			Description:    "Users unable to send or receive emails",
			Category:       "Email Infrastructure",
			Severity:       "high",
			ResolutionMins: 45,
			Procedures:     []string{"Check email server status", "Verify DNS MX records", "Restart email services"},
			ResolvedAt:     time.Date(2024, 2, 15, 14, 30, 0, 0, time.UTC),
		},
		{
			ID:             "INC-2024-002",
			Title:          "Database connection timeout",
			Description:    "Application showing database connection timeout errors",
			Category:       "Database",
			Severity:       "medium",
			ResolutionMins: 22,
			Procedures:     []string{"Check database connection pool", "Analyze slow queries", "Restart database connections"},
			ResolvedAt:     time.Date(2024, 2, 18, 9, 15, 0, 0, time.UTC),
		},
		{
			ID:             "INC-2024-003",
			Title:          "Website loading slowly",
			Description:    "Website pages taking more than 10 seconds to load",
			Category:       "Performance",
			Severity:       "medium",
			ResolutionMins: 67,
			Procedures:     []string{"Check server CPU/memory", "Analyze database queries", "Clear application cache"},
			ResolvedAt:     time.Date(2024, 2, 20, 16, 45, 0, 0, time.UTC),
		},
		{
			ID:             "INC-2024-004",
			Title:          "Network connectivity issues",
			Description:    "Intermittent network connectivity problems affecting multiple users",
			Category:       "Network",
			Severity:       "high",
			ResolutionMins: 89,
			Procedures:     []string{"Check network switches", "Verify internet connectivity", "Restart network equipment"},
			ResolvedAt:     time.Date(2024, 2, 25, 11, 20, 0, 0, time.UTC),
		},
		{
			ID:             "INC-2024-005",
			Title:          "Login authentication failure",
			Description:    "Users cannot log in with correct credentials",
			Category:       "Authentication",
			Severity:       "critical",
			ResolutionMins: 34,
			Procedures:     []string{"Check authentication service", "Verify LDAP connectivity", "Review security logs"},
			ResolvedAt:     time.Date(2024, 3, 1, 8, 30, 0, 0, time.UTC),
		},
	}
}
