package classify

import "strings"

// FallbackConfidence is reported for every rule-based result. It is
// deliberately lower than typical generative confidences so downstream
// consumers can tell the two paths apart.
const FallbackConfidence = 0.75

// Result is a classification outcome: the matched category, its standard
// procedures, and how much to trust the match.
type Result struct {
	Category   Category
	Confidence float64
	Procedures []string
	Reasoning  string
}

// rule pairs a keyword set with the category it selects.
type rule struct {
	keywords []string
	category Category
}

// rules is evaluated top to bottom; the first rule with any keyword
// present in the description wins. The order is load-bearing: "timeout"
// appears under both Database and Performance, and reordering would
// silently change which one claims it.
var rules = []rule{
	{[]string{"email", "mail", "smtp", "imap"}, CategoryEmail},
	{[]string{"database", "db", "sql", "connection", "timeout"}, CategoryDatabase},
	{[]string{"network", "connectivity", "internet", "ping"}, CategoryNetwork},
	{[]string{"slow", "performance", "loading", "timeout"}, CategoryPerformance},
	{[]string{"login", "authentication", "password", "access"}, CategoryAuthentication},
	{[]string{"security", "virus", "malware", "breach"}, CategorySecurity},
	{[]string{"application", "app", "service", "server"}, CategoryApplication},
}

// Fallback classifies a description by keyword matching alone. It is
// deterministic and never fails: descriptions matching no rule land in
// Infrastructure.
func Fallback(description string) Result {
	lower := strings.ToLower(description)

	category := CategoryInfrastructure
	for _, r := range rules {
		if matchesAny(lower, r.keywords) {
			category = r.category
			break
		}
	}

	return Result{
		Category:   category,
		Confidence: FallbackConfidence,
		Procedures: Procedures(category),
		Reasoning:  "Rule-based classification",
	}
}

func matchesAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
