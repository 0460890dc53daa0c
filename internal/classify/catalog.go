package classify

// Category is an incident category name. The set is fixed; classification
// results outside it are rejected by the callers.
type Category = string

const (
	CategoryEmail          Category = "Email Infrastructure"
	CategoryDatabase       Category = "Database"
	CategoryNetwork        Category = "Network"
	CategoryPerformance    Category = "Performance"
	CategoryAuthentication Category = "Authentication"
	CategorySecurity       Category = "Security"
	CategoryApplication    Category = "Application"
	CategoryInfrastructure Category = "Infrastructure"
)

// Categories lists every known category in catalog order.
var Categories = []Category{
	CategoryEmail,
	CategoryDatabase,
	CategoryNetwork,
	CategoryPerformance,
	CategoryAuthentication,
	CategorySecurity,
	CategoryApplication,
	CategoryInfrastructure,
}

// procedures maps each category to its three standard resolution steps.
var procedures = map[Category][]string{
	CategoryEmail:          {"Check email server status", "Verify DNS MX records", "Restart email services"},
	CategoryDatabase:       {"Check database connection pool", "Analyze slow queries", "Restart database connections"},
	CategoryNetwork:        {"Check network switches", "Verify internet connectivity", "Restart network equipment"},
	CategoryPerformance:    {"Check server CPU/memory", "Analyze database queries", "Clear application cache"},
	CategoryAuthentication: {"Check authentication service", "Verify LDAP connectivity", "Review security logs"},
	CategorySecurity:       {"Isolate affected systems", "Review security logs", "Check for malware"},
	CategoryApplication:    {"Check application logs", "Restart application services", "Verify configuration"},
	CategoryInfrastructure: {"Check hardware status", "Verify power and cooling", "Review system logs"},
}

// teams maps each category to the on-call team that owns it.
var teams = map[Category]string{
	CategoryEmail:          "email-team@demo.local",
	CategoryDatabase:       "dba-team@demo.local",
	CategoryNetwork:        "network-ops@demo.local",
	CategoryPerformance:    "platform-team@demo.local",
	CategoryAuthentication: "security-team@demo.local",
	CategorySecurity:       "security-team@demo.local",
	CategoryApplication:    "dev-team@demo.local",
	CategoryInfrastructure: "infrastructure-team@demo.local",
}

// DefaultTeam handles incidents whose category has no owner mapping.
const DefaultTeam = "support-team@demo.local"

// IsKnown reports whether c is one of the known categories.
func IsKnown(c Category) bool {
	_, ok := procedures[c]
	return ok
}

// Procedures returns the standard resolution steps for a category.
// Returns nil for unknown categories.
func Procedures(c Category) []string {
	steps, ok := procedures[c]
	if !ok {
		return nil
	}
	out := make([]string, len(steps))
	copy(out, steps)
	return out
}

// Team returns the team a category's incidents are assigned to, or
// DefaultTeam when the category has no mapping.
func Team(c Category) string {
	if team, ok := teams[c]; ok {
		return team
	}
	return DefaultTeam
}
