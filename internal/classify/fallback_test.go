package classify

import (
	"reflect"
	"testing"
)

func TestFallbackCategories(t *testing.T) {
	tests := []struct {
		name        string
		description string
		want        Category
	}{
		{"email keywords", "SMTP relay rejecting outbound mail", CategoryEmail},
		{"database timeout", "database connection timeout", CategoryDatabase},
		{"network", "intermittent connectivity problems on floor 3", CategoryNetwork},
		{"performance", "pages loading very slow since the deploy", CategoryPerformance},
		{"authentication", "users cannot log in with correct password", CategoryAuthentication},
		{"security", "possible malware on the build agents", CategorySecurity},
		{"application", "app crashes when exporting reports", CategoryApplication},
		{"no match", "the office plant needs watering", CategoryInfrastructure},
		{"case insensitive", "EMAIL SERVER DOWN", CategoryEmail},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Fallback(tt.description)
			if got.Category != tt.want {
				t.Errorf("Fallback(%q).Category = %q, want %q", tt.description, got.Category, tt.want)
			}
			if got.Confidence != FallbackConfidence {
				t.Errorf("Confidence = %v, want %v", got.Confidence, FallbackConfidence)
			}
			if len(got.Procedures) != 3 {
				t.Errorf("got %d procedures, want 3", len(got.Procedures))
			}
		})
	}
}

// "timeout" appears in both the Database and Performance keyword sets.
// Database is listed first, so it must win.
func TestFallbackRuleOrder(t *testing.T) {
	got := Fallback("request timeout")
	if got.Category != CategoryDatabase {
		t.Errorf("Fallback(\"request timeout\").Category = %q, want %q", got.Category, CategoryDatabase)
	}
}

func TestFallbackDeterministic(t *testing.T) {
	first := Fallback("database connection timeout")
	for i := 0; i < 10; i++ {
		if got := Fallback("database connection timeout"); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d differed: %+v vs %+v", i, got, first)
		}
	}
	want := []string{"Check database connection pool", "Analyze slow queries", "Restart database connections"}
	if !reflect.DeepEqual(first.Procedures, want) {
		t.Errorf("Procedures = %v, want %v", first.Procedures, want)
	}
}

func TestTeamAssignment(t *testing.T) {
	if got := Team(CategoryAuthentication); got != "security-team@demo.local" {
		t.Errorf("Team(Authentication) = %q, want security-team@demo.local", got)
	}
	if got := Team("Unmapped"); got != DefaultTeam {
		t.Errorf("Team(unmapped) = %q, want %q", got, DefaultTeam)
	}
}

func TestProceduresCopy(t *testing.T) {
	p := Procedures(CategoryDatabase)
	p[0] = "mutated"
	if Procedures(CategoryDatabase)[0] == "mutated" {
		t.Error("Procedures returned a shared slice")
	}
}
