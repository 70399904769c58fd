package rules

import (
	"testing"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

func iosCtx(config string) RuleContext {
	return RuleContext{Config: config, OS: models.OSTypeIOS}
}

func nxosCtx(config string) RuleContext {
	return RuleContext{Config: config, OS: models.OSTypeNXOS}
}

// findingByID returns the first finding with id.
func findingByID(findings []models.Finding, id string) (models.Finding, bool) {
	for _, f := range findings {
		if f.ID == id {
			return f, true
		}
	}
	return models.Finding{}, false
}

// mustFinding fails the test when id is absent.
func mustFinding(t *testing.T, findings []models.Finding, id string) models.Finding {
	t.Helper()
	f, ok := findingByID(findings, id)
	if !ok {
		var ids []string
		for _, f := range findings {
			ids = append(ids, f.ID)
		}
		t.Fatalf("finding %q not found; got %v", id, ids)
	}
	return f
}

func assertStatus(t *testing.T, f models.Finding, status models.ComplianceStatus, sev models.Severity) {
	t.Helper()
	if f.Status != status {
		t.Errorf("%s: Status = %q; want %q", f.ID, f.Status, status)
	}
	if f.Severity != sev {
		t.Errorf("%s: Severity = %q; want %q", f.ID, f.Severity, sev)
	}
}

func containsLine(lines []string, want string) bool {
	for _, l := range lines {
		if l == want {
			return true
		}
	}
	return false
}

func assertModule(t *testing.T, findings []models.Finding, module string) {
	t.Helper()
	for _, f := range findings {
		if f.Module != module {
			t.Errorf("%s: Module = %q; want %q", f.ID, f.Module, module)
		}
	}
}
