package engine

import (
	"time"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
	"github.com/pankaj-dahiya-devops/netaudit/internal/rules"
)

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedTime }

// fakeRule returns canned findings, or panics when panicMsg is set.
type fakeRule struct {
	id       string
	findings []models.Finding
	panicMsg string
}

func (f fakeRule) ID() string   { return f.id }
func (f fakeRule) Name() string { return "fake " + f.id }
func (f fakeRule) Evaluate(_ rules.RuleContext) []models.Finding {
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	out := make([]models.Finding, len(f.findings))
	for i, fd := range f.findings {
		fd.Module = f.id
		out[i] = fd
	}
	return out
}

func registryOf(rs ...rules.Rule) *rules.DefaultRuleRegistry {
	reg := rules.NewDefaultRuleRegistry()
	for _, r := range rs {
		reg.Register(r)
	}
	return reg
}

func nc(id string, sev models.Severity) models.Finding {
	return models.Finding{ID: id, Title: "title " + id, Severity: sev, Status: models.StatusNonCompliant}
}

func compliant(id string, sev models.Severity) models.Finding {
	return models.Finding{ID: id, Title: "title " + id, Severity: sev, Status: models.StatusCompliant}
}

func ids(findings []models.Finding) []string {
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.ID)
	}
	return out
}

// reportWith builds a report whose summary is derived from findings.
func reportWith(name string, findings ...models.Finding) *models.DeviceReport {
	if findings == nil {
		findings = []models.Finding{}
	}
	return &models.DeviceReport{
		FileName:   name,
		AnalyzedAt: fixedTime,
		Summary:    computeSummary(findings, models.OSTypeIOS),
		Findings:   findings,
	}
}
