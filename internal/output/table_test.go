package output_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
	"github.com/pankaj-dahiya-devops/netaudit/internal/output"
)

// ── helpers ───────────────────────────────────────────────────────────────────

func renderToString(findings []models.Finding, opts output.TableOptions) string {
	var buf bytes.Buffer
	output.RenderFindings(&buf, findings, opts)
	return buf.String()
}

func oneFinding(overrides ...func(*models.Finding)) models.Finding {
	f := models.Finding{
		ID:            "check-2",
		Module:        "PASSWORDS",
		Title:         "Use 'enable secret' instead of 'enable password'",
		Severity:      models.SeverityCritical,
		Status:        models.StatusNonCompliant,
		AffectedLines: []string{"enable password foo123"},
	}
	for _, fn := range overrides {
		fn(&f)
	}
	return f
}

func indexOf(t *testing.T, out, substr string) int {
	t.Helper()
	i := strings.Index(out, substr)
	if i < 0 {
		t.Fatalf("%q not found in output\ngot:\n%s", substr, out)
	}
	return i
}

// ── RenderFindings ────────────────────────────────────────────────────────────

func TestRenderFindings_Empty(t *testing.T) {
	out := renderToString(nil, output.TableOptions{})
	if strings.TrimSpace(out) != "No findings." {
		t.Errorf("got %q; want %q", out, "No findings.")
	}
}

func TestRenderFindings_HeaderAndRow(t *testing.T) {
	out := renderToString([]models.Finding{oneFinding()}, output.TableOptions{})
	for _, want := range []string{"SEVERITY", "STATUS", "MODULE", "ID", "TITLE", "CRITICAL", "NON_COMPLIANT", "PASSWORDS", "check-2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\ngot:\n%s", want, out)
		}
	}
	if strings.Contains(out, "enable password foo123") {
		t.Errorf("affected lines must not appear without ShowLines\ngot:\n%s", out)
	}
}

func TestRenderFindings_SortedBySeverity(t *testing.T) {
	findings := []models.Finding{
		oneFinding(func(f *models.Finding) { f.ID = "low-one"; f.Severity = models.SeverityLow }),
		oneFinding(func(f *models.Finding) { f.ID = "crit-one"; f.Severity = models.SeverityCritical }),
		oneFinding(func(f *models.Finding) { f.ID = "med-one"; f.Severity = models.SeverityMedium }),
	}
	out := renderToString(findings, output.TableOptions{})
	if !(indexOf(t, out, "crit-one") < indexOf(t, out, "med-one") && indexOf(t, out, "med-one") < indexOf(t, out, "low-one")) {
		t.Errorf("rows not sorted by severity\ngot:\n%s", out)
	}
}

func TestRenderFindings_HidesCompliantByDefault(t *testing.T) {
	findings := []models.Finding{
		oneFinding(),
		oneFinding(func(f *models.Finding) { f.ID = "check-2.3"; f.Status = models.StatusCompliant }),
	}
	if out := renderToString(findings, output.TableOptions{}); strings.Contains(out, "check-2.3") {
		t.Errorf("compliant finding shown by default\ngot:\n%s", out)
	}
	if out := renderToString(findings, output.TableOptions{IncludeCompliant: true}); !strings.Contains(out, "check-2.3") {
		t.Errorf("compliant finding missing with IncludeCompliant\ngot:\n%s", out)
	}
}

func TestRenderFindings_ShowLines(t *testing.T) {
	out := renderToString([]models.Finding{oneFinding()}, output.TableOptions{ShowLines: true})
	if !strings.Contains(out, "| enable password foo123") {
		t.Errorf("affected line missing\ngot:\n%s", out)
	}
}

func TestRenderFindings_NoColorCodesByDefault(t *testing.T) {
	out := renderToString([]models.Finding{oneFinding()}, output.TableOptions{})
	if strings.Contains(out, "\033[") {
		t.Errorf("colour codes in uncoloured output: %q", out)
	}
}

// ── helpers ───────────────────────────────────────────────────────────────────

func TestSortFindings_DoesNotModifyInput(t *testing.T) {
	in := []models.Finding{
		oneFinding(func(f *models.Finding) { f.ID = "a"; f.Severity = models.SeverityInfo }),
		oneFinding(func(f *models.Finding) { f.ID = "b"; f.Severity = models.SeverityHigh }),
	}
	got := output.SortFindings(in)
	if got[0].ID != "b" {
		t.Errorf("got first %q; want %q", got[0].ID, "b")
	}
	if in[0].ID != "a" {
		t.Error("input slice was reordered")
	}
}

func TestSortFindings_NonCompliantFirstWithinSeverity(t *testing.T) {
	in := []models.Finding{
		oneFinding(func(f *models.Finding) { f.ID = "ok"; f.Status = models.StatusCompliant }),
		oneFinding(func(f *models.Finding) { f.ID = "bad" }),
	}
	if got := output.SortFindings(in); got[0].ID != "bad" {
		t.Errorf("got first %q; want %q", got[0].ID, "bad")
	}
}

func TestShortenMessage(t *testing.T) {
	tests := []struct {
		msg  string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-10", 10, "exactly-10"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 1, "a..."},
	}
	for _, tc := range tests {
		if got := output.ShortenMessage(tc.msg, tc.max); got != tc.want {
			t.Errorf("ShortenMessage(%q, %d) = %q; want %q", tc.msg, tc.max, got, tc.want)
		}
	}
}

func TestColorSeverity_Plain(t *testing.T) {
	if got := output.ColorSeverity(models.SeverityHigh, false); got != "HIGH" {
		t.Errorf("got %q; want %q", got, "HIGH")
	}
	if got := output.ColorRisk(models.RiskModerate, false); got != "Moderate" {
		t.Errorf("got %q; want %q", got, "Moderate")
	}
}
