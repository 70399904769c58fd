package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

// Severity and risk colours used when TableOptions.Colored is true.
var (
	colorCritical = color.New(color.FgRed, color.Bold)
	colorHigh     = color.New(color.FgRed)
	colorMedium   = color.New(color.FgYellow)
	colorLow      = color.New(color.FgBlue)
	colorOK       = color.New(color.FgGreen)
)

// TableOptions controls what RenderFindings prints and how severity is coloured.
type TableOptions struct {
	// Colored wraps severity labels with terminal colour codes. Default false
	// (CI-safe). fatih/color still honours NO_COLOR and non-TTY output.
	Colored bool

	// IncludeCompliant lists COMPLIANT and NOT_APPLICABLE findings too. By
	// default only NON_COMPLIANT and ERROR findings are shown.
	IncludeCompliant bool

	// ShowLines prints the affected configuration lines under each row.
	ShowLines bool
}

func severityColor(sev models.Severity) *color.Color {
	switch sev {
	case models.SeverityCritical:
		return colorCritical
	case models.SeverityHigh:
		return colorHigh
	case models.SeverityMedium:
		return colorMedium
	case models.SeverityLow:
		return colorLow
	default:
		return nil
	}
}

// ColorSeverity colours a severity label when colored is true.
// When colored is false the string is returned unchanged (CI-safe default).
func ColorSeverity(sev models.Severity, colored bool) string {
	s := string(sev)
	if c := severityColor(sev); colored && c != nil {
		return c.Sprint(s)
	}
	return s
}

// ColorRisk colours a risk label the way ColorSeverity colours the matching
// severity.
func ColorRisk(r models.RiskLevel, colored bool) string {
	if !colored {
		return r.Text
	}
	switch r {
	case models.RiskCritical:
		return colorCritical.Sprint(r.Text)
	case models.RiskHigh:
		return colorHigh.Sprint(r.Text)
	case models.RiskModerate:
		return colorMedium.Sprint(r.Text)
	case models.RiskLow:
		return colorOK.Sprint(r.Text)
	default:
		return r.Text
	}
}

// ShortenMessage truncates msg to at most max runes, appending "..." when truncated.
// max is treated as at least 4 to guarantee space for the ellipsis.
func ShortenMessage(msg string, max int) string {
	if max < 4 {
		max = 4
	}
	runes := []rune(msg)
	if len(runes) <= max {
		return msg
	}
	return string(runes[:max-3]) + "..."
}

// severityCell returns the severity padded to width characters.
// When colored, only the text is wrapped; trailing padding stays plain so
// later columns line up regardless of terminal colour support.
func severityCell(sev models.Severity, width int, colored bool) string {
	text := string(sev)
	if !colored || severityColor(sev) == nil {
		return fmt.Sprintf("%-*s", width, text)
	}
	return ColorSeverity(sev, true) + strings.Repeat(" ", max(0, width-len(text)))
}

// SortFindings returns a copy of findings ordered by severity (CRITICAL
// first), NON_COMPLIANT before other statuses within a severity, and
// original order otherwise. The input is not modified.
func SortFindings(findings []models.Finding) []models.Finding {
	sorted := make([]models.Finding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}
		return a.IsNonCompliant() && !b.IsNonCompliant()
	})
	return sorted
}

// visible filters findings per opts.
func visible(findings []models.Finding, opts TableOptions) []models.Finding {
	if opts.IncludeCompliant {
		return findings
	}
	var out []models.Finding
	for _, f := range findings {
		if f.IsIssue() {
			out = append(out, f)
		}
	}
	return out
}

// RenderFindings writes a findings table to w, sorted by severity.
//
// Column order:
//
//	SEVERITY  STATUS  MODULE  ID  TITLE
func RenderFindings(w io.Writer, findings []models.Finding, opts TableOptions) {
	rows := SortFindings(visible(findings, opts))
	if len(rows) == 0 {
		fmt.Fprintln(w, "No findings.")
		return
	}

	const (
		wSeverity = 10
		wStatus   = 14
		wModule   = 11
		wID       = 34
		wTitle    = 60
	)

	header := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s  %s",
		wSeverity, "SEVERITY", wStatus, "STATUS", wModule, "MODULE", wID, "ID", "TITLE")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)+wTitle-len("TITLE")))

	for _, f := range rows {
		fmt.Fprintf(w, "%s  %-*s  %-*s  %-*s  %s\n",
			severityCell(f.Severity, wSeverity, opts.Colored),
			wStatus, string(f.Status),
			wModule, f.Module,
			wID, ShortenMessage(f.ID, wID),
			ShortenMessage(f.Title, wTitle),
		)
		if opts.ShowLines {
			for _, l := range f.AffectedLines {
				fmt.Fprintf(w, "%*s| %s\n", wSeverity+2, "", strings.TrimSpace(l))
			}
		}
	}
}
