package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pankaj-dahiya-devops/netaudit/internal/engine"
	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

// topIssues caps the issue list of RenderSummary.
const topIssues = 5

// RenderReport writes a one-line header followed by the findings table.
func RenderReport(w io.Writer, r *models.DeviceReport, opts TableOptions) {
	s := r.Summary
	fmt.Fprintf(w, "File: %-30s  OS: %-6s  Score: %3d  Risk: %-13s  Checks: %d  Issues: %d\n",
		r.FileName, s.OSType, s.OverallScore,
		ColorRisk(engine.ClassifyRisk(r), opts.Colored),
		s.TotalChecks, s.IssuesFound)
	fmt.Fprintln(w)
	RenderFindings(w, r.Findings, opts)
}

// RenderSummary writes a compact view of a device report: score, risk,
// per-severity issue counts and the most severe open issues.
//
// It reuses the computed Summary; no engine logic is duplicated.
func RenderSummary(w io.Writer, r *models.DeviceReport, colored bool) {
	s := r.Summary

	fmt.Fprintf(w, "File:     %s\n", r.FileName)
	fmt.Fprintf(w, "OS:       %s\n", s.OSType)
	fmt.Fprintf(w, "Score:    %d/100\n", s.OverallScore)
	fmt.Fprintf(w, "Risk:     %s\n", ColorRisk(engine.ClassifyRisk(r), colored))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total Checks:  %d\n", s.TotalChecks)
	fmt.Fprintf(w, "Issues Found:  %d\n", s.IssuesFound)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Severity Breakdown")
	for _, sev := range models.Severities {
		fmt.Fprintf(w, "  %s  %d\n", severityCell(sev, 10, colored), s.BySeverity[sev])
	}

	var issues []models.Finding
	for _, f := range SortFindings(r.Findings) {
		if f.IsIssue() {
			issues = append(issues, f)
		}
	}
	if len(issues) == 0 {
		return
	}
	if len(issues) > topIssues {
		issues = issues[:topIssues]
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Top Issues")
	for _, f := range issues {
		fmt.Fprintf(w, "  %s  %-30s  %s\n", severityCell(f.Severity, 10, colored), f.ID, ShortenMessage(f.Title, 60))
	}
}

// RenderComparison writes a before/after comparison of one device.
func RenderComparison(w io.Writer, c *models.ComparisonReport, opts TableOptions) {
	fmt.Fprintf(w, "Before: %s (score %d)\n", c.FileNameBefore, c.ScoreBefore)
	fmt.Fprintf(w, "After:  %s (score %d)\n", c.FileNameAfter, c.ScoreAfter)
	fmt.Fprintf(w, "Score change: %+d\n", c.ScoreAfter-c.ScoreBefore)
	fmt.Fprintf(w, "Mitigated: %d  Pending: %d  New: %d\n", c.MitigatedCount, c.PendingCount, c.NewCount)

	section(w, "Mitigated", c.Mitigated, opts)
	section(w, "Pending", c.Pending, opts)
	section(w, "New", c.New, opts)
}

// RenderDeviceComparison writes a side-by-side comparison of two devices.
func RenderDeviceComparison(w io.Writer, c *models.DeviceComparisonReport, opts TableOptions) {
	fmt.Fprintf(w, "A: %s (score %d)\n", c.FileNameA, c.ScoreA)
	fmt.Fprintf(w, "B: %s (score %d)\n", c.FileNameB, c.ScoreB)
	fmt.Fprintf(w, "Common: %d  Only in A: %d  Only in B: %d\n", len(c.Common), len(c.OnlyInA), len(c.OnlyInB))

	section(w, "Common", c.Common, opts)
	section(w, "Only in "+c.FileNameA, c.OnlyInA, opts)
	section(w, "Only in "+c.FileNameB, c.OnlyInB, opts)
}

func section(w io.Writer, title string, findings []models.Finding, opts TableOptions) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s (%d)\n", title, len(findings))
	if len(findings) == 0 {
		return
	}
	// Comparison partitions may hold COMPLIANT findings (mitigated).
	opts.IncludeCompliant = true
	RenderFindings(w, findings, opts)
}

// RenderFleet writes the fleet KPIs, distributions, common findings and the
// per-device ranking.
func RenderFleet(w io.Writer, f *models.FleetReport, colored bool) {
	k := f.KPIs
	fmt.Fprintf(w, "Devices: %d  Average Score: %d  Overall Risk: %s  Critical Issues: %d\n",
		k.TotalDevices, k.AverageScore, ColorRisk(k.OverallRisk, colored), k.TotalCriticals)
	if k.TotalDevices == 0 {
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Risk Distribution")
	for _, b := range f.RiskDistribution {
		fmt.Fprintf(w, "  %-13s  %3d  %s\n", b.Risk.Text, b.Count, bar(b.Count, k.TotalDevices))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Score Distribution")
	for _, b := range f.ScoreDistribution {
		fmt.Fprintf(w, "  %-13s  %3d  %s\n", b.Label, b.Count, bar(b.Count, k.TotalDevices))
	}

	if len(f.TopCommonFindings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Most Common Issues")
		for _, c := range f.TopCommonFindings {
			fmt.Fprintf(w, "  %3d  %s  %-30s  %s\n", c.Count, severityCell(c.Severity, 10, colored), c.ID, ShortenMessage(c.Title, 50))
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-40s  %5s  %s\n", "DEVICE", "SCORE", "RISK")
	fmt.Fprintln(w, strings.Repeat("-", 62))
	for _, d := range f.Devices {
		fmt.Fprintf(w, "%-40s  %5d  %s\n", ShortenMessage(d.FileName, 40), d.Score, ColorRisk(d.Risk, colored))
	}
}

// bar draws a 20-cell histogram bar of count out of total.
func bar(count, total int) string {
	const width = 20
	if total == 0 {
		return ""
	}
	return strings.Repeat("#", count*width/total)
}
