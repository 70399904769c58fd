package models

import "time"

// Summary aggregates counts across a device report's findings. It is always
// derived from the findings slice and never edited on its own.
type Summary struct {
	OSType      OSType                   `json:"os_type"`
	TotalChecks int                      `json:"total_checks"`
	IssuesFound int                      `json:"issues_found"`
	BySeverity  map[Severity]int         `json:"by_severity"`
	ByStatus    map[ComplianceStatus]int `json:"by_status"`
	// OverallScore is the percentage of checks that are not NON_COMPLIANT,
	// rounded to the nearest integer. 100 when no checks ran.
	OverallScore int `json:"overall_score"`
}

// DeviceReport is the result of analysing one configuration file.
type DeviceReport struct {
	FileName   string    `json:"file_name"`
	AnalyzedAt time.Time `json:"analyzed_at"`
	Summary    Summary   `json:"summary"`
	Findings   []Finding `json:"findings"`
}

// HasSummary reports whether the report carries summary data. Reports decoded
// from incomplete JSON have a nil BySeverity map.
func (r *DeviceReport) HasSummary() bool {
	return r != nil && r.Summary.BySeverity != nil
}
