package models

// Severity represents the impact level of a finding.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// Severities lists every severity from most to least severe.
var Severities = []Severity{
	SeverityCritical,
	SeverityHigh,
	SeverityMedium,
	SeverityLow,
	SeverityInfo,
}

// severityRank maps Severity values to sort keys (lower = more severe).
var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
	SeverityInfo:     4,
}

// Rank returns the position of s in the severity order: 0 for CRITICAL up to
// 4 for INFO. Unknown values rank after INFO.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return len(severityRank)
}

// Valid reports whether s is one of the defined severities.
func (s Severity) Valid() bool {
	_, ok := severityRank[s]
	return ok
}

// ComplianceStatus is the outcome of a single check.
type ComplianceStatus string

const (
	StatusCompliant     ComplianceStatus = "COMPLIANT"
	StatusNonCompliant  ComplianceStatus = "NON_COMPLIANT"
	StatusNotApplicable ComplianceStatus = "NOT_APPLICABLE"
	// StatusError marks a structural problem with the input, such as a
	// mandatory configuration block that is missing entirely.
	StatusError ComplianceStatus = "ERROR"
)

// Statuses lists every compliance status.
var Statuses = []ComplianceStatus{
	StatusCompliant,
	StatusNonCompliant,
	StatusNotApplicable,
	StatusError,
}

// OSType is the Cisco operating system variant a configuration belongs to.
type OSType string

const (
	OSTypeIOS  OSType = "IOS"
	OSTypeNXOS OSType = "NX-OS"
)

// Finding is a single evaluated rule branch. It is the atomic output unit of
// the rule engine.
//
// ID is stable across runs: the same logical check on two different
// configurations yields the same ID, which is what comparisons join on.
type Finding struct {
	ID             string           `json:"id"`
	Module         string           `json:"module"`
	BenchmarkRef   string           `json:"benchmark_ref"`
	Title          string           `json:"title"`
	Severity       Severity         `json:"severity"`
	Status         ComplianceStatus `json:"status"`
	Description    string           `json:"description"`
	Recommendation string           `json:"recommendation"`
	AffectedLines  []string         `json:"affected_lines,omitempty"`
	Rationale      string           `json:"rationale,omitempty"`
}

// IsNonCompliant reports whether f records a policy violation.
func (f Finding) IsNonCompliant() bool {
	return f.Status == StatusNonCompliant
}

// IsIssue reports whether f counts towards Summary.IssuesFound: policy
// violations and structural errors both do.
func (f Finding) IsIssue() bool {
	return f.Status == StatusNonCompliant || f.Status == StatusError
}
