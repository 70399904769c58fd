package models

// RiskLevel is the coarse risk classification of a device report.
// Level orders the classes: higher is worse.
type RiskLevel struct {
	Text  string `json:"text"`
	Level int    `json:"level"`
}

var (
	RiskIndeterminate = RiskLevel{Text: "Indeterminate", Level: 0}
	RiskLow           = RiskLevel{Text: "Low", Level: 1}
	RiskModerate      = RiskLevel{Text: "Moderate", Level: 2}
	RiskHigh          = RiskLevel{Text: "High", Level: 3}
	RiskCritical      = RiskLevel{Text: "Critical", Level: 4}
)

// RiskLevels lists every risk class from worst to best.
var RiskLevels = []RiskLevel{
	RiskCritical,
	RiskHigh,
	RiskModerate,
	RiskLow,
	RiskIndeterminate,
}

// FleetKPIs are the headline numbers of a fleet report.
type FleetKPIs struct {
	TotalDevices   int       `json:"total_devices"`
	AverageScore   int       `json:"average_score"`
	OverallRisk    RiskLevel `json:"overall_risk"`
	TotalCriticals int       `json:"total_criticals"`
}

// CommonFinding counts how many devices report a finding ID as NON_COMPLIANT.
type CommonFinding struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Severity Severity `json:"severity"`
	Count    int      `json:"count"`
}

// RiskBucket is one bar of the risk histogram.
type RiskBucket struct {
	Risk  RiskLevel `json:"risk"`
	Count int       `json:"count"`
}

// ScoreBucket is one bar of the score histogram. Min and Max are inclusive.
type ScoreBucket struct {
	Label string `json:"label"`
	Min   int    `json:"min"`
	Max   int    `json:"max"`
	Count int    `json:"count"`
}

// DeviceSummary is the per-device row of a fleet report.
type DeviceSummary struct {
	FileName string    `json:"file_name"`
	Score    int       `json:"score"`
	Risk     RiskLevel `json:"risk"`
}

// FleetReport aggregates many device reports.
type FleetReport struct {
	KPIs              FleetKPIs       `json:"kpis"`
	TopCommonFindings []CommonFinding `json:"top_common_findings"`
	RiskDistribution  []RiskBucket    `json:"risk_distribution"`
	ScoreDistribution []ScoreBucket   `json:"score_distribution"`
	// Devices is ordered worst first: risk level descending, then score
	// ascending.
	Devices []DeviceSummary `json:"devices"`
}
