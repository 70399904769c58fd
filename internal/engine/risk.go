package engine

import "github.com/pankaj-dahiya-devops/netaudit/internal/models"

// moderateMediumCount is the number of MEDIUM issues a report must exceed to
// be classified Moderate.
const moderateMediumCount = 5

// ClassifyRisk maps a report to a risk class using a strict cascade over the
// issue counts: any CRITICAL, then any HIGH, then more than five MEDIUM.
// A report without summary data is Indeterminate.
func ClassifyRisk(r *models.DeviceReport) models.RiskLevel {
	if !r.HasSummary() {
		return models.RiskIndeterminate
	}
	sev := r.Summary.BySeverity
	switch {
	case sev[models.SeverityCritical] > 0:
		return models.RiskCritical
	case sev[models.SeverityHigh] > 0:
		return models.RiskHigh
	case sev[models.SeverityMedium] > moderateMediumCount:
		return models.RiskModerate
	default:
		return models.RiskLow
	}
}
