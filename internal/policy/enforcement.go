package policy

import (
	"fmt"
	"strings"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

// ShouldFail reports whether report breaks the enforcement block of cfg, and
// why. It returns false when cfg is nil or has no enforcement settings.
//
// A report fails when:
//   - an issue (NON_COMPLIANT or ERROR) has a severity at or above
//     fail_on_severity, or
//   - its overall score is below min_score.
//
// An unrecognised fail_on_severity is ignored.
func ShouldFail(report *models.DeviceReport, cfg *PolicyConfig) (bool, string) {
	if cfg == nil || report == nil {
		return false, ""
	}
	enf := cfg.Enforcement

	if enf.FailOnSeverity != "" {
		threshold := models.Severity(strings.ToUpper(enf.FailOnSeverity))
		if threshold.Valid() {
			for _, f := range report.Findings {
				if f.IsIssue() && f.Severity.Valid() && f.Severity.Rank() <= threshold.Rank() {
					return true, fmt.Sprintf("%s finding %s at or above %s", f.Severity, f.ID, threshold)
				}
			}
		}
	}

	if enf.MinScore != nil && report.Summary.OverallScore < *enf.MinScore {
		return true, fmt.Sprintf("score %d below minimum %d", report.Summary.OverallScore, *enf.MinScore)
	}

	return false, ""
}
