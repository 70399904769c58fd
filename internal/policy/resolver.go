package policy

import (
	"strings"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

// ModuleEnabled reports whether the module with the given ID should run.
func ModuleEnabled(moduleID string, cfg *PolicyConfig) bool {
	if cfg == nil {
		return true
	}
	mc, ok := cfg.Modules[moduleID]
	if !ok || mc.Enabled == nil {
		return true
	}
	return *mc.Enabled
}

// ApplyPolicy drops findings of disabled modules and applies per-finding
// suppressions and severity overrides. Input order is preserved.
func ApplyPolicy(findings []models.Finding, cfg *PolicyConfig) []models.Finding {
	if cfg == nil {
		return findings
	}

	result := make([]models.Finding, 0, len(findings))

	for _, f := range findings {
		if f.Module != "" && !ModuleEnabled(f.Module, cfg) {
			continue
		}

		fc, ok := lookupFinding(f.ID, cfg)

		// Finding-level disable
		if ok && fc.Enabled != nil && !*fc.Enabled {
			continue
		}

		// Severity override
		if ok && fc.Severity != "" {
			f.Severity = models.Severity(strings.ToUpper(fc.Severity))
		}

		result = append(result, f)
	}

	return result
}

// lookupFinding resolves the override for id. An exact key wins; otherwise
// the longest matching "prefix*" key is used.
func lookupFinding(id string, cfg *PolicyConfig) (FindingConfig, bool) {
	if fc, ok := cfg.Findings[id]; ok {
		return fc, true
	}
	var (
		best    FindingConfig
		bestLen = -1
	)
	for key, fc := range cfg.Findings {
		prefix, wild := strings.CutSuffix(key, "*")
		if !wild || !strings.HasPrefix(id, prefix) {
			continue
		}
		if len(prefix) > bestLen {
			best, bestLen = fc, len(prefix)
		}
	}
	return best, bestLen >= 0
}
