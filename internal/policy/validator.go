package policy

import (
	"fmt"
	"strings"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

// knownParams lists the threshold keys each module reads.
var knownParams = map[string][]string{
	"PASSWORDS": {ParamMinPasswordLength},
	"LOGGING":   {ParamMinLogBuffer},
	"SSH":       {ParamMaxSSHRetries, ParamMaxSSHTimeout, ParamMinRSAModulus},
}

const severityList = "CRITICAL, HIGH, MEDIUM, LOW, INFO"

// Validate checks cfg for semantic correctness and returns all validation errors
// found. An empty slice means the config is valid.
//
// Checks performed:
//   - version must be 1
//   - module IDs must appear in availableModuleIDs
//   - module params must be keys that module reads
//   - finding severity overrides must be valid severity values if set
//   - enforcement fail_on_severity must be a valid severity value if set
//   - enforcement min_score must be within 0..100
//
// All errors are collected before returning; Validate never stops at the first error.
func Validate(cfg *PolicyConfig, availableModuleIDs []string) []error {
	if cfg == nil {
		return []error{fmt.Errorf("policy config is nil")}
	}

	knownIDs := make(map[string]struct{}, len(availableModuleIDs))
	for _, id := range availableModuleIDs {
		knownIDs[id] = struct{}{}
	}

	var errs []error

	if cfg.Version != 1 {
		errs = append(errs, fmt.Errorf("version: unsupported value %d; must be 1", cfg.Version))
	}

	for id, mc := range cfg.Modules {
		if _, ok := knownIDs[id]; !ok {
			errs = append(errs, fmt.Errorf("modules.%s: unknown module ID", id))
			continue
		}
		for key := range mc.Params {
			if !paramKnown(id, key) {
				errs = append(errs, fmt.Errorf("modules.%s.params.%s: unknown parameter", id, key))
			}
		}
	}

	for id, fc := range cfg.Findings {
		if strings.TrimSuffix(id, "*") == "" {
			errs = append(errs, fmt.Errorf("findings.%q: empty finding ID", id))
		}
		if fc.Severity != "" && !models.Severity(strings.ToUpper(fc.Severity)).Valid() {
			errs = append(errs, fmt.Errorf("findings.%s.severity: invalid value %q; valid values: %s", id, fc.Severity, severityList))
		}
	}

	enf := cfg.Enforcement
	if enf.FailOnSeverity != "" && !models.Severity(strings.ToUpper(enf.FailOnSeverity)).Valid() {
		errs = append(errs, fmt.Errorf("enforcement.fail_on_severity: invalid value %q; valid values: %s", enf.FailOnSeverity, severityList))
	}
	if enf.MinScore != nil && (*enf.MinScore < 0 || *enf.MinScore > 100) {
		errs = append(errs, fmt.Errorf("enforcement.min_score: %d out of range 0..100", *enf.MinScore))
	}

	return errs
}

func paramKnown(moduleID, key string) bool {
	for _, k := range knownParams[moduleID] {
		if k == key {
			return true
		}
	}
	return false
}
