package policy

// PolicyConfig is the decoded form of a netaudit policy file.
type PolicyConfig struct {
	Version     int                      `yaml:"version"`
	Modules     map[string]ModuleConfig  `yaml:"modules"`
	Findings    map[string]FindingConfig `yaml:"findings"`
	Enforcement EnforcementConfig        `yaml:"enforcement"`
}

// ModuleConfig controls a whole check module. A nil Enabled means enabled.
type ModuleConfig struct {
	Enabled *bool              `yaml:"enabled,omitempty"`
	Params  map[string]float64 `yaml:"params,omitempty"`
}

// FindingConfig overrides individual findings. Keys in PolicyConfig.Findings
// are either an exact finding ID or a prefix ending in "*".
type FindingConfig struct {
	Enabled  *bool  `yaml:"enabled,omitempty"`
	Severity string `yaml:"severity,omitempty"`
}

// EnforcementConfig decides when a report fails the run.
type EnforcementConfig struct {
	FailOnSeverity string `yaml:"fail_on_severity,omitempty"`
	MinScore       *int   `yaml:"min_score,omitempty"`
}
