package rules

import (
	"github.com/pankaj-dahiya-devops/netaudit/internal/blockscan"
	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
	"github.com/pankaj-dahiya-devops/netaudit/internal/policy"
)

// RuleContext carries everything a check module needs for one device. It is
// the sole input to Rule.Evaluate; rules must never read files, call the
// network or keep state between calls.
type RuleContext struct {
	// Config is the raw configuration text. Line endings may be CRLF.
	Config string

	// OS is the detected operating system variant.
	OS models.OSType

	// Policy holds the active PolicyConfig for threshold overrides. May be nil
	// when no policy file is loaded; rules must treat nil as "use defaults".
	Policy *policy.PolicyConfig
}

// Text returns Config with line endings normalised to LF.
func (c RuleContext) Text() string {
	return blockscan.Normalize(c.Config)
}

// IsNXOS reports whether the device runs NX-OS.
func (c RuleContext) IsNXOS() bool {
	return c.OS == models.OSTypeNXOS
}

// Rule is one check module: a deterministic classifier over configuration
// text. Rules must be stateless and safe to call concurrently.
type Rule interface {
	// ID returns the unique, stable identifier of the module (e.g. "SSH").
	ID() string

	// Name returns a short human-readable module name.
	Name() string

	// Evaluate inspects the provided context and returns zero or more findings
	// in a fixed order.
	Evaluate(ctx RuleContext) []models.Finding
}

// RuleRegistry manages the set of active rules and drives evaluation.
type RuleRegistry interface {
	// Register adds a rule to the registry. Panics on duplicate ID.
	Register(rule Rule)

	// All returns all registered rules in registration order.
	All() []Rule

	// EvaluateAll runs every registered rule against ctx and merges results.
	EvaluateAll(ctx RuleContext) []models.Finding
}
