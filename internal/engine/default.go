package engine

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
	"github.com/pankaj-dahiya-devops/netaudit/internal/policy"
	"github.com/pankaj-dahiya-devops/netaudit/internal/rules"
)

// DefaultEngine is the production implementation of Engine.
// It detects the OS, runs the registered check modules in order, applies the
// policy and derives the summary. It keeps no state between calls and is
// safe for concurrent use.
type DefaultEngine struct {
	registry rules.RuleRegistry
	policy   *policy.PolicyConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewDefaultEngine constructs a DefaultEngine wired to the supplied rule
// registry and policy. policyCfg may be nil (defaults everywhere). A nil
// logger disables logging and a nil clock uses time.Now.
func NewDefaultEngine(
	registry rules.RuleRegistry,
	policyCfg *policy.PolicyConfig,
	logger *zap.Logger,
	clock func() time.Time,
) *DefaultEngine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = time.Now
	}
	return &DefaultEngine{
		registry: registry,
		policy:   policyCfg,
		logger:   logger,
		now:      clock,
	}
}

// Analyze implements Engine. Findings keep module invocation order; sorting
// is left to the presentation layer. A panicking module fails the whole
// analysis with an error naming the module.
func (e *DefaultEngine) Analyze(fileName, text string) (*models.DeviceReport, error) {
	osType := DetectOS(text)
	ctx := rules.RuleContext{Config: text, OS: osType, Policy: e.policy}

	var findings []models.Finding
	for _, rule := range e.registry.All() {
		if !policy.ModuleEnabled(rule.ID(), e.policy) {
			e.logger.Debug("module disabled by policy", zap.String("module", rule.ID()))
			continue
		}
		got, err := evaluate(rule, ctx)
		if err != nil {
			return nil, fmt.Errorf("analyze %q: %w", fileName, err)
		}
		e.logger.Debug("module evaluated",
			zap.String("file", fileName),
			zap.String("module", rule.ID()),
			zap.Int("findings", len(got)),
		)
		findings = append(findings, got...)
	}

	findings = policy.ApplyPolicy(findings, e.policy)
	if findings == nil {
		findings = []models.Finding{}
	}

	return &models.DeviceReport{
		FileName:   fileName,
		AnalyzedAt: e.now().UTC(),
		Summary:    computeSummary(findings, osType),
		Findings:   findings,
	}, nil
}

// evaluate runs one rule and turns a panic into an error.
func evaluate(rule rules.Rule, ctx rules.RuleContext) (findings []models.Finding, err error) {
	defer func() {
		if r := recover(); r != nil {
			findings = nil
			err = fmt.Errorf("module %s failed: %v", rule.ID(), r)
		}
	}()
	return rule.Evaluate(ctx), nil
}

// computeSummary derives the Summary of a findings list.
//
// IssuesFound and BySeverity count NON_COMPLIANT and ERROR findings;
// ByStatus counts every finding. The score is the rounded share of findings
// that are not NON_COMPLIANT, and 100 when there are none.
func computeSummary(findings []models.Finding, osType models.OSType) models.Summary {
	s := models.Summary{
		OSType:      osType,
		TotalChecks: len(findings),
		BySeverity:  make(map[models.Severity]int, len(models.Severities)),
		ByStatus:    make(map[models.ComplianceStatus]int, len(models.Statuses)),
	}
	for _, sev := range models.Severities {
		s.BySeverity[sev] = 0
	}
	for _, st := range models.Statuses {
		s.ByStatus[st] = 0
	}

	nonCompliant := 0
	for _, f := range findings {
		s.ByStatus[f.Status]++
		if f.IsNonCompliant() {
			nonCompliant++
		}
		if f.IsIssue() {
			s.IssuesFound++
			s.BySeverity[f.Severity]++
		}
	}

	s.OverallScore = 100
	if s.TotalChecks > 0 {
		ratio := float64(s.TotalChecks-nonCompliant) / float64(s.TotalChecks)
		s.OverallScore = max(0, int(math.Round(ratio*100)))
	}
	return s
}
