package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pankaj-dahiya-devops/netaudit/internal/blockscan"
	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

var (
	aaaNewModelRe      = regexp.MustCompile(`(?m)^aaa new-model$`)
	aaaLoginDefaultRe  = regexp.MustCompile(`(?im)^aaa authentication login default.*$`)
	aaaExecDefaultRe   = regexp.MustCompile(`(?im)^aaa authorization exec default.*$`)
	mgmtLineHeaderRe   = regexp.MustCompile(`(?i)^line (vty|con) (\d+(?: \d+)?)`)
	privilege15UserRe  = regexp.MustCompile(`(?im)^username\s+\S+\s+privilege\s+15.*$`)
	networkAdminUserRe = regexp.MustCompile(`(?im)^username\s+\S+\s+.*role\s+network-admin.*$`)
	loginErrorEnableRe = regexp.MustCompile(`(?m)^aaa authentication login error-enable$`)
)

// AAARule covers the AAA framework, default login/exec method lists,
// privileged account count and NX-OS login lockout.
type AAARule struct{}

func (r AAARule) ID() string   { return "AAA" }
func (r AAARule) Name() string { return "Authentication, authorization and accounting" }

func (r AAARule) Evaluate(ctx RuleContext) []models.Finding {
	text := ctx.Text()
	c := newCollector(r.ID())

	if !strings.Contains(text, "aaa new-model") {
		c.add(models.Finding{
			ID:             "check-11.1",
			BenchmarkRef:   "CIS 1.3.1",
			Title:          "Enable 'aaa new-model'",
			Severity:       models.SeverityHigh,
			Status:         models.StatusNonCompliant,
			Description:    "'aaa new-model' is not enabled. AAA is the basis of centralised authentication, authorization and accounting.",
			Recommendation: "configure terminal\n aaa new-model\nend\nThen configure authentication, authorization and accounting methods.",
			Rationale:      "'aaa new-model' activates the AAA framework and with it granular access policies and central user management.",
		})
	} else {
		c.add(models.Finding{
			ID:             "check-11.1",
			BenchmarkRef:   "CIS 1.3.1",
			Title:          "'aaa new-model' enabled",
			Severity:       models.SeverityHigh,
			Status:         models.StatusCompliant,
			Description:    "'aaa new-model' is enabled.",
			Recommendation: "Make sure login and exec methods use remote servers (TACACS+/RADIUS) with a local fallback.",
			AffectedLines:  blockscan.FirstMatch(text, aaaNewModelRe),
		})
		r.methodLists(c, text)
	}

	r.privilegedAccounts(c, text, ctx.IsNXOS())

	if !ctx.IsNXOS() {
		c.add(notApplicable("check-aaa-lockout", "CIS 1.4.1", "AAA login lockout not applicable on IOS", models.SeverityMedium,
			"'aaa authentication login error-enable' is an NX-OS command; IOS lockout is covered by 'login block-for'."))
	} else if !strings.Contains(text, "aaa authentication login error-enable") {
		c.add(models.Finding{
			ID:             "check-aaa-lockout",
			BenchmarkRef:   "CIS 1.4.1",
			Title:          "Enable lockout on login failures",
			Severity:       models.SeverityMedium,
			Status:         models.StatusNonCompliant,
			Description:    "'aaa authentication login error-enable' is not configured, so failed logins do not trigger a lockout.",
			Recommendation: "configure terminal\n aaa authentication login error-enable\nend\nAlso set 'ssh login-attempts'.",
			Rationale:      "Account lockout after repeated failures is an essential brute-force control.",
		})
	} else {
		c.add(models.Finding{
			ID:             "check-aaa-lockout",
			BenchmarkRef:   "CIS 1.4.1",
			Title:          "Lockout on login failures enabled",
			Severity:       models.SeverityMedium,
			Status:         models.StatusCompliant,
			Description:    "AAA login failure lockout is configured.",
			Recommendation: "Make sure attempts and lockout duration follow your security policy.",
			AffectedLines:  blockscan.FirstMatch(text, loginErrorEnableRe),
		})
	}

	return c.findings()
}

// methodLists checks the default login authentication and exec authorization
// lists. Without a default list, every vty and console line must name its
// own method.
func (r AAARule) methodLists(c *collector, text string) {
	mgmtLines := blockscan.Scan(text, mgmtLineHeaderRe)

	var unauthenticated []Instance
	if !aaaLoginDefaultRe.MatchString(text) {
		for _, b := range mgmtLines {
			if !b.Contains("login authentication") && !b.Contains("no login") {
				unauthenticated = append(unauthenticated, lineInstance(b))
			}
		}
	}
	if unauthenticated != nil {
		c.addAll(Grouped(GroupSingle, "check-11.2", unauthenticated, func(id string, items []Instance) models.Finding {
			names := instanceKeys(items)
			return models.Finding{
				ID:           id,
				BenchmarkRef: "CIS 1.3.2",
				Title:        "Configure AAA login authentication",
				Severity:     models.SeverityMedium,
				Status:       models.StatusNonCompliant,
				Description: fmt.Sprintf("There is no default login authentication list and these lines have no explicit AAA method: %s.",
					strings.Join(names, ", ")),
				Recommendation: "Define a default list or apply a named list to every line.\n\n" +
					"Default:\nconfigure terminal\n aaa authentication login default group tacacs+ local\nend\n\n" +
					"Named:\nconfigure terminal\n line vty 0 4\n  login authentication MY_AAA_LIST\nend",
				AffectedLines: names,
				Rationale:     "Every management line left without AAA authentication is an unprotected entry point.",
			}
		}))
	} else {
		c.add(models.Finding{
			ID:             "check-11.2",
			BenchmarkRef:   "CIS 1.3.2",
			Title:          "AAA login authentication configured",
			Severity:       models.SeverityMedium,
			Status:         models.StatusCompliant,
			Description:    "A default login authentication list exists, or every line applies an explicit method.",
			Recommendation: "Check that the methods used (e.g. 'group tacacs+', 'local') are the intended ones.",
			AffectedLines:  blockscan.FirstMatch(text, aaaLoginDefaultRe),
		})
	}

	var unauthorized []Instance
	if !aaaExecDefaultRe.MatchString(text) {
		for _, b := range mgmtLines {
			if !b.Contains("authorization exec") {
				unauthorized = append(unauthorized, lineInstance(b))
			}
		}
	}
	if unauthorized != nil {
		c.addAll(Grouped(GroupSingle, "check-11.3", unauthorized, func(id string, items []Instance) models.Finding {
			names := instanceKeys(items)
			return models.Finding{
				ID:           id,
				BenchmarkRef: "CIS 1.3.4",
				Title:        "Configure AAA exec authorization",
				Severity:     models.SeverityMedium,
				Status:       models.StatusNonCompliant,
				Description: fmt.Sprintf("There is no default exec authorization list and these lines have no explicit method: %s.",
					strings.Join(names, ", ")),
				Recommendation: "Define a default list or apply one to each line.\n\n" +
					"Default:\nconfigure terminal\n aaa authorization exec default group tacacs+ local if-authenticated\nend",
				AffectedLines: names,
				Rationale:     "Without exec authorization, users who log in reach a shell without privilege control.",
			}
		}))
	} else {
		c.add(models.Finding{
			ID:             "check-11.3",
			BenchmarkRef:   "CIS 1.3.4",
			Title:          "AAA exec authorization configured",
			Severity:       models.SeverityMedium,
			Status:         models.StatusCompliant,
			Description:    "A default exec authorization list exists, or every line applies an explicit method.",
			Recommendation: "Check that the authorization methods are the intended ones.",
			AffectedLines:  blockscan.FirstMatch(text, aaaExecDefaultRe),
		})
	}
}

func lineInstance(b blockscan.Block) Instance {
	name := fmt.Sprintf("line %s %s", strings.ToLower(b.Group(1)), b.Group(2))
	return Instance{Key: name, Lines: []string{name}}
}

// privilegedAccounts flags more than one full-privilege local account:
// "privilege 15" on IOS, role network-admin on NX-OS.
func (r AAARule) privilegedAccounts(c *collector, text string, nxos bool) {
	re, label := privilege15UserRe, "privilege 15"
	if nxos {
		re, label = networkAdminUserRe, "role 'network-admin'"
	}
	users := blockscan.AllMatches(text, re)

	if len(users) > 1 {
		c.add(models.Finding{
			ID:           "check-11.4",
			BenchmarkRef: "CIS 1.3 / Best Practice",
			Title:        "Multiple full-privilege accounts",
			Severity:     models.SeverityHigh,
			Status:       models.StatusNonCompliant,
			Description:  fmt.Sprintf("%d local accounts have %s. This widens the attack surface and breaks least privilege.", len(users), label),
			Recommendation: "Lower non-essential accounts to a reduced privilege or custom role and grant commands through AAA authorization. " +
				"Keep one, or very few, emergency accounts with full privilege.",
			AffectedLines: users,
			Rationale:     "If any full-privilege account is compromised the attacker controls the device.",
		})
		return
	}
	c.add(models.Finding{
		ID:             "check-11.4",
		BenchmarkRef:   "CIS 1.3 / Best Practice",
		Title:          "Full-privilege accounts limited",
		Severity:       models.SeverityHigh,
		Status:         models.StatusCompliant,
		Description:    fmt.Sprintf("%d local account(s) with %s.", len(users), label),
		Recommendation: "Protect the account with a strong password and monitor its use.",
		AffectedLines:  users,
	})
}
