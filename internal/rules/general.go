package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pankaj-dahiya-devops/netaudit/internal/blockscan"
	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

var (
	osVersionRe      = regexp.MustCompile(`(?im)(?:Cisco IOS(?: XE)? Software, Version|^version)\s+([^\s,]+)`)
	bannerMotdLineRe = regexp.MustCompile(`(?m)^banner motd.*$`)
	ipCefLineRe      = regexp.MustCompile(`(?m)^ip cef\b.*$`)
	noDomainLookupRe = regexp.MustCompile(`(?m)^no ip domain-lookup$`)
)

const softwareCheckerURL = "https://sec.cloudapps.cisco.com/security/center/softwarechecker.x"

// GeneralRule covers OS version advisory, MOTD banner, CEF and CLI DNS lookup.
type GeneralRule struct{}

func (r GeneralRule) ID() string   { return "GENERAL" }
func (r GeneralRule) Name() string { return "General device settings" }

func (r GeneralRule) Evaluate(ctx RuleContext) []models.Finding {
	text := ctx.Text()
	c := newCollector(r.ID())

	// The version is always reported as an advisory: currency can only be
	// judged against Cisco's external advisory database.
	if m := osVersionRe.FindStringSubmatch(text); m != nil {
		osName := "Cisco IOS"
		if ctx.IsNXOS() {
			osName = "Cisco NX-OS"
		}
		version := strings.TrimSpace(m[1])
		c.add(models.Finding{
			ID:           "check-0",
			BenchmarkRef: "Vulnerability Management",
			Title:        "Operating system version review",
			Severity:     models.SeverityHigh,
			Status:       models.StatusNonCompliant,
			Description: fmt.Sprintf("Detected operating system '%s' version '%s'. "+
				"Check this version against the Cisco security advisory database.", osName, version),
			Recommendation: fmt.Sprintf("Look up the release in Cisco Software Checker:\n\n"+
				"- Operating system: %s\n- Version: %s\n\nPlan an upgrade to a recommended release: %s",
				osName, version, softwareCheckerURL),
			AffectedLines: []string{m[0]},
			Rationale:     "Software releases accumulate vulnerabilities over time; keeping the OS current is one of the most important defences.",
		})
	}

	if !strings.Contains(text, "banner motd") {
		c.add(models.Finding{
			ID:             "check-4",
			BenchmarkRef:   "CIS 1.6.1",
			Title:          "Configure a MOTD banner",
			Severity:       models.SeverityLow,
			Status:         models.StatusNonCompliant,
			Description:    "No MOTD (message of the day) banner is configured to warn against unauthorised access.",
			Recommendation: "configure terminal\n banner motd #\n WARNING: Unauthorised access prohibited.\n #\nend",
			Rationale:      "A login banner gives legal notice before authentication and deters unauthorised access.",
		})
	} else {
		c.add(models.Finding{
			ID:             "check-4",
			BenchmarkRef:   "CIS 1.6.1",
			Title:          "MOTD banner configured",
			Severity:       models.SeverityLow,
			Status:         models.StatusCompliant,
			Description:    "A MOTD banner is configured.",
			Recommendation: "Make sure the banner text matches your organisation's legal policy.",
			AffectedLines:  blockscan.FirstMatch(text, bannerMotdLineRe),
		})
	}

	switch {
	case ctx.IsNXOS():
		c.add(notApplicable("check-17", "Operational Best Practice", "'ip cef' not applicable on NX-OS", models.SeverityInfo,
			"'ip cef' is an IOS command. NX-OS forwards in hardware and has its distributed forwarding plane enabled by default."))
	case !ipCefLineRe.MatchString(text):
		c.add(models.Finding{
			ID:             "check-17",
			BenchmarkRef:   "Operational Best Practice",
			Title:          "Enable 'ip cef'",
			Severity:       models.SeverityInfo,
			Status:         models.StatusNonCompliant,
			Description:    "Cisco Express Forwarding is not enabled globally.",
			Recommendation: "configure terminal\n ip cef\nend",
			Rationale:      "CEF improves forwarding performance and stability.",
		})
	default:
		c.add(models.Finding{
			ID:             "check-17",
			BenchmarkRef:   "Operational Best Practice",
			Title:          "'ip cef' enabled",
			Severity:       models.SeverityInfo,
			Status:         models.StatusCompliant,
			Description:    "'ip cef' is enabled globally.",
			Recommendation: noAction,
			AffectedLines:  blockscan.FirstMatch(text, ipCefLineRe),
		})
	}

	if !strings.Contains(text, "no ip domain-lookup") {
		c.add(models.Finding{
			ID:             "check-domain-lookup",
			BenchmarkRef:   "Operational Best Practice",
			Title:          "Disable CLI DNS lookup",
			Severity:       models.SeverityInfo,
			Status:         models.StatusNonCompliant,
			Description:    "DNS lookup from the CLI is enabled; a mistyped command is resolved as a host name and stalls the session.",
			Recommendation: "configure terminal\n no ip domain-lookup\nend",
			Rationale:      "Most internal routers and switches never need to resolve names from the CLI.",
		})
	} else {
		c.add(models.Finding{
			ID:             "check-domain-lookup",
			BenchmarkRef:   "Operational Best Practice",
			Title:          "CLI DNS lookup disabled",
			Severity:       models.SeverityInfo,
			Status:         models.StatusCompliant,
			Description:    "'no ip domain-lookup' is configured.",
			Recommendation: noAction,
			AffectedLines:  blockscan.FirstMatch(text, noDomainLookupRe),
		})
	}

	return c.findings()
}
