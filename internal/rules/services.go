package rules

import (
	"regexp"

	"github.com/pankaj-dahiya-devops/netaudit/internal/blockscan"
	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

var (
	httpServerRe    = regexp.MustCompile(`(?im)^ip http server$`)
	noHTTPServerRe  = regexp.MustCompile(`(?im)^no ip http server$`)
	httpsServerRe   = regexp.MustCompile(`(?im)^ip http secure-server$`)
	fingerRe        = regexp.MustCompile(`(?im)^ip finger$`)
	noFingerRe      = regexp.MustCompile(`(?im)^no ip finger$`)
	bootpServerRe   = regexp.MustCompile(`(?im)^ip bootp server.*$`)
	noBootpServerRe = regexp.MustCompile(`(?im)^no ip bootp server$`)
)

// ServiceRule covers the management web server, finger and the legacy IOS
// services.
type ServiceRule struct{}

func (r ServiceRule) ID() string   { return "SERVICES" }
func (r ServiceRule) Name() string { return "Network services" }

func (r ServiceRule) Evaluate(ctx RuleContext) []models.Finding {
	text := ctx.Text()
	c := newCollector(r.ID())

	httpOn := httpServerRe.MatchString(text) && !noHTTPServerRe.MatchString(text)
	if httpOn {
		c.add(models.Finding{
			ID:             "check-3.1",
			BenchmarkRef:   "CIS 4.1",
			Title:          "Disable the HTTP server",
			Severity:       models.SeverityHigh,
			Status:         models.StatusNonCompliant,
			Description:    "The HTTP server ('ip http server') is enabled and carries management traffic in clear text.",
			Recommendation: "configure terminal\n no ip http server\nend\nUse HTTPS if web management is required.",
			AffectedLines:  blockscan.FirstMatch(text, httpServerRe),
		})
	} else {
		c.add(models.Finding{
			ID:             "check-3.1",
			BenchmarkRef:   "CIS 4.1",
			Title:          "HTTP server disabled",
			Severity:       models.SeverityHigh,
			Status:         models.StatusCompliant,
			Description:    "The HTTP server is not enabled.",
			Recommendation: noAction,
			AffectedLines:  blockscan.FirstMatch(text, noHTTPServerRe),
		})
	}
	// HTTPS is only suggested as a replacement when HTTP is on.
	if httpOn && !httpsServerRe.MatchString(text) {
		c.add(models.Finding{
			ID:             "check-3.2",
			BenchmarkRef:   "CIS 4.2",
			Title:          "Use the HTTPS server for web management",
			Severity:       models.SeverityMedium,
			Status:         models.StatusNonCompliant,
			Description:    "If web management is needed it should run over 'ip http secure-server' instead of HTTP.",
			Recommendation: "configure terminal\n ip http secure-server\nend",
		})
	}

	if fingerRe.MatchString(text) && !noFingerRe.MatchString(text) {
		c.add(models.Finding{
			ID:             "check-8",
			BenchmarkRef:   "CIS 4.4",
			Title:          "Disable the finger service",
			Severity:       models.SeverityLow,
			Status:         models.StatusNonCompliant,
			Description:    "The finger service ('ip finger') is enabled and can disclose user information.",
			Recommendation: "configure terminal\n no ip finger\nend",
			AffectedLines:  blockscan.FirstMatch(text, fingerRe),
		})
	} else {
		c.add(models.Finding{
			ID:             "check-8",
			BenchmarkRef:   "CIS 4.4",
			Title:          "Finger service disabled",
			Severity:       models.SeverityLow,
			Status:         models.StatusCompliant,
			Description:    "The finger service is disabled.",
			Recommendation: noAction,
			AffectedLines:  blockscan.FirstMatch(text, noFingerRe),
		})
	}

	if ctx.IsNXOS() {
		for _, s := range legacyServices {
			c.add(notApplicable(s.id, s.ref, "'"+s.name+"' not applicable on NX-OS", models.SeverityInfo,
				"'"+s.name+"' is an IOS or obsolete service that NX-OS does not provide."))
		}
		return c.findings()
	}

	for _, s := range legacyServices {
		c.add(s.evaluate(text))
	}
	return c.findings()
}

// legacyService is an IOS-only service toggle. check reports whether the
// device is compliant and which lines prove it either way.
type legacyService struct {
	id, ref, name string
	fixTitle      string
	okTitle       string
	issue         string
	ok            string
	fix           string
	check         func(text string) (bool, []string)
}

var legacyServices = []legacyService{
	{
		id: "check-27.1", ref: "CIS 4.6", name: "tcp-small-servers",
		fixTitle: "Disable TCP small servers",
		okTitle:  "TCP small servers disabled",
		issue:    "The TCP diagnostic services (echo, chargen, discard) are not explicitly disabled and can be abused.",
		ok:       "TCP small servers are disabled.",
		fix:      "configure terminal\n no service tcp-small-servers\nend",
		check:    requireLine("no service tcp-small-servers"),
	},
	{
		id: "check-27.2", ref: "CIS 4.7", name: "udp-small-servers",
		fixTitle: "Disable UDP small servers",
		okTitle:  "UDP small servers disabled",
		issue:    "The UDP diagnostic services (echo, chargen, discard) are not explicitly disabled and can be abused.",
		ok:       "UDP small servers are disabled.",
		fix:      "configure terminal\n no service udp-small-servers\nend",
		check:    requireLine("no service udp-small-servers"),
	},
	{
		id: "check-24.1", ref: "Best Practice", name: "tcp-keepalives-in",
		fixTitle: "Enable inbound TCP keepalives",
		okTitle:  "Inbound TCP keepalives enabled",
		issue:    "Inbound TCP keepalives are off; dead management sessions keep holding VTY lines.",
		ok:       "Inbound TCP sessions use keepalives to detect and close idle sessions.",
		fix:      "configure terminal\n service tcp-keepalives-in\nend",
		check:    requireLine("service tcp-keepalives-in"),
	},
	{
		id: "check-24.2", ref: "Best Practice", name: "tcp-keepalives-out",
		fixTitle: "Enable outbound TCP keepalives",
		okTitle:  "Outbound TCP keepalives enabled",
		issue:    "Outbound TCP keepalives are off; unreachable peers are not detected.",
		ok:       "Outbound TCP sessions use keepalives to detect unreachable peers.",
		fix:      "configure terminal\n service tcp-keepalives-out\nend",
		check:    requireLine("service tcp-keepalives-out"),
	},
	{
		id: "check-26", ref: "CIS 4.5", name: "pad",
		fixTitle: "Disable the PAD service",
		okTitle:  "PAD service disabled",
		issue:    "The obsolete X.25 PAD service is not disabled.",
		ok:       "The X.25 PAD service is disabled.",
		fix:      "configure terminal\n no service pad\nend",
		check:    requireLine("no service pad"),
	},
	{
		id: "check-no-ip-bootp", ref: "CIS 4.8", name: "bootp",
		fixTitle: "Disable the BOOTP server",
		okTitle:  "BOOTP server not enabled",
		issue:    "The obsolete BOOTP server is enabled.",
		ok:       "The BOOTP server is not enabled.",
		fix:      "configure terminal\n no ip bootp server\nend",
		check:    rejectLine(bootpServerRe, noBootpServerRe),
	},
}

// requireLine is compliant when cmd appears as a whole line.
func requireLine(cmd string) func(string) (bool, []string) {
	re := regexp.MustCompile(`(?m)^` + regexp.QuoteMeta(cmd) + `\s*$`)
	return func(text string) (bool, []string) {
		lines := blockscan.FirstMatch(text, re)
		return lines != nil, lines
	}
}

// rejectLine is compliant when no line matches bad. The lines quoted are the
// offending ones, or the disabling lines matched by good.
func rejectLine(bad, good *regexp.Regexp) func(string) (bool, []string) {
	return func(text string) (bool, []string) {
		if lines := blockscan.AllMatches(text, bad); lines != nil {
			return false, lines
		}
		return true, blockscan.FirstMatch(text, good)
	}
}

func (s legacyService) evaluate(text string) models.Finding {
	ok, lines := s.check(text)
	f := models.Finding{
		ID:            s.id,
		BenchmarkRef:  s.ref,
		Severity:      models.SeverityLow,
		AffectedLines: lines,
	}
	if ok {
		f.Status = models.StatusCompliant
		f.Title = s.okTitle
		f.Description = s.ok
		f.Recommendation = noAction
		return f
	}
	f.Status = models.StatusNonCompliant
	f.Title = s.fixTitle
	f.Description = s.issue
	f.Recommendation = s.fix
	return f
}
