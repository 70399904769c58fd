package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pankaj-dahiya-devops/netaudit/internal/blockscan"
	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

var (
	vtyHeaderRe      = regexp.MustCompile(`(?i)^line vty (\d+(?: \d+)?)`)
	auxHeaderRe      = regexp.MustCompile(`(?i)^line aux 0\b`)
	transportInputRe = regexp.MustCompile(`(?i)transport input (.*)`)
	execTimeoutRe    = regexp.MustCompile(`(?i)exec-timeout (\d+)(?: (\d+))?`)
	accessClassInRe  = regexp.MustCompile(`(?i)access-class (\S+) in`)
)

// VTYRule covers remote management lines and the auxiliary port.
type VTYRule struct{}

func (r VTYRule) ID() string   { return "VTY" }
func (r VTYRule) Name() string { return "VTY and line security" }

func (r VTYRule) Evaluate(ctx RuleContext) []models.Finding {
	text := ctx.Text()
	c := newCollector(r.ID())

	blocks := blockscan.Scan(text, vtyHeaderRe)
	for _, b := range blocks {
		rng := b.Group(1)
		header := "line vty " + rng

		// Each range is reported under its own ID, e.g. check-vty-acl-0 4.
		c.add(vtyTransport("check-vty-transport-"+rng, b, rng, header))
		c.add(vtyTimeout("check-vty-timeout-"+rng, b, rng, header))
		c.add(vtyAccessClass("check-vty-acl-"+rng, b, rng, header))
		c.add(vtyLoggingSync("check-vty-logsync-"+rng, b, rng, header))
	}

	if len(blocks) == 0 {
		c.add(models.Finding{
			ID:             "check-vty-existence",
			BenchmarkRef:   "Core Configuration",
			Title:          "No VTY lines found",
			Severity:       models.SeverityHigh,
			Status:         models.StatusError,
			Description:    "No 'line vty' blocks were found. They are required for remote management; the file may be incomplete or from a device without remote CLI access.",
			Recommendation: "Check that the configuration file is complete and contains the 'line vty 0 4' sections. Ignore this finding if the device has no remote management.",
			Rationale:      "VTY lines are the virtual ports administrators use to reach the CLI remotely.",
		})
	}

	c.add(r.auxPort(text))
	return c.findings()
}

func vtyTransport(id string, b blockscan.Block, rng, header string) models.Finding {
	fix := fmt.Sprintf("configure terminal\n line vty %s\n  transport input ssh\n end", rng)
	f := models.Finding{ID: id, BenchmarkRef: "CIS 5.3.4", Severity: models.SeverityHigh}

	m := b.Match(transportInputRe)
	if m == nil {
		f.Title = fmt.Sprintf("VTY %s has no transport restriction", rng)
		f.Status = models.StatusNonCompliant
		f.Description = fmt.Sprintf("VTY lines %s have no 'transport input', which may allow insecure protocols such as Telnet by default.", rng)
		f.Recommendation = fix
		f.AffectedLines = []string{header}
		return f
	}

	protocols := strings.ToLower(strings.TrimSpace(m[1]))
	f.AffectedLines = []string{header, " transport input " + protocols}
	if protocols == "ssh" {
		f.Title = fmt.Sprintf("VTY %s restricted to SSH", rng)
		f.Status = models.StatusCompliant
		f.Description = fmt.Sprintf("VTY lines %s accept SSH connections only.", rng)
		f.Recommendation = noAction
		return f
	}
	f.Title = fmt.Sprintf("VTY %s not restricted to SSH", rng)
	f.Status = models.StatusNonCompliant
	f.Description = fmt.Sprintf("VTY lines %s allow insecure or additional protocols ('%s'). Only SSH should be allowed for remote management.", rng, protocols)
	f.Recommendation = fix
	return f
}

func vtyTimeout(id string, b blockscan.Block, rng, header string) models.Finding {
	fix := fmt.Sprintf("configure terminal\n line vty %s\n  exec-timeout 10 0\n end", rng)
	f := models.Finding{ID: id, BenchmarkRef: "CIS 5.3.5", Severity: models.SeverityLow}

	m := b.Match(execTimeoutRe)
	if m == nil {
		f.Title = fmt.Sprintf("Set 'exec-timeout' on VTY %s", rng)
		f.Status = models.StatusNonCompliant
		f.Description = fmt.Sprintf("VTY lines %s have no 'exec-timeout'; idle administrator sessions stay open indefinitely.", rng)
		f.Recommendation = fix
		f.AffectedLines = []string{header}
		f.Rationale = "An idle, open administrator session is an easy target when a terminal is left unattended."
		return f
	}

	minutes := atoi(m[1])
	seconds := 0
	if m[2] != "" {
		seconds = atoi(m[2])
	}
	f.AffectedLines = []string{header, fmt.Sprintf(" exec-timeout %d %d", minutes, seconds)}
	if minutes == 0 && seconds == 0 {
		f.Title = fmt.Sprintf("'exec-timeout' disabled on VTY %s", rng)
		f.Status = models.StatusNonCompliant
		f.Description = fmt.Sprintf("'exec-timeout' on VTY lines %s is 0 0, which disables the idle timeout.", rng)
		f.Recommendation = fix
		f.Rationale = "A 0 0 timeout turns off idle session logout altogether."
		return f
	}
	f.Title = fmt.Sprintf("'exec-timeout' configured on VTY %s", rng)
	f.Status = models.StatusCompliant
	f.Description = fmt.Sprintf("VTY lines %s time out after %d minute(s) and %d second(s).", rng, minutes, seconds)
	f.Recommendation = "Make sure the value follows your organisation's security policy."
	return f
}

func vtyAccessClass(id string, b blockscan.Block, rng, header string) models.Finding {
	f := models.Finding{ID: id, BenchmarkRef: "CIS 5.3.7", Severity: models.SeverityHigh}

	m := b.Match(accessClassInRe)
	if m == nil {
		f.Title = fmt.Sprintf("No management ACL on VTY %s", rng)
		f.Status = models.StatusNonCompliant
		f.Description = fmt.Sprintf("VTY lines %s are not protected by an access list; any address can attempt to connect.", rng)
		f.Recommendation = fmt.Sprintf("configure terminal\n line vty %s\n  access-class <ACL_NAME> in\nend\n\n"+
			"Example ACL:\nip access-list standard <ACL_NAME>\n permit host 10.1.1.10\n deny any log\nend", rng)
		f.AffectedLines = []string{header}
		f.Rationale = "An ACL on the management lines admits only trusted management addresses."
		return f
	}
	acl := m[1]
	f.Title = fmt.Sprintf("Management ACL applied to VTY %s", rng)
	f.Status = models.StatusCompliant
	f.Description = fmt.Sprintf("VTY lines %s are protected by ACL '%s'.", rng, acl)
	f.Recommendation = fmt.Sprintf("Check that ACL '%s' permits only the required management addresses.", acl)
	f.AffectedLines = []string{header, " access-class " + acl + " in"}
	return f
}

func vtyLoggingSync(id string, b blockscan.Block, rng, header string) models.Finding {
	f := models.Finding{ID: id, BenchmarkRef: "Operational Best Practice", Severity: models.SeverityInfo}
	if !b.Contains("logging synchronous") {
		f.Title = fmt.Sprintf("Set 'logging synchronous' on VTY %s", rng)
		f.Status = models.StatusNonCompliant
		f.Description = fmt.Sprintf("'logging synchronous' is not set on VTY lines %s; log messages interleave with typed commands.", rng)
		f.Recommendation = fmt.Sprintf("configure terminal\n line vty %s\n  logging synchronous\n end", rng)
		f.AffectedLines = []string{header}
		f.Rationale = "The current command line is reprinted after a log message, which avoids typing mistakes."
		return f
	}
	f.Title = fmt.Sprintf("'logging synchronous' set on VTY %s", rng)
	f.Status = models.StatusCompliant
	f.Description = fmt.Sprintf("VTY lines %s have 'logging synchronous'.", rng)
	f.Recommendation = noAction
	f.AffectedLines = []string{header, " logging synchronous"}
	return f
}

// auxPort judges the first "line aux 0" block. A missing block is compliant:
// there is nothing to secure.
func (r VTYRule) auxPort(text string) models.Finding {
	f := models.Finding{ID: "check-aux-port", BenchmarkRef: "CIS 1.5.1", Severity: models.SeverityMedium}

	blocks := blockscan.Scan(text, auxHeaderRe)
	if len(blocks) == 0 {
		f.Title = "AUX port not configured"
		f.Status = models.StatusCompliant
		f.Description = "There is no explicit 'line aux 0' configuration, which is safe when the port is unused."
		f.Recommendation = noAction
		return f
	}

	aux := blocks[0]
	f.AffectedLines = []string{aux.Header}
	if aux.Contains("no exec") || aux.Contains("transport input none") {
		f.Title = "AUX port secured"
		f.Status = models.StatusCompliant
		f.Description = "The auxiliary port (line aux 0) is disabled."
		f.Recommendation = noAction
		return f
	}
	f.Title = "Secure the unused AUX port"
	f.Status = models.StatusNonCompliant
	f.Description = "The auxiliary port (line aux 0) is configured but not disabled. A modem attached to it becomes a back door."
	f.Recommendation = "configure terminal\n line aux 0\n  no exec\n  transport input none\nend"
	f.Rationale = "Physical access plus a modem on an active AUX port bypasses every network control."
	return f
}
