package rules

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pankaj-dahiya-devops/netaudit/internal/blockscan"
	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
	"github.com/pankaj-dahiya-devops/netaudit/internal/policy"
)

var (
	loggingBufferedRe    = regexp.MustCompile(`(?i)logging buffered (\d+)`)
	loggingHostRe        = regexp.MustCompile(`(?im)^logging host.*$`)
	loggingServerRe      = regexp.MustCompile(`(?im)^logging server.*$`)
	secureTransportRe    = regexp.MustCompile(`(?i)transport\s+tcp`)
	loggingSourceRe      = regexp.MustCompile(`(?m)^logging source-interface.*$`)
	loggingTrapRe        = regexp.MustCompile(`(?i)logging trap (\w+)`)
	loggingLevelSyslogRe = regexp.MustCompile(`(?i)logging level syslog (\d+|[a-z]+)`)
	timestampsRe         = regexp.MustCompile(`(?m)^service timestamps (?:debug|log) datetime msec.*$`)
	ntpServerRe          = regexp.MustCompile(`(?i)ntp server .+`)
)

const defaultMinLogBuffer = 8192

// LoggingRule covers local and remote logging, timestamps and NTP.
type LoggingRule struct{}

func (r LoggingRule) ID() string   { return "LOGGING" }
func (r LoggingRule) Name() string { return "Logging and NTP" }

func (r LoggingRule) Evaluate(ctx RuleContext) []models.Finding {
	text := ctx.Text()
	c := newCollector(r.ID())

	minBuffer := policy.GetIntThreshold(r.ID(), policy.ParamMinLogBuffer, defaultMinLogBuffer, ctx.Policy)
	bufferFix := fmt.Sprintf("configure terminal\n logging buffered %d debugging\nend", minBuffer)
	m := loggingBufferedRe.FindStringSubmatch(text)
	switch {
	case m == nil:
		c.add(models.Finding{
			ID:             "check-5.1",
			BenchmarkRef:   "CIS 3.1",
			Title:          "Enable buffered logging",
			Severity:       models.SeverityMedium,
			Status:         models.StatusNonCompliant,
			Description:    "'logging buffered' is not configured; no log history is kept on the device.",
			Recommendation: bufferFix,
			Rationale:      "A local log buffer is the first place to look when troubleshooting or investigating an incident on the device.",
		})
	case atoi(m[1]) < minBuffer:
		c.add(models.Finding{
			ID:             "check-5.1",
			BenchmarkRef:   "CIS 3.1",
			Title:          "Increase the logging buffer",
			Severity:       models.SeverityLow,
			Status:         models.StatusNonCompliant,
			Description:    fmt.Sprintf("The logging buffer (%s) is small; at least %d bytes is recommended.", m[1], minBuffer),
			Recommendation: bufferFix,
			AffectedLines:  []string{m[0]},
		})
	default:
		c.add(models.Finding{
			ID:             "check-5.1",
			BenchmarkRef:   "CIS 3.1",
			Title:          "Buffered logging configured",
			Severity:       models.SeverityMedium,
			Status:         models.StatusCompliant,
			Description:    fmt.Sprintf("Buffered logging is configured with %s bytes.", m[1]),
			Recommendation: noAction,
			AffectedLines:  []string{m[0]},
		})
	}

	r.remoteLogging(c, text, ctx.IsNXOS())

	if ctx.IsNXOS() {
		c.add(notApplicable("check-log-timestamps", "CIS 3.6", "'service timestamps' not applicable on NX-OS", models.SeverityLow,
			"'service timestamps' is an IOS command. NX-OS timestamps logs by default and uses 'logging timestamp' to tune precision."))
	} else if !strings.Contains(text, "service timestamps debug datetime msec") || !strings.Contains(text, "service timestamps log datetime msec") {
		c.add(models.Finding{
			ID:             "check-log-timestamps",
			BenchmarkRef:   "CIS 3.6",
			Title:          "Enable precise log timestamps",
			Severity:       models.SeverityLow,
			Status:         models.StatusNonCompliant,
			Description:    "Debug and log messages are not both timestamped with millisecond precision.",
			Recommendation: "configure terminal\n service timestamps debug datetime msec\n service timestamps log datetime msec\nend",
			Rationale:      "Without precise timestamps, correlating events across devices during an incident is close to impossible.",
		})
	} else {
		c.add(models.Finding{
			ID:             "check-log-timestamps",
			BenchmarkRef:   "CIS 3.6",
			Title:          "Precise log timestamps enabled",
			Severity:       models.SeverityLow,
			Status:         models.StatusCompliant,
			Description:    "Debug and log messages carry millisecond timestamps.",
			Recommendation: noAction,
			AffectedLines:  blockscan.AllMatches(text, timestampsRe),
		})
	}

	if ntp := blockscan.AllMatches(text, ntpServerRe); ntp == nil {
		c.add(models.Finding{
			ID:             "check-6.1",
			BenchmarkRef:   "CIS 2.1.1",
			Title:          "Configure NTP servers",
			Severity:       models.SeverityMedium,
			Status:         models.StatusNonCompliant,
			Description:    "No NTP server is configured. Time synchronisation is required to correlate logs.",
			Recommendation: "configure terminal\n ntp server <NTP_SERVER_1>\n ntp server <NTP_SERVER_2>\nend",
			Rationale:      "Accurate time is what makes logs usable as evidence.",
		})
	} else {
		c.add(models.Finding{
			ID:             "check-6.1",
			BenchmarkRef:   "CIS 2.1.1",
			Title:          "NTP servers configured",
			Severity:       models.SeverityMedium,
			Status:         models.StatusCompliant,
			Description:    "NTP servers are configured.",
			Recommendation: "Make sure the servers are trusted and redundant.",
			AffectedLines:  ntp,
		})
	}

	return c.findings()
}

// remoteLogging evaluates the syslog target and, when one exists, its
// transport, source interface and trap level. The command differs per OS.
func (r LoggingRule) remoteLogging(c *collector, text string, nxos bool) {
	cmd, re := "logging host", loggingHostRe
	if nxos {
		cmd, re = "logging server", loggingServerRe
	}

	hosts := blockscan.AllMatches(text, re)
	if hosts == nil {
		c.add(models.Finding{
			ID:             "check-syslog-existence",
			BenchmarkRef:   "CIS 3.5",
			Title:          "No remote syslog server configured",
			Severity:       models.SeverityHigh,
			Status:         models.StatusNonCompliant,
			Description:    "No remote syslog server is configured. Central log collection is essential for security monitoring and forensics.",
			Recommendation: fmt.Sprintf("Configure a remote log server, preferably over a reliable transport.\nExample: %s <SERVER_IP>", cmd),
		})
		return
	}
	c.add(models.Finding{
		ID:             "check-syslog-existence",
		BenchmarkRef:   "CIS 3.5",
		Title:          "Remote syslog server configured",
		Severity:       models.SeverityHigh,
		Status:         models.StatusCompliant,
		Description:    fmt.Sprintf("%d remote syslog target(s) configured.", len(hosts)),
		Recommendation: noAction,
		AffectedLines:  hosts,
	})

	var secure []string
	for _, h := range hosts {
		if secureTransportRe.MatchString(h) {
			secure = append(secure, h)
		}
	}
	if secure == nil {
		c.add(models.Finding{
			ID:             "check-syslog-secure",
			BenchmarkRef:   "CIS 3.5",
			Title:          "Send syslog over a secure transport",
			Severity:       models.SeverityHigh,
			Status:         models.StatusNonCompliant,
			Description:    "Syslog is configured but not over TCP/TLS. Messages sent over UDP travel in clear text and can be intercepted.",
			Recommendation: fmt.Sprintf("Send syslog over TCP, and TLS where supported.\nExample:\n%s <SERVER_IP> transport tcp", cmd),
			AffectedLines:  hosts,
			Rationale:      "Anyone on the path can read clear-text logs. TCP is the first step; TLS adds encryption.",
		})
	} else {
		c.add(models.Finding{
			ID:             "check-syslog-secure",
			BenchmarkRef:   "CIS 3.5",
			Title:          "Syslog uses TCP transport",
			Severity:       models.SeverityHigh,
			Status:         models.StatusCompliant,
			Description:    "Syslog is sent over TCP, an improvement over UDP.",
			Recommendation: "Protect the connection with TLS if both the device and the collector support it.",
			AffectedLines:  secure,
		})
	}

	if !strings.Contains(text, "logging source-interface") {
		c.add(models.Finding{
			ID:             "check-5.4",
			BenchmarkRef:   "CIS 3.2.1",
			Title:          "Set a logging source interface",
			Severity:       models.SeverityLow,
			Status:         models.StatusNonCompliant,
			Description:    "A syslog server is configured but no source interface, so messages leave from whichever address routing picks.",
			Recommendation: "configure terminal\n logging source-interface Loopback0\nend",
			Rationale:      "A fixed source address simplifies firewall rules and device identification on the collector.",
		})
	} else {
		c.add(models.Finding{
			ID:             "check-5.4",
			BenchmarkRef:   "CIS 3.2.1",
			Title:          "Logging source interface configured",
			Severity:       models.SeverityLow,
			Status:         models.StatusCompliant,
			Description:    "A source interface is configured for syslog.",
			Recommendation: noAction,
			AffectedLines:  blockscan.FirstMatch(text, loggingSourceRe),
		})
	}

	levelRe, levelCmd := loggingTrapRe, "logging trap informational"
	if nxos {
		levelRe, levelCmd = loggingLevelSyslogRe, "logging level syslog 6"
	}
	if lvl := levelRe.FindString(text); lvl == "" {
		c.add(models.Finding{
			ID:             "check-5.2",
			BenchmarkRef:   "CIS 3.3",
			Title:          "Set the syslog severity level",
			Severity:       models.SeverityLow,
			Status:         models.StatusNonCompliant,
			Description:    "No explicit severity level is set for messages sent to syslog servers; the device default applies.",
			Recommendation: fmt.Sprintf("configure terminal\n %s\nend", levelCmd),
			Rationale:      "An explicit level makes sure remote collectors receive logs at the intended granularity.",
		})
	} else {
		c.add(models.Finding{
			ID:             "check-5.2",
			BenchmarkRef:   "CIS 3.3",
			Title:          "Syslog severity level configured",
			Severity:       models.SeverityLow,
			Status:         models.StatusCompliant,
			Description:    "An explicit severity level is set for syslog.",
			Recommendation: noAction,
			AffectedLines:  []string{lvl},
		})
	}
}
