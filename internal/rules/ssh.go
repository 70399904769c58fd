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
	ipSSHRe           = regexp.MustCompile(`(?i)ip ssh`)
	transportSSHRe    = regexp.MustCompile(`(?i)transport input ssh`)
	sshKeyLineRe      = regexp.MustCompile(`(?m)^ssh key`)
	sshVersion1Re     = regexp.MustCompile(`(?i)ip ssh version 1`)
	sshVersion2Re     = regexp.MustCompile(`(?i)ip ssh version 2`)
	rsaKeyGenerateRe  = regexp.MustCompile(`(?i)crypto key generate rsa.*modulus (\d+)`)
	nxosRSAKeyRe      = regexp.MustCompile(`ssh key rsa (\d+)`)
	sshTimeoutRe      = regexp.MustCompile(`(?i)ip ssh time-out (\d+)`)
	sshAuthRetriesRe  = regexp.MustCompile(`(?i)ip ssh authentication-retries (\d+)`)
	sshLoginAttemptRe = regexp.MustCompile(`(?im)^ssh login-attempts (\d+)`)
)

const (
	defaultMinRSAModulus = 2048
	defaultMaxSSHTimeout = 900
	defaultMaxSSHRetries = 3
)

// sshAlgorithm describes one "ip ssh server algorithm" family and the
// algorithms in it considered weak.
type sshAlgorithm struct {
	kind    string // mac, kex, encryption
	label   string
	re      *regexp.Regexp
	weak    map[string]bool
	example string
	why     string
}

var sshAlgorithms = []sshAlgorithm{
	{
		kind:    "mac",
		label:   "MAC",
		re:      regexp.MustCompile(`(?i)ip ssh server algorithm mac (.*)`),
		weak:    setOf("hmac-sha1", "hmac-sha1-96", "hmac-md5"),
		example: "configure terminal\n ip ssh server algorithm mac hmac-sha2-512 hmac-sha2-256\nend",
		why:     "SHA-1 and MD5 based MACs are weaker than SHA-2 based ones.",
	},
	{
		kind:    "kex",
		label:   "key exchange",
		re:      regexp.MustCompile(`(?i)ip ssh server algorithm kex (.*)`),
		weak:    setOf("diffie-hellman-group1-sha1", "diffie-hellman-group14-sha1"),
		example: "configure terminal\n ip ssh server algorithm kex diffie-hellman-group-exchange-sha256 ecdh-sha2-nistp384\nend",
		why:     "SHA-1 key exchange is obsolete; use stronger SHA-2 Diffie-Hellman groups.",
	},
	{
		kind:    "encryption",
		label:   "encryption",
		re:      regexp.MustCompile(`(?i)ip ssh server algorithm encryption (.*)`),
		weak:    setOf("aes128-cbc", "3des-cbc", "aes192-cbc", "aes256-cbc"),
		example: "configure terminal\n ip ssh server algorithm encryption aes256-ctr aes192-ctr aes128-ctr\nend",
		why:     "CBC mode ciphers are exposed to padding oracle attacks; use CTR or GCM modes.",
	},
}

func setOf(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}

// SSHRule covers SSH version, host key size, session limits and the
// negotiated algorithm lists.
type SSHRule struct{}

func (r SSHRule) ID() string   { return "SSH" }
func (r SSHRule) Name() string { return "SSH server" }

// Active reports whether the configuration shows any sign of a running SSH
// server. Every other SSH check is skipped when it does not.
func (r SSHRule) Active(text string) bool {
	return ipSSHRe.MatchString(text) || transportSSHRe.MatchString(text) || sshKeyLineRe.MatchString(text)
}

func (r SSHRule) Evaluate(ctx RuleContext) []models.Finding {
	text := ctx.Text()
	c := newCollector(r.ID())

	if !r.Active(text) {
		c.add(models.Finding{
			ID:             "check-13.1",
			BenchmarkRef:   "CIS 5.3.1",
			Title:          "SSH appears disabled",
			Severity:       models.SeverityInfo,
			Status:         models.StatusNotApplicable,
			Description:    "Nothing in the configuration indicates that SSH is active.",
			Recommendation: "If SSH is needed, generate an RSA key, set 'ip ssh version 2' and allow it with 'transport input ssh' on the VTY lines.",
		})
		return c.findings()
	}

	r.version(c, text)
	r.keySize(c, text, ctx.Policy)
	r.timeout(c, text, ctx.Policy)
	r.retries(c, text, ctx.IsNXOS(), ctx.Policy)
	for _, alg := range sshAlgorithms {
		c.addAll(alg.evaluate(text))
	}
	return c.findings()
}

func (r SSHRule) version(c *collector, text string) {
	switch {
	case sshVersion1Re.MatchString(text):
		c.add(models.Finding{
			ID:             "check-13.1",
			BenchmarkRef:   "CIS 5.3.1",
			Title:          "Use SSH version 2",
			Severity:       models.SeverityHigh,
			Status:         models.StatusNonCompliant,
			Description:    "SSH version 1 is explicitly configured. SSHv1 has known vulnerabilities.",
			Recommendation: "configure terminal\n ip ssh version 2\nend",
			AffectedLines:  blockscan.AllMatches(text, sshVersion1Re),
		})
	case sshVersion2Re.MatchString(text):
		c.add(models.Finding{
			ID:             "check-13.1",
			BenchmarkRef:   "CIS 5.3.1",
			Title:          "SSH version 2 configured",
			Severity:       models.SeverityHigh,
			Status:         models.StatusCompliant,
			Description:    "SSH is restricted to version 2.",
			Recommendation: noAction,
			AffectedLines:  blockscan.AllMatches(text, sshVersion2Re),
		})
	default:
		c.add(models.Finding{
			ID:             "check-13.1",
			BenchmarkRef:   "CIS 5.3.1",
			Title:          "Force SSH version 2",
			Severity:       models.SeverityHigh,
			Status:         models.StatusNonCompliant,
			Description:    "SSH appears enabled but the version is not forced to 2; some releases accept SSHv1 by default.",
			Recommendation: "configure terminal\n ip ssh version 2\nend",
			Rationale:      "Forcing SSHv2 explicitly prevents accidental use of SSHv1.",
		})
	}
}

func (r SSHRule) keySize(c *collector, text string, cfg *policy.PolicyConfig) {
	minBits := policy.GetIntThreshold(r.ID(), policy.ParamMinRSAModulus, defaultMinRSAModulus, cfg)

	m := rsaKeyGenerateRe.FindStringSubmatch(text)
	if m == nil {
		m = nxosRSAKeyRe.FindStringSubmatch(text)
	}
	if m == nil {
		c.add(models.Finding{
			ID:             "check-ssh-keysize",
			BenchmarkRef:   "CIS 5.3.0",
			Title:          "RSA key size could not be determined",
			Severity:       models.SeverityMedium,
			Status:         models.StatusNonCompliant,
			Description:    "No RSA key command ('crypto key generate' or 'ssh key') states a modulus. SSH depends on the RSA key and its strength.",
			Recommendation: fmt.Sprintf("Make sure an RSA key of at least %d bits has been generated on the device.", minBits),
			Rationale:      "The RSA key is the SSH server identity; a weak key undermines every session.",
		})
		return
	}

	bits := atoi(m[1])
	if bits < minBits {
		c.add(models.Finding{
			ID:             "check-ssh-keysize",
			BenchmarkRef:   "CIS 5.3.0",
			Title:          "Weak SSH RSA key",
			Severity:       models.SeverityHigh,
			Status:         models.StatusNonCompliant,
			Description:    fmt.Sprintf("The RSA key is %d bits, below the recommended minimum of %d.", bits, minBits),
			Recommendation: fmt.Sprintf("configure terminal\n crypto key generate rsa modulus %d\nend", minBits),
			AffectedLines:  []string{m[0]},
			Rationale:      "Short keys are within reach of brute-force attacks with modern hardware.",
		})
		return
	}
	c.add(models.Finding{
		ID:             "check-ssh-keysize",
		BenchmarkRef:   "CIS 5.3.0",
		Title:          "Strong SSH RSA key",
		Severity:       models.SeverityHigh,
		Status:         models.StatusCompliant,
		Description:    fmt.Sprintf("The RSA key is %d bits.", bits),
		Recommendation: noAction,
		AffectedLines:  []string{m[0]},
	})
}

func (r SSHRule) timeout(c *collector, text string, cfg *policy.PolicyConfig) {
	maxTimeout := policy.GetIntThreshold(r.ID(), policy.ParamMaxSSHTimeout, defaultMaxSSHTimeout, cfg)

	m := sshTimeoutRe.FindStringSubmatch(text)
	switch {
	case m == nil:
		c.add(models.Finding{
			ID:             "check-13.2",
			BenchmarkRef:   "CIS 5.3.2",
			Title:          "Set an SSH timeout",
			Severity:       models.SeverityLow,
			Status:         models.StatusNonCompliant,
			Description:    "No SSH negotiation timeout is configured.",
			Recommendation: "configure terminal\n ip ssh time-out 60\nend",
		})
	case atoi(m[1]) > maxTimeout:
		c.add(models.Finding{
			ID:             "check-13.2",
			BenchmarkRef:   "CIS 5.3.2",
			Title:          "SSH timeout too long",
			Severity:       models.SeverityLow,
			Status:         models.StatusNonCompliant,
			Description:    fmt.Sprintf("The SSH timeout is %s seconds, above %d.", m[1], maxTimeout),
			Recommendation: "configure terminal\n ip ssh time-out 60\nend",
			AffectedLines:  []string{m[0]},
		})
	default:
		c.add(models.Finding{
			ID:             "check-13.2",
			BenchmarkRef:   "CIS 5.3.2",
			Title:          "SSH timeout configured",
			Severity:       models.SeverityLow,
			Status:         models.StatusCompliant,
			Description:    fmt.Sprintf("The SSH timeout is %s seconds.", m[1]),
			Recommendation: noAction,
			AffectedLines:  []string{m[0]},
		})
	}
}

func (r SSHRule) retries(c *collector, text string, nxos bool, cfg *policy.PolicyConfig) {
	maxRetries := policy.GetIntThreshold(r.ID(), policy.ParamMaxSSHRetries, defaultMaxSSHRetries, cfg)

	re, cmd := sshAuthRetriesRe, "ip ssh authentication-retries"
	if nxos {
		re, cmd = sshLoginAttemptRe, "ssh login-attempts"
	}
	fix := fmt.Sprintf("configure terminal\n %s %d\nend", cmd, maxRetries)

	m := re.FindStringSubmatch(text)
	switch {
	case m == nil:
		c.add(models.Finding{
			ID:             "check-13.3",
			BenchmarkRef:   "CIS 5.3.3",
			Title:          "Limit SSH authentication attempts",
			Severity:       models.SeverityMedium,
			Status:         models.StatusNonCompliant,
			Description:    fmt.Sprintf("SSH authentication attempts are not limited ('%s').", cmd),
			Recommendation: fix,
		})
	case atoi(m[1]) > maxRetries:
		c.add(models.Finding{
			ID:             "check-13.3",
			BenchmarkRef:   "CIS 5.3.3",
			Title:          "Too many SSH authentication attempts",
			Severity:       models.SeverityMedium,
			Status:         models.StatusNonCompliant,
			Description:    fmt.Sprintf("SSH allows %s authentication attempts; %d or fewer is recommended.", m[1], maxRetries),
			Recommendation: fix,
			AffectedLines:  []string{m[0]},
		})
	default:
		c.add(models.Finding{
			ID:             "check-13.3",
			BenchmarkRef:   "CIS 5.3.3",
			Title:          "SSH authentication attempts limited",
			Severity:       models.SeverityMedium,
			Status:         models.StatusCompliant,
			Description:    fmt.Sprintf("SSH allows %s authentication attempts.", m[1]),
			Recommendation: noAction,
			AffectedLines:  []string{m[0]},
		})
	}
}

// evaluate emits up to two findings when the family is configured (one for
// weak, one for strong algorithms) and one LOW finding when it is left at the
// device defaults.
func (a sshAlgorithm) evaluate(text string) []models.Finding {
	m := a.re.FindStringSubmatch(text)
	if m == nil {
		return []models.Finding{{
			ID:             "check-ssh-" + a.kind + "-default",
			BenchmarkRef:   "CIS 5.3.6",
			Title:          fmt.Sprintf("SSH %s algorithms not set explicitly", a.label),
			Severity:       models.SeverityLow,
			Status:         models.StatusNonCompliant,
			Description:    fmt.Sprintf("No SSH %s algorithms are configured; the device defaults may include weak, obsolete algorithms.", a.label),
			Recommendation: fmt.Sprintf("Configure an explicit list of strong %s algorithms. Example:\n%s", a.label, a.example),
			Rationale:      "Older releases ship weak defaults; an explicit list keeps the posture consistent.",
		}}
	}

	var weak, strong []string
	for _, alg := range strings.Fields(m[1]) {
		if a.weak[alg] {
			weak = append(weak, alg)
		} else {
			strong = append(strong, alg)
		}
	}

	var out []models.Finding
	if len(weak) > 0 {
		out = append(out, models.Finding{
			ID:             "check-ssh-" + a.kind + "-weak",
			BenchmarkRef:   "CIS 5.3.6",
			Title:          fmt.Sprintf("Weak SSH %s algorithms allowed", a.label),
			Severity:       models.SeverityMedium,
			Status:         models.StatusNonCompliant,
			Description:    fmt.Sprintf("SSH allows these weak %s algorithms: %s.", a.label, strings.Join(weak, ", ")),
			Recommendation: fmt.Sprintf("Remove the weak algorithms. Example:\n%s", a.example),
			AffectedLines:  []string{m[0]},
			Rationale:      a.why,
		})
	}
	if len(strong) > 0 {
		out = append(out, models.Finding{
			ID:             "check-ssh-" + a.kind + "-strong",
			BenchmarkRef:   "CIS 5.3.6",
			Title:          fmt.Sprintf("Strong SSH %s algorithms configured", a.label),
			Severity:       models.SeverityInfo,
			Status:         models.StatusCompliant,
			Description:    fmt.Sprintf("SSH uses these strong %s algorithms: %s.", a.label, strings.Join(strong, ", ")),
			Recommendation: noAction,
			AffectedLines:  []string{m[0]},
		})
	}
	return out
}
