package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/pankaj-dahiya-devops/netaudit/internal/blockscan"
	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
	"github.com/pankaj-dahiya-devops/netaudit/internal/policy"
)

var (
	passwordEncryptionRe = regexp.MustCompile(`(?m)^service password-encryption$`)
	enableSecretRe       = regexp.MustCompile(`(?i)enable secret (\d+) (.+)`)
	enableSecret5Re      = regexp.MustCompile(`(?i)enable secret 5 .+`)
	enablePasswordRe     = regexp.MustCompile(`(?i)enable password .+`)
	minLengthRe          = regexp.MustCompile(`(?i)security passwords min-length (\d+)`)
	loginBlockRe         = regexp.MustCompile(`(?m)^login block-for.*$`)
)

const defaultMinPasswordLength = 14

// PasswordRule covers password obfuscation, enable secret strength, minimum
// password length and login lockout.
type PasswordRule struct{}

func (r PasswordRule) ID() string   { return "PASSWORDS" }
func (r PasswordRule) Name() string { return "Password policy" }

func (r PasswordRule) Evaluate(ctx RuleContext) []models.Finding {
	text := ctx.Text()
	c := newCollector(r.ID())

	if !strings.Contains(text, "service password-encryption") {
		c.add(models.Finding{
			ID:             "check-1",
			BenchmarkRef:   "CIS 1.1.1",
			Title:          "Enable password obfuscation",
			Severity:       models.SeverityMedium,
			Status:         models.StatusNonCompliant,
			Description:    "'service password-encryption' is not enabled. It is weak obfuscation but prevents casual observation.",
			Recommendation: "configure terminal\n service password-encryption\nend",
			Rationale:      "Without it, passwords appear in clear text whenever the configuration is exposed.",
		})
	} else {
		c.add(models.Finding{
			ID:             "check-1",
			BenchmarkRef:   "CIS 1.1.1",
			Title:          "Password obfuscation enabled",
			Severity:       models.SeverityMedium,
			Status:         models.StatusCompliant,
			Description:    "'service password-encryption' is enabled.",
			Recommendation: noAction,
			AffectedLines:  blockscan.FirstMatch(text, passwordEncryptionRe),
		})
	}

	if ctx.IsNXOS() {
		c.add(notApplicable("check-2", "CIS 1.2.1", "'enable secret' not applicable on NX-OS", models.SeverityCritical,
			"NX-OS has no 'enable secret'; privileged access is governed by user accounts and roles. Make sure 'network-admin' accounts have strong passwords."))
	} else {
		c.add(enableSecretFinding(text))
	}

	minLen := policy.GetIntThreshold(r.ID(), policy.ParamMinPasswordLength, defaultMinPasswordLength, ctx.Policy)
	fix := fmt.Sprintf("configure terminal\n security passwords min-length %d\nend", minLen)
	m := minLengthRe.FindStringSubmatch(text)
	switch {
	case m == nil:
		c.add(models.Finding{
			ID:             "check-12",
			BenchmarkRef:   "CIS 1.2.2",
			Title:          "Set a minimum password length",
			Severity:       models.SeverityMedium,
			Status:         models.StatusNonCompliant,
			Description:    "'security passwords min-length' is not configured.",
			Recommendation: fix,
			Rationale:      "A minimum length raises the cost of brute-force attacks.",
		})
	case atoi(m[1]) < minLen:
		c.add(models.Finding{
			ID:             "check-12",
			BenchmarkRef:   "CIS 1.2.2",
			Title:          "Increase the minimum password length",
			Severity:       models.SeverityMedium,
			Status:         models.StatusNonCompliant,
			Description:    fmt.Sprintf("Minimum password length is %s, below the recommended %d.", m[1], minLen),
			Recommendation: fix,
			AffectedLines:  []string{m[0]},
		})
	default:
		c.add(models.Finding{
			ID:             "check-12",
			BenchmarkRef:   "CIS 1.2.2",
			Title:          "Minimum password length adequate",
			Severity:       models.SeverityMedium,
			Status:         models.StatusCompliant,
			Description:    fmt.Sprintf("Minimum password length is set to %s.", m[1]),
			Recommendation: noAction,
			AffectedLines:  []string{m[0]},
		})
	}

	switch {
	case ctx.IsNXOS():
		c.add(notApplicable("check-25", "CIS 1.4.1", "'login block-for' not applicable on NX-OS", models.SeverityMedium,
			"'login block-for' is an IOS command; NX-OS lockout is reviewed by the AAA checks."))
	case !strings.Contains(text, "login block-for"):
		c.add(models.Finding{
			ID:             "check-25",
			BenchmarkRef:   "CIS 1.4.1",
			Title:          "Lock out repeated failed logins",
			Severity:       models.SeverityMedium,
			Status:         models.StatusNonCompliant,
			Description:    "No lockout after failed login attempts is configured.",
			Recommendation: "configure terminal\n login block-for 120 attempts 3 within 60\nend",
			Rationale:      "A lockout slows down credential brute-force attacks.",
		})
	default:
		c.add(models.Finding{
			ID:             "check-25",
			BenchmarkRef:   "CIS 1.4.1",
			Title:          "Failed login lockout configured",
			Severity:       models.SeverityMedium,
			Status:         models.StatusCompliant,
			Description:    "'login block-for' is configured.",
			Recommendation: "Check that the parameters match your security policy.",
			AffectedLines:  blockscan.FirstMatch(text, loginBlockRe),
		})
	}

	return c.findings()
}

// enableSecretFinding classifies the privileged-mode password on IOS. Each
// outcome has its own ID.
func enableSecretFinding(text string) models.Finding {
	secret := enableSecretRe.FindStringSubmatch(text)
	password := enablePasswordRe.FindAllString(text, -1)

	switch {
	case secret == nil && password != nil:
		return models.Finding{
			ID:             "check-2",
			BenchmarkRef:   "CIS 1.2.1",
			Title:          "Use 'enable secret' instead of 'enable password'",
			Severity:       models.SeverityCritical,
			Status:         models.StatusNonCompliant,
			Description:    "'enable password' is configured without 'enable secret'; it is stored with weak or no hashing.",
			Recommendation: "configure terminal\n no enable password\n enable secret <STRONG_PASSWORD>\nend",
			AffectedLines:  password,
		}
	case secret != nil && secret[1] == "5":
		return models.Finding{
			ID:             "check-2.2",
			BenchmarkRef:   "CIS 1.2.1",
			Title:          "Use a stronger hash than MD5 for 'enable secret'",
			Severity:       models.SeverityMedium,
			Status:         models.StatusNonCompliant,
			Description:    "'enable secret 5' uses MD5. Use SHA-256 (type 8) or scrypt (type 9) where the release supports it.",
			Recommendation: "configure terminal\n enable algorithm-type sha256 secret <STRONG_PASSWORD>\nend",
			AffectedLines:  enableSecret5Re.FindAllString(text, -1),
		}
	case secret != nil:
		return models.Finding{
			ID:             "check-2.3",
			BenchmarkRef:   "CIS 1.2.1",
			Title:          "'enable secret' uses a strong algorithm",
			Severity:       models.SeverityCritical,
			Status:         models.StatusCompliant,
			Description:    fmt.Sprintf("'enable secret' is configured with hash type %s.", secret[1]),
			Recommendation: "No action required if the password itself is strong.",
			AffectedLines:  []string{secret[0]},
		}
	default:
		return models.Finding{
			ID:             "check-2.5",
			BenchmarkRef:   "CIS 1.2.1",
			Title:          "Configure 'enable secret'",
			Severity:       models.SeverityCritical,
			Status:         models.StatusNonCompliant,
			Description:    "No 'enable secret' is configured to protect privileged mode.",
			Recommendation: "configure terminal\n enable secret <STRONG_PASSWORD>\nend",
		}
	}
}

// atoi parses a decimal that a regexp already matched as \d+. Overflowing
// values saturate instead of failing.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return int(^uint(0) >> 1)
	}
	return n
}
