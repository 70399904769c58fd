package rules

import (
	"testing"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

func TestSSHRule_Inactive(t *testing.T) {
	got := SSHRule{}.Evaluate(iosCtx("hostname r1\n"))
	if len(got) != 1 {
		t.Fatalf("want 1 finding, got %d", len(got))
	}
	assertStatus(t, got[0], models.StatusNotApplicable, models.SeverityInfo)
	if got[0].ID != "check-13.1" {
		t.Errorf("ID = %q; want check-13.1", got[0].ID)
	}
}

func TestSSHRule_VersionTwoAndStrongKey(t *testing.T) {
	cfg := "ip ssh version 2\ncrypto key generate rsa modulus 2048\nline vty 0 4\n transport input ssh\n"
	got := SSHRule{}.Evaluate(iosCtx(cfg))
	assertStatus(t, mustFinding(t, got, "check-13.1"), models.StatusCompliant, models.SeverityHigh)
	assertStatus(t, mustFinding(t, got, "check-ssh-keysize"), models.StatusCompliant, models.SeverityHigh)
	assertModule(t, got, "SSH")
}

func TestSSHRule_Version(t *testing.T) {
	f := mustFinding(t, SSHRule{}.Evaluate(iosCtx("ip ssh version 1\n")), "check-13.1")
	assertStatus(t, f, models.StatusNonCompliant, models.SeverityHigh)

	f = mustFinding(t, SSHRule{}.Evaluate(iosCtx("ip ssh time-out 60\n")), "check-13.1")
	assertStatus(t, f, models.StatusNonCompliant, models.SeverityHigh)
}

func TestSSHRule_KeySize(t *testing.T) {
	tests := []struct {
		name   string
		ctx    RuleContext
		status models.ComplianceStatus
		sev    models.Severity
	}{
		{"weak IOS key", iosCtx("ip ssh version 2\ncrypto key generate rsa general-keys modulus 1024\n"), models.StatusNonCompliant, models.SeverityHigh},
		{"unknown key", iosCtx("ip ssh version 2\n"), models.StatusNonCompliant, models.SeverityMedium},
		{"NX-OS key", nxosCtx("ssh key rsa 4096\n"), models.StatusCompliant, models.SeverityHigh},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assertStatus(t, mustFinding(t, SSHRule{}.Evaluate(tc.ctx), "check-ssh-keysize"), tc.status, tc.sev)
		})
	}
}

func TestSSHRule_TimeoutAndRetries(t *testing.T) {
	got := SSHRule{}.Evaluate(iosCtx("ip ssh time-out 1200\nip ssh authentication-retries 2\n"))
	assertStatus(t, mustFinding(t, got, "check-13.2"), models.StatusNonCompliant, models.SeverityLow)
	assertStatus(t, mustFinding(t, got, "check-13.3"), models.StatusCompliant, models.SeverityMedium)

	// IOS retries command does not count on NX-OS.
	got = SSHRule{}.Evaluate(nxosCtx("ip ssh authentication-retries 2\n"))
	assertStatus(t, mustFinding(t, got, "check-13.3"), models.StatusNonCompliant, models.SeverityMedium)

	got = SSHRule{}.Evaluate(nxosCtx("ssh key rsa 2048\nssh login-attempts 5\n"))
	assertStatus(t, mustFinding(t, got, "check-13.3"), models.StatusNonCompliant, models.SeverityMedium)
}

func TestSSHRule_Algorithms(t *testing.T) {
	cfg := "ip ssh version 2\nip ssh server algorithm mac hmac-sha2-256 hmac-sha1\nip ssh server algorithm encryption aes256-ctr\n"
	got := SSHRule{}.Evaluate(iosCtx(cfg))

	assertStatus(t, mustFinding(t, got, "check-ssh-mac-weak"), models.StatusNonCompliant, models.SeverityMedium)
	assertStatus(t, mustFinding(t, got, "check-ssh-mac-strong"), models.StatusCompliant, models.SeverityInfo)
	assertStatus(t, mustFinding(t, got, "check-ssh-kex-default"), models.StatusNonCompliant, models.SeverityLow)
	assertStatus(t, mustFinding(t, got, "check-ssh-encryption-strong"), models.StatusCompliant, models.SeverityInfo)
	if _, ok := findingByID(got, "check-ssh-encryption-weak"); ok {
		t.Error("no weak encryption algorithm was configured")
	}
}
