package rules

import (
	"testing"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

func TestServiceRule_HTTP(t *testing.T) {
	t.Run("http without https", func(t *testing.T) {
		got := ServiceRule{}.Evaluate(iosCtx("ip http server\n"))
		assertStatus(t, mustFinding(t, got, "check-3.1"), models.StatusNonCompliant, models.SeverityHigh)
		assertStatus(t, mustFinding(t, got, "check-3.2"), models.StatusNonCompliant, models.SeverityMedium)
	})

	t.Run("http with https", func(t *testing.T) {
		got := ServiceRule{}.Evaluate(iosCtx("ip http server\nip http secure-server\n"))
		if _, ok := findingByID(got, "check-3.2"); ok {
			t.Error("check-3.2 must not fire when HTTPS is enabled")
		}
	})

	t.Run("http disabled", func(t *testing.T) {
		got := ServiceRule{}.Evaluate(iosCtx("no ip http server\n"))
		assertStatus(t, mustFinding(t, got, "check-3.1"), models.StatusCompliant, models.SeverityHigh)
		if _, ok := findingByID(got, "check-3.2"); ok {
			t.Error("check-3.2 must not fire when HTTP is off")
		}
	})
}

func TestServiceRule_LegacyServicesWholeLine(t *testing.T) {
	// "no service tcp-keepalives-in" contains the enabling command as a
	// substring but turns the feature off.
	got := ServiceRule{}.Evaluate(iosCtx("no service tcp-keepalives-in\nservice tcp-keepalives-out\nno service pad\n"))
	assertStatus(t, mustFinding(t, got, "check-24.1"), models.StatusNonCompliant, models.SeverityLow)
	assertStatus(t, mustFinding(t, got, "check-24.2"), models.StatusCompliant, models.SeverityLow)
	assertStatus(t, mustFinding(t, got, "check-26"), models.StatusCompliant, models.SeverityLow)
	assertStatus(t, mustFinding(t, got, "check-27.1"), models.StatusNonCompliant, models.SeverityLow)
}

func TestServiceRule_Bootp(t *testing.T) {
	got := ServiceRule{}.Evaluate(iosCtx("ip bootp server\n"))
	f := mustFinding(t, got, "check-no-ip-bootp")
	assertStatus(t, f, models.StatusNonCompliant, models.SeverityLow)

	got = ServiceRule{}.Evaluate(iosCtx("no ip bootp server\n"))
	assertStatus(t, mustFinding(t, got, "check-no-ip-bootp"), models.StatusCompliant, models.SeverityLow)
}

func TestServiceRule_NXOSLegacyNotApplicable(t *testing.T) {
	got := ServiceRule{}.Evaluate(nxosCtx("feature ssh\n"))
	for _, s := range legacyServices {
		f := mustFinding(t, got, s.id)
		if f.Status != models.StatusNotApplicable {
			t.Errorf("%s: Status = %q; want NOT_APPLICABLE", s.id, f.Status)
		}
	}
}

func TestServiceRule_Finger(t *testing.T) {
	got := ServiceRule{}.Evaluate(iosCtx("ip finger\n"))
	assertStatus(t, mustFinding(t, got, "check-8"), models.StatusNonCompliant, models.SeverityLow)
}
