package engine

import (
	"reflect"
	"testing"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

func TestCompareTemporal(t *testing.T) {
	before := reportWith("r1-jan.txt",
		nc("fixed", models.SeverityHigh),
		nc("still-open", models.SeverityMedium),
		compliant("regressed", models.SeverityLow),
		nc("dropped", models.SeverityLow),
	)
	after := reportWith("r1-feb.txt",
		compliant("fixed", models.SeverityHigh),
		nc("still-open", models.SeverityMedium),
		nc("regressed", models.SeverityLow),
		nc("brand-new", models.SeverityCritical),
	)

	got := CompareTemporal(before, after)

	if g, w := ids(got.Mitigated), []string{"fixed"}; !reflect.DeepEqual(g, w) {
		t.Errorf("Mitigated: got %v; want %v", g, w)
	}
	if g, w := ids(got.Pending), []string{"still-open"}; !reflect.DeepEqual(g, w) {
		t.Errorf("Pending: got %v; want %v", g, w)
	}
	if g, w := ids(got.New), []string{"regressed", "brand-new"}; !reflect.DeepEqual(g, w) {
		t.Errorf("New: got %v; want %v", g, w)
	}
	if got.MitigatedCount != 1 || got.PendingCount != 1 || got.NewCount != 2 {
		t.Errorf("counts: got %d/%d/%d; want 1/1/2", got.MitigatedCount, got.PendingCount, got.NewCount)
	}
	if got.Mitigated[0].Status != models.StatusCompliant {
		t.Error("mitigated entries should carry the after-side finding")
	}
	if got.ScoreBefore != before.Summary.OverallScore || got.ScoreAfter != after.Summary.OverallScore {
		t.Errorf("scores: got %d -> %d", got.ScoreBefore, got.ScoreAfter)
	}
	if got.FileNameBefore != "r1-jan.txt" || got.FileNameAfter != "r1-feb.txt" {
		t.Errorf("file names: got %q -> %q", got.FileNameBefore, got.FileNameAfter)
	}
}

func TestCompareTemporal_IdenticalReports(t *testing.T) {
	r := reportWith("r1.txt", nc("a", models.SeverityLow), compliant("b", models.SeverityLow))
	got := CompareTemporal(r, r)
	if got.NewCount != 0 || got.MitigatedCount != 0 || got.PendingCount != 1 {
		t.Errorf("counts: got new=%d mitigated=%d pending=%d", got.NewCount, got.MitigatedCount, got.PendingCount)
	}
	if got.New == nil || got.Mitigated == nil {
		t.Error("empty partitions should be empty slices")
	}
}

func TestCompareTemporal_NotApplicableIsNotMitigation(t *testing.T) {
	before := reportWith("a", nc("x", models.SeverityLow))
	after := reportWith("b", models.Finding{ID: "x", Severity: models.SeverityLow, Status: models.StatusNotApplicable})
	if got := CompareTemporal(before, after); got.MitigatedCount != 0 {
		t.Errorf("NOT_APPLICABLE after should not count as mitigated, got %d", got.MitigatedCount)
	}
}

func TestCompareDevices(t *testing.T) {
	a := reportWith("sw1.txt",
		nc("shared", models.SeverityHigh),
		nc("a-only", models.SeverityLow),
		nc("b-fixed", models.SeverityLow),
	)
	b := reportWith("sw2.txt",
		compliant("b-fixed", models.SeverityLow),
		nc("b-only", models.SeverityMedium),
		nc("shared", models.SeverityLow),
	)

	got := CompareDevices(a, b)

	if g, w := ids(got.Common), []string{"shared"}; !reflect.DeepEqual(g, w) {
		t.Errorf("Common: got %v; want %v", g, w)
	}
	if got.Common[0].Severity != models.SeverityHigh {
		t.Error("common entries should carry the A-side finding")
	}
	if g, w := ids(got.OnlyInA), []string{"a-only", "b-fixed"}; !reflect.DeepEqual(g, w) {
		t.Errorf("OnlyInA: got %v; want %v", g, w)
	}
	if g, w := ids(got.OnlyInB), []string{"b-only"}; !reflect.DeepEqual(g, w) {
		t.Errorf("OnlyInB: got %v; want %v", g, w)
	}
}

func TestCompareDevices_Symmetric(t *testing.T) {
	a := reportWith("a", nc("x", models.SeverityLow), nc("y", models.SeverityLow))
	b := reportWith("b", nc("y", models.SeverityLow), nc("z", models.SeverityLow))
	ab := CompareDevices(a, b)
	ba := CompareDevices(b, a)
	if !reflect.DeepEqual(ids(ab.OnlyInA), ids(ba.OnlyInB)) || !reflect.DeepEqual(ids(ab.OnlyInB), ids(ba.OnlyInA)) {
		t.Error("swapping inputs should swap the one-sided partitions")
	}
	if !reflect.DeepEqual(ids(ab.Common), ids(ba.Common)) {
		t.Error("common set should not depend on input order")
	}
}

func TestIndexFindings_LastDuplicateWins(t *testing.T) {
	idx := indexFindings([]models.Finding{
		nc("dup", models.SeverityLow),
		nc("other", models.SeverityLow),
		compliant("dup", models.SeverityLow),
	})
	if !reflect.DeepEqual(idx.order, []string{"dup", "other"}) {
		t.Errorf("order: got %v", idx.order)
	}
	if idx.byID["dup"].Status != models.StatusCompliant {
		t.Error("last duplicate should win")
	}
}
