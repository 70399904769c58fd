package engine

import "github.com/pankaj-dahiya-devops/netaudit/internal/models"

// findingIndex maps finding IDs to findings. A repeated ID keeps its first
// position in order and the last finding seen.
type findingIndex struct {
	order []string
	byID  map[string]models.Finding
}

func indexFindings(findings []models.Finding) findingIndex {
	idx := findingIndex{byID: make(map[string]models.Finding, len(findings))}
	for _, f := range findings {
		if _, seen := idx.byID[f.ID]; !seen {
			idx.order = append(idx.order, f.ID)
		}
		idx.byID[f.ID] = f
	}
	return idx
}

// CompareTemporal joins two reports of the same device on finding ID.
//
// An ID NON_COMPLIANT after is "new" when it was absent or COMPLIANT before
// and "pending" otherwise. An ID NON_COMPLIANT before and COMPLIANT after is
// "mitigated"; the after-side finding is kept.
func CompareTemporal(before, after *models.DeviceReport) *models.ComparisonReport {
	prev := indexFindings(before.Findings)
	next := indexFindings(after.Findings)

	out := &models.ComparisonReport{
		FileNameBefore: before.FileName,
		FileNameAfter:  after.FileName,
		ScoreBefore:    before.Summary.OverallScore,
		ScoreAfter:     after.Summary.OverallScore,
		Mitigated:      []models.Finding{},
		Pending:        []models.Finding{},
		New:            []models.Finding{},
	}

	for _, id := range next.order {
		f := next.byID[id]
		if !f.IsNonCompliant() {
			continue
		}
		old, ok := prev.byID[id]
		if !ok || old.Status == models.StatusCompliant {
			out.New = append(out.New, f)
		} else {
			out.Pending = append(out.Pending, f)
		}
	}

	for _, id := range prev.order {
		if !prev.byID[id].IsNonCompliant() {
			continue
		}
		if f, ok := next.byID[id]; ok && f.Status == models.StatusCompliant {
			out.Mitigated = append(out.Mitigated, f)
		}
	}

	out.MitigatedCount = len(out.Mitigated)
	out.PendingCount = len(out.Pending)
	out.NewCount = len(out.New)
	return out
}

// CompareDevices contrasts the open issues of two devices over the union of
// their finding IDs. A missing ID counts as not NON_COMPLIANT on that side.
func CompareDevices(a, b *models.DeviceReport) *models.DeviceComparisonReport {
	left := indexFindings(a.Findings)
	right := indexFindings(b.Findings)

	out := &models.DeviceComparisonReport{
		FileNameA: a.FileName,
		FileNameB: b.FileName,
		ScoreA:    a.Summary.OverallScore,
		ScoreB:    b.Summary.OverallScore,
		Common:    []models.Finding{},
		OnlyInA:   []models.Finding{},
		OnlyInB:   []models.Finding{},
	}

	union := append([]string(nil), left.order...)
	for _, id := range right.order {
		if _, ok := left.byID[id]; !ok {
			union = append(union, id)
		}
	}

	for _, id := range union {
		fa, inA := left.byID[id]
		fb, inB := right.byID[id]
		aOpen := inA && fa.IsNonCompliant()
		bOpen := inB && fb.IsNonCompliant()
		switch {
		case aOpen && bOpen:
			out.Common = append(out.Common, fa)
		case aOpen:
			out.OnlyInA = append(out.OnlyInA, fa)
		case bOpen:
			out.OnlyInB = append(out.OnlyInB, fb)
		}
	}
	return out
}
