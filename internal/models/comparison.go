package models

// ComparisonReport is a before/after view of the same device, joined on
// finding ID.
type ComparisonReport struct {
	FileNameBefore string `json:"file_name_before"`
	FileNameAfter  string `json:"file_name_after"`
	ScoreBefore    int    `json:"score_before"`
	ScoreAfter     int    `json:"score_after"`

	MitigatedCount int `json:"mitigated_count"`
	PendingCount   int `json:"pending_count"`
	NewCount       int `json:"new_count"`

	// Mitigated holds the after-side finding of every ID that went from
	// NON_COMPLIANT to COMPLIANT.
	Mitigated []Finding `json:"mitigated"`
	// Pending holds after-side findings that are still NON_COMPLIANT.
	Pending []Finding `json:"pending"`
	// New holds after-side NON_COMPLIANT findings whose ID was absent or
	// COMPLIANT before.
	New []Finding `json:"new"`
}

// DeviceComparisonReport contrasts the open issues of two different devices.
type DeviceComparisonReport struct {
	FileNameA string `json:"file_name_a"`
	FileNameB string `json:"file_name_b"`
	ScoreA    int    `json:"score_a"`
	ScoreB    int    `json:"score_b"`

	// Common is NON_COMPLIANT on both sides; the body is taken from A.
	Common  []Finding `json:"common"`
	OnlyInA []Finding `json:"only_in_a"`
	OnlyInB []Finding `json:"only_in_b"`
}
