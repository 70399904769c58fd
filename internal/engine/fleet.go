package engine

import (
	"math"
	"sort"

	"github.com/pankaj-dahiya-devops/netaudit/internal/models"
)

// topCommonFindings caps the common-finding ranking.
const topCommonFindings = 5

// scoreBuckets are the fixed score histogram bars, lowest first.
var scoreBuckets = []models.ScoreBucket{
	{Label: "0-49", Min: 0, Max: 49},
	{Label: "50-74", Min: 50, Max: 74},
	{Label: "75-89", Min: 75, Max: 89},
	{Label: "90-100", Min: 90, Max: 100},
}

// Aggregate builds the fleet report of many device reports. Nil reports are
// ignored. No reports yields zero KPIs and empty collections.
func Aggregate(reports []*models.DeviceReport) *models.FleetReport {
	out := &models.FleetReport{
		KPIs:              models.FleetKPIs{OverallRisk: models.RiskIndeterminate},
		TopCommonFindings: []models.CommonFinding{},
		RiskDistribution:  []models.RiskBucket{},
		ScoreDistribution: []models.ScoreBucket{},
		Devices:           []models.DeviceSummary{},
	}

	var devices []*models.DeviceReport
	for _, r := range reports {
		if r != nil {
			devices = append(devices, r)
		}
	}
	if len(devices) == 0 {
		return out
	}

	var (
		totalScore int
		overall    = models.RiskLow
		riskCount  = make(map[int]int)
		scores     = append([]models.ScoreBucket(nil), scoreBuckets...)
		common     []models.CommonFinding
		commonIdx  = make(map[string]int)
	)

	for _, r := range devices {
		score := r.Summary.OverallScore
		risk := ClassifyRisk(r)

		totalScore += score
		out.KPIs.TotalCriticals += r.Summary.BySeverity[models.SeverityCritical]
		if risk.Level > overall.Level {
			overall = risk
		}
		riskCount[risk.Level]++
		scores[scoreBucket(score)].Count++

		for _, f := range r.Findings {
			if !f.IsNonCompliant() {
				continue
			}
			if i, ok := commonIdx[f.ID]; ok {
				common[i].Count++
				continue
			}
			commonIdx[f.ID] = len(common)
			common = append(common, models.CommonFinding{ID: f.ID, Title: f.Title, Severity: f.Severity, Count: 1})
		}

		out.Devices = append(out.Devices, models.DeviceSummary{FileName: r.FileName, Score: score, Risk: risk})
	}

	out.KPIs.TotalDevices = len(devices)
	out.KPIs.AverageScore = int(math.Round(float64(totalScore) / float64(len(devices))))
	out.KPIs.OverallRisk = overall

	sort.SliceStable(common, func(i, j int) bool { return common[i].Count > common[j].Count })
	if len(common) > topCommonFindings {
		common = common[:topCommonFindings]
	}
	out.TopCommonFindings = append(out.TopCommonFindings, common...)

	for _, level := range models.RiskLevels {
		out.RiskDistribution = append(out.RiskDistribution, models.RiskBucket{Risk: level, Count: riskCount[level.Level]})
	}
	out.ScoreDistribution = scores

	// Worst devices first: highest risk, then lowest score.
	sort.SliceStable(out.Devices, func(i, j int) bool {
		a, b := out.Devices[i], out.Devices[j]
		if a.Risk.Level != b.Risk.Level {
			return a.Risk.Level > b.Risk.Level
		}
		return a.Score < b.Score
	})
	return out
}

// scoreBucket returns the index into scoreBuckets for score.
func scoreBucket(score int) int {
	switch {
	case score < 50:
		return 0
	case score < 75:
		return 1
	case score < 90:
		return 2
	default:
		return 3
	}
}
