package normalizer

import "github.com/markdave123-py/NexSupply/internal/models"

// NormalizeRiskScore maps a model-reported risk score onto 0..100. Values in
// [0,1] are fractions, values in (1,100] are already percentages and anything
// outside is clamped.
func NormalizeRiskScore(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v <= 1:
		return v * 100
	case v <= 100:
		return v
	default:
		return 100
	}
}

// ExtractScores pulls the headline risk score and total landed cost that get
// stored on the project row. Either may be nil when the model omitted it.
func ExtractScores(res *models.AnalysisResult) (risk *float64, landedCost *float64) {
	if res == nil {
		return nil, nil
	}

	for _, key := range []string{"overall_risk_score", "risk_score", "initial_risk_score"} {
		if f, ok := toFloat(res.RiskAnalysis[key]); ok && f != 0 {
			r := NormalizeRiskScore(f)
			risk = &r
			break
		}
	}

	if res.LandedCost.TotalLandedCostUSD != 0 {
		c := res.LandedCost.TotalLandedCostUSD
		landedCost = &c
	}
	return risk, landedCost
}

// WeeksRange converts a day total into the low/high week estimate shown on
// the dashboard. The high bound adds a two-week buffer.
func WeeksRange(days int) (low, high int) {
	return days / 7, (days + 14) / 7
}
