package analysis

import (
	"math"

	"immopro/server/internal/models"
)

const (
	recommendedThreshold = 7.5
	conditionalThreshold = 5.0
)

// FinancialScore maps ROI onto 0-10, a 50% ROI being a perfect score
func FinancialScore(roi float64) float64 {
	return clamp(roi/5, 0, 10)
}

// GlobalScore is the plain mean of the four sub-scores rounded to one decimal
func GlobalScore(financial, technical, market, risk float64) float64 {
	return round1((financial + technical + market + risk) / 4)
}

// CalculateScores derives the score set of a record. The global score is
// computed from the unrounded financial score.
func CalculateScores(p models.PropertyRecord, fin models.FinancialSummary) models.ScoreSet {
	financial := FinancialScore(fin.ROI)
	technical := (p.StructuralCondition + p.TechnicalCondition) / 2
	market := clamp(10-p.SellingTime/2, 0, 10)
	risk := clamp(10-(p.TimeToSell-6)/2, 0, 10)

	return models.ScoreSet{
		Financial: round1(financial),
		Technical: technical,
		Market:    market,
		Risk:      risk,
		Global:    GlobalScore(financial, technical, market, risk),
	}
}

// Recommend turns a global score into a purchase verdict
func Recommend(global float64) models.Recommendation {
	switch {
	case global >= recommendedThreshold:
		return models.Recommended
	case global >= conditionalThreshold:
		return models.Conditional
	default:
		return models.NotRecommended
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// round1 rounds half up to one decimal
func round1(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
