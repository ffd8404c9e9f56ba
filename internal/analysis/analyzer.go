// Package analysis holds the pure investment calculations: financial summary,
// scores, strategy comparison and risk assessment. Nothing here keeps state.
package analysis

import "immopro/server/internal/models"

// Analyze runs the full recompute pipeline on a record
func Analyze(p models.PropertyRecord) models.Report {
	p = p.Normalized()

	financials := CalculateFinancials(p)
	scores := CalculateScores(p, financials)
	ranked := RankStrategies(EvaluateStrategies(p))

	report := models.Report{
		Property:       p,
		Financials:     financials,
		Scores:         scores,
		Recommendation: Recommend(scores.Global),
		Strategies:     ranked,
		Risk:           AssessRisk(p, financials.ROI),
	}
	if best, ok := RecommendedStrategy(ranked); ok {
		report.RecommendedStrategy = &best
	}
	return report
}
