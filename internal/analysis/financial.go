package analysis

import "immopro/server/internal/models"

// CalculateFinancials derives total investment, gross profit, margin and ROI.
// It uses the user-entered notary fees.
func CalculateFinancials(p models.PropertyRecord) models.FinancialSummary {
	totalInvestment := p.Price + p.NotaryFees + p.RenovationCosts
	grossProfit := p.ResalePrice - totalInvestment

	var roi float64
	if totalInvestment > 0 {
		roi = grossProfit / totalInvestment * 100
	}

	return models.FinancialSummary{
		TotalInvestment: totalInvestment,
		GrossProfit:     grossProfit,
		ProfitMargin:    roi,
		ROI:             roi,
	}
}
