package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"immopro/server/internal/models"
)

func TestCalculateFinancials(t *testing.T) {
	tests := []struct {
		name            string
		property        models.PropertyRecord
		totalInvestment float64
		grossProfit     float64
		roi             float64
	}{
		{
			name:     "Empty record",
			property: models.NewPropertyRecord(),
		},
		{
			name: "Profitable flip",
			property: models.PropertyRecord{
				Price:           200000,
				NotaryFees:      16000,
				RenovationCosts: 34000,
				ResalePrice:     300000,
			},
			totalInvestment: 250000,
			grossProfit:     50000,
			roi:             20,
		},
		{
			name: "Loss making",
			property: models.PropertyRecord{
				Price:       100000,
				ResalePrice: 80000,
			},
			totalInvestment: 100000,
			grossProfit:     -20000,
			roi:             -20,
		},
		{
			name: "Resale without any investment",
			property: models.PropertyRecord{
				ResalePrice: 50000,
			},
			grossProfit: 50000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CalculateFinancials(tt.property)

			assert.InDelta(t, tt.totalInvestment, result.TotalInvestment, 1e-9)
			assert.InDelta(t, tt.grossProfit, result.GrossProfit, 1e-9)
			assert.InDelta(t, tt.roi, result.ROI, 1e-9)
		})
	}
}

func TestCalculateFinancials_MarginEqualsROI(t *testing.T) {
	records := []models.PropertyRecord{
		{},
		{Price: 250000, NotaryFees: 20000, RenovationCosts: 50000, ResalePrice: 380000},
		{Price: 90000, ResalePrice: 10},
		{Price: 1, NotaryFees: 0.5, RenovationCosts: 0.25, ResalePrice: 3},
	}

	for _, p := range records {
		result := CalculateFinancials(p)
		assert.Equal(t, result.ROI, result.ProfitMargin)
	}
}

func TestCalculateFinancials_IgnoresStrategyNotaryRate(t *testing.T) {
	p := models.PropertyRecord{Price: 100000, NotaryFees: 0, ResalePrice: 110000}

	result := CalculateFinancials(p)

	assert.Equal(t, 100000.0, result.TotalInvestment)
	assert.InDelta(t, 10, result.ROI, 1e-9)
}
