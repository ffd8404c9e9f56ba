package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"immopro/server/internal/models"
)

func TestFinancialScore(t *testing.T) {
	tests := []struct {
		name     string
		roi      float64
		expected float64
	}{
		{name: "Clamped high", roi: 250, expected: 10},
		{name: "Clamped low", roi: -100, expected: 0},
		{name: "Fifty percent is perfect", roi: 50, expected: 10},
		{name: "Midpoint", roi: 25, expected: 5},
		{name: "Zero", roi: 0, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, FinancialScore(tt.roi), 1e-9)
		})
	}
}

func TestFinancialScore_Monotonic(t *testing.T) {
	previous := FinancialScore(-200)
	for roi := -200.0; roi <= 300; roi += 0.5 {
		score := FinancialScore(roi)
		assert.GreaterOrEqual(t, score, previous, "roi %v", roi)
		assert.GreaterOrEqual(t, score, 0.0)
		assert.LessOrEqual(t, score, 10.0)
		previous = score
	}
}

func TestGlobalScore(t *testing.T) {
	assert.Equal(t, 6.5, GlobalScore(5, 6, 7, 8))
	assert.Equal(t, 10.0, GlobalScore(10, 10, 10, 10))
	assert.Equal(t, 0.0, GlobalScore(0, 0, 0, 0))
	// (1.25 + 0 + 0 + 0) / 4 = 0.3125
	assert.Equal(t, 0.3, GlobalScore(1.25, 0, 0, 0))
	// 0.25 rounds half up
	assert.Equal(t, 0.3, GlobalScore(1, 0, 0, 0))
}

func TestRecommend(t *testing.T) {
	tests := []struct {
		global   float64
		expected models.Recommendation
	}{
		{global: 10, expected: models.Recommended},
		{global: 7.5, expected: models.Recommended},
		{global: 7.49, expected: models.Conditional},
		{global: 5, expected: models.Conditional},
		{global: 4.99, expected: models.NotRecommended},
		{global: 0, expected: models.NotRecommended},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, Recommend(tt.global), "global %v", tt.global)
	}
}

func TestCalculateScores(t *testing.T) {
	tests := []struct {
		name     string
		property models.PropertyRecord
		roi      float64
		expected models.ScoreSet
	}{
		{
			name:     "Defaults",
			property: models.NewPropertyRecord(),
			roi:      0,
			expected: models.ScoreSet{Financial: 0, Technical: 5, Market: 7, Risk: 10, Global: 5.5},
		},
		{
			name: "Long delays",
			property: models.PropertyRecord{
				StructuralCondition: 8,
				TechnicalCondition:  7,
				SellingTime:         24,
				TimeToSell:          30,
			},
			roi:      50,
			expected: models.ScoreSet{Financial: 10, Technical: 7.5, Market: 0, Risk: 0, Global: 4.4},
		},
		{
			name: "Financial rounded but global uses raw score",
			property: models.PropertyRecord{
				StructuralCondition: 6,
				TechnicalCondition:  6,
				SellingTime:         6,
				TimeToSell:          6,
			},
			roi: 33.33,
			// raw financial 6.666, (6.666+6+7+10)/4 = 7.4165
			expected: models.ScoreSet{Financial: 6.7, Technical: 6, Market: 7, Risk: 10, Global: 7.4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores := CalculateScores(tt.property, models.FinancialSummary{ROI: tt.roi})

			assert.InDelta(t, tt.expected.Financial, scores.Financial, 1e-9)
			assert.InDelta(t, tt.expected.Technical, scores.Technical, 1e-9)
			assert.InDelta(t, tt.expected.Market, scores.Market, 1e-9)
			assert.InDelta(t, tt.expected.Risk, scores.Risk, 1e-9)
			assert.InDelta(t, tt.expected.Global, scores.Global, 1e-9)
		})
	}
}
