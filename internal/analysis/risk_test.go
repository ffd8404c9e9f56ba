package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"immopro/server/internal/models"
)

// nominalProperty triggers no risk rule on its own
func nominalProperty() models.PropertyRecord {
	return models.PropertyRecord{
		StructuralCondition: 8,
		TechnicalCondition:  8,
		SellingTime:         6,
		TimeToSell:          6,
		EnergyRating:        models.EnergyC,
	}
}

func TestAssessRisk_Nominal(t *testing.T) {
	report := AssessRisk(nominalProperty(), 20)

	assert.Empty(t, report.Factors)
	assert.NotNil(t, report.Factors)
	assert.Empty(t, report.Mitigations)
	assert.Equal(t, models.RiskLow, report.GlobalLevel)
}

func TestAssessRisk_StructuralOnly(t *testing.T) {
	p := nominalProperty()
	p.StructuralCondition = 3

	report := AssessRisk(p, 20)

	require.Len(t, report.Factors, 1)
	factor := report.Factors[0]
	assert.Equal(t, "structural", factor.ID)
	assert.Equal(t, models.RiskHigh, factor.Level)
	assert.Equal(t, 7.0, factor.Impact)
	assert.Equal(t, models.RiskHigh, report.GlobalLevel)
	assert.Equal(t, []string{"Commission a full structural survey before purchase"}, report.Mitigations)
}

func TestAssessRisk_Rules(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(p *models.PropertyRecord)
		roi    float64
		id     string
		level  models.RiskLevel
		impact float64
	}{
		{name: "Structural medium", mutate: func(p *models.PropertyRecord) { p.StructuralCondition = 5.5 }, roi: 20, id: "structural", level: models.RiskMedium, impact: 4.5},
		{name: "Structural boundary high", mutate: func(p *models.PropertyRecord) { p.StructuralCondition = 3.5 }, roi: 20, id: "structural", level: models.RiskHigh, impact: 6.5},
		{name: "Technical medium", mutate: func(p *models.PropertyRecord) { p.TechnicalCondition = 4 }, roi: 20, id: "technical", level: models.RiskMedium, impact: 6},
		{name: "Technical high", mutate: func(p *models.PropertyRecord) { p.TechnicalCondition = 0 }, roi: 20, id: "technical", level: models.RiskHigh, impact: 10},
		{name: "Market medium", mutate: func(p *models.PropertyRecord) { p.SellingTime = 9 }, roi: 20, id: "market", level: models.RiskMedium, impact: 4.5},
		{name: "Market high", mutate: func(p *models.PropertyRecord) { p.SellingTime = 13 }, roi: 20, id: "market", level: models.RiskHigh, impact: 6.5},
		{name: "Market impact capped", mutate: func(p *models.PropertyRecord) { p.SellingTime = 30 }, roi: 20, id: "market", level: models.RiskHigh, impact: 8},
		{name: "Profitability medium", roi: 10, id: "profitability", level: models.RiskMedium, impact: 5},
		{name: "Profitability high", roi: 2, id: "profitability", level: models.RiskHigh, impact: 9},
		{name: "Profitability just below threshold", roi: 14, id: "profitability", level: models.RiskMedium, impact: 3},
		{name: "Profitability negative ROI", roi: -40, id: "profitability", level: models.RiskHigh, impact: 30},
		{name: "Timing medium", mutate: func(p *models.PropertyRecord) { p.TimeToSell = 15 }, roi: 20, id: "timing", level: models.RiskMedium, impact: 5},
		{name: "Timing high", mutate: func(p *models.PropertyRecord) { p.TimeToSell = 30 }, roi: 20, id: "timing", level: models.RiskHigh, impact: 8},
		{name: "Energy F", mutate: func(p *models.PropertyRecord) { p.EnergyRating = models.EnergyF }, roi: 20, id: "energy", level: models.RiskHigh, impact: 7},
		{name: "Energy G", mutate: func(p *models.PropertyRecord) { p.EnergyRating = models.EnergyG }, roi: 20, id: "energy", level: models.RiskHigh, impact: 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := nominalProperty()
			if tt.mutate != nil {
				tt.mutate(&p)
			}

			report := AssessRisk(p, tt.roi)

			require.Len(t, report.Factors, 1)
			assert.Equal(t, tt.id, report.Factors[0].ID)
			assert.Equal(t, tt.level, report.Factors[0].Level)
			assert.InDelta(t, tt.impact, report.Factors[0].Impact, 1e-9)
			assert.Equal(t, tt.level, report.GlobalLevel)

			mitigation, ok := Mitigation(tt.id)
			require.True(t, ok)
			assert.Equal(t, []string{mitigation}, report.Mitigations)
		})
	}
}

func TestAssessRisk_Thresholds(t *testing.T) {
	p := nominalProperty()
	p.StructuralCondition = 6
	p.TechnicalCondition = 6
	p.SellingTime = 8
	p.TimeToSell = 12
	p.EnergyRating = models.EnergyE

	report := AssessRisk(p, 15)

	assert.Empty(t, report.Factors, "rules are strict inequalities")
}

func TestAssessRisk_OrderAndGlobalLevel(t *testing.T) {
	p := models.PropertyRecord{
		StructuralCondition: 5,
		TechnicalCondition:  5,
		SellingTime:         10,
		TimeToSell:          14,
		EnergyRating:        models.EnergyD,
	}

	report := AssessRisk(p, 10)

	ids := make([]string, len(report.Factors))
	for i, f := range report.Factors {
		ids[i] = f.ID
		assert.Equal(t, models.RiskMedium, f.Level)
	}
	assert.Equal(t, []string{"structural", "technical", "market", "profitability", "timing"}, ids)
	assert.Equal(t, models.RiskMedium, report.GlobalLevel)
	assert.Len(t, report.Mitigations, 5)

	p.EnergyRating = models.EnergyG
	report = AssessRisk(p, 10)
	require.Len(t, report.Factors, 6)
	assert.Equal(t, "energy", report.Factors[5].ID)
	assert.Equal(t, models.RiskHigh, report.GlobalLevel)
}

func TestMitigation(t *testing.T) {
	for _, id := range []string{"structural", "technical", "market", "profitability", "timing", "energy"} {
		sentence, ok := Mitigation(id)
		assert.True(t, ok, id)
		assert.NotEmpty(t, sentence, id)
	}

	_, ok := Mitigation("unknown")
	assert.False(t, ok)
}
