package analysis

import (
	"math"

	"immopro/server/internal/models"
)

// riskRule is one row of the risk table. check reports whether the rule fires
// and, if so, with which level and impact.
type riskRule struct {
	id          string
	name        string
	description string
	mitigation  string
	check       func(p models.PropertyRecord, roi float64) (models.RiskLevel, float64, bool)
}

// Rules are evaluated, and factors reported, in this order.
var riskRules = []riskRule{
	{
		id:          "structural",
		name:        "Structural risk",
		description: "Degraded structure that may cause cost overruns",
		mitigation:  "Commission a full structural survey before purchase",
		check: func(p models.PropertyRecord, _ float64) (models.RiskLevel, float64, bool) {
			level, ok := whenBelow(p.StructuralCondition, 6, 4)
			return level, 10 - p.StructuralCondition, ok
		},
	},
	{
		id:          "technical",
		name:        "Technical risk",
		description: "Outdated installations requiring heavy works",
		mitigation:  "Keep a 20% safety margin on the works budget",
		check: func(p models.PropertyRecord, _ float64) (models.RiskLevel, float64, bool) {
			level, ok := whenBelow(p.TechnicalCondition, 6, 4)
			return level, 10 - p.TechnicalCondition, ok
		},
	},
	{
		id:          "market",
		name:        "Slow market",
		description: "Long selling times in the area",
		mitigation:  "Negotiate the purchase price to offset market risk",
		check: func(p models.PropertyRecord, _ float64) (models.RiskLevel, float64, bool) {
			level, ok := whenAbove(p.SellingTime, 8, 12)
			return level, math.Min(8, p.SellingTime/2), ok
		},
	},
	{
		id:          "profitability",
		name:        "Low profitability",
		description: "Profit margin too thin for the risks taken",
		mitigation:  "Review the strategy or the price positioning",
		check: func(_ models.PropertyRecord, roi float64) (models.RiskLevel, float64, bool) {
			level, ok := whenBelow(roi, 15, 5)
			return level, math.Max(1, 10-roi/2), ok
		},
	},
	{
		id:          "timing",
		name:        "Project duration",
		description: "Long execution delay increasing exposure",
		mitigation:  "Stage the investments and arrange bridge financing",
		check: func(p models.PropertyRecord, _ float64) (models.RiskLevel, float64, bool) {
			level, ok := whenAbove(p.TimeToSell, 12, 18)
			return level, math.Min(8, p.TimeToSell/3), ok
		},
	},
	{
		id:          "energy",
		name:        "Energy regulation",
		description: "Poor energy class with upcoming regulatory constraints",
		mitigation:  "Include an energy renovation in the works plan",
		check: func(p models.PropertyRecord, _ float64) (models.RiskLevel, float64, bool) {
			if p.EnergyRating == models.EnergyF || p.EnergyRating == models.EnergyG {
				return models.RiskHigh, 7, true
			}
			return "", 0, false
		},
	},
}

func whenBelow(v, trigger, high float64) (models.RiskLevel, bool) {
	if v >= trigger {
		return "", false
	}
	if v < high {
		return models.RiskHigh, true
	}
	return models.RiskMedium, true
}

func whenAbove(v, trigger, high float64) (models.RiskLevel, bool) {
	if v <= trigger {
		return "", false
	}
	if v > high {
		return models.RiskHigh, true
	}
	return models.RiskMedium, true
}

// Mitigation returns the fixed advice sentence for a risk factor id
func Mitigation(factorID string) (string, bool) {
	for _, rule := range riskRules {
		if rule.id == factorID {
			return rule.mitigation, true
		}
	}
	return "", false
}

// AssessRisk runs every risk rule against the record and the ROI computed by
// CalculateFinancials.
func AssessRisk(p models.PropertyRecord, roi float64) models.RiskReport {
	report := models.RiskReport{
		Factors:     []models.RiskFactor{},
		GlobalLevel: models.RiskLow,
		Mitigations: []string{},
	}

	for _, rule := range riskRules {
		level, impact, ok := rule.check(p, roi)
		if !ok {
			continue
		}
		report.Factors = append(report.Factors, models.RiskFactor{
			ID:          rule.id,
			Name:        rule.name,
			Level:       level,
			Impact:      impact,
			Description: rule.description,
		})
		report.Mitigations = append(report.Mitigations, rule.mitigation)
	}

	report.GlobalLevel = globalRiskLevel(report.Factors)
	return report
}

func globalRiskLevel(factors []models.RiskFactor) models.RiskLevel {
	if len(factors) == 0 {
		return models.RiskLow
	}
	for _, f := range factors {
		if f.Level == models.RiskHigh {
			return models.RiskHigh
		}
	}
	return models.RiskMedium
}
