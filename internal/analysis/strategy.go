package analysis

import (
	"sort"

	"immopro/server/internal/models"
)

// StrategyNotaryRate is the notary fee assumption of the strategy table. It is
// applied to the price and ignores the record's own NotaryFees.
const StrategyNotaryRate = 0.08

const defaultRenovationDuration = 6

// strategyTemplate describes one strategy as data:
// investment = price*priceFactor + notary + renovationCosts*renovationFactor + flatCost
// profit     = resalePrice*resaleMultiplier - investment
type strategyTemplate struct {
	id          string
	name        string
	description string

	priceFactor      float64
	renovationFactor float64
	flatCost         float64
	resaleMultiplier float64

	durationMonths float64
	// durationFromDelay uses the record's TimeToSell, falling back to the default
	durationFromDelay bool

	risk        models.StrategyRisk
	feasibility int
}

var strategyTemplates = []strategyTemplate{
	{
		id: "simple", name: "Simple Buy-Resell", description: "Refresh and home staging only",
		priceFactor: 1, flatCost: 5000, resaleMultiplier: 1,
		durationMonths: 3, risk: models.StrategyRiskLow, feasibility: 8,
	},
	{
		id: "renovation", name: "Standard Renovation", description: "Finishing works and modernisation",
		priceFactor: 1, renovationFactor: 1, resaleMultiplier: 1,
		durationFromDelay: true, risk: models.StrategyRiskMedium, feasibility: 7,
	},
	{
		id: "heavy", name: "Heavy Rehabilitation", description: "Complete transformation of structure and networks",
		priceFactor: 1, renovationFactor: 1.8, resaleMultiplier: 1.2,
		durationMonths: 12, risk: models.StrategyRiskHigh, feasibility: 5,
	},
	{
		id: "division", name: "Division into Lots", description: "Split the property into several units",
		priceFactor: 1, renovationFactor: 1.3, resaleMultiplier: 1.4,
		durationMonths: 8, risk: models.StrategyRiskMedium, feasibility: 6,
	},
	{
		id: "changeUse", name: "Change of Use", description: "Retail to housing, office to residential",
		priceFactor: 1, renovationFactor: 1.5, resaleMultiplier: 1.3,
		durationMonths: 10, risk: models.StrategyRiskHigh, feasibility: 4,
	},
	{
		id: "extension", name: "Raising or Extension", description: "Creation of additional floor area",
		priceFactor: 1, renovationFactor: 2, resaleMultiplier: 1.5,
		durationMonths: 14, risk: models.StrategyRiskHigh, feasibility: 3,
	},
	{
		id: "furnished", name: "Furnished Upgrade", description: "High-end furnishing and decoration",
		priceFactor: 1, renovationFactor: 1, flatCost: 15000, resaleMultiplier: 1.1,
		durationMonths: 4, risk: models.StrategyRiskMedium, feasibility: 8,
	},
	{
		id: "occupied", name: "Occupied Property", description: "Discounted purchase, vacate, then resell vacant",
		priceFactor: 0.85, flatCost: 10000, resaleMultiplier: 1,
		durationMonths: 18, risk: models.StrategyRiskHigh, feasibility: 6,
	},
}

// StrategyIDs lists the strategy identifiers in declaration order
func StrategyIDs() []string {
	ids := make([]string, len(strategyTemplates))
	for i, t := range strategyTemplates {
		ids[i] = t.id
	}
	return ids
}

func (t strategyTemplate) evaluate(p models.PropertyRecord) models.Strategy {
	notary := p.Price * StrategyNotaryRate
	investment := p.Price*t.priceFactor + notary + (p.RenovationCosts*t.renovationFactor + t.flatCost)
	profit := p.ResalePrice*t.resaleMultiplier - investment

	var roi float64
	if investment > 0 {
		roi = profit / investment * 100
	}

	duration := t.durationMonths
	if t.durationFromDelay {
		duration = p.TimeToSell
		if duration == 0 {
			duration = defaultRenovationDuration
		}
	}

	return models.Strategy{
		ID:             t.id,
		Name:           t.name,
		Description:    t.description,
		Investment:     investment,
		Profit:         profit,
		ROI:            roi,
		DurationMonths: duration,
		RiskLevel:      t.risk,
		Feasibility:    t.feasibility,
	}
}

// EvaluateStrategies evaluates every template against the record, in
// declaration order.
func EvaluateStrategies(p models.PropertyRecord) []models.Strategy {
	strategies := make([]models.Strategy, len(strategyTemplates))
	for i, t := range strategyTemplates {
		strategies[i] = t.evaluate(p)
	}
	return strategies
}

// RankStrategies returns a copy sorted by descending ROI. Equal ROIs keep
// their input order.
func RankStrategies(strategies []models.Strategy) []models.Strategy {
	ranked := make([]models.Strategy, len(strategies))
	copy(ranked, strategies)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].ROI > ranked[j].ROI
	})
	return ranked
}

// RecommendedStrategy returns the head of a ranked list when it is profitable
func RecommendedStrategy(ranked []models.Strategy) (models.Strategy, bool) {
	if len(ranked) == 0 || ranked[0].ROI <= 0 {
		return models.Strategy{}, false
	}
	return ranked[0], true
}
