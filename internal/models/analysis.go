package models

// FinancialSummary holds the headline figures of an investment.
// ProfitMargin and ROI are computed by the same formula.
type FinancialSummary struct {
	TotalInvestment float64 `json:"total_investment"`
	GrossProfit     float64 `json:"gross_profit"`
	ProfitMargin    float64 `json:"profit_margin"`
	ROI             float64 `json:"roi"`
}

// ScoreSet holds the four 0-10 sub-scores and their rounded mean
type ScoreSet struct {
	Financial float64 `json:"financial"`
	Technical float64 `json:"technical"`
	Market    float64 `json:"market"`
	Risk      float64 `json:"risk"`
	Global    float64 `json:"global"`
}

// Recommendation is the purchase verdict derived from the global score
type Recommendation string

const (
	Recommended    Recommendation = "RECOMMENDED"
	Conditional    Recommendation = "CONDITIONAL"
	NotRecommended Recommendation = "NOT RECOMMENDED"
)

// StrategyRisk is the fixed risk label of a strategy template
type StrategyRisk string

const (
	StrategyRiskLow    StrategyRisk = "Low"
	StrategyRiskMedium StrategyRisk = "Medium"
	StrategyRiskHigh   StrategyRisk = "High"
)

// Strategy is one evaluated investment approach
type Strategy struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Description    string       `json:"description"`
	Investment     float64      `json:"investment"`
	Profit         float64      `json:"profit"`
	ROI            float64      `json:"roi"`
	DurationMonths float64      `json:"duration_months"`
	RiskLevel      StrategyRisk `json:"risk_level"`
	Feasibility    int          `json:"feasibility"`
}

// RiskLevel grades a risk factor or a whole report
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// RiskFactor is a qualitative risk triggered by a threshold rule
type RiskFactor struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Level       RiskLevel `json:"level"`
	Impact      float64   `json:"impact"`
	Description string    `json:"description"`
}

// RiskReport lists triggered factors in rule order together with the
// mitigation advice for each of them.
type RiskReport struct {
	Factors     []RiskFactor `json:"factors"`
	GlobalLevel RiskLevel    `json:"global_level"`
	Mitigations []string     `json:"mitigations"`
}

// Report is the full output of one recompute
type Report struct {
	Property            PropertyRecord   `json:"property"`
	Financials          FinancialSummary `json:"financials"`
	Scores              ScoreSet         `json:"scores"`
	Recommendation      Recommendation   `json:"recommendation"`
	Strategies          []Strategy       `json:"strategies"`
	RecommendedStrategy *Strategy        `json:"recommended_strategy"`
	Risk                RiskReport       `json:"risk"`
}
