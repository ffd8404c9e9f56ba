package models

import "strings"

// EnergyRating is the energy performance class of a property, A (best) to G (worst)
type EnergyRating string

const (
	EnergyA EnergyRating = "A"
	EnergyB EnergyRating = "B"
	EnergyC EnergyRating = "C"
	EnergyD EnergyRating = "D"
	EnergyE EnergyRating = "E"
	EnergyF EnergyRating = "F"
	EnergyG EnergyRating = "G"

	DefaultEnergyRating = EnergyD
)

// Valid reports whether r is one of the seven known classes
func (r EnergyRating) Valid() bool {
	switch r {
	case EnergyA, EnergyB, EnergyC, EnergyD, EnergyE, EnergyF, EnergyG:
		return true
	default:
		return false
	}
}

// ParseEnergyRating parses a rating case-insensitively. Unknown values yield the
// default rating and ok=false.
func ParseEnergyRating(s string) (EnergyRating, bool) {
	r := EnergyRating(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return DefaultEnergyRating, false
	}
	return r, true
}

const (
	DefaultCondition   = 5.0
	DefaultSellingTime = 6.0
)

// PropertyRecord holds the user-editable inputs of an analysis
type PropertyRecord struct {
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`

	Price   float64 `json:"price"`
	Surface float64 `json:"surface"`

	NotaryFees      float64 `json:"notary_fees"`
	RenovationCosts float64 `json:"renovation_costs"`
	ResalePrice     float64 `json:"resale_price"`

	// TimeToSell is the expected project delay in months
	TimeToSell float64 `json:"time_to_sell"`

	StructuralCondition float64      `json:"structural_condition"`
	TechnicalCondition  float64      `json:"technical_condition"`
	EnergyRating        EnergyRating `json:"energy_rating"`

	// PricePerSqm is derived from Price and Surface, see Normalized
	PricePerSqm float64 `json:"price_per_sqm"`
	MarketTrend float64 `json:"market_trend"`

	// SellingTime is the average time on market of comparable listings, in months
	SellingTime float64 `json:"selling_time"`
}

// NewPropertyRecord returns a record with every default applied
func NewPropertyRecord() PropertyRecord {
	return PropertyRecord{
		StructuralCondition: DefaultCondition,
		TechnicalCondition:  DefaultCondition,
		EnergyRating:        DefaultEnergyRating,
		SellingTime:         DefaultSellingTime,
	}
}

// Normalized returns a copy with derived fields recomputed and the energy
// rating forced into the known set.
func (p PropertyRecord) Normalized() PropertyRecord {
	if !p.EnergyRating.Valid() {
		p.EnergyRating, _ = ParseEnergyRating(string(p.EnergyRating))
	}
	p.PricePerSqm = 0
	if p.Surface > 0 {
		p.PricePerSqm = p.Price / p.Surface
	}
	return p
}
