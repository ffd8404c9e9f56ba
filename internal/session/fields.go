package session

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"immopro/server/internal/listing"
	"immopro/server/internal/models"
)

type fieldSetter func(p *models.PropertyRecord, value interface{}) error

// Settable fields by their JSON name. price_per_sqm is derived and absent.
var fieldSetters = map[string]fieldSetter{
	"title":       textField(func(p *models.PropertyRecord) *string { return &p.Title }),
	"location":    textField(func(p *models.PropertyRecord) *string { return &p.Location }),
	"description": textField(func(p *models.PropertyRecord) *string { return &p.Description }),

	"price":            amountField(func(p *models.PropertyRecord) *float64 { return &p.Price }),
	"surface":          amountField(func(p *models.PropertyRecord) *float64 { return &p.Surface }),
	"notary_fees":      amountField(func(p *models.PropertyRecord) *float64 { return &p.NotaryFees }),
	"renovation_costs": amountField(func(p *models.PropertyRecord) *float64 { return &p.RenovationCosts }),
	"resale_price":     amountField(func(p *models.PropertyRecord) *float64 { return &p.ResalePrice }),
	"time_to_sell":     amountField(func(p *models.PropertyRecord) *float64 { return &p.TimeToSell }),
	"selling_time":     amountField(func(p *models.PropertyRecord) *float64 { return &p.SellingTime }),

	// a declining market is a legitimate input
	"market_trend": func(p *models.PropertyRecord, value interface{}) error {
		v, err := toFloat(value)
		if err != nil {
			return err
		}
		p.MarketTrend = v
		return nil
	},

	"structural_condition": conditionField(func(p *models.PropertyRecord) *float64 { return &p.StructuralCondition }),
	"technical_condition":  conditionField(func(p *models.PropertyRecord) *float64 { return &p.TechnicalCondition }),

	"energy_rating": func(p *models.PropertyRecord, value interface{}) error {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: energy_rating must be a string", ErrInvalidValue)
		}
		rating, ok := models.ParseEnergyRating(s)
		if !ok {
			return fmt.Errorf("%w: unknown energy rating %q", ErrInvalidValue, s)
		}
		p.EnergyRating = rating
		return nil
	},
}

// SetField writes value into the named field of p. The record is left
// untouched when an error is returned.
func SetField(p *models.PropertyRecord, field string, value interface{}) error {
	setter, ok := fieldSetters[field]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	updated := *p
	if err := setter(&updated, value); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	*p = updated
	return nil
}

// ValidateRecord checks a whole record against the same rules as SetField.
// The returned copy has its conditions snapped to half points and its energy
// rating in canonical form.
func ValidateRecord(p models.PropertyRecord) (models.PropertyRecord, error) {
	values := map[string]interface{}{
		"title":                p.Title,
		"location":             p.Location,
		"description":          p.Description,
		"price":                p.Price,
		"surface":              p.Surface,
		"notary_fees":          p.NotaryFees,
		"renovation_costs":     p.RenovationCosts,
		"resale_price":         p.ResalePrice,
		"time_to_sell":         p.TimeToSell,
		"selling_time":         p.SellingTime,
		"market_trend":         p.MarketTrend,
		"structural_condition": p.StructuralCondition,
		"technical_condition":  p.TechnicalCondition,
		"energy_rating":        string(p.EnergyRating),
	}

	for _, field := range Fields() {
		if err := SetField(&p, field, values[field]); err != nil {
			return p, err
		}
	}
	return p, nil
}

// Fields lists the settable field names in alphabetical order
func Fields() []string {
	names := make([]string, 0, len(fieldSetters))
	for name := range fieldSetters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func textField(get func(*models.PropertyRecord) *string) fieldSetter {
	return func(p *models.PropertyRecord, value interface{}) error {
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: expected a string", ErrInvalidValue)
		}
		*get(p) = s
		return nil
	}
}

func amountField(get func(*models.PropertyRecord) *float64) fieldSetter {
	return func(p *models.PropertyRecord, value interface{}) error {
		v, err := toFloat(value)
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("%w: must not be negative", ErrInvalidValue)
		}
		*get(p) = v
		return nil
	}
}

func conditionField(get func(*models.PropertyRecord) *float64) fieldSetter {
	return func(p *models.PropertyRecord, value interface{}) error {
		v, err := toFloat(value)
		if err != nil {
			return err
		}
		if v < 0 || v > 10 {
			return fmt.Errorf("%w: condition must be between 0 and 10", ErrInvalidValue)
		}
		*get(p) = listing.SnapCondition(v)
		return nil
	}
}

// toFloat accepts JSON numbers and numeric strings. An empty string reads as 0
// the way a cleared form input does.
func toFloat(value interface{}) (float64, error) {
	var v float64
	switch n := value.(type) {
	case float64:
		v = n
	case float32:
		v = float64(n)
	case int:
		v = float64(n)
	case int64:
		v = float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, n.String())
		}
		v = f
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalidValue, n)
		}
		v = f
	default:
		return 0, fmt.Errorf("%w: expected a number, got %T", ErrInvalidValue, value)
	}

	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: number must be finite", ErrInvalidValue)
	}
	return v, nil
}
