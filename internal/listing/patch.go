// Package listing merges the best-effort result of a listing analysis into a
// property record. Fetching and parsing listings happens elsewhere; this
// package only has to survive whatever partial data comes back.
package listing

import (
	"html"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"

	"immopro/server/internal/models"
)

const maxDescriptionRunes = 500

var strictPolicy = bluemonday.StrictPolicy()

// Patch is a partial property record. Nil fields are left untouched when the
// patch is applied.
type Patch struct {
	Title       *string `json:"title,omitempty"`
	Location    *string `json:"location,omitempty"`
	Description *string `json:"description,omitempty"`

	Price   *float64 `json:"price,omitempty"`
	Surface *float64 `json:"surface,omitempty"`

	EstimatedRenovationCosts *float64 `json:"estimated_renovation_costs,omitempty"`
	EstimatedResalePrice     *float64 `json:"estimated_resale_price,omitempty"`

	StructuralCondition *float64 `json:"structural_condition,omitempty"`
	TechnicalCondition  *float64 `json:"technical_condition,omitempty"`
	EnergyRating        *string  `json:"energy_rating,omitempty"`
}

// Sanitize returns a cleaned copy of the patch. Markup is stripped from text,
// unusable numbers and ratings are dropped and conditions are clamped to the
// 0-10 scale in half steps.
func (p Patch) Sanitize() Patch {
	clean := Patch{
		Title:                    cleanText(p.Title),
		Location:                 cleanText(p.Location),
		Description:              cleanText(p.Description),
		Price:                    cleanAmount(p.Price),
		Surface:                  cleanAmount(p.Surface),
		EstimatedRenovationCosts: cleanAmount(p.EstimatedRenovationCosts),
		EstimatedResalePrice:     cleanAmount(p.EstimatedResalePrice),
		StructuralCondition:      cleanCondition(p.StructuralCondition),
		TechnicalCondition:       cleanCondition(p.TechnicalCondition),
	}

	if clean.Description != nil {
		truncated := truncate(*clean.Description, maxDescriptionRunes)
		clean.Description = &truncated
	}

	if p.EnergyRating != nil {
		if rating, ok := models.ParseEnergyRating(*p.EnergyRating); ok {
			s := string(rating)
			clean.EnergyRating = &s
		}
	}

	return clean
}

// IsEmpty reports whether the patch carries no field at all
func (p Patch) IsEmpty() bool {
	return p == Patch{}
}

// Apply writes the sanitized fields of patch over record. A nil patch leaves
// the record unchanged.
func Apply(record models.PropertyRecord, patch *Patch) models.PropertyRecord {
	if patch == nil {
		return record.Normalized()
	}
	clean := patch.Sanitize()

	setString(&record.Title, clean.Title)
	setString(&record.Location, clean.Location)
	setString(&record.Description, clean.Description)
	setFloat(&record.Price, clean.Price)
	setFloat(&record.Surface, clean.Surface)
	setFloat(&record.RenovationCosts, clean.EstimatedRenovationCosts)
	setFloat(&record.ResalePrice, clean.EstimatedResalePrice)
	setFloat(&record.StructuralCondition, clean.StructuralCondition)
	setFloat(&record.TechnicalCondition, clean.TechnicalCondition)
	if clean.EnergyRating != nil {
		record.EnergyRating = models.EnergyRating(*clean.EnergyRating)
	}

	return record.Normalized()
}

// SnapCondition clamps a condition score to [0,10] and rounds it to the
// nearest half point.
func SnapCondition(v float64) float64 {
	v = math.Min(10, math.Max(0, v))
	return math.Round(v*2) / 2
}

func cleanText(s *string) *string {
	if s == nil {
		return nil
	}
	// the policy entity-encodes what it keeps; records hold plain text
	cleaned := strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(*s)))
	return &cleaned
}

func cleanAmount(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) || *v < 0 {
		return nil
	}
	amount := *v
	return &amount
}

func cleanCondition(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	snapped := SnapCondition(*v)
	return &snapped
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit]) + "..."
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setFloat(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
