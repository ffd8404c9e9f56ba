package models

import (
	"time"

	"github.com/google/uuid"
)

// Scenario is a saved, named snapshot of a property record together with the
// headline results it produced when it was saved.
type Scenario struct {
	ID       string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name     string         `gorm:"type:varchar(255);not null" json:"name"`
	Property PropertyRecord `gorm:"embedded;embeddedPrefix:property_" json:"property"`

	ROI                 float64        `gorm:"index" json:"roi"`
	GlobalScore         float64        `gorm:"index" json:"global_score"`
	Recommendation      Recommendation `gorm:"type:varchar(20);index" json:"recommendation"`
	RiskLevel           RiskLevel      `gorm:"type:varchar(10)" json:"risk_level"`
	RecommendedStrategy string         `gorm:"type:varchar(32)" json:"recommended_strategy,omitempty"`

	NotifiedAt *time.Time `json:"notified_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName pins the table name
func (Scenario) TableName() string {
	return "scenarios"
}

// NewScenario builds an unsaved scenario from a computed report
func NewScenario(name string, report Report) *Scenario {
	s := &Scenario{
		ID:             uuid.NewString(),
		Name:           name,
		Property:       report.Property,
		ROI:            report.Financials.ROI,
		GlobalScore:    report.Scores.Global,
		Recommendation: report.Recommendation,
		RiskLevel:      report.Risk.GlobalLevel,
	}
	if report.RecommendedStrategy != nil {
		s.RecommendedStrategy = report.RecommendedStrategy.ID
	}
	if s.Name == "" {
		s.Name = report.Property.Title
	}
	return s
}

// IsNotified reports whether an alert was already delivered for the scenario
func (s *Scenario) IsNotified() bool {
	return s.NotifiedAt != nil
}
