package models

// AlertFilter decides which saved scenarios are worth a notification
type AlertFilter struct {
	MinGlobalScore  *float64         `json:"min_global_score"`
	MinROI          *float64         `json:"min_roi"`
	Recommendations []Recommendation `json:"recommendations"`
	RiskLevels      []RiskLevel      `json:"risk_levels"`
}

// IsScenarioAllowed checks if a scenario matches the filter criteria
func (f *AlertFilter) IsScenarioAllowed(scenario *Scenario) bool {
	if f == nil {
		return true // No filters means allow all
	}

	if f.MinGlobalScore != nil && scenario.GlobalScore < *f.MinGlobalScore {
		return false
	}
	if f.MinROI != nil && scenario.ROI < *f.MinROI {
		return false
	}

	if len(f.Recommendations) > 0 {
		allowed := false
		for _, r := range f.Recommendations {
			if r == scenario.Recommendation {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	if len(f.RiskLevels) > 0 {
		allowed := false
		for _, level := range f.RiskLevels {
			if level == scenario.RiskLevel {
				allowed = true
				break
			}
		}
		if !allowed {
			return false
		}
	}

	return true
}
