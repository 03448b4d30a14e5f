package models

// Recommendation is an actionable follow-up mapped from a root-cause category.
// A cause may produce more than one; recommendations preserve the order of
// their source causes.
type Recommendation struct {
	Title              string   `json:"title"`
	Priority           string   `json:"priority"`
	Category           string   `json:"category"`
	CauseCategory      string   `json:"cause_category"`
	Description        string   `json:"description"`
	SpecificActions    []string `json:"specific_actions"`
	EstimatedImpact    string   `json:"estimated_impact"`
	Timeline           string   `json:"timeline"`
	InvestmentRequired string   `json:"investment_required"`
	ROIEstimate        string   `json:"roi_estimate"`
}
