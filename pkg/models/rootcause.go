package models

// Impact tiers for a root cause.
const (
	ImpactLow    = "low"
	ImpactMedium = "medium"
	ImpactHigh   = "high"
)

// BusinessImpact is the monetized estimate attached to a root cause.
// CostPerIncident is expressed in the configured currency.
type BusinessImpact struct {
	CostPerIncident        float64 `json:"cost_per_incident"`
	Currency               string  `json:"currency"`
	SatisfactionDelta      float64 `json:"customer_satisfaction_delta"`
	EfficiencyLossFraction float64 `json:"efficiency_loss"`
}

// RootCause is a synthesized, evidence-backed explanation candidate.
// Evidence text is interpolated strictly from computed statistics.
type RootCause struct {
	Category            string         `json:"category"`
	Cause               string         `json:"cause"`
	Confidence          float64        `json:"confidence"`
	Impact              string         `json:"impact"`
	Evidence            string         `json:"evidence"`
	ContributingFactors []string       `json:"contributing_factors"`
	BusinessImpact      BusinessImpact `json:"business_impact"`
	SupportingRecords   int            `json:"supporting_records"`
}
