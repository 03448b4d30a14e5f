// Package recommend maps synthesized root causes to actionable
// recommendations from a static library. Recommendations never invent data:
// everything except the priority is template text keyed by cause category.
package recommend

import (
	"github.com/rohanmhetar/failsight/internal/rootcause"
	"github.com/rohanmhetar/failsight/pkg/models"
)

// Priority is raised to high when a cause is both confident and high-impact.
const highPriorityConfidence = 0.75

type template struct {
	title       string
	category    string
	description string
	actions     []string
	impact      string
	timeline    string
	investment  string
	roi         string
}

var library = map[string][]template{
	rootcause.CategoryAddressQuality: {
		{
			title:       "Implement Address Verification & Geo-Validation",
			category:    "technology",
			description: "Validate addresses at order capture and geocode drop points before dispatch.",
			actions: []string{
				"integrate pincode and address validation into order intake",
				"geocode delivery addresses and flag unresolvable ones for review",
				"prompt customers to complete missing address lines",
			},
			impact:     "reduce address-related failures by 25-40%",
			timeline:   "6-8 weeks",
			investment: "medium",
			roi:        "3-4 months payback from avoided redelivery",
		},
		{
			title:       "Launch Address Cleanup for Repeat-Failure Locations",
			category:    "operations",
			description: "Backfill corrected addresses for customers with repeated failed attempts.",
			actions: []string{
				"rank customers by failed-attempt count",
				"confirm address details on the next successful contact",
			},
			impact:     "recover chronic failure addresses",
			timeline:   "2-3 weeks",
			investment: "low",
			roi:        "immediate on affected routes",
		},
	},
	rootcause.CategoryCustomerUnavail: {
		{
			title:       "Introduce Delivery Time-Slot Scheduling",
			category:    "product",
			description: "Let customers choose delivery windows and notify them before arrival.",
			actions: []string{
				"offer time-slot selection at checkout",
				"send arrival notifications 30-60 minutes ahead",
				"reschedule proactively instead of failing the attempt",
			},
			impact:     "reduce customer-unavailable failures by 30-50%",
			timeline:   "8-10 weeks",
			investment: "medium",
			roi:        "4-6 months payback",
		},
	},
	rootcause.CategoryWeather: {
		{
			title:       "Add Weather-Aware Dispatch Planning",
			category:    "operations",
			description: "Consult weather feeds before dispatch and re-sequence routes around disruptions.",
			actions: []string{
				"hold or re-route dispatches into severe-weather windows",
				"notify customers of weather-driven delays automatically",
			},
			impact:     "cut weather-driven failures during monsoon peaks",
			timeline:   "4-6 weeks",
			investment: "low",
			roi:        "seasonal, highest in monsoon quarters",
		},
	},
	rootcause.CategoryTraffic: {
		{
			title:       "Adopt Live-Traffic Route Optimization",
			category:    "technology",
			description: "Feed live congestion data into route planning and shift dispatch windows off peaks.",
			actions: []string{
				"integrate a live traffic source into routing",
				"move dispatch cut-offs away from peak congestion hours",
			},
			impact:     "reduce traffic-delay failures by 15-25%",
			timeline:   "6-8 weeks",
			investment: "medium",
			roi:        "3-5 months payback",
		},
	},
	rootcause.CategoryGeographic: {
		{
			title:       "Run Focused Intervention in High-Failure Areas",
			category:    "operations",
			description: "Audit the worst-performing cities and fix local capacity, coverage, or partner gaps.",
			actions: []string{
				"audit the top failure hotspots end to end",
				"rebalance fleet capacity toward hotspot demand",
				"review local courier partner performance",
			},
			impact:     "normalize failure rate in hotspot areas toward network average",
			timeline:   "4-8 weeks per area",
			investment: "medium",
			roi:        "proportional to hotspot volume",
		},
	},
	rootcause.CategoryWarehouse: {
		{
			title:       "Tighten Warehouse Dispatch SLAs",
			category:    "operations",
			description: "Instrument picking-to-dispatch lead times and alert on breaches before they cascade.",
			actions: []string{
				"track picking and dispatch timestamps against promised windows",
				"alert supervisors on same-day SLA breaches",
				"reconcile stock before order confirmation",
			},
			impact:     "reduce warehouse-driven delays by 20-30%",
			timeline:   "3-5 weeks",
			investment: "low",
			roi:        "2-3 months payback",
		},
	},
	rootcause.CategoryDriver: {
		{
			title:       "Launch Driver Performance Coaching",
			category:    "people",
			description: "Pair outlier drivers with structured coaching and standardize attempt practices.",
			actions: []string{
				"review outlier drivers' failed-attempt patterns",
				"standardize doorstep attempt and escalation procedure",
				"re-check outliers after a coaching cycle",
			},
			impact:     "bring outlier drivers to fleet-average failure share",
			timeline:   "4-6 weeks",
			investment: "low",
			roi:        "2-4 months payback",
		},
	},
	rootcause.CategorySystemic: {
		{
			title:       "Establish Failure Review & Process Controls",
			category:    "process",
			description: "Stand up a weekly failure review with owners for each recurring failure class.",
			actions: []string{
				"categorize every failed delivery weekly",
				"assign an owner and countermeasure per failure class",
				"track countermeasure effect month over month",
			},
			impact:     "compounding reduction across failure classes",
			timeline:   "2-4 weeks to stand up",
			investment: "low",
			roi:        "compounds quarterly",
		},
	},
}

// Generate returns the recommendations for the given causes, preserving the
// cause order. A recommendation may repeat when two causes share a category.
func Generate(causes []models.RootCause) []models.Recommendation {
	var out []models.Recommendation
	for _, cause := range causes {
		for _, tpl := range library[cause.Category] {
			priority := "medium"
			if cause.Confidence >= highPriorityConfidence && cause.Impact == models.ImpactHigh {
				priority = "high"
			}
			out = append(out, models.Recommendation{
				Title:              tpl.title,
				Priority:           priority,
				Category:           tpl.category,
				CauseCategory:      cause.Category,
				Description:        tpl.description,
				SpecificActions:    append([]string(nil), tpl.actions...),
				EstimatedImpact:    tpl.impact,
				Timeline:           tpl.timeline,
				InvestmentRequired: tpl.investment,
				ROIEstimate:        tpl.roi,
			})
		}
	}
	return out
}
