package rootcause

import (
	"strings"

	"github.com/rohanmhetar/failsight/pkg/models"
)

// Root-cause categories.
const (
	CategoryAddressQuality  = "address_quality"
	CategoryCustomerUnavail = "customer_unavailability"
	CategoryWeather         = "weather_correlation"
	CategoryTraffic         = "traffic_correlation"
	CategoryGeographic      = "geographic_hotspot"
	CategoryWarehouse       = "warehouse_operational"
	CategoryDriver          = "driver_performance"
	CategorySystemic        = "systemic"
)

// causeTemplate is the static part of a synthesized cause. Confidence priors
// reflect how specific the category's evidence usually is; the dynamic
// strength term is added on top.
type causeTemplate struct {
	cause           string
	prior           float64
	factors         []string
	baseCostUSD     float64
	satisfactionHit float64
	efficiencyLoss  float64
}

var causeTemplates = map[string]causeTemplate{
	CategoryAddressQuality: {
		cause: "Inaccurate Address Data & Lack of Geo-Validation",
		prior: 0.35,
		factors: []string{
			"no address verification at order capture",
			"missing pincode or secondary address line",
			"drivers cannot resolve the drop point on first attempt",
		},
		baseCostUSD:     12,
		satisfactionHit: -0.8,
		efficiencyLoss:  0.15,
	},
	CategoryCustomerUnavail: {
		cause: "Customer Unavailability & Poor Delivery Scheduling",
		prior: 0.30,
		factors: []string{
			"no delivery time-slot coordination with the customer",
			"no advance notification before arrival",
			"repeat attempts scheduled at the same failing hours",
		},
		baseCostUSD:     9,
		satisfactionHit: -0.6,
		efficiencyLoss:  0.12,
	},
	CategoryWeather: {
		cause: "Weather Disruption Impacting Delivery Operations",
		prior: 0.30,
		factors: []string{
			"no weather-aware route planning",
			"deliveries dispatched into known adverse conditions",
			"no customer communication during disruptions",
		},
		baseCostUSD:     10,
		satisfactionHit: -0.5,
		efficiencyLoss:  0.18,
	},
	CategoryTraffic: {
		cause: "Traffic Congestion Along Delivery Routes",
		prior: 0.28,
		factors: []string{
			"static routes ignore live traffic",
			"dispatch windows overlap peak congestion hours",
		},
		baseCostUSD:     8,
		satisfactionHit: -0.4,
		efficiencyLoss:  0.14,
	},
	CategoryGeographic: {
		cause: "Localized Operational Breakdown in High-Failure Areas",
		prior: 0.25,
		factors: []string{
			"failure rate concentrated in specific cities or states",
			"local capacity or coverage gaps",
		},
		baseCostUSD:     11,
		satisfactionHit: -0.7,
		efficiencyLoss:  0.16,
	},
	CategoryWarehouse: {
		cause: "Warehouse Processing Delays & Stock Discrepancies",
		prior: 0.28,
		factors: []string{
			"late picking and dispatch against promised windows",
			"stock-out discovered after order confirmation",
		},
		baseCostUSD:     10,
		satisfactionHit: -0.5,
		efficiencyLoss:  0.2,
	},
	CategoryDriver: {
		cause: "Driver Performance & Route Execution Gaps",
		prior: 0.25,
		factors: []string{
			"failure share concentrated on specific drivers",
			"inconsistent delivery attempt practices",
		},
		baseCostUSD:     9,
		satisfactionHit: -0.5,
		efficiencyLoss:  0.13,
	},
	CategorySystemic: {
		cause: "Systemic Delivery Process Issues",
		prior: 0.15,
		factors: []string{
			"failures spread across reasons without a dominant driver",
			"process controls weak at multiple hand-off points",
		},
		baseCostUSD:     7,
		satisfactionHit: -0.3,
		efficiencyLoss:  0.1,
	},
}

// keywordCategories maps free-text markers to a category; checked in order so
// the more specific categories win.
var keywordCategories = []struct {
	category string
	words    []string
}{
	{CategoryAddressQuality, []string{"address", "pincode", "location not found"}},
	{CategoryCustomerUnavail, []string{"customer not available", "not available", "unavailable", "no response", "refused"}},
	{CategoryWeather, []string{"weather", "rain", "storm", "flood", "fog", "cyclone"}},
	{CategoryTraffic, []string{"traffic", "congestion", "roadblock", "road closure"}},
	{CategoryWarehouse, []string{"warehouse", "stock", "picking", "dispatch", "inventory"}},
	{CategoryDriver, []string{"driver", "vehicle breakdown", "route"}},
}

// categorize picks the category for a pattern from its type first, then from
// keyword markers in its value text.
func categorize(p models.Pattern) string {
	switch p.Type {
	case "missing_address_data":
		return CategoryAddressQuality
	case "weather_correlation":
		return CategoryWeather
	case "traffic_correlation":
		return CategoryTraffic
	case "city_failure_rate", "state_failure_rate":
		return CategoryGeographic
	case "driver_failure_correlation":
		return CategoryDriver
	}

	text := strings.ToLower(p.Value)
	for _, kc := range keywordCategories {
		for _, w := range kc.words {
			if strings.Contains(text, w) {
				return kc.category
			}
		}
	}
	return CategorySystemic
}
