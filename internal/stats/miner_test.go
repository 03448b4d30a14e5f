package stats

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohanmhetar/failsight/internal/dataset"
	"github.com/rohanmhetar/failsight/internal/filter"
	"github.com/rohanmhetar/failsight/internal/query"
	"github.com/rohanmhetar/failsight/pkg/models"
)

func relevantAll(ds *dataset.Dataset) *filter.RelevantSet {
	return filter.Apply(ds, models.QueryEntities{}, nil)
}

func order(id int, city, status, reason, date string, extra dataset.Row) dataset.Row {
	r := dataset.Row{
		"order_id":       fmt.Sprintf("%d", id),
		"city":           city,
		"state":          "Maharashtra",
		"status":         status,
		"failure_reason": reason,
		"order_date":     date,
		"amount":         "500",
	}
	for k, v := range extra {
		r[k] = v
	}
	return r
}

func TestFailureReasonFrequencyPartitionsFailures(t *testing.T) {
	ds := dataset.New(map[string][]dataset.Row{
		dataset.CollectionOrders: {
			order(1, "Mumbai", "Failed", "Address not found", "2026-08-01 14:00:00", nil),
			order(2, "Mumbai", "Failed", "Address not found", "2026-08-02 14:00:00", nil),
			order(3, "Mumbai", "Failed", "Customer not available", "2026-08-03 14:00:00", nil),
			order(4, "Mumbai", "Delivered", "", "2026-08-04 14:00:00", nil),
		},
	})

	patterns := Mine(relevantAll(ds), query.IntentFailure)

	var freq []models.Pattern
	for _, p := range patterns {
		if p.Type == "failure_reason_frequency" {
			freq = append(freq, p)
		}
	}
	require.Len(t, freq, 2)

	// counts partition the failed-order count
	sum := 0
	for _, p := range freq {
		sum += p.Frequency
	}
	assert.Equal(t, 3, sum)

	// sorted by count descending
	assert.Equal(t, "Address not found", freq[0].Value)
	assert.Equal(t, 2, freq[0].Frequency)
	assert.InDelta(t, 66.7, freq[0].Percentage, 0.01)
	assert.InDelta(t, 2.0/3.0, freq[0].Score, 1e-9)
}

func TestMissingAddressRates(t *testing.T) {
	ds := dataset.New(map[string][]dataset.Row{
		dataset.CollectionOrders: {
			order(1, "Mumbai", "Failed", "Address not found", "2026-08-01 14:00:00",
				dataset.Row{"delivery_address_pincode": "", "delivery_address_line2": "Flat 2"}),
			order(2, "Mumbai", "Failed", "Address not found", "2026-08-02 14:00:00",
				dataset.Row{"delivery_address_pincode": "400001", "delivery_address_line2": ""}),
		},
	})

	patterns := Mine(relevantAll(ds), query.IntentFailure)

	byField := map[string]models.Pattern{}
	for _, p := range patterns {
		if p.Type == "missing_address_data" {
			byField[p.Field] = p
		}
	}
	require.Len(t, byField, 2)
	assert.Equal(t, 1, byField["delivery_address_pincode"].Frequency)
	assert.InDelta(t, 50.0, byField["delivery_address_pincode"].Percentage, 0.01)
}

func TestGeoFailureRates(t *testing.T) {
	ds := dataset.New(map[string][]dataset.Row{
		dataset.CollectionOrders: {
			order(1, "Mumbai", "Failed", "Address not found", "2026-08-01 14:00:00", nil),
			order(2, "Mumbai", "Failed", "Address not found", "2026-08-02 14:00:00", nil),
			order(3, "Delhi", "Delivered", "", "2026-08-03 14:00:00", nil),
			order(4, "Delhi", "Failed", "Customer not available", "2026-08-04 14:00:00", nil),
		},
	})

	patterns := Mine(relevantAll(ds), query.IntentGeographic)

	var cities []models.Pattern
	for _, p := range patterns {
		if p.Type == "city_failure_rate" {
			cities = append(cities, p)
		}
	}
	require.Len(t, cities, 2)
	assert.Equal(t, "Mumbai", cities[0].Value)
	assert.InDelta(t, 100.0, cities[0].Percentage, 0.01)
	assert.Equal(t, "Delhi", cities[1].Value)
	assert.InDelta(t, 50.0, cities[1].Percentage, 0.01)
}

func TestExternalFactorLift(t *testing.T) {
	var orders []dataset.Row
	id := 0
	// 10 rainy-day orders in Mumbai, 8 fail; 10 clear-day orders, 1 fails.
	for i := 0; i < 10; i++ {
		id++
		status := "Failed"
		if i >= 8 {
			status = "Delivered"
		}
		orders = append(orders, order(id, "Mumbai", status, "Weather delay",
			fmt.Sprintf("2026-08-%02d 14:00:00", i+1), nil))
	}
	for i := 0; i < 10; i++ {
		id++
		status := "Delivered"
		if i == 0 {
			status = "Failed"
		}
		orders = append(orders, order(id, "Mumbai", status, "Other",
			fmt.Sprintf("2026-08-%02d 14:00:00", i+11), nil))
	}
	var factors []dataset.Row
	for i := 0; i < 10; i++ {
		factors = append(factors, dataset.Row{
			"city": "Mumbai", "recorded_at": fmt.Sprintf("2026-08-%02d 09:00:00", i+1),
			"weather_condition": "Rain",
		})
	}
	for i := 0; i < 10; i++ {
		factors = append(factors, dataset.Row{
			"city": "Mumbai", "recorded_at": fmt.Sprintf("2026-08-%02d 09:00:00", i+11),
			"weather_condition": "Clear",
		})
	}
	ds := dataset.New(map[string][]dataset.Row{
		dataset.CollectionOrders:          orders,
		dataset.CollectionExternalFactors: factors,
	})

	patterns := Mine(relevantAll(ds), query.IntentFailure)

	var weather []models.Pattern
	for _, p := range patterns {
		if p.Type == "weather_correlation" {
			weather = append(weather, p)
		}
	}
	require.Len(t, weather, 1, "only the lifted condition is reported")
	assert.Equal(t, "Rain", weather[0].Value)
	assert.GreaterOrEqual(t, weather[0].Score, LiftThreshold)
}

func TestTemporalPeaks(t *testing.T) {
	var orders []dataset.Row
	for i := 0; i < 6; i++ {
		orders = append(orders, order(i, "Mumbai", "Failed", "Traffic congestion",
			fmt.Sprintf("2026-08-%02d 18:00:00", i+3), nil)) // all at 18:00
	}
	ds := dataset.New(map[string][]dataset.Row{dataset.CollectionOrders: orders})

	patterns := Mine(relevantAll(ds), query.IntentFailure)

	var peakHour *models.Pattern
	for i, p := range patterns {
		if p.Type == "temporal_peak_hour" {
			peakHour = &patterns[i]
		}
	}
	require.NotNil(t, peakHour)
	assert.Equal(t, "18:00", peakHour.Value)
	assert.Equal(t, 6, peakHour.Frequency)
}

func TestMineAllDeliveredFallsBackToStatusMix(t *testing.T) {
	// a window with zero failed orders still yields patterns: the failure
	// aggregates are empty, so the status mix is reported instead
	var orders []dataset.Row
	for i := 0; i < 10; i++ {
		orders = append(orders, order(i, "Mumbai", "Delivered", "",
			fmt.Sprintf("2026-08-%02d 14:00:00", i+1), nil))
	}
	ds := dataset.New(map[string][]dataset.Row{dataset.CollectionOrders: orders})

	patterns := Mine(relevantAll(ds), query.IntentFailure)

	require.NotEmpty(t, patterns)
	assert.Equal(t, "status_distribution", patterns[0].Type)
	assert.Equal(t, "Delivered", patterns[0].Value)
	assert.Equal(t, 10, patterns[0].Frequency)
	assert.InDelta(t, 100.0, patterns[0].Percentage, 0.01)
}

func TestZeroDenominatorsYieldZero(t *testing.T) {
	assert.Zero(t, pct(0, 0))
	assert.Zero(t, share(5, 0))
}

func TestMineEmptySetProducesNoPatterns(t *testing.T) {
	ds := dataset.New(map[string][]dataset.Row{})
	patterns := Mine(relevantAll(ds), query.IntentFailure)
	assert.Empty(t, patterns)
}
