package dataset

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowAccessors(t *testing.T) {
	row := Row{
		"city":       "Mumbai",
		"amount":     "750.50",
		"count":      42.0,
		"order_date": "2026-08-01 14:30:00",
		"empty":      nil,
	}

	assert.Equal(t, "Mumbai", row.Str("city"))
	assert.Equal(t, "", row.Str("empty"))
	assert.Equal(t, "", row.Str("missing"))

	amount, ok := row.Float("amount")
	require.True(t, ok)
	assert.Equal(t, 750.50, amount)

	count, ok := row.Float("count")
	require.True(t, ok)
	assert.Equal(t, 42.0, count)

	_, ok = row.Float("city")
	assert.False(t, ok)

	ts, ok := row.Time("order_date")
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, time.August, 1, 14, 30, 0, 0, time.UTC), ts)

	_, ok = row.Time("city")
	assert.False(t, ok)
}

func TestRowTimeLayouts(t *testing.T) {
	layouts := []string{
		"2026-08-01T14:30:00Z",
		"2026-08-01 14:30:00",
		"2026-08-01T14:30:00",
		"2026-08-01",
	}
	for _, raw := range layouts {
		ts, ok := Row{"t": raw}.Time("t")
		require.True(t, ok, raw)
		assert.Equal(t, 2026, ts.Year())
		assert.Equal(t, time.August, ts.Month())
	}
}

func TestLexiconDerivation(t *testing.T) {
	ds := New(map[string][]Row{
		CollectionOrders: {
			{"city": "Mumbai", "state": "Maharashtra", "failure_reason": "Address not found"},
			{"city": "mumbai", "state": "Maharashtra", "failure_reason": ""},
		},
		CollectionWarehouses: {
			{"city": "Surat", "state": "Gujarat", "warehouse_name": "Surat Hub"},
		},
		CollectionClients: {
			{"city": "Delhi", "state": "Delhi", "client_name": "Saini LLC"},
		},
	})

	assert.True(t, ds.Lexicon.KnownLocation("Mumbai"))
	assert.True(t, ds.Lexicon.KnownLocation("gujarat"))
	assert.True(t, ds.Lexicon.KnownLocation(" Delhi "))
	assert.False(t, ds.Lexicon.KnownLocation("Atlantis"))
	assert.Contains(t, ds.Lexicon.FailureReasons, "address not found")
	assert.Contains(t, ds.Lexicon.Warehouses, "surat hub")
	assert.Contains(t, ds.Lexicon.Clients, "saini llc")
}

func TestLexiconLocationsLongestFirst(t *testing.T) {
	ds := New(map[string][]Row{
		CollectionOrders: {
			{"city": "Delhi", "state": "Delhi"},
			{"city": "New Delhi", "state": "Delhi"},
		},
	})

	locs := ds.Lexicon.Locations()
	require.NotEmpty(t, locs)
	assert.Equal(t, "New Delhi", locs[0])
}

func TestDatasetTotals(t *testing.T) {
	ds := New(map[string][]Row{
		CollectionOrders:  {{"order_id": "1"}, {"order_id": "2"}},
		CollectionClients: {{"client_id": "CL-1"}},
	})
	assert.Equal(t, 3, ds.TotalRows())
	assert.False(t, ds.Empty())

	assert.True(t, New(map[string][]Row{}).Empty())
}

func TestSummarize(t *testing.T) {
	ds := New(map[string][]Row{
		CollectionOrders: {
			{"order_id": "1", "city": "Mumbai", "order_date": "2026-08-01 10:00:00"},
			{"order_id": "2", "city": "Delhi", "order_date": "2026-08-20 10:00:00"},
		},
	})

	summaries := ds.Summarize()
	var orders *CollectionSummary
	for i := range summaries {
		if summaries[i].Name == CollectionOrders {
			orders = &summaries[i]
		}
	}
	require.NotNil(t, orders)
	assert.Equal(t, 2, orders.Count)
	assert.Contains(t, orders.Columns, "city")
	assert.Equal(t, "2026-08-01", orders.Earliest)
	assert.Equal(t, "2026-08-20", orders.Latest)
}
