package query

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohanmhetar/failsight/internal/dataset"
)

func testLexicon(t *testing.T) *dataset.Lexicon {
	t.Helper()
	ds := dataset.New(map[string][]dataset.Row{
		dataset.CollectionOrders: {
			{"city": "Mumbai", "state": "Maharashtra", "failure_reason": "Address not found"},
			{"city": "Delhi", "state": "Delhi", "failure_reason": "Customer not available"},
			{"city": "New Delhi", "state": "Delhi", "failure_reason": ""},
		},
		dataset.CollectionClients: {
			{"client_name": "Saini LLC", "city": "Surat", "state": "Gujarat"},
		},
	})
	return ds.Lexicon
}

var ref = time.Date(2026, time.September, 1, 10, 30, 0, 0, time.UTC)

func TestInterpretIntent(t *testing.T) {
	lex := testLexicon(t)

	tests := []struct {
		name         string
		query        string
		analysisType string
		minConf      float64
	}{
		{"failure", "Why were deliveries failing in Mumbai?", "failure_analysis", 0.7},
		{"performance", "Show me delayed and late shipments", "performance_analysis", 0.7},
		{"trend", "Monthly trend of order volume", "trend_analysis", 0.7},
		{"predictive", "Forecast the delivery risk for next quarter", "predictive_analysis", 0.7},
		{"geographic", "Which cities have the worst outcomes", "geographic_analysis", 0.7},
		{"driver", "Courier and fleet breakdown", "driver_analysis", 0.7},
		{"generic", "Tell me about deliveries", "general_analysis", 0.4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interpret(tt.query, lex, ref)
			assert.Equal(t, tt.analysisType, got.Intent.AnalysisType())
			assert.GreaterOrEqual(t, got.Confidence, tt.minConf)
			assert.LessOrEqual(t, got.Confidence, 0.95)
		})
	}
}

func TestInterpretEmptyEntitiesSerializeAsArrays(t *testing.T) {
	lex := testLexicon(t)

	got := Interpret("Tell me about deliveries", lex, ref)

	require.NotNil(t, got.Entities.Locations)
	require.NotNil(t, got.Entities.TimePeriods)
	require.NotNil(t, got.Entities.Metrics)
	require.NotNil(t, got.Entities.Keywords)
	require.NotNil(t, got.Entities.NumericFilters)

	raw, err := json.Marshal(got.Entities)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"locations":[]`)
	assert.NotContains(t, string(raw), "null")
}

func TestInterpretConfidenceScalesWithKeywords(t *testing.T) {
	lex := testLexicon(t)

	one := Interpret("why did this happen", lex, ref)
	many := Interpret("why did deliveries fail, what is the failure reason for this problem", lex, ref)
	assert.Greater(t, many.Confidence, one.Confidence)
	assert.LessOrEqual(t, many.Confidence, 0.95)
}

func TestInterpretLocations(t *testing.T) {
	lex := testLexicon(t)

	t.Run("lexicon match is word-boundary aware", func(t *testing.T) {
		got := Interpret("failures in Mumbai and Gujarat", lex, ref)
		assert.ElementsMatch(t, []string{"Mumbai", "Gujarat"}, got.Entities.Locations)
	})

	t.Run("longest name wins", func(t *testing.T) {
		got := Interpret("orders failing in New Delhi", lex, ref)
		assert.Contains(t, got.Entities.Locations, "New Delhi")
	})

	t.Run("unknown capitalized place is kept", func(t *testing.T) {
		got := Interpret("Why are deliveries failing in Atlantis?", lex, ref)
		assert.Contains(t, got.Entities.Locations, "Atlantis")
	})
}

func TestInterpretTimeRanges(t *testing.T) {
	lex := testLexicon(t)

	t.Run("last month is exactly one calendar month", func(t *testing.T) {
		got := Interpret("failures last month", lex, ref)
		require.Len(t, got.TimeRanges, 1)
		tr := got.TimeRanges[0]
		assert.Equal(t, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC), tr.Start)
		assert.Equal(t, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC), tr.End)
		assert.True(t, tr.Matches(time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)))
		assert.False(t, tr.Matches(tr.End))
	})

	t.Run("first mention in document order is primary", func(t *testing.T) {
		got := Interpret("compare yesterday against last month", lex, ref)
		require.Len(t, got.TimeRanges, 2)
		assert.Equal(t, "yesterday", got.TimeRanges[0].Phrase)
		assert.Equal(t, "last month", got.TimeRanges[1].Phrase)
	})

	t.Run("month name resolves to most recent past occurrence", func(t *testing.T) {
		got := Interpret("what happened in December", lex, ref)
		require.Len(t, got.TimeRanges, 1)
		assert.Equal(t, 2025, got.TimeRanges[0].Start.Year())
	})

	t.Run("bare year", func(t *testing.T) {
		got := Interpret("failures during 2025", lex, ref)
		require.Len(t, got.TimeRanges, 1)
		assert.Equal(t, time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC), got.TimeRanges[0].Start)
		assert.Equal(t, time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), got.TimeRanges[0].End)
	})

	t.Run("last N days", func(t *testing.T) {
		got := Interpret("failures in the last 30 days", lex, ref)
		require.Len(t, got.TimeRanges, 1)
		assert.Equal(t, time.Date(2026, time.August, 2, 0, 0, 0, 0, time.UTC), got.TimeRanges[0].Start)
	})
}

func TestInterpretNumericFilters(t *testing.T) {
	lex := testLexicon(t)

	tests := []struct {
		name     string
		query    string
		operator string
		value    float64
	}{
		{"symbolic", "orders > 1660", ">", 1660},
		{"above with currency", "orders above $200", ">", 200},
		{"below", "amounts below 99.5", "<", 99.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Interpret(tt.query, lex, ref)
			require.Len(t, got.Entities.NumericFilters, 1)
			f := got.Entities.NumericFilters[0]
			assert.Equal(t, "order_amount", f.Field)
			assert.Equal(t, tt.operator, f.Operator)
			assert.InDelta(t, tt.value, f.Value, 1e-9)
		})
	}

	t.Run("non-numeric operand ignored", func(t *testing.T) {
		got := Interpret("orders above ten", lex, ref)
		assert.Empty(t, got.Entities.NumericFilters)
	})
}

func TestInterpretedQueryRendering(t *testing.T) {
	lex := testLexicon(t)

	got := Interpret("Why did deliveries fail in Mumbai last month with orders > 500?", lex, ref)
	assert.Contains(t, got.Interpreted, "failure")
	assert.Contains(t, got.Interpreted, "Mumbai")
	assert.Contains(t, got.Interpreted, "last month")
	assert.Contains(t, got.Interpreted, "order_amount > 500")
}

func TestInterpretIdempotent(t *testing.T) {
	lex := testLexicon(t)

	a := Interpret("Why did deliveries fail in Mumbai last month?", lex, ref)
	b := Interpret("Why did deliveries fail in Mumbai last month?", lex, ref)
	assert.Equal(t, a, b)
}
