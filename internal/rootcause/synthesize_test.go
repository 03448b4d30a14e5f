package rootcause

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohanmhetar/failsight/internal/config"
	"github.com/rohanmhetar/failsight/pkg/models"
)

func testSynthesizer() *Synthesizer {
	return New(config.AnalysisConfig{
		Currency:     "INR",
		CurrencyRate: 83.0,
	})
}

func addressPattern(freq int, pctOfFailed float64) models.Pattern {
	return models.Pattern{
		Kind:       models.PatternTraditional,
		Type:       "failure_reason_frequency",
		Field:      "failure_reason",
		Value:      "Address not found",
		Frequency:  freq,
		Percentage: pctOfFailed,
		Score:      pctOfFailed / 100,
	}
}

func TestSynthesizeFromFrequencyPattern(t *testing.T) {
	causes := testSynthesizer().Synthesize(models.PatternGroups{
		Traditional: []models.Pattern{addressPattern(40, 57.1)},
	})

	require.Len(t, causes, 1)
	c := causes[0]
	assert.Equal(t, CategoryAddressQuality, c.Category)
	assert.Equal(t, "Inaccurate Address Data & Lack of Geo-Validation", c.Cause)
	assert.InDelta(t, 0.55*0.571+0.35, c.Confidence, 0.01)
	assert.Equal(t, 40, c.SupportingRecords)
	assert.Contains(t, c.Evidence, "40")
	assert.Equal(t, "INR", c.BusinessImpact.Currency)
	assert.Greater(t, c.BusinessImpact.CostPerIncident, 0.0)
	assert.NotEmpty(t, c.ContributingFactors)
}

func TestSynthesizeConfidenceIsClamped(t *testing.T) {
	p := addressPattern(100, 100)
	p.Score = 5 // even a corrupt score never pushes confidence past 1
	causes := testSynthesizer().Synthesize(models.PatternGroups{Traditional: []models.Pattern{p}})
	require.Len(t, causes, 1)
	assert.LessOrEqual(t, causes[0].Confidence, 1.0)
}

func TestSynthesizeQualificationFloors(t *testing.T) {
	tests := []struct {
		name    string
		pattern models.Pattern
		want    bool
	}{
		{"below count floor", addressPattern(2, 10), false},
		{"at count floor", addressPattern(3, 10), true},
		{
			"lift below threshold",
			models.Pattern{Kind: models.PatternTraditional, Type: "weather_correlation",
				Value: "Rain", Frequency: 20, Score: 1.1},
			false,
		},
		{
			"lift at threshold",
			models.Pattern{Kind: models.PatternTraditional, Type: "weather_correlation",
				Value: "Rain", Frequency: 20, Score: 1.3},
			true,
		},
		{
			"small cluster",
			models.Pattern{Kind: models.PatternClustering, Type: "semantic_cluster",
				Value: "address not found", ClusterSize: 2, Frequency: 6, Score: 0.2},
			false,
		},
		{
			"qualifying cluster",
			models.Pattern{Kind: models.PatternClustering, Type: "semantic_cluster",
				Value: "address not found", ClusterSize: 3, Frequency: 6, Score: 0.3},
			true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, qualifies(tt.pattern))
		})
	}
}

func TestSynthesizeDeduplicatesSameCategory(t *testing.T) {
	// Two address-quality patterns with nearly identical evidence text
	// must merge into one cause.
	a := addressPattern(40, 57.1)
	b := addressPattern(38, 54.0)
	causes := testSynthesizer().Synthesize(models.PatternGroups{
		Traditional: []models.Pattern{a, b},
	})

	require.Len(t, causes, 1)
	assert.Equal(t, 40, causes[0].SupportingRecords)

	// the invariant: no two returned causes describe the same thing
	for i := range causes {
		for j := i + 1; j < len(causes); j++ {
			same := causes[i].Category == causes[j].Category &&
				jaccard(tokens(causes[i].Evidence), tokens(causes[j].Evidence)) > dedupThreshold
			assert.False(t, same)
		}
	}
}

func TestSynthesizeKeepsDistinctCategories(t *testing.T) {
	causes := testSynthesizer().Synthesize(models.PatternGroups{
		Traditional: []models.Pattern{
			addressPattern(40, 57.1),
			{Kind: models.PatternTraditional, Type: "failure_reason_frequency",
				Value: "Customer not available", Frequency: 20, Percentage: 28.6, Score: 0.286},
			{Kind: models.PatternTraditional, Type: "weather_correlation",
				Value: "Rain", Frequency: 15, Percentage: 60, Score: 1.8},
		},
	})

	require.Len(t, causes, 3)
	cats := []string{causes[0].Category, causes[1].Category, causes[2].Category}
	assert.Contains(t, cats, CategoryAddressQuality)
	assert.Contains(t, cats, CategoryCustomerUnavail)
	assert.Contains(t, cats, CategoryWeather)
}

func TestSynthesizeCapsAtThree(t *testing.T) {
	causes := testSynthesizer().Synthesize(models.PatternGroups{
		Traditional: []models.Pattern{
			addressPattern(40, 57.1),
			{Kind: models.PatternTraditional, Type: "failure_reason_frequency",
				Value: "Customer not available", Frequency: 20, Percentage: 28.6, Score: 0.286},
			{Kind: models.PatternTraditional, Type: "weather_correlation",
				Value: "Rain", Frequency: 15, Percentage: 60, Score: 1.8},
			{Kind: models.PatternTraditional, Type: "traffic_correlation",
				Value: "Heavy", Frequency: 12, Percentage: 50, Score: 1.5},
			{Kind: models.PatternTraditional, Type: "driver_failure_correlation",
				Value: "DRV-9", Frequency: 8, Percentage: 30, Score: 2.0},
		},
	})
	assert.Len(t, causes, 3)
}

func TestSynthesizeRankedByConfidence(t *testing.T) {
	causes := testSynthesizer().Synthesize(models.PatternGroups{
		Traditional: []models.Pattern{
			addressPattern(40, 57.1),
			{Kind: models.PatternTraditional, Type: "failure_reason_frequency",
				Value: "Customer not available", Frequency: 5, Percentage: 7.1, Score: 0.071},
		},
	})
	require.Len(t, causes, 2)
	assert.GreaterOrEqual(t, causes[0].Confidence, causes[1].Confidence)
}

func TestSynthesizeFallbackProvenanceDiscount(t *testing.T) {
	model := addressPattern(40, 57.1)
	fallback := addressPattern(40, 57.1)
	fallback.Provenance = models.ProvenanceFallback

	a := testSynthesizer().Synthesize(models.PatternGroups{Traditional: []models.Pattern{model}})
	b := testSynthesizer().Synthesize(models.PatternGroups{Traditional: []models.Pattern{fallback}})
	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.InDelta(t, a[0].Confidence*fallbackDiscount, b[0].Confidence, 0.01)
}

func TestSynthesizeGenericFallback(t *testing.T) {
	// nothing qualifies, but a status pattern exists
	causes := testSynthesizer().Synthesize(models.PatternGroups{
		Traditional: []models.Pattern{
			{Kind: models.PatternTraditional, Type: "status_distribution",
				Value: "Delivered", Frequency: 2, Percentage: 66.7, Score: 0.667},
		},
	})
	require.Len(t, causes, 1)
	assert.Equal(t, CategorySystemic, causes[0].Category)
}

func TestSynthesizeNoPatternsStillOneCause(t *testing.T) {
	// even an empty pattern set yields exactly one low-confidence systemic
	// cause, never an empty result
	causes := testSynthesizer().Synthesize(models.PatternGroups{})
	require.Len(t, causes, 1)
	c := causes[0]
	assert.Equal(t, CategorySystemic, c.Category)
	assert.Equal(t, models.ImpactLow, c.Impact)
	assert.Equal(t, 0, c.SupportingRecords)
	assert.InDelta(t, causeTemplates[CategorySystemic].prior, c.Confidence, 0.001)
	assert.Zero(t, c.BusinessImpact.SatisfactionDelta)
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name    string
		pattern models.Pattern
		want    string
	}{
		{"address text", models.Pattern{Type: "failure_reason_frequency", Value: "Address not found"}, CategoryAddressQuality},
		{"customer text", models.Pattern{Type: "failure_reason_frequency", Value: "Customer not available"}, CategoryCustomerUnavail},
		{"weather type", models.Pattern{Type: "weather_correlation", Value: "Rain"}, CategoryWeather},
		{"traffic type", models.Pattern{Type: "traffic_correlation", Value: "Heavy"}, CategoryTraffic},
		{"geo type", models.Pattern{Type: "city_failure_rate", Value: "Mumbai"}, CategoryGeographic},
		{"driver type", models.Pattern{Type: "driver_failure_correlation", Value: "DRV-1"}, CategoryDriver},
		{"missing address", models.Pattern{Type: "missing_address_data", Value: "missing"}, CategoryAddressQuality},
		{"warehouse text", models.Pattern{Type: "semantic_cluster", Value: "stock not ready at warehouse"}, CategoryWarehouse},
		{"unknown", models.Pattern{Type: "failure_reason_frequency", Value: "Mystery"}, CategorySystemic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, categorize(tt.pattern))
		})
	}
}
