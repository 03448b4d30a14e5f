// Package query turns a natural-language question into a structured
// interpretation: an intent, extracted entities, and resolved time windows.
// Interpretation is pure; all data-dependent vocabulary comes from the
// dataset lexicon passed in by the caller.
package query

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rohanmhetar/failsight/internal/dataset"
	"github.com/rohanmhetar/failsight/pkg/models"
)

// Interpretation is the structured reading of a raw query.
type Interpretation struct {
	Intent      Intent
	Confidence  float64
	Entities    models.QueryEntities
	TimeRanges  []models.TimeRange
	Interpreted string
}

// Interpret classifies the query's intent and extracts entities against the
// lexicon. Time expressions resolve relative to ref (treated as UTC).
func Interpret(q string, lex *dataset.Lexicon, ref time.Time) Interpretation {
	lowered := strings.ToLower(q)

	intent, confidence, hits := classify(lowered)
	ranges := extractTimeRanges(lowered, ref)

	// empty slices, not nil: entities serialize as [] when nothing matched
	ents := models.QueryEntities{
		Locations:      extractLocations(q, lowered, lex),
		TimePeriods:    make([]string, 0, len(ranges)),
		Metrics:        extractMetrics(lowered),
		Keywords:       append([]string{}, hits...),
		NumericFilters: extractNumericFilters(lowered),
	}
	if ents.Locations == nil {
		ents.Locations = []string{}
	}
	if ents.Metrics == nil {
		ents.Metrics = []string{}
	}
	if ents.NumericFilters == nil {
		ents.NumericFilters = []models.NumericFilter{}
	}
	for _, r := range ranges {
		ents.TimePeriods = append(ents.TimePeriods, r.Phrase)
	}
	var reasons []string
	for reason := range lex.FailureReasons {
		if containsWord(lowered, reason) {
			reasons = append(reasons, reason)
		}
	}
	sort.Strings(reasons)
	ents.Keywords = append(ents.Keywords, reasons...)

	return Interpretation{
		Intent:      intent,
		Confidence:  confidence,
		Entities:    ents,
		TimeRanges:  ranges,
		Interpreted: renderInterpreted(intent, ents),
	}
}

// extractLocations matches lexicon cities and states first (longest name
// wins), then keeps capitalized tokens after a locative preposition even
// when the dataset has never seen them, so unknown places still narrow the
// interpreted query instead of being silently dropped.
func extractLocations(original, lowered string, lex *dataset.Lexicon) []string {
	var out []string
	seen := map[string]bool{}
	for _, loc := range lex.Locations() {
		key := strings.ToLower(loc)
		if seen[key] {
			continue
		}
		if containsWord(lowered, key) {
			out = append(out, loc)
			seen[key] = true
		}
	}
	for _, m := range locativeRe.FindAllStringSubmatch(original, -1) {
		token := m[1]
		key := strings.ToLower(token)
		if seen[key] || locationStopwords[key] {
			continue
		}
		out = append(out, token)
		seen[key] = true
	}
	return out
}

var locativeRe = regexp.MustCompile(`\b(?:in|at|from|near|around)\s+([A-Z][A-Za-z]+)`)

// locationStopwords filters capitalized words that follow a preposition but
// never name a place in delivery queries.
var locationStopwords = map[string]bool{
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
	"the": true, "what": true, "which": true, "why": true, "how": true,
}

var metricPhrases = []struct {
	phrase string
	metric string
}{
	{"failure rate", "failure_rate"},
	{"success rate", "success_rate"},
	{"delivery time", "delivery_time"},
	{"on-time", "delivery_time"},
	{"volume", "order_volume"},
	{"revenue", "order_amount"},
	{"amount", "order_amount"},
	{"rating", "satisfaction"},
	{"satisfaction", "satisfaction"},
}

func extractMetrics(lowered string) []string {
	var out []string
	seen := map[string]bool{}
	for _, mp := range metricPhrases {
		if containsWord(lowered, mp.phrase) && !seen[mp.metric] {
			out = append(out, mp.metric)
			seen[mp.metric] = true
		}
	}
	return out
}

var numericFilterRe = regexp.MustCompile(
	`\b(?:orders?|amounts?|values?|shipments?|deliveries)?\s*` +
		`(>=|<=|>|<|above|over|under|below|greater than|more than|less than)\s*` +
		`(?:rs\.?\s*|inr\s*|\$|₹)?(\d+(?:\.\d+)?)\b`)

// extractNumericFilters binds comparator expressions to order_amount, the
// only numeric metric the dataset exposes per order. Malformed operands
// never match the pattern, so they are dropped rather than erroring.
func extractNumericFilters(lowered string) []models.NumericFilter {
	var out []models.NumericFilter
	for _, m := range numericFilterRe.FindAllStringSubmatch(lowered, -1) {
		value, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		out = append(out, models.NumericFilter{
			Field:    "order_amount",
			Operator: normalizeOperator(m[1]),
			Value:    value,
		})
	}
	return out
}

func normalizeOperator(op string) string {
	switch op {
	case "above", "over", "greater than", "more than":
		return ">"
	case "under", "below", "less than":
		return "<"
	default:
		return op
	}
}

var intentPhrase = map[Intent]string{
	IntentFailure:     "Analyzing delivery failure causes",
	IntentPerformance: "Analyzing delivery performance",
	IntentTrend:       "Analyzing delivery trends",
	IntentPredictive:  "Forecasting delivery risk",
	IntentGeographic:  "Analyzing delivery outcomes by location",
	IntentDriver:      "Analyzing driver performance",
	IntentGeneric:     "General delivery analysis",
}

func renderInterpreted(intent Intent, ents models.QueryEntities) string {
	var b strings.Builder
	b.WriteString(intentPhrase[intent])
	if len(ents.Locations) > 0 {
		b.WriteString(" in ")
		b.WriteString(strings.Join(ents.Locations, ", "))
	}
	if len(ents.TimePeriods) > 0 {
		b.WriteString(" during ")
		b.WriteString(ents.TimePeriods[0])
	}
	for _, f := range ents.NumericFilters {
		fmt.Fprintf(&b, " with %s %s %s",
			f.Field, f.Operator, strconv.FormatFloat(f.Value, 'f', -1, 64))
	}
	return b.String()
}

// containsWord reports whether needle occurs in haystack on word boundaries.
func containsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	for idx := 0; idx <= len(haystack)-len(needle); {
		i := strings.Index(haystack[idx:], needle)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(needle)
		beforeOK := start == 0 || !isWordChar(haystack[start-1])
		afterOK := end == len(haystack) || !isWordChar(haystack[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
	return false
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}
