// Package stats mines frequency and correlation patterns from the relevant
// record set. All aggregation is a single pass per aggregate; nothing here
// touches the network or mutates the input rows.
package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/rohanmhetar/failsight/internal/dataset"
	"github.com/rohanmhetar/failsight/internal/filter"
	"github.com/rohanmhetar/failsight/internal/query"
	"github.com/rohanmhetar/failsight/pkg/models"
)

// LiftThreshold is the minimum conditional-failure lift worth reporting.
const LiftThreshold = 1.3

// aggregator computes one family of patterns from the relevant set.
type aggregator func(set *filter.RelevantSet) []models.Pattern

// intentAggregates maps each query intent to the aggregates it runs, on top
// of the always-on correlation and temporal aggregates.
var intentAggregates = map[query.Intent][]aggregator{
	query.IntentFailure:     {failureReasonFrequency, missingAddressRates},
	query.IntentGeographic:  {geoFailureRates, failureReasonFrequency},
	query.IntentDriver:      {driverCorrelation, failureReasonFrequency},
	query.IntentPerformance: {statusDistribution, failureProbability},
	query.IntentTrend:       {monthlyTrend, statusDistribution},
	query.IntentPredictive:  {failureProbability, monthlyTrend},
	query.IntentGeneric:     {statusDistribution, failureReasonFrequency, failureProbability},
}

// Mine runs the intent's aggregates plus the always-on external-factor
// correlations and temporal peaks.
func Mine(set *filter.RelevantSet, intent query.Intent) []models.Pattern {
	aggs, ok := intentAggregates[intent]
	if !ok {
		aggs = intentAggregates[query.IntentGeneric]
	}
	var out []models.Pattern
	for _, agg := range aggs {
		out = append(out, agg(set)...)
	}
	out = append(out, externalFactorLift(set)...)
	out = append(out, temporalPeaks(set)...)
	if len(out) == 0 {
		// Failure-centric aggregates all come up empty when the window has no
		// failed orders. The status mix still describes the window, so report
		// that instead of nothing.
		out = statusDistribution(set)
	}
	return out
}

func isFailed(r dataset.Row) bool {
	switch strings.ToLower(r.Str("status")) {
	case "failed", "cancelled":
		return true
	}
	return false
}

// pct is the display percentage: one decimal, zero denominator yields zero.
func pct(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return round1(100 * float64(n) / float64(d))
}

// share is the raw ranking fraction with the same zero-denominator rule.
func share(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func severityFor(score float64) string {
	switch {
	case score >= 0.3:
		return models.ImpactHigh
	case score >= 0.1:
		return models.ImpactMedium
	default:
		return models.ImpactLow
	}
}

// failureReasonFrequency counts distinct failure reasons across failed
// orders. The per-reason counts partition the failed-order count.
func failureReasonFrequency(set *filter.RelevantSet) []models.Pattern {
	orders := set.Rows(dataset.CollectionOrders)
	counts := map[string]int{}
	failed := 0
	for _, r := range orders {
		if !isFailed(r) {
			continue
		}
		failed++
		reason := r.Str("failure_reason")
		if reason == "" {
			reason = "Unspecified"
		}
		counts[reason]++
	}
	if failed == 0 {
		return nil
	}

	reasons := make([]string, 0, len(counts))
	for reason := range counts {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool {
		if counts[reasons[i]] != counts[reasons[j]] {
			return counts[reasons[i]] > counts[reasons[j]]
		}
		return reasons[i] < reasons[j]
	})

	out := make([]models.Pattern, 0, len(reasons))
	for _, reason := range reasons {
		n := counts[reason]
		s := share(n, failed)
		out = append(out, models.Pattern{
			Kind:  models.PatternTraditional,
			Type:  "failure_reason_frequency",
			Field: "failure_reason",
			Value: reason,
			Description: fmt.Sprintf("%q accounts for %d of %d failed orders (%.1f%%)",
				reason, n, failed, 100*s),
			Frequency:  n,
			Percentage: pct(n, failed),
			Score:      s,
			Severity:   severityFor(s),
		})
	}
	return out
}

// missingAddressRates reports how often failed orders lack a pincode or a
// second address line, a proxy for address quality.
func missingAddressRates(set *filter.RelevantSet) []models.Pattern {
	orders := set.Rows(dataset.CollectionOrders)
	failed, noPin, noLine2 := 0, 0, 0
	for _, r := range orders {
		if !isFailed(r) {
			continue
		}
		failed++
		if r.Str("delivery_address_pincode") == "" {
			noPin++
		}
		if r.Str("delivery_address_line2") == "" {
			noLine2++
		}
	}
	if failed == 0 {
		return nil
	}

	var out []models.Pattern
	for _, m := range []struct {
		column string
		count  int
	}{
		{"delivery_address_pincode", noPin},
		{"delivery_address_line2", noLine2},
	} {
		if m.count == 0 {
			continue
		}
		s := share(m.count, failed)
		out = append(out, models.Pattern{
			Kind:  models.PatternTraditional,
			Type:  "missing_address_data",
			Field: m.column,
			Value: "missing",
			Description: fmt.Sprintf("%d of %d failed orders are missing %s (%.1f%%)",
				m.count, failed, m.column, 100*s),
			Frequency:  m.count,
			Percentage: pct(m.count, failed),
			Score:      s,
			Severity:   severityFor(s),
		})
	}
	return out
}

// geoFailureRates emits per-city and per-state failure rates against volume.
func geoFailureRates(set *filter.RelevantSet) []models.Pattern {
	var out []models.Pattern
	for _, col := range []string{"city", "state"} {
		out = append(out, rateByColumn(set, col, col+"_failure_rate")...)
	}
	return out
}

func rateByColumn(set *filter.RelevantSet, col, patternType string) []models.Pattern {
	orders := set.Rows(dataset.CollectionOrders)
	total := map[string]int{}
	failed := map[string]int{}
	for _, r := range orders {
		key := r.Str(col)
		if key == "" {
			continue
		}
		total[key]++
		if isFailed(r) {
			failed[key]++
		}
	}

	keys := make([]string, 0, len(total))
	for k := range total {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, rj := share(failed[keys[i]], total[keys[i]]), share(failed[keys[j]], total[keys[j]])
		if ri != rj {
			return ri > rj
		}
		return keys[i] < keys[j]
	})

	var out []models.Pattern
	for _, k := range keys {
		if failed[k] == 0 {
			continue
		}
		s := share(failed[k], total[k])
		out = append(out, models.Pattern{
			Kind:  models.PatternTraditional,
			Type:  patternType,
			Field: col,
			Value: k,
			Description: fmt.Sprintf("%s has %d failures out of %d orders (%.1f%% failure rate)",
				k, failed[k], total[k], 100*s),
			Frequency:  failed[k],
			Percentage: pct(failed[k], total[k]),
			Score:      s,
			Severity:   severityFor(s),
		})
	}
	return out
}

// driverCorrelation compares each driver's share of failures against their
// share of orders. A driver failing more than they deliver scores above 1.
func driverCorrelation(set *filter.RelevantSet) []models.Pattern {
	orders := set.Rows(dataset.CollectionOrders)
	total := map[string]int{}
	failed := map[string]int{}
	allFailed, all := 0, 0
	for _, r := range orders {
		id := r.Str("driver_id")
		if id == "" {
			continue
		}
		all++
		total[id]++
		if isFailed(r) {
			allFailed++
			failed[id]++
		}
	}
	if allFailed == 0 {
		return nil
	}

	ids := make([]string, 0, len(failed))
	for id := range failed {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		li := share(failed[ids[i]], allFailed) / math.Max(share(total[ids[i]], all), 1e-9)
		lj := share(failed[ids[j]], allFailed) / math.Max(share(total[ids[j]], all), 1e-9)
		if li != lj {
			return li > lj
		}
		return ids[i] < ids[j]
	})

	var out []models.Pattern
	for _, id := range ids {
		failShare := share(failed[id], allFailed)
		orderShare := share(total[id], all)
		if orderShare == 0 {
			continue
		}
		lift := failShare / orderShare
		if lift < LiftThreshold {
			continue
		}
		out = append(out, models.Pattern{
			Kind:  models.PatternTraditional,
			Type:  "driver_failure_correlation",
			Field: "driver_id",
			Value: id,
			Description: fmt.Sprintf("driver %s carries %.1f%% of failures on %.1f%% of orders (%.2fx)",
				id, 100*failShare, 100*orderShare, lift),
			Frequency:  failed[id],
			Percentage: pct(failed[id], allFailed),
			Score:      lift,
			Severity:   severityFor(failShare),
		})
	}
	return out
}

// statusDistribution reports the order status mix.
func statusDistribution(set *filter.RelevantSet) []models.Pattern {
	orders := set.Rows(dataset.CollectionOrders)
	counts := map[string]int{}
	for _, r := range orders {
		status := r.Str("status")
		if status == "" {
			status = "Unknown"
		}
		counts[status]++
	}
	if len(orders) == 0 {
		return nil
	}

	statuses := make([]string, 0, len(counts))
	for s := range counts {
		statuses = append(statuses, s)
	}
	sort.Slice(statuses, func(i, j int) bool {
		if counts[statuses[i]] != counts[statuses[j]] {
			return counts[statuses[i]] > counts[statuses[j]]
		}
		return statuses[i] < statuses[j]
	})

	out := make([]models.Pattern, 0, len(statuses))
	for _, status := range statuses {
		n := counts[status]
		s := share(n, len(orders))
		out = append(out, models.Pattern{
			Kind:        models.PatternTraditional,
			Type:        "status_distribution",
			Field:       "status",
			Value:       status,
			Description: fmt.Sprintf("%d of %d orders are %q (%.1f%%)", n, len(orders), status, 100*s),
			Frequency:   n,
			Percentage:  pct(n, len(orders)),
			Score:       s,
			Severity:    models.ImpactLow,
		})
	}
	return out
}

// failureProbability is the overall chance an order fails in the relevant set.
func failureProbability(set *filter.RelevantSet) []models.Pattern {
	orders := set.Rows(dataset.CollectionOrders)
	failed := 0
	for _, r := range orders {
		if isFailed(r) {
			failed++
		}
	}
	if len(orders) == 0 {
		return nil
	}
	s := share(failed, len(orders))
	return []models.Pattern{{
		Kind:        models.PatternTraditional,
		Type:        "failure_probability",
		Field:       "status",
		Value:       "Failed",
		Description: fmt.Sprintf("%d of %d orders failed (%.1f%% failure probability)", failed, len(orders), 100*s),
		Frequency:   failed,
		Percentage:  pct(failed, len(orders)),
		Score:       s,
		Severity:    severityFor(s),
	}}
}

// monthlyTrend buckets orders by calendar month and reports the direction of
// the failure count between the first and last populated months.
func monthlyTrend(set *filter.RelevantSet) []models.Pattern {
	orders := set.Rows(dataset.CollectionOrders)
	failedByMonth := map[string]int{}
	for _, r := range orders {
		if !isFailed(r) {
			continue
		}
		t, ok := r.Time("order_date")
		if !ok {
			continue
		}
		failedByMonth[t.Format("2006-01")]++
	}
	if len(failedByMonth) < 2 {
		return nil
	}

	months := make([]string, 0, len(failedByMonth))
	for m := range failedByMonth {
		months = append(months, m)
	}
	sort.Strings(months)

	first, last := months[0], months[len(months)-1]
	direction := "stable"
	switch {
	case failedByMonth[last] > failedByMonth[first]:
		direction = "rising"
	case failedByMonth[last] < failedByMonth[first]:
		direction = "falling"
	}
	delta := share(failedByMonth[last]-failedByMonth[first], failedByMonth[first])
	return []models.Pattern{{
		Kind:  models.PatternTraditional,
		Type:  "monthly_trend",
		Field: "order_date",
		Value: direction,
		Description: fmt.Sprintf("monthly failures went from %d (%s) to %d (%s): %s",
			failedByMonth[first], first, failedByMonth[last], last, direction),
		Frequency:  failedByMonth[last],
		Percentage: round1(100 * delta),
		Score:      math.Abs(delta),
		Severity:   severityFor(math.Abs(delta)),
	}}
}
