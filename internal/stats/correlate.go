package stats

import (
	"fmt"
	"sort"

	"github.com/rohanmhetar/failsight/internal/dataset"
	"github.com/rohanmhetar/failsight/internal/filter"
	"github.com/rohanmhetar/failsight/pkg/models"
)

// factorKey joins an order to external factors recorded in the same city on
// the same calendar day.
type factorKey struct {
	city string
	day  string
}

// externalFactorLift measures how much likelier an order is to fail under a
// given weather or traffic condition than overall. Only lifts at or above
// LiftThreshold are reported.
func externalFactorLift(set *filter.RelevantSet) []models.Pattern {
	orders := set.Rows(dataset.CollectionOrders)
	factors := set.Rows(dataset.CollectionExternalFactors)
	if len(orders) == 0 || len(factors) == 0 {
		return nil
	}

	conditions := map[factorKey]map[string]string{}
	for _, f := range factors {
		t, ok := f.Time("recorded_at")
		if !ok {
			continue
		}
		key := factorKey{city: f.Str("city"), day: t.Format("2006-01-02")}
		if conditions[key] == nil {
			conditions[key] = map[string]string{}
		}
		if w := f.Str("weather_condition"); w != "" {
			conditions[key]["weather_condition"] = w
		}
		if tr := f.Str("traffic_condition"); tr != "" {
			conditions[key]["traffic_condition"] = tr
		}
	}

	type bucket struct{ total, failed int }
	perCondition := map[string]map[string]*bucket{
		"weather_condition": {},
		"traffic_condition": {},
	}
	allTotal, allFailed := 0, 0
	for _, r := range orders {
		t, ok := r.Time("order_date")
		if !ok {
			continue
		}
		key := factorKey{city: r.Str("city"), day: t.Format("2006-01-02")}
		conds, ok := conditions[key]
		if !ok {
			continue
		}
		allTotal++
		failed := isFailed(r)
		if failed {
			allFailed++
		}
		for field, value := range conds {
			b := perCondition[field][value]
			if b == nil {
				b = &bucket{}
				perCondition[field][value] = b
			}
			b.total++
			if failed {
				b.failed++
			}
		}
	}

	baseRate := share(allFailed, allTotal)
	if baseRate == 0 {
		return nil
	}

	var out []models.Pattern
	for _, field := range []string{"weather_condition", "traffic_condition"} {
		values := make([]string, 0, len(perCondition[field]))
		for v := range perCondition[field] {
			values = append(values, v)
		}
		sort.Strings(values)
		for _, value := range values {
			b := perCondition[field][value]
			rate := share(b.failed, b.total)
			lift := rate / baseRate
			if lift < LiftThreshold || b.failed == 0 {
				continue
			}
			patternType := "weather_correlation"
			if field == "traffic_condition" {
				patternType = "traffic_correlation"
			}
			out = append(out, models.Pattern{
				Kind:  models.PatternTraditional,
				Type:  patternType,
				Field: field,
				Value: value,
				Description: fmt.Sprintf("failure rate under %q is %.1f%% vs %.1f%% overall (%.2fx lift, %d orders)",
					value, 100*rate, 100*baseRate, lift, b.total),
				Frequency:  b.failed,
				Percentage: pct(b.failed, b.total),
				Score:      lift,
				Severity:   severityFor(rate),
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Value < out[j].Value
	})
	return out
}

var weekdayNames = []string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// temporalPeaks finds the hour-of-day and day-of-week buckets where failures
// concentrate. A peak is only reported when it beats a uniform spread.
func temporalPeaks(set *filter.RelevantSet) []models.Pattern {
	orders := set.Rows(dataset.CollectionOrders)
	var hours [24]int
	var days [7]int
	failed := 0
	for _, r := range orders {
		if !isFailed(r) {
			continue
		}
		t, ok := r.Time("order_date")
		if !ok {
			continue
		}
		failed++
		hours[t.Hour()]++
		days[int(t.Weekday())]++
	}
	if failed == 0 {
		return nil
	}

	var out []models.Pattern
	peakHour, peakHourCount := 0, 0
	for h, n := range hours {
		if n > peakHourCount {
			peakHour, peakHourCount = h, n
		}
	}
	if hourShare := share(peakHourCount, failed); hourShare > 2.0/24 {
		out = append(out, models.Pattern{
			Kind:  models.PatternTraditional,
			Type:  "temporal_peak_hour",
			Field: "order_date",
			Value: fmt.Sprintf("%02d:00", peakHour),
			Description: fmt.Sprintf("failures peak at %02d:00 with %d of %d failed orders (%.1f%%)",
				peakHour, peakHourCount, failed, 100*hourShare),
			Frequency:  peakHourCount,
			Percentage: pct(peakHourCount, failed),
			Score:      hourShare,
			Severity:   severityFor(hourShare),
		})
	}

	peakDay, peakDayCount := 0, 0
	for d, n := range days {
		if n > peakDayCount {
			peakDay, peakDayCount = d, n
		}
	}
	if dayShare := share(peakDayCount, failed); dayShare > 2.0/7 {
		out = append(out, models.Pattern{
			Kind:  models.PatternTraditional,
			Type:  "temporal_peak_day",
			Field: "order_date",
			Value: weekdayNames[peakDay],
			Description: fmt.Sprintf("failures peak on %s with %d of %d failed orders (%.1f%%)",
				weekdayNames[peakDay], peakDayCount, failed, 100*dayShare),
			Frequency:  peakDayCount,
			Percentage: pct(peakDayCount, failed),
			Score:      dayShare,
			Severity:   severityFor(dayShare),
		})
	}
	return out
}
