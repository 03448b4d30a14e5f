package query

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rohanmhetar/failsight/pkg/models"
)

// timeSpec pairs a vocabulary pattern with its resolver. Resolvers receive
// the regexp submatches and the reference time and return a half-open
// [start, end) window in UTC.
type timeSpec struct {
	re      *regexp.Regexp
	resolve func(m []string, ref time.Time) (time.Time, time.Time)
}

var timeSpecs = []timeSpec{
	{
		re: regexp.MustCompile(`\blast\s+(\d{1,3})\s+days?\b`),
		resolve: func(m []string, ref time.Time) (time.Time, time.Time) {
			n, _ := strconv.Atoi(m[1])
			sod := startOfDay(ref)
			return sod.AddDate(0, 0, -n), sod.AddDate(0, 0, 1)
		},
	},
	{
		re: regexp.MustCompile(`\byesterday\b`),
		resolve: func(_ []string, ref time.Time) (time.Time, time.Time) {
			sod := startOfDay(ref)
			return sod.AddDate(0, 0, -1), sod
		},
	},
	{
		re: regexp.MustCompile(`\btoday\b`),
		resolve: func(_ []string, ref time.Time) (time.Time, time.Time) {
			sod := startOfDay(ref)
			return sod, sod.AddDate(0, 0, 1)
		},
	},
	{
		re: regexp.MustCompile(`\blast\s+week\b`),
		resolve: func(_ []string, ref time.Time) (time.Time, time.Time) {
			sod := startOfDay(ref)
			return sod.AddDate(0, 0, -7), sod
		},
	},
	{
		re: regexp.MustCompile(`\bthis\s+week\b`),
		resolve: func(_ []string, ref time.Time) (time.Time, time.Time) {
			ws := weekStart(ref)
			return ws, ws.AddDate(0, 0, 7)
		},
	},
	{
		re: regexp.MustCompile(`\blast\s+month\b`),
		resolve: func(_ []string, ref time.Time) (time.Time, time.Time) {
			fom := firstOfMonth(ref)
			return fom.AddDate(0, -1, 0), fom
		},
	},
	{
		re: regexp.MustCompile(`\bthis\s+month\b`),
		resolve: func(_ []string, ref time.Time) (time.Time, time.Time) {
			fom := firstOfMonth(ref)
			return fom, fom.AddDate(0, 1, 0)
		},
	},
	{
		re: regexp.MustCompile(`\blast\s+year\b`),
		resolve: func(_ []string, ref time.Time) (time.Time, time.Time) {
			jan := time.Date(ref.Year()-1, time.January, 1, 0, 0, 0, 0, time.UTC)
			return jan, jan.AddDate(1, 0, 0)
		},
	},
	{
		re: regexp.MustCompile(`\b(january|february|march|april|may|june|july|august|september|october|november|december|jan|feb|mar|apr|jun|jul|aug|sept|sep|oct|nov|dec)\b`),
		resolve: func(m []string, ref time.Time) (time.Time, time.Time) {
			month := monthByName[m[1]]
			year := ref.Year()
			if month > ref.Month() {
				year--
			}
			first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
			return first, first.AddDate(0, 1, 0)
		},
	},
	{
		re: regexp.MustCompile(`\b(20\d{2})\b`),
		resolve: func(m []string, _ time.Time) (time.Time, time.Time) {
			y, _ := strconv.Atoi(m[1])
			jan := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
			return jan, jan.AddDate(1, 0, 0)
		},
	},
}

var monthByName = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sept": time.September, "sep": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func weekStart(t time.Time) time.Time {
	sod := startOfDay(t)
	offset := (int(sod.Weekday()) + 6) % 7 // Monday-based
	return sod.AddDate(0, 0, -offset)
}

func firstOfMonth(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// extractTimeRanges collects every time expression in the query, ordered by
// position in the text so the earliest mention is the primary range.
func extractTimeRanges(lowered string, ref time.Time) []models.TimeRange {
	type hit struct {
		pos int
		tr  models.TimeRange
	}
	var hits []hit
	claimed := make([]bool, len(lowered))
	for _, spec := range timeSpecs {
		for _, loc := range spec.re.FindAllStringSubmatchIndex(lowered, -1) {
			if overlaps(claimed, loc[0], loc[1]) {
				continue
			}
			claim(claimed, loc[0], loc[1])
			m := submatches(lowered, loc)
			start, end := spec.resolve(m, ref)
			hits = append(hits, hit{
				pos: loc[0],
				tr: models.TimeRange{
					Phrase: strings.TrimSpace(lowered[loc[0]:loc[1]]),
					Start:  start,
					End:    end,
				},
			})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })
	out := make([]models.TimeRange, len(hits))
	for i, h := range hits {
		out[i] = h.tr
	}
	return out
}

func submatches(s string, loc []int) []string {
	out := make([]string, 0, len(loc)/2)
	for i := 0; i+1 < len(loc); i += 2 {
		if loc[i] < 0 {
			out = append(out, "")
			continue
		}
		out = append(out, s[loc[i]:loc[i+1]])
	}
	return out
}

func overlaps(claimed []bool, from, to int) bool {
	for i := from; i < to; i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}

func claim(claimed []bool, from, to int) {
	for i := from; i < to; i++ {
		claimed[i] = true
	}
}
