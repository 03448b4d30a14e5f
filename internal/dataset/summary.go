package dataset

import (
	"sort"
	"strings"
	"time"
)

// CollectionSummary describes one loaded collection for the summary endpoint.
type CollectionSummary struct {
	Name     string   `json:"name"`
	Count    int      `json:"count"`
	Columns  []string `json:"columns"`
	Earliest string   `json:"earliest,omitempty"`
	Latest   string   `json:"latest,omitempty"`
}

// Summarize produces per-collection counts, column names and date ranges.
func (d *Dataset) Summarize() []CollectionSummary {
	out := make([]CollectionSummary, 0, len(CollectionNames))
	for _, name := range CollectionNames {
		rows := d.Rows(name)
		s := CollectionSummary{Name: name, Count: len(rows)}
		if len(rows) > 0 {
			for col := range rows[0] {
				s.Columns = append(s.Columns, col)
			}
			sort.Strings(s.Columns)
			earliest, latest := dateRange(rows)
			if !earliest.IsZero() {
				s.Earliest = earliest.Format("2006-01-02")
				s.Latest = latest.Format("2006-01-02")
			}
		}
		out = append(out, s)
	}
	return out
}

func dateRange(rows []Row) (earliest, latest time.Time) {
	for _, row := range rows {
		for col := range row {
			if !strings.Contains(col, "date") && !strings.Contains(col, "time") && !strings.Contains(col, "_at") {
				continue
			}
			t, ok := row.Time(col)
			if !ok {
				continue
			}
			if earliest.IsZero() || t.Before(earliest) {
				earliest = t
			}
			if latest.IsZero() || t.After(latest) {
				latest = t
			}
		}
	}
	return earliest, latest
}
