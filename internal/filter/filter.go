// Package filter narrows the dataset to the rows relevant to an interpreted
// query. Filters never mutate the dataset; they build fresh slices over the
// shared rows.
package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rohanmhetar/failsight/internal/dataset"
	"github.com/rohanmhetar/failsight/pkg/models"
)

// RelevantSet is the filtered view of the dataset for one query, with a
// provenance note per applied criterion.
type RelevantSet struct {
	Collections   map[string][]dataset.Row
	Criteria      []string
	Unconstrained bool
}

// Rows returns the filtered rows of a collection.
func (s *RelevantSet) Rows(name string) []dataset.Row {
	return s.Collections[name]
}

// TotalRows counts rows across all filtered collections.
func (s *RelevantSet) TotalRows() int {
	total := 0
	for _, rows := range s.Collections {
		total += len(rows)
	}
	return total
}

// DataSources lists the non-empty collections, sorted.
func (s *RelevantSet) DataSources() []string {
	var out []string
	for name, rows := range s.Collections {
		if len(rows) > 0 {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// locationColumns maps each collection to the columns a location entity can
// match against.
var locationColumns = map[string][]string{
	dataset.CollectionOrders:          {"city", "state"},
	dataset.CollectionWarehouses:      {"city", "state"},
	dataset.CollectionClients:         {"city", "state"},
	dataset.CollectionDrivers:         {"city", "state"},
	dataset.CollectionExternalFactors: {"city"},
}

// timeColumns maps each collection to its primary timestamp column.
var timeColumns = map[string]string{
	dataset.CollectionOrders:          "order_date",
	dataset.CollectionFleetLogs:       "departure_time",
	dataset.CollectionExternalFactors: "recorded_at",
	dataset.CollectionFeedback:        "created_at",
	dataset.CollectionWarehouseLogs:   "picking_start",
}

// numericColumns maps filterable metric names to collection columns.
var numericColumns = map[string]struct {
	collection string
	column     string
}{
	"order_amount": {dataset.CollectionOrders, "amount"},
}

// Apply filters the dataset by the extracted entities: locations OR-combined,
// time ranges OR-combined, and the criterion kinds AND-combined. Collections
// that carry none of the filtered columns pass through whole. When a filtered
// criterion leaves no matching orders, the whole dataset is returned instead
// and the set is flagged unconstrained.
func Apply(ds *dataset.Dataset, ents models.QueryEntities, ranges []models.TimeRange) *RelevantSet {
	set := &RelevantSet{Collections: map[string][]dataset.Row{}}
	for name, rows := range ds.Collections {
		set.Collections[name] = rows
	}

	applied := false

	if len(ents.Locations) > 0 {
		applied = true
		set.Criteria = append(set.Criteria,
			fmt.Sprintf("location in {%s}", strings.Join(ents.Locations, ", ")))
		wanted := make(map[string]bool, len(ents.Locations))
		for _, loc := range ents.Locations {
			wanted[strings.ToLower(loc)] = true
		}
		for name, cols := range locationColumns {
			set.Collections[name] = keep(set.Collections[name], func(r dataset.Row) bool {
				for _, col := range cols {
					if wanted[strings.ToLower(r.Str(col))] {
						return true
					}
				}
				return false
			})
		}
	}

	if len(ranges) > 0 {
		applied = true
		for _, tr := range ranges {
			set.Criteria = append(set.Criteria,
				fmt.Sprintf("time %q [%s, %s)", tr.Phrase,
					tr.Start.Format("2006-01-02"), tr.End.Format("2006-01-02")))
		}
		for name, col := range timeColumns {
			set.Collections[name] = keep(set.Collections[name], func(r dataset.Row) bool {
				t, ok := r.Time(col)
				if !ok {
					return false
				}
				for _, tr := range ranges {
					if tr.Matches(t) {
						return true
					}
				}
				return false
			})
		}
	}

	for _, nf := range ents.NumericFilters {
		target, ok := numericColumns[nf.Field]
		if !ok {
			continue
		}
		applied = true
		set.Criteria = append(set.Criteria,
			fmt.Sprintf("%s %s %g", nf.Field, nf.Operator, nf.Value))
		filter := nf
		set.Collections[target.collection] = keep(set.Collections[target.collection], func(r dataset.Row) bool {
			v, ok := r.Float(target.column)
			return ok && compare(v, filter.Operator, filter.Value)
		})
	}

	if !applied {
		set.Unconstrained = true
		return set
	}

	// Filtering to nothing is worse than answering from everything.
	if len(set.Collections[dataset.CollectionOrders]) == 0 &&
		len(ds.Rows(dataset.CollectionOrders)) > 0 {
		fallback := &RelevantSet{
			Collections:   map[string][]dataset.Row{},
			Criteria:      append(set.Criteria, "no rows matched; analyzing full dataset"),
			Unconstrained: true,
		}
		for name, rows := range ds.Collections {
			fallback.Collections[name] = rows
		}
		return fallback
	}
	return set
}

func keep(rows []dataset.Row, pred func(dataset.Row) bool) []dataset.Row {
	var out []dataset.Row
	for _, r := range rows {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}

func compare(v float64, op string, bound float64) bool {
	switch op {
	case ">":
		return v > bound
	case ">=":
		return v >= bound
	case "<":
		return v < bound
	case "<=":
		return v <= bound
	default:
		return false
	}
}
