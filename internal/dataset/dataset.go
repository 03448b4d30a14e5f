// Package dataset holds the in-memory tabular collections the analysis
// engine operates on. Collections are loaded once and are read-only for
// the lifetime of a query; concurrent readers need no locking.
package dataset

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Collection names. Every store backend loads exactly this set.
const (
	CollectionOrders          = "orders"
	CollectionWarehouses      = "warehouses"
	CollectionFleetLogs       = "fleet_logs"
	CollectionExternalFactors = "external_factors"
	CollectionClients         = "clients"
	CollectionDrivers         = "drivers"
	CollectionFeedback        = "feedback"
	CollectionWarehouseLogs   = "warehouse_logs"
)

// CollectionNames lists all collections in a stable order.
var CollectionNames = []string{
	CollectionOrders,
	CollectionWarehouses,
	CollectionFleetLogs,
	CollectionExternalFactors,
	CollectionClients,
	CollectionDrivers,
	CollectionFeedback,
	CollectionWarehouseLogs,
}

// Row is one record: column name to scalar value. Values may be string,
// float64, time.Time, or nil; the accessors absorb type mismatches.
type Row map[string]any

// Str returns the trimmed string value of a column, or "" when absent or nil.
func (r Row) Str(col string) string {
	v, ok := r[col]
	if !ok || v == nil {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case time.Time:
		return s.Format(time.RFC3339)
	default:
		return ""
	}
}

// Float returns the numeric value of a column, or 0 and false when the
// column is absent or not parseable as a number.
func (r Row) Float(col string) (float64, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// rowTimeLayouts are tried in order when a timestamp arrives as a string.
var rowTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Time returns the timestamp value of a column, or the zero time and false
// when absent or unparseable. String timestamps are interpreted as UTC.
func (r Row) Time(col string) (time.Time, bool) {
	v, ok := r[col]
	if !ok || v == nil {
		return time.Time{}, false
	}
	switch t := v.(type) {
	case time.Time:
		return t.UTC(), true
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range rowTimeLayouts {
			if parsed, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	default:
		return time.Time{}, false
	}
}

// Dataset bundles all collections plus the lexicon derived from them.
type Dataset struct {
	Collections map[string][]Row
	Lexicon     *Lexicon
	LoadedAt    time.Time
}

// New builds a Dataset from raw collections and derives the lexicon.
func New(collections map[string][]Row) *Dataset {
	ds := &Dataset{
		Collections: collections,
		LoadedAt:    time.Now().UTC(),
	}
	ds.Lexicon = buildLexicon(ds)
	return ds
}

// Rows returns the rows of a named collection (nil when unknown).
func (d *Dataset) Rows(name string) []Row {
	return d.Collections[name]
}

// TotalRows counts rows across every collection.
func (d *Dataset) TotalRows() int {
	total := 0
	for _, rows := range d.Collections {
		total += len(rows)
	}
	return total
}

// Empty reports whether the dataset holds no rows at all.
func (d *Dataset) Empty() bool {
	return d.TotalRows() == 0
}

// Lexicon is the dataset-driven gazetteer used for entity extraction:
// every distinct city, state, client name, warehouse name and failure
// reason actually present in the data.
type Lexicon struct {
	Cities         map[string]string // lowercase -> canonical
	States         map[string]string
	Clients        map[string]string
	Warehouses     map[string]string
	FailureReasons map[string]string
}

func buildLexicon(ds *Dataset) *Lexicon {
	lex := &Lexicon{
		Cities:         map[string]string{},
		States:         map[string]string{},
		Clients:        map[string]string{},
		Warehouses:     map[string]string{},
		FailureReasons: map[string]string{},
	}

	add := func(m map[string]string, v string) {
		if v == "" {
			return
		}
		m[strings.ToLower(v)] = v
	}

	for _, row := range ds.Rows(CollectionOrders) {
		add(lex.Cities, row.Str("city"))
		add(lex.States, row.Str("state"))
		add(lex.FailureReasons, row.Str("failure_reason"))
	}
	for _, row := range ds.Rows(CollectionWarehouses) {
		add(lex.Cities, row.Str("city"))
		add(lex.States, row.Str("state"))
		add(lex.Warehouses, row.Str("warehouse_name"))
	}
	for _, row := range ds.Rows(CollectionClients) {
		add(lex.Cities, row.Str("city"))
		add(lex.States, row.Str("state"))
		add(lex.Clients, row.Str("client_name"))
	}
	for _, row := range ds.Rows(CollectionDrivers) {
		add(lex.Cities, row.Str("city"))
		add(lex.States, row.Str("state"))
	}

	return lex
}

// Locations returns every known city and state, longest first so that
// multi-word names match before their substrings.
func (l *Lexicon) Locations() []string {
	out := make([]string, 0, len(l.Cities)+len(l.States))
	for _, v := range l.Cities {
		out = append(out, v)
	}
	for _, v := range l.States {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// KnownLocation reports whether the token names a city or state in the data.
func (l *Lexicon) KnownLocation(token string) bool {
	t := strings.ToLower(strings.TrimSpace(token))
	_, city := l.Cities[t]
	_, state := l.States[t]
	return city || state
}
