// Package models contains shared data models used across the failsight codebase.
package models

import "time"

// QueryEntities is the structured result of entity extraction over a raw query.
type QueryEntities struct {
	Locations      []string        `json:"locations"`
	TimePeriods    []string        `json:"time_periods"`
	Metrics        []string        `json:"metrics"`
	Keywords       []string        `json:"keywords"`
	NumericFilters []NumericFilter `json:"numeric_filters"`
}

// NumericFilter is a comparator extracted from the query, bound to a known metric.
type NumericFilter struct {
	Field    string  `json:"field"`
	Operator string  `json:"operator"`
	Value    float64 `json:"value"`
}

// TimeRange is a resolved half-open [Start, End) window.
type TimeRange struct {
	Phrase string    `json:"phrase"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// Matches reports whether t falls inside the range.
func (r TimeRange) Matches(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}
