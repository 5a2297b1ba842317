// Package analytics holds search analytics records and aggregates.
package analytics

import (
	"strings"
	"time"
)

// Record is a single appended search event. Never updated, only
// aggregated by rollups over a trailing window.
type Record struct {
	ID          string `json:"id"`
	Term        string `json:"term"`
	ResultCount int    `json:"resultCount"`
	Filters     string `json:"filters,omitempty"`
	CallerID    string `json:"callerId,omitempty"`
	At          int64  `json:"at"` // unix seconds
}

// Time returns the event timestamp.
func (r Record) Time() time.Time { return time.Unix(r.At, 0) }

// NormalizeTerm canonicalizes a search term for aggregation.
func NormalizeTerm(term string) string {
	return strings.ToLower(strings.TrimSpace(term))
}

// PopularTerm is an aggregated search term over a trailing window.
type PopularTerm struct {
	Term        string  `json:"term"`
	SearchCount int     `json:"searchCount"`
	AvgResults  float64 `json:"avgResults"`
}
