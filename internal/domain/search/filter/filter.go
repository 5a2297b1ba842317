// Package filter compiles raw request parameters into a catalog
// predicate plus a snapshot of the filters actually applied.
package filter

import (
	"strconv"
	"strings"
	"time"

	"github.com/dannythehat/eerie-escapes/internal/domain"
	"github.com/dannythehat/eerie-escapes/internal/domain/catalog"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/predicate"
)

// Raw holds unparsed filter parameters as they arrive on the wire.
// Every field is optional; empty means "no filter".
type Raw struct {
	Country     string
	City        string
	Region      string
	Theme       string
	Difficulty  string
	StartDate   string
	EndDate     string
	MinPrice    string
	MaxPrice    string
	MinDuration string
	MaxDuration string
	MinRating   string
	Status      string
}

// Applied is the filter set that actually took effect, echoed back in
// responses for client-side state sync. Unknown theme/difficulty
// values degrade to "no filter" and are absent here.
type Applied struct {
	Country     *string  `json:"country,omitempty"`
	City        *string  `json:"city,omitempty"`
	Region      *string  `json:"region,omitempty"`
	Theme       *string  `json:"theme,omitempty"`
	Difficulty  *string  `json:"difficulty,omitempty"`
	StartDate   *string  `json:"startDate,omitempty"`
	EndDate     *string  `json:"endDate,omitempty"`
	MinPrice    *float64 `json:"minPrice,omitempty"`
	MaxPrice    *float64 `json:"maxPrice,omitempty"`
	MinDuration *float64 `json:"minDuration,omitempty"`
	MaxDuration *float64 `json:"maxDuration,omitempty"`
	MinRating   *float64 `json:"minRating,omitempty"`
	Status      string   `json:"status"`
}

// Compile turns raw filters into a predicate.
// Shape violations (non-numeric price, malformed date) return a
// field-level domain.ErrInvalidRequest. Unknown enum members are
// silently dropped: discovery never hard-fails on a stray query
// parameter. Status defaults to PUBLISHED when absent or invalid so
// drafts are never exposed by omission.
func Compile(raw Raw) (predicate.Predicate, Applied, error) {
	var preds []predicate.Predicate
	applied := Applied{}

	if raw.Country != "" {
		preds = append(preds, predicate.SubstringFold(func(i *catalog.Item) string { return i.Country }, raw.Country))
		applied.Country = strPtr(raw.Country)
	}
	if raw.City != "" {
		preds = append(preds, predicate.SubstringFold(func(i *catalog.Item) string { return i.City }, raw.City))
		applied.City = strPtr(raw.City)
	}
	if raw.Region != "" {
		preds = append(preds, predicate.SubstringFold(func(i *catalog.Item) string { return i.Region }, raw.Region))
		applied.Region = strPtr(raw.Region)
	}

	if raw.Theme != "" {
		if t, ok := catalog.ParseTheme(raw.Theme); ok {
			preds = append(preds, predicate.ThemeIs(t))
			applied.Theme = strPtr(string(t))
		}
	}
	if raw.Difficulty != "" {
		if d, ok := catalog.ParseDifficulty(raw.Difficulty); ok {
			preds = append(preds, predicate.DifficultyIs(d))
			applied.Difficulty = strPtr(string(d))
		}
	}

	minPrice, err := parseOptionalFloat("minPrice", raw.MinPrice)
	if err != nil {
		return nil, Applied{}, err
	}
	maxPrice, err := parseOptionalFloat("maxPrice", raw.MaxPrice)
	if err != nil {
		return nil, Applied{}, err
	}
	if minPrice != nil || maxPrice != nil {
		preds = append(preds, predicate.NumberRange(func(i *catalog.Item) float64 { return i.BasePrice }, minPrice, maxPrice))
		applied.MinPrice = minPrice
		applied.MaxPrice = maxPrice
	}

	minDur, err := parseOptionalFloat("minDuration", raw.MinDuration)
	if err != nil {
		return nil, Applied{}, err
	}
	maxDur, err := parseOptionalFloat("maxDuration", raw.MaxDuration)
	if err != nil {
		return nil, Applied{}, err
	}
	if minDur != nil || maxDur != nil {
		preds = append(preds, predicate.NumberRange(func(i *catalog.Item) float64 { return float64(i.DurationDays) }, minDur, maxDur))
		applied.MinDuration = minDur
		applied.MaxDuration = maxDur
	}

	minRating, err := parseOptionalFloat("minRating", raw.MinRating)
	if err != nil {
		return nil, Applied{}, err
	}
	if minRating != nil {
		preds = append(preds, predicate.MinRating(*minRating))
		applied.MinRating = minRating
	}

	start, err := parseOptionalDate("startDate", raw.StartDate)
	if err != nil {
		return nil, Applied{}, err
	}
	end, err := parseOptionalDate("endDate", raw.EndDate)
	if err != nil {
		return nil, Applied{}, err
	}
	if start != nil || end != nil {
		preds = append(preds, predicate.DateWindow(start, end))
		if start != nil {
			applied.StartDate = strPtr(start.Format(time.DateOnly))
		}
		if end != nil {
			applied.EndDate = strPtr(end.Format(time.DateOnly))
		}
	}

	status := catalog.StatusPublished
	if raw.Status != "" {
		if st, ok := catalog.ParseStatus(raw.Status); ok {
			status = st
		}
	}
	preds = append(preds, predicate.StatusIs(status))
	applied.Status = string(status)

	return predicate.And(preds...), applied, nil
}

func parseOptionalFloat(field, s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil, domain.NewFieldError(field, "must be a number")
	}
	return &v, nil
}

// parseOptionalDate accepts 2006-01-02 or RFC3339.
func parseOptionalDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return &t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	return nil, domain.NewFieldError(field, "must be a date (YYYY-MM-DD)")
}

func strPtr(s string) *string { return &s }
