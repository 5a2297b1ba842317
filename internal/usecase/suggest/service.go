// Package suggest serves typeahead completions for the search box.
package suggest

import (
	"context"
	"strings"

	"github.com/dannythehat/eerie-escapes/internal/domain/catalog"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/predicate"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/rank"
)

// MinQueryLength is the minimum partial-query length that produces
// suggestions. Shorter queries return an empty list, not an error.
const MinQueryLength = 2

// Suggestion types.
const (
	TypeItem     = "item"
	TypeLocation = "location"
)

// Suggestion is a single completion entry.
type Suggestion struct {
	Type string `json:"type"` // "item" or "location"
	Text string `json:"text"`
	Slug string `json:"slug,omitempty"`
}

// Catalog is the read contract needed for suggestions.
type Catalog interface {
	Query(
		ctx context.Context, pred predicate.Predicate, less rank.Less, offset, limit int,
	) ([]catalog.Item, int, error)
}

// Service produces ranked title and location completions.
type Service struct {
	catalog Catalog
}

// New creates a suggestion service.
func New(c Catalog) *Service {
	return &Service{catalog: c}
}

// Suggest returns up to limit completions for a partial query:
// published item titles containing the partial (ranked by booking
// count descending), then distinct city/country pairs matching it.
func (s *Service) Suggest(ctx context.Context, partial string, limit int) ([]Suggestion, error) {
	partial = strings.TrimSpace(partial)
	if len(partial) < MinQueryLength {
		return []Suggestion{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	published := predicate.StatusIs(catalog.StatusPublished)
	byBookings := rank.Comparator(rank.SortPopularity, rank.Desc)

	titlePred := predicate.And(published,
		predicate.SubstringFold(func(i *catalog.Item) string { return i.Title }, partial))
	titleItems, _, err := s.catalog.Query(ctx, titlePred, byBookings, 0, limit)
	if err != nil {
		return nil, err
	}

	suggestions := make([]Suggestion, 0, limit)
	for _, item := range titleItems {
		suggestions = append(suggestions, Suggestion{Type: TypeItem, Text: item.Title, Slug: item.Slug})
	}
	if len(suggestions) >= limit {
		return suggestions[:limit], nil
	}

	locPred := predicate.And(published, predicate.Or(
		predicate.SubstringFold(func(i *catalog.Item) string { return i.City }, partial),
		predicate.SubstringFold(func(i *catalog.Item) string { return i.Country }, partial),
	))
	locItems, _, err := s.catalog.Query(ctx, locPred, byBookings, 0, 0)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	for _, item := range locItems {
		if len(suggestions) >= limit {
			break
		}
		text := item.City + ", " + item.Country
		key := strings.ToLower(text)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		suggestions = append(suggestions, Suggestion{Type: TypeLocation, Text: text})
	}

	return suggestions, nil
}
