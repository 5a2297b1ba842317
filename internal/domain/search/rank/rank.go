// Package rank turns a free-text query into a match condition and a
// deterministic ordering strategy for catalog items.
package rank

import (
	"strings"

	"github.com/dannythehat/eerie-escapes/internal/domain/catalog"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/predicate"
)

// Sort names an ordering strategy.
type Sort string

// Ordering strategies.
const (
	SortRelevance  Sort = "relevance"
	SortPopularity Sort = "popularity"
	SortPrice      Sort = "price"
	SortRating     Sort = "rating"
	SortDate       Sort = "date"
	SortDuration   Sort = "duration"
)

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseSort maps a raw sort key to a Sort. Unrecognized keys degrade
// to date desc rather than failing: discovery never 500s on a bad
// sort parameter.
func ParseSort(s string, hasQuery bool) (Sort, bool) {
	switch Sort(strings.ToLower(strings.TrimSpace(s))) {
	case SortRelevance:
		return SortRelevance, true
	case SortPopularity:
		return SortPopularity, true
	case SortPrice:
		return SortPrice, true
	case SortRating:
		return SortRating, true
	case SortDate:
		return SortDate, true
	case SortDuration:
		return SortDuration, true
	case "":
		if hasQuery {
			return SortRelevance, true
		}
		return SortDate, true
	}
	return SortDate, false
}

// ParseDirection maps a raw direction, defaulting to desc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Asc)) {
		return Asc
	}
	return Desc
}

// Tokenize lower-cases, trims, and splits a query on whitespace.
func Tokenize(query string) []string {
	return strings.Fields(strings.ToLower(strings.TrimSpace(query)))
}

// TextCondition compiles a free-text query into a predicate.
// The condition holds when the full phrase appears in any of title,
// description, short description, city, country, or region, or when
// any single word appears in title/description or in the item's
// keyword tags. An empty query matches everything.
func TextCondition(query string) predicate.Predicate {
	phrase := strings.ToLower(strings.TrimSpace(query))
	if phrase == "" {
		return predicate.All()
	}
	words := Tokenize(query)

	return func(item *catalog.Item) bool {
		if containsFold(item.Title, phrase) ||
			containsFold(item.Description, phrase) ||
			containsFold(item.ShortDescription, phrase) ||
			containsFold(item.City, phrase) ||
			containsFold(item.Country, phrase) ||
			containsFold(item.Region, phrase) {
			return true
		}
		for _, w := range words {
			if containsFold(item.Title, w) || containsFold(item.Description, w) || item.HasKeyword(w) {
				return true
			}
		}
		return false
	}
}

// Less is a strict-weak ordering over catalog items.
type Less func(a, b *catalog.Item) bool

// Comparator builds the multi-key comparator for a sort strategy.
// Every strategy ends in an ID tiebreak so that re-running an
// identical request yields an identical ordering.
func Comparator(s Sort, dir Direction) Less {
	var keys []Less
	switch s {
	case SortRelevance:
		keys = []Less{
			descF64(func(i *catalog.Item) float64 { return i.AverageRating }),
			descI64(func(i *catalog.Item) int64 { return i.ReviewCount }),
			descI64(func(i *catalog.Item) int64 { return i.BookingCount }),
		}
	case SortPopularity:
		keys = []Less{
			descI64(func(i *catalog.Item) int64 { return i.BookingCount }),
			descI64(func(i *catalog.Item) int64 { return i.ViewCount }),
			descI64(func(i *catalog.Item) int64 { return i.ReviewCount }),
		}
	case SortPrice:
		keys = []Less{directedF64(func(i *catalog.Item) float64 { return i.BasePrice }, dir)}
	case SortRating:
		keys = []Less{
			directedF64(func(i *catalog.Item) float64 { return i.AverageRating }, dir),
			descI64(func(i *catalog.Item) int64 { return i.ReviewCount }),
		}
	case SortDuration:
		keys = []Less{directedF64(func(i *catalog.Item) float64 { return float64(i.DurationDays) }, dir)}
	case SortDate:
		keys = []Less{directedF64(publishedAtUnix, dir)}
	default:
		keys = []Less{descF64(publishedAtUnix)}
	}

	keys = append(keys, func(a, b *catalog.Item) bool { return a.ID < b.ID })
	return chain(keys)
}

// chain applies comparators in order, falling through on ties.
func chain(keys []Less) Less {
	return func(a, b *catalog.Item) bool {
		for _, less := range keys {
			if less(a, b) {
				return true
			}
			if less(b, a) {
				return false
			}
		}
		return false
	}
}

func publishedAtUnix(i *catalog.Item) float64 {
	if i.PublishedAt == nil {
		return 0
	}
	return float64(i.PublishedAt.Unix())
}

func directedF64(get func(*catalog.Item) float64, dir Direction) Less {
	if dir == Asc {
		return func(a, b *catalog.Item) bool { return get(a) < get(b) }
	}
	return descF64(get)
}

func descF64(get func(*catalog.Item) float64) Less {
	return func(a, b *catalog.Item) bool { return get(a) > get(b) }
}

func descI64(get func(*catalog.Item) int64) Less {
	return func(a, b *catalog.Item) bool { return get(a) > get(b) }
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
