// Package predicate provides store-agnostic boolean conditions over
// catalog items, composed from small constructors so each filter rule
// is unit-testable in isolation.
package predicate

import (
	"strings"
	"time"

	"github.com/dannythehat/eerie-escapes/internal/domain/catalog"
)

// Predicate is a compiled boolean condition over a catalog item.
type Predicate func(item *catalog.Item) bool

// All matches every item. The zero filter set compiles to this.
func All() Predicate {
	return func(*catalog.Item) bool { return true }
}

// And combines predicates conjunctively.
func And(preds ...Predicate) Predicate {
	return func(item *catalog.Item) bool {
		for _, p := range preds {
			if !p(item) {
				return false
			}
		}
		return true
	}
}

// Or combines predicates disjunctively.
func Or(preds ...Predicate) Predicate {
	return func(item *catalog.Item) bool {
		for _, p := range preds {
			if p(item) {
				return true
			}
		}
		return false
	}
}

// SubstringFold matches when the selected field contains the value,
// case-insensitively.
func SubstringFold(get func(*catalog.Item) string, value string) Predicate {
	needle := strings.ToLower(value)
	return func(item *catalog.Item) bool {
		return strings.Contains(strings.ToLower(get(item)), needle)
	}
}

// NumberRange matches when the selected numeric field lies within the
// inclusive [min, max] bounds. Nil bounds are open.
func NumberRange(get func(*catalog.Item) float64, min, max *float64) Predicate {
	return func(item *catalog.Item) bool {
		v := get(item)
		if min != nil && v < *min {
			return false
		}
		if max != nil && v > *max {
			return false
		}
		return true
	}
}

// ThemeIs matches items with the given theme.
func ThemeIs(t catalog.Theme) Predicate {
	return func(item *catalog.Item) bool { return item.Theme == t }
}

// DifficultyIs matches items with the given difficulty.
func DifficultyIs(d catalog.Difficulty) Predicate {
	return func(item *catalog.Item) bool { return item.Difficulty == d }
}

// StatusIs matches items with the given publication status.
func StatusIs(s catalog.Status) Predicate {
	return func(item *catalog.Item) bool { return item.Status == s }
}

// DateWindow matches items available inside the requested window.
// Year-round items match any window. A nil item date leaves that
// bound unconstrained.
func DateWindow(start, end *time.Time) Predicate {
	return func(item *catalog.Item) bool {
		if item.IsYearRound {
			return true
		}
		if start != nil && item.StartDate != nil && item.StartDate.Before(*start) {
			return false
		}
		if end != nil && item.EndDate != nil && item.EndDate.After(*end) {
			return false
		}
		return true
	}
}

// MinRating matches items whose average rating is at least min.
func MinRating(min float64) Predicate {
	return func(item *catalog.Item) bool { return item.AverageRating >= min }
}
