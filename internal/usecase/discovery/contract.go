package discovery

import (
	"context"

	"github.com/dannythehat/eerie-escapes/internal/domain/catalog"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/filter"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/predicate"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/rank"
)

// Catalog is the read-only accessor contract for holiday listings.
type Catalog interface {
	Query(
		ctx context.Context, pred predicate.Predicate, less rank.Less, offset, limit int,
	) ([]catalog.Item, int, error)
	Get(ctx context.Context, idOrSlug string) (catalog.Item, error)
	IncrementViews(ctx context.Context, id string) error
}

// Recorder accepts search analytics events. Implementations must be
// fire-and-forget: a failed or slow write never delays the search
// response.
type Recorder interface {
	Record(ctx context.Context, term string, resultCount int, applied filter.Applied, callerID string)
}
