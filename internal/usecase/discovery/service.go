// Package discovery runs the search pipeline: filter compilation,
// ranking, catalog query, pagination, and analytics dispatch.
package discovery

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/dannythehat/eerie-escapes/internal/domain"
	"github.com/dannythehat/eerie-escapes/internal/domain/catalog"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/filter"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/page"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/predicate"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/rank"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/request"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/result"
	"github.com/dannythehat/eerie-escapes/internal/logger"
)

const defaultQueryTimeout = 5 * time.Second

// Service executes discovery requests against the catalog.
type Service struct {
	catalog      Catalog
	recorder     Recorder
	queryTimeout time.Duration
}

// New creates a discovery service. recorder may be nil to disable
// analytics.
func New(c Catalog, recorder Recorder) *Service {
	return &Service{catalog: c, recorder: recorder, queryTimeout: defaultQueryTimeout}
}

// WithQueryTimeout bounds the catalog query so a slow backing store
// cannot indefinitely stall a caller.
func (s *Service) WithQueryTimeout(d time.Duration) *Service {
	if d > 0 {
		s.queryTimeout = d
	}
	return s
}

// List returns a filtered, sorted, paginated listing. The free-text
// query is optional and no analytics are recorded.
func (s *Service) List(ctx context.Context, req *request.Request) (result.Page, error) {
	return s.discover(ctx, req, false)
}

// Search runs a free-text search and records one analytics event,
// including zero-result searches.
func (s *Service) Search(ctx context.Context, req *request.Request) (result.Page, error) {
	return s.discover(ctx, req, true)
}

func (s *Service) discover(ctx context.Context, req *request.Request, record bool) (result.Page, error) {
	pred, applied, err := filter.Compile(req.Filters())
	if err != nil {
		return result.Page{}, err
	}
	if q := req.Query(); q != "" {
		pred = predicate.And(pred, rank.TextCondition(q))
	}

	less := rank.Comparator(req.Sort(), req.Direction())

	qctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	items, total, err := s.catalog.Query(qctx, pred, less, page.Offset(req.Page(), req.Limit()), req.Limit())
	if err != nil {
		return result.Page{}, err
	}

	if record && s.recorder != nil {
		s.recorder.Record(ctx, req.Query(), total, applied, req.CallerID())
	}

	if items == nil {
		items = []catalog.Item{}
	}
	return result.Page{
		Items:      items,
		Pagination: page.NewMeta(req.Page(), req.Limit(), total),
		Filters:    applied,
	}, nil
}

// Get fetches a single published item by id or slug and bumps its
// view counter without blocking the response.
func (s *Service) Get(ctx context.Context, idOrSlug string) (catalog.Item, error) {
	item, err := s.catalog.Get(ctx, idOrSlug)
	if err != nil {
		return catalog.Item{}, err
	}
	if item.Status != catalog.StatusPublished {
		return catalog.Item{}, domain.ErrNotFound
	}

	// View counting is best-effort; the fetch never waits on it.
	go func(id string, parent context.Context) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), s.queryTimeout)
		defer cancel()
		if err := s.catalog.IncrementViews(ctx, id); err != nil {
			logger.FromContext(ctx).Warn("failed to increment view count",
				zap.String("holiday_id", id), zap.Error(err))
		}
	}(item.ID, ctx)

	return item, nil
}
