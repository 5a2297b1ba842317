// Package holiday is the catalog mutation boundary: upserts and soft
// deletes, each followed by response-cache invalidation so stale
// discovery results are never served past a commit.
package holiday

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dannythehat/eerie-escapes/internal/domain"
	"github.com/dannythehat/eerie-escapes/internal/domain/catalog"
	"github.com/dannythehat/eerie-escapes/internal/logger"
)

// InvalidationPattern sweeps every discovery endpoint whose result
// could include a mutated item.
const InvalidationPattern = "/api/v1/holidays*"

// Repository is the write contract for catalog items.
type Repository interface {
	Get(ctx context.Context, idOrSlug string) (catalog.Item, error)
	Put(ctx context.Context, item *catalog.Item) error
}

// Invalidator removes cached responses by key pattern.
type Invalidator interface {
	Invalidate(ctx context.Context, pattern string) (int64, error)
}

// Service applies catalog mutations.
type Service struct {
	repo  Repository
	cache Invalidator
	now   func() time.Time
}

// New creates a mutation service.
func New(repo Repository, cache Invalidator) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Upsert creates or updates an item. A missing ID or slug is derived,
// and the first transition to PUBLISHED stamps PublishedAt. Updates
// merge over the stored record: engagement counters and an existing
// PublishedAt are never overwritten by the admin payload, which does
// not carry them.
func (s *Service) Upsert(ctx context.Context, item catalog.Item) (catalog.Item, error) {
	if item.ID == "" {
		item.ID = uuid.NewString()
	} else {
		existing, err := s.repo.Get(ctx, item.ID)
		switch {
		case err == nil:
			mergeStored(&item, &existing)
		case !errors.Is(err, domain.ErrNotFound):
			return catalog.Item{}, err
		}
	}
	if item.Slug == "" {
		item.Slug = catalog.Slugify(item.Title)
	}
	if item.Status == "" {
		item.Status = catalog.StatusDraft
	}
	if item.Status == catalog.StatusPublished && item.PublishedAt == nil {
		now := s.now()
		item.PublishedAt = &now
	}

	if err := s.repo.Put(ctx, &item); err != nil {
		return catalog.Item{}, err
	}

	s.invalidate(ctx)
	return item, nil
}

// mergeStored carries forward the fields only the discovery pipeline
// writes: view/booking/review counters, the computed rating, and the
// original publication timestamp. The slug survives too when the
// payload leaves it blank, so retitling does not break saved links.
func mergeStored(item, existing *catalog.Item) {
	item.ViewCount = existing.ViewCount
	item.BookingCount = existing.BookingCount
	item.ReviewCount = existing.ReviewCount
	item.AverageRating = existing.AverageRating
	if existing.PublishedAt != nil {
		item.PublishedAt = existing.PublishedAt
	}
	if item.Slug == "" {
		item.Slug = existing.Slug
	}
}

// Archive soft-deletes an item by setting its status to ARCHIVED.
func (s *Service) Archive(ctx context.Context, id string) error {
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}

	item.Status = catalog.StatusArchived
	if err := s.repo.Put(ctx, &item); err != nil {
		return err
	}

	s.invalidate(ctx)
	return nil
}

// invalidate sweeps cached discovery responses. Failure leaves stale
// entries to expire at TTL; it never fails the mutation.
func (s *Service) invalidate(ctx context.Context) {
	n, err := s.cache.Invalidate(ctx, InvalidationPattern)
	if err != nil {
		logger.FromContext(ctx).Warn("cache invalidation failed", zap.Error(err))
		return
	}
	logger.FromContext(ctx).Debug("cache invalidated", zap.Int64("entries", n))
}
