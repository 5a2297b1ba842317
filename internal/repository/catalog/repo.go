// Package catalog is the discovery engine's read-mostly accessor for
// holiday listings stored as one hash per item.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dannythehat/eerie-escapes/internal/domain"
	domcat "github.com/dannythehat/eerie-escapes/internal/domain/catalog"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/predicate"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/rank"
)

// store is the consumer interface for catalog operations (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HIncrBy(ctx context.Context, key, field string, delta int64) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

const (
	itemKeyPrefix = domain.KeyPrefix + "holiday:"
	slugKeyPrefix = domain.KeyPrefix + "slug:"
)

// Repo implements the catalog accessor over the key-value store.
type Repo struct {
	store store
}

// New creates a catalog repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Query evaluates a predicate over the whole catalog keyspace, orders
// matches with the comparator, and returns the [offset, offset+limit)
// window plus the total match count.
func (r *Repo) Query(
	ctx context.Context, pred predicate.Predicate, less rank.Less, offset, limit int,
) ([]domcat.Item, int, error) {
	items, err := r.loadAll(ctx)
	if err != nil {
		return nil, 0, err
	}

	matched := items[:0]
	for i := range items {
		if pred(&items[i]) {
			matched = append(matched, items[i])
		}
	}

	sort.SliceStable(matched, func(i, j int) bool { return less(&matched[i], &matched[j]) })

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

// Get fetches a single item by id or slug.
func (r *Repo) Get(ctx context.Context, idOrSlug string) (domcat.Item, error) {
	id := idOrSlug
	if data, err := r.store.Get(ctx, slugKeyPrefix+idOrSlug); err == nil {
		id = string(data)
	}

	fields, err := r.store.HGetAll(ctx, itemKeyPrefix+id)
	if err != nil {
		return domcat.Item{}, wrapUpstream(fmt.Errorf("get holiday %s: %w", id, err))
	}
	if len(fields) == 0 {
		return domcat.Item{}, domain.ErrNotFound
	}
	return itemFromFields(fields), nil
}

// Put stores an item and maintains the slug lookup key.
func (r *Repo) Put(ctx context.Context, item *domcat.Item) error {
	if item.ID == "" {
		return fmt.Errorf("put holiday: id is required")
	}
	if err := r.store.HSet(ctx, itemKeyPrefix+item.ID, itemToFields(item)); err != nil {
		return wrapUpstream(fmt.Errorf("put holiday %s: %w", item.ID, err))
	}
	if item.Slug != "" {
		if err := r.store.Set(ctx, slugKeyPrefix+item.Slug, []byte(item.ID)); err != nil {
			return wrapUpstream(fmt.Errorf("put holiday slug %s: %w", item.Slug, err))
		}
	}
	return nil
}

// Delete removes an item hash (hard removal; soft delete is a status
// change handled by the caller).
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.Del(ctx, itemKeyPrefix+id); err != nil {
		return wrapUpstream(fmt.Errorf("delete holiday %s: %w", id, err))
	}
	return nil
}

// IncrementViews bumps the view counter for an item.
func (r *Repo) IncrementViews(ctx context.Context, id string) error {
	if err := r.store.HIncrBy(ctx, itemKeyPrefix+id, fieldViewCount, 1); err != nil {
		return wrapUpstream(fmt.Errorf("increment views %s: %w", id, err))
	}
	return nil
}

// loadAll scans the catalog keyspace and decodes every item.
func (r *Repo) loadAll(ctx context.Context) ([]domcat.Item, error) {
	keys, err := r.store.Scan(ctx, itemKeyPrefix+"*")
	if err != nil {
		return nil, wrapUpstream(fmt.Errorf("scan holidays: %w", err))
	}
	if len(keys) == 0 {
		return nil, nil
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, wrapUpstream(fmt.Errorf("load holidays: %w", err))
	}

	items := make([]domcat.Item, 0, len(hashes))
	for _, fields := range hashes {
		if len(fields) == 0 {
			continue // expired between scan and fetch
		}
		items = append(items, itemFromFields(fields))
	}
	return items, nil
}

// wrapUpstream tags store failures so the transport maps them to 503.
func wrapUpstream(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
}
