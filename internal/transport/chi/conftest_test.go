package chi

import (
	"context"
	"net/http"
	"time"

	chirouter "github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dannythehat/eerie-escapes/internal/domain"
	"github.com/dannythehat/eerie-escapes/internal/domain/catalog"
	domana "github.com/dannythehat/eerie-escapes/internal/domain/analytics"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/predicate"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/rank"
	analyticsuc "github.com/dannythehat/eerie-escapes/internal/usecase/analytics"
	discoveryuc "github.com/dannythehat/eerie-escapes/internal/usecase/discovery"
	healthuc "github.com/dannythehat/eerie-escapes/internal/usecase/health"
	holidayuc "github.com/dannythehat/eerie-escapes/internal/usecase/holiday"
	suggestuc "github.com/dannythehat/eerie-escapes/internal/usecase/suggest"
)

// memCatalog backs the full server test with an in-memory catalog.
type memCatalog struct {
	items    map[string]catalog.Item
	queryErr error
}

func newMemCatalog(items ...catalog.Item) *memCatalog {
	m := &memCatalog{items: make(map[string]catalog.Item)}
	for _, it := range items {
		m.items[it.ID] = it
	}
	return m
}

func (m *memCatalog) Query(
	_ context.Context, pred predicate.Predicate, less rank.Less, offset, limit int,
) ([]catalog.Item, int, error) {
	if m.queryErr != nil {
		return nil, 0, m.queryErr
	}
	var matched []catalog.Item
	for _, it := range m.items {
		item := it
		if pred(&item) {
			matched = append(matched, item)
		}
	}
	for i := 1; i < len(matched); i++ {
		for j := i; j > 0 && less(&matched[j], &matched[j-1]); j-- {
			matched[j], matched[j-1] = matched[j-1], matched[j]
		}
	}
	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := total
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return matched[offset:end], total, nil
}

func (m *memCatalog) Get(_ context.Context, idOrSlug string) (catalog.Item, error) {
	for _, it := range m.items {
		if it.ID == idOrSlug || it.Slug == idOrSlug {
			return it, nil
		}
	}
	return catalog.Item{}, domain.ErrNotFound
}

func (m *memCatalog) Put(_ context.Context, item *catalog.Item) error {
	m.items[item.ID] = *item
	return nil
}

func (m *memCatalog) IncrementViews(_ context.Context, _ string) error {
	return nil
}

// memAnalytics records events in memory.
type memAnalytics struct {
	records []domana.Record
}

func (m *memAnalytics) Add(_ context.Context, rec domana.Record) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memAnalytics) Window(_ context.Context, _, _ time.Time) ([]domana.Record, error) {
	return m.records, nil
}

type noopInvalidator struct{ calls int }

func (n *noopInvalidator) Invalidate(_ context.Context, _ string) (int64, error) {
	n.calls++
	return 0, nil
}

type okPinger struct{ err error }

func (p *okPinger) Ping(_ context.Context) error { return p.err }

type testEnv struct {
	router    *chirouter.Mux
	catalog   *memCatalog
	analytics *analyticsuc.Service
	inv       *noopInvalidator
	pinger    *okPinger
}

// newTestEnv wires the full route surface with in-memory backends and
// pass-through cache/limit middleware.
func newTestEnv(items ...catalog.Item) *testEnv {
	passthrough := func(next http.Handler) http.Handler { return next }
	return newTestEnvCached(
		func(time.Duration) func(http.Handler) http.Handler { return passthrough },
		items...,
	)
}

// newTestEnvCached is newTestEnv with a caller-supplied cache
// middleware factory.
func newTestEnvCached(
	cached func(time.Duration) func(http.Handler) http.Handler, items ...catalog.Item,
) *testEnv {
	cat := newMemCatalog(items...)
	analyticsSvc := analyticsuc.New(&memAnalytics{})
	inv := &noopInvalidator{}
	pinger := &okPinger{}

	server := NewServer(
		discoveryuc.New(cat, analyticsSvc),
		suggestuc.New(cat),
		analyticsSvc,
		holidayuc.New(cat, inv),
		healthuc.New(pinger),
		10,
		zap.NewNop(),
	)

	passthrough := func(next http.Handler) http.Handler { return next }

	r := chirouter.NewRouter()
	server.Routes(r, cached, passthrough, passthrough)

	return &testEnv{router: r, catalog: cat, analytics: analyticsSvc, inv: inv, pinger: pinger}
}

func publishedFixture(id, title string, mutate func(*catalog.Item)) catalog.Item {
	pub := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	item := catalog.Item{
		ID:          id,
		Slug:        catalog.Slugify(title),
		Title:       title,
		Status:      catalog.StatusPublished,
		Country:     "Romania",
		City:        "Brasov",
		BasePrice:   500,
		Currency:    "USD",
		PublishedAt: &pub,
	}
	if mutate != nil {
		mutate(&item)
	}
	return item
}
