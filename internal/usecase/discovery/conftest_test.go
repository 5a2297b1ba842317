package discovery

import (
	"context"
	"sync"

	"github.com/dannythehat/eerie-escapes/internal/domain/catalog"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/filter"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/predicate"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/rank"
)

// mockCatalog filters and sorts its fixture items in memory, mirroring
// the repository contract.
type mockCatalog struct {
	items      []catalog.Item
	queryErr   error
	getErr     error
	incrErr    error
	lastOffset int
	lastLimit  int

	mu        sync.Mutex
	viewBumps []string
	bumped    chan struct{}
}

func newMockCatalog(items ...catalog.Item) *mockCatalog {
	return &mockCatalog{items: items, bumped: make(chan struct{}, 16)}
}

func (m *mockCatalog) Query(
	_ context.Context, pred predicate.Predicate, less rank.Less, offset, limit int,
) ([]catalog.Item, int, error) {
	if m.queryErr != nil {
		return nil, 0, m.queryErr
	}
	m.lastOffset, m.lastLimit = offset, limit

	var matched []catalog.Item
	for i := range m.items {
		if pred(&m.items[i]) {
			matched = append(matched, m.items[i])
		}
	}
	// insertion sort keeps the mock dependency-free
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

func (m *mockCatalog) Get(_ context.Context, idOrSlug string) (catalog.Item, error) {
	if m.getErr != nil {
		return catalog.Item{}, m.getErr
	}
	for _, it := range m.items {
		if it.ID == idOrSlug || it.Slug == idOrSlug {
			return it, nil
		}
	}
	return catalog.Item{}, errNotFoundForTest
}

func (m *mockCatalog) IncrementViews(_ context.Context, id string) error {
	m.mu.Lock()
	m.viewBumps = append(m.viewBumps, id)
	m.mu.Unlock()
	m.bumped <- struct{}{}
	return m.incrErr
}

func (m *mockCatalog) bumpedIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.viewBumps...)
}

// mockRecorder captures analytics dispatches.
type mockRecorder struct {
	mu    sync.Mutex
	calls []recordedCall
}

type recordedCall struct {
	term        string
	resultCount int
	applied     filter.Applied
	callerID    string
}

func (m *mockRecorder) Record(_ context.Context, term string, resultCount int, applied filter.Applied, callerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, recordedCall{term, resultCount, applied, callerID})
}

func (m *mockRecorder) recorded() []recordedCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]recordedCall(nil), m.calls...)
}
