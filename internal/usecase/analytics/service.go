// Package analytics records search events and aggregates
// popular-search statistics over a trailing window.
package analytics

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domana "github.com/dannythehat/eerie-escapes/internal/domain/analytics"
	"github.com/dannythehat/eerie-escapes/internal/domain/search/filter"
	"github.com/dannythehat/eerie-escapes/internal/logger"
)

const writeTimeout = 3 * time.Second

// Repository is the storage contract for the analytics log.
type Repository interface {
	Add(ctx context.Context, rec domana.Record) error
	Window(ctx context.Context, since, until time.Time) ([]domana.Record, error)
}

// Service records searches and serves popular-term rollups.
type Service struct {
	repo Repository
	now  func() time.Time
	wg   sync.WaitGroup
}

// New creates an analytics service.
func New(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Record appends one search event without blocking the caller.
// The write runs on a detached context: a caller disconnect after
// dispatch does not cancel it, and failures are logged and swallowed.
func (s *Service) Record(
	ctx context.Context, term string, resultCount int, applied filter.Applied, callerID string,
) {
	rec := domana.Record{
		ID:          uuid.NewString(),
		Term:        domana.NormalizeTerm(term),
		ResultCount: resultCount,
		CallerID:    callerID,
		At:          s.now().Unix(),
	}
	if data, err := json.Marshal(applied); err == nil {
		rec.Filters = string(data)
	}

	log := logger.FromContext(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
		defer cancel()
		if err := s.repo.Add(wctx, rec); err != nil {
			log.Warn("failed to record search analytics",
				zap.String("term", rec.Term), zap.Error(err))
		}
	}()
}

// Drain waits for in-flight analytics writes; called at shutdown.
func (s *Service) Drain() {
	s.wg.Wait()
}

// PopularTerms aggregates the trailing window: occurrences and average
// result count per normalized term, restricted to searches that
// returned at least one result, ordered by occurrence count
// descending and capped at limit.
func (s *Service) PopularTerms(ctx context.Context, windowDays, limit int) ([]domana.PopularTerm, error) {
	until := s.now()
	since := until.AddDate(0, 0, -windowDays)

	records, err := s.repo.Window(ctx, since, until)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		count   int
		results int
	}
	buckets := make(map[string]*bucket)
	for _, rec := range records {
		if rec.Term == "" || rec.ResultCount < 1 {
			continue
		}
		b := buckets[rec.Term]
		if b == nil {
			b = &bucket{}
			buckets[rec.Term] = b
		}
		b.count++
		b.results += rec.ResultCount
	}

	terms := make([]domana.PopularTerm, 0, len(buckets))
	for term, b := range buckets {
		terms = append(terms, domana.PopularTerm{
			Term:        term,
			SearchCount: b.count,
			AvgResults:  float64(b.results) / float64(b.count),
		})
	}

	sort.Slice(terms, func(i, j int) bool {
		if terms[i].SearchCount != terms[j].SearchCount {
			return terms[i].SearchCount > terms[j].SearchCount
		}
		return terms[i].Term < terms[j].Term
	})

	if limit > 0 && len(terms) > limit {
		terms = terms[:limit]
	}
	return terms, nil
}
