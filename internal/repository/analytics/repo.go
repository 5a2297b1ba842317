// Package analytics persists the append-only search log as a sorted
// set scored by unix timestamp, pruned past the retention window.
package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dannythehat/eerie-escapes/internal/domain"
	domana "github.com/dannythehat/eerie-escapes/internal/domain/analytics"
)

// store is the consumer interface for analytics operations (ISP).
type store interface {
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error)
	ZRemRangeByScore(ctx context.Context, key string, min, max float64) error
}

const logKey = domain.KeyPrefix + "analytics:searches"

// Repo stores and reads search analytics records.
type Repo struct {
	store     store
	retention time.Duration
}

// New creates an analytics repository. retention bounds how long raw
// records are kept before pruning (recommended: twice the largest
// aggregation window).
func New(s store, retention time.Duration) *Repo {
	return &Repo{store: s, retention: retention}
}

// Add appends a record and prunes entries older than the retention
// window in the same call.
func (r *Repo) Add(ctx context.Context, rec domana.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal analytics record: %w", err)
	}
	if err := r.store.ZAdd(ctx, logKey, float64(rec.At), string(data)); err != nil {
		return fmt.Errorf("append analytics record: %w", err)
	}

	cutoff := rec.Time().Add(-r.retention)
	if err := r.store.ZRemRangeByScore(ctx, logKey, 0, float64(cutoff.Unix())); err != nil {
		return fmt.Errorf("prune analytics log: %w", err)
	}
	return nil
}

// Window returns all records with timestamps in [since, until].
// Records that fail to decode are skipped, not fatal.
func (r *Repo) Window(ctx context.Context, since, until time.Time) ([]domana.Record, error) {
	members, err := r.store.ZRangeByScore(ctx, logKey, float64(since.Unix()), float64(until.Unix()))
	if err != nil {
		return nil, fmt.Errorf("read analytics window: %w", err)
	}

	records := make([]domana.Record, 0, len(members))
	for _, m := range members {
		var rec domana.Record
		if err := json.Unmarshal([]byte(m), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
