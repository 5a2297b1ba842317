// Package health reports readiness of the engine's dependencies.
package health

import (
	"context"
	"fmt"
)

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Service aggregates dependency health.
type Service struct {
	store Pinger
}

// New creates a health service.
func New(store Pinger) *Service {
	return &Service{store: store}
}

// Check returns nil when all dependencies respond.
func (s *Service) Check(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	return nil
}
