package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/iconidentify/tubegrab/internal/backend"
	"github.com/iconidentify/tubegrab/internal/domain"
)

// StatsService keeps the landing page counters. A failed fetch leaves the
// previously displayed values in place.
type StatsService struct {
	backend backend.Client
	logger  *slog.Logger

	mu        sync.RWMutex
	current   []domain.Stat
	updatedAt time.Time
}

// NewStatsService creates a stats service showing placeholders.
func NewStatsService(client backend.Client, logger *slog.Logger) *StatsService {
	return &StatsService{
		backend: client,
		logger:  logger,
		current: domain.PlaceholderStats(),
	}
}

// Current returns a copy of the displayed counters.
func (s *StatsService) Current() []domain.Stat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Stat, len(s.current))
	copy(out, s.current)
	return out
}

// UpdatedAt is the time of the last successful refresh, zero if none.
func (s *StatsService) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Refresh fetches the backend stats and replaces the displayed counters.
func (s *StatsService) Refresh(ctx context.Context) (*domain.Stats, error) {
	stats, err := s.backend.Stats(ctx)
	if err != nil {
		s.logger.Warn("failed to fetch stats, keeping previous values", "error", err)
		return nil, err
	}

	s.mu.Lock()
	s.current = stats.Display()
	s.updatedAt = time.Now()
	s.mu.Unlock()

	return stats, nil
}

// UpdateUserRating asks the backend to recompute the average user rating
// and returns its reply unchanged.
func (s *StatsService) UpdateUserRating(ctx context.Context) (map[string]any, error) {
	res, err := s.backend.UpdateUserRating(ctx)
	if err != nil {
		s.logger.Warn("failed to update user rating", "error", err)
		return nil, err
	}
	return res, nil
}
