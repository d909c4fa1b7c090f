package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iconidentify/tubegrab/internal/backend"
	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/repository"
	"github.com/iconidentify/tubegrab/internal/worker"
)

// TestimonialService owns the displayed testimonial board and writes new
// entries through to the store.
type TestimonialService struct {
	store   repository.TestimonialStore
	backend backend.Client
	stats   *StatsService
	runner  TaskRunner
	logger  *slog.Logger
	now     func() time.Time

	mu    sync.RWMutex
	board []*domain.Testimonial
}

// NewTestimonialService creates a new testimonial service with an empty board.
func NewTestimonialService(
	store repository.TestimonialStore,
	client backend.Client,
	stats *StatsService,
	runner TaskRunner,
	logger *slog.Logger,
) *TestimonialService {
	return &TestimonialService{
		store:   store,
		backend: client,
		stats:   stats,
		runner:  runner,
		logger:  logger,
		now:     time.Now,
	}
}

// Load replaces the board with the stored testimonials, newest first. On
// failure the board is left empty.
func (s *TestimonialService) Load(ctx context.Context) error {
	items, err := s.store.List(ctx, 0)
	if err != nil {
		s.logger.Error("failed to load testimonials", "error", err)
		s.mu.Lock()
		s.board = nil
		s.mu.Unlock()
		return err
	}

	s.mu.Lock()
	s.board = items
	s.mu.Unlock()

	s.logger.Info("loaded testimonials", "count", len(items))
	return nil
}

// List returns a snapshot of the board.
func (s *TestimonialService) List() []domain.Testimonial {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Testimonial, len(s.board))
	for i, t := range s.board {
		out[i] = *t
	}
	return out
}

// Submit validates the testimonial, shows it immediately and persists it.
// If the store rejects it, the entry is taken off the board again and the
// error wraps ErrPersistenceFailed.
func (s *TestimonialService) Submit(ctx context.Context, in domain.Testimonial) (*domain.Testimonial, error) {
	t := &domain.Testimonial{
		Name:    in.Name,
		Role:    in.Role,
		Content: in.Content,
		Rating:  in.Rating,
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.ID = domain.TestimonialID(uuid.NewString())
	t.CreatedAt = s.now().UTC()

	s.prepend(t)

	if err := s.store.Insert(ctx, t); err != nil {
		s.remove(t.ID)
		s.logger.Error("failed to save testimonial", "error", err, "id", t.ID)
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistenceFailed, err)
	}

	s.logger.Info("testimonial added", "id", t.ID, "rating", t.Rating)
	s.scheduleRatingUpdate()

	saved := *t
	return &saved, nil
}

func (s *TestimonialService) prepend(t *domain.Testimonial) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.board = append([]*domain.Testimonial{t}, s.board...)
}

func (s *TestimonialService) remove(id domain.TestimonialID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.board {
		if t.ID == id {
			s.board = append(s.board[:i], s.board[i+1:]...)
			return
		}
	}
}

// scheduleRatingUpdate asks the backend to recompute the rating once, then
// refreshes the counters whatever the rating call returned.
func (s *TestimonialService) scheduleRatingUpdate() {
	err := s.runner.Go(worker.Task{
		Name: "update-user-rating",
		Run: func(ctx context.Context) error {
			_, rateErr := s.backend.UpdateUserRating(ctx)
			if rateErr != nil {
				s.logger.Warn("failed to update user rating", "error", rateErr)
			}
			if s.stats != nil {
				s.stats.Refresh(ctx)
			}
			return rateErr
		},
	})
	if err != nil {
		s.logger.Warn("rating update not scheduled", "error", err)
	}
}
