package repository

import (
	"context"

	"github.com/iconidentify/tubegrab/internal/domain"
)

// TestimonialStore is the table holding testimonials. The production
// implementation is the hosted database; SQLite serves local development.
type TestimonialStore interface {
	// Insert persists a testimonial.
	Insert(ctx context.Context, t *domain.Testimonial) error

	// List returns testimonials ordered by creation time, newest first.
	// A limit of zero or less means no limit.
	List(ctx context.Context, limit int) ([]*domain.Testimonial, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error
}
