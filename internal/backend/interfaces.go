package backend

import (
	"context"

	"github.com/iconidentify/tubegrab/internal/domain"
)

// Client talks to the external download backend.
type Client interface {
	// Download submits a URL and format and returns the tagged outcome.
	// A file outcome carries an open body the caller must close.
	Download(ctx context.Context, req domain.DownloadRequest) domain.DownloadOutcome

	// IncrementDownload bumps the backend's download counter.
	IncrementDownload(ctx context.Context) error

	// UpdateUserRating asks the backend to recompute the average rating.
	UpdateUserRating(ctx context.Context) (map[string]any, error)

	// Stats fetches the landing page counters.
	Stats(ctx context.Context) (*domain.Stats, error)
}
