package handler

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/iconidentify/tubegrab/internal/config"
	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/service"
	"github.com/iconidentify/tubegrab/internal/worker"
	"github.com/iconidentify/tubegrab/pkg/ui"
)

// testLogger returns a silent logger for tests.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockBackend is a test implementation of backend.Client.
type mockBackend struct {
	mu sync.Mutex

	outcome    func(req domain.DownloadRequest) domain.DownloadOutcome
	stats      *domain.Stats
	statsErr   error
	rating     map[string]any
	ratingErr  error
	downloads  []domain.DownloadRequest
	increments int
	ratings    int
}

func (m *mockBackend) Download(ctx context.Context, req domain.DownloadRequest) domain.DownloadOutcome {
	m.mu.Lock()
	m.downloads = append(m.downloads, req)
	fn := m.outcome
	m.mu.Unlock()
	if fn == nil {
		return domain.JSONSuccess(map[string]any{"status": "success", "message": "Download started"})
	}
	return fn(req)
}

func (m *mockBackend) IncrementDownload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.increments++
	return nil
}

func (m *mockBackend) UpdateUserRating(ctx context.Context) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratings++
	if m.ratingErr != nil {
		return nil, m.ratingErr
	}
	if m.rating == nil {
		return map[string]any{"status": "success"}, nil
	}
	return m.rating, nil
}

func (m *mockBackend) Stats(ctx context.Context) (*domain.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	if m.stats == nil {
		return &domain.Stats{}, nil
	}
	s := *m.stats
	return &s, nil
}

// mockStore is a test implementation of repository.TestimonialStore.
type mockStore struct {
	mu        sync.Mutex
	items     []*domain.Testimonial
	insertErr error
	pingErr   error
}

func (m *mockStore) Insert(ctx context.Context, t *domain.Testimonial) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.insertErr != nil {
		return m.insertErr
	}
	c := *t
	m.items = append([]*domain.Testimonial{&c}, m.items...)
	return nil
}

func (m *mockStore) List(ctx context.Context, limit int) ([]*domain.Testimonial, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*domain.Testimonial(nil), m.items...), nil
}

func (m *mockStore) Ping(ctx context.Context) error { return m.pingErr }
func (m *mockStore) Close() error                   { return nil }

// syncRunner runs tasks inline.
type syncRunner struct{}

func (syncRunner) Go(task worker.Task) error {
	return task.Run(context.Background())
}

// testDeps wires real services over the mocks.
type testDeps struct {
	backend      *mockBackend
	store        *mockStore
	stats        *service.StatsService
	testimonials *service.TestimonialService
	downloads    *service.DownloadService
	ui           *UIHandler
}

func newTestDeps(t *testing.T) *testDeps {
	t.Helper()

	renderer, err := ui.NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	d := &testDeps{backend: &mockBackend{}, store: &mockStore{}}
	d.stats = service.NewStatsService(d.backend, testLogger())
	d.testimonials = service.NewTestimonialService(d.store, d.backend, d.stats, syncRunner{}, testLogger())
	d.downloads = service.NewDownloadService(d.backend, syncRunner{}, config.DownloadConfig{}, testLogger())
	d.ui = NewUIHandler(
		renderer,
		config.SiteConfig{AppName: "TubeGrab", AppDescription: "Download videos easily", ResetDelay: 3 * time.Second},
		config.FeatureConfig{Stats: true, Testimonials: true},
		d.stats,
		d.testimonials,
		d.downloads,
		testLogger(),
	)
	return d
}
