package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/worker"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockBackend implements backend.Client for testing.
type mockBackend struct {
	mu sync.Mutex

	downloadFn  func(ctx context.Context, req domain.DownloadRequest) domain.DownloadOutcome
	stats       *domain.Stats
	statsErr    error
	ratingErr   error
	incrementFn func() error

	downloads  []domain.DownloadRequest
	increments int
	ratings    int
	statsCalls int
}

func (m *mockBackend) Download(ctx context.Context, req domain.DownloadRequest) domain.DownloadOutcome {
	m.mu.Lock()
	m.downloads = append(m.downloads, req)
	fn := m.downloadFn
	m.mu.Unlock()
	if fn == nil {
		return domain.JSONSuccess(map[string]any{"status": "success"})
	}
	return fn(ctx, req)
}

func (m *mockBackend) IncrementDownload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.increments++
	if m.incrementFn != nil {
		return m.incrementFn()
	}
	return nil
}

func (m *mockBackend) UpdateUserRating(ctx context.Context) (map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratings++
	if m.ratingErr != nil {
		return nil, m.ratingErr
	}
	return map[string]any{"status": "success"}, nil
}

func (m *mockBackend) Stats(ctx context.Context) (*domain.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statsCalls++
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	if m.stats == nil {
		return &domain.Stats{}, nil
	}
	s := *m.stats
	return &s, nil
}

func (m *mockBackend) counts() (downloads, increments, ratings, stats int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.downloads), m.increments, m.ratings, m.statsCalls
}

// syncRunner runs tasks inline so tests can assert on their effects.
type syncRunner struct {
	mu    sync.Mutex
	names []string
	errs  []error
	full  bool
}

func (r *syncRunner) Go(task worker.Task) error {
	if r.full {
		return worker.ErrQueueFull
	}
	err := task.Run(context.Background())
	r.mu.Lock()
	r.names = append(r.names, task.Name)
	r.errs = append(r.errs, err)
	r.mu.Unlock()
	return nil
}

func (r *syncRunner) tasks() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}

// mockStore implements repository.TestimonialStore for testing.
type mockStore struct {
	mu        sync.Mutex
	items     []*domain.Testimonial
	insertErr error
	listErr   error
	onInsert  func()
}

func (m *mockStore) Insert(ctx context.Context, t *domain.Testimonial) error {
	if m.onInsert != nil {
		m.onInsert()
	}
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
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]*domain.Testimonial, len(m.items))
	copy(out, m.items)
	return out, nil
}

func (m *mockStore) Ping(ctx context.Context) error { return nil }
func (m *mockStore) Close() error                   { return nil }

// bufferSaver collects a file body in memory.
type bufferSaver struct {
	buf      bytes.Buffer
	filename string
	err      error
	calls    int
}

func (s *bufferSaver) Save(ctx context.Context, file *domain.FilePayload) error {
	s.calls++
	s.filename = file.Filename
	if s.err != nil {
		return s.err
	}
	_, err := io.Copy(&s.buf, file.Body)
	return err
}

// trackingBody records whether the file body was closed.
type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

var errBoom = errors.New("boom")
