package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/kkdai/youtube/v2"

	"github.com/iconidentify/tubegrab/internal/backend"
	"github.com/iconidentify/tubegrab/internal/config"
	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/worker"
)

// TaskRunner runs best-effort side calls off the request path.
type TaskRunner interface {
	Go(task worker.Task) error
}

// Saver delivers a file outcome to its destination (an HTTP attachment or a
// file on disk). The body is consumed but not closed.
type Saver interface {
	Save(ctx context.Context, file *domain.FilePayload) error
}

// DownloadService runs the download flow: validate, call the backend, save a
// file response and bump the download counter on success.
type DownloadService struct {
	backend        backend.Client
	runner         TaskRunner
	requireYouTube bool
	logger         *slog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

// NewDownloadService creates a new download service.
func NewDownloadService(
	client backend.Client,
	runner TaskRunner,
	cfg config.DownloadConfig,
	logger *slog.Logger,
) *DownloadService {
	return &DownloadService{
		backend:        client,
		runner:         runner,
		requireYouTube: cfg.RequireYouTube,
		logger:         logger,
		inflight:       make(map[string]struct{}),
	}
}

// NewFormToken issues the token a rendered form submits with.
func (s *DownloadService) NewFormToken() string {
	return uuid.NewString()
}

// Submit performs one download. An empty token skips single-flight
// tracking. The returned error is ErrRequestInFlight when the form already
// has a request running; every other problem is a Failure outcome.
func (s *DownloadService) Submit(
	ctx context.Context,
	token string,
	req domain.DownloadRequest,
	saver Saver,
) (domain.DownloadOutcome, error) {
	if token != "" {
		if !s.acquire(token) {
			return domain.DownloadOutcome{}, domain.ErrRequestInFlight
		}
		defer s.release(token)
	}

	req.URL = strings.TrimSpace(req.URL)
	if err := req.Validate(); err != nil {
		return domain.Failed(domain.FailureInput, inputMessage(err)), nil
	}
	if s.requireYouTube {
		if err := ValidateYouTubeLink(req.URL); err != nil {
			return domain.Failed(domain.FailureInput, "Please enter a valid YouTube link"), nil
		}
	}

	logger := s.logger.With("url", req.URL, "type", req.Type)
	outcome := s.backend.Download(ctx, req)

	switch outcome.Kind {
	case domain.OutcomeJSON:
		logger.Info("download completed", "kind", outcome.Kind)
		s.incrementDownload()
		return outcome, nil

	case domain.OutcomeFile:
		defer outcome.Close()
		if saver == nil {
			return domain.Failed(domain.FailureSave, "No destination for file"), nil
		}
		if err := saver.Save(ctx, outcome.File); err != nil {
			logger.Warn("failed to save file", "error", err, "filename", outcome.File.Filename)
			return domain.Failed(domain.FailureSave, "Failed to save file: "+err.Error()), nil
		}
		logger.Info("download completed", "kind", outcome.Kind, "filename", outcome.File.Filename)
		s.incrementDownload()
		return outcome, nil

	default:
		attrs := []any{"message", outcome.Message()}
		if outcome.Failure != nil {
			attrs = append(attrs, "failure", outcome.Failure.Kind)
			if outcome.Failure.StatusCode != 0 {
				attrs = append(attrs, "status", outcome.Failure.StatusCode)
			}
		}
		logger.Warn("download failed", attrs...)
		return outcome, nil
	}
}

// InFlight reports whether a request for the token is running.
func (s *DownloadService) InFlight(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inflight[token]
	return ok
}

func (s *DownloadService) acquire(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inflight[token]; ok {
		return false
	}
	s.inflight[token] = struct{}{}
	return true
}

func (s *DownloadService) release(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, token)
}

func (s *DownloadService) incrementDownload() {
	err := s.runner.Go(worker.Task{
		Name: "increment-download",
		Run:  s.backend.IncrementDownload,
	})
	if err != nil {
		s.logger.Warn("increment download not scheduled", "error", err)
	}
}

// ValidateYouTubeLink checks that link points at YouTube and carries a
// video ID.
func ValidateYouTubeLink(link string) error {
	if !strings.Contains(link, "youtu.be/") && !strings.Contains(link, "youtube.com/") {
		return fmt.Errorf("%w: %q has no youtube host", domain.ErrNotYouTubeURL, link)
	}
	if _, err := youtube.ExtractVideoID(link); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNotYouTubeURL, err)
	}
	return nil
}

func inputMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrEmptyURL):
		return "Please enter a video URL"
	case errors.Is(err, domain.ErrInvalidMediaType):
		return "Please choose video or audio"
	default:
		return err.Error()
	}
}
