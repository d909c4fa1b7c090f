package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/iconidentify/tubegrab/internal/config"
	"github.com/iconidentify/tubegrab/internal/domain"
)

// Backend paths.
const (
	PathDownload          = "/download"
	PathStats             = "/stats"
	PathUpdateUserRating  = "/update-user-rating"
	PathIncrementDownload = "/increment-download"
)

// maxErrorBody caps how much of an error response is read for its message.
const maxErrorBody = 64 << 10

// maxStatsBytes bounds the stats body.
const maxStatsBytes = 1 << 20

// HTTPClient implements Client over plain HTTP.
type HTTPClient struct {
	// client is used for short requests (stats, counters) with overall timeout
	client *http.Client
	// streamClient is used for /download, whose body may be a large file
	streamClient *http.Client
	cfg          config.BackendConfig
	logger       *slog.Logger
}

// NewHTTPClient creates a backend client for cfg.BaseURL.
func NewHTTPClient(cfg config.BackendConfig) *HTTPClient {
	// Transport for file responses - no overall timeout, but header timeout
	streamTransport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ResponseHeaderTimeout: cfg.HeaderTimeout,
	}

	return &HTTPClient{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		streamClient: &http.Client{
			Transport: streamTransport,
		},
		cfg:    cfg,
		logger: slog.Default(),
	}
}

// SetLogger sets the logger used for request diagnostics.
func (c *HTTPClient) SetLogger(logger *slog.Logger) {
	c.logger = logger
}

// Download posts {url, type} to /download and classifies the response.
// It never retries.
func (c *HTTPClient) Download(ctx context.Context, dr domain.DownloadRequest) domain.DownloadOutcome {
	payload, err := json.Marshal(dr)
	if err != nil {
		return domain.Failed(domain.FailureInput, fmt.Sprintf("encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint(PathDownload), bytes.NewReader(payload))
	if err != nil {
		return domain.Failed(domain.FailureInput, fmt.Sprintf("create request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	c.setHeaders(req)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return domain.NetworkFailure(transportCause(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg := errorMessage(resp.Body)
		c.logger.Warn("backend rejected download",
			"status", resp.StatusCode,
			"type", dr.Type,
			"message", msg,
		)
		return domain.FailedHTTP(resp.StatusCode, msg)
	}

	contentType := resp.Header.Get("Content-Type")
	if isJSON(contentType) {
		defer resp.Body.Close()
		return jsonOutcome(resp.Body)
	}

	// Anything else is the file itself.
	return domain.FileSuccess(&domain.FilePayload{
		Filename:    dr.Type.Filename(),
		ContentType: contentType,
		Size:        resp.ContentLength,
		Body:        resp.Body,
	})
}

// IncrementDownload posts to /increment-download with no body.
func (c *HTTPClient) IncrementDownload(ctx context.Context) error {
	resp, err := c.post(ctx, PathIncrementDownload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: increment download: %d", domain.ErrBackendStatus, resp.StatusCode)
	}
	return nil
}

// UpdateUserRating posts to /update-user-rating and returns the JSON reply.
func (c *HTTPClient) UpdateUserRating(ctx context.Context) (map[string]any, error) {
	resp, err := c.post(ctx, PathUpdateUserRating)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: update user rating: %d", domain.ErrBackendStatus, resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode rating response: %w", err)
	}
	return body, nil
}

// Stats fetches /stats. It is called once per refresh and never retried.
func (c *HTTPClient) Stats(ctx context.Context) (*domain.Stats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint(PathStats), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStatsUnavailable, transportCause(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: backend responded with status: %d", domain.ErrStatsUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxStatsBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read: %v", domain.ErrStatsUnavailable, transportCause(err))
	}
	var stats domain.Stats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", domain.ErrStatsUnavailable, err)
	}
	stats.Raw = data
	return &stats, nil
}

func (c *HTTPClient) post(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint(path), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return resp, nil
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}
}

// jsonOutcome interprets a 2xx JSON body by its status field.
func jsonOutcome(r io.Reader) domain.DownloadOutcome {
	var body map[string]any
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return domain.Failed(domain.FailureBackend, domain.DefaultFailureMessage)
	}

	switch body["status"] {
	case "success":
		return domain.JSONSuccess(body)
	case "error":
		msg, _ := body["message"].(string)
		if msg == "" {
			msg = domain.DefaultFailureMessage
		}
		return domain.Failed(domain.FailureBackend, msg)
	default:
		return domain.Failed(domain.FailureBackend, domain.DefaultFailureMessage)
	}
}

// errorMessage extracts detail or message from a JSON error body.
func errorMessage(r io.Reader) string {
	var body struct {
		Detail  any `json:"detail"`
		Message any `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(r, maxErrorBody)).Decode(&body); err != nil {
		return domain.DefaultFailureMessage
	}
	if s, ok := body.Detail.(string); ok && s != "" {
		return s
	}
	if s, ok := body.Message.(string); ok && s != "" {
		return s
	}
	return domain.DefaultFailureMessage
}

// isJSON reports whether a Content-Type header names a JSON media type.
func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.Contains(strings.ToLower(contentType), "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// transportCause strips the "Post <url>:" prefix net/http adds so the user
// sees only the underlying reason.
func transportCause(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) && uerr.Err != nil {
		return uerr.Err
	}
	return err
}
