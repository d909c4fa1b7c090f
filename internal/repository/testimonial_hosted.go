package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iconidentify/tubegrab/internal/config"
	"github.com/iconidentify/tubegrab/internal/domain"
)

// HostedTestimonialStore implements TestimonialStore against a hosted
// database exposing its tables over a PostgREST-style REST API.
type HostedTestimonialStore struct {
	baseURL    string
	apiKey     string
	table      string
	httpClient *http.Client
	readRetry  RetryConfig
}

// NewHostedTestimonialStore creates a client handle for the hosted table.
func NewHostedTestimonialStore(cfg config.StoreConfig) *HostedTestimonialStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HostedTestimonialStore{
		baseURL: strings.TrimRight(cfg.HostedURL, "/"),
		apiKey:  cfg.HostedKey,
		table:   cfg.Table,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		readRetry: RetryConfig{
			MaxAttempts:   cfg.ReadAttempts,
			InitialDelay:  cfg.RetryDelay,
			MaxDelay:      8 * cfg.RetryDelay,
			BackoffFactor: 2,
		},
	}
}

// newRow is the insert body. The id column is left to the database, which
// may assign integers.
type newRow struct {
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"created_at"`
}

// hostedRow is a selected testimonials row.
type hostedRow struct {
	ID rowID `json:"id"`
	newRow
}

// rowID accepts both integer and text primary keys.
type rowID string

func (id *rowID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = rowID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("testimonial id: %w", err)
	}
	*id = rowID(n.String())
	return nil
}

// Insert adds a row to the hosted table.
func (s *HostedTestimonialStore) Insert(ctx context.Context, t *domain.Testimonial) error {
	body, err := json.Marshal(newRow{
		Name:      t.Name,
		Role:      t.Role,
		Content:   t.Content,
		Rating:    t.Rating,
		CreatedAt: t.CreatedAt.UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal testimonial: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tableURL(nil), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("insert testimonial: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("insert testimonial: %s", apiError(resp))
	}
	return nil
}

// List selects rows ordered by created_at descending. Network errors and
// 5xx answers are retried.
func (s *HostedTestimonialStore) List(ctx context.Context, limit int) ([]*domain.Testimonial, error) {
	return retry(ctx, s.readRetry, func() ([]*domain.Testimonial, error) {
		return s.list(ctx, limit)
	}, transient)
}

func (s *HostedTestimonialStore) list(ctx context.Context, limit int) ([]*domain.Testimonial, error) {
	q := url.Values{}
	q.Set("select", "*")
	q.Set("order", "created_at.desc")
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.tableURL(q), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	s.setHeaders(req)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &transportError{err: fmt.Errorf("list testimonials: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &statusError{code: resp.StatusCode, msg: "list testimonials: " + apiError(resp)}
	}

	var rows []hostedRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("decode testimonials: %w", err)
	}

	out := make([]*domain.Testimonial, 0, len(rows))
	for _, r := range rows {
		out = append(out, &domain.Testimonial{
			ID:        domain.TestimonialID(r.ID),
			Name:      r.Name,
			Role:      r.Role,
			Content:   r.Content,
			Rating:    r.Rating,
			CreatedAt: r.CreatedAt,
		})
	}
	return out, nil
}

// Ping issues a one-row select.
func (s *HostedTestimonialStore) Ping(ctx context.Context) error {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.tableURL(q), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	s.setHeaders(req)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping hosted store: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping hosted store: status %d", resp.StatusCode)
	}
	return nil
}

// Close is a no-op; the handle holds no connections of its own.
func (s *HostedTestimonialStore) Close() error {
	return nil
}

func (s *HostedTestimonialStore) tableURL(q url.Values) string {
	u := s.baseURL + "/rest/v1/" + url.PathEscape(s.table)
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

func (s *HostedTestimonialStore) setHeaders(req *http.Request) {
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
}

// apiError renders a REST error body ({"message": ...}) or the status code.
func apiError(resp *http.Response) string {
	var body struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err := json.Unmarshal(data, &body); err == nil && body.Message != "" {
		if body.Code != "" {
			return fmt.Sprintf("status %d: %s (%s)", resp.StatusCode, body.Message, body.Code)
		}
		return fmt.Sprintf("status %d: %s", resp.StatusCode, body.Message)
	}
	return fmt.Sprintf("status %d", resp.StatusCode)
}

type statusError struct {
	code int
	msg  string
}

func (e *statusError) Error() string { return e.msg }

type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// transient reports whether a failed read is worth repeating.
func transient(err error) bool {
	var serr *statusError
	if errors.As(err, &serr) {
		return serr.code >= 500
	}
	var terr *transportError
	return errors.As(err, &terr)
}
