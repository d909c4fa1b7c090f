package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iconidentify/tubegrab/internal/domain"
)

func TestStatsHandler_Stats(t *testing.T) {
	d := newTestDeps(t)
	d.backend.stats = &domain.Stats{DownloadsToday: "42", UserRating: "4.9/5"}
	h := NewStatsHandler(d.stats)

	w := httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp map[string]string
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["downloads_today"] != "42" || resp["user_rating"] != "4.9/5" {
		t.Errorf("resp = %v", resp)
	}
}

func TestStatsHandler_StatsPassesBodyThrough(t *testing.T) {
	d := newTestDeps(t)
	raw := `{"downloads_today":0,"happy_users":1234,"region":"eu"}`
	d.backend.stats = &domain.Stats{HappyUsers: "1,234", Raw: []byte(raw)}
	h := NewStatsHandler(d.stats)

	w := httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if got := w.Body.String(); got != raw {
		t.Errorf("body = %s, want %s", got, raw)
	}

	// The landing counters still use the decoded values.
	if got := d.stats.Current()[1].Number; got != "1,234" {
		t.Errorf("happy users = %q, want 1,234", got)
	}
}

func TestStatsHandler_StatsFailure(t *testing.T) {
	d := newTestDeps(t)
	d.backend.statsErr = domain.ErrStatsUnavailable
	h := NewStatsHandler(d.stats)

	w := httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/api/stats", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
	var resp map[string]string
	json.NewDecoder(w.Body).Decode(&resp)
	if resp["error"] != "Failed to fetch stats" {
		t.Errorf("error = %q", resp["error"])
	}
}

func TestStatsHandler_UpdateRating(t *testing.T) {
	d := newTestDeps(t)
	d.backend.rating = map[string]any{"status": "success", "user_rating": "4.7/5"}
	h := NewStatsHandler(d.stats)

	w := httptest.NewRecorder()
	h.UpdateRating(w, httptest.NewRequest(http.MethodPost, "/api/update-rating", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["user_rating"] != "4.7/5" {
		t.Errorf("resp = %v", resp)
	}
	if d.backend.ratings != 1 {
		t.Errorf("rating calls = %d, want 1", d.backend.ratings)
	}
}

func TestStatsHandler_UpdateRatingFailure(t *testing.T) {
	d := newTestDeps(t)
	d.backend.ratingErr = domain.ErrBackendStatus
	h := NewStatsHandler(d.stats)

	w := httptest.NewRecorder()
	h.UpdateRating(w, httptest.NewRequest(http.MethodPost, "/api/update-rating", nil))

	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}
