package handler

import (
	"net/http"

	"github.com/iconidentify/tubegrab/internal/service"
)

// StatsHandler proxies the backend counters.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Stats handles GET /api/stats.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.Refresh(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}
	if len(stats.Raw) > 0 {
		writeRawJSON(w, http.StatusOK, stats.Raw)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// UpdateRating handles POST /api/update-rating.
func (h *StatsHandler) UpdateRating(w http.ResponseWriter, r *http.Request) {
	res, err := h.stats.UpdateUserRating(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update user rating")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
