package api

import (
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/tubegrab/internal/api/handler"
	mw "github.com/iconidentify/tubegrab/internal/api/middleware"
)

// Handlers groups the route handlers. Testimonials may be nil when the
// feature is off.
type Handlers struct {
	UI           *handler.UIHandler
	Download     *handler.DownloadHandler
	Testimonials *handler.TestimonialHandler
	Stats        *handler.StatsHandler
	Health       *handler.HealthHandler
	Static       fs.FS
}

// RouterConfig holds router-level settings.
type RouterConfig struct {
	AllowedOrigins []string
	RequestTimeout time.Duration
}

// NewRouter creates the HTTP router with all routes configured.
func NewRouter(h Handlers, cfg RouterConfig, logger *slog.Logger) *chi.Mux {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 15 * time.Minute
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CleanPath) // Normalize paths (e.g., //ready -> /ready)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger(logger))
	r.Use(mw.Recovery(logger))
	r.Use(mw.CORS(cfg.AllowedOrigins))

	// Download submits stream attachments and are bounded by the backend
	// client and the server write timeout, not the request timeout.
	r.Post("/download", h.Download.Submit)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))

		// Health endpoints
		r.Get("/health", h.Health.Live)
		r.Get("/ready", h.Health.Ready)

		// Pages
		r.Get("/", h.UI.Landing)
		r.Get("/disclaimer", h.UI.Disclaimer)
		r.Get("/download", h.UI.DownloadForm)

		if h.Static != nil {
			r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(h.Static))))
		}

		if h.Testimonials != nil {
			r.Post("/testimonials", h.Testimonials.Submit)
		}

		r.Route("/api", func(r chi.Router) {
			r.Get("/stats", h.Stats.Stats)
			r.Post("/update-rating", h.Stats.UpdateRating)
			r.Get("/system", h.Health.System)
			if h.Testimonials != nil {
				r.Get("/testimonials", h.Testimonials.List)
			}
		})
	})

	return r
}
