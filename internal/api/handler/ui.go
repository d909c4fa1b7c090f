package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/iconidentify/tubegrab/internal/config"
	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/service"
	"github.com/iconidentify/tubegrab/pkg/ui"
)

// statsRenderTimeout bounds the stats fetch done while rendering the landing page.
const statsRenderTimeout = 2 * time.Second

// UIHandler serves the site pages.
type UIHandler struct {
	renderer     Renderer
	site         config.SiteConfig
	features     config.FeatureConfig
	stats        *service.StatsService
	testimonials *service.TestimonialService
	downloads    *service.DownloadService
	logger       *slog.Logger
}

// NewUIHandler creates a new UI handler.
func NewUIHandler(
	renderer Renderer,
	site config.SiteConfig,
	features config.FeatureConfig,
	stats *service.StatsService,
	testimonials *service.TestimonialService,
	downloads *service.DownloadService,
	logger *slog.Logger,
) *UIHandler {
	return &UIHandler{
		renderer:     renderer,
		site:         site,
		features:     features,
		stats:        stats,
		testimonials: testimonials,
		downloads:    downloads,
		logger:       logger,
	}
}

// Landing serves GET /.
func (h *UIHandler) Landing(w http.ResponseWriter, r *http.Request) {
	var flash *ui.Flash
	if r.URL.Query().Get("testimonial") == "added" {
		flash = &ui.Flash{Kind: "success", Message: "Thank you for your testimonial!"}
	}
	h.renderLanding(w, r, http.StatusOK, ui.TestimonialForm{Rating: domain.DefaultRating}, "", flash)
}

// Disclaimer serves GET /disclaimer.
func (h *UIHandler) Disclaimer(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, ui.PageDisclaimer, ui.DisclaimerPage{Site: h.siteData()})
}

// DownloadForm serves GET /download with a fresh form token.
func (h *UIHandler) DownloadForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, ui.PageDownload, h.downloadPage(string(domain.MediaVideo), ""))
}

func (h *UIHandler) downloadPage(mediaType, url string) ui.DownloadPage {
	return ui.DownloadPage{
		Site:       h.siteData(),
		Token:      h.downloads.NewFormToken(),
		URL:        url,
		Type:       mediaType,
		ResetDelay: h.site.ResetDelay,
	}
}

func (h *UIHandler) renderLanding(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	form ui.TestimonialForm,
	formErr string,
	flash *ui.Flash,
) {
	page := ui.LandingPage{
		Site:             h.siteData(),
		Flash:            flash,
		ShowStats:        h.features.Stats,
		ShowTestimonials: h.features.Testimonials,
		Steps:            ui.DefaultSteps(),
		Features:         ui.DefaultFeatures(),
		FAQs:             ui.DefaultFAQs(),
	}

	if page.ShowStats {
		ctx, cancel := context.WithTimeout(r.Context(), statsRenderTimeout)
		h.stats.Refresh(ctx)
		cancel()
		page.Stats = h.stats.Current()
	}

	if page.ShowTestimonials {
		page.Testimonials = h.testimonials.List()
		page.Form = form
		page.FormError = formErr
		page.RatingOptions = ui.RatingOptions()
	}

	h.render(w, status, ui.PageLanding, page)
}

func (h *UIHandler) siteData() ui.Site {
	return ui.Site{
		AppName:        h.site.AppName,
		AppDescription: h.site.AppDescription,
		GithubURL:      h.site.GithubURL,
		Year:           time.Now().Year(),
	}
}

// render executes the page into a buffer so a template error never leaves
// a half-written response.
func (h *UIHandler) render(w http.ResponseWriter, status int, page string, data any) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, page, data); err != nil {
		h.logger.Error("failed to render page", "page", page, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
