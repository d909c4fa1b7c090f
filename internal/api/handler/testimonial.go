package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/service"
	"github.com/iconidentify/tubegrab/pkg/ui"
)

// TestimonialHandler handles testimonial endpoints.
type TestimonialHandler struct {
	testimonials *service.TestimonialService
	pages        *UIHandler
	logger       *slog.Logger
}

// NewTestimonialHandler creates a new testimonial handler.
func NewTestimonialHandler(testimonials *service.TestimonialService, pages *UIHandler, logger *slog.Logger) *TestimonialHandler {
	return &TestimonialHandler{
		testimonials: testimonials,
		pages:        pages,
		logger:       logger,
	}
}

// TestimonialRequest is the JSON body of POST /testimonials.
type TestimonialRequest struct {
	Name    string   `json:"name"`
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Rating  *float64 `json:"rating,omitempty"`
}

// Submit handles POST /testimonials.
func (h *TestimonialHandler) Submit(w http.ResponseWriter, r *http.Request) {
	asJSON := wantsJSON(r)

	in := domain.Testimonial{Rating: domain.DefaultRating}
	if asJSON {
		var req TestimonialRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		in.Name, in.Role, in.Content = req.Name, req.Role, req.Content
		if req.Rating != nil {
			in.Rating = *req.Rating
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		in.Name = r.PostFormValue("name")
		in.Role = r.PostFormValue("role")
		in.Content = r.PostFormValue("content")
		if raw := strings.TrimSpace(r.PostFormValue("rating")); raw != "" {
			rating, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				rating = 0
			}
			in.Rating = rating
		}
	}

	saved, err := h.testimonials.Submit(r.Context(), in)
	if err == nil {
		if asJSON {
			writeJSON(w, http.StatusCreated, saved)
			return
		}
		http.Redirect(w, r, "/?testimonial=added#testimonials", http.StatusSeeOther)
		return
	}

	status, message := http.StatusInternalServerError, "Failed to save testimonial"
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		status, message = http.StatusBadRequest, validationMessage(verr)
	}

	if asJSON {
		resp := map[string]string{"error": message}
		if verr != nil {
			resp["field"] = verr.Field
		}
		writeJSON(w, status, resp)
		return
	}

	form := ui.TestimonialForm{Name: in.Name, Role: in.Role, Content: in.Content, Rating: in.Rating}
	if !domain.ValidRating(form.Rating) {
		form.Rating = domain.DefaultRating
	}
	h.pages.renderLanding(w, r, status, form, message, &ui.Flash{Kind: "error", Message: message})
}

// List handles GET /api/testimonials.
func (h *TestimonialHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.testimonials.List())
}

func validationMessage(err *domain.ValidationError) string {
	switch err.Field {
	case "name":
		return "Please enter your name"
	case "role":
		return "Please enter your role"
	case "content":
		return "Please write your testimonial"
	case "rating":
		return "Please choose a rating between 0.5 and 5 stars"
	default:
		return err.Error()
	}
}
