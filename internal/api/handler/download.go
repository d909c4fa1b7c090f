package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/iconidentify/tubegrab/internal/domain"
	"github.com/iconidentify/tubegrab/internal/service"
	"github.com/iconidentify/tubegrab/pkg/ui"
)

// DownloadHandler handles download submissions.
type DownloadHandler struct {
	downloads *service.DownloadService
	pages     *UIHandler
	logger    *slog.Logger
}

// NewDownloadHandler creates a new download handler.
func NewDownloadHandler(downloads *service.DownloadService, pages *UIHandler, logger *slog.Logger) *DownloadHandler {
	return &DownloadHandler{
		downloads: downloads,
		pages:     pages,
		logger:    logger,
	}
}

// DownloadRequest is the JSON body of POST /download.
type DownloadRequest struct {
	URL   string `json:"url"`
	Type  string `json:"type"`
	Token string `json:"token,omitempty"`
}

// Submit handles POST /download. Form posts get an HTML page or the file
// as an attachment; JSON posts get JSON or the attachment.
func (h *DownloadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	asJSON := wantsJSON(r)

	var in DownloadRequest
	if asJSON {
		if err := decodeJSON(r, &in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form", http.StatusBadRequest)
			return
		}
		in = DownloadRequest{
			URL:   r.PostFormValue("url"),
			Type:  r.PostFormValue("type"),
			Token: r.PostFormValue("token"),
		}
	}

	mediaType, err := domain.ParseMediaType(in.Type)
	if err != nil {
		// Let validation report it.
		mediaType = domain.MediaType(in.Type)
	}

	saver := &attachmentSaver{w: w}
	outcome, err := h.downloads.Submit(r.Context(), in.Token, domain.DownloadRequest{URL: in.URL, Type: mediaType}, saver)
	if errors.Is(err, domain.ErrRequestInFlight) {
		if asJSON {
			writeError(w, http.StatusConflict, "A download for this form is already in progress")
			return
		}
		page := h.pages.downloadPage(string(mediaType), in.URL)
		page.Token = in.Token
		page.Flash = &ui.Flash{Kind: "error", Message: "A download is already in progress"}
		h.pages.render(w, http.StatusConflict, ui.PageDownload, page)
		return
	}

	switch outcome.Kind {
	case domain.OutcomeFile:
		// Already streamed by the saver.
		return

	case domain.OutcomeJSON:
		if asJSON {
			writeJSON(w, http.StatusOK, outcome.JSON)
			return
		}
		msg := outcome.Message()
		if msg == "" {
			msg = "Download started!"
		}
		page := h.pages.downloadPage(string(mediaType), in.URL)
		page.Result = &ui.DownloadResult{OK: true, Message: msg, Details: details(outcome.JSON)}
		page.Flash = &ui.Flash{Kind: "success", Message: msg}
		page.Reset = true
		h.pages.render(w, http.StatusOK, ui.PageDownload, page)

	default:
		if saver.started {
			// Headers are gone; the client sees a truncated file.
			h.logger.Warn("download stream interrupted", "error", outcome.Message())
			return
		}
		status := failureStatus(outcome.Failure)
		if asJSON {
			writeJSON(w, status, map[string]string{
				"error": outcome.Message(),
				"kind":  string(outcome.Failure.Kind),
			})
			return
		}
		page := h.pages.downloadPage(string(mediaType), in.URL)
		page.Result = &ui.DownloadResult{Message: outcome.Message()}
		page.Flash = &ui.Flash{Kind: "error", Message: outcome.Message()}
		h.pages.render(w, status, ui.PageDownload, page)
	}
}

// attachmentSaver streams a file outcome to the client as an attachment.
type attachmentSaver struct {
	w       http.ResponseWriter
	started bool
}

func (s *attachmentSaver) Save(ctx context.Context, file *domain.FilePayload) error {
	h := s.w.Header()
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	h.Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Filename}))
	if file.Size > 0 {
		h.Set("Content-Length", strconv.FormatInt(file.Size, 10))
	}

	s.started = true
	s.w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(s.w, file.Body); err != nil {
		return fmt.Errorf("stream file: %w", err)
	}
	return nil
}

func failureStatus(f *domain.DownloadFailure) int {
	if f == nil {
		return http.StatusBadGateway
	}
	switch f.Kind {
	case domain.FailureInput:
		return http.StatusBadRequest
	case domain.FailureBackend:
		return http.StatusUnprocessableEntity
	case domain.FailureSave:
		return http.StatusInternalServerError
	case domain.FailureHTTP:
		if f.StatusCode >= 400 && f.StatusCode < 500 {
			return f.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}

// details lists the backend's JSON fields other than status and message.
func details(body map[string]any) []ui.Detail {
	var out []ui.Detail
	for k, v := range body {
		if k == "status" || k == "message" || v == nil {
			continue
		}
		out = append(out, ui.Detail{Key: strings.ReplaceAll(k, "_", " "), Value: fmt.Sprint(v)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
