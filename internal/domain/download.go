package domain

import (
	"fmt"
	"io"
	"strings"
)

// MediaType is the format the user asked for.
type MediaType string

const (
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
)

// ParseMediaType accepts "video" or "audio". An empty string means video,
// matching the backend's default.
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(strings.ToLower(strings.TrimSpace(s))) {
	case "", MediaVideo:
		return MediaVideo, nil
	case MediaAudio:
		return MediaAudio, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMediaType, s)
	}
}

// Filename is the save-as name used for a file response.
func (t MediaType) Filename() string {
	if t == MediaAudio {
		return "audio.mp3"
	}
	return "video.mp4"
}

// Label is the human-readable format name shown after a download.
func (t MediaType) Label() string {
	if t == MediaAudio {
		return "Audio (MP3)"
	}
	return "Video (MP4)"
}

// DownloadRequest is a single form submission. It lives for one
// request/response cycle and is never stored.
type DownloadRequest struct {
	URL  string    `json:"url"`
	Type MediaType `json:"type"`
}

// Validate checks the request before anything is sent to the backend.
func (r DownloadRequest) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return NewValidationError("url", ErrEmptyURL)
	}
	if r.Type != MediaVideo && r.Type != MediaAudio {
		return NewValidationError("type", ErrInvalidMediaType)
	}
	return nil
}

// OutcomeKind tags a DownloadOutcome.
type OutcomeKind string

const (
	OutcomeJSON    OutcomeKind = "json"
	OutcomeFile    OutcomeKind = "file"
	OutcomeFailure OutcomeKind = "failure"
)

// FailureKind classifies a failed download.
type FailureKind string

const (
	FailureNetwork FailureKind = "network"
	FailureHTTP    FailureKind = "http"
	FailureBackend FailureKind = "backend"
	FailureSave    FailureKind = "save"
	FailureInput   FailureKind = "input"
)

// DefaultFailureMessage is shown when the backend gives no usable reason.
const DefaultFailureMessage = "Download failed"

// FilePayload is the binary body of a file response. Body must be closed
// by whoever consumes the outcome.
type FilePayload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadCloser
}

// DownloadFailure is the Failure arm of DownloadOutcome.
type DownloadFailure struct {
	Kind       FailureKind
	Message    string
	StatusCode int
}

func (f *DownloadFailure) Error() string {
	return f.Message
}

// DownloadOutcome is the tagged result of a download request. Exactly one of
// JSON, File or Failure is set, matching Kind.
type DownloadOutcome struct {
	Kind    OutcomeKind
	JSON    map[string]any
	File    *FilePayload
	Failure *DownloadFailure
}

// JSONSuccess builds a Success("json") outcome.
func JSONSuccess(body map[string]any) DownloadOutcome {
	return DownloadOutcome{Kind: OutcomeJSON, JSON: body}
}

// FileSuccess builds a Success("file") outcome.
func FileSuccess(file *FilePayload) DownloadOutcome {
	return DownloadOutcome{Kind: OutcomeFile, File: file}
}

// Failed builds a Failure outcome.
func Failed(kind FailureKind, message string) DownloadOutcome {
	return DownloadOutcome{Kind: OutcomeFailure, Failure: &DownloadFailure{Kind: kind, Message: message}}
}

// FailedHTTP builds a Failure outcome for a non-2xx response.
func FailedHTTP(status int, message string) DownloadOutcome {
	return DownloadOutcome{
		Kind:    OutcomeFailure,
		Failure: &DownloadFailure{Kind: FailureHTTP, Message: message, StatusCode: status},
	}
}

// NetworkFailure builds the Failure outcome for a transport error.
func NetworkFailure(err error) DownloadOutcome {
	return Failed(FailureNetwork, "Network error: "+err.Error())
}

// OK reports whether the outcome is one of the Success arms.
func (o DownloadOutcome) OK() bool {
	return o.Kind == OutcomeJSON || o.Kind == OutcomeFile
}

// Message returns the backend message for JSON successes and the failure
// message otherwise.
func (o DownloadOutcome) Message() string {
	switch o.Kind {
	case OutcomeFailure:
		if o.Failure != nil {
			return o.Failure.Message
		}
		return DefaultFailureMessage
	case OutcomeJSON:
		if msg, ok := o.JSON["message"].(string); ok {
			return msg
		}
	}
	return ""
}

// Close releases the file body if there is one.
func (o DownloadOutcome) Close() error {
	if o.File != nil && o.File.Body != nil {
		return o.File.Body.Close()
	}
	return nil
}
