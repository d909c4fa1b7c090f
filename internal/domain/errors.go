package domain

import "errors"

// Domain errors.
var (
	// ErrEmptyURL is returned when a download is requested without a URL.
	ErrEmptyURL = errors.New("url is required")

	// ErrInvalidMediaType is returned when the format is neither video nor audio.
	ErrInvalidMediaType = errors.New("type must be \"video\" or \"audio\"")

	// ErrNotYouTubeURL is returned by strict link validation.
	ErrNotYouTubeURL = errors.New("not a YouTube video link")

	// ErrRequestInFlight is returned when a form submits again before its
	// previous request completed.
	ErrRequestInFlight = errors.New("a download for this form is already in progress")

	// ErrInvalidTestimonial is returned when a testimonial fails validation.
	ErrInvalidTestimonial = errors.New("invalid testimonial")

	// ErrPersistenceFailed is returned when the testimonial store rejects a write.
	ErrPersistenceFailed = errors.New("failed to save testimonial")

	// ErrStatsUnavailable is returned when the backend stats cannot be read.
	ErrStatsUnavailable = errors.New("stats unavailable")

	// ErrBackendStatus is returned when a backend side call answers non-2xx.
	ErrBackendStatus = errors.New("backend responded with error status")
)

// ValidationError names the field that failed validation.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field string, err error) *ValidationError {
	return &ValidationError{
		Field: field,
		Err:   err,
	}
}
