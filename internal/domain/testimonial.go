package domain

import (
	"errors"
	"math"
	"strings"
	"time"
)

// TestimonialID is a unique identifier for a testimonial.
type TestimonialID string

// String returns the string representation of the TestimonialID.
func (id TestimonialID) String() string {
	return string(id)
}

// Rating bounds, in half-point steps.
const (
	MinRating     = 0.5
	MaxRating     = 5.0
	DefaultRating = 5.0
)

// Testimonial is a user review shown on the landing page.
type Testimonial struct {
	ID        TestimonialID `json:"id"`
	Name      string        `json:"name"`
	Role      string        `json:"role"`
	Content   string        `json:"content"`
	Rating    float64       `json:"rating"`
	CreatedAt time.Time     `json:"created_at"`
}

// Normalize trims the free-text fields.
func (t *Testimonial) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
	t.Role = strings.TrimSpace(t.Role)
	t.Content = strings.TrimSpace(t.Content)
}

// Validate checks required fields and the half-point rating range.
func (t *Testimonial) Validate() error {
	if t.Name == "" {
		return NewValidationError("name", ErrInvalidTestimonial)
	}
	if t.Role == "" {
		return NewValidationError("role", ErrInvalidTestimonial)
	}
	if t.Content == "" {
		return NewValidationError("content", ErrInvalidTestimonial)
	}
	if !ValidRating(t.Rating) {
		return NewValidationError("rating", errors.Join(ErrInvalidTestimonial, errors.New("rating must be 0.5 to 5 in half steps")))
	}
	return nil
}

// ValidRating reports whether r is a half-point value in [0.5, 5].
func ValidRating(r float64) bool {
	if r < MinRating || r > MaxRating {
		return false
	}
	return math.Mod(r*2, 1) == 0
}

// Stars splits the rating into full, half and empty star counts for display.
func (t Testimonial) Stars() (full, half, empty int) {
	full = int(math.Floor(t.Rating))
	if t.Rating-float64(full) >= 0.5 {
		half = 1
	}
	empty = 5 - full - half
	if empty < 0 {
		empty = 0
	}
	return full, half, empty
}
