package ui

import (
	"time"

	"github.com/iconidentify/tubegrab/internal/domain"
)

// Site holds the values shared by every page.
type Site struct {
	AppName        string
	AppDescription string
	GithubURL      string
	Year           int
}

// Flash is a one-off toast message.
type Flash struct {
	Kind    string // "success" or "error"
	Message string
}

// Step is one entry of the how-it-works section.
type Step struct {
	Number      string
	Title       string
	Description string
}

// Feature is one card of the features grid.
type Feature struct {
	Title       string
	Description string
	Note        string
	Highlight   bool
}

// FAQ is a question with its answer.
type FAQ struct {
	Question string
	Answer   string
}

// TestimonialForm echoes the submitted testimonial back after an error.
type TestimonialForm struct {
	Name    string
	Role    string
	Content string
	Rating  float64
}

// LandingPage is the data for the landing page.
type LandingPage struct {
	Site  Site
	Flash *Flash

	ShowStats bool
	Stats     []domain.Stat

	ShowTestimonials bool
	Testimonials     []domain.Testimonial
	Form             TestimonialForm
	FormError        string
	RatingOptions    []float64

	Steps    []Step
	Features []Feature
	FAQs     []FAQ
}

// DisclaimerPage is the data for the disclaimer page.
type DisclaimerPage struct {
	Site  Site
	Flash *Flash
}

// Detail is a key/value line of a JSON download result.
type Detail struct {
	Key   string
	Value string
}

// DownloadResult is the outcome shown under the download form.
type DownloadResult struct {
	OK      bool
	Message string
	Details []Detail
}

// DownloadPage is the data for the download form.
type DownloadPage struct {
	Site       Site
	Flash      *Flash
	Token      string
	URL        string
	Type       string
	Result     *DownloadResult
	Reset      bool
	ResetDelay time.Duration
}

// RatingOptions lists the selectable ratings, best first.
func RatingOptions() []float64 {
	var out []float64
	for r := domain.MaxRating; r >= domain.MinRating; r -= 0.5 {
		out = append(out, r)
	}
	return out
}

// DefaultSteps is the how-it-works content.
func DefaultSteps() []Step {
	return []Step{
		{"01", "Copy the Video URL", "Find the video you want to download and copy its URL from the address bar."},
		{"02", "Paste & Choose Format", "Paste the URL in our downloader and select your preferred format, video or audio only."},
		{"03", "Download Instantly", "Click download and get your file in seconds."},
	}
}

// DefaultFeatures is the features grid content.
func DefaultFeatures() []Feature {
	return []Feature{
		{Title: "Ultra HD Downloads", Description: "Download videos in the highest quality available, from 720p HD up to 4K.", Note: "4K Support", Highlight: true},
		{Title: "Audio Extraction", Description: "Extract high-quality MP3 audio from any video.", Note: "320kbps Quality"},
		{Title: "100% Private", Description: "We don't store your data or track your downloads.", Note: "No account needed"},
		{Title: "Lightning Fast", Description: "Optimized processing gets most downloads done in seconds.", Note: "Avg. 3 seconds"},
		{Title: "No Limits", Description: "Unlimited downloads, forever free.", Highlight: true},
	}
}

// DefaultFAQs is the FAQ content.
func DefaultFAQs() []FAQ {
	return []FAQ{
		{"Is this downloader completely free?", "Yes, it is 100% free to use. No hidden fees, no subscriptions, no premium features locked behind paywalls."},
		{"What video qualities can I download?", "You can download videos in various qualities including 720p HD, 1080p Full HD, and up to 4K, depending on the original video."},
		{"Is it safe to use this downloader?", "Absolutely. We don't store your data, track your downloads, or require any personal information."},
		{"Can I download audio only?", "Yes! You can extract MP3 audio from any video, perfect for music, podcasts, or educational content."},
		{"Are there any download limits?", "No limits! Download as many videos as you want."},
	}
}
