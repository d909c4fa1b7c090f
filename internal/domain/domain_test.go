package domain

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestParseMediaType(t *testing.T) {
	tests := []struct {
		in      string
		want    MediaType
		wantErr bool
	}{
		{"video", MediaVideo, false},
		{"audio", MediaAudio, false},
		{"AUDIO", MediaAudio, false},
		{" video ", MediaVideo, false},
		{"", MediaVideo, false},
		{"mp3", "", true},
	}

	for _, tt := range tests {
		got, err := ParseMediaType(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMediaType(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if tt.wantErr && !errors.Is(err, ErrInvalidMediaType) {
			t.Errorf("ParseMediaType(%q) error should wrap ErrInvalidMediaType", tt.in)
		}
		if got != tt.want {
			t.Errorf("ParseMediaType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestMediaType_Filename(t *testing.T) {
	if got := MediaAudio.Filename(); got != "audio.mp3" {
		t.Errorf("audio filename = %q, want audio.mp3", got)
	}
	if got := MediaVideo.Filename(); got != "video.mp4" {
		t.Errorf("video filename = %q, want video.mp4", got)
	}
	if got := MediaType("other").Filename(); got != "video.mp4" {
		t.Errorf("fallback filename = %q, want video.mp4", got)
	}
}

func TestDownloadRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     DownloadRequest
		field   string
		wantErr error
	}{
		{"valid video", DownloadRequest{URL: "https://youtu.be/abc", Type: MediaVideo}, "", nil},
		{"valid audio", DownloadRequest{URL: "https://youtu.be/abc", Type: MediaAudio}, "", nil},
		{"blank url", DownloadRequest{URL: "   ", Type: MediaVideo}, "url", ErrEmptyURL},
		{"bad type", DownloadRequest{URL: "https://youtu.be/abc", Type: "gif"}, "type", ErrInvalidMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() = %v, want %v", err, tt.wantErr)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("field = %v, want %q", ve, tt.field)
			}
		})
	}
}

func TestDownloadOutcome(t *testing.T) {
	t.Run("json success", func(t *testing.T) {
		o := JSONSuccess(map[string]any{"status": "success", "message": "queued"})
		if !o.OK() || o.Kind != OutcomeJSON {
			t.Fatalf("outcome = %+v, want json success", o)
		}
		if o.Message() != "queued" {
			t.Errorf("Message() = %q, want queued", o.Message())
		}
	})

	t.Run("file success closes body", func(t *testing.T) {
		body := &trackingCloser{Reader: strings.NewReader("data")}
		o := FileSuccess(&FilePayload{Filename: "video.mp4", Body: body})
		if !o.OK() || o.Kind != OutcomeFile {
			t.Fatalf("outcome = %+v, want file success", o)
		}
		if err := o.Close(); err != nil {
			t.Fatalf("Close() = %v", err)
		}
		if !body.closed {
			t.Error("body should be closed")
		}
	})

	t.Run("network failure", func(t *testing.T) {
		o := NetworkFailure(errors.New("connection refused"))
		if o.OK() {
			t.Fatal("network failure should not be OK")
		}
		if o.Message() != "Network error: connection refused" {
			t.Errorf("Message() = %q", o.Message())
		}
		if o.Failure.Kind != FailureNetwork {
			t.Errorf("Kind = %q, want %q", o.Failure.Kind, FailureNetwork)
		}
	})

	t.Run("http failure keeps status", func(t *testing.T) {
		o := FailedHTTP(400, "bad url")
		if o.Failure.StatusCode != 400 || o.Message() != "bad url" {
			t.Errorf("failure = %+v", o.Failure)
		}
	})
}

func TestTestimonial_Validate(t *testing.T) {
	base := func() Testimonial {
		return Testimonial{Name: "Ana", Role: "Editor", Content: "Works well", Rating: 4.5}
	}

	tests := []struct {
		name    string
		mutate  func(*Testimonial)
		field   string
		wantErr bool
	}{
		{"valid", func(*Testimonial) {}, "", false},
		{"missing name", func(tm *Testimonial) { tm.Name = "" }, "name", true},
		{"missing role", func(tm *Testimonial) { tm.Role = "" }, "role", true},
		{"missing content", func(tm *Testimonial) { tm.Content = "" }, "content", true},
		{"zero rating", func(tm *Testimonial) { tm.Rating = 0 }, "rating", true},
		{"quarter rating", func(tm *Testimonial) { tm.Rating = 3.25 }, "rating", true},
		{"above max", func(tm *Testimonial) { tm.Rating = 5.5 }, "rating", true},
		{"minimum", func(tm *Testimonial) { tm.Rating = 0.5 }, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tm := base()
			tt.mutate(&tm)
			err := tm.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			if !errors.Is(err, ErrInvalidTestimonial) {
				t.Errorf("error should wrap ErrInvalidTestimonial: %v", err)
			}
			var ve *ValidationError
			if errors.As(err, &ve) && ve.Field != tt.field {
				t.Errorf("field = %q, want %q", ve.Field, tt.field)
			}
		})
	}
}

func TestTestimonial_Normalize(t *testing.T) {
	tm := Testimonial{Name: "  Ana ", Role: "\tEditor", Content: " hi\n"}
	tm.Normalize()
	if tm.Name != "Ana" || tm.Role != "Editor" || tm.Content != "hi" {
		t.Errorf("Normalize() = %+v", tm)
	}
}

func TestTestimonial_Stars(t *testing.T) {
	tests := []struct {
		rating            float64
		full, half, empty int
	}{
		{5, 5, 0, 0},
		{4.5, 4, 1, 0},
		{3, 3, 0, 2},
		{0.5, 0, 1, 4},
	}

	for _, tt := range tests {
		full, half, empty := Testimonial{Rating: tt.rating}.Stars()
		if full != tt.full || half != tt.half || empty != tt.empty {
			t.Errorf("Stars(%v) = %d,%d,%d want %d,%d,%d", tt.rating, full, half, empty, tt.full, tt.half, tt.empty)
		}
	}
}

func TestStats_Decode(t *testing.T) {
	var s Stats
	data := `{"downloads_today": 15234, "happy_users": "12k", "system_uptime": null, "user_rating": 4.7}`
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	got := s.Display()
	want := []Stat{
		{Number: "15,234", Label: "Downloads Today"},
		{Number: "12k", Label: "Happy Users"},
		{Number: "99.9%", Label: "Uptime"},
		{Number: "4.7", Label: "User Rating"},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Display()[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestStats_ZeroUsesPlaceholder(t *testing.T) {
	var s Stats
	if err := json.Unmarshal([]byte(`{"downloads_today": 0, "happy_users": ""}`), &s); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	got := s.Display()
	if got[0].Number != PlaceholderDownloadsToday {
		t.Errorf("downloads = %q, want placeholder", got[0].Number)
	}
	if got[1].Number != PlaceholderHappyUsers {
		t.Errorf("happy users = %q, want placeholder", got[1].Number)
	}
}

func TestPlaceholderStats(t *testing.T) {
	got := PlaceholderStats()
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	if got[3].Number != "4.8/5" || got[3].Label != "User Rating" {
		t.Errorf("rating slot = %+v", got[3])
	}
}

func TestFormatThousands(t *testing.T) {
	tests := map[int64]string{
		7:       "7",
		999:     "999",
		1000:    "1,000",
		1234567: "1,234,567",
		-45000:  "-45,000",
	}
	for in, want := range tests {
		if got := formatThousands(in); got != want {
			t.Errorf("formatThousands(%d) = %q, want %q", in, got, want)
		}
	}
}

type trackingCloser struct {
	io.Reader
	closed bool
}

func (c *trackingCloser) Close() error {
	c.closed = true
	return nil
}
