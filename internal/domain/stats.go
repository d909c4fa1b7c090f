package domain

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// StatValue is a display counter as sent by the backend. The backend sends
// either strings ("99.9%") or numbers (1234); both are kept as text.
type StatValue string

// UnmarshalJSON accepts a JSON string, number or null. Zero and null decode
// to the empty value so the placeholder is used instead.
func (v *StatValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = StatValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if f, err := n.Float64(); err == nil && f == 0 {
		*v = ""
		return nil
	}
	if i, err := n.Int64(); err == nil {
		*v = StatValue(formatThousands(i))
		return nil
	}
	*v = StatValue(n.String())
	return nil
}

// Or returns v, or fallback when v is empty.
func (v StatValue) Or(fallback string) string {
	if v == "" {
		return fallback
	}
	return string(v)
}

// Stats is the payload of the backend /stats endpoint.
type Stats struct {
	DownloadsToday StatValue `json:"downloads_today,omitempty"`
	HappyUsers     StatValue `json:"happy_users,omitempty"`
	SystemUptime   StatValue `json:"system_uptime,omitempty"`
	UserRating     StatValue `json:"user_rating,omitempty"`

	// Raw is the body as received, served unchanged by the stats proxy.
	Raw json.RawMessage `json:"-"`
}

// Stat is one counter on the landing page.
type Stat struct {
	Number string `json:"number"`
	Label  string `json:"label"`
}

// Placeholder values shown until the backend answers.
const (
	PlaceholderDownloadsToday = "1,234"
	PlaceholderHappyUsers     = "5,678"
	PlaceholderUptime         = "99.9%"
	PlaceholderUserRating     = "4.8/5"
)

// PlaceholderStats is the display used before the first successful fetch.
func PlaceholderStats() []Stat {
	return Stats{}.Display()
}

// Display maps the backend stats onto the four landing page counters.
func (s Stats) Display() []Stat {
	return []Stat{
		{Number: s.DownloadsToday.Or(PlaceholderDownloadsToday), Label: "Downloads Today"},
		{Number: s.HappyUsers.Or(PlaceholderHappyUsers), Label: "Happy Users"},
		{Number: s.SystemUptime.Or(PlaceholderUptime), Label: "Uptime"},
		{Number: s.UserRating.Or(PlaceholderUserRating), Label: "User Rating"},
	}
}

func formatThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := false
	if n < 0 {
		neg = true
		s = s[1:]
	}
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	if neg {
		return "-" + string(out)
	}
	return string(out)
}
