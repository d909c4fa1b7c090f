// Package ui provides the embedded site templates and static assets.
//
// Every page is rendered through layout.html, which pulls in the page's
// "title" and "content" blocks. Static files are served under /static/.
package ui

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/iconidentify/tubegrab/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names accepted by Renderer.Render.
const (
	PageLanding    = "landing"
	PageDisclaimer = "disclaimer"
	PageDownload   = "download"
)

var pages = []string{PageLanding, PageDisclaimer, PageDownload}

// Static returns the static asset tree rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Renderer executes the parsed page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page against the shared layout.
func NewRenderer() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		t, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render writes the named page.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	return t.ExecuteTemplate(w, "layout.html", data)
}

// StarRow is a rating laid out as star glyphs.
type StarRow struct {
	Full  []struct{}
	Half  bool
	Empty []struct{}
}

var funcs = template.FuncMap{
	"stars": func(t domain.Testimonial) StarRow {
		full, half, empty := t.Stars()
		return StarRow{
			Full:  make([]struct{}, full),
			Half:  half == 1,
			Empty: make([]struct{}, empty),
		}
	},
	"initial": func(name string) string {
		name = strings.TrimSpace(name)
		if name == "" {
			return "?"
		}
		return strings.ToUpper(string([]rune(name)[:1]))
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("Jan 2, 2006")
	},
	"millis": func(d time.Duration) int64 {
		return d.Milliseconds()
	},
	"seconds": func(d time.Duration) int {
		return int(d.Round(time.Second) / time.Second)
	},
}
