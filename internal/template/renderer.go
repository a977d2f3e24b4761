package template

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

const (
	templateDir string = "tmpl"
	baseFile    string = "base.html"
)

//go:embed tmpl/*.html
var files embed.FS

var pages = []string{
	"login.html",
	"signup.html",
	"dashboard.html",
}

type Data struct {
	PageTitle string
	UserID    string

	// Form state
	FormID  string
	Name    string
	Email   string
	Error   string
	Success string
}

type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page together with the base layout.
func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}

	for _, p := range pages {
		t, err := template.ParseFS(files,
			templateDir+"/"+p,
			templateDir+"/"+baseFile,
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		r.pages[p] = t
	}

	return r, nil
}

// Render executes tmpl into a buffer first so a failing template never
// leaves a half written page.
func (r *Renderer) Render(w http.ResponseWriter, status int, tmpl string, td *Data) error {
	t, ok := r.pages[tmpl]
	if !ok {
		return fmt.Errorf("unknown template %q", tmpl)
	}

	buf := &bytes.Buffer{}

	err := t.Execute(buf, td)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err = buf.WriteTo(w)
	return err
}
