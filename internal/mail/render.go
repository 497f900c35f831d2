package mail

import (
	"bytes"
	"embed"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

// Detail is one row of the key/value table in an email body.
type Detail struct {
	Label string
	Value string
}

// Page is the content of a rendered email.
type Page struct {
	Title       string
	Paragraphs  []string
	Details     []Detail
	ActionURL   string
	ActionLabel string
}

// Renderer renders pages with the embedded layout.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render returns the HTML body for page. Values are escaped.
func (r *Renderer) Render(page Page) (string, error) {
	if page.ActionURL != "" && page.ActionLabel == "" {
		page.ActionLabel = "Open SPOT"
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		return "", err
	}
	return buf.String(), nil
}
