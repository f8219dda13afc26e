package view

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/rs/zerolog/log"
)

//go:embed templates/*.html
var templateFS embed.FS

// Data is the payload handed to the view layer: title, nav fragment, errors,
// flash messages and any form fields to preserve.
type Data map[string]interface{}

// Renderer is the view-layer collaborator. Handlers only supply data, never
// markup.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data Data)
}

// TemplateRenderer renders the embedded HTML templates.
type TemplateRenderer struct {
	templates *template.Template
}

// NewTemplateRenderer parses the embedded templates.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &TemplateRenderer{templates: t}, nil
}

// Render writes the named view with the given status. Render failures are
// logged, never propagated; by then the status line is already on the wire.
func (t *TemplateRenderer) Render(w http.ResponseWriter, status int, name string, data Data) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.templates.ExecuteTemplate(w, name+".html", data); err != nil {
		log.Error().Err(err).Str("view", name).Msg("Failed to render view")
	}
}
