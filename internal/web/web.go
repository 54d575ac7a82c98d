// Package web holds the HTML templates and static assets, embedded into the
// binary.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"

	"github.com/phrazzld/todo-app/internal/domain"
	"github.com/phrazzld/todo-app/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// IndexData is the input of the index page.
type IndexData struct {
	Tasks []domain.Task
	Flash *session.Flash
}

// Renderer renders the application's pages.
type Renderer struct {
	index *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	index, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template: %w", err)
	}
	return &Renderer{index: index}, nil
}

// RenderIndex writes the task list page to w.
func (r *Renderer) RenderIndex(w io.Writer, data IndexData) error {
	if err := r.index.Execute(w, data); err != nil {
		return fmt.Errorf("failed to render index: %w", err)
	}
	return nil
}

// StaticHandler serves assets from dir, or from the embedded copy when dir
// is empty. Paths are relative to the handler's mount point.
func StaticHandler(dir string) http.Handler {
	if dir != "" {
		return http.FileServer(http.Dir(dir))
	}
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
