package admin

import (
	"embed"
	"io"

	template "github.com/goliatone/go-template"
)

// Renderer turns a screen template and its payload into HTML.
type Renderer interface {
	Render(name string, data any, out ...io.Writer) (string, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(name string, data any, out ...io.Writer) (string, error)

func (f RendererFunc) Render(name string, data any, out ...io.Writer) (string, error) {
	return f(name, data, out...)
}

//go:embed templates/*.html
var screenTemplates embed.FS

// NewTemplateRenderer loads the layout and the five screen pages.
func NewTemplateRenderer() (Renderer, error) {
	return template.NewRenderer(
		template.WithFS(screenTemplates),
		template.WithBaseDir("templates"),
		template.WithExtension(".html"),
	)
}
