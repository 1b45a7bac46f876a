package export

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/render"
)

// HTML wraps the rendered preview in a standalone page.
type HTML struct {
	renderer *render.Renderer
}

// NewHTML creates the HTML exporter sharing the preview renderer.
func NewHTML(r *render.Renderer) *HTML { return &HTML{renderer: r} }

func (*HTML) Format() string      { return models.FormatHTML }
func (*HTML) ContentType() string { return "text/html; charset=utf-8" }

var htmlPage = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
body { max-width: 46rem; margin: 2.5rem auto; padding: 0 1rem; font-family: Georgia, serif; line-height: 1.6; color: #1a1a1a; }
h1, h2, h3, h4 { font-family: Helvetica, Arial, sans-serif; line-height: 1.25; }
pre { background: #f5f5f5; padding: 0.75rem; overflow-x: auto; border-radius: 4px; }
code { font-family: Menlo, Consolas, monospace; font-size: 0.92em; }
blockquote { border-left: 3px solid #ccc; margin-left: 0; padding-left: 1rem; color: #555; }
.meta { color: #777; font-size: 0.85rem; border-bottom: 1px solid #e5e5e5; padding-bottom: 0.75rem; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{- if .Meta}}
<p class="meta">{{.Meta}}</p>
{{- end}}
<main>
{{.Body}}
</main>
</body>
</html>
`))

// Export renders the content and embeds it in the page template. The body
// went through the sanitizer, so it is inserted as trusted HTML.
func (h *HTML) Export(doc models.Document, opts Options) ([]byte, error) {
	body, err := h.renderer.Render(doc.Content)
	if err != nil {
		return nil, fmt.Errorf("html export: %w", err)
	}
	data := struct {
		Title string
		Meta  string
		Body  template.HTML
	}{Title: doc.Title, Body: template.HTML(body)}
	if opts.IncludeMetadata {
		data.Meta = metadataLine(doc)
	}

	var buf bytes.Buffer
	if err := htmlPage.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("html export: %w: %w", apperr.ErrRender, err)
	}
	return buf.Bytes(), nil
}
