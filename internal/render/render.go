// Package render converts markdown draft content to sanitized HTML for the
// preview pane and the HTML exporter.
package render

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/starford/ansuz/internal/apperr"
)

// ErrorPlaceholder replaces the preview when conversion fails. A broken
// preview must never block editing.
const ErrorPlaceholder = `<div class="preview-error">Preview unavailable</div>`

// Renderer converts markdown to sanitized HTML. Conversions are memoized on
// the exact content string with a single entry, which is all successive
// keystrokes on one draft can use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy

	mu      sync.Mutex
	lastIn  string
	lastOut string
	primed  bool
}

// New creates a renderer with GitHub-flavored extensions and a UGC
// sanitization policy.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		policy: bluemonday.UGCPolicy(),
	}
}

// Preview converts content for the preview pane. Failures yield the fixed
// placeholder instead of an error.
func (r *Renderer) Preview(content string) string {
	out, err := r.Render(content)
	if err != nil {
		return ErrorPlaceholder
	}
	return out
}

// Render converts content to sanitized HTML. Failures are wrapped as
// ErrRender.
func (r *Renderer) Render(content string) (string, error) {
	r.mu.Lock()
	if r.primed && r.lastIn == content {
		out := r.lastOut
		r.mu.Unlock()
		return out, nil
	}
	r.mu.Unlock()

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("%w: %w", apperr.ErrRender, err)
	}
	out := r.policy.Sanitize(buf.String())

	r.mu.Lock()
	r.lastIn, r.lastOut, r.primed = content, out, true
	r.mu.Unlock()
	return out, nil
}
