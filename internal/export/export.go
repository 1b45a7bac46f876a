// Package export converts documents to downloadable byte streams. Each
// exporter is a one-shot mapping from document content and title to bytes;
// exporters never mutate the document or any shared state, and a failure in
// one format leaves the others unaffected.
package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/render"
)

// Page sizes accepted by the PDF exporter.
const (
	PageA4     = "A4"
	PageLetter = "Letter"
)

// Options are the format-specific knobs shared across exporters. Formats
// ignore the fields that do not apply to them.
type Options struct {
	PageSize        string  `json:"page_size,omitempty"`
	MarginMM        float64 `json:"margin_mm,omitempty"`
	IncludeMetadata bool    `json:"include_metadata,omitempty"`
}

// DefaultOptions returns the options used when the caller specifies none.
func DefaultOptions() Options {
	return Options{PageSize: PageA4, MarginMM: 15}
}

// Exporter converts one document to a byte stream in a fixed format.
type Exporter interface {
	Format() string
	ContentType() string
	Export(doc models.Document, opts Options) ([]byte, error)
}

// Registry holds the available exporters keyed by format name.
type Registry struct {
	exporters map[string]Exporter
}

// NewRegistry registers the four built-in exporters. The renderer is shared
// with the preview path so the HTML export matches what the user saw.
func NewRegistry(renderer *render.Renderer) *Registry {
	r := &Registry{exporters: make(map[string]Exporter)}
	for _, e := range []Exporter{NewPDF(), NewHTML(renderer), NewDOCX(), NewXLSX()} {
		r.exporters[e.Format()] = e
	}
	return r
}

// Get returns the exporter for a format name.
func (r *Registry) Get(format string) (Exporter, error) {
	e, ok := r.exporters[strings.ToLower(strings.TrimSpace(format))]
	if !ok {
		return nil, fmt.Errorf("unknown export format %q: %w", format, apperr.ErrValidation)
	}
	return e, nil
}

// Formats returns the registered format names, sorted.
func (r *Registry) Formats() []string {
	out := make([]string, 0, len(r.exporters))
	for f := range r.exporters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Filename suggests a download name derived from the document title.
func Filename(title, format string) string {
	slug := slugify(title)
	if slug == "" {
		slug = "document"
	}
	return slug + "." + format
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		default:
			if !dash && b.Len() > 0 {
				b.WriteByte('-')
				dash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// metadataLine summarizes a document for the optional metadata header.
func metadataLine(doc models.Document) string {
	parts := []string{
		"Created " + doc.CreatedAt.Format("2006-01-02"),
		"Modified " + doc.ModifiedAt.Format("2006-01-02 15:04"),
		humanize.Bytes(uint64(doc.Size)),
	}
	if len(doc.Tags) > 0 {
		parts = append(parts, "Tags: "+strings.Join(doc.Tags, ", "))
	}
	return strings.Join(parts, " | ")
}
