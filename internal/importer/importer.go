// Package importer turns external files into documents. It is the headless
// counterpart of dropping a file onto the editor: content is stored verbatim
// and the title comes from the file name.
package importer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

// DocumentCreator creates documents from imported content. *editor.Session
// satisfies it.
type DocumentCreator interface {
	CreateDocument(ctx context.Context, fields models.DocumentFields) (*models.Document, error)
}

// Importer creates documents from files.
type Importer struct {
	docs DocumentCreator
	log  *slog.Logger
}

func New(docs DocumentCreator, log *slog.Logger) *Importer {
	if log == nil {
		log = slog.Default()
	}
	return &Importer{docs: docs, log: log}
}

// TitleFromFilename derives a document title from a file name: the base name
// with its extension removed. Empty stems fall back to "Untitled".
func TitleFromFilename(filename string) string {
	base := filepath.Base(filename)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.TrimSpace(stem)
	if stem == "" || stem == "." || stem == "/" {
		return "Untitled"
	}
	return stem
}

// FromFile creates a document holding raw exactly as given.
func (i *Importer) FromFile(ctx context.Context, filename string, raw []byte) (*models.Document, error) {
	doc, err := i.docs.CreateDocument(ctx, models.DocumentFields{
		Title:   TitleFromFilename(filename),
		Content: string(raw),
	})
	if err != nil {
		return nil, fmt.Errorf("importer: create from %q: %w", filename, err)
	}
	i.log.Info("importer: imported", slog.String("file", filename), slog.String("id", doc.ID))
	return doc, nil
}
