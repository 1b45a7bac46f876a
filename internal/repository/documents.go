// Package repository translates application objects to and from store
// records. It owns id assignment, timestamping, size computation, and the
// mapping of store outcomes onto the apperr taxonomy.
package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
)

// SearchResult pairs a matching document with its rank and a snippet taken
// from the first matching content line.
type SearchResult struct {
	Document models.Document `json:"document"`
	Score    int             `json:"score"`
	Snippet  string          `json:"snippet,omitempty"`
}

// Documents is the repository for document records.
type Documents struct {
	db  *store.DB
	now func() time.Time
}

// NewDocuments creates a document repository backed by db.
func NewDocuments(db *store.DB) *Documents {
	return &Documents{db: db, now: time.Now}
}

// Create persists a new document. The title is required; ID, timestamps, and
// size are assigned here. Returns the created document.
func (r *Documents) Create(_ context.Context, fields models.DocumentFields) (*models.Document, error) {
	if strings.TrimSpace(fields.Title) == "" {
		return nil, fmt.Errorf("title is required: %w", apperr.ErrValidation)
	}
	now := r.now().UTC()
	doc := models.Document{
		ID:         uuid.NewString(),
		Title:      fields.Title,
		Content:    fields.Content,
		Tags:       fields.Tags,
		Favorite:   fields.Favorite,
		Size:       int64(len(fields.Content)),
		CreatedAt:  now,
		ModifiedAt: now,
	}
	if err := r.db.InsertDocument(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	return &doc, nil
}

// Get returns the document with the given id, or ErrNotFound.
func (r *Documents) Get(_ context.Context, id string) (*models.Document, error) {
	doc, err := r.db.GetDocument(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	if doc == nil {
		return nil, apperr.ErrNotFound
	}
	return doc, nil
}

// Update applies a partial update. Size is recomputed when the patch carries
// content, and the modified timestamp always moves strictly forward, even
// when the wall clock has not. Returns the document re-read after the write.
func (r *Documents) Update(ctx context.Context, id string, patch models.DocumentPatch) (*models.Document, error) {
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, fmt.Errorf("title is required: %w", apperr.ErrValidation)
	}
	prev, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	upd := store.DocumentUpdate{
		Title:      patch.Title,
		Content:    patch.Content,
		Tags:       patch.Tags,
		Favorite:   patch.Favorite,
		ModifiedAt: r.modifiedAfter(prev.ModifiedAt),
	}
	if patch.Content != nil {
		size := int64(len(*patch.Content))
		upd.Size = &size
	}
	existed, err := r.db.UpdateDocument(id, upd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	if !existed {
		return nil, apperr.ErrNotFound
	}
	return r.Get(ctx, id)
}

// Delete removes the document. Deleting a missing id is not an error.
func (r *Documents) Delete(_ context.Context, id string) error {
	if err := r.db.DeleteDocument(id); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	return nil
}

// List returns every document, most recently modified first.
func (r *Documents) List(_ context.Context) ([]models.Document, error) {
	docs, err := r.db.ListDocuments()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	return docs, nil
}

// Search matches the query case-insensitively against title, content, and
// tags. Hits are ranked by the number of distinct matching fragments (the
// title, each matching content line, each matching tag) descending, ties
// broken by most recently modified. An empty query matches nothing.
func (r *Documents) Search(_ context.Context, query string) ([]SearchResult, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil, nil
	}
	candidates, err := r.db.FilterDocuments(q)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}

	results := make([]SearchResult, 0, len(candidates))
	for _, doc := range candidates {
		score, snippet := scoreDocument(doc, q)
		if score == 0 {
			continue
		}
		results = append(results, SearchResult{Document: doc, Score: score, Snippet: snippet})
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.ModifiedAt.After(results[j].Document.ModifiedAt)
	})
	return results, nil
}

// modifiedAfter returns the timestamp for an update, nudged past prev when
// the clock stalls so successive updates always compare strictly greater.
func (r *Documents) modifiedAfter(prev time.Time) time.Time {
	now := r.now().UTC()
	if !now.After(prev) {
		return prev.Add(time.Nanosecond)
	}
	return now
}

func scoreDocument(doc models.Document, q string) (score int, snippet string) {
	if strings.Contains(strings.ToLower(doc.Title), q) {
		score++
	}
	for _, line := range strings.Split(doc.Content, "\n") {
		if strings.Contains(strings.ToLower(line), q) {
			score++
			if snippet == "" {
				snippet = strings.TrimSpace(line)
			}
		}
	}
	for _, tag := range doc.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			score++
		}
	}
	return score, snippet
}
