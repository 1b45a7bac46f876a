package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
)

// Templates is the repository for template records.
type Templates struct {
	db  *store.DB
	now func() time.Time
}

// NewTemplates creates a template repository backed by db.
func NewTemplates(db *store.DB) *Templates {
	return &Templates{db: db, now: time.Now}
}

// Create persists a new template. Names are required and unique.
func (r *Templates) Create(_ context.Context, fields models.TemplateFields) (*models.Template, error) {
	if strings.TrimSpace(fields.Name) == "" {
		return nil, fmt.Errorf("name is required: %w", apperr.ErrValidation)
	}
	existing, err := r.db.GetTemplateByName(fields.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("template name %q already in use: %w", fields.Name, apperr.ErrValidation)
	}
	tpl := models.Template{
		ID:        uuid.NewString(),
		Name:      fields.Name,
		Content:   fields.Content,
		CreatedAt: r.now().UTC(),
	}
	if err := r.db.InsertTemplate(tpl); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	return &tpl, nil
}

// Get returns the template with the given id, or ErrNotFound.
func (r *Templates) Get(_ context.Context, id string) (*models.Template, error) {
	tpl, err := r.db.GetTemplate(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	if tpl == nil {
		return nil, apperr.ErrNotFound
	}
	return tpl, nil
}

// List returns all templates ordered by name.
func (r *Templates) List(_ context.Context) ([]models.Template, error) {
	tpls, err := r.db.ListTemplates()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	return tpls, nil
}

// Delete removes the template. Deleting a missing id is not an error.
func (r *Templates) Delete(_ context.Context, id string) error {
	if err := r.db.DeleteTemplate(id); err != nil {
		return fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	return nil
}
