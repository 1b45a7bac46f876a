package repository

import (
	"context"
	"fmt"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/store"
)

// Settings is the repository for the singleton preferences record.
type Settings struct {
	db *store.DB
}

// NewSettings creates a settings repository backed by db.
func NewSettings(db *store.DB) *Settings {
	return &Settings{db: db}
}

// Get returns the persisted settings, or ErrNotFound before first Init.
func (r *Settings) Get(_ context.Context) (*models.Settings, error) {
	s, err := r.db.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	if s == nil {
		return nil, apperr.ErrNotFound
	}
	return s, nil
}

// Init writes the default settings if none exist yet and returns the
// current record either way.
func (r *Settings) Init(ctx context.Context) (*models.Settings, error) {
	s, err := r.db.GetSettings()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	if s != nil {
		return s, nil
	}
	defaults := models.DefaultSettings()
	if err := r.db.PutSettings(defaults); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	return &defaults, nil
}

// Apply merges the patch over the current settings, validates the result,
// persists it, and returns the updated record.
func (r *Settings) Apply(ctx context.Context, patch models.SettingsPatch) (*models.Settings, error) {
	cur, err := r.Get(ctx)
	if err != nil {
		return nil, err
	}
	next := patch.Apply(*cur)
	if err := next.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	if err := r.db.PutSettings(next); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrStorage, err)
	}
	return &next, nil
}
