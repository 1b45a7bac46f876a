package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/starford/ansuz/internal/models"
)

// GetSettings returns the persisted settings row, or nil when none has
// been written yet.
func (db *DB) GetSettings() (*models.Settings, error) {
	row := db.conn.QueryRow(`
		SELECT theme, font_family, font_size, autosave_interval_ms, preview_layout, default_export_format
		FROM settings WHERE id = 1
	`)
	var s models.Settings
	var intervalMs int64
	err := row.Scan(&s.Theme, &s.FontFamily, &s.FontSize, &intervalMs, &s.PreviewLayout, &s.DefaultExportFormat)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get settings: %w", err)
	}
	s.AutosaveInterval = time.Duration(intervalMs) * time.Millisecond
	return &s, nil
}

// PutSettings writes the settings row, replacing any previous values.
func (db *DB) PutSettings(s models.Settings) error {
	_, err := db.conn.Exec(`
		INSERT INTO settings (id, theme, font_family, font_size, autosave_interval_ms, preview_layout, default_export_format)
		VALUES (1, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			theme = excluded.theme,
			font_family = excluded.font_family,
			font_size = excluded.font_size,
			autosave_interval_ms = excluded.autosave_interval_ms,
			preview_layout = excluded.preview_layout,
			default_export_format = excluded.default_export_format
	`, s.Theme, s.FontFamily, s.FontSize, s.AutosaveInterval.Milliseconds(), s.PreviewLayout, s.DefaultExportFormat)
	if err != nil {
		return fmt.Errorf("store: put settings: %w", err)
	}
	return nil
}
