package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/starford/ansuz/internal/models"
)

// InsertTemplate persists a template record.
func (db *DB) InsertTemplate(t models.Template) error {
	_, err := db.conn.Exec(`
		INSERT INTO templates (id, name, content, created_at)
		VALUES (?, ?, ?, ?)
	`, t.ID, t.Name, t.Content, t.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("store: insert template: %w", err)
	}
	return nil
}

// GetTemplate returns the template with the given id, or nil when absent.
func (db *DB) GetTemplate(id string) (*models.Template, error) {
	row := db.conn.QueryRow(`SELECT id, name, content, created_at FROM templates WHERE id = ?`, id)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get template: %w", err)
	}
	return t, nil
}

// GetTemplateByName returns the template with the given name, or nil.
func (db *DB) GetTemplateByName(name string) (*models.Template, error) {
	row := db.conn.QueryRow(`SELECT id, name, content, created_at FROM templates WHERE name = ?`, name)
	t, err := scanTemplate(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get template by name: %w", err)
	}
	return t, nil
}

// ListTemplates returns all templates ordered by name.
func (db *DB) ListTemplates() ([]models.Template, error) {
	rows, err := db.conn.Query(`SELECT id, name, content, created_at FROM templates ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: list templates: %w", err)
	}
	defer rows.Close()

	var out []models.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan template: %w", err)
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// DeleteTemplate removes the record. Deleting an absent id is a no-op.
func (db *DB) DeleteTemplate(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM templates WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete template: %w", err)
	}
	return nil
}

func scanTemplate(r rowScanner) (*models.Template, error) {
	var t models.Template
	var createdNs int64
	if err := r.Scan(&t.ID, &t.Name, &t.Content, &createdNs); err != nil {
		return nil, err
	}
	t.CreatedAt = time.Unix(0, createdNs).UTC()
	return &t, nil
}
