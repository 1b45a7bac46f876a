//go:build !sqlite_fts5

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

func initSearchIndex(_ *sql.DB) error {
	// FTS5 not compiled in; candidate filtering uses LIKE on the documents table.
	return nil
}

func (db *DB) syncSearchIndex(_ string) {
	// Documents are queried directly; nothing extra to maintain.
}

// FilterDocuments returns documents whose title, content, or tags contain
// the given substring (ASCII case folding in SQL; callers re-verify and
// rank with full Unicode folding).
func (db *DB) FilterDocuments(substr string) ([]models.Document, error) {
	like := "%" + strings.ToLower(substr) + "%"
	rows, err := db.conn.Query(`
		SELECT `+documentColumns+`
		FROM documents
		WHERE lower(title) LIKE ? OR lower(content) LIKE ? OR lower(tags) LIKE ?
		ORDER BY modified_at DESC, id ASC
	`, like, like, like)
	if err != nil {
		return nil, fmt.Errorf("store: filter documents: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}
