//go:build sqlite_fts5

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/ansuz/internal/models"
)

func initSearchIndex(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS documents_fts USING fts5(
			id UNINDEXED,
			title,
			content,
			tags,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	if err != nil {
		return err
	}

	// Rebuild on open: the mirror is stale when the store was last written
	// by a binary built without the sqlite_fts5 tag.
	if _, err := conn.Exec(`DELETE FROM documents_fts`); err != nil {
		return err
	}
	_, err = conn.Exec(`
		INSERT INTO documents_fts (id, title, content, tags)
		SELECT id, title, content, tags FROM documents
	`)
	return err
}

// syncSearchIndex mirrors one document row into the FTS table. The mirror
// is best effort; it is rebuilt from the documents table on every open.
func (db *DB) syncSearchIndex(id string) {
	_, _ = db.conn.Exec(`DELETE FROM documents_fts WHERE id = ?`, id)
	_, _ = db.conn.Exec(`
		INSERT INTO documents_fts (id, title, content, tags)
		SELECT id, title, content, tags FROM documents WHERE id = ?
	`, id)
}

// FilterDocuments returns documents with a token prefix-matching the query
// (callers re-verify and rank; see the repository search rules).
func (db *DB) FilterDocuments(substr string) ([]models.Document, error) {
	expr := ftsQuery(substr)
	if expr == "" {
		return nil, nil
	}
	rows, err := db.conn.Query(`
		SELECT `+documentColumns+`
		FROM documents
		WHERE id IN (SELECT id FROM documents_fts WHERE documents_fts MATCH ?)
		ORDER BY modified_at DESC, id ASC
	`, expr)
	if err != nil {
		return nil, fmt.Errorf("store: filter documents: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// ftsQuery turns free text into an FTS5 prefix query, quoting every token
// so user input cannot inject MATCH operators.
func ftsQuery(q string) string {
	fields := strings.Fields(q)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, `"`+strings.ReplaceAll(f, `"`, `""`)+`"*`)
	}
	return strings.Join(parts, " ")
}
