package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/starford/ansuz/internal/models"
)

// DocumentUpdate describes a partial column update. Nil fields are not
// written. ModifiedAt is always written; Size must accompany Content.
type DocumentUpdate struct {
	Title      *string
	Content    *string
	Tags       *[]string
	Favorite   *bool
	Size       *int64
	ModifiedAt time.Time
}

const documentColumns = `id, title, content, tags, favorite, size, created_at, modified_at`

// InsertDocument persists a fully-populated document record.
func (db *DB) InsertDocument(d models.Document) error {
	tagsJSON, _ := json.Marshal(tagsOrEmpty(d.Tags))
	_, err := db.conn.Exec(`
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, d.ID, d.Title, d.Content, string(tagsJSON), boolToInt(d.Favorite), d.Size,
		d.CreatedAt.UnixNano(), d.ModifiedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("store: insert document: %w", err)
	}
	db.syncSearchIndex(d.ID)
	return nil
}

// GetDocument returns the document with the given id, or nil when absent.
func (db *DB) GetDocument(id string) (*models.Document, error) {
	row := db.conn.QueryRow(`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store: get document: %w", err)
	}
	return d, nil
}

// UpdateDocument writes only the columns set in upd and reports whether a
// row with the given id existed.
func (db *DB) UpdateDocument(id string, upd DocumentUpdate) (bool, error) {
	sets := []string{"modified_at = ?"}
	args := []any{upd.ModifiedAt.UnixNano()}

	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *upd.Content)
	}
	if upd.Tags != nil {
		tagsJSON, _ := json.Marshal(tagsOrEmpty(*upd.Tags))
		sets = append(sets, "tags = ?")
		args = append(args, string(tagsJSON))
	}
	if upd.Favorite != nil {
		sets = append(sets, "favorite = ?")
		args = append(args, boolToInt(*upd.Favorite))
	}
	if upd.Size != nil {
		sets = append(sets, "size = ?")
		args = append(args, *upd.Size)
	}

	args = append(args, id)
	res, err := db.conn.Exec(`UPDATE documents SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return false, fmt.Errorf("store: update document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("store: update document rows: %w", err)
	}
	if n > 0 {
		db.syncSearchIndex(id)
	}
	return n > 0, nil
}

// DeleteDocument removes the record. Deleting an absent id is a no-op.
func (db *DB) DeleteDocument(id string) error {
	if _, err := db.conn.Exec(`DELETE FROM documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("store: delete document: %w", err)
	}
	db.syncSearchIndex(id)
	return nil
}

// ListDocuments returns every document ordered by modified_at descending.
func (db *DB) ListDocuments() ([]models.Document, error) {
	rows, err := db.conn.Query(`SELECT ` + documentColumns + ` FROM documents ORDER BY modified_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("store: list documents: %w", err)
	}
	defer rows.Close()
	return collectDocuments(rows)
}

// CountDocuments returns the number of stored documents.
func (db *DB) CountDocuments() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM documents`).Scan(&n); err != nil {
		return 0, fmt.Errorf("store: count documents: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(r rowScanner) (*models.Document, error) {
	var d models.Document
	var tagsJSON string
	var favorite int
	var createdNs, modifiedNs int64

	if err := r.Scan(&d.ID, &d.Title, &d.Content, &tagsJSON, &favorite, &d.Size, &createdNs, &modifiedNs); err != nil {
		return nil, err
	}
	d.Favorite = favorite != 0
	d.CreatedAt = time.Unix(0, createdNs).UTC()
	d.ModifiedAt = time.Unix(0, modifiedNs).UTC()
	if err := json.Unmarshal([]byte(tagsJSON), &d.Tags); err != nil {
		d.Tags = nil
	}
	if len(d.Tags) == 0 {
		d.Tags = nil
	}
	return &d, nil
}

func collectDocuments(rows *sql.Rows) ([]models.Document, error) {
	var out []models.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan document: %w", err)
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
