// Package models defines the domain types for Ansuz.
package models

import "time"

// Document represents one Markdown file in the library.
type Document struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Tags       []string  `json:"tags,omitempty"`
	Favorite   bool      `json:"favorite"`
	Size       int64     `json:"size"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}

// DocumentFields carries the caller-supplied fields for a new document.
// ID, timestamps, and size are assigned by the repository.
type DocumentFields struct {
	Title    string
	Content  string
	Tags     []string
	Favorite bool
}

// DocumentPatch is a partial update. Nil fields are left untouched.
type DocumentPatch struct {
	Title    *string
	Content  *string
	Tags     *[]string
	Favorite *bool
}

// IsZero reports whether the patch changes nothing.
func (p DocumentPatch) IsZero() bool {
	return p.Title == nil && p.Content == nil && p.Tags == nil && p.Favorite == nil
}
