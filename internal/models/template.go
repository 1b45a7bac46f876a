package models

import "time"

// Template is reusable starting content for new documents.
type Template struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TemplateFields carries the caller-supplied fields for a new template.
type TemplateFields struct {
	Name    string
	Content string
}
