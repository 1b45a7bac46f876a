package api

import (
	"github.com/starford/ansuz/internal/editor"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/repository"
)

// CreateDocumentRequest is the request body for creating a document.
// TemplateID, when set and Content is empty, seeds the content from a
// stored template.
type CreateDocumentRequest struct {
	Title      string   `json:"title" example:"Meeting Notes" validate:"required"`
	Content    string   `json:"content" example:"# Agenda"`
	Tags       []string `json:"tags,omitempty" example:"work,weekly"`
	TemplateID string   `json:"template_id,omitempty"`
}

// UpdateDocumentRequest is a partial document update. Absent fields are
// left untouched.
type UpdateDocumentRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Tags     *[]string `json:"tags"`
	Favorite *bool     `json:"favorite"`
}

func (u UpdateDocumentRequest) patch() models.DocumentPatch {
	return models.DocumentPatch{
		Title:    u.Title,
		Content:  u.Content,
		Tags:     u.Tags,
		Favorite: u.Favorite,
	}
}

// DocumentListResponse wraps document listings.
type DocumentListResponse struct {
	Documents []models.Document `json:"documents" validate:"required"`
	Total     int               `json:"total" example:"42" validate:"required"`
}

// SearchResult is a single search hit (aliased from the domain layer).
type SearchResult = repository.SearchResult

// SearchResponse wraps search results, best match first.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// EditorState is the editor snapshot response (aliased from the domain layer).
type EditorState = editor.State

// SelectRequest names the document to load into the editor.
type SelectRequest struct {
	ID string `json:"id" validate:"required"`
}

// DraftRequest carries the latest editor buffer.
type DraftRequest struct {
	Content string `json:"content"`
}

// PreviewResponse carries the draft rendered to sanitized HTML.
type PreviewResponse struct {
	HTML string `json:"html"`
}

// CreateTemplateRequest is the request body for creating a template.
type CreateTemplateRequest struct {
	Name    string `json:"name" example:"Weekly Review" validate:"required"`
	Content string `json:"content" example:"# Week of ..."`
}

// TemplateListResponse wraps template listings.
type TemplateListResponse struct {
	Templates []models.Template `json:"templates" validate:"required"`
}

// ImportRequest is the JSON form of an import: a file name and its text.
type ImportRequest struct {
	Filename string `json:"filename" example:"notes.md" validate:"required"`
	Content  string `json:"content"`
}
