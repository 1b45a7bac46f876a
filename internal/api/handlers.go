package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/editor"
	"github.com/starford/ansuz/internal/export"
	"github.com/starford/ansuz/internal/importer"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/repository"
)

const maxBodyBytes = 10 << 20 // 10 MB

// Deps are the collaborators the API routes over.
type Deps struct {
	Session   *editor.Session
	Documents *repository.Documents
	Templates *repository.Templates
	Settings  *repository.Settings
	Renderer  *render.Renderer
	Exports   *export.Registry
	Importer  *importer.Importer
}

// Handler holds API route handlers. Mutations go through the session so the
// editor state and the change feed stay coherent; reads hit the
// repositories directly.
type Handler struct {
	session   *editor.Session
	docs      *repository.Documents
	templates *repository.Templates
	settings  *repository.Settings
	renderer  *render.Renderer
	exports   *export.Registry
	imp       *importer.Importer
}

// NewHandler creates a new Handler.
func NewHandler(d Deps) *Handler {
	return &Handler{
		session:   d.Session,
		docs:      d.Documents,
		templates: d.Templates,
		settings:  d.Settings,
		renderer:  d.Renderer,
		exports:   d.Exports,
		imp:       d.Importer,
	}
}

// ListDocuments handles GET /api/documents.
//
//	@Summary		List documents, most recently modified first
//	@Tags			documents
//	@Produce		json
//	@Success		200	{object}	DocumentListResponse
//	@Security		BearerAuth
//	@Router			/documents [get]
func (h *Handler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.docs.List(r.Context())
	if err != nil {
		writeError(w, "list documents", err)
		return
	}
	if docs == nil {
		docs = []models.Document{}
	}
	writeJSON(w, http.StatusOK, DocumentListResponse{Documents: docs, Total: len(docs)})
}

// GetDocument handles GET /api/documents/{id}.
//
//	@Summary		Get a single document by id
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"Document id"
//	@Success		200	{object}	models.Document
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id} [get]
func (h *Handler) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.docs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// CreateDocument handles POST /api/documents.
//
//	@Summary		Create a new document, optionally seeded from a template
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateDocumentRequest	true	"Document to create"
//	@Success		201		{object}	models.Document
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents [post]
func (h *Handler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	content := req.Content
	if req.TemplateID != "" && content == "" {
		tpl, err := h.templates.Get(r.Context(), req.TemplateID)
		if err != nil {
			if errors.Is(err, apperr.ErrNotFound) {
				writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("template %s does not exist", req.TemplateID)))
				return
			}
			writeError(w, "load template", err)
			return
		}
		content = tpl.Content
	}

	doc, err := h.session.CreateDocument(r.Context(), models.DocumentFields{
		Title:   req.Title,
		Content: content,
		Tags:    req.Tags,
	})
	if err != nil {
		writeError(w, "create document", err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// UpdateDocument handles PUT /api/documents/{id}.
//
//	@Summary		Apply a partial update to a document
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Document id"
//	@Param			body	body		UpdateDocumentRequest	true	"Fields to change"
//	@Success		200		{object}	models.Document
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id} [put]
func (h *Handler) UpdateDocument(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req UpdateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	doc, err := h.session.UpdateDocument(r.Context(), chi.URLParam(r, "id"), req.patch())
	if err != nil {
		writeError(w, "update document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// DeleteDocument handles DELETE /api/documents/{id}. Deleting a missing
// document succeeds.
//
//	@Summary		Delete a document
//	@Tags			documents
//	@Param			id	path	string	true	"Document id"
//	@Success		204	"Document deleted"
//	@Security		BearerAuth
//	@Router			/documents/{id} [delete]
func (h *Handler) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete document", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportDocument handles GET /api/documents/{id}/export.
//
//	@Summary		Download a document in pdf, html, docx, or xlsx form
//	@Tags			documents
//	@Param			id			path	string	true	"Document id"
//	@Param			format		query	string	true	"Export format"	Enums(pdf, html, docx, xlsx)
//	@Param			page_size	query	string	false	"PDF page size"	Enums(a4, letter)
//	@Param			margin_mm	query	number	false	"PDF margin in millimetres"
//	@Param			metadata	query	bool	false	"Include a metadata line"
//	@Success		200	{file}		binary
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Failure		502	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/documents/{id}/export [get]
func (h *Handler) ExportDocument(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'format' is required"))
		return
	}
	exp, err := h.exports.Get(format)
	if err != nil {
		writeError(w, "export document", err)
		return
	}
	doc, err := h.docs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "export document", err)
		return
	}
	data, err := exp.Export(*doc, exportOptions(r.URL.Query()))
	if err != nil {
		writeError(w, "export document", err)
		return
	}
	w.Header().Set("Content-Type", exp.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(doc.Title, exp.Format())))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		slog.Error("export write failed", slog.String("error", err.Error()))
	}
}

// exportOptions reads format knobs from the query string, falling back to
// defaults for absent or unparseable values.
func exportOptions(q url.Values) export.Options {
	opts := export.DefaultOptions()
	switch strings.ToLower(q.Get("page_size")) {
	case "letter":
		opts.PageSize = export.PageLetter
	case "a4":
		opts.PageSize = export.PageA4
	}
	if m, err := strconv.ParseFloat(q.Get("margin_mm"), 64); err == nil && m >= 0 {
		opts.MarginMM = m
	}
	if meta, err := strconv.ParseBool(q.Get("metadata")); err == nil {
		opts.IncludeMetadata = meta
	}
	return opts
}

// Search handles GET /api/search.
//
//	@Summary		Search documents across titles, content, and tags
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	true	"Search query"
//	@Success		200	{object}	SearchResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	results, err := h.docs.Search(r.Context(), q)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	if results == nil {
		results = []SearchResult{}
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
