package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(d Deps, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(d)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Documents CRUD and export.
	r.Get("/documents", h.ListDocuments)
	r.Post("/documents", h.CreateDocument)
	r.Get("/documents/{id}", h.GetDocument)
	r.Put("/documents/{id}", h.UpdateDocument)
	r.Delete("/documents/{id}", h.DeleteDocument)
	r.Get("/documents/{id}/export", h.ExportDocument)

	// Search.
	r.Get("/search", h.Search)

	// Editor session.
	r.Get("/editor", h.EditorState)
	r.Post("/editor/select", h.SelectDocument)
	r.Put("/editor/draft", h.UpdateDraft)
	r.Post("/editor/save", h.SaveDraft)
	r.Get("/editor/preview", h.Preview)

	// Settings.
	r.Get("/settings", h.GetSettings)
	r.Patch("/settings", h.UpdateSettings)

	// Templates.
	r.Get("/templates", h.ListTemplates)
	r.Post("/templates", h.CreateTemplate)
	r.Get("/templates/{id}", h.GetTemplate)
	r.Delete("/templates/{id}", h.DeleteTemplate)

	// Import.
	r.Post("/import", h.Import)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
