package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/ansuz/internal/models"
)

// GetSettings handles GET /api/settings.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.settings.Get(r.Context())
	if err != nil {
		writeError(w, "get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// UpdateSettings handles PATCH /api/settings. Absent fields keep their
// stored values; invalid values reject the whole patch.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch models.SettingsPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	s, err := h.settings.Apply(r.Context(), patch)
	if err != nil {
		writeError(w, "update settings", err)
		return
	}
	// A changed quiet period takes effect on the next re-arm.
	h.session.SetQuietPeriod(s.AutosaveInterval)
	writeJSON(w, http.StatusOK, s)
}

// ListTemplates handles GET /api/templates.
func (h *Handler) ListTemplates(w http.ResponseWriter, r *http.Request) {
	tpls, err := h.templates.List(r.Context())
	if err != nil {
		writeError(w, "list templates", err)
		return
	}
	if tpls == nil {
		tpls = []models.Template{}
	}
	writeJSON(w, http.StatusOK, TemplateListResponse{Templates: tpls})
}

// CreateTemplate handles POST /api/templates.
func (h *Handler) CreateTemplate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	tpl, err := h.templates.Create(r.Context(), models.TemplateFields{Name: req.Name, Content: req.Content})
	if err != nil {
		writeError(w, "create template", err)
		return
	}
	writeJSON(w, http.StatusCreated, tpl)
}

// GetTemplate handles GET /api/templates/{id}.
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.templates.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get template", err)
		return
	}
	writeJSON(w, http.StatusOK, tpl)
}

// DeleteTemplate handles DELETE /api/templates/{id}. Idempotent.
func (h *Handler) DeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := h.templates.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete template", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
