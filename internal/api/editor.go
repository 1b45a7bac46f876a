package api

import (
	"encoding/json"
	"net/http"
)

// EditorState handles GET /api/editor: a snapshot of the session.
func (h *Handler) EditorState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

// SelectDocument handles POST /api/editor/select. Switching away from a
// dirty draft discards it.
func (h *Handler) SelectDocument(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.ID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	doc, err := h.session.SelectDocument(r.Context(), req.ID)
	if err != nil {
		writeError(w, "select document", err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// UpdateDraft handles PUT /api/editor/draft. The draft lives in memory until
// the auto-save quiet period elapses or an explicit save lands.
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req DraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	h.session.SetDraftContent(req.Content)
	w.WriteHeader(http.StatusNoContent)
}

// SaveDraft handles POST /api/editor/save: an immediate, explicit commit.
// On failure the draft is preserved for a later retry.
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	if err := h.session.Save(r.Context()); err != nil {
		writeError(w, "save draft", err)
		return
	}
	writeJSON(w, http.StatusOK, h.session.Snapshot())
}

// Preview handles GET /api/editor/preview: the current draft rendered to
// sanitized HTML. Render failures produce the placeholder, never an error.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	st := h.session.Snapshot()
	writeJSON(w, http.StatusOK, PreviewResponse{HTML: h.renderer.Preview(st.Draft)})
}
