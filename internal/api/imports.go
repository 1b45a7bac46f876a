package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// Import handles POST /api/import. The body is either JSON
// {"filename": ..., "content": ...} or multipart/form-data with a "file"
// field; both produce a document with the content stored verbatim.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		h.importMultipart(w, r)
		return
	}

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	doc, err := h.imp.FromFile(r.Context(), req.Filename, []byte(req.Content))
	if err != nil {
		writeError(w, "import", err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

func (h *Handler) importMultipart(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}
	doc, err := h.imp.FromFile(r.Context(), header.Filename, raw)
	if err != nil {
		writeError(w, "import", err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}
