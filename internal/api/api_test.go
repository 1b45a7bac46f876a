package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/starford/ansuz/internal/editor"
	"github.com/starford/ansuz/internal/export"
	"github.com/starford/ansuz/internal/importer"
	"github.com/starford/ansuz/internal/models"
	"github.com/starford/ansuz/internal/render"
	"github.com/starford/ansuz/internal/sse"
	"github.com/starford/ansuz/internal/testutil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// testEnv sets up a temp store, repositories, session, and router.
// authToken=="" means auth disabled.
func testEnv(t *testing.T, authToken string) (Deps, http.Handler) {
	t.Helper()

	repos := testutil.TestRepos(t)
	sess := editor.NewSession(repos.Documents, repos.Settings, nil, testLogger())
	renderer := render.New()
	d := Deps{
		Session:   sess,
		Documents: repos.Documents,
		Templates: repos.Templates,
		Settings:  repos.Settings,
		Renderer:  renderer,
		Exports:   export.NewRegistry(renderer),
		Importer:  importer.New(sess, testLogger()),
	}
	router := NewRouter(d, authToken != "", authToken, nil)
	return d, router
}

func doJSON(router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	var body io.Reader
	if payload != nil {
		b, _ := json.Marshal(payload)
		body = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, body)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createDoc(t *testing.T, router http.Handler, title, content string) models.Document {
	t.Helper()
	w := doJSON(router, http.MethodPost, "/documents", map[string]any{"title": title, "content": content})
	if w.Code != http.StatusCreated {
		t.Fatalf("create %q = %d, body = %s", title, w.Code, w.Body.String())
	}
	var doc models.Document
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal created doc: %v", err)
	}
	return doc
}

func TestCreateAndGetDocument(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(router, http.MethodPost, "/documents", map[string]any{
		"title":   "Meeting Notes",
		"content": "# Agenda\n\n- item one",
		"tags":    []string{"work"},
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var created models.Document
	_ = json.Unmarshal(w.Body.Bytes(), &created)
	if created.ID == "" {
		t.Fatal("created document has no id")
	}
	if created.Size != int64(len("# Agenda\n\n- item one")) {
		t.Errorf("size = %d", created.Size)
	}

	w = doJSON(router, http.MethodGet, "/documents/"+created.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got models.Document
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Title != "Meeting Notes" || len(got.Tags) != 1 {
		t.Errorf("got = %+v", got)
	}
}

func TestCreateDocument_MissingTitle(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(router, http.MethodPost, "/documents", map[string]any{"content": "body only"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("create without title = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "title") {
		t.Errorf("error body does not name the field: %s", w.Body.String())
	}
}

func TestCreateDocument_FromTemplate(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(router, http.MethodPost, "/templates", map[string]any{
		"name":    "Weekly Review",
		"content": "# Week of ...\n\n## Wins\n",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create template = %d, body = %s", w.Code, w.Body.String())
	}
	var tpl models.Template
	_ = json.Unmarshal(w.Body.Bytes(), &tpl)

	w = doJSON(router, http.MethodPost, "/documents", map[string]any{
		"title":       "Week 34",
		"template_id": tpl.ID,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create from template = %d, body = %s", w.Code, w.Body.String())
	}
	var doc models.Document
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	if doc.Content != tpl.Content {
		t.Errorf("content = %q, want template content", doc.Content)
	}

	// Unknown template is a client error, not a 404 on the documents route.
	w = doJSON(router, http.MethodPost, "/documents", map[string]any{
		"title":       "Broken",
		"template_id": "no-such-template",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("create with bad template = %d, want 400", w.Code)
	}
}

func TestUpdateDocument(t *testing.T) {
	_, router := testEnv(t, "")
	doc := createDoc(t, router, "Draft", "original body")

	w := doJSON(router, http.MethodPut, "/documents/"+doc.ID, map[string]any{"title": "Final"})
	if w.Code != http.StatusOK {
		t.Fatalf("update = %d, body = %s", w.Code, w.Body.String())
	}
	var updated models.Document
	_ = json.Unmarshal(w.Body.Bytes(), &updated)
	if updated.Title != "Final" {
		t.Errorf("title = %q", updated.Title)
	}
	if updated.Content != "original body" {
		t.Errorf("partial update touched content: %q", updated.Content)
	}
	if !updated.ModifiedAt.After(doc.ModifiedAt) {
		t.Error("modified timestamp did not advance")
	}

	w = doJSON(router, http.MethodPut, "/documents/ghost", map[string]any{"title": "X"})
	if w.Code != http.StatusNotFound {
		t.Errorf("update missing = %d, want 404", w.Code)
	}
}

func TestDeleteDocument_Idempotent(t *testing.T) {
	_, router := testEnv(t, "")
	doc := createDoc(t, router, "Bye", "gone soon")

	for i := 0; i < 2; i++ {
		w := doJSON(router, http.MethodDelete, "/documents/"+doc.ID, nil)
		if w.Code != http.StatusNoContent {
			t.Fatalf("delete #%d = %d, want 204", i+1, w.Code)
		}
	}

	w := doJSON(router, http.MethodGet, "/documents/"+doc.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestListDocuments(t *testing.T) {
	_, router := testEnv(t, "")
	createDoc(t, router, "First", "a")
	time.Sleep(5 * time.Millisecond) // distinct modified timestamps
	createDoc(t, router, "Second", "b")

	w := doJSON(router, http.MethodGet, "/documents", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list = %d", w.Code)
	}
	var resp DocumentListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 || len(resp.Documents) != 2 {
		t.Fatalf("total = %d, len = %d, want 2", resp.Total, len(resp.Documents))
	}
	// Most recently modified first.
	if resp.Documents[0].Title != "Second" {
		t.Errorf("first listed = %q, want Second", resp.Documents[0].Title)
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createDoc(t, router, "Find me", "uniquetoken here")
	createDoc(t, router, "Other", "nothing special")

	w := doJSON(router, http.MethodGet, "/search?q=uniquetoken", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("search = %d, body = %s", w.Code, w.Body.String())
	}
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(resp.Results))
	}
	if resp.Results[0].Document.Title != "Find me" {
		t.Errorf("hit = %q", resp.Results[0].Document.Title)
	}

	w = doJSON(router, http.MethodGet, "/search", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("search without q = %d, want 400", w.Code)
	}
}

func TestExportDocument(t *testing.T) {
	_, router := testEnv(t, "")
	doc := createDoc(t, router, "Trip Notes", "# Plan\n\npack light")

	w := doJSON(router, http.MethodGet, "/documents/"+doc.ID+"/export?format=pdf", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("pdf export = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "trip-notes.pdf") {
		t.Errorf("disposition = %q", w.Header().Get("Content-Disposition"))
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")) {
		t.Error("body is not a PDF")
	}

	w = doJSON(router, http.MethodGet, "/documents/"+doc.ID+"/export?format=html", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("html export = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<h1>Plan</h1>") {
		t.Error("html export missing rendered heading")
	}
}

func TestExportDocument_BadRequests(t *testing.T) {
	_, router := testEnv(t, "")
	doc := createDoc(t, router, "Only", "x")

	w := doJSON(router, http.MethodGet, "/documents/"+doc.ID+"/export", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("export without format = %d, want 400", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/documents/"+doc.ID+"/export?format=rtf", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("export rtf = %d, want 400", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/documents/ghost/export?format=pdf", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("export missing doc = %d, want 404", w.Code)
	}
}

func TestEditorFlow(t *testing.T) {
	_, router := testEnv(t, "")
	doc := createDoc(t, router, "Working Doc", "v1")

	w := doJSON(router, http.MethodPost, "/editor/select", map[string]any{"id": doc.ID})
	if w.Code != http.StatusOK {
		t.Fatalf("select = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodPut, "/editor/draft", map[string]any{"content": "v2 draft"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("draft = %d", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/editor", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("editor state = %d", w.Code)
	}
	var st EditorState
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if !st.Dirty || st.Draft != "v2 draft" {
		t.Fatalf("state = %+v, want dirty draft", st)
	}

	w = doJSON(router, http.MethodPost, "/editor/save", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("save = %d, body = %s", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if st.Dirty {
		t.Error("state still dirty after save")
	}

	w = doJSON(router, http.MethodGet, "/documents/"+doc.ID, nil)
	var stored models.Document
	_ = json.Unmarshal(w.Body.Bytes(), &stored)
	if stored.Content != "v2 draft" {
		t.Errorf("stored content = %q", stored.Content)
	}
}

func TestEditorPreview(t *testing.T) {
	_, router := testEnv(t, "")
	doc := createDoc(t, router, "Preview Me", "ignored")

	doJSON(router, http.MethodPost, "/editor/select", map[string]any{"id": doc.ID})
	doJSON(router, http.MethodPut, "/editor/draft", map[string]any{"content": "# Hello\n\n<script>x</script>"})

	w := doJSON(router, http.MethodGet, "/editor/preview", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("preview = %d", w.Code)
	}
	var resp PreviewResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if !strings.Contains(resp.HTML, "<h1") {
		t.Errorf("preview missing heading: %q", resp.HTML)
	}
	if strings.Contains(resp.HTML, "<script>") {
		t.Error("preview not sanitized")
	}
}

func TestSaveDraft_NoSelectionCreatesDocument(t *testing.T) {
	_, router := testEnv(t, "")

	doJSON(router, http.MethodPut, "/editor/draft", map[string]any{"content": "orphan text"})
	w := doJSON(router, http.MethodPost, "/editor/save", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("save = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(router, http.MethodGet, "/documents", nil)
	var resp DocumentListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Documents[0].Title != "Untitled" {
		t.Fatalf("list = %+v, want one Untitled document", resp)
	}
}

func TestSelectDocument_Errors(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(router, http.MethodPost, "/editor/select", map[string]any{"id": "no-such"})
	if w.Code != http.StatusNotFound {
		t.Errorf("select missing = %d, want 404", w.Code)
	}

	w = doJSON(router, http.MethodPost, "/editor/select", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("select without id = %d, want 400", w.Code)
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	d, router := testEnv(t, "")
	if _, err := d.Settings.Init(context.Background()); err != nil {
		t.Fatalf("settings init: %v", err)
	}

	w := doJSON(router, http.MethodGet, "/settings", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get settings = %d", w.Code)
	}
	var s models.Settings
	_ = json.Unmarshal(w.Body.Bytes(), &s)
	if s.Theme != models.ThemeSystem {
		t.Errorf("default theme = %q", s.Theme)
	}

	w = doJSON(router, http.MethodPatch, "/settings", map[string]any{
		"theme":             "dark",
		"autosave_interval": int64(1500 * time.Millisecond),
	})
	if w.Code != http.StatusOK {
		t.Fatalf("patch = %d, body = %s", w.Code, w.Body.String())
	}
	_ = json.Unmarshal(w.Body.Bytes(), &s)
	if s.Theme != models.ThemeDark || s.FontSize != models.DefaultSettings().FontSize {
		t.Errorf("patched settings = %+v", s)
	}
	if got := d.Session.QuietPeriod(); got != 1500*time.Millisecond {
		t.Errorf("session quiet period = %v, want 1.5s", got)
	}

	w = doJSON(router, http.MethodPatch, "/settings", map[string]any{"theme": "neon"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("invalid theme = %d, want 400", w.Code)
	}
}

func TestTemplatesCRUD(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(router, http.MethodPost, "/templates", map[string]any{"name": "Standup", "content": "## Yesterday\n"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d, body = %s", w.Code, w.Body.String())
	}
	var tpl models.Template
	_ = json.Unmarshal(w.Body.Bytes(), &tpl)

	// Duplicate names are rejected.
	w = doJSON(router, http.MethodPost, "/templates", map[string]any{"name": "Standup"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("duplicate name = %d, want 400", w.Code)
	}

	w = doJSON(router, http.MethodGet, "/templates", nil)
	var list TemplateListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Templates) != 1 {
		t.Fatalf("templates = %d, want 1", len(list.Templates))
	}

	w = doJSON(router, http.MethodGet, "/templates/"+tpl.ID, nil)
	if w.Code != http.StatusOK {
		t.Errorf("get = %d", w.Code)
	}

	w = doJSON(router, http.MethodDelete, "/templates/"+tpl.ID, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("delete = %d", w.Code)
	}
	w = doJSON(router, http.MethodGet, "/templates/"+tpl.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d", w.Code)
	}
}

func TestImportJSON(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(router, http.MethodPost, "/import", map[string]any{
		"filename": "shopping list.md",
		"content":  "- milk\n- eggs",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("import = %d, body = %s", w.Code, w.Body.String())
	}
	var doc models.Document
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	if doc.Title != "shopping list" {
		t.Errorf("title = %q", doc.Title)
	}
	if doc.Content != "- milk\n- eggs" {
		t.Errorf("content = %q", doc.Content)
	}
}

func importFile(t *testing.T, router http.Handler, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestImportMultipart(t *testing.T) {
	_, router := testEnv(t, "")

	w := importFile(t, router, "Meeting Notes.txt", []byte("raw text body"))
	if w.Code != http.StatusCreated {
		t.Fatalf("import = %d, body = %s", w.Code, w.Body.String())
	}
	var doc models.Document
	_ = json.Unmarshal(w.Body.Bytes(), &doc)
	if doc.Title != "Meeting Notes" {
		t.Errorf("title = %q", doc.Title)
	}
}

func TestImportMultipart_MissingFileField(t *testing.T) {
	_, router := testEnv(t, "")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("wrong", "data")
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing field = %d, want 400", w.Code)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.Header.Set("Authorization", "Bearer secret123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("authed list = %d, want 200", w.Code)
	}
}

func TestAuthMiddleware_MissingToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	w := doJSON(router, http.MethodGet, "/documents", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unauthed = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_WrongToken(t *testing.T) {
	_, router := testEnv(t, "secret123")

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	_, router := testEnv(t, "")

	w := doJSON(router, http.MethodGet, "/documents", nil)
	if w.Code != http.StatusOK {
		t.Errorf("no auth = %d, want 200", w.Code)
	}
}

// SSE endpoint tests.

func TestSSEEvents_AuthProtected(t *testing.T) {
	d, _ := testEnv(t, "")
	b := sse.NewBroker(time.Second)
	t.Cleanup(b.Close)
	router := NewRouter(d, true, "secret", b)

	w := doJSON(router, http.MethodGet, "/events", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("SSE no auth = %d, want 401", w.Code)
	}
}

func TestSSEEvents_StreamsDocumentEvents(t *testing.T) {
	d, _ := testEnv(t, "")
	b := sse.NewBroker(time.Second)
	t.Cleanup(b.Close)
	router := NewRouter(d, false, "", b)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		router.ServeHTTP(w, req)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	b.PublishDocumentEvent("created", "doc-1", "From Feed")
	<-done

	if !strings.Contains(w.Body.String(), "event: document.created") {
		t.Errorf("stream missing event: %q", w.Body.String())
	}
}
