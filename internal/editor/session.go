// Package editor holds the editing session: the single in-memory owner of
// the current document, its draft content, and the cached document list,
// plus the auto-save coordinator that commits drafts after a quiet period.
package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/starford/ansuz/internal/models"
)

// PlaceholderTitle names documents created by committing a draft that has
// no current document yet.
const PlaceholderTitle = "Untitled"

const welcomeTitle = "Welcome to Ansuz"

const welcomeContent = `# Welcome to Ansuz

Ansuz keeps your notes as plain markdown, saved automatically a few
seconds after you stop typing.

## Getting around

- Everything you write lands in one local database file.
- The preview pane mirrors the editor as you type.
- Use **Export** to produce PDF, HTML, DOCX, or XLSX copies.

## Try it

Edit this document. There is no save button to forget; your changes are
committed on their own.
`

// Repository is the slice of the document repository the session drives.
type Repository interface {
	Create(ctx context.Context, fields models.DocumentFields) (*models.Document, error)
	Get(ctx context.Context, id string) (*models.Document, error)
	Update(ctx context.Context, id string, patch models.DocumentPatch) (*models.Document, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]models.Document, error)
}

// Preferences loads the persisted settings, creating defaults on first run.
type Preferences interface {
	Init(ctx context.Context) (*models.Settings, error)
}

// Publisher receives document change notifications. The SSE broker
// implements it; a nil publisher drops events.
type Publisher interface {
	PublishDocumentEvent(kind, id, title string)
}

// State is a point-in-time copy of the session handed to the UI boundary.
// Both the editor pane and the document browser read the same state, so the
// list can never drift between views.
type State struct {
	Current   *models.Document  `json:"current,omitempty"`
	Draft     string            `json:"draft"`
	Dirty     bool              `json:"dirty"`
	Saving    bool              `json:"saving"`
	LastSaved time.Time         `json:"last_saved"`
	List      []models.Document `json:"list"`
}

// Session is the editor state container. It is constructed once and passed
// to every consumer; there is no package-level instance. All mutations to
// documents flow through it so the cached list stays consistent with the
// store after every write.
type Session struct {
	docs  Repository
	prefs Preferences
	pub   Publisher
	log   *slog.Logger
	now   func() time.Time

	debounce Debounce

	mu        sync.Mutex
	current   *models.Document
	draft     string
	dirty     bool
	saving    bool
	lastSaved time.Time
	list      []models.Document
	quiet     time.Duration
}

// NewSession creates a session over the given repositories. pub may be nil.
func NewSession(docs Repository, prefs Preferences, pub Publisher, log *slog.Logger) *Session {
	if log == nil {
		log = slog.Default()
	}
	return &Session{
		docs:  docs,
		prefs: prefs,
		pub:   pub,
		log:   log,
		now:   time.Now,
		quiet: models.DefaultSettings().AutosaveInterval,
	}
}

// Init loads settings (writing defaults on first run), adopts the
// configured quiet period, loads the document list, and seeds a welcome
// document into a completely empty store. Nothing is selected.
func (s *Session) Init(ctx context.Context) error {
	prefs, err := s.prefs.Init(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.quiet = prefs.AutosaveInterval
	s.mu.Unlock()

	list, err := s.docs.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		if _, err := s.docs.Create(ctx, models.DocumentFields{Title: welcomeTitle, Content: welcomeContent}); err != nil {
			return err
		}
		if list, err = s.docs.List(ctx); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.list = list
	s.mu.Unlock()
	return nil
}

// SetDraftContent replaces the draft synchronously and arms the auto-save
// delay. It never touches storage, so typing latency is independent of
// storage latency.
func (s *Session) SetDraftContent(text string) {
	s.mu.Lock()
	s.draft = text
	s.dirty = true
	wait := s.quiet
	s.mu.Unlock()

	s.debounce.Arm(wait, func() {
		if err := s.Commit(context.Background()); err != nil {
			s.log.Error("auto-save failed", slog.String("error", err.Error()))
		}
	})
}

// SelectDocument makes the document current and resets the draft to its
// persisted content. Any unsaved draft of the previously selected document
// is discarded, and a pending (unfired) auto-save is cancelled. A commit
// already in flight is not cancelled; it lands against the id it captured.
func (s *Session) SelectDocument(ctx context.Context, id string) (*models.Document, error) {
	doc, err := s.docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.debounce.Cancel()

	s.mu.Lock()
	cur := *doc
	s.current = &cur
	s.draft = doc.Content
	s.dirty = false
	s.mu.Unlock()
	return doc, nil
}

// Commit persists the draft. With no current document it creates one under
// a placeholder title and makes it current. At most one commit runs at a
// time: a call arriving while one is in flight returns immediately, and the
// next draft change re-arms auto-save as usual. On failure the error is
// returned and the draft is left untouched, so unsaved work stays editable.
func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return nil
	}
	s.saving = true
	draft := s.draft
	isNew := s.current == nil
	var id string
	if !isNew {
		id = s.current.ID
	}
	s.mu.Unlock()

	var (
		doc  *models.Document
		err  error
		kind = "saved"
	)
	if isNew {
		doc, err = s.docs.Create(ctx, models.DocumentFields{Title: PlaceholderTitle, Content: draft})
		kind = "created"
	} else {
		doc, err = s.docs.Update(ctx, id, models.DocumentPatch{Content: &draft})
	}

	s.mu.Lock()
	s.saving = false
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.lastSaved = s.now()
	// Adopt the result only if the session still points where the commit
	// started; a select that raced the write must win.
	sameTarget := (isNew && s.current == nil) || (!isNew && s.current != nil && s.current.ID == id)
	if sameTarget {
		cur := *doc
		s.current = &cur
		if s.draft == draft {
			s.dirty = false
		}
	}
	s.mu.Unlock()

	s.refresh(ctx)
	s.publish(kind, doc)
	return nil
}

// Save commits immediately and cancels any pending auto-save delay.
func (s *Session) Save(ctx context.Context) error {
	s.debounce.Cancel()
	return s.Commit(ctx)
}

// CreateDocument creates a document through the session so the cached list
// refreshes and a change event goes out. The new document is not selected.
func (s *Session) CreateDocument(ctx context.Context, fields models.DocumentFields) (*models.Document, error) {
	doc, err := s.docs.Create(ctx, fields)
	if err != nil {
		return nil, err
	}
	s.refresh(ctx)
	s.publish("created", doc)
	return doc, nil
}

// UpdateDocument applies a metadata or content patch through the session.
// When the patched document is current, the in-memory copy is refreshed; the
// draft is reset only if the patch replaced the content.
func (s *Session) UpdateDocument(ctx context.Context, id string, patch models.DocumentPatch) (*models.Document, error) {
	doc, err := s.docs.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.current != nil && s.current.ID == id {
		cur := *doc
		s.current = &cur
		if patch.Content != nil {
			s.draft = doc.Content
			s.dirty = false
		}
	}
	s.mu.Unlock()

	s.refresh(ctx)
	s.publish("updated", doc)
	return doc, nil
}

// Remove deletes the document. If it was current, the editor clears to an
// empty state and any pending auto-save is cancelled.
func (s *Session) Remove(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	wasCurrent := s.current != nil && s.current.ID == id
	var title string
	if wasCurrent {
		title = s.current.Title
		s.current = nil
		s.draft = ""
		s.dirty = false
	}
	s.mu.Unlock()
	if wasCurrent {
		s.debounce.Cancel()
	}

	s.refresh(ctx)
	if s.pub != nil {
		s.pub.PublishDocumentEvent("deleted", id, title)
	}
	return nil
}

// RefreshList reloads the document list from the repository.
func (s *Session) RefreshList(ctx context.Context) error {
	list, err := s.docs.List(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.list = list
	s.mu.Unlock()
	return nil
}

// Snapshot returns a consistent copy of the session state.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := State{
		Draft:     s.draft,
		Dirty:     s.dirty,
		Saving:    s.saving,
		LastSaved: s.lastSaved,
		List:      append([]models.Document(nil), s.list...),
	}
	if s.current != nil {
		cur := *s.current
		st.Current = &cur
	}
	return st
}

// SetQuietPeriod changes the auto-save delay used for subsequent edits.
func (s *Session) SetQuietPeriod(d time.Duration) {
	if d <= 0 {
		return
	}
	s.mu.Lock()
	s.quiet = d
	s.mu.Unlock()
}

// QuietPeriod returns the current auto-save delay.
func (s *Session) QuietPeriod() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.quiet
}

// refresh reloads the list after a successful mutation. A failure here does
// not undo the mutation, so it is logged rather than returned.
func (s *Session) refresh(ctx context.Context) {
	if err := s.RefreshList(ctx); err != nil {
		s.log.Error("list refresh failed", slog.String("error", err.Error()))
	}
}

func (s *Session) publish(kind string, doc *models.Document) {
	if s.pub == nil || doc == nil {
		return
	}
	s.pub.PublishDocumentEvent(kind, doc.ID, doc.Title)
}
