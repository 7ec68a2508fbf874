package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"claimdesk/internal/api"
	"claimdesk/internal/chat"
	"claimdesk/internal/evidence"
	"claimdesk/internal/validate"
)

// ErrNoDocuments is returned by BeginQuery when the session has no
// uploaded documents. The store has already appended the
// upload-prompt message; the caller must not contact the service.
var ErrNoDocuments = errors.New("session has no uploaded documents")

// ErrNotFound is returned when an operation names a session that is
// no longer in the collection. Callers treat it as a no-op: a result
// resolving for a deleted session is simply discarded.
var ErrNotFound = errors.New("session not found")

// Persister snapshots the whole collection to durable storage. An
// empty collection must remove the stored record.
type Persister interface {
	SaveAll(sessions []Session) error
	LoadAll() ([]Session, error)
}

// Store is the single authority over the session collection and the
// active-session pointer. All mutations run under one lock and end
// with a persistence snapshot; persist failures are logged, never
// surfaced, so the in-memory state stays usable.
type Store struct {
	mu       sync.Mutex
	sessions []Session // most-recent-first
	activeID string
	persist  Persister
	logger   *zap.Logger
}

func NewStore(persist Persister, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{persist: persist, logger: logger}
}

// Restore loads the persisted collection. Absent or corrupt state is
// treated as no history: a single fresh session is created instead.
// Otherwise the first (most recent) entry becomes active.
func (s *Store) Restore() {
	s.mu.Lock()
	defer s.mu.Unlock()

	loaded, err := s.persist.LoadAll()
	if err != nil {
		s.logger.Warn("restore failed, starting fresh", zap.Error(err))
		loaded = nil
	}
	if len(loaded) == 0 {
		s.createLocked()
		return
	}
	s.sessions = loaded
	s.activeID = loaded[0].ID
	s.logger.Info("restored sessions", zap.Int("count", len(loaded)), zap.String("active", s.activeID))
}

// Create inserts a new session at the front of the collection, makes
// it active, and returns a snapshot of it.
func (s *Store) Create() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.createLocked()
}

func (s *Store) createLocked() Session {
	now := nowUTC()
	sess := Session{
		ID:        uuid.NewString(),
		Title:     DefaultTitle,
		Messages:  []chat.Message{{Role: chat.RoleAssistant, Content: WelcomeText}},
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.sessions = append([]Session{sess}, s.sessions...)
	s.activeID = sess.ID
	s.persistLocked()
	s.logger.Info("session created", zap.String("id", sess.ID))
	return sess.Clone()
}

// Delete removes a session. Deleting the active session activates the
// first remaining one, or creates a fresh session when none remain.
// An absent id is a no-op.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return
	}
	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)
	if s.activeID == id {
		if len(s.sessions) > 0 {
			s.activeID = s.sessions[0].ID
		} else {
			s.activeID = ""
			s.createLocked()
			s.logger.Info("session deleted", zap.String("id", id))
			return
		}
	}
	s.persistLocked()
	s.logger.Info("session deleted", zap.String("id", id))
}

// Select moves the active pointer. An absent id changes nothing.
func (s *Store) Select(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		return
	}
	s.activeID = id
}

// SetDraft overwrites the in-progress input text for a session. The
// content is not validated.
func (s *Store) SetDraft(id, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return
	}
	s.sessions[idx].Draft = text
	s.persistLocked()
}

// BeginQuery is the gate plus the optimistic update for one question.
// With no uploaded documents it appends the upload-prompt assistant
// message and returns ErrNoDocuments. Otherwise it appends the user
// message, clears the draft, and returns the history as it stood
// before the append, which is what travels in the wire payload.
func (s *Store) BeginQuery(id, text string) ([]chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	sess := &s.sessions[idx]
	if !validate.CanQuery(sess.UploadedFiles) {
		sess.Messages = append(sess.Messages, chat.Message{
			Role:    chat.RoleAssistant,
			Content: UploadPromptText,
		})
		sess.UpdatedAt = nowUTC()
		s.persistLocked()
		return nil, ErrNoDocuments
	}

	history := append([]chat.Message(nil), sess.Messages...)
	sess.Messages = append(sess.Messages, chat.Message{Role: chat.RoleUser, Content: text})
	sess.Draft = ""
	sess.UpdatedAt = nowUTC()
	s.persistLocked()
	return history, nil
}

// ApplyQueryResult merges a successful response: assistant message
// from answer+decision, the suggested title when present, and the
// evidence compartment when present. Unknown ids discard the result.
func (s *Store) ApplyQueryResult(id string, resp api.QueryResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		s.logger.Info("query result for missing session discarded", zap.String("id", id))
		return ErrNotFound
	}
	sess := &s.sessions[idx]

	msg := chat.Message{Role: chat.RoleAssistant, Content: resp.Answer}
	if resp.Decision != nil {
		msg.Decision = *resp.Decision
	}
	sess.Messages = append(sess.Messages, msg)
	if resp.NewTitle != nil {
		sess.Title = *resp.NewTitle
	}
	if resp.Evidence != nil {
		sess.Evidence = evidence.Upsert(sess.Evidence, *resp.Evidence)
	}
	sess.UpdatedAt = nowUTC()
	s.persistLocked()
	return nil
}

// ApplyQueryError records a failed query as one assistant message.
// The optimistically appended user message stays: the conversation
// shows the question was sent even though no answer arrived.
func (s *Store) ApplyQueryError(id string, queryErr error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		s.logger.Info("query error for missing session discarded", zap.String("id", id))
		return ErrNotFound
	}
	sess := &s.sessions[idx]
	sess.Messages = append(sess.Messages, chat.Message{
		Role:    chat.RoleAssistant,
		Content: "Sorry, an error occurred: " + queryErr.Error(),
	})
	sess.UpdatedAt = nowUTC()
	s.persistLocked()
	return nil
}

// AddUploadedFiles unions server-confirmed filenames into the
// session's document set. Duplicates collapse; insertion order is
// kept. Unknown ids discard the result.
func (s *Store) AddUploadedFiles(id string, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		s.logger.Info("upload result for missing session discarded", zap.String("id", id))
		return ErrNotFound
	}
	sess := &s.sessions[idx]

	seen := make(map[string]bool, len(sess.UploadedFiles)+len(names))
	for _, name := range sess.UploadedFiles {
		seen[name] = true
	}
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true
		sess.UploadedFiles = append(sess.UploadedFiles, name)
	}
	sess.UpdatedAt = nowUTC()
	s.persistLocked()
	return nil
}

// Sessions returns a deep-copied snapshot in most-recent-first order.
func (s *Store) Sessions() []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess.Clone())
	}
	return out
}

// Active returns a snapshot of the active session. The second return
// is false only when the collection is empty.
func (s *Store) Active() (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(s.activeID)
	if idx < 0 {
		return Session{}, false
	}
	return s.sessions[idx].Clone(), true
}

func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Get returns a snapshot of one session by id.
func (s *Store) Get(id string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexLocked(id)
	if idx < 0 {
		return Session{}, false
	}
	return s.sessions[idx].Clone(), true
}

func (s *Store) indexLocked(id string) int {
	if id == "" {
		return -1
	}
	for i, sess := range s.sessions {
		if sess.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) persistLocked() {
	if s.persist == nil {
		return
	}
	snapshot := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		snapshot = append(snapshot, sess.Clone())
	}
	if err := s.persist.SaveAll(snapshot); err != nil {
		s.logger.Error("persist sessions failed", zap.Error(err), zap.Int("count", len(snapshot)))
	}
}
