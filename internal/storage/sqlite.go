package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"claimdesk/internal/chat"
	"claimdesk/internal/evidence"
	"claimdesk/internal/session"
)

// SQLiteStore persists the collection in SQLite with WAL mode. The
// position column preserves the most-recent-first ordering of the
// in-memory collection.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

func NewSQLiteStore(baseDir string) (*SQLiteStore, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		return nil, fmt.Errorf("storage base dir is empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	dbPath := filepath.Join(baseDir, "sessions.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
		"PRAGMA synchronous=NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("exec %q: %w", p, err)
		}
	}

	store := &SQLiteStore{db: db, path: dbPath}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) ensureSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL DEFAULT '',
		draft      TEXT NOT NULL DEFAULT '',
		position   INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS messages (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		seq        INTEGER NOT NULL,
		role       TEXT NOT NULL,
		content    TEXT NOT NULL DEFAULT '',
		decision   TEXT NOT NULL DEFAULT '',
		UNIQUE(session_id, seq)
	);

	CREATE TABLE IF NOT EXISTS uploaded_files (
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		seq        INTEGER NOT NULL,
		name       TEXT NOT NULL,
		PRIMARY KEY(session_id, name)
	);

	CREATE TABLE IF NOT EXISTS evidence (
		session_id    TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		topic         TEXT NOT NULL,
		decision      TEXT NOT NULL DEFAULT '',
		justification TEXT NOT NULL DEFAULT '',
		calculation   TEXT NOT NULL DEFAULT '',
		PRIMARY KEY(session_id, topic)
	);

	CREATE TABLE IF NOT EXISTS clauses (
		session_id      TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		topic           TEXT NOT NULL,
		seq             INTEGER NOT NULL,
		clause_id       TEXT NOT NULL DEFAULT '',
		source_document TEXT NOT NULL DEFAULT '',
		clause_text     TEXT NOT NULL DEFAULT '',
		PRIMARY KEY(session_id, topic, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_messages_session ON messages(session_id, seq);
	CREATE INDEX IF NOT EXISTS idx_files_session ON uploaded_files(session_id);
	CREATE INDEX IF NOT EXISTS idx_evidence_session ON evidence(session_id);
	CREATE INDEX IF NOT EXISTS idx_clauses_session ON clauses(session_id, topic, seq);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveAll rewrites the whole collection in one transaction. Deleting
// the sessions rows cascades to every child table, so an empty
// collection leaves nothing behind.
func (s *SQLiteStore) SaveAll(sessions []session.Session) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM sessions"); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}

	for pos, sess := range sessions {
		if _, err := tx.Exec(`
			INSERT INTO sessions (id, title, draft, position, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			sess.ID, sess.Title, sess.Draft, pos, sess.CreatedAt, sess.UpdatedAt,
		); err != nil {
			return fmt.Errorf("insert session %s: %w", sess.ID, err)
		}
		for seq, msg := range sess.Messages {
			if _, err := tx.Exec(`
				INSERT INTO messages (session_id, seq, role, content, decision)
				VALUES (?, ?, ?, ?, ?)`,
				sess.ID, seq, msg.Role, msg.Content, msg.Decision,
			); err != nil {
				return fmt.Errorf("insert message %d for %s: %w", seq, sess.ID, err)
			}
		}
		for seq, name := range sess.UploadedFiles {
			if _, err := tx.Exec(`
				INSERT INTO uploaded_files (session_id, seq, name)
				VALUES (?, ?, ?)`,
				sess.ID, seq, name,
			); err != nil {
				return fmt.Errorf("insert file %q for %s: %w", name, sess.ID, err)
			}
		}
		for _, topic := range evidence.SortedTopics(sess.Evidence) {
			comp := sess.Evidence[topic]
			if _, err := tx.Exec(`
				INSERT INTO evidence (session_id, topic, decision, justification, calculation)
				VALUES (?, ?, ?, ?, ?)`,
				sess.ID, comp.Topic, comp.Decision, comp.Justification, comp.Calculation,
			); err != nil {
				return fmt.Errorf("insert evidence %q for %s: %w", topic, sess.ID, err)
			}
			for seq, cl := range comp.Clauses {
				if _, err := tx.Exec(`
					INSERT INTO clauses (session_id, topic, seq, clause_id, source_document, clause_text)
					VALUES (?, ?, ?, ?, ?, ?)`,
					sess.ID, comp.Topic, seq, cl.ClauseID, cl.SourceDocument, cl.ClauseText,
				); err != nil {
					return fmt.Errorf("insert clause %d of %q for %s: %w", seq, topic, sess.ID, err)
				}
			}
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadAll() ([]session.Session, error) {
	rows, err := s.db.Query(`
		SELECT id, title, draft, created_at, updated_at
		FROM sessions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []session.Session
	for rows.Next() {
		var sess session.Session
		if err := rows.Scan(&sess.ID, &sess.Title, &sess.Draft, &sess.CreatedAt, &sess.UpdatedAt); err != nil {
			continue
		}
		sessions = append(sessions, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}

	for i := range sessions {
		if err := s.loadChildren(&sessions[i]); err != nil {
			return nil, err
		}
	}
	return sessions, nil
}

func (s *SQLiteStore) loadChildren(sess *session.Session) error {
	msgRows, err := s.db.Query(`
		SELECT role, content, decision FROM messages
		WHERE session_id=? ORDER BY seq`, sess.ID)
	if err != nil {
		return fmt.Errorf("query messages for %s: %w", sess.ID, err)
	}
	defer msgRows.Close()
	for msgRows.Next() {
		var msg chat.Message
		if err := msgRows.Scan(&msg.Role, &msg.Content, &msg.Decision); err != nil {
			continue
		}
		sess.Messages = append(sess.Messages, msg)
	}
	if err := msgRows.Err(); err != nil {
		return fmt.Errorf("scan messages for %s: %w", sess.ID, err)
	}

	fileRows, err := s.db.Query(`
		SELECT name FROM uploaded_files WHERE session_id=? ORDER BY seq`, sess.ID)
	if err != nil {
		return fmt.Errorf("query files for %s: %w", sess.ID, err)
	}
	defer fileRows.Close()
	for fileRows.Next() {
		var name string
		if err := fileRows.Scan(&name); err != nil {
			continue
		}
		sess.UploadedFiles = append(sess.UploadedFiles, name)
	}
	if err := fileRows.Err(); err != nil {
		return fmt.Errorf("scan files for %s: %w", sess.ID, err)
	}

	evRows, err := s.db.Query(`
		SELECT topic, decision, justification, calculation
		FROM evidence WHERE session_id=?`, sess.ID)
	if err != nil {
		return fmt.Errorf("query evidence for %s: %w", sess.ID, err)
	}
	defer evRows.Close()
	for evRows.Next() {
		var comp evidence.Compartment
		if err := evRows.Scan(&comp.Topic, &comp.Decision, &comp.Justification, &comp.Calculation); err != nil {
			continue
		}
		clauses, err := s.loadClauses(sess.ID, comp.Topic)
		if err != nil {
			return err
		}
		comp.Clauses = clauses
		sess.Evidence = evidence.Upsert(sess.Evidence, comp)
	}
	return evRows.Err()
}

func (s *SQLiteStore) loadClauses(sessionID, topic string) ([]evidence.Clause, error) {
	rows, err := s.db.Query(`
		SELECT clause_id, source_document, clause_text
		FROM clauses WHERE session_id=? AND topic=? ORDER BY seq`, sessionID, topic)
	if err != nil {
		return nil, fmt.Errorf("query clauses for %s/%s: %w", sessionID, topic, err)
	}
	defer rows.Close()

	clauses := []evidence.Clause{}
	for rows.Next() {
		var cl evidence.Clause
		if err := rows.Scan(&cl.ClauseID, &cl.SourceDocument, &cl.ClauseText); err != nil {
			continue
		}
		clauses = append(clauses, cl)
	}
	return clauses, rows.Err()
}
