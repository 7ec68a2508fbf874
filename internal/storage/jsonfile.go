package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"claimdesk/internal/session"
)

const jsonFileName = "sessions.json"

// JSONStore persists the whole collection as a single pretty-printed
// JSON file. Simpler than SQLite and handy for inspecting state by hand.
type JSONStore struct {
	path string
}

func NewJSONStore(baseDir string) (*JSONStore, error) {
	baseDir = strings.TrimSpace(baseDir)
	if baseDir == "" {
		return nil, fmt.Errorf("storage base dir is empty")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &JSONStore{path: filepath.Join(baseDir, jsonFileName)}, nil
}

func (s *JSONStore) Close() error { return nil }

// SaveAll writes the collection, or removes the file when the
// collection is empty so a fresh start finds no stale record.
func (s *JSONStore) SaveAll(sessions []session.Session) error {
	if len(sessions) == 0 {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("remove %s: %w", s.path, err)
		}
		return nil
	}
	data, err := json.MarshalIndent(sessions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	return nil
}

// LoadAll treats a missing or undecodable file as absent state so a
// corrupted record never blocks startup.
func (s *JSONStore) LoadAll() ([]session.Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	var sessions []session.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, nil
	}
	return sessions, nil
}
