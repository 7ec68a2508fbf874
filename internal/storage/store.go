// Package storage persists the session collection. The whole
// collection is the unit of persistence: every save rewrites it, and
// an empty collection removes the stored record. Absent or
// unparseable state loads as no history, never as an error the caller
// must handle.
package storage

import (
	"fmt"

	"claimdesk/internal/config"
	"claimdesk/internal/session"
)

// Store is the persistence interface behind the session store.
type Store interface {
	// SaveAll rewrites the whole collection; an empty slice deletes
	// the stored record.
	SaveAll(sessions []session.Session) error
	// LoadAll returns the saved collection. Absent or undecodable
	// state returns (nil, nil).
	LoadAll() ([]session.Session, error)

	Close() error
}

// Open builds the configured backend under the data dir.
func Open(cfg config.StorageConfig) (Store, error) {
	switch cfg.Backend {
	case "json":
		return NewJSONStore(cfg.BaseDir)
	case "sqlite":
		return NewSQLiteStore(cfg.BaseDir)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
