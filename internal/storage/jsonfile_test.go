package storage

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"claimdesk/internal/config"
	"claimdesk/internal/session"
)

func configFor(dir, backend string) config.StorageConfig {
	return config.StorageConfig{BaseDir: dir, Backend: backend}
}

func TestJSONRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONStore(dir)
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}

	want := sampleSessions()
	if err := store.SaveAll(want); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	got, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch\ngot:  %+v\nwant: %+v", got, want)
	}
}

func TestJSONLoadAbsentFile(t *testing.T) {
	store, err := NewJSONStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	got, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for absent file, got %+v", got)
	}
}

func TestJSONCorruptFileLoadsAsAbsent(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONStore(dir)
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, jsonFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	got, err := store.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for corrupt file, got %+v", got)
	}
}

func TestJSONEmptySaveRemovesFile(t *testing.T) {
	dir := t.TempDir()
	store, err := NewJSONStore(dir)
	if err != nil {
		t.Fatalf("NewJSONStore: %v", err)
	}
	if err := store.SaveAll(sampleSessions()); err != nil {
		t.Fatalf("SaveAll: %v", err)
	}
	path := filepath.Join(dir, jsonFileName)
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file after save: %v", err)
	}
	if err := store.SaveAll([]session.Session{}); err != nil {
		t.Fatalf("empty SaveAll: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("expected file removed, stat err: %v", err)
	}
	// Removing again must stay a no-op.
	if err := store.SaveAll(nil); err != nil {
		t.Fatalf("repeat empty SaveAll: %v", err)
	}
}
