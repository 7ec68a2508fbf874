package tui

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"claimdesk/internal/api"
	"claimdesk/internal/session"
)

type memPersister struct{}

func (memPersister) SaveAll([]session.Session) error     { return nil }
func (memPersister) LoadAll() ([]session.Session, error) { return nil, nil }

func newTestApp(t *testing.T) App {
	t.Helper()
	store := session.NewStore(memPersister{}, nil)
	store.Restore()
	app := NewApp(store, nil, nil)
	app.width, app.height = 100, 30
	app.relayout()
	return app
}

func TestAppUpdate_PanelSwitch(t *testing.T) {
	app := newTestApp(t)

	m, _ := app.Update(tea.KeyMsg{Type: tea.KeyTab})
	updated := m.(App)
	if updated.activePanel != PanelEvidence {
		t.Fatalf("expected evidence panel, got %v", updated.activePanel)
	}
	m, _ = updated.Update(tea.KeyMsg{Type: tea.KeyTab})
	updated = m.(App)
	if updated.activePanel != PanelDocuments {
		t.Fatalf("expected documents panel, got %v", updated.activePanel)
	}
}

func TestAppUpdate_NewAndDeleteSession(t *testing.T) {
	app := newTestApp(t)

	m, _ := app.Update(tea.KeyMsg{Type: tea.KeyCtrlN})
	updated := m.(App)
	if got := len(updated.store.Sessions()); got != 2 {
		t.Fatalf("expected 2 sessions after ctrl+n, got %d", got)
	}

	m, _ = updated.Update(tea.KeyMsg{Type: tea.KeyCtrlX})
	updated = m.(App)
	if got := len(updated.store.Sessions()); got != 1 {
		t.Fatalf("expected 1 session after ctrl+x, got %d", got)
	}
}

func TestAppUpdate_QueryDoneAppliesResult(t *testing.T) {
	app := newTestApp(t)
	id := app.store.ActiveID()
	if err := app.store.AddUploadedFiles(id, []string{"policy.pdf"}); err != nil {
		t.Fatalf("AddUploadedFiles: %v", err)
	}
	if _, err := app.store.BeginQuery(id, "covered?"); err != nil {
		t.Fatalf("BeginQuery: %v", err)
	}
	app.querying = true

	title := "Pipe burst"
	m, _ := app.Update(queryDoneMsg{
		SessionID: id,
		Resp:      api.QueryResponse{Answer: "Covered.", NewTitle: &title},
	})
	updated := m.(App)
	if updated.querying {
		t.Fatal("expected querying cleared")
	}
	sess, _ := updated.store.Active()
	if sess.Title != title {
		t.Fatalf("title not applied: %q", sess.Title)
	}
	last := sess.Messages[len(sess.Messages)-1]
	if last.Content != "Covered." {
		t.Fatalf("unexpected last message %q", last.Content)
	}
}

func TestAppUpdate_QueryDoneError(t *testing.T) {
	app := newTestApp(t)
	id := app.store.ActiveID()
	if err := app.store.AddUploadedFiles(id, []string{"policy.pdf"}); err != nil {
		t.Fatalf("AddUploadedFiles: %v", err)
	}
	if _, err := app.store.BeginQuery(id, "covered?"); err != nil {
		t.Fatalf("BeginQuery: %v", err)
	}

	m, _ := app.Update(queryDoneMsg{SessionID: id, Err: errors.New("boom")})
	updated := m.(App)
	sess, _ := updated.store.Active()
	last := sess.Messages[len(sess.Messages)-1]
	if !strings.HasPrefix(last.Content, "Sorry, an error occurred: ") {
		t.Fatalf("expected error message, got %q", last.Content)
	}
}

func TestAppUpdate_UploadDone(t *testing.T) {
	app := newTestApp(t)
	id := app.store.ActiveID()
	app.uploading = true

	m, _ := app.Update(uploadDoneMsg{SessionID: id, Processed: []string{"policy.pdf"}})
	updated := m.(App)
	if updated.uploading {
		t.Fatal("expected uploading cleared")
	}
	sess, _ := updated.store.Active()
	if len(sess.UploadedFiles) != 1 || sess.UploadedFiles[0] != "policy.pdf" {
		t.Fatalf("file not recorded: %v", sess.UploadedFiles)
	}
}

func TestAppUpdate_UploadDoneErrorKeepsState(t *testing.T) {
	app := newTestApp(t)
	id := app.store.ActiveID()
	app.uploading = true

	m, _ := app.Update(uploadDoneMsg{SessionID: id, Err: errors.New("too large")})
	updated := m.(App)
	sess, _ := updated.store.Active()
	if len(sess.UploadedFiles) != 0 {
		t.Fatalf("failed upload must not record files: %v", sess.UploadedFiles)
	}
	if updated.statusMsg != "too large" {
		t.Fatalf("error not surfaced: %q", updated.statusMsg)
	}
}

func TestAppUpdate_CycleSession(t *testing.T) {
	app := newTestApp(t)
	app.store.Create()
	first := app.store.ActiveID()

	m, _ := app.Update(tea.KeyMsg{Type: tea.KeyCtrlJ})
	updated := m.(App)
	if updated.store.ActiveID() == first {
		t.Fatal("expected active session to change")
	}
	m, _ = updated.Update(tea.KeyMsg{Type: tea.KeyCtrlJ})
	updated = m.(App)
	if updated.store.ActiveID() != first {
		t.Fatal("expected cycle to wrap back")
	}
}
