package cli

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"claimdesk/internal/api"
	"claimdesk/internal/config"
	"claimdesk/internal/session"
)

type memPersister struct{ saved [][]session.Session }

func (m *memPersister) SaveAll(sessions []session.Session) error {
	m.saved = append(m.saved, sessions)
	return nil
}

func (m *memPersister) LoadAll() ([]session.Session, error) { return nil, nil }

func newTestApp(t *testing.T, client *api.Client) (*App, *bytes.Buffer) {
	t.Helper()
	store := session.NewStore(&memPersister{}, nil)
	store.Restore()
	out := &bytes.Buffer{}
	return &App{
		store:    store,
		client:   client,
		logger:   zap.NewNop(),
		out:      out,
		markdown: &markdownRenderer{},
	}, out
}

func TestHandleCommandNewAndSessions(t *testing.T) {
	app, out := newTestApp(t, nil)

	handled, exit := app.handleCommand("/new")
	if !handled || exit {
		t.Fatalf("handled=%v exit=%v", handled, exit)
	}
	if len(app.store.Sessions()) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(app.store.Sessions()))
	}

	out.Reset()
	app.handleCommand("/sessions")
	listing := out.String()
	if !strings.Contains(listing, session.DefaultTitle) {
		t.Fatalf("listing missing default title: %q", listing)
	}
	if !strings.Contains(listing, "*") {
		t.Fatalf("listing missing active marker: %q", listing)
	}
}

func TestResolveSessionByIndexAndPrefix(t *testing.T) {
	app, _ := newTestApp(t, nil)
	app.store.Create()
	sessions := app.store.Sessions()

	got, ok := app.resolveSession("2")
	if !ok || got.ID != sessions[1].ID {
		t.Fatalf("index resolve: ok=%v got=%s want=%s", ok, got.ID, sessions[1].ID)
	}

	prefix := sessions[0].ID[:8]
	got, ok = app.resolveSession(prefix)
	if !ok || got.ID != sessions[0].ID {
		t.Fatalf("prefix resolve: ok=%v got=%s want=%s", ok, got.ID, sessions[0].ID)
	}

	if _, ok := app.resolveSession("99"); ok {
		t.Fatal("out-of-range index resolved")
	}
	if _, ok := app.resolveSession("no-such-id"); ok {
		t.Fatal("absent id resolved")
	}
}

func TestHandleCommandDelete(t *testing.T) {
	app, out := newTestApp(t, nil)
	app.store.Create()
	before := len(app.store.Sessions())

	app.handleCommand("/delete 1")
	if got := len(app.store.Sessions()); got != before-1 {
		t.Fatalf("expected %d sessions, got %d", before-1, got)
	}
	if !strings.Contains(out.String(), "deleted inquiry") {
		t.Fatalf("missing confirmation: %q", out.String())
	}
}

func TestUnknownCommandNotHandled(t *testing.T) {
	app, _ := newTestApp(t, nil)
	handled, _ := app.handleCommand("/bogus")
	if handled {
		t.Fatal("unknown command reported as handled")
	}
}

func TestRunQueryGateBeforeUpload(t *testing.T) {
	app, out := newTestApp(t, nil)

	app.runQuery("am I covered?")

	if !strings.Contains(out.String(), session.UploadPromptText) {
		t.Fatalf("expected upload prompt, got %q", out.String())
	}
	sess, _ := app.store.Active()
	last := sess.Messages[len(sess.Messages)-1]
	if last.Content != session.UploadPromptText {
		t.Fatalf("expected prompt appended, got %q", last.Content)
	}
}

func TestRunQueryAppliesResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"conversational_answer":"Covered.","decision":"Approved","new_chat_title":"Pipe burst"}`))
	}))
	defer server.Close()

	client := api.NewClient(config.ServiceConfig{BaseURL: server.URL, UploadTimeoutMS: 5000})
	app, out := newTestApp(t, client)
	id := app.store.ActiveID()
	if err := app.store.AddUploadedFiles(id, []string{"policy.pdf"}); err != nil {
		t.Fatalf("AddUploadedFiles: %v", err)
	}

	app.runQuery("is the pipe covered?")

	sess, _ := app.store.Active()
	if sess.Title != "Pipe burst" {
		t.Fatalf("title not applied: %q", sess.Title)
	}
	last := sess.Messages[len(sess.Messages)-1]
	if last.Content != "Covered." || last.Decision != "Approved" {
		t.Fatalf("unexpected last message %+v", last)
	}
	if !strings.Contains(out.String(), "Covered.") {
		t.Fatalf("answer not printed: %q", out.String())
	}
}

func TestRunQueryErrorAppendsAssistantMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"analysis backend unavailable"}`))
	}))
	defer server.Close()

	client := api.NewClient(config.ServiceConfig{BaseURL: server.URL, UploadTimeoutMS: 5000})
	app, out := newTestApp(t, client)
	id := app.store.ActiveID()
	if err := app.store.AddUploadedFiles(id, []string{"policy.pdf"}); err != nil {
		t.Fatalf("AddUploadedFiles: %v", err)
	}

	app.runQuery("is the pipe covered?")

	sess, _ := app.store.Active()
	last := sess.Messages[len(sess.Messages)-1]
	if !strings.HasPrefix(last.Content, "Sorry, an error occurred: ") {
		t.Fatalf("expected error message appended, got %q", last.Content)
	}
	if !strings.Contains(out.String(), "analysis backend unavailable") {
		t.Fatalf("error not printed: %q", out.String())
	}
}
