package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"claimdesk/internal/config"
)

func newTestClient(serverURL string) *Client {
	return NewClient(config.ServiceConfig{BaseURL: serverURL, UploadTimeoutMS: 120000})
}

func TestUploadSuccess(t *testing.T) {
	var gotChatID string
	var gotNames []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/upload" {
			t.Errorf("path=%q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		gotChatID = r.FormValue("chat_id")
		for _, fh := range r.MultipartForm.File["files"] {
			gotNames = append(gotNames, fh.Filename)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"processed_files": gotNames,
		})
	}))
	defer server.Close()

	var lastPct int
	files := []File{
		{Name: "policy.pdf", Data: []byte("pdf bytes")},
		{Name: "claim.docx", Data: []byte("docx bytes")},
	}
	names, err := newTestClient(server.URL).Upload(context.Background(), "sess-1", files, func(pct int) {
		lastPct = pct
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if gotChatID != "sess-1" {
		t.Fatalf("chat_id=%q, want sess-1", gotChatID)
	}
	if len(names) != 2 || names[0] != "policy.pdf" || names[1] != "claim.docx" {
		t.Fatalf("processed files=%v", names)
	}
	if lastPct != 100 {
		t.Fatalf("final progress=%d, want 100", lastPct)
	}
}

func TestUploadPayloadTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Upload(context.Background(), "s", []File{{Name: "a.pdf"}}, nil)
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("err=%v, want TransportError", err)
	}
	if terr.Kind != KindPayloadTooLarge {
		t.Fatalf("Kind=%v, want payload_too_large", terr.Kind)
	}
}

func TestUploadServerErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_ = json.NewEncoder(w).Encode(map[string]string{"detail": "Unsupported file type: notes.txt"})
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Upload(context.Background(), "s", []File{{Name: "a.pdf"}}, nil)
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("err=%v, want TransportError", err)
	}
	if terr.Kind != KindServerError {
		t.Fatalf("Kind=%v, want server_error", terr.Kind)
	}
	if terr.Message != "Unsupported file type: notes.txt" {
		t.Fatalf("Message=%q, want server detail", terr.Message)
	}
}

func TestUploadTimeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(config.ServiceConfig{BaseURL: server.URL, UploadTimeoutMS: 50})
	start := time.Now()
	_, err := client.Upload(context.Background(), "s", []File{{Name: "a.pdf", Data: []byte("x")}}, nil)
	if time.Since(start) > 5*time.Second {
		t.Fatal("timeout did not bound the call")
	}
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("err=%v, want TransportError", err)
	}
	if terr.Kind != KindTimeout {
		t.Fatalf("Kind=%v, want timeout", terr.Kind)
	}
}

func TestUploadNetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // refuse connections

	_, err := newTestClient(server.URL).Upload(context.Background(), "s", []File{{Name: "a.pdf"}}, nil)
	var terr *TransportError
	if !errors.As(err, &terr) {
		t.Fatalf("err=%v, want TransportError", err)
	}
	if terr.Kind != KindNetworkError {
		t.Fatalf("Kind=%v, want network_error", terr.Kind)
	}
}
