// Package session owns the session collection: lifecycle, the active
// pointer, the upload-before-query gate, and the merge of workflow
// results into per-session state. Everything the front ends render
// comes out of this package as snapshots.
package session

import (
	"time"

	"claimdesk/internal/chat"
	"claimdesk/internal/evidence"
)

// DefaultTitle labels a session until the service suggests one.
const DefaultTitle = "New Claim Inquiry"

// WelcomeText is the assistant message every session starts with.
const WelcomeText = "Hello! Please upload your policy documents to get started."

// UploadPromptText is appended when a question is asked before any
// document has been uploaded for the session.
const UploadPromptText = "Please upload at least one document for this chat before asking a question."

// Session is one independent conversation scoped to its own uploaded
// documents, messages, and evidence. Messages are append-only;
// UploadedFiles is a set in insertion order.
type Session struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Messages      []chat.Message `json:"messages"`
	Evidence      evidence.Index `json:"evidence"`
	UploadedFiles []string       `json:"uploaded_files"`
	Draft         string         `json:"draft"`
	CreatedAt     string         `json:"created_at"`
	UpdatedAt     string         `json:"updated_at"`
}

// Clone returns a deep copy so callers never alias store-owned state.
func (s Session) Clone() Session {
	out := s
	out.Messages = append([]chat.Message(nil), s.Messages...)
	out.UploadedFiles = append([]string(nil), s.UploadedFiles...)
	if s.Evidence != nil {
		out.Evidence = make(evidence.Index, len(s.Evidence))
		for topic, comp := range s.Evidence {
			comp.Clauses = append([]evidence.Clause(nil), comp.Clauses...)
			out.Evidence[topic] = comp
		}
	}
	return out
}

// LastDecision returns the decision label of the most recent
// assistant message that carries one, or "" when none does. The
// session list marker is derived from it.
func (s Session) LastDecision() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		msg := s.Messages[i]
		if msg.Role == chat.RoleAssistant && msg.Decision != "" {
			return msg.Decision
		}
	}
	return ""
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}
