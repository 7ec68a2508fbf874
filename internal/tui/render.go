package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"claimdesk/internal/chat"
	"claimdesk/internal/evidence"
	"claimdesk/internal/session"
)

// RenderMarkdown renders markdown text using Glamour, falling back to
// the raw text when the renderer is unavailable.
func RenderMarkdown(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return content
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content
	}

	return strings.TrimRight(rendered, "\n")
}

func decisionStyle(theme Theme, decision string) (string, func(...string) string) {
	switch evidence.Classify(decision) {
	case evidence.StatusApproved:
		return "✓", theme.ApprovedStyle.Render
	case evidence.StatusDenied:
		return "✗", theme.DeniedStyle.Render
	case evidence.StatusNeedsInfo:
		return "?", theme.NeedsInfoStyle.Render
	default:
		return "·", theme.MutedStyle.Render
	}
}

// RenderConversation formats a session's message history for the
// conversation viewport.
func RenderConversation(sess session.Session, theme Theme, width int) string {
	var b strings.Builder
	for _, msg := range sess.Messages {
		switch msg.Role {
		case chat.RoleUser:
			b.WriteString(theme.UserMsgStyle.Render("You: "+msg.Content) + "\n\n")
		default:
			b.WriteString(RenderMarkdown(msg.Content, width) + "\n")
			if msg.Decision != "" {
				marker, style := decisionStyle(theme, msg.Decision)
				b.WriteString(style(fmt.Sprintf("%s %s", marker, msg.Decision)) + "\n")
			}
			b.WriteString("\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderEvidence formats a session's evidence index, one compartment
// per topic in lexical order.
func RenderEvidence(sess session.Session, theme Theme) string {
	if len(sess.Evidence) == 0 {
		return theme.MutedStyle.Render("  No findings recorded yet")
	}
	var b strings.Builder
	for _, topic := range evidence.SortedTopics(sess.Evidence) {
		comp := sess.Evidence[topic]
		marker, style := decisionStyle(theme, comp.Decision)
		b.WriteString(theme.TopicStyle.Render(comp.Topic) + "\n")
		if comp.Decision != "" {
			b.WriteString("  " + style(marker+" "+comp.Decision) + "\n")
		}
		if comp.Justification != "" {
			b.WriteString("  " + comp.Justification + "\n")
		}
		if comp.Calculation != "" {
			b.WriteString("  " + theme.MutedStyle.Render(comp.Calculation) + "\n")
		}
		for _, cl := range comp.Clauses {
			b.WriteString(fmt.Sprintf("  [%s] %s\n", cl.ClauseID, cl.SourceDocument))
			b.WriteString("    " + theme.MutedStyle.Render(cl.ClauseText) + "\n")
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderDocuments formats the uploaded-file list for a session.
func RenderDocuments(sess session.Session, theme Theme) string {
	if len(sess.UploadedFiles) == 0 {
		return theme.MutedStyle.Render("  No documents uploaded yet")
	}
	var b strings.Builder
	for _, name := range sess.UploadedFiles {
		b.WriteString("  📄 " + name + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderSessionList formats the sidebar entries, one per session in
// most-recent-first order.
func RenderSessionList(sessions []session.Session, activeID string, theme Theme, width int) string {
	var b strings.Builder
	for _, sess := range sessions {
		marker, style := decisionStyle(theme, sess.LastDecision())
		title := sess.Title
		if maxTitle := width - 8; maxTitle > 0 && len(title) > maxTitle {
			title = title[:maxTitle] + "…"
		}
		line := fmt.Sprintf(" %s %s (%d)", style(marker), title, len(sess.UploadedFiles))
		if sess.ID == activeID {
			line = theme.ActiveItemStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
