package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"claimdesk/internal/evidence"
	"claimdesk/internal/session"
)

var replCommands = []string{
	"/new                 start a new claim inquiry",
	"/sessions            list inquiries",
	"/use <n|id>          switch to an inquiry",
	"/delete <n|id>       delete an inquiry",
	"/upload <path...>    upload documents for the active inquiry",
	"/files               list uploaded documents",
	"/evidence            show recorded findings by topic",
	"/help                show this help",
	"/quit                exit",
}

func printCommands(out io.Writer) {
	if out == nil {
		return
	}
	fmt.Fprintln(out, "commands:")
	for _, cmd := range replCommands {
		fmt.Fprintf(out, "  %s\n", cmd)
	}
}

// statusMarker maps a session's latest decision onto the list marker,
// mirroring the icons the evidence panel uses.
func statusMarker(decision string) string {
	switch evidence.Classify(decision) {
	case evidence.StatusApproved:
		return "✓"
	case evidence.StatusDenied:
		return "✗"
	case evidence.StatusNeedsInfo:
		return "?"
	default:
		return "·"
	}
}

func printSessions(out io.Writer, sessions []session.Session, activeID string) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, "no inquiries")
		return
	}
	for i, sess := range sessions {
		active := " "
		if sess.ID == activeID {
			active = "*"
		}
		fmt.Fprintf(out, "%s [%d] %s %s  (%d files, updated %s)\n",
			active, i+1, statusMarker(sess.LastDecision()), sess.Title,
			len(sess.UploadedFiles), sess.UpdatedAt)
	}
}

func printFiles(out io.Writer, sess session.Session) {
	if len(sess.UploadedFiles) == 0 {
		fmt.Fprintln(out, "no documents uploaded for this inquiry")
		return
	}
	for _, name := range sess.UploadedFiles {
		fmt.Fprintf(out, "  %s\n", name)
	}
}

func printEvidence(out io.Writer, sess session.Session) {
	if len(sess.Evidence) == 0 {
		fmt.Fprintln(out, "no findings recorded yet")
		return
	}
	for _, topic := range evidence.SortedTopics(sess.Evidence) {
		comp := sess.Evidence[topic]
		fmt.Fprintf(out, "%s %s", statusMarker(comp.Decision), comp.Topic)
		if comp.Decision != "" {
			fmt.Fprintf(out, " — %s", comp.Decision)
		}
		fmt.Fprintln(out)
		if comp.Justification != "" {
			fmt.Fprintf(out, "    %s\n", comp.Justification)
		}
		if comp.Calculation != "" {
			fmt.Fprintf(out, "    calculation: %s\n", comp.Calculation)
		}
		for _, cl := range comp.Clauses {
			fmt.Fprintf(out, "    [%s] %s: %s\n", cl.ClauseID, cl.SourceDocument, cl.ClauseText)
		}
	}
}

// markdownRenderer wraps glamour so answer rendering degrades to
// plain text when the terminal renderer cannot be constructed.
type markdownRenderer struct {
	renderer *glamour.TermRenderer
}

func newMarkdownRenderer() *markdownRenderer {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return &markdownRenderer{}
	}
	return &markdownRenderer{renderer: renderer}
}

func (m *markdownRenderer) Render(text string) string {
	if m.renderer == nil {
		return text
	}
	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}
