package cli

import (
	"fmt"
	"strconv"
	"strings"

	"claimdesk/internal/session"
)

// handleCommand dispatches a slash command. The first return reports
// whether the input was a recognized command, the second whether the
// loop should exit.
func (a *App) handleCommand(input string) (bool, bool) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return false, false
	}
	switch parts[0] {
	case "/exit", "/quit":
		return true, true
	case "/help":
		printCommands(a.out)
		return true, false
	case "/new":
		sess := a.store.Create()
		fmt.Fprintf(a.out, "new inquiry: %s\n", sess.ID)
		return true, false
	case "/sessions":
		printSessions(a.out, a.store.Sessions(), a.store.ActiveID())
		return true, false
	case "/use":
		if len(parts) < 2 {
			fmt.Fprintln(a.out, "usage: /use <n|session_id>")
			return true, false
		}
		sess, ok := a.resolveSession(parts[1])
		if !ok {
			fmt.Fprintf(a.out, "no inquiry matches %q\n", parts[1])
			return true, false
		}
		a.store.Select(sess.ID)
		fmt.Fprintf(a.out, "using inquiry: %s\n", sess.Title)
		return true, false
	case "/delete":
		if len(parts) < 2 {
			fmt.Fprintln(a.out, "usage: /delete <n|session_id>")
			return true, false
		}
		sess, ok := a.resolveSession(parts[1])
		if !ok {
			fmt.Fprintf(a.out, "no inquiry matches %q\n", parts[1])
			return true, false
		}
		a.store.Delete(sess.ID)
		fmt.Fprintf(a.out, "deleted inquiry: %s\n", sess.Title)
		return true, false
	case "/upload":
		if len(parts) < 2 {
			fmt.Fprintln(a.out, "usage: /upload <path> [path...]")
			return true, false
		}
		a.runUpload(parts[1:])
		return true, false
	case "/files":
		if sess, ok := a.store.Active(); ok {
			printFiles(a.out, sess)
		}
		return true, false
	case "/evidence":
		if sess, ok := a.store.Active(); ok {
			printEvidence(a.out, sess)
		}
		return true, false
	default:
		return false, false
	}
}

// resolveSession accepts a 1-based list index, a full session id, or
// an unambiguous id prefix.
func (a *App) resolveSession(arg string) (session.Session, bool) {
	sessions := a.store.Sessions()
	if n, err := strconv.Atoi(arg); err == nil {
		if n >= 1 && n <= len(sessions) {
			return sessions[n-1], true
		}
		return session.Session{}, false
	}
	var match session.Session
	var found bool
	for _, sess := range sessions {
		if sess.ID == arg {
			return sess, true
		}
		if strings.HasPrefix(sess.ID, arg) {
			if found {
				return session.Session{}, false
			}
			match, found = sess, true
		}
	}
	return match, found
}
