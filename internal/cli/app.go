// Package cli is the line-oriented front end: a readline loop with
// slash commands for session management and uploads, where any other
// input is submitted as a question against the active inquiry.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"go.uber.org/zap"

	"claimdesk/internal/api"
	"claimdesk/internal/session"
	"claimdesk/internal/validate"
)

type App struct {
	store    *session.Store
	client   *api.Client
	logger   *zap.Logger
	in       lineInput
	out      io.Writer
	markdown *markdownRenderer
}

func New(store *session.Store, client *api.Client, logger *zap.Logger, historyDir string) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	input, inputErr := newLineInput(filepath.Join(historyDir, "repl.history"))
	if inputErr != nil {
		fmt.Fprintf(os.Stderr, "line editor unavailable, fallback to basic input: %v\n", inputErr)
	}
	return &App{
		store:    store,
		client:   client,
		logger:   logger,
		in:       input,
		out:      os.Stdout,
		markdown: newMarkdownRenderer(),
	}, nil
}

func (a *App) Run() error {
	defer a.in.Close()

	if sess, ok := a.store.Active(); ok {
		fmt.Fprintf(a.out, "claimdesk — active inquiry: %s\n", sess.Title)
		if len(sess.Messages) > 0 {
			fmt.Fprintln(a.out, a.markdown.Render(sess.Messages[len(sess.Messages)-1].Content))
		}
	}
	printCommands(a.out)

	for {
		line, err := a.in.ReadLine("> ")
		if err != nil {
			switch {
			case errors.Is(err, readline.ErrInterrupt):
				fmt.Fprintln(a.out)
				continue
			case errors.Is(err, io.EOF):
				fmt.Fprintln(a.out, "bye")
				return nil
			default:
				return fmt.Errorf("read input: %w", err)
			}
		}
		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if handled, shouldExit := a.handleCommand(input); handled {
				if shouldExit {
					return nil
				}
				continue
			}
			fmt.Fprintf(a.out, "unknown command %q, see /help\n", strings.Fields(input)[0])
			continue
		}

		a.runQuery(input)
	}
}

// runQuery drives one question end to end: optimistic append, network
// call, then merge of the result or the error message. The session may
// be deleted while the request is in flight; the store discards the
// result in that case.
func (a *App) runQuery(question string) {
	id := a.store.ActiveID()
	if id == "" {
		return
	}
	history, err := a.store.BeginQuery(id, question)
	if err != nil {
		if errors.Is(err, session.ErrNoDocuments) {
			fmt.Fprintln(a.out, a.markdown.Render(session.UploadPromptText))
		}
		return
	}

	fmt.Fprintln(a.out, "analyzing...")
	resp, err := a.client.Query(context.Background(), id, question, history)
	if err != nil {
		a.logger.Warn("query failed", zap.String("session", id), zap.Error(err))
		_ = a.store.ApplyQueryError(id, err)
		if sess, ok := a.store.Get(id); ok && len(sess.Messages) > 0 {
			fmt.Fprintln(a.out, sess.Messages[len(sess.Messages)-1].Content)
		}
		return
	}
	_ = a.store.ApplyQueryResult(id, resp)

	fmt.Fprintln(a.out, a.markdown.Render(resp.Answer))
	if resp.Decision != nil && *resp.Decision != "" {
		fmt.Fprintf(a.out, "%s decision: %s\n", statusMarker(*resp.Decision), *resp.Decision)
	}
	if resp.Evidence != nil {
		fmt.Fprintf(a.out, "finding recorded under topic %q — see /evidence\n", resp.Evidence.Topic)
	}
}

// runUpload validates the whole batch before any bytes leave the
// machine; a single bad file rejects the batch.
func (a *App) runUpload(paths []string) {
	id := a.store.ActiveID()
	if id == "" {
		return
	}

	checks := make([]validate.File, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			fmt.Fprintf(a.out, "cannot read %s: %v\n", path, err)
			return
		}
		checks = append(checks, validate.File{Name: filepath.Base(path), Size: info.Size()})
	}
	if batchErr := validate.Files(checks); batchErr != nil {
		fmt.Fprintln(a.out, batchErr.Error())
		return
	}

	files := make([]api.File, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(a.out, "cannot read %s: %v\n", path, err)
			return
		}
		files = append(files, api.File{Name: filepath.Base(path), Data: data})
	}

	processed, err := a.client.Upload(context.Background(), id, files, func(percent int) {
		fmt.Fprintf(a.out, "\ruploading... %d%%", percent)
	})
	fmt.Fprintln(a.out)
	if err != nil {
		a.logger.Warn("upload failed", zap.String("session", id), zap.Error(err))
		fmt.Fprintln(a.out, err.Error())
		return
	}
	_ = a.store.AddUploadedFiles(id, processed)
	fmt.Fprintf(a.out, "processed %d document(s): %s\n", len(processed), strings.Join(processed, ", "))
}
