// Package tui is the full-screen front end: a session sidebar, the
// conversation and evidence panels, and the upload picker, all backed
// by the same session store the line console uses.
package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"claimdesk/internal/api"
	"claimdesk/internal/session"
	"claimdesk/internal/validate"
)

// PanelID identifies a main-area panel.
type PanelID int

const (
	PanelConversation PanelID = iota
	PanelEvidence
	PanelDocuments
)

// --- Tea messages ---

// queryDoneMsg carries the outcome of one question round trip.
type queryDoneMsg struct {
	SessionID string
	Resp      api.QueryResponse
	Err       error
}

// uploadDoneMsg carries the outcome of one upload batch.
type uploadDoneMsg struct {
	SessionID string
	Processed []string
	Err       error
}

// uploadProgressMsg reports multipart body bytes written so far.
type uploadProgressMsg struct{ Percent int }

// App is the main Bubble Tea model.
type App struct {
	store  *session.Store
	client *api.Client
	logger *zap.Logger

	width  int
	height int

	activePanel  PanelID
	convView     viewport.Model
	evidenceView viewport.Model
	docsView     viewport.Model

	input   textarea.Model
	spin    spinner.Model
	upload  progress.Model
	picker  filepicker.Model
	picking bool

	querying  bool
	uploading bool
	uploadPct int
	statusMsg string

	progressCh chan int

	theme Theme
	keys  KeyMap
}

// NewApp creates the TUI model.
func NewApp(store *session.Store, client *api.Client, logger *zap.Logger) App {
	if logger == nil {
		logger = zap.NewNop()
	}

	ta := textarea.New()
	ta.Placeholder = "Ask about your claim..."
	ta.CharLimit = 8192
	ta.SetHeight(3)
	ta.Focus()
	if sess, ok := store.Active(); ok {
		ta.SetValue(sess.Draft)
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	picker := filepicker.New()
	picker.AllowedTypes = []string{".pdf", ".docx", ".eml"}
	if home, err := os.UserHomeDir(); err == nil {
		picker.CurrentDirectory = home
	}

	return App{
		store:       store,
		client:      client,
		logger:      logger,
		activePanel: PanelConversation,
		input:       ta,
		spin:        sp,
		upload:      progress.New(progress.WithDefaultGradient()),
		picker:      picker,
		theme:       DarkTheme(),
		keys:        DefaultKeyMap(),
	}
}

func (a App) Init() tea.Cmd {
	return textarea.Blink
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if a.picking {
			return a.updatePicker(msg)
		}
		switch {
		case key.Matches(msg, a.keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keys.SwitchPanel):
			a.activePanel = (a.activePanel + 1) % 3
			return a, nil
		case key.Matches(msg, a.keys.NewSession):
			a.store.Create()
			a.input.SetValue("")
			a.refreshViews()
			return a, nil
		case key.Matches(msg, a.keys.NextSession):
			a.cycleSession(1)
			return a, nil
		case key.Matches(msg, a.keys.PrevSession):
			a.cycleSession(-1)
			return a, nil
		case key.Matches(msg, a.keys.Delete):
			a.store.Delete(a.store.ActiveID())
			if sess, ok := a.store.Active(); ok {
				a.input.SetValue(sess.Draft)
			}
			a.refreshViews()
			return a, nil
		case key.Matches(msg, a.keys.Upload):
			a.picking = true
			return a, a.picker.Init()
		case key.Matches(msg, a.keys.Submit):
			return a.submitQuestion()
		case key.Matches(msg, a.keys.ScrollUp):
			a.convView.HalfViewUp()
			return a, nil
		case key.Matches(msg, a.keys.ScrollDown):
			a.convView.HalfViewDown()
			return a, nil
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.relayout()
		return a, nil

	case spinner.TickMsg:
		if a.querying || a.uploading {
			var cmd tea.Cmd
			a.spin, cmd = a.spin.Update(msg)
			return a, cmd
		}
		return a, nil

	case queryDoneMsg:
		a.querying = false
		if msg.Err != nil {
			a.logger.Warn("query failed", zap.String("session", msg.SessionID), zap.Error(msg.Err))
			_ = a.store.ApplyQueryError(msg.SessionID, msg.Err)
		} else {
			_ = a.store.ApplyQueryResult(msg.SessionID, msg.Resp)
		}
		a.refreshViews()
		return a, nil

	case uploadProgressMsg:
		a.uploadPct = msg.Percent
		if a.uploading {
			return a, listenProgress(a.progressCh)
		}
		return a, nil

	case uploadDoneMsg:
		a.uploading = false
		a.progressCh = nil
		if msg.Err != nil {
			a.logger.Warn("upload failed", zap.String("session", msg.SessionID), zap.Error(msg.Err))
			a.statusMsg = msg.Err.Error()
		} else {
			_ = a.store.AddUploadedFiles(msg.SessionID, msg.Processed)
			a.statusMsg = fmt.Sprintf("processed %d document(s)", len(msg.Processed))
		}
		a.refreshViews()
		return a, nil
	}

	if a.picking {
		var cmd tea.Cmd
		a.picker, cmd = a.picker.Update(msg)
		return a, cmd
	}

	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	cmds = append(cmds, cmd)
	if after := a.input.Value(); after != before {
		a.store.SetDraft(a.store.ActiveID(), after)
	}

	return a, tea.Batch(cmds...)
}

func (a App) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Cancel) || key.Matches(msg, a.keys.Quit) {
		a.picking = false
		return a, nil
	}
	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)
	if didSelect, path := a.picker.DidSelectFile(msg); didSelect {
		a.picking = false
		return a.startUpload(path)
	}
	return a, cmd
}

// submitQuestion runs the optimistic append and kicks off the network
// call as a command; the result lands as a queryDoneMsg.
func (a App) submitQuestion() (tea.Model, tea.Cmd) {
	question := strings.TrimSpace(a.input.Value())
	if question == "" || a.querying {
		return a, nil
	}
	id := a.store.ActiveID()
	history, err := a.store.BeginQuery(id, question)
	if err != nil {
		a.refreshViews()
		return a, nil
	}
	a.input.SetValue("")
	a.querying = true
	a.refreshViews()

	client := a.client
	cmd := func() tea.Msg {
		resp, err := client.Query(context.Background(), id, question, history)
		return queryDoneMsg{SessionID: id, Resp: resp, Err: err}
	}
	return a, tea.Batch(cmd, a.spin.Tick)
}

// startUpload validates the picked file locally, then streams it to
// the service with progress delivered over a channel.
func (a App) startUpload(path string) (tea.Model, tea.Cmd) {
	id := a.store.ActiveID()
	info, err := os.Stat(path)
	if err != nil {
		a.statusMsg = fmt.Sprintf("cannot read %s: %v", path, err)
		return a, nil
	}
	if batchErr := validate.Files([]validate.File{{Name: filepath.Base(path), Size: info.Size()}}); batchErr != nil {
		a.statusMsg = batchErr.Error()
		return a, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		a.statusMsg = fmt.Sprintf("cannot read %s: %v", path, err)
		return a, nil
	}

	a.uploading = true
	a.uploadPct = 0
	a.statusMsg = ""
	a.progressCh = make(chan int, 16)

	client := a.client
	ch := a.progressCh
	uploadCmd := func() tea.Msg {
		processed, err := client.Upload(context.Background(), id,
			[]api.File{{Name: filepath.Base(path), Data: data}},
			func(percent int) {
				select {
				case ch <- percent:
				default:
				}
			})
		close(ch)
		return uploadDoneMsg{SessionID: id, Processed: processed, Err: err}
	}
	return a, tea.Batch(uploadCmd, listenProgress(ch), a.spin.Tick)
}

// listenProgress forwards one progress value from the upload goroutine
// into the Bubble Tea loop; Update re-arms it until the channel closes.
func listenProgress(ch chan int) tea.Cmd {
	return func() tea.Msg {
		percent, ok := <-ch
		if !ok {
			return nil
		}
		return uploadProgressMsg{Percent: percent}
	}
}

func (a *App) cycleSession(delta int) {
	sessions := a.store.Sessions()
	if len(sessions) < 2 {
		return
	}
	active := a.store.ActiveID()
	for i, sess := range sessions {
		if sess.ID == active {
			next := (i + delta + len(sessions)) % len(sessions)
			a.store.Select(sessions[next].ID)
			a.input.SetValue(sessions[next].Draft)
			break
		}
	}
	a.refreshViews()
}

func (a *App) relayout() {
	mainWidth := a.mainWidth()
	panelHeight := a.height - 8
	if panelHeight < 3 {
		panelHeight = 3
	}

	a.convView = viewport.New(mainWidth, panelHeight)
	a.evidenceView = viewport.New(mainWidth, panelHeight)
	a.docsView = viewport.New(mainWidth, panelHeight)
	a.input.SetWidth(mainWidth - 4)
	a.upload.Width = mainWidth - 4
	a.picker.Height = panelHeight
	a.refreshViews()
}

func (a *App) refreshViews() {
	sess, ok := a.store.Active()
	if !ok {
		return
	}
	a.convView.SetContent(RenderConversation(sess, a.theme, a.mainWidth()))
	a.convView.GotoBottom()
	a.evidenceView.SetContent(RenderEvidence(sess, a.theme))
	a.docsView.SetContent(RenderDocuments(sess, a.theme))
}

func (a App) mainWidth() int {
	return a.width - a.sidebarWidth() - 1
}

func (a App) sidebarWidth() int {
	w := a.width * 25 / 100
	if w < 20 {
		w = 20
	}
	if w > 40 {
		w = 40
	}
	if a.width < 80 {
		w = 0
	}
	return w
}

func (a App) View() string {
	if a.width == 0 || a.height == 0 {
		return "Initializing..."
	}

	sidebarWidth := a.sidebarWidth()
	mainWidth := a.mainWidth()

	inputHeight := 5
	statusHeight := 1
	tabHeight := 1
	panelHeight := a.height - inputHeight - statusHeight - tabHeight
	if panelHeight < 3 {
		panelHeight = 3
	}

	tabs := a.renderTabs()
	panel := a.renderActivePanel(mainWidth, panelHeight)
	inputBox := a.theme.InputStyle.Width(mainWidth).Render(a.input.View())
	statusBar := a.renderStatusBar(a.width)

	main := lipgloss.JoinVertical(lipgloss.Left, tabs, panel, inputBox)

	if sidebarWidth > 0 {
		sidebar := a.renderSidebar(sidebarWidth, a.height-statusHeight)
		main = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	}

	return lipgloss.JoinVertical(lipgloss.Left, main, statusBar)
}

func (a App) renderTabs() string {
	tabs := []struct {
		id   PanelID
		name string
	}{
		{PanelConversation, "Conversation"},
		{PanelEvidence, "Evidence"},
		{PanelDocuments, "Documents"},
	}

	var parts []string
	for _, tab := range tabs {
		style := a.theme.InactiveTabStyle
		if tab.id == a.activePanel {
			style = a.theme.ActiveTabStyle
		}
		parts = append(parts, style.Render(tab.name))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (a App) renderActivePanel(width, height int) string {
	style := lipgloss.NewStyle().Width(width).Height(height)

	if a.picking {
		return style.Render(a.picker.View())
	}

	var content string
	switch a.activePanel {
	case PanelConversation:
		content = a.convView.View()
	case PanelEvidence:
		content = a.evidenceView.View()
	case PanelDocuments:
		content = a.docsView.View()
	}
	if a.uploading {
		content = lipgloss.JoinVertical(lipgloss.Left, content,
			a.upload.ViewAs(float64(a.uploadPct)/100))
	}
	return style.Render(content)
}

func (a App) renderSidebar(width, height int) string {
	parts := []string{
		a.theme.TitleStyle.Render(" ClaimDesk"),
		"",
		RenderSessionList(a.store.Sessions(), a.store.ActiveID(), a.theme, width),
		"",
		a.theme.MutedStyle.Render(" ctrl+n new · ctrl+j/k switch"),
		a.theme.MutedStyle.Render(" ctrl+u upload · ctrl+x delete"),
	}
	return a.theme.SidebarStyle.
		Width(width).
		Height(height).
		Render(strings.Join(parts, "\n"))
}

func (a App) renderStatusBar(width int) string {
	status := "ready"
	switch {
	case a.querying:
		status = a.spin.View() + " analyzing"
	case a.uploading:
		status = a.spin.View() + fmt.Sprintf(" uploading %d%%", a.uploadPct)
	case a.statusMsg != "":
		status = a.statusMsg
	}

	title := ""
	if sess, ok := a.store.Active(); ok {
		title = sess.Title
	}

	left := fmt.Sprintf(" %s · %s", title, status)
	gap := width - lipgloss.Width(left)
	if gap < 0 {
		gap = 0
	}
	return a.theme.StatusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap))
}

// Run starts the Bubble Tea application.
func Run(store *session.Store, client *api.Client, logger *zap.Logger) error {
	app := NewApp(store, client, logger)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
