package ui

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/paginator"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/seomate/seomate/internal/ingest"
	"github.com/seomate/seomate/internal/itemgate"
	"github.com/seomate/seomate/internal/logging"
	"github.com/seomate/seomate/internal/prefs"
	"github.com/seomate/seomate/internal/session"
	"github.com/seomate/seomate/internal/state"
)

// maxProgressLines bounds the ingestion progress log kept in memory.
const maxProgressLines = 200

// logTailLines is how much of the local log non-admins see.
const logTailLines = 400

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeLogin
	modeIngest
	modeImport
	modeEdit
	modeLogs
)

// Options configures the UI.
type Options struct {
	Context     context.Context
	Session     *session.Session
	Runner      *ingest.Runner
	Prefs       prefs.Prefs
	PrefsPath   string
	LogPath     string
	IngestCount int
	Logger      *logging.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx         context.Context
	sess        *session.Session
	runner      *ingest.Runner
	log         *logging.Logger
	prefs       prefs.Prefs
	prefsPath   string
	logPath     string
	ingestCount int

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	pager    paginator.Model
	search   textinput.Model
	email    textinput.Model
	password textinput.Model
	fullName textinput.Model
	count    textinput.Model
	path     textinput.Model
	keywords textinput.Model
	desc     textarea.Model

	theme  Theme
	styles Styles

	mode        mode
	focus       int  // focused field in multi-field forms
	registering bool // login form creates an account first
	selected int // row within the current page
	editing  itemgate.ItemID
	progress []string
	logLines []string
	status   string
	busy     int

	width  int
	height int
}

// opDoneMsg is delivered when a session operation settles.
type opDoneMsg struct {
	op  string
	err error
}

// ingestEventMsg carries one ingestion event and the channel it came from.
type ingestEventMsg struct {
	ev ingest.Event
	ch <-chan ingest.Event
}

// logsMsg carries formatted activity log lines.
type logsMsg struct {
	lines []string
	err   error
}

// New builds the model. The session is required.
func New(opts Options) (Model, error) {
	if opts.Session == nil {
		return Model{}, errors.New("ui: session is required")
	}
	if opts.Context == nil {
		opts.Context = context.Background()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.IngestCount <= 0 {
		opts.IngestCount = 100
	}

	theme := GetTheme(opts.Prefs.Theme)

	m := Model{
		ctx:         opts.Context,
		sess:        opts.Session,
		runner:      opts.Runner,
		log:         opts.Logger.With("component", "ui"),
		prefs:       opts.Prefs,
		prefsPath:   opts.PrefsPath,
		logPath:     opts.LogPath,
		ingestCount: opts.IngestCount,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		theme:       theme,
		styles:      theme.Styles(),
	}
	if m.prefs.Theme == "" {
		m.prefs.Theme = theme.Name
	}

	m.spinner = spinner.New(spinner.WithSpinner(spinner.Dot))
	m.pager = paginator.New()
	m.pager.Type = paginator.Dots

	m.search = newInput("search this tab", "")
	m.email = newInput("email", "")
	m.password = newInput("password", "")
	m.password.EchoMode = textinput.EchoPassword
	m.fullName = newInput("full name (optional)", "")
	m.count = newInput("items to load", "")
	m.path = newInput("path to .xlsx", "")
	m.keywords = newInput("keywords", "")
	m.desc = textarea.New()
	m.desc.Placeholder = "description"
	m.desc.ShowLineNumbers = false
	m.desc.CharLimit = 0
	m.desc.Cursor.SetMode(cursor.CursorStatic)

	m.applyStyles()

	if !m.sess.Authenticated() {
		m.enterLogin()
	}
	return m, nil
}

func newInput(placeholder, value string) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Prompt = "> "
	in.Cursor.SetMode(cursor.CursorStatic)
	in.SetValue(value)
	return in
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update handles all messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.desc.SetWidth(max(20, msg.Width-6))
		m.desc.SetHeight(max(3, msg.Height/3))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case opDoneMsg:
		return m.handleOpDone(msg), nil

	case ingestEventMsg:
		return m.handleIngestEvent(msg)

	case logsMsg:
		if msg.err != nil {
			m.status = "Logs: " + msg.err.Error()
			return m, nil
		}
		m.logLines = msg.lines
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	switch m.mode {
	case modeSearch:
		return m.updateSearch(msg)
	case modeLogin:
		return m.updateLogin(msg)
	case modeIngest:
		return m.updateIngest(msg)
	case modeImport:
		return m.updateImport(msg)
	case modeEdit:
		return m.updateEdit(msg)
	case modeLogs:
		return m.updateLogs(msg)
	}
	return m.updateBrowse(msg)
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tab := m.sess.ActiveTab()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.CycleTheme):
		m.setTheme(NextTheme(m.theme.Name))
		m.savePrefs()

	case key.Matches(msg, m.keys.Tab):
		m.switchTab(otherTab(tab))

	case key.Matches(msg, m.keys.Catalog):
		m.switchTab(state.TabCatalog)

	case key.Matches(msg, m.keys.Generated):
		m.switchTab(state.TabGenerated)

	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}

	case key.Matches(msg, m.keys.Down):
		if m.selected < m.sess.View(tab).Len()-1 {
			m.selected++
		}

	case key.Matches(msg, m.keys.NextPage):
		m.sess.NextPage(tab)
		m.selected = 0

	case key.Matches(msg, m.keys.PrevPage):
		m.sess.PrevPage(tab)
		m.selected = 0

	case key.Matches(msg, m.keys.PageSize):
		size := m.sess.CyclePageSize()
		m.prefs.PageSize = size
		m.selected = 0
		m.status = "Page size " + strconv.Itoa(size)
		m.savePrefs()

	case key.Matches(msg, m.keys.Refresh):
		m.status = "Refreshing"
		cmd := m.run("refresh", func(ctx context.Context) error {
			return m.sess.RefreshAll(ctx)
		})
		return m, cmd

	case key.Matches(msg, m.keys.Escape):
		if m.sess.Query(tab) != "" {
			cmd := m.searchCmd(tab, "")
			return m, cmd
		}
		m.status = ""
		m.sess.ClearNotice()

	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue(m.sess.Query(tab))
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Generate):
		return m.generateSelected()

	case key.Matches(msg, m.keys.Edit):
		return m.editSelected()

	case key.Matches(msg, m.keys.Copy):
		m.copySelected()

	case key.Matches(msg, m.keys.Ingest):
		m.mode = modeIngest
		if m.count.Value() == "" {
			m.count.SetValue(strconv.Itoa(m.ingestCount))
		}
		m.count.CursorEnd()
		cmd := m.count.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Import):
		m.mode = modeImport
		cmd := m.path.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Export):
		cmd := m.exportCmd(itemgate.ExportItems)
		return m, cmd

	case key.Matches(msg, m.keys.Backup):
		cmd := m.exportCmd(itemgate.ExportBackup)
		return m, cmd

	case key.Matches(msg, m.keys.Logs):
		m.mode = modeLogs
		m.logLines = nil
		cmd := m.logsCmd()
		return m, cmd

	case key.Matches(msg, m.keys.Logout):
		m.sess.Logout()
		m.status = "Logged out"
		m.enterLogin()
		cmd := m.email.Focus()
		return m, cmd
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	tab := m.sess.ActiveTab()
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeBrowse
		m.search.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.mode = modeBrowse
		m.search.Blur()
		m.selected = 0
		cmd := m.searchCmd(tab, m.search.Value())
		return m, cmd
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "esc" && m.sess.Authenticated():
		m.mode = modeBrowse
		return m, nil
	case key.Matches(msg, m.keys.Register):
		m.registering = !m.registering
		m.fullName.SetValue("")
		m.focusLoginField(0)
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		m.focusLoginField((m.focus + 1) % m.loginFields())
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		if m.focus < m.loginFields()-1 {
			m.focusLoginField(m.focus + 1)
			return m, nil
		}
		email := strings.TrimSpace(m.email.Value())
		password := m.password.Value()
		if email == "" || password == "" {
			m.status = "Email and password are required"
			return m, nil
		}
		m.password.SetValue("")
		sess := m.sess
		if m.registering {
			fullName := strings.TrimSpace(m.fullName.Value())
			m.status = "Creating account"
			cmd := m.run("login", func(ctx context.Context) error {
				return sess.Register(ctx, email, password, fullName)
			})
			return m, cmd
		}
		m.status = "Logging in"
		cmd := m.run("login", func(ctx context.Context) error {
			return sess.Login(ctx, email, password)
		})
		return m, cmd
	}
	var cmd tea.Cmd
	switch m.focus {
	case 0:
		m.email, cmd = m.email.Update(msg)
	case 1:
		m.password, cmd = m.password.Update(msg)
	default:
		m.fullName, cmd = m.fullName.Update(msg)
	}
	return m, cmd
}

func (m Model) loginFields() int {
	if m.registering {
		return 3
	}
	return 2
}

func (m Model) updateIngest(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeBrowse
		m.count.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		return m.startIngest()
	}
	var cmd tea.Cmd
	m.count, cmd = m.count.Update(msg)
	return m, cmd
}

func (m Model) updateImport(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeBrowse
		m.path.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		path := strings.TrimSpace(m.path.Value())
		m.mode = modeBrowse
		m.path.Blur()
		m.status = "Uploading " + path
		cmd := m.run("import", func(ctx context.Context) error {
			_, err := m.sess.Import(ctx, path)
			return err
		})
		return m, cmd
	}
	var cmd tea.Cmd
	m.path, cmd = m.path.Update(msg)
	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.mode = modeBrowse
		m.editing = ""
		m.desc.Blur()
		m.keywords.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Save):
		id := m.editing
		update := itemgate.GenerationUpdate{
			Description: m.desc.Value(),
			Keywords:    strings.TrimSpace(m.keywords.Value()),
		}
		m.mode = modeBrowse
		m.editing = ""
		m.desc.Blur()
		m.keywords.Blur()
		m.status = "Saving"
		cmd := m.run("save", func(ctx context.Context) error {
			return m.sess.Save(ctx, id, update)
		})
		return m, cmd
	case key.Matches(msg, m.keys.NextField):
		if m.focus == 0 {
			m.focus = 1
			m.desc.Blur()
			cmd := m.keywords.Focus()
			return m, cmd
		}
		m.focus = 0
		m.keywords.Blur()
		cmd := m.desc.Focus()
		return m, cmd
	}
	var cmd tea.Cmd
	if m.focus == 0 {
		m.desc, cmd = m.desc.Update(msg)
	} else {
		m.keywords, cmd = m.keywords.Update(msg)
	}
	return m, cmd
}

func (m Model) updateLogs(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape), key.Matches(msg, m.keys.Logs), key.Matches(msg, m.keys.Quit):
		m.mode = modeBrowse
		return m, nil
	case key.Matches(msg, m.keys.Refresh):
		cmd := m.logsCmd()
		return m, cmd
	}
	return m, nil
}

func (m Model) generateSelected() (tea.Model, tea.Cmd) {
	if m.sess.ActiveTab() != state.TabCatalog {
		m.status = "Select an item on the catalog tab to generate"
		return m, nil
	}
	item, ok := m.selectedCatalog()
	if !ok {
		return m, nil
	}
	id := item.Key()
	if m.sess.IsPending(id) {
		m.status = "Generation already running for " + id.String()
		return m, nil
	}
	m.status = "Generating " + item.Name
	cmd := m.run("generate", func(ctx context.Context) error {
		return m.sess.Generate(ctx, id)
	})
	return m, cmd
}

func (m Model) editSelected() (tea.Model, tea.Cmd) {
	item, ok := m.selectedGenerated()
	if !ok {
		return m, nil
	}
	if item.Pending {
		m.status = "Generation is still processing"
		return m, nil
	}
	m.mode = modeEdit
	m.editing = item.ID
	m.focus = 0
	m.desc.SetValue(item.DescriptionText())
	m.keywords.SetValue(item.KeywordsText())
	m.keywords.Blur()
	cmd := m.desc.Focus()
	return m, cmd
}

func (m *Model) copySelected() {
	item, ok := m.selectedGenerated()
	if !ok || item.Pending {
		return
	}
	text := item.DescriptionText()
	if kw := item.KeywordsText(); kw != "" {
		text += "\n\n" + kw
	}
	if err := writeClipboard(text); err != nil {
		m.status = "Copy failed: " + err.Error()
		return
	}
	m.status = "Copied description for " + item.Name()
}

func (m Model) startIngest() (tea.Model, tea.Cmd) {
	if m.runner == nil {
		m.status = "Ingestion is not available"
		return m, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(m.count.Value()))
	if err != nil {
		m.status = "Count must be a number"
		return m, nil
	}
	ch, err := m.runner.Start(m.ctx, n)
	if err != nil {
		m.status = err.Error()
		return m, nil
	}
	m.count.Blur()
	m.progress = nil
	m.status = "Ingesting " + strconv.Itoa(n) + " items"
	cmd := waitIngest(ch)
	return m, cmd
}

func (m Model) handleOpDone(msg opDoneMsg) Model {
	if m.busy > 0 {
		m.busy--
	}
	if msg.err != nil {
		m.log.Debug("operation settled with error", "op", msg.op, "error", msg.err)
	}
	m.status = ""

	if !m.sess.Authenticated() {
		if m.mode != modeLogin {
			m.enterLogin()
		}
		return m
	}
	if msg.op == "login" && m.mode == modeLogin {
		m.mode = modeBrowse
		m.registering = false
		m.email.Blur()
		m.password.Blur()
		m.fullName.Blur()
	}
	m.clampSelection()
	return m
}

func (m Model) handleIngestEvent(msg ingestEventMsg) (tea.Model, tea.Cmd) {
	ev := msg.ev
	// A clean terminal event repeats the last progress line.
	if ev.Message != "" && (!ev.Done || ev.Err != nil) {
		m.progress = append(m.progress, ev.Message)
		if n := len(m.progress); n > maxProgressLines {
			m.progress = m.progress[n-maxProgressLines:]
		}
	}
	if !ev.Done {
		cmd := waitIngest(msg.ch)
		return m, cmd
	}
	if ev.Err != nil {
		m.sess.IngestFailed(ev.Err)
		if !m.sess.Authenticated() {
			m.status = ""
			m.progress = nil
			m.enterLogin()
			return m, nil
		}
		m.status = "Ingestion failed: " + ev.Err.Error()
		return m, nil
	}
	m.status = "Ingestion finished"
	m.clampSelection()
	return m, nil
}

func (m *Model) enterLogin() {
	m.mode = modeLogin
	m.selected = 0
	m.focusLoginField(0)
}

func (m *Model) focusLoginField(i int) {
	m.focus = i
	m.email.Blur()
	m.password.Blur()
	m.fullName.Blur()
	switch i {
	case 0:
		m.email.Focus()
	case 1:
		m.password.Focus()
	default:
		m.fullName.Focus()
	}
}

func (m *Model) switchTab(tab state.Tab) {
	m.sess.SetActiveTab(tab)
	m.selected = 0
}

func (m *Model) clampSelection() {
	n := m.sess.View(m.sess.ActiveTab()).Len()
	if m.selected >= n {
		m.selected = max(0, n-1)
	}
}

func (m *Model) setTheme(name string) {
	m.theme = GetTheme(name)
	m.styles = m.theme.Styles()
	m.prefs.Theme = m.theme.Name
	m.applyStyles()
}

func (m *Model) applyStyles() {
	m.pager.ActiveDot = m.styles.AccentText.Render("•")
	m.pager.InactiveDot = m.styles.FaintText.Render("•")
	m.spinner.Style = m.styles.WarningText
	m.help.Styles.ShortKey = m.styles.AccentText
	m.help.Styles.FullKey = m.styles.AccentText
	m.help.Styles.ShortDesc = m.styles.MutedText
	m.help.Styles.FullDesc = m.styles.MutedText
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.log.Warn("save prefs failed", "error", err)
		m.status = "Could not save preferences"
	}
}

func (m Model) selectedCatalog() (itemgate.CatalogItem, bool) {
	view := m.sess.View(state.TabCatalog)
	if m.selected < 0 || m.selected >= len(view.Catalog) {
		return itemgate.CatalogItem{}, false
	}
	return view.Catalog[m.selected], true
}

func (m Model) selectedGenerated() (itemgate.GeneratedItem, bool) {
	if m.sess.ActiveTab() != state.TabGenerated {
		return itemgate.GeneratedItem{}, false
	}
	view := m.sess.View(state.TabGenerated)
	if m.selected < 0 || m.selected >= len(view.Generated) {
		return itemgate.GeneratedItem{}, false
	}
	return view.Generated[m.selected], true
}

func otherTab(tab state.Tab) state.Tab {
	if tab == state.TabCatalog {
		return state.TabGenerated
	}
	return state.TabCatalog
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m, err := New(opts)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
