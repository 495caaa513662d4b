// Package session is the single state container behind the UI. It owns the
// collection store, the pending-generation tracker and the page cursors, and
// exposes every mutating operation the UI may trigger.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/seomate/seomate/internal/auth"
	"github.com/seomate/seomate/internal/itemgate"
	"github.com/seomate/seomate/internal/logging"
	"github.com/seomate/seomate/internal/state"
)

// Options wires a Session. Backend and Credentials are required.
type Options struct {
	Backend     Backend
	Accounts    Accounts
	Files       Files
	Credentials *auth.Credentials
	Logger      *logging.Logger
	PageSize    int
	DownloadDir string
	Now         func() time.Time
}

// Session is safe for concurrent use. Network calls run without holding the
// session lock; collection writes are wholesale and last writer wins.
type Session struct {
	backend     Backend
	accounts    Accounts
	files       Files
	creds       *auth.Credentials
	log         *logging.Logger
	downloadDir string
	now         func() time.Time

	store   state.Store
	tracker state.Tracker

	mu      sync.Mutex
	cursors state.Cursors
	active  state.Tab
	queries map[state.Tab]string
	tabErrs map[state.Tab]error
	notice  string
	user    *itemgate.User
}

// New returns a session on the catalog tab, page 1.
func New(opts Options) (*Session, error) {
	if opts.Backend == nil {
		return nil, errors.New("session: backend is required")
	}
	if opts.Credentials == nil {
		opts.Credentials = auth.NewCredentials("")
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &Session{
		backend:     opts.Backend,
		accounts:    opts.Accounts,
		files:       opts.Files,
		creds:       opts.Credentials,
		log:         opts.Logger.With("component", "session"),
		downloadDir: opts.DownloadDir,
		now:         opts.Now,
		cursors:     state.NewCursors(opts.PageSize),
		active:      state.TabCatalog,
		queries:     make(map[state.Tab]string),
		tabErrs:     make(map[state.Tab]error),
	}
	if s.creds.DropExpired(s.now()) {
		s.log.Info("stored token expired")
		s.notice = "Session expired. Log in to continue."
	}
	return s, nil
}

// Snapshot returns the authoritative collections.
func (s *Session) Snapshot() state.Snapshot {
	return s.store.Snapshot()
}

// Pending returns the ids with a generation in flight.
func (s *Session) Pending() state.PendingSet {
	return s.tracker.Pending()
}

// IsPending reports whether id has a generation in flight.
func (s *Session) IsPending(id itemgate.ItemID) bool {
	return s.tracker.IsPending(id)
}

// RefreshAll re-fetches both collections through the plain list path,
// dropping any search override.
func (s *Session) RefreshAll(ctx context.Context) error {
	return s.refreshTabs(ctx, state.Tabs)
}

// RefreshIdle re-fetches only the tabs without an active search. It is the
// background refresh; a tab showing search results keeps them.
func (s *Session) RefreshIdle(ctx context.Context) error {
	s.mu.Lock()
	var tabs []state.Tab
	for _, tab := range state.Tabs {
		if s.queries[tab] == "" {
			tabs = append(tabs, tab)
		}
	}
	s.mu.Unlock()
	if len(tabs) == 0 {
		return nil
	}
	return s.refreshTabs(ctx, tabs)
}

// Refresh re-fetches one collection through the plain list path.
func (s *Session) Refresh(ctx context.Context, tab state.Tab) error {
	return s.refreshTabs(ctx, []state.Tab{tab})
}

// RefreshCatalog matches the ingest refresh hook.
func (s *Session) RefreshCatalog(ctx context.Context) error {
	return s.Refresh(ctx, state.TabCatalog)
}

func (s *Session) refreshTabs(ctx context.Context, tabs []state.Tab) error {
	var g errgroup.Group
	for _, tab := range tabs {
		g.Go(func() error {
			return s.fetch(ctx, tab)
		})
	}
	return g.Wait()
}

func (s *Session) fetch(ctx context.Context, tab state.Tab) error {
	start := s.now()
	var err error
	switch tab {
	case state.TabGenerated:
		var items []itemgate.GeneratedItem
		if items, err = s.backend.ListGenerated(ctx); err == nil {
			s.store.ReplaceGenerated(items)
		}
	default:
		var items []itemgate.CatalogItem
		if items, err = s.backend.ListCatalog(ctx); err == nil {
			s.store.ReplaceCatalog(items)
		}
	}
	if err != nil {
		s.store.RecordFailure(err)
		s.fail("refresh", tab, err)
		return err
	}

	s.mu.Lock()
	delete(s.queries, tab)
	delete(s.tabErrs, tab)
	s.clampLocked()
	s.mu.Unlock()
	s.log.Debug("refreshed", "tab", tab.String(), "duration", time.Since(start))
	return nil
}

// Search applies a server-side filter to tab. An empty query restores the
// unfiltered list through the plain fetch path and leaves the cursor where it
// was. A failed search keeps the previous list and records a tab error.
func (s *Session) Search(ctx context.Context, tab state.Tab, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Refresh(ctx, tab)
	}

	var err error
	switch tab {
	case state.TabGenerated:
		var items []itemgate.GeneratedItem
		if items, err = s.backend.SearchGenerated(ctx, query); err == nil {
			s.store.ReplaceGenerated(items)
		}
	default:
		var items []itemgate.CatalogItem
		if items, err = s.backend.SearchCatalog(ctx, query); err == nil {
			s.store.ReplaceCatalog(items)
		}
	}
	if err != nil {
		s.fail("search", tab, err)
		return err
	}

	s.mu.Lock()
	s.queries[tab] = query
	delete(s.tabErrs, tab)
	s.cursors.Reset(tab)
	s.clampLocked()
	s.mu.Unlock()
	s.log.Info("search applied", "tab", tab.String(), "query", query)
	return nil
}

// Generate requests content for catalog item id. The id is pending from the
// call until the request settles; both collections are re-fetched after
// settlement whatever the outcome. On success the generated tab becomes
// active on page 1.
func (s *Session) Generate(ctx context.Context, id itemgate.ItemID) error {
	const op = "generate"
	if id.IsZero() {
		return s.reject(op, itemgate.Validation(op, "item id required"))
	}

	start := s.now()
	var resp *itemgate.GenerateResponse
	err := s.tracker.Track(id, func() error {
		s.log.Info("generation started", "id", id.String())
		var err error
		resp, err = s.backend.Generate(ctx, id)
		return err
	})
	if errors.Is(err, state.ErrAlreadyPending) {
		return s.reject(op, itemgate.Validation(op, fmt.Sprintf("generation for %s already running", id)))
	}
	if err != nil {
		s.fail(op, state.TabGenerated, err)
		if itemgate.IsAuth(err) {
			return err
		}
		_ = s.RefreshAll(ctx)
		return err
	}

	refreshErr := s.RefreshAll(ctx)
	if itemgate.IsAuth(refreshErr) {
		return refreshErr
	}
	s.mu.Lock()
	s.active = state.TabGenerated
	s.cursors.Reset(state.TabGenerated)
	s.notice = generatedNotice(id, resp)
	s.mu.Unlock()
	s.log.Info("generation finished", "id", id.String(), "duration", time.Since(start))
	return refreshErr
}

func generatedNotice(id itemgate.ItemID, resp *itemgate.GenerateResponse) string {
	if resp != nil && strings.TrimSpace(resp.Message) != "" {
		return resp.Message
	}
	return fmt.Sprintf("Generated content for item %s", id)
}

// Save stores edited description and keywords for generation id, then
// re-fetches the generated collection.
func (s *Session) Save(ctx context.Context, id itemgate.ItemID, update itemgate.GenerationUpdate) error {
	const op = "save"
	if err := s.backend.SaveGeneration(ctx, id, update); err != nil {
		s.fail(op, state.TabGenerated, err)
		return err
	}
	s.setNotice("Saved")
	s.log.Info("generation saved", "id", id.String())
	return s.Refresh(ctx, state.TabGenerated)
}

// fail records err against tab and, for auth failures, drops to the
// logged-out state.
func (s *Session) fail(op string, tab state.Tab, err error) {
	if itemgate.IsAuth(err) {
		s.log.Warn("not authenticated", "op", op)
		s.Logout()
		s.setNotice("Not authenticated. Log in to continue.")
		return
	}
	s.log.Warn("operation failed", "op", op, "tab", tab.String(), "error", err)
	s.mu.Lock()
	s.tabErrs[tab] = err
	s.notice = err.Error()
	s.mu.Unlock()
}

// reject surfaces an operation-scoped error that is not tied to a tab.
func (s *Session) reject(op string, err error) error {
	if itemgate.IsAuth(err) {
		s.fail(op, state.TabCatalog, err)
		return err
	}
	s.log.Warn("operation failed", "op", op, "error", err)
	s.setNotice(err.Error())
	return err
}

// IngestFailed records a failed ingestion run against the catalog tab. An
// auth failure ends the session like any other request would.
func (s *Session) IngestFailed(err error) {
	if err == nil {
		return
	}
	s.fail("ingest", state.TabCatalog, err)
}

// ActiveTab returns the tab in front.
func (s *Session) ActiveTab() state.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// SetActiveTab brings tab to the front.
func (s *Session) SetActiveTab(tab state.Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = tab
}

// Query returns the search override active on tab, or "".
func (s *Session) Query(tab state.Tab) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[tab]
}

// TabError returns the last failure scoped to tab, or nil.
func (s *Session) TabError(tab state.Tab) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tabErrs[tab]
}

// Notice returns the latest operation message.
func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

func (s *Session) setNotice(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = msg
}

// ClearNotice drops the latest operation message.
func (s *Session) ClearNotice() {
	s.setNotice("")
}
