package session

import (
	"github.com/seomate/seomate/internal/itemgate"
	"github.com/seomate/seomate/internal/state"
)

// TabView is one page of a tab's composed list plus the numbers needed to
// render its pager. Only the slice matching Tab is populated.
type TabView struct {
	Tab        state.Tab
	Catalog    []itemgate.CatalogItem
	Generated  []itemgate.GeneratedItem
	Page       int
	TotalPages int
	Total      int
	PageSize   int
	Query      string
	Err        error
}

// Len returns the number of rows on the page.
func (v TabView) Len() int {
	if v.Tab == state.TabGenerated {
		return len(v.Generated)
	}
	return len(v.Catalog)
}

// View composes tab from the current snapshot and pending set and cuts the
// current page out of it.
func (s *Session) View(tab state.Tab) TabView {
	snap := s.store.Snapshot()
	pending := s.tracker.Pending()

	s.mu.Lock()
	size := s.cursors.PageSize()
	page := s.cursors.Page(tab)
	view := TabView{Tab: tab, PageSize: size, Query: s.queries[tab], Err: s.tabErrs[tab]}
	s.mu.Unlock()

	switch tab {
	case state.TabGenerated:
		all := state.GeneratedView(snap, pending)
		view.Total = len(all)
		view.Generated = state.Page(all, page, size)
	default:
		all := state.CatalogView(snap)
		view.Total = len(all)
		view.Catalog = state.Page(all, page, size)
	}
	view.TotalPages = state.TotalPages(view.Total, size)
	view.Page = page
	return view
}

// PageSize returns the shared page size.
func (s *Session) PageSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursors.PageSize()
}

// SetPageSize changes the shared page size and puts both tabs on page 1.
// Sizes outside state.PageSizes are ignored.
func (s *Session) SetPageSize(size int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursors.SetPageSize(size)
}

// CyclePageSize advances to the next selectable size and returns it.
func (s *Session) CyclePageSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := state.NextPageSize(s.cursors.PageSize())
	s.cursors.SetPageSize(next)
	return next
}

// NextPage advances tab one page.
func (s *Session) NextPage(tab state.Tab) {
	total := s.viewLen(tab)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors.Next(tab, total)
}

// PrevPage moves tab back one page.
func (s *Session) PrevPage(tab state.Tab) {
	total := s.viewLen(tab)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors.Prev(tab, total)
}

// SetPage jumps tab to page, clamped into range.
func (s *Session) SetPage(tab state.Tab, page int) {
	total := s.viewLen(tab)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursors.SetPage(tab, page, total)
}

// Page returns the current page of tab.
func (s *Session) Page(tab state.Tab) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursors.Page(tab)
}

func (s *Session) viewLen(tab state.Tab) int {
	return state.ViewLen(s.store.Snapshot(), s.tracker.Pending(), tab)
}

// clampLocked pulls both cursors back into range. Callers hold s.mu.
func (s *Session) clampLocked() {
	snap := s.store.Snapshot()
	pending := s.tracker.Pending()
	for _, tab := range state.Tabs {
		s.cursors.Clamp(tab, state.ViewLen(snap, pending, tab))
	}
}
