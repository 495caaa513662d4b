package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/seomate/seomate/internal/itemgate"
)

// Tab identifies one of the two displayed collections.
type Tab int

const (
	TabCatalog Tab = iota
	TabGenerated
)

// Tabs lists every tab in display order.
var Tabs = []Tab{TabCatalog, TabGenerated}

// String implements fmt.Stringer.
func (t Tab) String() string {
	if t == TabGenerated {
		return "generated"
	}
	return "catalog"
}

// Collection returns the entity kind shown on the tab.
func (t Tab) Collection() itemgate.Collection {
	if t == TabGenerated {
		return itemgate.CollectionGenerated
	}
	return itemgate.CollectionCatalog
}

// Snapshot represents the authoritative collections as last fetched.
type Snapshot struct {
	Catalog             []itemgate.CatalogItem
	Generated           []itemgate.GeneratedItem
	CatalogUpdated      time.Time
	GeneratedUpdated    time.Time
	LastError           error
	ConsecutiveFailures int // refresh failures since the last success
}

// IsOffline returns true when the API has been unreachable for multiple refreshes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Len returns the size of the authoritative collection behind tab.
func (s Snapshot) Len(tab Tab) int {
	if tab == TabGenerated {
		return len(s.Generated)
	}
	return len(s.Catalog)
}

// Store holds the two collections. Every write swaps a whole collection;
// there is no partial update and no deduplication.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// ReplaceCatalog swaps the catalog collection. Identifiers are normalized so
// that ID always carries the canonical key.
func (s *Store) ReplaceCatalog(items []itemgate.CatalogItem) {
	normalized := normalizeCatalog(items)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Catalog = normalized
	s.snapshot.CatalogUpdated = time.Now()
	s.markSuccess()
}

// ReplaceGenerated swaps the generated collection.
func (s *Store) ReplaceGenerated(items []itemgate.GeneratedItem) {
	normalized := normalizeGenerated(items)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.Generated = normalized
	s.snapshot.GeneratedUpdated = time.Now()
	s.markSuccess()
}

// RecordFailure keeps the previous data but records err for visibility.
func (s *Store) RecordFailure(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot.LastError = err
	s.snapshot.ConsecutiveFailures++
}

// Reset drops both collections, used on logout.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = Snapshot{}
}

// Snapshot returns a copy of the current collections.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Catalog = cloneCatalog(s.snapshot.Catalog)
	snap.Generated = cloneGenerated(s.snapshot.Generated)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store) markSuccess() {
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

func normalizeCatalog(items []itemgate.CatalogItem) []itemgate.CatalogItem {
	dup := cloneCatalog(items)
	for i := range dup {
		dup[i] = canonicalItem(dup[i])
	}
	return dup
}

func normalizeGenerated(items []itemgate.GeneratedItem) []itemgate.GeneratedItem {
	dup := cloneGenerated(items)
	for i := range dup {
		if dup[i].CatalogItem != nil {
			item := canonicalItem(*dup[i].CatalogItem)
			dup[i].CatalogItem = &item
		}
		if dup[i].CatalogItemID.IsZero() && dup[i].CatalogItem != nil {
			dup[i].CatalogItemID = dup[i].CatalogItem.Key()
		}
		dup[i].Pending = false
	}
	return dup
}

func canonicalItem(item itemgate.CatalogItem) itemgate.CatalogItem {
	if item.ID.IsZero() {
		item.ID = item.ExternalID
	}
	return item
}

func cloneCatalog(items []itemgate.CatalogItem) []itemgate.CatalogItem {
	if len(items) == 0 {
		return nil
	}
	dup := make([]itemgate.CatalogItem, len(items))
	copy(dup, items)
	return dup
}

func cloneGenerated(items []itemgate.GeneratedItem) []itemgate.GeneratedItem {
	if len(items) == 0 {
		return nil
	}
	dup := make([]itemgate.GeneratedItem, len(items))
	copy(dup, items)
	return dup
}
