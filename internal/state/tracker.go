package state

import (
	"errors"
	"sort"
	"sync"

	"github.com/seomate/seomate/internal/itemgate"
)

// PendingSet is an immutable view of the ids awaiting a generation result.
type PendingSet map[itemgate.ItemID]struct{}

// Has reports whether id is pending.
func (p PendingSet) Has(id itemgate.ItemID) bool {
	if id.IsZero() {
		return false
	}
	_, ok := p[id]
	return ok
}

// IDs returns the pending ids in sorted order.
func (p PendingSet) IDs() []itemgate.ItemID {
	ids := make([]itemgate.ItemID, 0, len(p))
	for id := range p {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Tracker records which catalog items have a generation request in flight.
// Membership lasts from Begin until End; Track pairs the two so the release
// runs on every exit path.
type Tracker struct {
	mu      sync.Mutex
	pending map[itemgate.ItemID]struct{}
}

// Begin marks id as pending. It reports false when id was already pending,
// in which case the set is unchanged.
func (t *Tracker) Begin(id itemgate.ItemID) bool {
	if id.IsZero() {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending == nil {
		t.pending = make(map[itemgate.ItemID]struct{})
	}
	if _, ok := t.pending[id]; ok {
		return false
	}
	t.pending[id] = struct{}{}
	return true
}

// End removes id unconditionally.
func (t *Tracker) End(id itemgate.ItemID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.pending, id)
}

// IsPending reports whether id is in flight.
func (t *Tracker) IsPending(id itemgate.ItemID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pending[id]
	return ok
}

// Len returns the number of pending ids.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Pending returns a copy of the pending set.
func (t *Tracker) Pending() PendingSet {
	t.mu.Lock()
	defer t.mu.Unlock()
	set := make(PendingSet, len(t.pending))
	for id := range t.pending {
		set[id] = struct{}{}
	}
	return set
}

// Clear drops every pending id, used on logout.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending = nil
}

// ErrAlreadyPending is returned by Track when id is already in flight.
var ErrAlreadyPending = errors.New("already pending")

// Track marks id pending for the duration of fn. The mark is removed when fn
// returns or panics. If id cannot be marked, fn is not run.
func (t *Tracker) Track(id itemgate.ItemID, fn func() error) error {
	if !t.Begin(id) {
		return ErrAlreadyPending
	}
	defer t.End(id)
	return fn()
}
