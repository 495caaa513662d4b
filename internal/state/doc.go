// Package state holds the client-side model of the two item collections and
// everything derived from them.
//
// # Overview
//
// Four pieces live here:
//
//   - Store: the authoritative catalog and generated collections as last
//     fetched from the API.
//   - Tracker: the set of catalog ids with a generation request in flight.
//   - Views: CatalogView and GeneratedView compose what each tab displays.
//   - Cursors: per-tab page numbers sharing one page size.
//
// # Replace Semantics
//
// The Store never merges. Every successful fetch swaps a whole collection:
//
//	store.ReplaceCatalog(items)   → Catalog = items, failures reset
//	store.RecordFailure(err)      → Catalog unchanged, LastError = err
//
// Duplicates delivered by the server are kept. Identifiers are normalized on
// the way in so that CatalogItem.ID always holds the canonical key (the
// numeric id, or id_item when id is absent).
//
// # Optimistic Placeholders
//
// The generated tab shows the generated collection followed by one synthetic
// row per catalog item whose id or id_item is in the pending set:
//
//	view := state.GeneratedView(store.Snapshot(), tracker.Pending())
//
// Placeholders have Pending set, carry no description or keywords, and
// report StatusProcessing. They disappear as soon as the id leaves the
// pending set, which happens when the generate request settles on any path.
//
// # Concurrency
//
// Store uses a sync.RWMutex and Tracker a sync.Mutex; both are safe to use
// from their zero value. Snapshot returns copies, so callers may hold a
// snapshot while background refreshes replace the collections. Cursors is
// not synchronized and belongs to the goroutine that owns the session.
//
// # Pagination
//
// TotalPages is max(1, ceil(n/size)). After any replace the owner calls
// Cursors.Clamp so a page never points past the end of a shrunken list.
// Changing the page size resets both tabs to page 1.
package state
