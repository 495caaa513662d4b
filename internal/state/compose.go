package state

import "github.com/seomate/seomate/internal/itemgate"

// CatalogView returns the catalog tab's list: the catalog collection as
// fetched.
func CatalogView(snap Snapshot) []itemgate.CatalogItem {
	return cloneCatalog(snap.Catalog)
}

// GeneratedView returns the generated tab's list: the generated collection
// followed by one placeholder for every catalog item whose id or id_item is
// pending. Placeholders carry no description or keywords and report
// StatusProcessing.
func GeneratedView(snap Snapshot, pending PendingSet) []itemgate.GeneratedItem {
	view := make([]itemgate.GeneratedItem, 0, len(snap.Generated)+len(pending))
	view = append(view, snap.Generated...)
	if len(pending) == 0 {
		return view
	}
	for _, item := range snap.Catalog {
		if !pending.Has(item.ID) && !pending.Has(item.ExternalID) {
			continue
		}
		source := item
		view = append(view, itemgate.GeneratedItem{
			CatalogItemID: source.Key(),
			CatalogItem:   &source,
			Pending:       true,
		})
	}
	return view
}

// ViewLen returns the composed length of tab without materializing it.
func ViewLen(snap Snapshot, pending PendingSet, tab Tab) int {
	if tab == TabCatalog {
		return len(snap.Catalog)
	}
	n := len(snap.Generated)
	if len(pending) == 0 {
		return n
	}
	for _, item := range snap.Catalog {
		if pending.Has(item.ID) || pending.Has(item.ExternalID) {
			n++
		}
	}
	return n
}
