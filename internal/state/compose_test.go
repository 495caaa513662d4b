package state

import (
	"fmt"
	"testing"

	"github.com/seomate/seomate/internal/itemgate"
)

func catalogOf(n int) []itemgate.CatalogItem {
	items := make([]itemgate.CatalogItem, n)
	for i := range items {
		items[i] = itemgate.CatalogItem{
			ID:         itemgate.ItemID(fmt.Sprint(i + 1)),
			ExternalID: itemgate.ItemID(fmt.Sprintf("X-%d", i+1)),
			Name:       fmt.Sprintf("item %d", i+1),
		}
	}
	return items
}

func TestCatalogView_IsCatalogAsFetched(t *testing.T) {
	snap := Snapshot{Catalog: catalogOf(3)}
	view := CatalogView(snap)
	if len(view) != 3 || view[2].ID != "3" {
		t.Fatalf("CatalogView = %#v", view)
	}
}

func TestGeneratedView_OnePlaceholderPerPendingCatalogID(t *testing.T) {
	desc := "done"
	snap := Snapshot{
		Catalog:   catalogOf(5),
		Generated: []itemgate.GeneratedItem{{ID: "100", CatalogItemID: "9", Description: &desc}},
	}

	cases := []struct {
		name    string
		pending []itemgate.ItemID
		want    []itemgate.ItemID // placeholder source keys in catalog order
	}{
		{"none", nil, nil},
		{"by id", []itemgate.ItemID{"2"}, []itemgate.ItemID{"2"}},
		{"by id_item", []itemgate.ItemID{"X-4"}, []itemgate.ItemID{"4"}},
		{"not in catalog", []itemgate.ItemID{"77"}, nil},
		{"mixed", []itemgate.ItemID{"5", "X-1", "77"}, []itemgate.ItemID{"1", "5"}},
		{"both aliases of one item", []itemgate.ItemID{"3", "X-3"}, []itemgate.ItemID{"3"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pending := PendingSet{}
			for _, id := range tc.pending {
				pending[id] = struct{}{}
			}
			view := GeneratedView(snap, pending)
			if len(view) != 1+len(tc.want) {
				t.Fatalf("len(view) = %d, want %d", len(view), 1+len(tc.want))
			}
			if view[0].ID != "100" || view[0].Pending {
				t.Fatalf("authoritative entry should lead unchanged: %#v", view[0])
			}
			for i, key := range tc.want {
				got := view[1+i]
				if !got.Pending || got.SourceKey() != key {
					t.Fatalf("placeholder %d = %#v, want pending for %s", i, got, key)
				}
				if got.Description != nil || got.Keywords != nil {
					t.Fatalf("placeholder must not carry content")
				}
				if got.Status() != itemgate.StatusProcessing {
					t.Fatalf("placeholder status = %q", got.Status())
				}
			}
			if n := ViewLen(snap, pending, TabGenerated); n != len(view) {
				t.Fatalf("ViewLen = %d, want %d", n, len(view))
			}
		})
	}
}

func TestGeneratedView_DoesNotAliasSnapshot(t *testing.T) {
	snap := Snapshot{Catalog: catalogOf(1)}
	view := GeneratedView(snap, PendingSet{"1": {}})
	view[0].CatalogItem.Name = "mutated"
	if snap.Catalog[0].Name != "item 1" {
		t.Fatalf("placeholder shares catalog storage")
	}
}
