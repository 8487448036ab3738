package catalog

import (
	"testing"

	"github.com/atelier-nour/storefront/internal/domain"
)

func sampleProducts() []domain.Product {
	return []domain.Product{
		{ID: "a1", Name: "Classic Black Abaya", Category: domain.TabAbaya},
		{ID: "m1", Name: "Majlis Cushion Set", Category: domain.TabMajlis},
		{ID: "a2", Name: "Open Abaya Kimono", Category: domain.TabAbaya},
		{ID: "m2", Name: "Royal Majlis Sofa", Category: domain.TabMajlis},
	}
}

func TestVisible(t *testing.T) {
	tests := []struct {
		name    string
		tab     domain.Tab
		query   string
		wantIDs []string
	}{
		{name: "all tab no query", tab: domain.TabAll, wantIDs: []string{"a1", "m1", "a2", "m2"}},
		{name: "abaya tab", tab: domain.TabAbaya, wantIDs: []string{"a1", "a2"}},
		{name: "majlis tab", tab: domain.TabMajlis, wantIDs: []string{"m1", "m2"}},
		{name: "query case insensitive", tab: domain.TabAll, query: "MAJLIS", wantIDs: []string{"m1", "m2"}},
		{name: "query trimmed", tab: domain.TabAll, query: "  kimono  ", wantIDs: []string{"a2"}},
		{name: "blank query matches all", tab: domain.TabAll, query: "   ", wantIDs: []string{"a1", "m1", "a2", "m2"}},
		{name: "tab and query combine", tab: domain.TabAbaya, query: "open", wantIDs: []string{"a2"}},
		{name: "no matches", tab: domain.TabAll, query: "thobe", wantIDs: []string{}},
		{name: "unknown tab matches nothing", tab: domain.Tab("kaftan"), wantIDs: []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			products := sampleProducts()
			visible := Visible(products, tc.tab, tc.query)

			if len(visible) != len(tc.wantIDs) {
				t.Fatalf("got %d products, want %d", len(visible), len(tc.wantIDs))
			}
			for i, want := range tc.wantIDs {
				if visible[i].ID != want {
					t.Fatalf("position %d: got %q, want %q", i, visible[i].ID, want)
				}
			}
		})
	}
}

func TestVisibleDoesNotMutateInput(t *testing.T) {
	products := sampleProducts()

	visible := Visible(products, domain.TabAbaya, "")
	if len(visible) == 0 {
		t.Fatalf("expected matches")
	}
	visible[0].Name = "changed"

	if products[0].Name != "Classic Black Abaya" {
		t.Fatalf("input mutated: %q", products[0].Name)
	}
	if len(products) != 4 {
		t.Fatalf("input length changed: %d", len(products))
	}
}
