package components

import "testing"

func catalogFixture() []*Definition {
	return []*Definition{
		{Type: "hero", DisplayName: "Hero Banner", Description: "Full width headline", Category: "Layout"},
		{Type: "program-list", DisplayName: "Program List", Description: "Lists degree programs", Category: "Academics"},
		{Type: "quote", DisplayName: "Quote", Description: "Student testimonial"},
		{Type: "legacy-slider", DisplayName: "Slider", Description: "Old carousel", Category: "Layout", Retired: true},
	}
}

func TestFilterSearchIsCaseInsensitive(t *testing.T) {
	got := Filter(catalogFixture(), CatalogFilter{Search: "DEGREE"})
	if len(got) != 1 || got[0].Type != "program-list" {
		t.Fatalf("expected program-list match, got %#v", got)
	}
}

func TestFilterByCategoryExcludesRetired(t *testing.T) {
	got := Filter(catalogFixture(), CatalogFilter{Category: "layout"})
	if len(got) != 1 || got[0].Type != "hero" {
		t.Fatalf("expected only hero, got %#v", got)
	}

	got = Filter(catalogFixture(), CatalogFilter{Category: "layout", IncludeRetired: true})
	if len(got) != 2 {
		t.Fatalf("expected retired definition when requested, got %d", len(got))
	}
}

func TestFilterDoesNotModifyInput(t *testing.T) {
	defs := catalogFixture()
	_ = Filter(defs, CatalogFilter{Search: "hero"})
	if len(defs) != 4 || defs[0].Type != "hero" {
		t.Fatalf("expected input to be untouched")
	}
}

func TestGroupByCategoryOrdersGroups(t *testing.T) {
	groups := GroupByCategory(Filter(catalogFixture(), CatalogFilter{IncludeRetired: true}))
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	want := []string{"Academics", "Layout", Uncategorized}
	for i, group := range groups {
		if group.Category != want[i] {
			t.Fatalf("group %d: expected %q, got %q", i, want[i], group.Category)
		}
	}
	if len(groups[1].Definitions) != 2 || groups[1].Definitions[0].Type != "hero" {
		t.Fatalf("expected layout group to keep input order, got %#v", groups[1].Definitions)
	}
}
