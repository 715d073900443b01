package components

import (
	"sort"
	"strings"
)

// Uncategorized is the group heading for definitions without a category.
const Uncategorized = "uncategorized"

// Filter returns the definitions matching filter. The input is not modified.
func Filter(defs []*Definition, filter CatalogFilter) []*Definition {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	category := strings.ToLower(strings.TrimSpace(filter.Category))

	out := make([]*Definition, 0, len(defs))
	for _, def := range defs {
		if def == nil {
			continue
		}
		if def.Retired && !filter.IncludeRetired {
			continue
		}
		if category != "" && strings.ToLower(categoryOf(def)) != category {
			continue
		}
		if search != "" && !matchesSearch(def, search) {
			continue
		}
		out = append(out, def)
	}
	return out
}

// GroupByCategory buckets defs under their category. Groups are ordered by
// category name with uncategorized last; definitions keep their input order.
func GroupByCategory(defs []*Definition) []CatalogGroup {
	index := make(map[string]int)
	groups := make([]CatalogGroup, 0)
	for _, def := range defs {
		if def == nil {
			continue
		}
		category := categoryOf(def)
		pos, ok := index[category]
		if !ok {
			pos = len(groups)
			index[category] = pos
			groups = append(groups, CatalogGroup{Category: category})
		}
		groups[pos].Definitions = append(groups[pos].Definitions, def)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groupLess(groups[i], groups[j])
	})
	return groups
}

func groupLess(a, b CatalogGroup) bool {
	if a.Category == Uncategorized {
		return false
	}
	if b.Category == Uncategorized {
		return true
	}
	return strings.ToLower(a.Category) < strings.ToLower(b.Category)
}

func categoryOf(def *Definition) string {
	category := strings.TrimSpace(def.Category)
	if category == "" {
		return Uncategorized
	}
	return category
}

func matchesSearch(def *Definition, needle string) bool {
	return strings.Contains(strings.ToLower(def.DisplayName), needle) ||
		strings.Contains(strings.ToLower(def.Description), needle)
}
