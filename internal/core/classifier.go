package core

import (
	"sort"
	"strings"
)

const (
	// FallbackCategoryID is the reserved category used for unmapped items and
	// for expenses whose category was deleted.
	FallbackCategoryID   int64 = 8
	FallbackCategoryName       = "Other"
)

// Fallback returns the reserved fallback category.
func Fallback() Category {
	return Category{ID: FallbackCategoryID, Name: FallbackCategoryName}
}

// NormalizeItem is the item-map key for a free-text item label.
func NormalizeItem(item string) string {
	return strings.ToLower(strings.TrimSpace(item))
}

// Categories is the ordered category list.
type Categories []Category

// Find returns the category with the given ID.
func (cs Categories) Find(id int64) (Category, bool) {
	for _, c := range cs {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// Resolve returns the category with the given ID, or the fallback when the ID
// is not live. A renamed fallback keeps its current name.
func (cs Categories) Resolve(id int64) Category {
	if c, ok := cs.Find(id); ok {
		return c
	}
	if c, ok := cs.Find(FallbackCategoryID); ok {
		return c
	}
	return Fallback()
}

// FirstByName returns the first category whose name matches exactly.
func (cs Categories) FirstByName(name string) (Category, bool) {
	for _, c := range cs {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Classify maps an item label to its category. It never fails: unmapped items
// and mappings to dead categories resolve to the fallback.
func Classify(items ItemMap, cats Categories, item string) Category {
	id, ok := items[NormalizeItem(item)]
	if !ok {
		return cats.Resolve(FallbackCategoryID)
	}
	return cats.Resolve(id)
}

// Mapping is one resolved item-map entry.
type Mapping struct {
	Item     string   `json:"item"`
	Category Category `json:"category"`
}

// Mappings lists the item map sorted by item, with category names resolved.
func Mappings(items ItemMap, cats Categories) []Mapping {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]Mapping, 0, len(keys))
	for _, k := range keys {
		out = append(out, Mapping{Item: k, Category: cats.Resolve(items[k])})
	}
	return out
}
