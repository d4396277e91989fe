// Package taxonomy holds the static category catalog and resolves the
// heterogeneous subcategory references that accumulated in the product data
// over the years into canonical "{categorySlug}-{subcategorySlug}" ids.
package taxonomy

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"catalog-service/internal/models"
)

// Taxonomy is immutable after construction and safe for concurrent reads.
type Taxonomy struct {
	categories []models.Category
	byID       map[string]*models.Category
}

// New builds a taxonomy from the given categories. Subcategory CategoryID
// fields are filled in from their parent when empty.
func New(categories []models.Category) *Taxonomy {
	t := &Taxonomy{
		categories: categories,
		byID:       make(map[string]*models.Category, len(categories)),
	}
	for i := range t.categories {
		cat := &t.categories[i]
		for j := range cat.Subcategories {
			if cat.Subcategories[j].CategoryID == "" {
				cat.Subcategories[j].CategoryID = cat.ID
			}
		}
		t.byID[cat.ID] = cat
	}
	return t
}

// Load reads the category catalog from a JSON file.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	var categories []models.Category
	if err := json.Unmarshal(data, &categories); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return New(categories), nil
}

// Categories returns the category tree in catalog order.
func (t *Taxonomy) Categories() []models.Category {
	return t.categories
}

// Category looks up a category by id.
func (t *Taxonomy) Category(id string) (*models.Category, bool) {
	cat, ok := t.byID[id]
	return cat, ok
}

// CanonicalIDs returns the canonical composite ids of every subcategory under
// the category, sorted. Empty when the category is unknown.
func (t *Taxonomy) CanonicalIDs(categoryID string) []string {
	cat, ok := t.byID[categoryID]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(cat.Subcategories))
	for i := range cat.Subcategories {
		ids = append(ids, models.CanonicalSubcategoryID(cat.Slug, cat.Subcategories[i].Slug))
	}
	sort.Strings(ids)
	return ids
}

// SubcategoryCount returns the number of subcategories under a category.
func (t *Taxonomy) SubcategoryCount(categoryID string) int {
	cat, ok := t.byID[categoryID]
	if !ok {
		return 0
	}
	return len(cat.Subcategories)
}

// Resolve maps a subcategory reference in any historical format to its
// canonical composite id. The chain, in priority order:
//
//  1. exact subcategory id (bare or already-canonical composite)
//  2. a recognized category-slug prefix stripped, remainder matched as slug
//  3. bare slug match (current latin slug or a legacy alias)
//  4. case/hyphen-insensitive match against subcategory names
//
// The static catalog is authoritative; per-record slugs in the store are
// never consulted. A miss returns ok=false — callers treat it as "cannot
// narrow by this reference", not a failure.
func (t *Taxonomy) Resolve(categoryID, raw string) (string, bool) {
	cat, ok := t.byID[categoryID]
	if !ok || raw == "" {
		return "", false
	}

	for i := range cat.Subcategories {
		sub := &cat.Subcategories[i]
		canonical := models.CanonicalSubcategoryID(cat.Slug, sub.Slug)
		if raw == sub.ID || raw == canonical {
			return canonical, true
		}
	}

	// Strip a recognized category prefix; legacy composites used the same
	// "{category}-{subcategory}" shape, and either half may carry an older
	// slug, so legacy category aliases count as prefixes too.
	remainder := raw
	for _, categorySlug := range append([]string{cat.Slug}, cat.LegacySlugs...) {
		if trimmed, ok := strings.CutPrefix(raw, categorySlug+"-"); ok {
			remainder = trimmed
			break
		}
	}

	for i := range cat.Subcategories {
		sub := &cat.Subcategories[i]
		if remainder == sub.Slug || matchesLegacySlug(sub, remainder) {
			return models.CanonicalSubcategoryID(cat.Slug, sub.Slug), true
		}
	}

	folded := fold(remainder)
	if folded == "" {
		return "", false
	}
	for i := range cat.Subcategories {
		sub := &cat.Subcategories[i]
		if fold(sub.Name) == folded || fold(sub.Slug) == folded {
			return models.CanonicalSubcategoryID(cat.Slug, sub.Slug), true
		}
		for _, legacy := range sub.LegacySlugs {
			if fold(legacy) == folded {
				return models.CanonicalSubcategoryID(cat.Slug, sub.Slug), true
			}
		}
	}

	return "", false
}

func matchesLegacySlug(sub *models.Subcategory, ref string) bool {
	for _, legacy := range sub.LegacySlugs {
		if ref == legacy {
			return true
		}
	}
	return false
}

// fold lowercases and strips hyphens, underscores and spaces so that
// "Кофе-машины", "кофе машины" and "кофемашины" compare equal.
func fold(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		switch r {
		case '-', '_', ' ':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
