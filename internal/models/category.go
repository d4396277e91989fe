package models

// Category is static reference data: the category tree is loaded once per
// process from the catalog file and never mutated afterwards.
type Category struct {
	ID            string        `json:"id"`
	Slug          string        `json:"slug"`
	Name          string        `json:"name"`
	LegacySlugs   []string      `json:"legacySlugs,omitempty"`
	Subcategories []Subcategory `json:"subcategories"`
}

// Subcategory belongs to exactly one category. Slug is unique within the
// category; LegacySlugs carries Cyrillic-era aliases that still appear in
// stored product rows and old UI links.
type Subcategory struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	CategoryID  string   `json:"categoryId"`
	LegacySlugs []string `json:"legacySlugs,omitempty"`
}

// CanonicalSubcategoryID builds the single authoritative subcategory
// reference: "{categorySlug}-{subcategorySlug}".
func CanonicalSubcategoryID(categorySlug, subcategorySlug string) string {
	return categorySlug + "-" + subcategorySlug
}
