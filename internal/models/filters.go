package models

// FilterSelection is the strongly-typed form of the UI's facet selection.
// Empty sets mean "no constraint on that dimension", never "match nothing".
type FilterSelection struct {
	CategoryID      string              `json:"categoryId,omitempty"`
	SubcategoryIDs  []string            `json:"subcategories,omitempty"`
	Manufacturers   []string            `json:"manufacturers,omitempty"`
	Characteristics map[string][]string `json:"characteristics,omitempty"`
	SearchText      string              `json:"search,omitempty"`
}

// FacetStats describes which facet values remain meaningful for the current
// selection. Recomputed as a whole per cache key, never patched in place.
type FacetStats struct {
	Manufacturers       []string            `json:"manufacturers"`
	Characteristics     map[string][]string `json:"characteristics"`
	AvailableCategories []string            `json:"availableCategories"`
}

// PaginationInfo mirrors the storefront pagination envelope.
// Total is 0 when the page lies beyond the exact-count window; the UI must
// rely on HasNextPage in that case.
type PaginationInfo struct {
	Page        int   `json:"page"`
	Limit       int   `json:"limit"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"totalPages"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// CatalogResponse is the page-fetch payload of GET /catalog.
type CatalogResponse struct {
	Products   []Product      `json:"products"`
	Pagination PaginationInfo `json:"pagination"`
}

// CategoryListResponse is the payload of GET /categories.
type CategoryListResponse struct {
	Categories []Category `json:"categories"`
}

// ExportCatalogRequest carries the filter context for an export download.
// The fields mirror the catalog query parameters.
type ExportCatalogRequest struct {
	CategoryID      string              `json:"categoryId,omitempty"`
	Subcategories   []string            `json:"subcategories,omitempty"`
	Manufacturers   []string            `json:"manufacturers,omitempty"`
	Characteristics map[string][]string `json:"characteristics,omitempty"`
	Search          string              `json:"search,omitempty"`
}

type ErrorResponse struct {
	Success bool  `json:"success"`
	Error   Error `json:"error"`
}

type Error struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}
