// Package catalog is the query core of the storefront: it compiles facet
// selections into store predicates, plans paginated fetches with bounded
// counting, and computes facet statistics for the UI.
package catalog

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"catalog-service/internal/models"
)

// CharacteristicClause matches products having at least one characteristic
// entry with the clause name and any of the clause values.
type CharacteristicClause struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Query is the compiled predicate tree handed to the product store.
// All slices are sorted during compilation, so equal selections produce
// byte-identical queries. Dimensions are ANDed; values within a dimension
// (and the field alternatives of a search token) are ORed. Empty dimensions
// impose no constraint. A Query is built once per request and never mutated.
type Query struct {
	CategoryID      string                 `json:"categoryId,omitempty"`
	SubcategoryIDs  []string               `json:"subcategoryIds,omitempty"`
	Manufacturers   []string               `json:"manufacturers,omitempty"`
	Characteristics []CharacteristicClause `json:"characteristics,omitempty"`
	SearchTokens    []string               `json:"searchTokens,omitempty"`
}

// ProductStore is the read surface this core needs from the product
// collection. Implementations must honor ctx deadlines on every call.
type ProductStore interface {
	// FindPage returns up to limit products matching q, ordered by
	// (created_at, id) ascending.
	FindPage(ctx context.Context, q Query, offset, limit int) ([]models.Product, error)
	// Count returns the exact number of products matching q.
	Count(ctx context.Context, q Query) (int64, error)
	// DistinctManufacturers returns the distinct non-empty manufacturer
	// values of products matching q, sorted ascending.
	DistinctManufacturers(ctx context.Context, q Query) ([]string, error)
	// DistinctCategories returns the distinct category ids of products
	// matching q, sorted ascending.
	DistinctCategories(ctx context.Context, q Query) ([]string, error)
	// CharacteristicPairs returns the distinct (name, value) characteristic
	// pairs across products matching q.
	CharacteristicPairs(ctx context.Context, q Query) ([]models.Characteristic, error)
}

// generateCacheKey creates a deterministic cache key for a query-derived
// payload: kind plus the md5 of the canonical JSON of params.
func generateCacheKey(kind string, params interface{}) string {
	data, _ := json.Marshal(params)
	hash := md5.Sum(data)
	return fmt.Sprintf("%s:%s", kind, hex.EncodeToString(hash[:]))
}

// PageKey is the cache key for a page fetch of q.
func PageKey(q Query, page, limit int) string {
	return generateCacheKey("catalog:page", struct {
		Query Query `json:"query"`
		Page  int   `json:"page"`
		Limit int   `json:"limit"`
	}{q, page, limit})
}

// StatsKey is the cache key for the facet stats of a selection. The key is
// built from the compiled per-dimension queries so that equal (but
// differently ordered) selections share an entry.
func StatsKey(manufacturerQuery, characteristicQuery Query, manufacturers []string) string {
	return generateCacheKey("catalog:stats", struct {
		ManufacturerQuery   Query    `json:"mq"`
		CharacteristicQuery Query    `json:"cq"`
		Manufacturers       []string `json:"manufacturers"`
	}{manufacturerQuery, characteristicQuery, manufacturers})
}
