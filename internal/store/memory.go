package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"catalog-service/internal/catalog"
	"catalog-service/internal/models"
)

// MemoryStore is an in-memory ProductStore used by tests and local
// development without Postgres. It evaluates queries with the same
// semantics as PostgresStore.
type MemoryStore struct {
	mu       sync.RWMutex
	products []models.Product
}

func NewMemoryStore(products ...models.Product) *MemoryStore {
	s := &MemoryStore{}
	s.Add(products...)
	return s
}

func (s *MemoryStore) Add(products ...models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products = append(s.products, products...)
}

func matches(p models.Product, q catalog.Query) bool {
	if q.CategoryID != "" && p.CategoryID != q.CategoryID {
		return false
	}
	if len(q.SubcategoryIDs) > 0 && !contains(q.SubcategoryIDs, p.SubcategoryID) {
		return false
	}
	if len(q.Manufacturers) > 0 && !contains(q.Manufacturers, p.Manufacturer) {
		return false
	}
	for _, clause := range q.Characteristics {
		found := false
		for _, c := range p.Characteristics {
			if c.Name == clause.Name && contains(clause.Values, c.Value) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, token := range q.SearchTokens {
		haystack := strings.ToLower(p.Name + " " + p.Description + " " + p.Manufacturer)
		if !strings.Contains(haystack, token) {
			return false
		}
	}
	return true
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func (s *MemoryStore) matched(q catalog.Query) []models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Product
	for _, p := range s.products {
		if matches(p, q) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (s *MemoryStore) FindPage(ctx context.Context, q catalog.Query, offset, limit int) ([]models.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	all := s.matched(q)
	if offset >= len(all) {
		return []models.Product{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *MemoryStore) Count(ctx context.Context, q catalog.Query) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return int64(len(s.matched(q))), nil
}

func (s *MemoryStore) DistinctManufacturers(ctx context.Context, q catalog.Query) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, p := range s.matched(q) {
		if p.Manufacturer == "" || p.Manufacturer == models.ManufacturerUnspecified || seen[p.Manufacturer] {
			continue
		}
		seen[p.Manufacturer] = true
		out = append(out, p.Manufacturer)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) DistinctCategories(ctx context.Context, q catalog.Query) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []string
	for _, p := range s.matched(q) {
		if p.CategoryID == "" || seen[p.CategoryID] {
			continue
		}
		seen[p.CategoryID] = true
		out = append(out, p.CategoryID)
	}
	sort.Strings(out)
	return out, nil
}

func (s *MemoryStore) CharacteristicPairs(ctx context.Context, q catalog.Query) ([]models.Characteristic, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	seen := make(map[models.Characteristic]bool)
	var out []models.Characteristic
	for _, p := range s.matched(q) {
		for _, c := range p.Characteristics {
			if c.Name == "" || c.Value == "" || seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}
