package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"catalog-service/internal/models"
)

const (
	// DefaultPageSize matches the storefront grid.
	DefaultPageSize = 24
	// MaxPageSize caps a single fetch.
	MaxPageSize = 100

	// exactCountPageWindow bounds how deep exact counting goes. Counting the
	// whole filtered set is linear in its size, so past this window the
	// planner reports total=0 and derives has-next from page fullness.
	exactCountPageWindow = 10

	// DefaultStoreTimeout bounds every store call so a hung store cannot
	// block the handler indefinitely.
	DefaultStoreTimeout = 5 * time.Second
)

// Page is one bounded slice of the filtered catalog. Total and TotalPages
// are zero when the page lies beyond the exact-count window.
type Page struct {
	Items       []models.Product `json:"items"`
	Total       int64            `json:"total"`
	TotalPages  int              `json:"totalPages"`
	HasNextPage bool             `json:"hasNextPage"`
	HasPrevPage bool             `json:"hasPrevPage"`
}

// Planner issues bounded, stably-sorted page fetches against the store.
type Planner struct {
	store   ProductStore
	timeout time.Duration
	logger  *logrus.Entry
}

func NewPlanner(store ProductStore, timeout time.Duration, logger *logrus.Logger) *Planner {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &Planner{
		store:   store,
		timeout: timeout,
		logger:  logger.WithField("component", "pagination-planner"),
	}
}

// ClampPage normalizes a raw page number to >= 1.
func ClampPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// ClampLimit normalizes a raw page size into [1, MaxPageSize].
func ClampLimit(limit int) int {
	if limit < 1 {
		return DefaultPageSize
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}

// FetchPage fetches one page of products matching q. The sort key is the
// stable composite (created_at, id) so no item is skipped or duplicated
// across pages even under concurrent catalog rewrites. Store errors and
// timeouts are returned as errors — never as a silent empty page.
func (p *Planner) FetchPage(ctx context.Context, q Query, page, limit int) (*Page, error) {
	page = ClampPage(page)
	limit = ClampLimit(limit)

	fetchCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	items, err := p.store.FindPage(fetchCtx, q, (page-1)*limit, limit)
	if err != nil {
		p.logger.WithError(err).WithField("page", page).Warn("Page fetch failed")
		return nil, fmt.Errorf("page fetch failed: %w", err)
	}

	result := &Page{
		Items:       items,
		HasPrevPage: page > 1,
	}

	if page > exactCountPageWindow {
		// Deep page: exact counting is too expensive; a full page implies
		// more results.
		result.HasNextPage = len(items) == limit
		return result, nil
	}

	countCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	total, err := p.store.Count(countCtx, q)
	if err != nil {
		p.logger.WithError(err).Warn("Count failed")
		return nil, fmt.Errorf("count failed: %w", err)
	}

	result.Total = total
	result.TotalPages = int((total + int64(limit) - 1) / int64(limit))
	result.HasNextPage = page < result.TotalPages
	return result, nil
}
