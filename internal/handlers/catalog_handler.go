package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"catalog-service/internal/cache"
	"catalog-service/internal/catalog"
	"catalog-service/internal/events"
	"catalog-service/internal/models"
	"catalog-service/internal/taxonomy"
)

type CatalogHandler struct {
	compiler   *catalog.Compiler
	planner    *catalog.Planner
	aggregator *catalog.Aggregator
	cache      *cache.Cache
	taxonomy   *taxonomy.Taxonomy
	events     *events.Publisher
	logger     *logrus.Entry
}

func NewCatalogHandler(
	compiler *catalog.Compiler,
	planner *catalog.Planner,
	aggregator *catalog.Aggregator,
	resultCache *cache.Cache,
	tax *taxonomy.Taxonomy,
	publisher *events.Publisher,
	logger *logrus.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		compiler:   compiler,
		planner:    planner,
		aggregator: aggregator,
		cache:      resultCache,
		taxonomy:   tax,
		events:     publisher,
		logger:     logger.WithField("component", "catalog-handler"),
	}
}

// parseSelection builds a FilterSelection from the request query string.
// A malformed characteristics parameter degrades to "no characteristics
// filter" instead of failing the request; the storefront's older clients
// still send broken encodings.
func (h *CatalogHandler) parseSelection(c *gin.Context) models.FilterSelection {
	sel := models.FilterSelection{
		CategoryID:     c.Query("categoryId"),
		SubcategoryIDs: splitMulti(c.Query("subcategories")),
		Manufacturers:  splitMulti(c.Query("manufacturers")),
		SearchText:     c.Query("search"),
	}

	if raw := c.Query("characteristics"); raw != "" {
		var characteristics map[string][]string
		if err := json.Unmarshal([]byte(raw), &characteristics); err != nil {
			h.logger.WithError(err).Debug("Ignoring malformed characteristics parameter")
		} else {
			sel.Characteristics = characteristics
		}
	}

	return sel
}

func splitMulti(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// GetCatalog returns one page of the filtered catalog
// @Summary Browse the catalog
// @Description Get a filtered, paginated product listing
// @Tags Catalog
// @Produce json
// @Param categoryId query string false "Category ID"
// @Param subcategories query string false "Comma-separated subcategory references"
// @Param manufacturers query string false "Comma-separated manufacturer names"
// @Param characteristics query string false "JSON object of characteristic name to value list"
// @Param search query string false "Full-text search"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(24)
// @Success 200 {object} models.CatalogResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /catalog [get]
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	start := time.Now()

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(catalog.DefaultPageSize)))
	page = catalog.ClampPage(page)
	limit = catalog.ClampLimit(limit)

	sel := h.parseSelection(c)
	query := h.compiler.Compile(sel)
	key := catalog.PageKey(query, page, limit)

	var response models.CatalogResponse
	err := h.cache.GetOrComputeJSON(c.Request.Context(), key, &response, cache.PageTTL, func() (interface{}, error) {
		result, err := h.planner.FetchPage(c.Request.Context(), query, page, limit)
		if err != nil {
			return nil, err
		}
		return models.CatalogResponse{
			Products: result.Items,
			Pagination: models.PaginationInfo{
				Page:        page,
				Limit:       limit,
				Total:       result.Total,
				TotalPages:  result.TotalPages,
				HasNextPage: result.HasNextPage,
				HasPrevPage: result.HasPrevPage,
			},
		}, nil
	})
	if err != nil {
		h.logger.WithError(err).Error("Catalog page fetch failed")
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "STORE_UNAVAILABLE",
				Message: "Catalog is temporarily unavailable, try again shortly",
			},
		})
		return
	}

	if sel.SearchText != "" {
		h.events.PublishSearch(sel.SearchText, key, response.Pagination.Total, time.Since(start))
	}

	c.JSON(http.StatusOK, response)
}

// GetCatalogStats returns facet statistics for the current selection
// @Summary Get facet statistics
// @Description Get the manufacturer and characteristic values still reachable under the selection
// @Tags Catalog
// @Produce json
// @Param categoryId query string false "Category ID"
// @Param subcategories query string false "Comma-separated subcategory references"
// @Param manufacturers query string false "Comma-separated manufacturer names"
// @Param characteristics query string false "JSON object of characteristic name to value list"
// @Param search query string false "Full-text search"
// @Success 200 {object} models.FacetStats
// @Failure 503 {object} models.ErrorResponse
// @Router /catalog/stats [get]
func (h *CatalogHandler) GetCatalogStats(c *gin.Context) {
	sel := h.parseSelection(c)
	key := h.aggregator.StatsKeyFor(sel)

	var stats models.FacetStats
	err := h.cache.GetOrComputeJSON(c.Request.Context(), key, &stats, cache.FacetTTL, func() (interface{}, error) {
		return h.aggregator.ComputeFacets(c.Request.Context(), sel)
	})
	if err != nil {
		h.logger.WithError(err).Error("Facet computation failed")
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "STORE_UNAVAILABLE",
				Message: "Catalog is temporarily unavailable, try again shortly",
			},
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetCategories returns the static category tree
// @Summary Get categories
// @Description Get the category tree with subcategories
// @Tags Categories
// @Produce json
// @Success 200 {object} models.CategoryListResponse
// @Router /categories [get]
func (h *CatalogHandler) GetCategories(c *gin.Context) {
	c.JSON(http.StatusOK, models.CategoryListResponse{
		Categories: h.taxonomy.Categories(),
	})
}
