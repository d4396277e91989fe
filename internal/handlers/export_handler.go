package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"catalog-service/internal/models"
)

const exportPageSize = 500

var exportColumns = []string{"ID", "Name", "Description", "Category", "Subcategory", "Manufacturer", "Characteristics", "Created At"}

// ExportCatalog streams the filtered catalog as an Excel workbook
// @Summary Export catalog
// @Description Export the products matching the filter selection as an XLSX file
// @Tags Catalog
// @Accept json
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param filters body models.ExportCatalogRequest true "Filter selection"
// @Success 200 {file} binary
// @Failure 400 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /catalog/export [post]
func (h *CatalogHandler) ExportCatalog(c *gin.Context) {
	var req models.ExportCatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	query := h.compiler.Compile(models.FilterSelection{
		CategoryID:      req.CategoryID,
		SubcategoryIDs:  req.Subcategories,
		Manufacturers:   req.Manufacturers,
		Characteristics: req.Characteristics,
		SearchText:      req.Search,
	})

	f := excelize.NewFile()
	defer f.Close()

	sheet := "Products"
	f.SetSheetName("Sheet1", sheet)
	for i, col := range exportColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
	}

	row := 2
	for page := 1; ; page++ {
		result, err := h.planner.FetchPage(c.Request.Context(), query, page, exportPageSize)
		if err != nil {
			h.logger.WithError(err).Error("Catalog export fetch failed")
			c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
				Success: false,
				Error: models.Error{
					Code:    "STORE_UNAVAILABLE",
					Message: "Catalog is temporarily unavailable, try again shortly",
				},
			})
			return
		}

		for _, p := range result.Items {
			values := []interface{}{
				p.ID,
				p.Name,
				p.Description,
				p.CategoryID,
				p.SubcategoryID,
				p.Manufacturer,
				formatCharacteristics(p.Characteristics),
				p.CreatedAt.Format(time.RFC3339),
			}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, row)
				f.SetCellValue(sheet, cell, v)
			}
			row++
		}

		if !result.HasNextPage {
			break
		}
	}

	filename := fmt.Sprintf("catalog_export_%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := f.Write(c.Writer); err != nil {
		h.logger.WithError(err).Error("Failed to write export workbook")
	}
}

func formatCharacteristics(characteristics models.CharacteristicList) string {
	parts := make([]string, 0, len(characteristics))
	for _, c := range characteristics {
		parts = append(parts, fmt.Sprintf("%s: %s", c.Name, c.Value))
	}
	return strings.Join(parts, "; ")
}
