package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"catalog-service/internal/catalog"
	"catalog-service/internal/models"
)

// PostgresStore serves catalog queries from Postgres via GORM.
type PostgresStore struct {
	db     *gorm.DB
	logger *logrus.Entry
}

func NewPostgresStore(db *gorm.DB, logger *logrus.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger.WithField("component", "postgres-store"),
	}
}

// apply translates a compiled query into WHERE clauses. Dimensions are ANDed
// together; values inside a dimension are ORed.
func (s *PostgresStore) apply(ctx context.Context, q catalog.Query) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&models.Product{})

	if q.CategoryID != "" {
		tx = tx.Where("category_id = ?", q.CategoryID)
	}
	if len(q.SubcategoryIDs) > 0 {
		tx = tx.Where("subcategory_id IN ?", q.SubcategoryIDs)
	}
	if len(q.Manufacturers) > 0 {
		tx = tx.Where("manufacturer IN ?", q.Manufacturers)
	}

	for _, clause := range q.Characteristics {
		conds := make([]string, 0, len(clause.Values))
		args := make([]interface{}, 0, len(clause.Values))
		for _, value := range clause.Values {
			probe, err := json.Marshal([]models.Characteristic{{Name: clause.Name, Value: value}})
			if err != nil {
				s.logger.WithError(err).WithField("characteristic", clause.Name).Warn("Skipping unencodable characteristic value")
				continue
			}
			conds = append(conds, "characteristics @> ?")
			args = append(args, string(probe))
		}
		if len(conds) == 0 {
			continue
		}
		expr := conds[0]
		for _, c := range conds[1:] {
			expr += " OR " + c
		}
		tx = tx.Where("("+expr+")", args...)
	}

	for _, token := range q.SearchTokens {
		pattern := "%" + token + "%"
		tx = tx.Where("(name ILIKE ? OR description ILIKE ? OR manufacturer ILIKE ?)", pattern, pattern, pattern)
	}

	return tx
}

func (s *PostgresStore) FindPage(ctx context.Context, q catalog.Query, offset, limit int) ([]models.Product, error) {
	var products []models.Product
	err := s.apply(ctx, q).
		Order("created_at ASC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, nil
}

func (s *PostgresStore) Count(ctx context.Context, q catalog.Query) (int64, error) {
	var total int64
	if err := s.apply(ctx, q).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return total, nil
}

func (s *PostgresStore) DistinctManufacturers(ctx context.Context, q catalog.Query) ([]string, error) {
	var manufacturers []string
	err := s.apply(ctx, q).
		Where("manufacturer IS NOT NULL AND manufacturer != '' AND manufacturer != ?", models.ManufacturerUnspecified).
		Distinct().
		Pluck("manufacturer", &manufacturers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manufacturers: %w", err)
	}
	return manufacturers, nil
}

func (s *PostgresStore) DistinctCategories(ctx context.Context, q catalog.Query) ([]string, error) {
	var categories []string
	err := s.apply(ctx, q).
		Where("category_id IS NOT NULL AND category_id != ''").
		Distinct().
		Pluck("category_id", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

// CharacteristicPairs unnests the characteristics JSONB arrays of all matched
// products into distinct name/value pairs.
func (s *PostgresStore) CharacteristicPairs(ctx context.Context, q catalog.Query) ([]models.Characteristic, error) {
	var pairs []models.Characteristic
	err := s.apply(ctx, q).
		Joins("CROSS JOIN LATERAL jsonb_array_elements(products.characteristics) AS c(elem)").
		Distinct().
		Select("c.elem->>'name' AS name, c.elem->>'value' AS value").
		Where("c.elem->>'name' IS NOT NULL AND c.elem->>'value' IS NOT NULL").
		Scan(&pairs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch characteristic values: %w", err)
	}
	return pairs, nil
}
