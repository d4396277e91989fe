package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"catalog-service/internal/catalog"
	"catalog-service/internal/models"
)

func seedStore() *MemoryStore {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return NewMemoryStore(
		models.Product{
			ID: "p1", Name: "Acme Espresso One", Description: "Compact espresso machine",
			CategoryID: "appliances", SubcategoryID: "appliances-coffee-machines",
			Manufacturer: "Acme",
			Characteristics: models.CharacteristicList{
				{Name: "color", Value: "red"},
				{Name: "power", Value: "1000W"},
			},
			CreatedAt: base,
		},
		models.Product{
			ID: "p2", Name: "Bosch Fridge", Description: "Two-door refrigerator",
			CategoryID: "appliances", SubcategoryID: "appliances-refrigerators",
			Manufacturer: "Bosch",
			Characteristics: models.CharacteristicList{
				{Name: "color", Value: "white"},
			},
			CreatedAt: base.Add(time.Hour),
		},
		models.Product{
			ID: "p3", Name: "Acme Phone", Description: "Budget smartphone",
			CategoryID: "electronics", SubcategoryID: "electronics-smartphones",
			Manufacturer: "Acme",
			Characteristics: models.CharacteristicList{
				{Name: "color", Value: "black"},
			},
			CreatedAt: base.Add(2 * time.Hour),
		},
		models.Product{
			ID: "p4", Name: "No-name gadget", Description: "",
			CategoryID: "electronics", SubcategoryID: "electronics-smartphones",
			Manufacturer: models.ManufacturerUnspecified,
			CreatedAt:    base.Add(3 * time.Hour),
		},
	)
}

func productIDs(products []models.Product) []string {
	ids := make([]string, len(products))
	for i, p := range products {
		ids[i] = p.ID
	}
	return ids
}

func TestFindPageDimensionsAreANDed(t *testing.T) {
	s := seedStore()

	items, err := s.FindPage(context.Background(), catalog.Query{
		CategoryID:    "appliances",
		Manufacturers: []string{"Acme"},
	}, 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, []string{"p1"}, productIDs(items))
}

func TestFindPageValuesWithinDimensionAreORed(t *testing.T) {
	s := seedStore()

	items, err := s.FindPage(context.Background(), catalog.Query{
		Manufacturers: []string{"Acme", "Bosch"},
	}, 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2", "p3"}, productIDs(items))
}

func TestFindPageCharacteristicClause(t *testing.T) {
	s := seedStore()

	items, err := s.FindPage(context.Background(), catalog.Query{
		Characteristics: []catalog.CharacteristicClause{
			{Name: "color", Values: []string{"red", "white"}},
		},
	}, 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, productIDs(items))

	// Two clauses must both hold.
	items, err = s.FindPage(context.Background(), catalog.Query{
		Characteristics: []catalog.CharacteristicClause{
			{Name: "color", Values: []string{"red"}},
			{Name: "power", Values: []string{"1000W"}},
		},
	}, 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, []string{"p1"}, productIDs(items))
}

func TestFindPageSearchTokens(t *testing.T) {
	s := seedStore()

	items, err := s.FindPage(context.Background(), catalog.Query{
		SearchTokens: []string{"acme", "espresso"},
	}, 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, []string{"p1"}, productIDs(items))
}

func TestFindPageCyrillicSearchTokensAreANDed(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	s := NewMemoryStore(
		models.Product{ID: "m1", Name: "Кофемашина X", CreatedAt: base},
		models.Product{ID: "m2", Name: "Кофеварка Y", CreatedAt: base.Add(time.Hour)},
	)

	items, err := s.FindPage(context.Background(), catalog.Query{
		SearchTokens: []string{"кофе", "машина"},
	}, 0, 10)
	assert.NoError(t, err)
	assert.Equal(t, []string{"m1"}, productIDs(items))
}

func TestFindPageStableOrderAndPaging(t *testing.T) {
	s := seedStore()

	first, err := s.FindPage(context.Background(), catalog.Query{}, 0, 2)
	assert.NoError(t, err)
	second, err := s.FindPage(context.Background(), catalog.Query{}, 2, 2)
	assert.NoError(t, err)

	assert.Equal(t, []string{"p1", "p2"}, productIDs(first))
	assert.Equal(t, []string{"p3", "p4"}, productIDs(second))

	beyond, err := s.FindPage(context.Background(), catalog.Query{}, 10, 2)
	assert.NoError(t, err)
	assert.Empty(t, beyond)
}

func TestCount(t *testing.T) {
	s := seedStore()

	total, err := s.Count(context.Background(), catalog.Query{CategoryID: "electronics"})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestDistinctManufacturersExcludesSentinel(t *testing.T) {
	s := seedStore()

	manufacturers, err := s.DistinctManufacturers(context.Background(), catalog.Query{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"Acme", "Bosch"}, manufacturers)
}

func TestDistinctCategories(t *testing.T) {
	s := seedStore()

	categories, err := s.DistinctCategories(context.Background(), catalog.Query{
		Manufacturers: []string{"Acme"},
	})
	assert.NoError(t, err)
	assert.Equal(t, []string{"appliances", "electronics"}, categories)
}

func TestCharacteristicPairsDistinct(t *testing.T) {
	s := seedStore()

	pairs, err := s.CharacteristicPairs(context.Background(), catalog.Query{CategoryID: "appliances"})
	assert.NoError(t, err)
	assert.ElementsMatch(t, []models.Characteristic{
		{Name: "color", Value: "red"},
		{Name: "color", Value: "white"},
		{Name: "power", Value: "1000W"},
	}, pairs)
}
