package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"catalog-service/internal/models"
)

func newTestAggregator(store ProductStore) *Aggregator {
	return NewAggregator(store, newTestCompiler(), time.Second, testLogger())
}

func TestComputeFacetsSelfExclusion(t *testing.T) {
	store := new(MockProductStore)
	aggregator := newTestAggregator(store)

	sel := models.FilterSelection{
		CategoryID:    "appliances",
		Manufacturers: []string{"Acme"},
		Characteristics: map[string][]string{
			"color": {"red"},
		},
	}

	// The manufacturer facet sees the selection without its manufacturer
	// dimension but with the characteristic filter intact.
	manufacturerQuery := Query{
		CategoryID:      "appliances",
		Characteristics: []CharacteristicClause{{Name: "color", Values: []string{"red"}}},
	}
	// The characteristic facet keeps the manufacturer filter.
	characteristicQuery := Query{
		CategoryID:    "appliances",
		Manufacturers: []string{"Acme"},
	}
	reverseQuery := Query{Manufacturers: []string{"Acme"}}

	store.On("DistinctManufacturers", mock.Anything, manufacturerQuery).
		Return([]string{"Acme", "Bosch"}, nil)
	store.On("CharacteristicPairs", mock.Anything, characteristicQuery).
		Return([]models.Characteristic{
			{Name: "color", Value: "red"},
			{Name: "color", Value: "black"},
			{Name: "power", Value: "1000W"},
		}, nil)
	store.On("DistinctCategories", mock.Anything, reverseQuery).
		Return([]string{"appliances", "electronics"}, nil)

	stats, err := aggregator.ComputeFacets(context.Background(), sel)
	assert.NoError(t, err)
	// "Acme" stays listed even though it is the only selected manufacturer.
	assert.Equal(t, []string{"Acme", "Bosch"}, stats.Manufacturers)
	assert.Equal(t, []string{"black", "red"}, stats.Characteristics["color"])
	assert.Equal(t, []string{"1000W"}, stats.Characteristics["power"])
	assert.Equal(t, []string{"appliances", "electronics"}, stats.AvailableCategories)
	store.AssertExpectations(t)
}

func TestComputeFacetsExcludesUnspecifiedSentinel(t *testing.T) {
	store := new(MockProductStore)
	aggregator := newTestAggregator(store)

	store.On("DistinctManufacturers", mock.Anything, mock.Anything).
		Return([]string{"Bosch", models.ManufacturerUnspecified, ""}, nil)
	store.On("CharacteristicPairs", mock.Anything, mock.Anything).
		Return([]models.Characteristic{}, nil)

	stats, err := aggregator.ComputeFacets(context.Background(), models.FilterSelection{})
	assert.NoError(t, err)
	assert.Equal(t, []string{"Bosch"}, stats.Manufacturers)
}

func TestComputeFacetsNoCategoriesWithoutManufacturerSelection(t *testing.T) {
	store := new(MockProductStore)
	aggregator := newTestAggregator(store)

	store.On("DistinctManufacturers", mock.Anything, mock.Anything).Return([]string{}, nil)
	store.On("CharacteristicPairs", mock.Anything, mock.Anything).Return([]models.Characteristic{}, nil)

	stats, err := aggregator.ComputeFacets(context.Background(), models.FilterSelection{CategoryID: "appliances"})
	assert.NoError(t, err)
	assert.Empty(t, stats.AvailableCategories)
	store.AssertNotCalled(t, "DistinctCategories", mock.Anything, mock.Anything)
}

func TestComputeFacetsEmptyIsValid(t *testing.T) {
	store := new(MockProductStore)
	aggregator := newTestAggregator(store)

	store.On("DistinctManufacturers", mock.Anything, mock.Anything).Return([]string{}, nil)
	store.On("CharacteristicPairs", mock.Anything, mock.Anything).Return([]models.Characteristic{}, nil)

	stats, err := aggregator.ComputeFacets(context.Background(), models.FilterSelection{CategoryID: "appliances"})
	assert.NoError(t, err)
	assert.NotNil(t, stats.Manufacturers)
	assert.Empty(t, stats.Manufacturers)
	assert.NotNil(t, stats.Characteristics)
}

func TestComputeFacetsStoreError(t *testing.T) {
	store := new(MockProductStore)
	aggregator := newTestAggregator(store)

	store.On("DistinctManufacturers", mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	stats, err := aggregator.ComputeFacets(context.Background(), models.FilterSelection{})
	assert.Error(t, err)
	assert.Nil(t, stats)
}

func TestStatsKeyDeterministicUnderReordering(t *testing.T) {
	store := new(MockProductStore)
	aggregator := newTestAggregator(store)

	a := aggregator.StatsKeyFor(models.FilterSelection{
		CategoryID:    "appliances",
		Manufacturers: []string{"Bosch", "Acme"},
		Characteristics: map[string][]string{
			"color": {"red", "black"},
		},
	})
	b := aggregator.StatsKeyFor(models.FilterSelection{
		CategoryID:    "appliances",
		Manufacturers: []string{"Acme", "Bosch"},
		Characteristics: map[string][]string{
			"color": {"black", "red"},
		},
	})

	assert.Equal(t, a, b)
}
