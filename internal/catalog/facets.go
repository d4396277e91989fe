package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"catalog-service/internal/models"
)

// Aggregator computes facet statistics: which manufacturer and
// characteristic values remain reachable under the current selection.
//
// Each facet family is evaluated against the selection minus its own
// dimension — otherwise selecting manufacturer "Acme" would narrow the
// manufacturer list to just "Acme" and the user could never widen again.
type Aggregator struct {
	store    ProductStore
	compiler *Compiler
	timeout  time.Duration
	logger   *logrus.Entry
}

func NewAggregator(store ProductStore, compiler *Compiler, timeout time.Duration, logger *logrus.Logger) *Aggregator {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &Aggregator{
		store:    store,
		compiler: compiler,
		timeout:  timeout,
		logger:   logger.WithField("component", "facet-aggregator"),
	}
}

// StatsKeyFor builds the cache key covering all dimension-reduced queries of
// the selection.
func (a *Aggregator) StatsKeyFor(sel models.FilterSelection) string {
	mq, cq := a.reducedQueries(sel)
	return StatsKey(mq, cq, dedupeSorted(sel.Manufacturers))
}

// ComputeFacets returns the facet statistics for the selection. Empty value
// lists are a valid outcome, not an error.
func (a *Aggregator) ComputeFacets(ctx context.Context, sel models.FilterSelection) (*models.FacetStats, error) {
	mq, cq := a.reducedQueries(sel)

	stats := &models.FacetStats{
		Manufacturers:       []string{},
		Characteristics:     map[string][]string{},
		AvailableCategories: []string{},
	}

	mCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	manufacturers, err := a.store.DistinctManufacturers(mCtx, mq)
	if err != nil {
		return nil, fmt.Errorf("manufacturer facet failed: %w", err)
	}
	for _, m := range manufacturers {
		if m == "" || m == models.ManufacturerUnspecified {
			continue
		}
		stats.Manufacturers = append(stats.Manufacturers, m)
	}
	sort.Strings(stats.Manufacturers)

	cCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	pairs, err := a.store.CharacteristicPairs(cCtx, cq)
	if err != nil {
		return nil, fmt.Errorf("characteristic facet failed: %w", err)
	}
	grouped := make(map[string]map[string]bool)
	for _, pair := range pairs {
		if pair.Name == "" || pair.Value == "" {
			continue
		}
		if grouped[pair.Name] == nil {
			grouped[pair.Name] = make(map[string]bool)
		}
		grouped[pair.Name][pair.Value] = true
	}
	for name, values := range grouped {
		list := make([]string, 0, len(values))
		for v := range values {
			list = append(list, v)
		}
		sort.Strings(list)
		stats.Characteristics[name] = list
	}

	// Reverse facet: with a manufacturer selected the UI hides categories
	// that would come up empty for it.
	if len(sel.Manufacturers) > 0 {
		rq := a.compiler.Compile(models.FilterSelection{Manufacturers: sel.Manufacturers})
		rCtx, cancel := context.WithTimeout(ctx, a.timeout)
		defer cancel()
		categories, err := a.store.DistinctCategories(rCtx, rq)
		if err != nil {
			return nil, fmt.Errorf("category facet failed: %w", err)
		}
		for _, id := range categories {
			if id == "" {
				continue
			}
			stats.AvailableCategories = append(stats.AvailableCategories, id)
		}
		sort.Strings(stats.AvailableCategories)
	}

	return stats, nil
}

// reducedQueries compiles the selection once per facet family, each with the
// family's own dimension removed.
func (a *Aggregator) reducedQueries(sel models.FilterSelection) (manufacturerQuery, characteristicQuery Query) {
	withoutManufacturers := sel
	withoutManufacturers.Manufacturers = nil
	manufacturerQuery = a.compiler.Compile(withoutManufacturers)

	withoutCharacteristics := sel
	withoutCharacteristics.Characteristics = nil
	characteristicQuery = a.compiler.Compile(withoutCharacteristics)

	return manufacturerQuery, characteristicQuery
}
