package catalog

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"catalog-service/internal/models"
	"catalog-service/internal/taxonomy"
)

func testTaxonomy() *taxonomy.Taxonomy {
	return taxonomy.New([]models.Category{
		{
			ID:   "appliances",
			Slug: "appliances",
			Name: "Бытовая техника",
			Subcategories: []models.Subcategory{
				{ID: "appliances-coffee-machines", Slug: "coffee-machines", Name: "Кофемашины", LegacySlugs: []string{"кофемашины"}},
				{ID: "appliances-refrigerators", Slug: "refrigerators", Name: "Холодильники", LegacySlugs: []string{"холодильники"}},
				{ID: "appliances-washing-machines", Slug: "washing-machines", Name: "Стиральные машины"},
			},
		},
	})
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestCompiler() *Compiler {
	return NewCompiler(testTaxonomy(), testLogger())
}

func TestCompileDeterministicUnderReordering(t *testing.T) {
	compiler := newTestCompiler()

	a := compiler.Compile(models.FilterSelection{
		CategoryID:     "appliances",
		SubcategoryIDs: []string{"refrigerators", "coffee-machines"},
		Manufacturers:  []string{"Bosch", "Acme"},
		Characteristics: map[string][]string{
			"color": {"red", "black"},
			"power": {"1000W"},
		},
	})
	b := compiler.Compile(models.FilterSelection{
		CategoryID:     "appliances",
		SubcategoryIDs: []string{"coffee-machines", "refrigerators"},
		Manufacturers:  []string{"Acme", "Bosch"},
		Characteristics: map[string][]string{
			"power": {"1000W"},
			"color": {"black", "red"},
		},
	})

	assert.Equal(t, a, b)
	assert.Equal(t, PageKey(a, 1, 24), PageKey(b, 1, 24))
}

func TestCompileLegacyAndCanonicalReferencesShareKey(t *testing.T) {
	compiler := newTestCompiler()

	legacy := compiler.Compile(models.FilterSelection{
		CategoryID:     "appliances",
		SubcategoryIDs: []string{"кофемашины"},
	})
	canonical := compiler.Compile(models.FilterSelection{
		CategoryID:     "appliances",
		SubcategoryIDs: []string{"appliances-coffee-machines"},
	})

	assert.Equal(t, []string{"appliances-coffee-machines"}, legacy.SubcategoryIDs)
	assert.Equal(t, canonical, legacy)
}

func TestCompileAllSubcategoriesDropsDimension(t *testing.T) {
	compiler := newTestCompiler()

	q := compiler.Compile(models.FilterSelection{
		CategoryID:     "appliances",
		SubcategoryIDs: []string{"coffee-machines", "refrigerators", "washing-machines"},
	})

	assert.Empty(t, q.SubcategoryIDs)
	assert.Equal(t, "appliances", q.CategoryID)

	bare := compiler.Compile(models.FilterSelection{CategoryID: "appliances"})
	assert.Equal(t, PageKey(bare, 1, 24), PageKey(q, 1, 24))
}

func TestCompileDropsUnresolvableReferences(t *testing.T) {
	compiler := newTestCompiler()

	q := compiler.Compile(models.FilterSelection{
		CategoryID:     "appliances",
		SubcategoryIDs: []string{"coffee-machines", "no-such-thing"},
	})

	assert.Equal(t, []string{"appliances-coffee-machines"}, q.SubcategoryIDs)
}

func TestCompileAllReferencesUnresolvable(t *testing.T) {
	compiler := newTestCompiler()

	q := compiler.Compile(models.FilterSelection{
		CategoryID:     "appliances",
		SubcategoryIDs: []string{"bogus", "also-bogus"},
	})

	// No subcategory constraint survives; the category predicate remains.
	assert.Empty(t, q.SubcategoryIDs)
	assert.Equal(t, "appliances", q.CategoryID)
}

func TestCompileSearchTokens(t *testing.T) {
	compiler := newTestCompiler()

	q := compiler.Compile(models.FilterSelection{SearchText: "  Bosch X  кофемашина x Bosch "})

	// Lowercased, single-character tokens dropped, duplicates removed,
	// original order kept.
	assert.Equal(t, []string{"bosch", "кофемашина"}, q.SearchTokens)

	empty := compiler.Compile(models.FilterSelection{SearchText: "  a b c  "})
	assert.Nil(t, empty.SearchTokens)
}

func TestCompileSkipsEmptyCharacteristicClauses(t *testing.T) {
	compiler := newTestCompiler()

	q := compiler.Compile(models.FilterSelection{
		Characteristics: map[string][]string{
			"":      {"x"},
			"color": {},
			"power": {"1000W", "", "1000W"},
		},
	})

	assert.Len(t, q.Characteristics, 1)
	assert.Equal(t, CharacteristicClause{Name: "power", Values: []string{"1000W"}}, q.Characteristics[0])
}

func TestCompileIgnoresSubcategoriesWithoutCategory(t *testing.T) {
	compiler := newTestCompiler()

	q := compiler.Compile(models.FilterSelection{
		SubcategoryIDs: []string{"coffee-machines"},
	})

	assert.Empty(t, q.SubcategoryIDs)
}

func TestPageKeyVariesWithPageAndLimit(t *testing.T) {
	compiler := newTestCompiler()
	q := compiler.Compile(models.FilterSelection{CategoryID: "appliances"})

	assert.NotEqual(t, PageKey(q, 1, 24), PageKey(q, 2, 24))
	assert.NotEqual(t, PageKey(q, 1, 24), PageKey(q, 1, 48))
}
