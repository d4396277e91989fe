package catalog

import (
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"catalog-service/internal/models"
	"catalog-service/internal/taxonomy"
)

// minSearchTokenLen drops one-character noise tokens before they reach the
// store's substring predicate.
const minSearchTokenLen = 2

// Compiler turns filter selections into store queries. Compilation is pure:
// no I/O, no mutation of the input, identical selections give identical
// queries and cache keys regardless of input ordering.
type Compiler struct {
	tax    *taxonomy.Taxonomy
	logger *logrus.Entry
}

func NewCompiler(tax *taxonomy.Taxonomy, logger *logrus.Logger) *Compiler {
	return &Compiler{
		tax:    tax,
		logger: logger.WithField("component", "filter-compiler"),
	}
}

// Compile builds the predicate tree for a selection.
//
// Subcategory references are normalized to canonical composite ids first;
// references that resolve to nothing are dropped rather than failing the
// request. When the surviving set covers every subcategory of the selected
// category the dimension is removed entirely — the category predicate alone
// is equivalent and much cheaper, and dropping it before key construction
// means a piecewise "select all" reaches the same cache entry as no
// subcategory filter at all.
func (c *Compiler) Compile(sel models.FilterSelection) Query {
	q := Query{CategoryID: sel.CategoryID}

	if len(sel.SubcategoryIDs) > 0 && sel.CategoryID != "" {
		seen := make(map[string]bool, len(sel.SubcategoryIDs))
		for _, ref := range sel.SubcategoryIDs {
			canonical, ok := c.tax.Resolve(sel.CategoryID, ref)
			if !ok {
				c.logger.WithFields(logrus.Fields{
					"categoryId": sel.CategoryID,
					"reference":  ref,
				}).Debug("Dropping unresolvable subcategory reference")
				continue
			}
			seen[canonical] = true
		}
		if len(seen) > 0 && len(seen) < c.tax.SubcategoryCount(sel.CategoryID) {
			q.SubcategoryIDs = make([]string, 0, len(seen))
			for id := range seen {
				q.SubcategoryIDs = append(q.SubcategoryIDs, id)
			}
			sort.Strings(q.SubcategoryIDs)
		}
	}

	if len(sel.Manufacturers) > 0 {
		q.Manufacturers = dedupeSorted(sel.Manufacturers)
	}

	for name, values := range sel.Characteristics {
		if name == "" || len(values) == 0 {
			continue
		}
		q.Characteristics = append(q.Characteristics, CharacteristicClause{
			Name:   name,
			Values: dedupeSorted(values),
		})
	}
	sort.Slice(q.Characteristics, func(i, j int) bool {
		return q.Characteristics[i].Name < q.Characteristics[j].Name
	})

	q.SearchTokens = tokenize(sel.SearchText)

	return q
}

// tokenize splits search text into lowercase whitespace-delimited tokens,
// discarding tokens shorter than two characters. Token order is preserved so
// the dimension stays deterministic without re-sorting user intent.
func tokenize(text string) []string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	tokens := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		token := strings.ToLower(f)
		if len([]rune(token)) < minSearchTokenLen || seen[token] {
			continue
		}
		seen[token] = true
		tokens = append(tokens, token)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

func dedupeSorted(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
