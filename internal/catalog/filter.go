package catalog

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/search"

	"github.com/atelier-nour/storefront/internal/domain"
)

// Visible applies the active tab and search query to the catalog and returns
// the products to show, preserving insertion order. The inputs are never
// mutated and the result is a fresh slice on every call. An unrecognized tab
// matches nothing, since no product carries its category.
func Visible(products []domain.Product, tab domain.Tab, query string) []domain.Product {
	query = strings.TrimSpace(query)

	var pattern *search.Pattern
	if query != "" {
		pattern = search.New(language.English, search.IgnoreCase).CompileString(query)
	}

	visible := make([]domain.Product, 0, len(products))
	for _, product := range products {
		if tab != domain.TabAll && product.Category != tab {
			continue
		}
		if pattern != nil {
			if start, _ := pattern.IndexString(product.Name); start < 0 {
				continue
			}
		}
		visible = append(visible, product)
	}
	return visible
}
