package domain

// Tab identifies a category filter in the storefront tab bar.
type Tab string

const (
	// TabAll shows every product regardless of category.
	TabAll Tab = "all"
	// TabAbaya narrows the grid to the abaya collection.
	TabAbaya Tab = "abaya"
	// TabMajlis narrows the grid to the majlis collection.
	TabMajlis Tab = "majlis"
)

// KnownTabs returns the fixed tab bar in display order.
func KnownTabs() []Tab {
	return []Tab{TabAll, TabAbaya, TabMajlis}
}

// Product is one catalog entry as loaded from the feed. Prices are kept in
// minor units (cents). A nil Stock means inventory is not tracked for the
// product and the cart never blocks adds on it.
type Product struct {
	ID             string
	Name           string
	PriceCents     int64
	CompareAtCents *int64
	Category       Tab
	Images         []string
	Stock          *int
	Sizes          []string
	Colors         []string
	Description    string
}

// HasVariants reports whether the product offers size or color choices.
func (p Product) HasVariants() bool {
	return len(p.Sizes) > 0 || len(p.Colors) > 0
}
