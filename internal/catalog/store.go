package catalog

import (
	"github.com/atelier-nour/storefront/internal/domain"
)

// Store is an immutable catalog snapshot. It is built once per session by the
// loader and never mutated afterwards, so reads need no synchronization.
type Store struct {
	products []domain.Product
	byID     map[string]int
}

// NewStore builds a snapshot from the given products, preserving insertion
// order. Duplicate IDs keep the first occurrence.
func NewStore(products []domain.Product) *Store {
	store := &Store{
		products: make([]domain.Product, 0, len(products)),
		byID:     make(map[string]int, len(products)),
	}
	for _, product := range products {
		if _, exists := store.byID[product.ID]; exists {
			continue
		}
		store.byID[product.ID] = len(store.products)
		store.products = append(store.products, product)
	}
	return store
}

// EmptyStore returns a usable snapshot with no products.
func EmptyStore() *Store {
	return NewStore(nil)
}

// Products returns the catalog in insertion order. The slice is a copy.
func (s *Store) Products() []domain.Product {
	out := make([]domain.Product, len(s.products))
	copy(out, s.products)
	return out
}

// FindByID returns the product with the given ID.
func (s *Store) FindByID(id string) (domain.Product, bool) {
	idx, ok := s.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return s.products[idx], true
}

// UnitPrice returns the price in cents for the given product ID.
func (s *Store) UnitPrice(id string) (int64, bool) {
	product, ok := s.FindByID(id)
	if !ok {
		return 0, false
	}
	return product.PriceCents, true
}

// Stock returns the tracked inventory limit for the product. The second
// result is false when the product is unknown or inventory is untracked.
func (s *Store) Stock(id string) (int, bool) {
	product, ok := s.FindByID(id)
	if !ok || product.Stock == nil {
		return 0, false
	}
	return *product.Stock, true
}

// Len returns the number of products in the snapshot.
func (s *Store) Len() int {
	return len(s.products)
}
