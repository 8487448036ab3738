package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrPriceBookInvalid indicates the price book file is missing or malformed.
// The service fails fast at boot rather than serving unmappable checkouts.
var ErrPriceBookInvalid = errors.New("price book: invalid")

// PriceBook maps product IDs to PSP price IDs. It is loaded once at boot and
// read-only afterwards.
type PriceBook struct {
	prices map[string]string
}

// LoadPriceBook reads and validates a JSON object of product ID to price ID.
func LoadPriceBook(path string) (*PriceBook, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path is required", ErrPriceBookInvalid)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrPriceBookInvalid, path, err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrPriceBookInvalid, path, err)
	}

	prices := make(map[string]string, len(raw))
	for productID, priceID := range raw {
		productID = strings.TrimSpace(productID)
		priceID = strings.TrimSpace(priceID)
		if productID == "" || priceID == "" {
			return nil, fmt.Errorf("%w: blank entry in %s", ErrPriceBookInvalid, path)
		}
		prices[productID] = priceID
	}

	return &PriceBook{prices: prices}, nil
}

// NewPriceBook builds a price book from an in-memory mapping.
func NewPriceBook(prices map[string]string) *PriceBook {
	copied := make(map[string]string, len(prices))
	for k, v := range prices {
		copied[k] = v
	}
	return &PriceBook{prices: copied}
}

// PriceID resolves the PSP price ID for a product.
func (b *PriceBook) PriceID(productID string) (string, bool) {
	priceID, ok := b.prices[productID]
	return priceID, ok
}

// Len returns the number of mapped products.
func (b *PriceBook) Len() int {
	return len(b.prices)
}
