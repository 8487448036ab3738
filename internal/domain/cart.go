package domain

import "strings"

// VariantKey identifies a cart line: the same product added with different
// size or color choices occupies distinct lines. The zero value for Size or
// Color means the option was not chosen, which is distinct from any literal
// option value a product could offer.
type VariantKey struct {
	ProductID string
	Size      string
	Color     string
}

// NewVariantKey builds a key with trimmed option values.
func NewVariantKey(productID, size, color string) VariantKey {
	return VariantKey{
		ProductID: strings.TrimSpace(productID),
		Size:      strings.TrimSpace(size),
		Color:     strings.TrimSpace(color),
	}
}

// String renders the key for logs and binding roles. Equality stays
// structural; this form is cosmetic only.
func (k VariantKey) String() string {
	var b strings.Builder
	b.WriteString(k.ProductID)
	if k.Size != "" || k.Color != "" {
		b.WriteString(" (")
		if k.Size != "" {
			b.WriteString(k.Size)
		}
		if k.Size != "" && k.Color != "" {
			b.WriteString("/")
		}
		if k.Color != "" {
			b.WriteString(k.Color)
		}
		b.WriteString(")")
	}
	return b.String()
}

// CartLine is a ledger entry. Quantity is always at least 1; display fields
// such as the product name are resolved from the catalog at render time.
type CartLine struct {
	Key      VariantKey
	Quantity int
}

// CheckoutItem is the wire form of a cart line submitted to the checkout
// session endpoint. Options serialize as null when absent.
type CheckoutItem struct {
	ID    string  `json:"id"`
	Qty   int     `json:"qty"`
	Size  *string `json:"size"`
	Color *string `json:"color"`
}

// CheckoutItemFromLine converts a ledger line to its wire form.
func CheckoutItemFromLine(line CartLine) CheckoutItem {
	item := CheckoutItem{ID: line.Key.ProductID, Qty: line.Quantity}
	if line.Key.Size != "" {
		size := line.Key.Size
		item.Size = &size
	}
	if line.Key.Color != "" {
		color := line.Key.Color
		item.Color = &color
	}
	return item
}
