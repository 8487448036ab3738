package cart

import (
	"errors"

	"github.com/atelier-nour/storefront/internal/domain"
)

// ErrOutOfStock indicates an add was refused because the tracked inventory
// limit for the product is already fully allocated across cart lines.
var ErrOutOfStock = errors.New("cart: out of stock")

// ProductInfo resolves pricing and inventory for ledger operations. The
// catalog store satisfies it; a nil resolver disables stock checks and
// contributes zero to totals.
type ProductInfo interface {
	UnitPrice(productID string) (int64, bool)
	Stock(productID string) (int, bool)
}

// Options carries the variant choices for an add. Empty strings mean the
// option was not chosen.
type Options struct {
	Size  string
	Color string
}

// Ledger is the ordered set of cart lines. Lines are keyed by variant so the
// same product with different size or color choices occupies distinct lines.
// The zero value is ready to use. The ledger is not safe for concurrent use;
// the storefront session serializes access.
type Ledger struct {
	lines []domain.CartLine
}

// NewLedger returns an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// AddLine adds one unit of the product variant. When the product tracks
// inventory and the summed quantity across its lines has reached the limit,
// the add is refused with ErrOutOfStock and the ledger is unchanged. Either
// way the operation completes fully before returning.
func (l *Ledger) AddLine(products ProductInfo, productID string, opts Options) error {
	key := domain.NewVariantKey(productID, opts.Size, opts.Color)

	if products != nil {
		if limit, tracked := products.Stock(key.ProductID); tracked {
			if l.QuantityForProduct(key.ProductID) >= limit {
				return ErrOutOfStock
			}
		}
	}

	if idx := l.indexOf(key); idx >= 0 {
		l.lines[idx].Quantity++
		return nil
	}
	l.lines = append(l.lines, domain.CartLine{Key: key, Quantity: 1})
	return nil
}

// ChangeQuantity adjusts the line for key by delta, clamping at zero. A line
// that reaches zero is removed; remaining lines keep their relative order.
// Unknown keys are ignored.
func (l *Ledger) ChangeQuantity(key domain.VariantKey, delta int) {
	idx := l.indexOf(key)
	if idx < 0 {
		return
	}
	next := l.lines[idx].Quantity + delta
	if next <= 0 {
		l.lines = append(l.lines[:idx], l.lines[idx+1:]...)
		return
	}
	l.lines[idx].Quantity = next
}

// Clear removes every line.
func (l *Ledger) Clear() {
	l.lines = nil
}

// Lines returns a defensive copy of the ledger in insertion order.
func (l *Ledger) Lines() []domain.CartLine {
	out := make([]domain.CartLine, len(l.lines))
	copy(out, l.lines)
	return out
}

// Items serializes the ledger for checkout submission.
func (l *Ledger) Items() []domain.CheckoutItem {
	items := make([]domain.CheckoutItem, 0, len(l.lines))
	for _, line := range l.lines {
		items = append(items, domain.CheckoutItemFromLine(line))
	}
	return items
}

// TotalCount sums quantities across all lines.
func (l *Ledger) TotalCount() int {
	total := 0
	for _, line := range l.lines {
		total += line.Quantity
	}
	return total
}

// TotalPrice sums line subtotals in cents using the resolver. Lines whose
// product cannot be resolved contribute zero rather than failing the total.
func (l *Ledger) TotalPrice(products ProductInfo) int64 {
	if products == nil {
		return 0
	}
	var total int64
	for _, line := range l.lines {
		price, ok := products.UnitPrice(line.Key.ProductID)
		if !ok {
			continue
		}
		total += price * int64(line.Quantity)
	}
	return total
}

func (l *Ledger) indexOf(key domain.VariantKey) int {
	for i, line := range l.lines {
		if line.Key == key {
			return i
		}
	}
	return -1
}

// QuantityForProduct sums quantities across every variant line of the
// product. The stock check compares this against the tracked limit.
func (l *Ledger) QuantityForProduct(productID string) int {
	total := 0
	for _, line := range l.lines {
		if line.Key.ProductID == productID {
			total += line.Quantity
		}
	}
	return total
}
