// Package view turns storefront state into a declarative snapshot plus a set
// of role-addressed bindings. It owns no presentation technology; a binder
// adapter translates snapshots into whatever surface hosts the shop.
package view

import (
	"fmt"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/atelier-nour/storefront/internal/catalog"
	"github.com/atelier-nour/storefront/internal/domain"
)

// PlaceholderImage is shown for products whose feed record carries no images.
const PlaceholderImage = "/img/placeholder.svg"

// NoticeKind classifies a transient notice.
type NoticeKind string

const (
	// NoticeInfo marks informational notices such as payment confirmations.
	NoticeInfo NoticeKind = "info"
	// NoticeError marks failures surfaced to the shopper.
	NoticeError NoticeKind = "error"
)

// Notice is a transient message surfaced alongside the snapshot.
type Notice struct {
	ID        string
	Kind      NoticeKind
	Message   string
	CreatedAt time.Time
}

// State is the full input to a render pass.
type State struct {
	Products  []domain.Product
	Lines     []domain.CartLine
	ActiveTab domain.Tab
	Query     string
	CartOpen  bool
	Notices   []Notice
}

// TabView is one entry of the tab bar.
type TabView struct {
	Tab    domain.Tab
	Label  string
	Active bool
}

// ProductCard is one grid entry.
type ProductCard struct {
	ID        string
	Name      string
	Image     string
	Price     string
	CompareAt string
	Sizes     []string
	Colors    []string
}

// CartRow is one line of the cart panel.
type CartRow struct {
	Key      domain.VariantKey
	Title    string
	Variant  string
	Quantity int
	Subtotal string
}

// CartView describes the cart panel.
type CartView struct {
	Open  bool
	Empty bool
	Rows  []CartRow
	Total string
}

// Snapshot is the complete declarative description of the storefront surface
// after a mutation. Binders replace their surface from it wholesale.
type Snapshot struct {
	Tabs         []TabView
	Query        string
	Cards        []ProductCard
	EmptyCatalog bool
	Badge        int
	Cart         CartView
	Notices      []Notice
}

// ActionKind enumerates the storefront operations a binding can dispatch.
type ActionKind string

const (
	ActionSelectTab     ActionKind = "select_tab"
	ActionSearch        ActionKind = "search"
	ActionAddToCart     ActionKind = "add_to_cart"
	ActionIncrementLine ActionKind = "increment_line"
	ActionDecrementLine ActionKind = "decrement_line"
	ActionClearCart     ActionKind = "clear_cart"
	ActionOpenCart      ActionKind = "open_cart"
	ActionCloseCart     ActionKind = "close_cart"
	ActionCheckout      ActionKind = "checkout"
	ActionDismissNotice ActionKind = "dismiss_notice"
)

// Action is a declarative event descriptor. The binder forwards the action of
// a triggered role back to the session, filling Query for search input and
// leaving the rest as rendered.
type Action struct {
	Kind      ActionKind
	Tab       domain.Tab
	ProductID string
	Key       domain.VariantKey
	NoticeID  string
	Query     string
}

// Binding associates a surface role with the action it dispatches.
type Binding struct {
	Role   string
	Action Action
}

var titleCaser = cases.Title(language.English)

// Render is pure: same state, same output. It resolves cart display fields
// from the product list and never touches the inputs.
func Render(state State) (Snapshot, []Binding) {
	byID := make(map[string]domain.Product, len(state.Products))
	for _, product := range state.Products {
		byID[product.ID] = product
	}

	visible := catalog.Visible(state.Products, state.ActiveTab, state.Query)

	snapshot := Snapshot{
		Query:        state.Query,
		EmptyCatalog: len(visible) == 0,
		Notices:      append([]Notice(nil), state.Notices...),
	}
	bindings := []Binding{
		{Role: "search", Action: Action{Kind: ActionSearch}},
		{Role: "cart:open", Action: Action{Kind: ActionOpenCart}},
		{Role: "cart:close", Action: Action{Kind: ActionCloseCart}},
		{Role: "cart:clear", Action: Action{Kind: ActionClearCart}},
		{Role: "checkout", Action: Action{Kind: ActionCheckout}},
	}

	for _, tab := range domain.KnownTabs() {
		snapshot.Tabs = append(snapshot.Tabs, TabView{
			Tab:    tab,
			Label:  titleCaser.String(string(tab)),
			Active: tab == state.ActiveTab,
		})
		bindings = append(bindings, Binding{
			Role:   "tab:" + string(tab),
			Action: Action{Kind: ActionSelectTab, Tab: tab},
		})
	}

	for _, product := range visible {
		snapshot.Cards = append(snapshot.Cards, renderCard(product))
		bindings = append(bindings, Binding{
			Role:   "card:add:" + product.ID,
			Action: Action{Kind: ActionAddToCart, ProductID: product.ID},
		})
	}

	snapshot.Cart, snapshot.Badge = renderCart(state, byID)
	for _, row := range snapshot.Cart.Rows {
		bindings = append(bindings,
			Binding{Role: "cart:inc:" + row.Key.String(), Action: Action{Kind: ActionIncrementLine, Key: row.Key}},
			Binding{Role: "cart:dec:" + row.Key.String(), Action: Action{Kind: ActionDecrementLine, Key: row.Key}},
		)
	}
	for _, notice := range state.Notices {
		bindings = append(bindings, Binding{
			Role:   "notice:dismiss:" + notice.ID,
			Action: Action{Kind: ActionDismissNotice, NoticeID: notice.ID},
		})
	}

	return snapshot, bindings
}

func renderCard(product domain.Product) ProductCard {
	card := ProductCard{
		ID:     product.ID,
		Name:   product.Name,
		Image:  PlaceholderImage,
		Price:  FormatMoney(product.PriceCents),
		Sizes:  append([]string(nil), product.Sizes...),
		Colors: append([]string(nil), product.Colors...),
	}
	if len(product.Images) > 0 && product.Images[0] != "" {
		card.Image = product.Images[0]
	}
	if product.CompareAtCents != nil {
		card.CompareAt = FormatMoney(*product.CompareAtCents)
	}
	return card
}

func renderCart(state State, byID map[string]domain.Product) (CartView, int) {
	cartView := CartView{Open: state.CartOpen, Empty: len(state.Lines) == 0}

	badge := 0
	var total int64
	for _, line := range state.Lines {
		badge += line.Quantity
		row := CartRow{
			Key:      line.Key,
			Title:    line.Key.ProductID,
			Variant:  variantLabel(line.Key),
			Quantity: line.Quantity,
		}
		if product, ok := byID[line.Key.ProductID]; ok {
			row.Title = product.Name
			subtotal := product.PriceCents * int64(line.Quantity)
			row.Subtotal = FormatMoney(subtotal)
			total += subtotal
		} else {
			row.Subtotal = FormatMoney(0)
		}
		cartView.Rows = append(cartView.Rows, row)
	}

	cartView.Total = FormatMoney(total)
	return cartView, badge
}

func variantLabel(key domain.VariantKey) string {
	switch {
	case key.Size != "" && key.Color != "":
		return key.Size + " / " + key.Color
	case key.Size != "":
		return key.Size
	case key.Color != "":
		return key.Color
	default:
		return ""
	}
}

// FormatMoney renders cents as a dollar amount, e.g. 1999 -> "$19.99".
func FormatMoney(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}
