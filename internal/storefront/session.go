// Package storefront hosts the shop's state machine: catalog snapshot, cart
// ledger, tab and search state, and the checkout round trip. Presentation is
// delegated to a Binder so the core stays surface-agnostic.
package storefront

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/atelier-nour/storefront/internal/cart"
	"github.com/atelier-nour/storefront/internal/catalog"
	"github.com/atelier-nour/storefront/internal/domain"
	"github.com/atelier-nour/storefront/internal/view"
)

// CatalogLoader fetches the catalog snapshot at session start.
type CatalogLoader interface {
	Load(ctx context.Context) (*catalog.Store, error)
}

// CheckoutSubmitter posts cart contents and resolves the redirect URL.
type CheckoutSubmitter interface {
	Submit(ctx context.Context, items []domain.CheckoutItem) (string, error)
}

// Binder applies a rendered snapshot to the presentation surface. Apply is
// invoked synchronously after every mutation, exactly once, while the session
// holds its lock; implementations must not call back into the session from
// inside Apply.
type Binder interface {
	Apply(snapshot view.Snapshot, bindings []view.Binding)
}

// Navigator performs the redirect after a successful checkout submission and
// applies the cleaned URL after return marker handling.
type Navigator interface {
	Navigate(url string)
	Replace(loc *url.URL)
}

// SessionDeps wires the storefront session dependencies.
type SessionDeps struct {
	Loader    CatalogLoader
	Gateway   CheckoutSubmitter
	Binder    Binder
	Navigator Navigator
	Logger    func(ctx context.Context, event string, fields map[string]any)
	Clock     func() time.Time
	NoticeID  func() string
}

// Session owns the storefront state. Every operation takes the session lock,
// mutates, and finishes with exactly one render pass before returning, which
// reproduces a single-threaded event loop: no interleaving between a mutation
// and its render, and renders observe mutations in operation order.
type Session struct {
	mu sync.Mutex

	loader    CatalogLoader
	gateway   CheckoutSubmitter
	binder    Binder
	navigator Navigator
	logger    func(ctx context.Context, event string, fields map[string]any)
	clock     func() time.Time
	noticeID  func() string

	store     *catalog.Store
	ledger    *cart.Ledger
	activeTab domain.Tab
	query     string
	cartOpen  bool
	notices   []view.Notice
	started   bool
}

// NewSession validates dependencies and constructs a Session. The catalog is
// empty until Start runs.
func NewSession(deps SessionDeps) (*Session, error) {
	if deps.Loader == nil {
		return nil, errors.New("storefront session: loader is required")
	}
	if deps.Gateway == nil {
		return nil, errors.New("storefront session: gateway is required")
	}
	if deps.Binder == nil {
		return nil, errors.New("storefront session: binder is required")
	}
	if deps.Navigator == nil {
		return nil, errors.New("storefront session: navigator is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	noticeID := deps.NoticeID
	if noticeID == nil {
		noticeID = func() string { return ulid.Make().String() }
	}
	return &Session{
		loader:    deps.Loader,
		gateway:   deps.Gateway,
		binder:    deps.Binder,
		navigator: deps.Navigator,
		logger:    logger,
		clock:     clock,
		noticeID:  noticeID,
		store:     catalog.EmptyStore(),
		ledger:    cart.NewLedger(),
		activeTab: domain.TabAll,
	}, nil
}

// Start loads the catalog, handles checkout return markers on loc, and runs
// the first render. A load failure degrades to an empty catalog with an error
// notice; it never prevents startup. When markers were present the cleaned
// URL is handed to the navigator with replace semantics and also returned.
// Start runs at most once per session; later calls only re-render.
func (s *Session) Start(ctx context.Context, loc *url.URL) *url.URL {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		s.render()
		return loc
	}
	s.started = true

	store, err := s.loader.Load(ctx)
	if store == nil {
		store = catalog.EmptyStore()
	}
	s.store = store
	if err != nil {
		s.logger(ctx, "session.catalog_unavailable", map[string]any{"error": err.Error()})
		s.pushNotice(view.NoticeError, "Products are unavailable right now. Please try again later.")
	}

	outcome, cleaned, stripped := inspectReturn(loc)
	switch outcome {
	case returnSuccess:
		s.ledger.Clear()
		s.pushNotice(view.NoticeInfo, "Payment received. Thank you for your order!")
		s.logger(ctx, "session.checkout_confirmed", nil)
	case returnCanceled:
		s.pushNotice(view.NoticeInfo, "Checkout canceled. Your cart has been kept.")
		s.logger(ctx, "session.checkout_canceled", nil)
	}
	if stripped {
		s.navigator.Replace(cleaned)
	}

	s.render()
	return cleaned
}

// SelectTab switches the active category filter. The search query is kept.
func (s *Session) SelectTab(ctx context.Context, tab domain.Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeTab = tab
	s.render()
}

// Search updates the query and re-renders the grid.
func (s *Session) Search(ctx context.Context, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.query = strings.TrimSpace(query)
	s.render()
}

// OpenCart shows the cart panel.
func (s *Session) OpenCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartOpen = true
	s.render()
}

// CloseCart hides the cart panel.
func (s *Session) CloseCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartOpen = false
	s.render()
}

// AddToCart adds one unit of the product variant and opens the cart panel. An
// unknown product is ignored; a refused add surfaces an out-of-stock notice.
// Every path ends in exactly one render.
func (s *Session) AddToCart(ctx context.Context, productID string, opts cart.Options) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.store.FindByID(productID); !ok {
		s.logger(ctx, "session.add_unknown_product", map[string]any{"product_id": productID})
		s.render()
		return
	}

	if err := s.ledger.AddLine(s.store, productID, opts); err != nil {
		if errors.Is(err, cart.ErrOutOfStock) {
			s.pushNotice(view.NoticeError, "Sorry, that item is out of stock.")
		}
		s.render()
		return
	}

	s.cartOpen = true
	s.render()
}

// IncrementLine adds one unit to an existing cart line.
func (s *Session) IncrementLine(ctx context.Context, key domain.VariantKey) {
	s.changeQuantity(ctx, key, 1)
}

// DecrementLine removes one unit; a line reaching zero disappears.
func (s *Session) DecrementLine(ctx context.Context, key domain.VariantKey) {
	s.changeQuantity(ctx, key, -1)
}

func (s *Session) changeQuantity(ctx context.Context, key domain.VariantKey, delta int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if delta > 0 {
		if limit, tracked := s.store.Stock(key.ProductID); tracked {
			if s.ledger.QuantityForProduct(key.ProductID) >= limit {
				s.pushNotice(view.NoticeError, "Sorry, that item is out of stock.")
				s.render()
				return
			}
		}
	}

	s.ledger.ChangeQuantity(key, delta)
	s.render()
}

// ClearCart empties the ledger.
func (s *Session) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger.Clear()
	s.render()
}

// DismissNotice drops the notice with the given ID.
func (s *Session) DismissNotice(ctx context.Context, noticeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.notices[:0]
	for _, notice := range s.notices {
		if notice.ID != noticeID {
			kept = append(kept, notice)
		}
	}
	s.notices = kept
	s.render()
}

// Checkout submits the cart. The network call runs without the session lock
// so other events stay serviceable, mirroring an awaited fetch. On success
// the navigator takes over and the ledger is intentionally NOT cleared; it is
// cleared only when the shopper returns with a success marker. On failure the
// hint surfaces as an error notice with one render.
func (s *Session) Checkout(ctx context.Context) {
	s.mu.Lock()
	items := s.ledger.Items()
	s.mu.Unlock()

	redirectURL, err := s.gateway.Submit(ctx, items)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.logger(ctx, "session.checkout_failed", map[string]any{"error": err.Error()})
		s.pushNotice(view.NoticeError, checkoutNoticeMessage(err))
		s.render()
		return
	}

	s.logger(ctx, "session.checkout_redirect", nil)
	s.navigator.Navigate(redirectURL)
}

// Dispatch routes a binding action back into the session. Binders that treat
// actions as opaque tokens use this as their single entry point.
func (s *Session) Dispatch(ctx context.Context, action view.Action) {
	switch action.Kind {
	case view.ActionSelectTab:
		s.SelectTab(ctx, action.Tab)
	case view.ActionSearch:
		s.Search(ctx, action.Query)
	case view.ActionAddToCart:
		s.AddToCart(ctx, action.ProductID, cart.Options{Size: action.Key.Size, Color: action.Key.Color})
	case view.ActionIncrementLine:
		s.IncrementLine(ctx, action.Key)
	case view.ActionDecrementLine:
		s.DecrementLine(ctx, action.Key)
	case view.ActionClearCart:
		s.ClearCart(ctx)
	case view.ActionOpenCart:
		s.OpenCart(ctx)
	case view.ActionCloseCart:
		s.CloseCart(ctx)
	case view.ActionCheckout:
		s.Checkout(ctx)
	case view.ActionDismissNotice:
		s.DismissNotice(ctx, action.NoticeID)
	}
}

// Lines exposes the current ledger contents for inspection.
func (s *Session) Lines() []domain.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Lines()
}

// render must be called with the lock held.
func (s *Session) render() {
	snapshot, bindings := view.Render(view.State{
		Products:  s.store.Products(),
		Lines:     s.ledger.Lines(),
		ActiveTab: s.activeTab,
		Query:     s.query,
		CartOpen:  s.cartOpen,
		Notices:   append([]view.Notice(nil), s.notices...),
	})
	s.binder.Apply(snapshot, bindings)
}

func (s *Session) pushNotice(kind view.NoticeKind, message string) {
	s.notices = append(s.notices, view.Notice{
		ID:        s.noticeID(),
		Kind:      kind,
		Message:   message,
		CreatedAt: s.clock().UTC(),
	})
}

// checkoutNoticeMessage strips the gateway error prefix so the shopper sees
// only the hint.
func checkoutNoticeMessage(err error) string {
	if errors.Is(err, ErrEmptyCart) {
		return "Your cart is empty."
	}
	return strings.TrimPrefix(err.Error(), ErrCheckout.Error()+": ")
}
