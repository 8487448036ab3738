package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atelier-nour/storefront/internal/domain"
	"github.com/atelier-nour/storefront/internal/payments"
)

var (
	// ErrCheckoutInvalidInput indicates the request cannot produce a session:
	// no items, a blank product ID, or no derivable origin.
	ErrCheckoutInvalidInput = errors.New("checkout service: invalid input")
	// ErrCheckoutUnmappedProduct indicates a cart item has no price book
	// entry. Surfaced with the product ID so operators can fix the mapping.
	ErrCheckoutUnmappedProduct = errors.New("checkout service: unmapped product")
	// ErrCheckoutPaymentFailed wraps PSP failures while creating the session.
	ErrCheckoutPaymentFailed = errors.New("checkout service: payment provider failure")
)

const (
	successPath = "/?success=true"
	cancelPath  = "/?canceled=true"
)

// defaultShippingCountries is the shipping scope when config supplies none.
var defaultShippingCountries = []string{"US", "CA"}

// PriceResolver maps product IDs to PSP price IDs.
type PriceResolver interface {
	PriceID(productID string) (string, bool)
}

// CheckoutLogger defines the logging contract for checkout operations.
type CheckoutLogger func(ctx context.Context, event string, fields map[string]any)

// CheckoutServiceDeps bundles collaborators required to construct the
// checkout service.
type CheckoutServiceDeps struct {
	Prices            PriceResolver
	Payments          payments.Provider
	ShippingCountries []string
	Logger            CheckoutLogger
	Clock             func() time.Time
}

// CheckoutService turns validated cart items into hosted checkout sessions.
type CheckoutService struct {
	prices            PriceResolver
	payments          payments.Provider
	shippingCountries []string
	logger            CheckoutLogger
	clock             func() time.Time
}

// NewCheckoutService validates dependencies and constructs the service.
func NewCheckoutService(deps CheckoutServiceDeps) (*CheckoutService, error) {
	if deps.Prices == nil {
		return nil, errors.New("checkout service: price resolver is required")
	}
	if deps.Payments == nil {
		return nil, errors.New("checkout service: payments provider is required")
	}

	countries := make([]string, 0, len(deps.ShippingCountries))
	for _, country := range deps.ShippingCountries {
		country = strings.ToUpper(strings.TrimSpace(country))
		if country != "" {
			countries = append(countries, country)
		}
	}
	if len(countries) == 0 {
		countries = append(countries, defaultShippingCountries...)
	}

	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &CheckoutService{
		prices:            deps.Prices,
		payments:          deps.Payments,
		shippingCountries: countries,
		logger:            logger,
		clock: func() time.Time {
			return clock().UTC()
		},
	}, nil
}

// CreateSessionCommand carries one checkout request.
type CreateSessionCommand struct {
	Origin string
	Items  []domain.CheckoutItem
}

// CheckoutSession is the redirect target returned to the storefront.
type CheckoutSession struct {
	ID        string
	URL       string
	ExpiresAt time.Time
}

// CreateSession validates the items, resolves price IDs, and creates a hosted
// checkout session. Return URLs are the request origin with the success and
// cancel markers appended; quantities below one are clamped to one.
func (s *CheckoutService) CreateSession(ctx context.Context, cmd CreateSessionCommand) (CheckoutSession, error) {
	if len(cmd.Items) == 0 {
		return CheckoutSession{}, fmt.Errorf("%w: no items", ErrCheckoutInvalidInput)
	}

	origin := strings.TrimRight(strings.TrimSpace(cmd.Origin), "/")
	if origin == "" {
		return CheckoutSession{}, fmt.Errorf("%w: origin could not be determined", ErrCheckoutInvalidInput)
	}

	lineItems := make([]payments.LineItem, 0, len(cmd.Items))
	for _, item := range cmd.Items {
		productID := strings.TrimSpace(item.ID)
		if productID == "" {
			return CheckoutSession{}, fmt.Errorf("%w: item without product id", ErrCheckoutInvalidInput)
		}
		priceID, ok := s.prices.PriceID(productID)
		if !ok {
			s.logger(ctx, "checkout.session.unmapped_product", map[string]any{"product_id": productID})
			return CheckoutSession{}, fmt.Errorf("%w: %s", ErrCheckoutUnmappedProduct, productID)
		}
		quantity := int64(item.Qty)
		if quantity < 1 {
			quantity = 1
		}
		lineItems = append(lineItems, payments.LineItem{PriceID: priceID, Quantity: quantity})
	}

	session, err := s.payments.CreateCheckoutSession(ctx, payments.CheckoutSessionRequest{
		Items:                 lineItems,
		SuccessURL:            origin + successPath,
		CancelURL:             origin + cancelPath,
		AllowPromotionCodes:   true,
		ShippingCountries:     s.shippingCountries,
		RequireBillingAddress: true,
	})
	if err != nil {
		s.logger(ctx, "checkout.session.provider_error", map[string]any{"error": err.Error()})
		return CheckoutSession{}, fmt.Errorf("%w: %v", ErrCheckoutPaymentFailed, err)
	}

	s.logger(ctx, "checkout.session.created", map[string]any{
		"session_id": session.ID,
		"items":      len(lineItems),
	})

	return CheckoutSession{
		ID:        session.ID,
		URL:       session.RedirectURL,
		ExpiresAt: session.ExpiresAt,
	}, nil
}
