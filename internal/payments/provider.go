package payments

import (
	"context"
	"time"
)

// LineItem references a pre-registered PSP price by ID.
type LineItem struct {
	PriceID  string
	Quantity int64
}

// CheckoutSessionRequest captures the payload required to create a hosted
// checkout session.
type CheckoutSessionRequest struct {
	Items                 []LineItem
	SuccessURL            string
	CancelURL             string
	AllowPromotionCodes   bool
	ShippingCountries     []string
	RequireBillingAddress bool
	IdempotencyKey        string
	Metadata              map[string]string
}

// CheckoutSession represents the PSP session returned to the client. The
// shopper is redirected to RedirectURL to complete payment.
type CheckoutSession struct {
	ID          string
	Provider    string
	RedirectURL string
	ExpiresAt   time.Time
}

// Provider defines the contract for PSP adapters to implement.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (CheckoutSession, error)
}
