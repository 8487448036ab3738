package payments

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v78"
)

type stubSessionAPI struct {
	newFunc func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

func (s stubSessionAPI) New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return s.newFunc(params)
}

func testClock() time.Time {
	return time.Date(2026, time.March, 14, 9, 30, 0, 0, time.UTC)
}

func TestNewStripeProviderRequiresAPIKey(t *testing.T) {
	if _, err := NewStripeProvider(StripeProviderConfig{}); err == nil {
		t.Fatalf("expected error for missing api key")
	}
}

func TestStripeProviderCreateCheckoutSession(t *testing.T) {
	var captured *stripe.CheckoutSessionParams
	provider, err := NewStripeProvider(StripeProviderConfig{
		Clock: testClock,
		Clients: &stripeClients{sessions: stubSessionAPI{newFunc: func(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			captured = params
			return &stripe.CheckoutSession{
				ID:        "cs_123",
				URL:       "https://checkout.stripe.com/c/pay/cs_123",
				ExpiresAt: testClock().Add(time.Hour).Unix(),
			}, nil
		}}},
	})
	if err != nil {
		t.Fatalf("NewStripeProvider: %v", err)
	}

	session, err := provider.CreateCheckoutSession(context.Background(), CheckoutSessionRequest{
		Items: []LineItem{
			{PriceID: "price_abaya", Quantity: 2},
			{PriceID: "price_cushion", Quantity: 0},
		},
		SuccessURL:            "https://shop.example/?success=true",
		CancelURL:             "https://shop.example/?canceled=true",
		AllowPromotionCodes:   true,
		ShippingCountries:     []string{"us", "CA"},
		RequireBillingAddress: true,
	})
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}

	if session.ID != "cs_123" || session.Provider != "stripe" {
		t.Fatalf("unexpected session: %+v", session)
	}
	if session.RedirectURL != "https://checkout.stripe.com/c/pay/cs_123" {
		t.Fatalf("redirect = %q", session.RedirectURL)
	}
	if !session.ExpiresAt.Equal(testClock().Add(time.Hour)) {
		t.Fatalf("expiresAt = %v", session.ExpiresAt)
	}

	if captured == nil {
		t.Fatalf("params not captured")
	}
	if got := stripe.StringValue(captured.Mode); got != string(stripe.CheckoutSessionModePayment) {
		t.Fatalf("mode = %q", got)
	}
	if got := stripe.StringValue(captured.SuccessURL); got != "https://shop.example/?success=true" {
		t.Fatalf("success url = %q", got)
	}
	if got := stripe.StringValue(captured.CancelURL); got != "https://shop.example/?canceled=true" {
		t.Fatalf("cancel url = %q", got)
	}
	if !stripe.BoolValue(captured.AllowPromotionCodes) {
		t.Fatalf("promotion codes not allowed")
	}
	if got := stripe.StringValue(captured.BillingAddressCollection); got != string(stripe.CheckoutSessionBillingAddressCollectionRequired) {
		t.Fatalf("billing collection = %q", got)
	}
	if captured.ShippingAddressCollection == nil {
		t.Fatalf("shipping collection missing")
	}
	countries := make([]string, 0, 2)
	for _, country := range captured.ShippingAddressCollection.AllowedCountries {
		countries = append(countries, stripe.StringValue(country))
	}
	if strings.Join(countries, ",") != "US,CA" {
		t.Fatalf("allowed countries = %v", countries)
	}

	if len(captured.LineItems) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(captured.LineItems))
	}
	if got := stripe.StringValue(captured.LineItems[0].Price); got != "price_abaya" {
		t.Fatalf("first price = %q", got)
	}
	if got := stripe.Int64Value(captured.LineItems[0].Quantity); got != 2 {
		t.Fatalf("first quantity = %d", got)
	}
	if got := stripe.Int64Value(captured.LineItems[1].Quantity); got != 1 {
		t.Fatalf("zero quantity not clamped, got %d", got)
	}
}

func TestStripeProviderCreateCheckoutSessionRequiresItems(t *testing.T) {
	provider, err := NewStripeProvider(StripeProviderConfig{
		Clients: &stripeClients{sessions: stubSessionAPI{newFunc: func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			t.Fatalf("unexpected API call")
			return nil, nil
		}}},
	})
	if err != nil {
		t.Fatalf("NewStripeProvider: %v", err)
	}

	if _, err := provider.CreateCheckoutSession(context.Background(), CheckoutSessionRequest{}); err == nil {
		t.Fatalf("expected error for empty items")
	}
}

func TestStripeProviderCreateCheckoutSessionWrapsAPIError(t *testing.T) {
	apiErr := errors.New("upstream unavailable")
	provider, err := NewStripeProvider(StripeProviderConfig{
		Clients: &stripeClients{sessions: stubSessionAPI{newFunc: func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
			return nil, apiErr
		}}},
	})
	if err != nil {
		t.Fatalf("NewStripeProvider: %v", err)
	}

	_, err = provider.CreateCheckoutSession(context.Background(), CheckoutSessionRequest{
		Items: []LineItem{{PriceID: "price_abaya", Quantity: 1}},
	})
	if !errors.Is(err, apiErr) {
		t.Fatalf("expected wrapped api error, got %v", err)
	}
}
