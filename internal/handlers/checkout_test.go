package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atelier-nour/storefront/internal/services"
)

type stubCheckoutService struct {
	createFn func(ctx context.Context, cmd services.CreateSessionCommand) (services.CheckoutSession, error)
	calls    int
	lastCmd  services.CreateSessionCommand
}

func (s *stubCheckoutService) CreateSession(ctx context.Context, cmd services.CreateSessionCommand) (services.CheckoutSession, error) {
	s.calls++
	s.lastCmd = cmd
	if s.createFn != nil {
		return s.createFn(ctx, cmd)
	}
	return services.CheckoutSession{}, nil
}

func newCheckoutRequest(t *testing.T, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/create-checkout-session", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://shop.example")
	return req
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var payload map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body %q: %v", rr.Body.String(), err)
	}
	return payload
}

func TestNewCheckoutHandlersRequiresService(t *testing.T) {
	if _, err := NewCheckoutHandlers(nil); err == nil {
		t.Fatal("expected error for nil service")
	}
}

func TestCreateSessionSuccess(t *testing.T) {
	service := &stubCheckoutService{
		createFn: func(_ context.Context, _ services.CreateSessionCommand) (services.CheckoutSession, error) {
			return services.CheckoutSession{ID: "cs_1", URL: "https://checkout.example/cs_1"}, nil
		},
	}
	handlers, err := NewCheckoutHandlers(service)
	if err != nil {
		t.Fatalf("NewCheckoutHandlers: %v", err)
	}

	rr := httptest.NewRecorder()
	handlers.CreateSession(rr, newCheckoutRequest(t, `{"items":[{"id":"a1","qty":2},{"id":"m1","qty":1,"size":"L"}]}`))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if got := decodeBody(t, rr)["url"]; got != "https://checkout.example/cs_1" {
		t.Fatalf("url = %q", got)
	}
	if service.calls != 1 {
		t.Fatalf("service calls = %d", service.calls)
	}
	if service.lastCmd.Origin != "https://shop.example" {
		t.Fatalf("origin = %q", service.lastCmd.Origin)
	}
	if len(service.lastCmd.Items) != 2 || service.lastCmd.Items[0].ID != "a1" || service.lastCmd.Items[0].Qty != 2 {
		t.Fatalf("items = %+v", service.lastCmd.Items)
	}
	if service.lastCmd.Items[1].Size == nil || *service.lastCmd.Items[1].Size != "L" {
		t.Fatalf("size = %+v", service.lastCmd.Items[1].Size)
	}
}

func TestCreateSessionEmptyItems(t *testing.T) {
	service := &stubCheckoutService{}
	handlers, _ := NewCheckoutHandlers(service)

	for _, body := range []string{`{"items":[]}`, `{}`, ``} {
		rr := httptest.NewRecorder()
		handlers.CreateSession(rr, newCheckoutRequest(t, body))

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("body %q: status = %d", body, rr.Code)
		}
		if got := decodeBody(t, rr)["error"]; got != "No items" {
			t.Fatalf("body %q: error = %q", body, got)
		}
	}
	if service.calls != 0 {
		t.Fatalf("service called %d times for empty carts", service.calls)
	}
}

func TestCreateSessionMalformedJSON(t *testing.T) {
	service := &stubCheckoutService{}
	handlers, _ := NewCheckoutHandlers(service)

	rr := httptest.NewRecorder()
	handlers.CreateSession(rr, newCheckoutRequest(t, `{"items":`))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := decodeBody(t, rr)["error"]; got != "invalid_request" {
		t.Fatalf("error = %q", got)
	}
	if service.calls != 0 {
		t.Fatal("service should not be called for malformed bodies")
	}
}

func TestCreateSessionOriginFromReferer(t *testing.T) {
	service := &stubCheckoutService{}
	handlers, _ := NewCheckoutHandlers(service)

	req := httptest.NewRequest(http.MethodPost, "/api/create-checkout-session", strings.NewReader(`{"items":[{"id":"a1","qty":1}]}`))
	req.Header.Set("Referer", "https://shop.example/collections/abaya?page=2")

	rr := httptest.NewRecorder()
	handlers.CreateSession(rr, req)

	if service.lastCmd.Origin != "https://shop.example" {
		t.Fatalf("origin = %q", service.lastCmd.Origin)
	}
}

func TestCreateSessionErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
		wantHint   string
	}{
		{
			name:       "invalid input",
			err:        fmt.Errorf("%w: origin could not be determined", services.ErrCheckoutInvalidInput),
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid_request",
			wantHint:   "origin could not be determined",
		},
		{
			name:       "unmapped product",
			err:        fmt.Errorf("%w: a1", services.ErrCheckoutUnmappedProduct),
			wantStatus: http.StatusInternalServerError,
			wantError:  "server_error",
			wantHint:   "No Stripe price configured for product a1",
		},
		{
			name:       "payment failure",
			err:        fmt.Errorf("%w: stripe unavailable", services.ErrCheckoutPaymentFailed),
			wantStatus: http.StatusInternalServerError,
			wantError:  "server_error",
			wantHint:   "stripe unavailable",
		},
		{
			name:       "unexpected error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "server_error",
			wantHint:   "Unknown error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			handlers, _ := NewCheckoutHandlers(&stubCheckoutService{
				createFn: func(context.Context, services.CreateSessionCommand) (services.CheckoutSession, error) {
					return services.CheckoutSession{}, tc.err
				},
			})

			rr := httptest.NewRecorder()
			handlers.CreateSession(rr, newCheckoutRequest(t, `{"items":[{"id":"a1","qty":1}]}`))

			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tc.wantStatus)
			}
			payload := decodeBody(t, rr)
			if payload["error"] != tc.wantError {
				t.Fatalf("error = %q, want %q", payload["error"], tc.wantError)
			}
			if payload["hint"] != tc.wantHint {
				t.Fatalf("hint = %q, want %q", payload["hint"], tc.wantHint)
			}
		})
	}
}

func TestRequestOrigin(t *testing.T) {
	tests := []struct {
		name    string
		origin  string
		referer string
		want    string
	}{
		{name: "origin header", origin: "https://shop.example", want: "https://shop.example"},
		{name: "null origin falls back", origin: "null", referer: "https://shop.example/", want: "https://shop.example"},
		{name: "referer only", referer: "http://localhost:3000/cart", want: "http://localhost:3000"},
		{name: "relative referer", referer: "/cart", want: ""},
		{name: "no headers", want: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.referer != "" {
				req.Header.Set("Referer", tc.referer)
			}
			if got := requestOrigin(req); got != tc.want {
				t.Fatalf("requestOrigin = %q, want %q", got, tc.want)
			}
		})
	}
}
