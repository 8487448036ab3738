package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atelier-nour/storefront/internal/services"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	checkout, err := NewCheckoutHandlers(&stubCheckoutService{
		createFn: func(context.Context, services.CreateSessionCommand) (services.CheckoutSession, error) {
			return services.CheckoutSession{URL: "https://checkout.example/cs_1"}, nil
		},
	})
	if err != nil {
		t.Fatalf("NewCheckoutHandlers: %v", err)
	}
	products, err := NewProductHandlers(&stubFeed{
		readFn: func(context.Context) ([]byte, error) { return []byte(`[]`), nil },
	})
	if err != nil {
		t.Fatalf("NewProductHandlers: %v", err)
	}

	return NewRouter(
		WithCheckoutHandlers(checkout),
		WithProductHandlers(products),
		WithHealthHandlers(NewHealthHandlers()),
	)
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{name: "healthz", method: http.MethodGet, path: "/healthz", wantStatus: http.StatusOK},
		{name: "readyz", method: http.MethodGet, path: "/readyz", wantStatus: http.StatusOK},
		{name: "products", method: http.MethodGet, path: "/products.json", wantStatus: http.StatusOK},
		{name: "checkout", method: http.MethodPost, path: "/api/create-checkout-session", body: `{"items":[{"id":"a1","qty":1}]}`, wantStatus: http.StatusOK},
		{name: "unknown path", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var req *http.Request
			if tc.body != "" {
				req = httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
				req.Header.Set("Origin", "https://shop.example")
			} else {
				req = httptest.NewRequest(tc.method, tc.path, nil)
			}

			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)

			if rr.Code != tc.wantStatus {
				t.Fatalf("status = %d, want %d, body = %s", rr.Code, tc.wantStatus, rr.Body.String())
			}
		})
	}
}

func TestRouterRejectsWrongMethod(t *testing.T) {
	router := newTestRouter(t)

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(method, "/api/create-checkout-session", nil))

		if rr.Code != http.StatusMethodNotAllowed {
			t.Fatalf("%s: status = %d", method, rr.Code)
		}
		var payload map[string]string
		if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if payload["error"] != "method_not_allowed" {
			t.Fatalf("error = %q", payload["error"])
		}
	}
}
