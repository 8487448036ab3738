package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/atelier-nour/storefront/internal/repositories"
)

type stubFeed struct {
	readFn func(ctx context.Context) ([]byte, error)
}

func (s *stubFeed) Read(ctx context.Context) ([]byte, error) {
	return s.readFn(ctx)
}

func TestNewProductHandlersRequiresFeed(t *testing.T) {
	if _, err := NewProductHandlers(nil); err == nil {
		t.Fatal("expected error for nil feed")
	}
}

func TestProductsGetServesFeed(t *testing.T) {
	feedBody := []byte(`[{"id":"a1","name_en":"Classic Abaya","price":79.99}]`)
	handlers, err := NewProductHandlers(&stubFeed{
		readFn: func(context.Context) ([]byte, error) { return feedBody, nil },
	})
	if err != nil {
		t.Fatalf("NewProductHandlers: %v", err)
	}

	rr := httptest.NewRecorder()
	handlers.Get(rr, httptest.NewRequest(http.MethodGet, "/products.json", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := rr.Body.String(); got != string(feedBody) {
		t.Fatalf("body = %q", got)
	}
	if got := rr.Header().Get("Cache-Control"); got != "no-store, no-cache, must-revalidate" {
		t.Fatalf("cache-control = %q", got)
	}
}

func TestProductsGetUnavailableFeed(t *testing.T) {
	handlers, _ := NewProductHandlers(&stubFeed{
		readFn: func(context.Context) ([]byte, error) { return nil, repositories.ErrFeedUnavailable },
	})

	rr := httptest.NewRecorder()
	handlers.Get(rr, httptest.NewRequest(http.MethodGet, "/products.json", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if payload["error"] != "feed_unavailable" {
		t.Fatalf("error = %v", payload["error"])
	}
}
