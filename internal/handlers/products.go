package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/atelier-nour/storefront/internal/platform/httpx"
)

// ProductFeed serves the raw catalog feed payload.
type ProductFeed interface {
	Read(ctx context.Context) ([]byte, error)
}

// ProductHandlers exposes the catalog feed consumed by storefront clients.
type ProductHandlers struct {
	feed ProductFeed
}

// NewProductHandlers validates dependencies and constructs the handlers.
func NewProductHandlers(feed ProductFeed) (*ProductHandlers, error) {
	if feed == nil {
		return nil, errors.New("product handlers: feed is required")
	}
	return &ProductHandlers{feed: feed}, nil
}

// Get handles GET /products.json. The payload is never cached so catalog
// edits reach clients on the next page load.
func (h *ProductHandlers) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := h.feed.Read(ctx)
	if err != nil {
		httpx.WriteError(ctx, w, httpx.NewError("feed_unavailable", "product feed is unavailable", http.StatusServiceUnavailable))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
