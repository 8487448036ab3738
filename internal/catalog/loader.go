package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/atelier-nour/storefront/internal/domain"
)

// ErrLoad marks a catalog load failure. The loader still returns an empty
// store so the storefront stays usable without products.
var ErrLoad = errors.New("catalog loader: load failed")

const maxFeedBytes = 4 << 20

// LoaderDeps wires the catalog loader dependencies.
type LoaderDeps struct {
	FeedURL    string
	HTTPClient *http.Client
	Logger     func(ctx context.Context, event string, fields map[string]any)
}

// Loader fetches and decodes the product feed once per session.
type Loader struct {
	feedURL   string
	client    *http.Client
	logger    func(ctx context.Context, event string, fields map[string]any)
	sanitizer *bluemonday.Policy
}

// NewLoader validates dependencies and constructs a Loader.
func NewLoader(deps LoaderDeps) (*Loader, error) {
	url := strings.TrimSpace(deps.FeedURL)
	if url == "" {
		return nil, errors.New("catalog loader: feed url is required")
	}
	client := deps.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &Loader{
		feedURL:   url,
		client:    client,
		logger:    logger,
		sanitizer: bluemonday.StrictPolicy(),
	}, nil
}

type feedProduct struct {
	ID          string   `json:"id"`
	Name        string   `json:"name_en"`
	Price       float64  `json:"price"`
	CompareAt   *float64 `json:"compare_at"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
	Stock       *int     `json:"stock"`
	Sizes       []string `json:"sizes"`
	Colors      []string `json:"colors"`
	Description string   `json:"description"`
}

// Load fetches the feed and builds a catalog snapshot. Transport failures and
// malformed payloads degrade to an empty store alongside a wrapped ErrLoad;
// callers surface the error and keep going. No retries are attempted.
func (l *Loader) Load(ctx context.Context) (*Store, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.feedURL, nil)
	if err != nil {
		return EmptyStore(), fmt.Errorf("%w: build request: %v", ErrLoad, err)
	}
	req.Header.Set("Cache-Control", "no-store")

	resp, err := l.client.Do(req)
	if err != nil {
		l.logger(ctx, "catalog.load.transport_error", map[string]any{"error": err.Error()})
		return EmptyStore(), fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		l.logger(ctx, "catalog.load.bad_status", map[string]any{"status": resp.StatusCode})
		return EmptyStore(), fmt.Errorf("%w: unexpected status %d", ErrLoad, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return EmptyStore(), fmt.Errorf("%w: read body: %v", ErrLoad, err)
	}

	var records []feedProduct
	if err := json.Unmarshal(body, &records); err != nil {
		l.logger(ctx, "catalog.load.malformed_feed", map[string]any{"error": err.Error()})
		return EmptyStore(), fmt.Errorf("%w: decode feed: %v", ErrLoad, err)
	}

	products := make([]domain.Product, 0, len(records))
	for _, record := range records {
		product, ok := l.convert(record)
		if !ok {
			l.logger(ctx, "catalog.load.record_skipped", map[string]any{"id": record.ID})
			continue
		}
		products = append(products, product)
	}

	store := NewStore(products)
	l.logger(ctx, "catalog.load.completed", map[string]any{"count": store.Len()})
	return store, nil
}

func (l *Loader) convert(record feedProduct) (domain.Product, bool) {
	id := strings.TrimSpace(record.ID)
	if id == "" || record.Price < 0 {
		return domain.Product{}, false
	}
	product := domain.Product{
		ID:          id,
		Name:        l.sanitizeText(record.Name),
		PriceCents:  toCents(record.Price),
		Category:    domain.Tab(strings.ToLower(strings.TrimSpace(record.Category))),
		Images:      record.Images,
		Stock:       record.Stock,
		Sizes:       record.Sizes,
		Colors:      record.Colors,
		Description: l.sanitizeText(record.Description),
	}
	if record.CompareAt != nil && *record.CompareAt >= 0 {
		cents := toCents(*record.CompareAt)
		product.CompareAtCents = &cents
	}
	return product, true
}

// sanitizeText strips markup from feed-supplied display text and restores
// entities so search operates on plain text.
func (l *Loader) sanitizeText(value string) string {
	return strings.TrimSpace(html.UnescapeString(l.sanitizer.Sanitize(value)))
}

func toCents(price float64) int64 {
	return int64(math.Round(price * 100))
}
