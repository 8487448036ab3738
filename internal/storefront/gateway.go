package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/atelier-nour/storefront/internal/domain"
)

var (
	// ErrEmptyCart indicates a checkout was attempted with no lines; the
	// gateway refuses locally and sends nothing over the wire.
	ErrEmptyCart = errors.New("checkout gateway: cart is empty")
	// ErrCheckout marks any checkout submission failure. The shopper-facing
	// hint travels in the wrapped message.
	ErrCheckout = errors.New("checkout gateway: checkout failed")
)

const maxCheckoutResponseBytes = 1 << 20

// networkIssueHint is the fixed shopper-facing message for transport
// failures, regardless of the underlying error.
const networkIssueHint = "network issue. Please try again."

// GatewayDeps wires the checkout gateway dependencies.
type GatewayDeps struct {
	Endpoint   string
	HTTPClient *http.Client
	Logger     func(ctx context.Context, event string, fields map[string]any)
}

// Gateway submits cart contents to the checkout session endpoint and resolves
// the redirect URL. It performs no retries and applies no timeout of its own;
// the configured http.Client policy governs.
type Gateway struct {
	endpoint string
	client   *http.Client
	logger   func(ctx context.Context, event string, fields map[string]any)
}

// NewGateway validates dependencies and constructs a Gateway.
func NewGateway(deps GatewayDeps) (*Gateway, error) {
	endpoint := strings.TrimSpace(deps.Endpoint)
	if endpoint == "" {
		return nil, errors.New("checkout gateway: endpoint is required")
	}
	client := deps.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &Gateway{endpoint: endpoint, client: client, logger: logger}, nil
}

type checkoutRequest struct {
	Items []domain.CheckoutItem `json:"items"`
}

type checkoutResponse struct {
	URL   string `json:"url"`
	Error string `json:"error"`
	Hint  string `json:"hint"`
}

// Submit posts the items and returns the redirect URL on success. An empty
// item list fails with ErrEmptyCart before any request is made. Remote and
// transport failures wrap ErrCheckout; they differ only in message.
func (g *Gateway) Submit(ctx context.Context, items []domain.CheckoutItem) (string, error) {
	if len(items) == 0 {
		return "", ErrEmptyCart
	}

	payload, err := json.Marshal(checkoutRequest{Items: items})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrCheckout, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrCheckout, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		g.logger(ctx, "checkout.submit.network_error", map[string]any{"error": err.Error()})
		return "", fmt.Errorf("%w: %s", ErrCheckout, networkIssueHint)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxCheckoutResponseBytes))
	if err != nil {
		g.logger(ctx, "checkout.submit.network_error", map[string]any{"error": err.Error()})
		return "", fmt.Errorf("%w: %s", ErrCheckout, networkIssueHint)
	}

	var parsed checkoutResponse
	parseErr := json.Unmarshal(raw, &parsed)

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	if success && parseErr == nil && parsed.URL != "" {
		g.logger(ctx, "checkout.submit.redirect", map[string]any{"status": resp.StatusCode})
		return parsed.URL, nil
	}

	hint := checkoutHint(parsed, parseErr, raw)
	g.logger(ctx, "checkout.submit.rejected", map[string]any{
		"status": resp.StatusCode,
		"hint":   hint,
	})
	return "", fmt.Errorf("%w: %s", ErrCheckout, hint)
}

// checkoutHint picks the shopper-facing message: structured hint first, then
// the error field, then the raw body, then a fixed fallback.
func checkoutHint(parsed checkoutResponse, parseErr error, raw []byte) string {
	if parseErr == nil {
		if parsed.Hint != "" {
			return parsed.Hint
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	if body := strings.TrimSpace(string(raw)); body != "" {
		return body
	}
	return "Unknown error"
}
