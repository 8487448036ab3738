package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/atelier-nour/storefront/internal/domain"
	"github.com/atelier-nour/storefront/internal/services"
)

// maxCheckoutBodyBytes bounds checkout request bodies.
const maxCheckoutBodyBytes = 64 << 10

// CheckoutService creates hosted checkout sessions from validated cart items.
type CheckoutService interface {
	CreateSession(ctx context.Context, cmd services.CreateSessionCommand) (services.CheckoutSession, error)
}

// CheckoutHandlers exposes the checkout session endpoint.
type CheckoutHandlers struct {
	service CheckoutService
}

// NewCheckoutHandlers validates dependencies and constructs the handlers.
func NewCheckoutHandlers(service CheckoutService) (*CheckoutHandlers, error) {
	if service == nil {
		return nil, errors.New("checkout handlers: service is required")
	}
	return &CheckoutHandlers{service: service}, nil
}

type checkoutRequest struct {
	Items []domain.CheckoutItem `json:"items"`
}

// CreateSession handles POST /api/create-checkout-session. The error body
// shape is {"error": ..., "hint": ...} so storefront clients can surface the
// hint to shoppers; an empty cart is answered with the literal "No items".
func (h *CheckoutHandlers) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := readLimitedBody(w, r, maxCheckoutBodyBytes)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid_request",
			"hint":  "request body could not be read",
		})
		return
	}

	var req checkoutRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "invalid_request",
				"hint":  "request body is not valid JSON",
			})
			return
		}
	}

	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "No items"})
		return
	}

	session, err := h.service.CreateSession(ctx, services.CreateSessionCommand{
		Origin: requestOrigin(r),
		Items:  req.Items,
	})
	if err != nil {
		writeCheckoutError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"url": session.URL})
}

func writeCheckoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrCheckoutInvalidInput):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid_request",
			"hint":  errorDetail(err, services.ErrCheckoutInvalidInput),
		})
	case errors.Is(err, services.ErrCheckoutUnmappedProduct):
		productID := errorDetail(err, services.ErrCheckoutUnmappedProduct)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "server_error",
			"hint":  fmt.Sprintf("No Stripe price configured for product %s", productID),
		})
	case errors.Is(err, services.ErrCheckoutPaymentFailed):
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "server_error",
			"hint":  errorDetail(err, services.ErrCheckoutPaymentFailed),
		})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "server_error",
			"hint":  "Unknown error",
		})
	}
}

// errorDetail strips the sentinel prefix so only the human-readable detail
// reaches the response hint.
func errorDetail(err, sentinel error) string {
	return strings.TrimPrefix(err.Error(), sentinel.Error()+": ")
}

// requestOrigin derives the site origin used to build return URLs. The Origin
// header wins; cross-origin fetches without it fall back to the Referer host.
func requestOrigin(r *http.Request) string {
	if origin := strings.TrimSpace(r.Header.Get("Origin")); origin != "" && origin != "null" {
		return origin
	}
	referer := strings.TrimSpace(r.Header.Get("Referer"))
	if referer == "" {
		return ""
	}
	parsed, err := url.Parse(referer)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return ""
	}
	return parsed.Scheme + "://" + parsed.Host
}

func readLimitedBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		return nil, err
	}
	return body, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
