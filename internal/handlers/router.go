package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type routerConfig struct {
	middlewares []func(http.Handler) http.Handler
	checkout    *CheckoutHandlers
	products    *ProductHandlers
	health      *HealthHandlers
}

// RouterOption customises router construction.
type RouterOption func(*routerConfig)

// WithMiddlewares appends middlewares applied to every route, after the
// built-in request ID and real IP middlewares.
func WithMiddlewares(mws ...func(http.Handler) http.Handler) RouterOption {
	return func(cfg *routerConfig) {
		cfg.middlewares = append(cfg.middlewares, mws...)
	}
}

// WithCheckoutHandlers mounts the checkout session endpoint.
func WithCheckoutHandlers(h *CheckoutHandlers) RouterOption {
	return func(cfg *routerConfig) {
		cfg.checkout = h
	}
}

// WithProductHandlers mounts the catalog feed endpoint.
func WithProductHandlers(h *ProductHandlers) RouterOption {
	return func(cfg *routerConfig) {
		cfg.products = h
	}
}

// WithHealthHandlers mounts the liveness and readiness endpoints.
func WithHealthHandlers(h *HealthHandlers) RouterOption {
	return func(cfg *routerConfig) {
		cfg.health = h
	}
}

// NewRouter assembles the HTTP surface. Unknown paths and wrong methods get
// JSON envelopes; a GET against the checkout endpoint is answered with 405.
func NewRouter(opts ...RouterOption) http.Handler {
	cfg := routerConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	for _, mw := range cfg.middlewares {
		if mw != nil {
			r.Use(mw)
		}
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method_not_allowed"})
	})

	if cfg.health != nil {
		r.Get("/healthz", cfg.health.Healthz)
		r.Get("/readyz", cfg.health.Readyz)
	}
	if cfg.products != nil {
		r.Get("/products.json", cfg.products.Get)
	}
	if cfg.checkout != nil {
		r.Route("/api", func(api chi.Router) {
			api.Post("/create-checkout-session", cfg.checkout.CreateSession)
		})
	}

	return r
}
