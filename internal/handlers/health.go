package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/atelier-nour/storefront/internal/domain"
)

// ReadinessCollector aggregates dependency probes into a health report.
type ReadinessCollector interface {
	Collect(ctx context.Context) (domain.HealthReport, error)
}

// HealthHandlers serves liveness and readiness endpoints.
type HealthHandlers struct {
	startedAt   time.Time
	clock       func() time.Time
	version     string
	environment string
	readiness   ReadinessCollector
}

// HealthOption customises the health handlers.
type HealthOption func(*HealthHandlers)

// WithHealthClock injects a custom clock, primarily for tests.
func WithHealthClock(clock func() time.Time) HealthOption {
	return func(h *HealthHandlers) {
		if clock != nil {
			h.clock = clock
		}
	}
}

// WithHealthBuildInfo attaches build metadata to the liveness payload.
func WithHealthBuildInfo(version, environment string) HealthOption {
	return func(h *HealthHandlers) {
		h.version = version
		h.environment = environment
	}
}

// WithReadinessCollector wires dependency probes into the readiness endpoint.
func WithReadinessCollector(collector ReadinessCollector) HealthOption {
	return func(h *HealthHandlers) {
		h.readiness = collector
	}
}

// NewHealthHandlers constructs the handlers with the given options applied.
func NewHealthHandlers(opts ...HealthOption) *HealthHandlers {
	h := &HealthHandlers{clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	h.startedAt = h.clock()
	return h
}

type healthzPayload struct {
	Status      string `json:"status"`
	Uptime      string `json:"uptime"`
	Version     string `json:"version,omitempty"`
	Environment string `json:"environment,omitempty"`
}

// Healthz handles GET /healthz. It reports process liveness only and never
// touches dependencies.
func (h *HealthHandlers) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthzPayload{
		Status:      string(domain.HealthStatusOK),
		Uptime:      h.clock().Sub(h.startedAt).Round(time.Second).String(),
		Version:     h.version,
		Environment: h.environment,
	})
}

type readyzCheckPayload struct {
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

type readyzPayload struct {
	Status      string                        `json:"status"`
	Checks      map[string]readyzCheckPayload `json:"checks,omitempty"`
	GeneratedAt time.Time                     `json:"generated_at"`
}

// Readyz handles GET /readyz. Anything other than a fully healthy report is
// answered with 503 so load balancers stop routing traffic.
func (h *HealthHandlers) Readyz(w http.ResponseWriter, r *http.Request) {
	if h.readiness == nil {
		writeJSON(w, http.StatusOK, readyzPayload{
			Status:      string(domain.HealthStatusOK),
			GeneratedAt: h.clock().UTC(),
		})
		return
	}

	report, err := h.readiness.Collect(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, readyzPayload{
			Status:      string(domain.HealthStatusError),
			GeneratedAt: h.clock().UTC(),
		})
		return
	}

	payload := readyzPayload{
		Status:      string(report.Status),
		Checks:      make(map[string]readyzCheckPayload, len(report.Checks)),
		GeneratedAt: report.GeneratedAt,
	}
	for name, check := range report.Checks {
		payload.Checks[name] = readyzCheckPayload{
			Status:    string(check.Status),
			Detail:    check.Detail,
			Error:     check.Error,
			LatencyMS: check.Latency.Milliseconds(),
		}
	}

	status := http.StatusOK
	if report.Status != domain.HealthStatusOK {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, payload)
}
