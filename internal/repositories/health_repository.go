package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/atelier-nour/storefront/internal/domain"
)

const defaultCheckTimeout = 1500 * time.Millisecond

// DependencyCheck describes a dependency probe executed during readiness
// checks, such as the price book or the catalog feed file.
type DependencyCheck struct {
	Name    string
	Timeout time.Duration
	Check   func(context.Context) error
}

// HealthRepository evaluates dependency probes and aggregates the outcome.
type HealthRepository struct {
	checks         []DependencyCheck
	defaultTimeout time.Duration
	clock          func() time.Time
}

// HealthOption customises the health repository.
type HealthOption func(*HealthRepository)

// WithCheckTimeout overrides the default per-check timeout.
func WithCheckTimeout(timeout time.Duration) HealthOption {
	return func(repo *HealthRepository) {
		if timeout > 0 {
			repo.defaultTimeout = timeout
		}
	}
}

// WithHealthClock injects a custom clock, primarily for tests.
func WithHealthClock(clock func() time.Time) HealthOption {
	return func(repo *HealthRepository) {
		if clock != nil {
			repo.clock = clock
		}
	}
}

// NewHealthRepository validates the check set and constructs the repository.
func NewHealthRepository(checks []DependencyCheck, opts ...HealthOption) (*HealthRepository, error) {
	if len(checks) == 0 {
		return nil, errors.New("health repository: at least one dependency check is required")
	}
	for _, check := range checks {
		if strings.TrimSpace(check.Name) == "" {
			return nil, errors.New("health repository: dependency check missing name")
		}
		if check.Check == nil {
			return nil, fmt.Errorf("health repository: dependency %s missing check function", check.Name)
		}
	}

	repo := &HealthRepository{
		checks:         make([]DependencyCheck, len(checks)),
		defaultTimeout: defaultCheckTimeout,
		clock:          time.Now,
	}
	copy(repo.checks, checks)

	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo, nil
}

// Collect runs every probe concurrently, each under its own timeout, and
// folds the results into a single report. A failed probe degrades the report;
// a timed-out or cancelled probe marks it errored.
func (r *HealthRepository) Collect(ctx context.Context) (domain.HealthReport, error) {
	if ctx == nil {
		return domain.HealthReport{}, errors.New("health repository: context is required")
	}

	results := make(map[string]domain.HealthCheck, len(r.checks))
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)

	wg.Add(len(r.checks))
	for _, check := range r.checks {
		check := check
		go func() {
			defer wg.Done()

			timeout := check.Timeout
			if timeout <= 0 {
				timeout = r.defaultTimeout
			}
			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			start := r.clock()
			err := check.Check(checkCtx)
			end := r.clock()

			result := domain.HealthCheck{
				Status:    domain.HealthStatusOK,
				Detail:    "ok",
				Latency:   end.Sub(start),
				CheckedAt: end,
			}
			switch {
			case err == nil:
			case errors.Is(err, context.DeadlineExceeded):
				result.Status = domain.HealthStatusError
				result.Detail = "timeout"
				result.Error = err.Error()
			case errors.Is(err, context.Canceled):
				result.Status = domain.HealthStatusError
				result.Detail = "cancelled"
				result.Error = err.Error()
			default:
				result.Status = domain.HealthStatusDegraded
				result.Detail = err.Error()
				result.Error = err.Error()
			}

			mu.Lock()
			results[check.Name] = result
			mu.Unlock()
		}()
	}
	wg.Wait()

	status := domain.HealthStatusOK
	for _, result := range results {
		if result.Status == domain.HealthStatusError {
			status = domain.HealthStatusError
			break
		}
		if result.Status != domain.HealthStatusOK {
			status = domain.HealthStatusDegraded
		}
	}

	return domain.HealthReport{
		Status:      status,
		Checks:      results,
		GeneratedAt: r.clock(),
	}, nil
}
