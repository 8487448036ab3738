package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/atelier-nour/storefront/internal/domain"
)

func TestNewHealthRepositoryValidatesChecks(t *testing.T) {
	if _, err := NewHealthRepository(nil); err == nil {
		t.Fatalf("expected error for empty check set")
	}
	if _, err := NewHealthRepository([]DependencyCheck{{Name: " "}}); err == nil {
		t.Fatalf("expected error for blank name")
	}
	if _, err := NewHealthRepository([]DependencyCheck{{Name: "feed"}}); err == nil {
		t.Fatalf("expected error for missing check func")
	}
}

func TestHealthRepositoryCollect(t *testing.T) {
	repo, err := NewHealthRepository([]DependencyCheck{
		{Name: "price_book", Check: func(context.Context) error { return nil }},
		{Name: "feed", Check: func(context.Context) error { return errors.New("file missing") }},
	})
	if err != nil {
		t.Fatalf("NewHealthRepository: %v", err)
	}

	report, err := repo.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	if report.Status != domain.HealthStatusDegraded {
		t.Fatalf("status = %q, want degraded", report.Status)
	}
	if len(report.Checks) != 2 {
		t.Fatalf("expected 2 checks, got %d", len(report.Checks))
	}
	if report.Checks["price_book"].Status != domain.HealthStatusOK {
		t.Fatalf("price_book check: %+v", report.Checks["price_book"])
	}
	feed := report.Checks["feed"]
	if feed.Status != domain.HealthStatusDegraded || feed.Detail != "file missing" {
		t.Fatalf("feed check: %+v", feed)
	}
}

func TestHealthRepositoryCollectTimeout(t *testing.T) {
	repo, err := NewHealthRepository([]DependencyCheck{
		{Name: "slow", Timeout: 10 * time.Millisecond, Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
	})
	if err != nil {
		t.Fatalf("NewHealthRepository: %v", err)
	}

	report, err := repo.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if report.Status != domain.HealthStatusError {
		t.Fatalf("status = %q, want error", report.Status)
	}
	if report.Checks["slow"].Detail != "timeout" {
		t.Fatalf("slow check: %+v", report.Checks["slow"])
	}
}
