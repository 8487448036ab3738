package repositories

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadPriceBook(t *testing.T) {
	path := writeTempFile(t, "stripe-prices.json", `{"a1": "price_abaya", "m1": "price_cushion"}`)

	book, err := LoadPriceBook(path)
	if err != nil {
		t.Fatalf("LoadPriceBook: %v", err)
	}
	if book.Len() != 2 {
		t.Fatalf("Len = %d, want 2", book.Len())
	}

	priceID, ok := book.PriceID("a1")
	if !ok || priceID != "price_abaya" {
		t.Fatalf("PriceID(a1) = %q,%v", priceID, ok)
	}
	if _, ok := book.PriceID("ghost"); ok {
		t.Fatalf("unmapped product resolved")
	}
}

func TestLoadPriceBookRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "array instead of object", content: `["price_abaya"]`},
		{name: "blank price id", content: `{"a1": "  "}`},
		{name: "not json", content: `nope`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeTempFile(t, "prices.json", tc.content)
			if _, err := LoadPriceBook(path); !errors.Is(err, ErrPriceBookInvalid) {
				t.Fatalf("expected ErrPriceBookInvalid, got %v", err)
			}
		})
	}
}

func TestLoadPriceBookMissingFile(t *testing.T) {
	if _, err := LoadPriceBook(filepath.Join(t.TempDir(), "absent.json")); !errors.Is(err, ErrPriceBookInvalid) {
		t.Fatalf("expected ErrPriceBookInvalid, got %v", err)
	}
	if _, err := LoadPriceBook("   "); !errors.Is(err, ErrPriceBookInvalid) {
		t.Fatalf("expected ErrPriceBookInvalid for blank path, got %v", err)
	}
}
