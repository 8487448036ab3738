package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrFeedUnavailable indicates the catalog feed file could not be served.
var ErrFeedUnavailable = errors.New("feed repository: unavailable")

// FeedRepository serves the catalog feed file backing GET /products.json.
// The file is re-read per request so catalog edits show up without a restart.
type FeedRepository struct {
	path string
}

// NewFeedRepository validates the path and constructs the repository.
func NewFeedRepository(path string) (*FeedRepository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("feed repository: path is required")
	}
	return &FeedRepository{path: path}, nil
}

// Read returns the raw feed bytes after verifying the payload is a JSON
// array, the only shape catalog clients accept.
func (r *FeedRepository) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrFeedUnavailable, r.path, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %s is not a product array: %v", ErrFeedUnavailable, r.path, err)
	}
	return data, nil
}

// Ping reports whether the feed is currently readable, for readiness checks.
func (r *FeedRepository) Ping(ctx context.Context) error {
	_, err := r.Read(ctx)
	return err
}
