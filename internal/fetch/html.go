package fetch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/RBozydar/arxiv2md/internal/cache"
)

// FetchHTML retrieves the paper's HTML rendition, trying htmlURL first
// and falling back to ar5ivURL when arXiv has no HTML version. The body
// is cached as source.html inside cacheDir; a fresh cached copy is
// returned without a network round trip when useCache is set.
func (c *Client) FetchHTML(ctx context.Context, htmlURL, ar5ivURL, cacheDir string, ttl time.Duration, useCache bool) (string, error) {
	path := filepath.Join(cacheDir, "source.html")
	if useCache && cache.Fresh(path, ttl) {
		data, err := os.ReadFile(path)
		if err == nil {
			slog.Debug("html cache hit", "path", path)
			return string(data), nil
		}
		slog.Warn("unreadable cache entry, refetching", "path", path, "error", err)
	}

	body, err := c.Get(ctx, htmlURL)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
		if ar5ivURL == "" {
			return "", fmt.Errorf("%w: %s", ErrHTMLNotAvailable, htmlURL)
		}
		slog.Info("no HTML on arxiv.org, trying ar5iv", "url", ar5ivURL)
		body, err = c.Get(ctx, ar5ivURL)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return "", fmt.Errorf("%w: %s", ErrHTMLNotAvailable, htmlURL)
			}
			return "", err
		}
	}

	if err := cache.WriteFile(path, body); err != nil {
		slog.Warn("failed to cache html", "path", path, "error", err)
	}
	return string(body), nil
}

// FetchPDF downloads the paper PDF into cacheDir and returns the local
// path. Cached copies are reused when fresh.
func (c *Client) FetchPDF(ctx context.Context, pdfURL, cacheDir string, ttl time.Duration, useCache bool) (string, error) {
	path := filepath.Join(cacheDir, "paper.pdf")
	if useCache && cache.Fresh(path, ttl) {
		return path, nil
	}

	body, err := c.Get(ctx, pdfURL)
	if err != nil {
		return "", err
	}
	if err := cache.WriteFile(path, body); err != nil {
		return "", err
	}
	return path, nil
}
