// Package fetch retrieves arXiv content over HTTP with retry, backoff,
// rate limiting, and on-disk caching.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Sentinel errors for the fetch layer. Callers distinguish "the paper
// has no such rendition" from transient failures.
var (
	ErrNotFound = errors.New("resource not found")

	// ErrHTMLNotAvailable means the paper has no HTML version on arXiv
	// or ar5iv. Older papers may only be available as PDF.
	ErrHTMLNotAvailable = errors.New("paper does not have an HTML version available")

	// ErrSourceNotAvailable means the e-print source bundle is missing.
	ErrSourceNotAvailable = errors.New("paper source files are not available")
)

const (
	defaultTimeout    = 30 * time.Second
	defaultUserAgent  = "arxiv2md/1.0 (https://github.com/RBozydar/arxiv2md)"
	defaultMaxRetries = 3
	defaultBackoff    = 500 * time.Millisecond
	// defaultRateLimit keeps us well under arXiv's politeness threshold.
	defaultRateLimit = 1.0
)

// retryStatus lists HTTP statuses treated as transient.
var retryStatus = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client is a rate-limited HTTP client with retry logic for transient
// failures. It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	maxRetries int
	backoff    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithRetries sets the retry count and base backoff. The delay doubles
// each attempt.
func WithRetries(maxRetries int, backoff time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.backoff = backoff
	}
}

// WithRateLimit sets the request rate in requests per second.
func WithRateLimit(rps float64) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// NewClient creates a Client with sensible defaults for arXiv.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRateLimit), 1),
		userAgent:  defaultUserAgent,
		maxRetries: defaultMaxRetries,
		backoff:    defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches a URL, retrying transient failures with exponential
// backoff. A 404 returns ErrNotFound immediately; other non-2xx statuses
// and network errors are retried until attempts run out.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.doOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		lastErr = err

		if attempt < c.maxRetries {
			delay := c.backoff * time.Duration(1<<attempt)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return nil, fmt.Errorf("failed to fetch %s: %w", url, lastErr)
}

func (c *Client) doOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	case retryStatus[resp.StatusCode]:
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	return body, nil
}
