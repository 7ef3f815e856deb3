// Package config loads runtime settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Cache
	CachePath string
	CacheTTL  time.Duration

	// Fetching
	FetchTimeout    time.Duration
	FetchMaxRetries int
	FetchBackoff    time.Duration
	UserAgent       string
	RateLimit       float64

	// Auth (optional; empty disables auth)
	APIKey string

	// Output
	MaxDisplaySize int

	// LaTeX conversion
	PandocPath string

	// PDF fallback
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("ARXIV2MD_PORT", "8080"),

		CachePath: envOr("ARXIV2MD_CACHE_PATH", defaultCachePath()),
		CacheTTL:  envDuration("ARXIV2MD_CACHE_TTL", 24*time.Hour),

		FetchTimeout:    envDuration("ARXIV2MD_FETCH_TIMEOUT", 30*time.Second),
		FetchMaxRetries: envInt("ARXIV2MD_FETCH_MAX_RETRIES", 3),
		FetchBackoff:    envDuration("ARXIV2MD_FETCH_BACKOFF", 500*time.Millisecond),
		UserAgent:       envOr("ARXIV2MD_USER_AGENT", "arxiv2md/1.0 (https://github.com/RBozydar/arxiv2md)"),
		RateLimit:       envFloat("ARXIV2MD_RATE_LIMIT", 1.0),

		APIKey: os.Getenv("ARXIV2MD_API_KEY"),

		MaxDisplaySize: envInt("ARXIV2MD_MAX_DISPLAY_SIZE", 300000),

		PandocPath: envOr("ARXIV2MD_PANDOC_PATH", "pandoc"),

		PDFFallbackPdftotext: envBool("ARXIV2MD_PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.FetchMaxRetries < 0 {
		cfg.FetchMaxRetries = 3
	}
	if cfg.FetchBackoff <= 0 {
		cfg.FetchBackoff = 500 * time.Millisecond
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 1.0
	}
	if cfg.MaxDisplaySize <= 0 {
		cfg.MaxDisplaySize = 300000
	}

	return cfg
}

func defaultCachePath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return dir + "/arxiv2md"
	}
	return ".arxiv2md-cache"
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
