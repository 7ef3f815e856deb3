// Package cache manages the per-paper on-disk cache.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Key combines the bare ID and version into one safe name, so
// "2501.11120v1" and ("2501.11120", "v1") map to the same key. The key
// doubles as the digest identifier.
func Key(arxivID, version string) string {
	id := arxivID
	if version != "" && strings.HasSuffix(id, version) {
		id = strings.TrimSuffix(id, version)
	}
	tag := version
	if tag == "" {
		tag = "latest"
	}
	return strings.ReplaceAll(id+"__"+tag, "/", "_")
}

// Dir returns the cache directory for a paper.
func Dir(base, arxivID, version string) string {
	return filepath.Join(base, Key(arxivID, version))
}

// Fresh reports whether a cached file exists and is younger than ttl.
// A non-positive ttl means cached entries never expire.
func Fresh(path string, ttl time.Duration) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if ttl <= 0 {
		return true
	}
	return time.Since(info.ModTime()) <= ttl
}

// WriteFile writes content to a file inside the cache, creating the
// parent directory as needed.
func WriteFile(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write cache file: %w", err)
	}
	return nil
}

// DigestPath returns the location of a stored digest file.
func DigestPath(base, digestID string) string {
	return filepath.Join(base, "digests", digestID+".txt")
}

// WriteDigest stores a completed ingestion digest for later download.
func WriteDigest(base, digestID, content string) error {
	return WriteFile(DigestPath(base, digestID), []byte(content))
}
