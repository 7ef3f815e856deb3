package fetch

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/RBozydar/arxiv2md/internal/cache"
)

// FetchSource downloads the e-print bundle and extracts it under
// cacheDir/source, returning the extracted directory. A marker file
// records a completed extraction so fresh caches skip the download.
func (c *Client) FetchSource(ctx context.Context, latexURL, cacheDir string, ttl time.Duration, useCache bool) (string, error) {
	sourceDir := filepath.Join(cacheDir, "source")
	marker := filepath.Join(cacheDir, ".source_extracted")
	if useCache && cache.Fresh(marker, ttl) {
		slog.Debug("source cache hit", "dir", sourceDir)
		return sourceDir, nil
	}

	data, err := c.Get(ctx, latexURL)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrSourceNotAvailable, latexURL)
		}
		return "", err
	}

	if err := os.RemoveAll(sourceDir); err != nil {
		return "", fmt.Errorf("clear source dir: %w", err)
	}
	if err := extractBundle(data, sourceDir); err != nil {
		return "", err
	}
	if err := cache.WriteFile(marker, []byte(time.Now().UTC().Format(time.RFC3339))); err != nil {
		slog.Warn("failed to write extraction marker", "path", marker, "error", err)
	}
	return sourceDir, nil
}

// extractBundle unpacks an arXiv e-print into destDir. Bundles come in
// three shapes: a gzipped tarball, a single gzipped .tex file, or a bare
// LaTeX text file.
func extractBundle(data []byte, destDir string) error {
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create source dir: %w", err)
	}

	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err == nil {
		decompressed, rerr := io.ReadAll(gz)
		gz.Close()
		if rerr != nil {
			return fmt.Errorf("decompress source bundle: %w", rerr)
		}
		switch err := extractTar(decompressed, destDir); {
		case err == nil:
			return nil
		case errors.Is(err, errNotTar):
			// A single gzipped .tex file.
			return cache.WriteFile(filepath.Join(destDir, "main.tex"), decompressed)
		default:
			// A real tarball that failed midway. Falling back would
			// leave tar bytes as main.tex beside a partial extraction.
			return err
		}
	}

	if looksLikeLatex(data) {
		return cache.WriteFile(filepath.Join(destDir, "main.tex"), data)
	}
	return fmt.Errorf("unable to extract source bundle: unrecognized format")
}

// errNotTar signals that the payload is not a tar archive at all, as
// opposed to a tar archive that failed partway through.
var errNotTar = errors.New("not a tar archive")

func extractTar(data []byte, destDir string) error {
	tr := tar.NewReader(bytes.NewReader(data))
	sawHeader := false
	extracted := false
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if sawHeader {
				return fmt.Errorf("corrupt tar entry: %w", err)
			}
			return errNotTar
		}
		sawHeader = true

		name := filepath.Clean(hdr.Name)
		if filepath.IsAbs(name) || strings.HasPrefix(name, "..") {
			slog.Warn("skipping unsafe tar entry", "name", hdr.Name)
			continue
		}
		target := filepath.Join(destDir, name)

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir %s: %w", name, err)
			}
		case tar.TypeReg:
			content, err := io.ReadAll(tr)
			if err != nil {
				return fmt.Errorf("read tar entry %s: %w", name, err)
			}
			if err := cache.WriteFile(target, content); err != nil {
				return err
			}
			extracted = true
		}
	}
	if !sawHeader {
		return errNotTar
	}
	if !extracted {
		return fmt.Errorf("no regular files in source archive")
	}
	return nil
}

func looksLikeLatex(data []byte) bool {
	if !utf8.Valid(data) {
		return false
	}
	s := string(data)
	return strings.Contains(s, `\documentclass`) || strings.Contains(s, `\begin{document}`)
}
