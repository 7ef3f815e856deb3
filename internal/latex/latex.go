// Package latex handles extracted arXiv e-print bundles: locating the
// main .tex file, converting it to Markdown with pandoc, and pulling
// metadata out of the preamble.
package latex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrNoTexFiles   = errors.New("no .tex files found")
	ErrPandocFailed = errors.New("pandoc conversion failed")
)

// DetectMainTex finds the main .tex file in a source bundle. Detection
// order follows arXiv's AutoTeX behavior: a file containing
// \documentclass, then ms.tex, then the alphabetically first .tex file.
func DetectMainTex(sourceDir string) (string, error) {
	texFiles, err := filepath.Glob(filepath.Join(sourceDir, "*.tex"))
	if err != nil {
		return "", fmt.Errorf("scan source dir: %w", err)
	}
	if len(texFiles) == 0 {
		return "", fmt.Errorf("%w in %s", ErrNoTexFiles, sourceDir)
	}
	sort.Strings(texFiles)

	for _, f := range texFiles {
		content, err := os.ReadFile(f)
		if err != nil {
			continue
		}
		if bytes.Contains(content, []byte(`\documentclass`)) {
			return f, nil
		}
	}

	msTex := filepath.Join(sourceDir, "ms.tex")
	if _, err := os.Stat(msTex); err == nil {
		return msTex, nil
	}

	return texFiles[0], nil
}

// ConvertToMarkdown runs pandoc on the main .tex file and returns the
// Markdown output. Pandoc runs with the source directory as its working
// directory so \input{} paths resolve.
func ConvertToMarkdown(ctx context.Context, pandocPath, mainTex string) (string, error) {
	if pandocPath == "" {
		pandocPath = "pandoc"
	}

	cmd := exec.CommandContext(ctx, pandocPath,
		filepath.Base(mainTex), "-f", "latex", "-t", "markdown", "--wrap=none")
	cmd.Dir = filepath.Dir(mainTex)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return "", fmt.Errorf("%w: %s", ErrPandocFailed, detail)
	}
	return stdout.String(), nil
}
