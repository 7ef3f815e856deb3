// Package pdftext extracts plain text from paper PDFs. It is the last
// resort when neither HTML nor LaTeX source is available, which happens
// for some older papers.
package pdftext

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// ErrNoText means the PDF yielded no extractable text (scanned pages,
// or a fully image-based document).
var ErrNoText = errors.New("no extractable text in PDF")

// Extractor pulls text out of PDF files. It uses the Go library first
// and optionally falls back to the pdftotext binary.
type Extractor struct {
	FallbackPdftotext bool
}

// ExtractText returns the text of all pages, separated by form feeds.
func (e *Extractor) ExtractText(path string) (string, error) {
	text, err := extractWithLibrary(path)
	if err != nil && e.FallbackPdftotext {
		text, err = extractWithPdftotext(path)
	}
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}

// Pages splits extracted text back into per-page chunks.
func Pages(text string) []string {
	return strings.Split(text, "\f")
}

func extractWithLibrary(path string) (string, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if i > 1 {
			buf.WriteString("\f")
		}
		buf.WriteString(text)
	}
	return buf.String(), nil
}

func extractWithPdftotext(path string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return string(out), nil
}
