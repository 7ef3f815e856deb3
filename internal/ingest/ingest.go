// Package ingest orchestrates the conversion pipeline: fetch a paper,
// parse it, filter sections, and serialize the result to Markdown. HTML
// is the primary source; LaTeX via pandoc and raw PDF text are the
// fallbacks, in that order.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/RBozydar/arxiv2md/internal/arxiv"
	"github.com/RBozydar/arxiv2md/internal/cache"
	"github.com/RBozydar/arxiv2md/internal/config"
	"github.com/RBozydar/arxiv2md/internal/fetch"
	"github.com/RBozydar/arxiv2md/internal/htmldoc"
	"github.com/RBozydar/arxiv2md/internal/latex"
	"github.com/RBozydar/arxiv2md/internal/markdown"
	"github.com/RBozydar/arxiv2md/internal/pdftext"
	"github.com/RBozydar/arxiv2md/internal/sections"
)

// referenceTitles are removed when the caller asks to drop references.
var referenceTitles = []string{"references", "bibliography"}

const abstractTitle = "abstract"

// Options controls what the pipeline keeps and drops.
type Options struct {
	RemoveRefs            bool
	RemoveTOC             bool
	RemoveInlineCitations bool
	SectionFilterMode     sections.FilterMode
	Sections              []string

	// ForceLatex skips HTML entirely and converts the e-print source.
	ForceLatex bool
	// DisableFallback fails instead of falling back to LaTeX or PDF
	// when HTML is unavailable.
	DisableFallback bool
}

// Result is the rendered output of one ingestion.
type Result struct {
	Summary      string
	SectionsTree string
	Content      string
}

// Metadata describes the paper and which source produced the result.
type Metadata struct {
	Title    string
	Authors  []string
	Abstract string
	Source   string // "html", "latex", or "pdf"
}

// Pipeline wires the fetch client and configuration into a reusable
// ingestion engine. Safe for concurrent use.
type Pipeline struct {
	client *fetch.Client
	pdf    *pdftext.Extractor
	cfg    config.Config
}

// New builds a Pipeline from configuration.
func New(client *fetch.Client, cfg config.Config) *Pipeline {
	return &Pipeline{
		client: client,
		pdf:    &pdftext.Extractor{FallbackPdftotext: cfg.PDFFallbackPdftotext},
		cfg:    cfg,
	}
}

// Ingest converts one paper. The returned Result holds the summary, the
// section tree, and the Markdown content.
func (p *Pipeline) Ingest(ctx context.Context, q *arxiv.Query, opts Options) (*Result, *Metadata, error) {
	if opts.SectionFilterMode == "" {
		opts.SectionFilterMode = sections.ModeExclude
	}
	cacheDir := cache.Dir(p.cfg.CachePath, q.ArxivID, q.Version)

	if opts.ForceLatex {
		return p.ingestFromLatex(ctx, q, cacheDir, opts)
	}

	html, err := p.client.FetchHTML(ctx, q.HTMLURL, q.Ar5ivURL, cacheDir, p.cfg.CacheTTL, true)
	if err != nil {
		if !errors.Is(err, fetch.ErrHTMLNotAvailable) || opts.DisableFallback {
			return nil, nil, err
		}
		slog.Info("no HTML version, falling back to LaTeX source", "arxiv_id", q.ArxivID)
		result, meta, latexErr := p.ingestFromLatex(ctx, q, cacheDir, opts)
		if latexErr == nil {
			return result, meta, nil
		}
		slog.Warn("LaTeX fallback failed, trying PDF text extraction",
			"arxiv_id", q.ArxivID, "error", latexErr)
		result, meta, pdfErr := p.ingestFromPDF(ctx, q, cacheDir, opts)
		if pdfErr == nil {
			return result, meta, nil
		}
		return nil, nil, fmt.Errorf("all sources failed: %w (latex: %v, pdf: %v)", err, latexErr, pdfErr)
	}

	return p.ingestFromHTML(html, q, opts)
}

func (p *Pipeline) ingestFromHTML(html string, q *arxiv.Query, opts Options) (*Result, *Metadata, error) {
	parsed, err := htmldoc.Parse(html)
	if err != nil {
		return nil, nil, err
	}

	filtered := sections.Filter(parsed.Sections, opts.SectionFilterMode, opts.Sections)
	if opts.RemoveRefs {
		filtered = sections.Filter(filtered, sections.ModeExclude, referenceTitles)
	}

	mdOpts := markdown.Options{RemoveInlineCitations: opts.RemoveInlineCitations}
	for _, node := range filtered {
		if err := populateMarkdown(node, mdOpts); err != nil {
			return nil, nil, err
		}
	}

	abstract := parsed.Abstract
	if !includeAbstract(opts) {
		abstract = ""
	}

	result := formatPaper(paperView{
		ArxivID:    q.ArxivID,
		Version:    q.Version,
		Title:      parsed.Title,
		Authors:    parsed.Authors,
		Abstract:   abstract,
		Sections:   filtered,
		IncludeTOC: !opts.RemoveTOC,
	})

	meta := &Metadata{
		Title:    parsed.Title,
		Authors:  parsed.Authors,
		Abstract: parsed.Abstract,
		Source:   "html",
	}
	return result, meta, nil
}

// includeAbstract mirrors the section filter semantics for the abstract,
// which lives outside the section tree.
func includeAbstract(opts Options) bool {
	if opts.SectionFilterMode == sections.ModeExclude {
		for _, s := range opts.Sections {
			if sections.NormalizeTitle(s) == abstractTitle {
				return false
			}
		}
		return true
	}
	if len(opts.Sections) == 0 {
		return true
	}
	for _, s := range opts.Sections {
		if sections.NormalizeTitle(s) == abstractTitle {
			return true
		}
	}
	return false
}

func populateMarkdown(node *sections.Node, opts markdown.Options) error {
	if node.RawFragment != "" {
		md, err := markdown.ConvertFragment(node.RawFragment, opts)
		if err != nil {
			return fmt.Errorf("convert section %q: %w", node.Title, err)
		}
		node.Markdown = md
	}
	for _, child := range node.Children {
		if err := populateMarkdown(child, opts); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) ingestFromLatex(ctx context.Context, q *arxiv.Query, cacheDir string, opts Options) (*Result, *Metadata, error) {
	sourceDir, err := p.client.FetchSource(ctx, q.LatexURL, cacheDir, p.cfg.CacheTTL, true)
	if err != nil {
		return nil, nil, err
	}
	mainTex, err := latex.DetectMainTex(sourceDir)
	if err != nil {
		return nil, nil, err
	}
	content, err := latex.ConvertToMarkdown(ctx, p.cfg.PandocPath, mainTex)
	if err != nil {
		return nil, nil, err
	}

	var texMeta latex.Metadata
	if raw, err := os.ReadFile(mainTex); err == nil {
		texMeta = latex.ExtractMetadata(string(raw))
	}

	summary := summaryLines(q, texMeta.Title, texMeta.Authors)
	summary = append(summary, "Source: LaTeX (via Pandoc)")

	blocks := []string{}
	if !opts.RemoveTOC {
		blocks = append(blocks, "## Contents\n(Table of contents not available for LaTeX source)")
	}
	if texMeta.Abstract != "" {
		blocks = append(blocks, "## Abstract", texMeta.Abstract)
	}
	blocks = append(blocks, content)

	result := &Result{
		Summary:      joinLines(summary),
		SectionsTree: "Sections:\n(Converted from LaTeX source)",
		Content:      joinBlocks(blocks),
	}
	meta := &Metadata{
		Title:    texMeta.Title,
		Authors:  texMeta.Authors,
		Abstract: texMeta.Abstract,
		Source:   "latex",
	}
	return result, meta, nil
}

func (p *Pipeline) ingestFromPDF(ctx context.Context, q *arxiv.Query, cacheDir string, opts Options) (*Result, *Metadata, error) {
	path, err := p.client.FetchPDF(ctx, q.PDFURL, cacheDir, p.cfg.CacheTTL, true)
	if err != nil {
		return nil, nil, err
	}
	text, err := p.pdf.ExtractText(path)
	if err != nil {
		return nil, nil, err
	}

	summary := summaryLines(q, "", nil)
	summary = append(summary, "Source: PDF (text extraction)")

	blocks := []string{}
	if !opts.RemoveTOC {
		blocks = append(blocks, "## Contents\n(Table of contents not available for PDF source)")
	}
	blocks = append(blocks, text)

	result := &Result{
		Summary:      joinLines(summary),
		SectionsTree: "Sections:\n(Extracted from PDF)",
		Content:      joinBlocks(blocks),
	}
	meta := &Metadata{Source: "pdf"}
	return result, meta, nil
}

func summaryLines(q *arxiv.Query, title string, authors []string) []string {
	var lines []string
	if title != "" {
		lines = append(lines, "Title: "+title)
	}
	lines = append(lines, "ArXiv: "+q.ArxivID)
	if q.Version != "" {
		lines = append(lines, "Version: "+q.Version)
	}
	if len(authors) > 0 {
		lines = append(lines, "Authors: "+joinAuthors(authors))
	}
	return lines
}
