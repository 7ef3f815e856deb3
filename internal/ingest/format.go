package ingest

import (
	"fmt"
	"strings"

	"github.com/RBozydar/arxiv2md/internal/sections"
)

// paperView bundles everything the formatter needs for one paper.
type paperView struct {
	ArxivID    string
	Version    string
	Title      string
	Authors    []string
	Abstract   string
	Sections   []*sections.Node
	IncludeTOC bool
}

// formatPaper renders the summary, section tree, and full content.
func formatPaper(v paperView) *Result {
	tree := "Sections:\n" + renderTree(v.Sections, 0)
	content := renderContent(v)

	lines := []string{}
	if v.Title != "" {
		lines = append(lines, "Title: "+v.Title)
	}
	lines = append(lines, "ArXiv: "+v.ArxivID)
	if v.Version != "" {
		lines = append(lines, "Version: "+v.Version)
	}
	if len(v.Authors) > 0 {
		lines = append(lines, "Authors: "+joinAuthors(v.Authors))
	}
	lines = append(lines, fmt.Sprintf("Sections: %d", sections.Count(v.Sections)))
	lines = append(lines, "Estimated tokens: "+formatTokenCount(EstimateTokens(tree+"\n"+content)))

	return &Result{
		Summary:      joinLines(lines),
		SectionsTree: tree,
		Content:      content,
	}
}

func renderContent(v paperView) string {
	var blocks []string
	if v.IncludeTOC {
		if toc := renderTOC(v.Sections, 0); toc != "" {
			blocks = append(blocks, "## Contents\n"+toc)
		}
	}
	if v.Abstract != "" {
		blocks = append(blocks, "## Abstract", strings.TrimSpace(v.Abstract))
	}
	for _, node := range v.Sections {
		blocks = append(blocks, renderSection(node)...)
	}
	return joinBlocks(blocks)
}

func renderSection(node *sections.Node) []string {
	level := node.Level
	if level > 6 {
		level = 6
	}
	blocks := []string{strings.Repeat("#", level) + " " + node.Title}
	if node.Markdown != "" {
		blocks = append(blocks, node.Markdown)
	}
	for _, child := range node.Children {
		blocks = append(blocks, renderSection(child)...)
	}
	return blocks
}

func renderTOC(nodes []*sections.Node, indent int) string {
	var lines []string
	for _, node := range nodes {
		lines = append(lines, strings.Repeat("  ", indent)+"- "+node.Title)
		if len(node.Children) > 0 {
			lines = append(lines, renderTOC(node.Children, indent+1))
		}
	}
	return strings.Join(lines, "\n")
}

func renderTree(nodes []*sections.Node, indent int) string {
	var lines []string
	for _, node := range nodes {
		lines = append(lines, strings.Repeat(" ", indent*4)+node.Title)
		if len(node.Children) > 0 {
			lines = append(lines, renderTree(node.Children, indent+1))
		}
	}
	return strings.Join(lines, "\n")
}

// formatTokenCount renders a count as 123, 1.2k, or 3.4M.
func formatTokenCount(tokens int) string {
	switch {
	case tokens >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(tokens)/1_000_000)
	case tokens >= 1_000:
		return fmt.Sprintf("%.1fk", float64(tokens)/1_000)
	default:
		return fmt.Sprintf("%d", tokens)
	}
}

func joinAuthors(authors []string) string {
	return strings.Join(authors, ", ")
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

func joinBlocks(blocks []string) string {
	var kept []string
	for _, b := range blocks {
		if b != "" {
			kept = append(kept, b)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n\n"))
}
