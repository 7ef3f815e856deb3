package markdown

import (
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"golang.org/x/net/html"
)

// equationTableRe identifies tables that lay out multi-line math
// derivations rather than tabular data.
var equationTableRe = regexp.MustCompile(`ltx_equationgroup|ltx_eqn_align|ltx_eqn_table`)

func (s *serializer) serializeTable(table *html.Node) string {
	if equationTableRe.MatchString(dom.GetAttributeOr(table, "class", "")) {
		text := normalizeText(joinedText(table))
		if text == "" {
			return ""
		}
		return "$$ " + text + " $$"
	}

	var rows [][]string
	for _, tr := range tableRows(table) {
		var values []string
		for _, cell := range dom.AllChildNodes(tr) {
			if cell.Type != html.ElementNode {
				continue
			}
			if name := dom.NodeName(cell); name != "th" && name != "td" {
				continue
			}
			text := cleanupInlineText(s.serializeInline(cell))
			// Markdown table cells cannot span lines.
			values = append(values, strings.ReplaceAll(text, "\n", "<br>"))
		}
		if len(values) == 0 {
			continue
		}
		rows = append(rows, values)
	}

	if len(rows) == 0 {
		return ""
	}

	maxCols := 0
	for _, row := range rows {
		if len(row) > maxCols {
			maxCols = len(row)
		}
	}
	for i, row := range rows {
		for len(row) < maxCols {
			row = append(row, "")
		}
		rows[i] = row
	}

	lines := []string{
		"| " + strings.Join(rows[0], " | ") + " |",
		"| " + strings.Join(repeatColumns("---", maxCols), " | ") + " |",
	}
	for _, row := range rows[1:] {
		lines = append(lines, "| "+strings.Join(row, " | ")+" |")
	}
	return strings.Join(lines, "\n")
}

// tableRows returns the table's rows in document order: direct tr
// children plus tr children of direct row-group containers (HTML parsers
// insert tbody implicitly, so rows are rarely direct children).
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	for _, child := range dom.AllChildNodes(table) {
		if child.Type != html.ElementNode {
			continue
		}
		switch dom.NodeName(child) {
		case "tr":
			rows = append(rows, child)
		case "thead", "tbody", "tfoot":
			for _, inner := range dom.AllChildNodes(child) {
				if inner.Type == html.ElementNode && dom.NodeName(inner) == "tr" {
					rows = append(rows, inner)
				}
			}
		}
	}
	return rows
}

func repeatColumns(s string, n int) []string {
	cols := make([]string, n)
	for i := range cols {
		cols[i] = s
	}
	return cols
}
