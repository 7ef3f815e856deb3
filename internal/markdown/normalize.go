package markdown

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	escapedScriptRe  = regexp.MustCompile(`\\([_^])`)
	escapedBracketRe = regexp.MustCompile(`\\([\[\]])`)
)

// NormalizeMath rewrites every embedded math element into plain text. An
// element carrying a LaTeX annotation becomes an inline $...$ span; one
// without falls back to its rendered text with no delimiters, so plain
// text does not masquerade as math. After this pass the tree contains no
// math markup.
func NormalizeMath(sel *goquery.Selection) {
	sel.Find("math").Each(func(_ int, math *goquery.Selection) {
		node := math.Nodes[0]

		var replacement string
		annotation := math.Find(`annotation[encoding="application/x-tex"]`).First()
		if annotation.Length() > 0 && strings.TrimSpace(annotation.Text()) != "" {
			latex := strings.TrimSpace(annotation.Text())
			// Stray % outside a LaTeX context would comment out the rest
			// of the line.
			latex = stripUnescapedPercent(latex)
			latex = escapedScriptRe.ReplaceAllString(latex, "$1")
			latex = escapedBracketRe.ReplaceAllString(latex, "$1")
			replacement = "$" + latex + "$"
		} else {
			replacement = joinedText(node)
		}

		spliceText(node, replacement)
	})
}

// NormalizeTables strips all presentational attributes from tabular data
// tables and their structural descendants. Markdown tables carry no
// attributes, and leftovers would leak through text extraction. Equation
// tables are classified at serialization time instead.
func NormalizeTables(sel *goquery.Selection) {
	sel.Find(`table[class*="ltx_tabular"]`).Each(func(_ int, table *goquery.Selection) {
		table.Nodes[0].Attr = nil
		table.Find("tbody, thead, tfoot, tr, td, th").Each(func(_ int, child *goquery.Selection) {
			child.Nodes[0].Attr = nil
		})
	})
}

// spliceText replaces a node with a plain text node in place.
func spliceText(n *html.Node, text string) {
	parent := n.Parent
	if parent == nil {
		return
	}
	parent.InsertBefore(&html.Node{Type: html.TextNode, Data: text}, n)
	parent.RemoveChild(n)
}

// stripUnescapedPercent removes % characters not preceded by a
// backslash.
func stripUnescapedPercent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && (i == 0 || s[i-1] != '\\') {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
