package markdown

import (
	"strings"

	"github.com/JohannesKaufmann/dom"
	"golang.org/x/net/html"
)

// isCitationLink reports whether a link targets an in-page bibliography
// anchor (e.g. #bib.bib7).
func isCitationLink(href string) bool {
	if href == "" {
		return false
	}
	return strings.Contains(href, "#bib.") || strings.HasPrefix(href, "#bib")
}

// isInternalPaperLink reports whether a link points back into the same
// paper's HTML with a fragment (e.g. arxiv.org/html/...#S2.SS1) and is
// not a citation.
func isInternalPaperLink(href string) bool {
	if href == "" {
		return false
	}
	return strings.Contains(href, "arxiv.org/html/") &&
		strings.Contains(href, "#") &&
		!strings.Contains(href, "#bib")
}

func (s *serializer) serializeInline(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	if n.Type != html.ElementNode {
		return ""
	}

	switch dom.NodeName(n) {
	case "br":
		return "\n"

	case "em", "i":
		return "*" + s.serializeChildrenInline(n) + "*"

	case "strong", "b":
		return "**" + s.serializeChildrenInline(n) + "**"

	case "a":
		text := strings.TrimSpace(s.serializeChildrenInline(n))
		href := dom.GetAttributeOr(n, "href", "")
		if isCitationLink(href) {
			if s.removeCitations {
				return ""
			}
			// Citation text stays useful prose context; the anchor is
			// meaningless outside the source page.
			return text
		}
		if s.removeCitations && isInternalPaperLink(href) {
			return text
		}
		if href != "" {
			if text == "" {
				text = href
			}
			return "[" + text + "](" + href + ")"
		}
		return text

	case "sup":
		text := strings.TrimSpace(s.serializeChildrenInline(n))
		if text == "" {
			return ""
		}
		return "^" + text

	case "cite":
		return s.serializeChildrenInline(n)

	case "math":
		// Math is rewritten to $...$ text before serialization; this
		// path only fires on markup the normalizer never saw.
		text := joinedText(n)
		if text == "" {
			return ""
		}
		return "$" + text + "$"
	}

	if hasClass(n, "ltx_note") {
		text := normalizeText(s.serializeChildrenInline(n))
		if text == "" {
			return ""
		}
		return "(" + text + ")"
	}

	return s.serializeChildrenInline(n)
}

func (s *serializer) serializeChildrenInline(n *html.Node) string {
	var b strings.Builder
	for _, child := range dom.AllChildNodes(n) {
		b.WriteString(s.serializeInline(child))
	}
	return b.String()
}
