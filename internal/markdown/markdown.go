// Package markdown converts arXiv HTML fragments into Markdown with a
// custom serializer. The serializer is total: element kinds it does not
// recognize degrade to generic recursion over children, so malformed
// markup produces plain nested text rather than an error.
package markdown

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/dom"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Options controls fragment conversion.
type Options struct {
	// RemoveInlineCitations removes citation links entirely. When false,
	// citation link text is kept and only the URL is stripped.
	RemoveInlineCitations bool
}

// unwantedSelectors are removed from every fragment before serialization.
// They contribute page chrome, not paper content.
var unwantedSelectors = []string{
	"script", "style", "noscript", "link", "meta",
	"nav.ltx_page_navbar", "nav.ltx_TOC",
	"button.sr-only", "div.package-alerts", "div.ltx_pagination", "footer",
}

// ConvertFragment converts an HTML fragment into Markdown without
// title/author/abstract handling.
func ConvertFragment(fragment string, opts Options) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parse fragment: %w", err)
	}

	for _, sel := range unwantedSelectors {
		doc.Find(sel).Remove()
	}
	NormalizeMath(doc.Selection)
	NormalizeTables(doc.Selection)

	body := doc.Find("body")
	if body.Length() == 0 {
		return "", nil
	}

	s := serializer{removeCitations: opts.RemoveInlineCitations}
	blocks := s.serializeChildren(body.Nodes[0])

	var kept []string
	for _, block := range blocks {
		if block != "" {
			kept = append(kept, block)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n\n")), nil
}

type serializer struct {
	removeCitations bool
}

// serializeChildren renders each child element of container as zero or
// more Markdown blocks. Bare text between block elements is dropped.
func (s *serializer) serializeChildren(container *html.Node) []string {
	var blocks []string
	for _, child := range dom.AllChildNodes(container) {
		if child.Type != html.ElementNode {
			continue
		}
		blocks = append(blocks, s.serializeBlock(child)...)
	}
	return blocks
}

func (s *serializer) serializeBlock(n *html.Node) []string {
	switch name := dom.NodeName(n); name {
	case "section", "article", "div", "span":
		return s.serializeChildren(n)

	case "h1", "h2", "h3", "h4", "h5", "h6":
		level := int(name[1] - '0')
		heading := normalizeText(joinedText(n))
		if heading == "" {
			return nil
		}
		return []string{strings.Repeat("#", level) + " " + heading}

	case "p":
		paragraph := cleanupInlineText(s.serializeInline(n))
		if paragraph == "" {
			return nil
		}
		return []string{paragraph}

	case "ul", "ol":
		lines := s.serializeList(n, 0)
		if len(lines) == 0 {
			return nil
		}
		return []string{strings.Join(lines, "\n")}

	case "figure":
		figure := s.serializeFigure(n)
		if figure == "" {
			return nil
		}
		return []string{figure}

	case "table":
		table := s.serializeTable(n)
		if table == "" {
			return nil
		}
		return []string{table}

	case "blockquote":
		content := normalizeText(s.serializeInline(n))
		if content == "" {
			return nil
		}
		return []string{"> " + content}

	case "br":
		return nil

	default:
		return s.serializeChildren(n)
	}
}

func (s *serializer) serializeList(list *html.Node, indent int) []string {
	var lines []string
	for _, item := range dom.AllChildNodes(list) {
		if item.Type != html.ElementNode || dom.NodeName(item) != "li" {
			continue
		}
		var textParts []string
		var nested []*html.Node
		for _, child := range dom.AllChildNodes(item) {
			name := dom.NodeName(child)
			if child.Type == html.ElementNode && (name == "ul" || name == "ol") {
				nested = append(nested, child)
				continue
			}
			textParts = append(textParts, s.serializeInline(child))
		}
		itemText := cleanupInlineText(strings.Join(textParts, ""))
		prefix := strings.Repeat("  ", indent) + "- "
		if itemText != "" {
			lines = append(lines, prefix+itemText)
		} else {
			lines = append(lines, strings.TrimRight(prefix, " "))
		}
		for _, sub := range nested {
			lines = append(lines, s.serializeList(sub, indent+1)...)
		}
	}
	return lines
}

func (s *serializer) serializeFigure(figure *html.Node) string {
	var caption, src, alt string
	if cap := findFirst(figure, "figcaption"); cap != nil {
		caption = normalizeText(s.serializeInline(cap))
	}
	if img := findFirst(figure, "img"); img != nil {
		src = dom.GetAttributeOr(img, "src", "")
		alt = dom.GetAttributeOr(img, "alt", "")
	}

	var lines []string
	if caption != "" {
		lines = append(lines, "Figure: "+caption)
	}
	if src != "" {
		label := alt
		if label == "" {
			label = "Image"
		}
		lines = append(lines, label+": "+src)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// findFirst returns the first descendant element with the given tag name,
// depth-first, or nil.
func findFirst(n *html.Node, name string) *html.Node {
	for _, child := range dom.AllChildNodes(n) {
		if child.Type == html.ElementNode && dom.NodeName(child) == name {
			return child
		}
		if found := findFirst(child, name); found != nil {
			return found
		}
	}
	return nil
}

var (
	tabSpaceRe   = regexp.MustCompile(`[ \t]+`)
	newlinePadRe = regexp.MustCompile(`\s*\n\s*`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// cleanupInlineText collapses runs of spaces and trims whitespace around
// line breaks while keeping the breaks themselves.
func cleanupInlineText(text string) string {
	text = tabSpaceRe.ReplaceAllString(text, " ")
	text = newlinePadRe.ReplaceAllString(text, "\n")
	return strings.TrimSpace(text)
}

// normalizeText collapses all whitespace, including newlines, to single
// spaces.
func normalizeText(text string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}

// joinedText collects the text content of a subtree, trimming each text
// node and joining non-empty pieces with single spaces.
func joinedText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			if t := strings.TrimSpace(node.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for _, child := range dom.AllChildNodes(node) {
			walk(child)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

// hasClass reports whether an element's class attribute contains the
// given class name as a whole word.
func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(dom.GetAttributeOr(n, "class", "")) {
		if c == class {
			return true
		}
	}
	return false
}
