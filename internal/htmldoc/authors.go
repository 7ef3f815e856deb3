package htmldoc

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var emailRe = regexp.MustCompile(`^[\w.+-]+@[\w.-]+\.\w+$`)

// skipKeywords flag footnotes and contribution statements that show up
// interleaved with author names.
var skipKeywords = []string{
	"footnotemark:",
	"equal contribution",
	"work performed",
	"listing order",
}

// maxAuthorPartLength filters out long contribution statements.
const maxAuthorPartLength = 80

func extractAuthors(doc *goquery.Document) []string {
	container := doc.Find("div.ltx_authors").First()
	if container.Length() == 0 {
		return nil
	}

	authorNodes := container.Find("span.ltx_text.ltx_font_bold")
	if authorNodes.Length() == 0 {
		authorNodes = container.Find(`[class*="ltx_author"], [class*="ltx_personname"]`)
	}

	var authors []string
	seen := make(map[string]bool)
	authorNodes.Each(func(_ int, node *goquery.Selection) {
		for _, text := range cleanAuthorText(node.Nodes[0]) {
			if text != "" && !seen[text] {
				seen[text] = true
				authors = append(authors, text)
			}
		}
	})
	return authors
}

// cleanAuthorText extracts author names and affiliations from one author
// node, dropping footnote markers, emails, and prose that is clearly not
// a name.
func cleanAuthorText(node *html.Node) []string {
	lines := textLines(node, skipAuthorNoise)

	var cleaned []string
	for _, part := range lines {
		part = strings.TrimSpace(whitespaceRe.ReplaceAllString(part, " "))
		// Leading & is an author separator in some papers.
		part = strings.TrimSpace(strings.TrimLeft(part, "&"))
		if part == "" {
			continue
		}
		if emailRe.MatchString(part) {
			continue
		}
		if isAllDigits(part) {
			continue
		}
		lower := strings.ToLower(part)
		skip := false
		for _, marker := range skipKeywords {
			if strings.Contains(lower, marker) {
				skip = true
				break
			}
		}
		if skip {
			continue
		}
		if utf8.RuneCountInString(part) > maxAuthorPartLength {
			continue
		}
		// Multiple periods, or a long trailing-period string, reads like
		// a sentence rather than a name.
		if strings.Count(part, ".") > 1 ||
			(strings.HasSuffix(part, ".") && utf8.RuneCountInString(part) > 40) {
			continue
		}
		cleaned = append(cleaned, part)
	}
	return cleaned
}

var whitespaceRe = regexp.MustCompile(`\s+`)

// skipAuthorNoise identifies subtrees excluded from author text:
// superscript footnote markers and editorial note elements.
func skipAuthorNoise(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	if n.Data == "sup" {
		return true
	}
	for _, class := range nodeClasses(n) {
		if strings.Contains(class, "ltx_note") || strings.Contains(class, "ltx_role_footnote") {
			return true
		}
	}
	return false
}

// textLines collects trimmed, non-empty text node contents in document
// order, skipping subtrees matched by skip.
func textLines(n *html.Node, skip func(*html.Node) bool) []string {
	var lines []string
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if skip(node) {
			return
		}
		if node.Type == html.TextNode {
			if t := strings.TrimSpace(node.Data); t != "" {
				lines = append(lines, t)
			}
			return
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return lines
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
