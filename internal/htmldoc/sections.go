package htmldoc

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/RBozydar/arxiv2md/internal/sections"
)

// subsectionClassPrefixes mark wrapper elements that belong to a nested
// subsection rather than the current section's own content.
var subsectionClassPrefixes = []string{"ltx_section", "ltx_subsection", "ltx_subsubsection"}

// extractSections walks headings in document order and reconstructs the
// section forest from the flat level sequence. A stack of open ancestors
// is popped until its top is strictly shallower than the incoming
// heading, so skipped levels and out-of-order markup nesting still yield
// a valid forest.
func extractSections(root *goquery.Selection) []*sections.Node {
	var forest []*sections.Node
	var stack []*sections.Node

	root.Find("h1, h2, h3, h4, h5, h6").Each(func(_ int, heading *goquery.Selection) {
		if heading.Closest("nav").Length() > 0 {
			return
		}
		if heading.Closest(`[class*="ltx_abstract"]`).Length() > 0 {
			return
		}
		if heading.HasClass("ltx_title_document") {
			return
		}

		hn := heading.Nodes[0]
		level := int(hn.Data[1] - '0')

		anchor := nodeAttr(hn, "id")
		if anchor == "" && hn.Parent != nil {
			anchor = nodeAttr(hn.Parent, "id")
		}

		node := &sections.Node{
			Title:       joinedText(hn),
			Level:       level,
			Anchor:      anchor,
			RawFragment: collectSectionFragment(hn),
		}

		for len(stack) > 0 && stack[len(stack)-1].Level >= level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, node)
		} else {
			forest = append(forest, node)
		}
		stack = append(stack, node)
	})

	return forest
}

// collectSectionFragment gathers the markup owned exclusively by a
// heading's section: the direct children of the nearest enclosing
// <section> that follow the heading, up to but excluding any nested
// subsection container. Returns "" when the heading has no enclosing
// section or no following content.
func collectSectionFragment(heading *html.Node) string {
	section := enclosingSection(heading)
	if section == nil {
		return ""
	}

	var parts []string
	started := false
	for child := section.FirstChild; child != nil; child = child.NextSibling {
		if child == heading {
			started = true
			continue
		}
		if !started {
			continue
		}
		switch child.Type {
		case html.TextNode:
			if strings.TrimSpace(child.Data) != "" {
				parts = append(parts, child.Data)
			}
		case html.ElementNode:
			if child.Data == "section" || hasSubsectionClass(child) {
				continue
			}
			var b strings.Builder
			if err := html.Render(&b, child); err == nil {
				parts = append(parts, b.String())
			}
		}
	}

	return strings.TrimSpace(strings.Join(parts, ""))
}

func enclosingSection(n *html.Node) *html.Node {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && p.Data == "section" {
			return p
		}
	}
	return nil
}

func hasSubsectionClass(n *html.Node) bool {
	for _, class := range nodeClasses(n) {
		for _, prefix := range subsectionClassPrefixes {
			if strings.HasPrefix(class, prefix) {
				return true
			}
		}
	}
	return false
}
