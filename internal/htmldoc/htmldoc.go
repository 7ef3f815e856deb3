// Package htmldoc parses arXiv HTML into metadata and section structure.
package htmldoc

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/RBozydar/arxiv2md/internal/sections"
)

// ParsedDocument holds content extracted from one arXiv HTML page.
// It is built fresh per ingestion and discarded after formatting.
type ParsedDocument struct {
	Title    string
	Authors  []string
	Abstract string
	Sections []*sections.Node
}

// Parse extracts title, authors, abstract, and the section tree from a
// full arXiv HTML document.
func Parse(htmlStr string) (*ParsedDocument, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	root := FindDocumentRoot(doc)

	return &ParsedDocument{
		Title:    extractTitle(doc),
		Authors:  extractAuthors(doc),
		Abstract: extractAbstract(doc),
		Sections: extractSections(root),
	}, nil
}

// FindDocumentRoot locates the main content container. Preference order:
// <article class="ltx_document">, any <article>, <body>, the whole
// document.
func FindDocumentRoot(doc *goquery.Document) *goquery.Selection {
	if root := doc.Find(`article[class*="ltx_document"]`).First(); root.Length() > 0 {
		return root
	}
	if article := doc.Find("article").First(); article.Length() > 0 {
		return article
	}
	if body := doc.Find("body").First(); body.Length() > 0 {
		return body
	}
	return doc.Selection
}

func extractTitle(doc *goquery.Document) string {
	if h1 := doc.Find(`h1[class*="ltx_title"]`).First(); h1.Length() > 0 {
		return joinedText(h1.Nodes[0])
	}
	if title := doc.Find("title").First(); title.Length() > 0 {
		return joinedText(title.Nodes[0])
	}
	return ""
}

func extractAbstract(doc *goquery.Document) string {
	abstract := doc.Find(`[class*="ltx_abstract"]`).First()
	if abstract.Length() == 0 {
		return ""
	}
	return joinedText(abstract.Nodes[0])
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
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

func nodeClasses(n *html.Node) []string {
	for _, attr := range n.Attr {
		if attr.Key == "class" {
			return strings.Fields(attr.Val)
		}
	}
	return nil
}

func nodeAttr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
