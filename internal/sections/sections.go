// Package sections defines the paper outline tree and title-based filtering.
package sections

import (
	"regexp"
	"strings"
)

// Node is a recursive section in the paper's logical outline.
type Node struct {
	Title       string  // Heading text, whitespace-normalized
	Level       int     // Heading depth, 1..6
	Anchor      string  // Stable id for cross-referencing ("" if none)
	RawFragment string  // Markup owned exclusively by this node, excluding subsections ("" if none)
	Markdown    string  // Serialized body ("" until populated)
	Children    []*Node // Subsections in document order
}

// Count returns the total number of nodes in the forest, recursively.
func Count(nodes []*Node) int {
	total := 0
	for _, n := range nodes {
		total++
		total += Count(n.Children)
	}
	return total
}

// FilterMode selects include or exclude semantics for Filter.
type FilterMode string

const (
	ModeInclude FilterMode = "include"
	ModeExclude FilterMode = "exclude"
)

var (
	enumPrefixRe = regexp.MustCompile(`^[\dA-Za-z.\-]+\s+`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

// NormalizeTitle prepares a section title for comparison: lowercase,
// a leading enumeration token (e.g. "1." or "A.1") stripped, whitespace
// collapsed.
func NormalizeTitle(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	title = enumPrefixRe.ReplaceAllString(title, "")
	return spaceRe.ReplaceAllString(title, " ")
}

// Filter prunes a section forest by normalized title.
//
// In exclude mode, nodes whose title matches a target are removed along
// with their subtrees; everything else is kept with children filtered
// recursively. In include mode, a matching node is kept with all of its
// children unfiltered; a non-matching node survives only if some
// descendant matches, in which case it is kept as a container around the
// surviving children.
//
// An empty target set returns the forest unchanged.
func Filter(nodes []*Node, mode FilterMode, selected []string) []*Node {
	targets := make(map[string]bool)
	for _, title := range selected {
		if strings.TrimSpace(title) == "" {
			continue
		}
		targets[NormalizeTitle(title)] = true
	}
	if len(targets) == 0 {
		return nodes
	}
	return filterNodes(nodes, mode, targets)
}

func filterNodes(nodes []*Node, mode FilterMode, targets map[string]bool) []*Node {
	var result []*Node
	for _, node := range nodes {
		matched := targets[NormalizeTitle(node.Title)]
		if mode == ModeInclude {
			if matched {
				result = append(result, node)
				continue
			}
			children := filterNodes(node.Children, mode, targets)
			if len(children) > 0 {
				node.Children = children
				result = append(result, node)
			}
			continue
		}
		if matched {
			continue
		}
		node.Children = filterNodes(node.Children, mode, targets)
		result = append(result, node)
	}
	return result
}
