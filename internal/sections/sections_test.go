package sections

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleForest() []*Node {
	return []*Node{
		{
			Title: "1 Introduction",
			Level: 2,
			Children: []*Node{
				{Title: "1.1 Motivation", Level: 3},
				{Title: "1.2 Contributions", Level: 3},
			},
		},
		{
			Title: "2 Methods",
			Level: 2,
			Children: []*Node{
				{Title: "2.1 Setup", Level: 3},
			},
		},
		{Title: "References", Level: 2},
	}
}

func TestNormalizeTitle(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"1. Introduction", "introduction"},
		{"A.1 Proofs", "proofs"},
		{"  2   Related    Work ", "work"},
		{"References", "references"},
		{"IV Experiments", "experiments"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NormalizeTitle(c.in), "input %q", c.in)
	}
}

func TestFilterEmptySetIsNoOp(t *testing.T) {
	forest := sampleForest()
	got := Filter(forest, ModeExclude, nil)
	assert.Equal(t, forest, got)

	got = Filter(forest, ModeInclude, []string{"  ", ""})
	assert.Equal(t, forest, got)
}

func TestFilterExcludeRemovesAtAnyDepth(t *testing.T) {
	forest := Filter(sampleForest(), ModeExclude, []string{"Motivation", "References"})

	require.Len(t, forest, 2)
	assert.Equal(t, "1 Introduction", forest[0].Title)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, "1.2 Contributions", forest[0].Children[0].Title)

	var walk func(nodes []*Node)
	walk = func(nodes []*Node) {
		for _, n := range nodes {
			norm := NormalizeTitle(n.Title)
			assert.NotEqual(t, "motivation", norm)
			assert.NotEqual(t, "references", norm)
			walk(n.Children)
		}
	}
	walk(forest)
}

func TestFilterIncludeKeepsMatchWithChildren(t *testing.T) {
	forest := Filter(sampleForest(), ModeInclude, []string{"Introduction"})

	require.Len(t, forest, 1)
	assert.Equal(t, "1 Introduction", forest[0].Title)
	// A matched node keeps all of its children unfiltered.
	assert.Len(t, forest[0].Children, 2)
}

func TestFilterIncludeKeepsAncestorContainer(t *testing.T) {
	forest := Filter(sampleForest(), ModeInclude, []string{"Setup"})

	require.Len(t, forest, 1)
	assert.Equal(t, "2 Methods", forest[0].Title)
	require.Len(t, forest[0].Children, 1)
	assert.Equal(t, "2.1 Setup", forest[0].Children[0].Title)
}

func TestFilterIncludeDropsUnrelated(t *testing.T) {
	forest := Filter(sampleForest(), ModeInclude, []string{"No Such Section"})
	assert.Empty(t, forest)
}

func TestFilterIdempotent(t *testing.T) {
	once := Filter(sampleForest(), ModeExclude, []string{"Methods"})
	twice := Filter(once, ModeExclude, []string{"Methods"})
	assert.Equal(t, once, twice)

	onceInc := Filter(sampleForest(), ModeInclude, []string{"Introduction"})
	twiceInc := Filter(onceInc, ModeInclude, []string{"Introduction"})
	assert.Equal(t, onceInc, twiceInc)
}

func TestCount(t *testing.T) {
	assert.Equal(t, 6, Count(sampleForest()))
	assert.Equal(t, 0, Count(nil))
}
