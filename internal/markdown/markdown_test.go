package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
)

func convert(t *testing.T, fragment string, opts Options) string {
	t.Helper()
	md, err := ConvertFragment(fragment, opts)
	require.NoError(t, err)
	return md
}

func TestHeadingBlock(t *testing.T) {
	md := convert(t, `<h2>2 Methods</h2>`, Options{})
	assert.Equal(t, "## 2 Methods", md)
}

func TestEmptyHeadingDropped(t *testing.T) {
	md := convert(t, `<h3>   </h3>`, Options{})
	assert.Equal(t, "", md)
}

func TestParagraphInlineMarkup(t *testing.T) {
	md := convert(t, `<p>We use <em>soft</em> and <strong>hard</strong> labels.</p>`, Options{})
	assert.Equal(t, "We use *soft* and **hard** labels.", md)
}

func TestCitationLinkKeepsTextByDefault(t *testing.T) {
	md := convert(t, `<p>as shown in <a href="#bib.bib3">[3]</a>.</p>`, Options{})
	assert.Equal(t, "as shown in [3].", md)
}

func TestCitationLinkRemovedInStrictMode(t *testing.T) {
	md := convert(t, `<p>as shown in <a href="#bib.bib3">[3]</a>.</p>`,
		Options{RemoveInlineCitations: true})
	assert.Equal(t, "as shown in .", md)
}

func TestInternalPaperLink(t *testing.T) {
	fragment := `<p>see <a href="https://arxiv.org/html/2501.11120v1#S2.SS1">Section 2.1</a></p>`

	md := convert(t, fragment, Options{})
	assert.Equal(t, "see [Section 2.1](https://arxiv.org/html/2501.11120v1#S2.SS1)", md)

	md = convert(t, fragment, Options{RemoveInlineCitations: true})
	assert.Equal(t, "see Section 2.1", md)
}

func TestRegularLinkWithoutText(t *testing.T) {
	md := convert(t, `<p><a href="https://example.com"></a></p>`, Options{})
	assert.Equal(t, "[https://example.com](https://example.com)", md)
}

func TestSuperscriptFootnoteMarker(t *testing.T) {
	md := convert(t, `<p>result<sup>1</sup> holds</p>`, Options{})
	assert.Equal(t, "result^1 holds", md)

	md = convert(t, `<p>result<sup> </sup> holds</p>`, Options{})
	assert.Equal(t, "result holds", md)
}

func TestEditorialNoteWrappedInParens(t *testing.T) {
	md := convert(t, `<p>fact<span class="ltx_note">margin   comment</span></p>`, Options{})
	assert.Equal(t, "fact(margin comment)", md)
}

func TestBlockquoteCollapsedToOneLine(t *testing.T) {
	md := convert(t, "<blockquote>line one\nline two</blockquote>", Options{})
	assert.Equal(t, "> line one line two", md)
}

func TestListNesting(t *testing.T) {
	fragment := `<ul>
		<li>alpha</li>
		<li>beta
			<ul><li>beta one</li></ul>
		</li>
	</ul>`
	md := convert(t, fragment, Options{})
	assert.Equal(t, "- alpha\n- beta\n  - beta one", md)
}

func TestFigureVariants(t *testing.T) {
	md := convert(t, `<figure></figure>`, Options{})
	assert.Equal(t, "", md)

	md = convert(t, `<figure><figcaption>Loss curves</figcaption></figure>`, Options{})
	assert.Equal(t, "Figure: Loss curves", md)

	md = convert(t, `<figure><figcaption>Loss curves</figcaption><img src="x.png" alt="loss plot"></figure>`, Options{})
	assert.Equal(t, "Figure: Loss curves\nloss plot: x.png", md)

	md = convert(t, `<figure><img src="x.png"></figure>`, Options{})
	assert.Equal(t, "Image: x.png", md)
}

func TestTableRoundTrip(t *testing.T) {
	fragment := `<table class="ltx_tabular"><tr><th>A</th><th>B</th></tr><tr><td>1</td><td>2</td></tr></table>`
	md := convert(t, fragment, Options{})
	assert.Equal(t, "| A | B |\n| --- | --- |\n| 1 | 2 |", md)
}

func TestTableRaggedRowsPadded(t *testing.T) {
	fragment := `<table><tr><td>a</td><td>b</td><td>c</td></tr><tr><td>d</td></tr></table>`
	md := convert(t, fragment, Options{})
	assert.Equal(t, "| a | b | c |\n| --- | --- | --- |\n| d |  |  |", md)
}

func TestTableEmptyProducesNothing(t *testing.T) {
	md := convert(t, `<table></table>`, Options{})
	assert.Equal(t, "", md)
}

func TestTableCellLineBreaks(t *testing.T) {
	fragment := `<table><tr><td>first<br>second</td><td>x</td></tr></table>`
	md := convert(t, fragment, Options{})
	assert.Equal(t, "| first<br>second | x |\n| --- | --- |", md)
}

func TestEquationTable(t *testing.T) {
	fragment := `<table class="ltx_equationgroup"><tr><td>x = y + 1</td></tr></table>`
	md := convert(t, fragment, Options{})
	assert.Equal(t, "$$ x = y + 1 $$", md)

	md = convert(t, `<table class="ltx_eqn_align"></table>`, Options{})
	assert.Equal(t, "", md)
}

func TestMathWithAnnotation(t *testing.T) {
	fragment := `<p>We have <math><semantics><mrow><mi>x</mi></mrow>` +
		`<annotation encoding="application/x-tex">\frac{1}{2}</annotation></semantics></math> here.</p>`
	md := convert(t, fragment, Options{})
	assert.Equal(t, `We have $\frac{1}{2}$ here.`, md)
}

func TestMathWithoutAnnotationFallsBackToBareText(t *testing.T) {
	md := convert(t, `<p>value <math>x+1</math> grows</p>`, Options{})
	assert.Equal(t, "value x+1 grows", md)
}

func TestMathAnnotationCleanup(t *testing.T) {
	fragment := `<p><math><annotation encoding="application/x-tex">a\_i\^2 %%
\[x\] 50\%</annotation></math></p>`
	md := convert(t, fragment, Options{})
	assert.Contains(t, md, `a_i^2`)
	assert.Contains(t, md, `[x]`)
	// Escaped percent survives; the stray unescaped ones are dropped.
	assert.Contains(t, md, `50\%`)
	assert.NotContains(t, md, "%%")
}

func TestUnknownElementsDegradeToText(t *testing.T) {
	md := convert(t, `<p><custom-tag>inner <em>text</em></custom-tag></p>`, Options{})
	assert.Equal(t, "inner *text*", md)
}

func TestUnwantedElementsStripped(t *testing.T) {
	fragment := `<script>alert(1)</script><nav class="ltx_TOC"><h2>Contents</h2></nav><p>body</p><footer>foot</footer>`
	md := convert(t, fragment, Options{})
	assert.Equal(t, "body", md)
}

func TestBlocksJoinedWithBlankLine(t *testing.T) {
	md := convert(t, `<h2>Title</h2><p>one</p><p>two</p>`, Options{})
	assert.Equal(t, "## Title\n\none\n\ntwo", md)
}

// Closure property: serialized output is plain Markdown that re-parses
// cleanly, with no residual markup tags or arXiv class attributes.
func TestConversionClosure(t *testing.T) {
	fragment := `<section class="ltx_section">
		<h2 class="ltx_title ltx_title_section">3 Results</h2>
		<p class="ltx_p">Accuracy improves by <strong>12%</strong>,
		see <a href="#bib.bib9">[9]</a> and <em>table below</em>.</p>
		<table class="ltx_tabular" style="width:80%"><tr><th>Model</th><th>Acc</th></tr>
		<tr><td>base</td><td>0.71</td></tr></table>
		<figure><figcaption>Overview</figcaption><img src="fig1.png" alt="diagram"></figure>
	</section>`

	md := convert(t, fragment, Options{})

	assert.NotContains(t, md, "ltx_")
	assert.NotContains(t, md, "style=")
	for _, tag := range []string{"<section", "<p", "<table", "<figure", "<a ", "<em", "<strong"} {
		assert.NotContains(t, md, tag)
	}

	var rendered strings.Builder
	require.NoError(t, goldmark.Convert([]byte(md), &rendered))
	assert.Contains(t, rendered.String(), "<strong>12%</strong>")
	assert.Contains(t, rendered.String(), "<em>table below</em>")
	assert.NotContains(t, rendered.String(), "ltx_")
}
