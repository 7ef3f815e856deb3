package latex

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTex(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestDetectMainTexByDocumentclass(t *testing.T) {
	dir := t.TempDir()
	writeTex(t, dir, "aaa.tex", `\section{Intro}`)
	writeTex(t, dir, "paper.tex", `\documentclass{article}`)

	got, err := DetectMainTex(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "paper.tex"), got)
}

func TestDetectMainTexFallsBackToMsTex(t *testing.T) {
	dir := t.TempDir()
	writeTex(t, dir, "aaa.tex", `\section{Intro}`)
	writeTex(t, dir, "ms.tex", `\section{Body}`)

	got, err := DetectMainTex(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ms.tex"), got)
}

func TestDetectMainTexAlphabeticalFallback(t *testing.T) {
	dir := t.TempDir()
	writeTex(t, dir, "zzz.tex", `\section{Z}`)
	writeTex(t, dir, "bbb.tex", `\section{B}`)

	got, err := DetectMainTex(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "bbb.tex"), got)
}

func TestDetectMainTexNoFiles(t *testing.T) {
	_, err := DetectMainTex(t.TempDir())
	require.ErrorIs(t, err, ErrNoTexFiles)
}

func TestExtractMetadata(t *testing.T) {
	tex := `
\documentclass{article}
\title{A Study of \textbf{Important} Things}
\author{Alice Smith\thanks{Supported by a grant.} \and Bob Jones\inst{1}}
\begin{document}
\begin{abstract}
We study things. % internal note
Results are 50\% better.
\end{abstract}
\end{document}
`
	meta := ExtractMetadata(tex)

	assert.Equal(t, "A Study of Important Things", meta.Title)
	assert.Equal(t, []string{"Alice Smith", "Bob Jones"}, meta.Authors)
	assert.Contains(t, meta.Abstract, "We study things.")
	assert.NotContains(t, meta.Abstract, "internal note")
	assert.Contains(t, meta.Abstract, `50\%`, "escaped percent is not a comment")
}

func TestExtractMetadataNestedBraces(t *testing.T) {
	meta := ExtractMetadata(`\title{Outer {Inner} Title}`)
	assert.Equal(t, "Outer Inner Title", meta.Title)
}

func TestExtractMetadataMissingFields(t *testing.T) {
	meta := ExtractMetadata(`\documentclass{article}`)
	assert.Empty(t, meta.Title)
	assert.Empty(t, meta.Authors)
	assert.Empty(t, meta.Abstract)
}

func TestExtractAuthorsDropsNoise(t *testing.T) {
	meta := ExtractMetadata(`\author{Carol White\email{c@x.org}\affiliation{Dept of CS} \and \inst{2}}`)
	assert.Equal(t, []string{"Carol White"}, meta.Authors)
}
