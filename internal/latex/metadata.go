package latex

import (
	"regexp"
	"strings"
)

// Metadata holds what can be recovered from a LaTeX preamble without a
// full TeX engine.
type Metadata struct {
	Title    string
	Authors  []string
	Abstract string
}

var (
	titleCmdRe    = regexp.MustCompile(`\\title\s*\{`)
	authorCmdRe   = regexp.MustCompile(`\\author\s*\{`)
	abstractEnvRe = regexp.MustCompile(`(?s)\\begin\{abstract\}(.*?)\\end\{abstract\}`)
	andSplitRe    = regexp.MustCompile(`\\and\b`)
	lineCommentRe = regexp.MustCompile(`(?m)^\s*%.*$`)
	// bareCommandRe matches a command and the character after it; the
	// replacer keeps commands that take an argument.
	bareCommandRe = regexp.MustCompile(`\\[a-zA-Z]+\s*[{\[]?`)
	whitespaceRe  = regexp.MustCompile(`\s+`)
)

// unwrapCommands lists formatting commands whose argument should be kept
// as plain text.
var unwrapCommands = []string{"textbf", "textit", "emph", "textrm", "textsf", "texttt", "textsc"}

// removeCommands lists commands whose argument is noise in an author
// block.
var removeCommands = []string{"thanks", "inst", "textsuperscript", "footnote", "affiliation", "email"}

// ExtractMetadata pulls title, authors, and abstract from raw LaTeX
// source. Missing fields are left zero-valued.
func ExtractMetadata(tex string) Metadata {
	return Metadata{
		Title:    extractTitle(tex),
		Authors:  extractAuthors(tex),
		Abstract: extractAbstract(tex),
	}
}

func extractTitle(tex string) string {
	m := titleCmdRe.FindStringIndex(tex)
	if m == nil {
		return ""
	}
	content, ok := bracedContent(tex, m[1]-1)
	if !ok {
		return ""
	}
	return cleanText(content)
}

func extractAuthors(tex string) []string {
	m := authorCmdRe.FindStringIndex(tex)
	if m == nil {
		return nil
	}
	content, ok := bracedContent(tex, m[1]-1)
	if !ok {
		return nil
	}

	var authors []string
	for _, raw := range andSplitRe.Split(content, -1) {
		if cleaned := cleanAuthorEntry(raw); cleaned != "" {
			authors = append(authors, cleaned)
		}
	}
	return authors
}

func extractAbstract(tex string) string {
	m := abstractEnvRe.FindStringSubmatch(tex)
	if m == nil {
		return ""
	}
	return cleanText(m[1])
}

func cleanAuthorEntry(raw string) string {
	text := raw
	for _, cmd := range removeCommands {
		text = removeCommandWithBraces(text, cmd)
	}
	text = strings.ReplaceAll(text, `\\`, " ")
	return cleanText(text)
}

// cleanText strips LaTeX markup while preserving readable content.
func cleanText(text string) string {
	result := lineCommentRe.ReplaceAllString(text, "")
	result = stripInlineComments(result)

	for _, cmd := range unwrapCommands {
		result = unwrapCommand(result, cmd)
	}

	result = bareCommandRe.ReplaceAllStringFunc(result, func(m string) string {
		if strings.HasSuffix(m, "{") || strings.HasSuffix(m, "[") {
			return m
		}
		return " "
	})

	result = removeUnescapedBraces(result)
	result = whitespaceRe.ReplaceAllString(result, " ")
	return strings.TrimSpace(result)
}

// stripInlineComments removes everything from an unescaped % to the end
// of each line.
func stripInlineComments(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		for j := 0; j < len(line); j++ {
			if line[j] == '%' && (j == 0 || line[j-1] != '\\') {
				lines[i] = line[:j]
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

// removeUnescapedBraces drops { and } that are not preceded by a
// backslash, leaving escaped math braces intact.
func removeUnescapedBraces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if (s[i] == '{' || s[i] == '}') && (i == 0 || s[i-1] != '\\') {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// bracedContent returns the text inside the brace pair that opens at
// pos, handling nested braces.
func bracedContent(s string, pos int) (string, bool) {
	end, ok := matchingBrace(s, pos)
	if !ok {
		return "", false
	}
	return s[pos+1 : end], true
}

// matchingBrace finds the closing brace matching the opener at pos.
func matchingBrace(s string, pos int) (int, bool) {
	if pos >= len(s) || s[pos] != '{' {
		return 0, false
	}
	depth := 0
	for i := pos; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

// removeCommandWithBraces deletes every \command{...} occurrence,
// including nested braces in the argument.
func removeCommandWithBraces(text, command string) string {
	pattern := regexp.MustCompile(`\\` + command + `\s*\{`)
	result := text
	for {
		m := pattern.FindStringIndex(result)
		if m == nil {
			break
		}
		end, ok := matchingBrace(result, m[1]-1)
		if !ok {
			break
		}
		result = result[:m[0]] + result[end+1:]
	}
	return result
}

// unwrapCommand replaces \command{content} with content.
func unwrapCommand(text, command string) string {
	pattern := regexp.MustCompile(`\\` + command + `\s*\{`)
	result := text
	for {
		m := pattern.FindStringIndex(result)
		if m == nil {
			break
		}
		end, ok := matchingBrace(result, m[1]-1)
		if !ok {
			break
		}
		content := result[m[1]:end]
		result = result[:m[0]] + content + result[end+1:]
	}
	return result
}
