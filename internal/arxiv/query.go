// Package arxiv parses user input (paper IDs or arXiv URLs) into
// normalized queries with the URLs each pipeline stage needs.
package arxiv

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// Query holds a parsed arXiv identifier and its derived URLs.
type Query struct {
	InputText string
	ArxivID   string // e.g. "2501.11120v1" or "cs/9901001"
	Version   string // e.g. "v1", "" when unspecified
	HTMLURL   string
	Ar5ivURL  string
	LatexURL  string
	PDFURL    string
	AbsURL    string
}

var (
	modernIDRe = regexp.MustCompile(`^\d{4}\.\d{4,5}(v\d+)?$`)
	legacyIDRe = regexp.MustCompile(`^[a-z\-]+(\.[A-Z]{2})?/\d{7}(v\d+)?$`)
	versionRe  = regexp.MustCompile(`v\d+$`)
)

// allowedHosts are the only hosts accepted in URL input. Anything else is
// rejected to prevent fetching attacker-controlled pages.
var allowedHosts = map[string]bool{
	"arxiv.org":            true,
	"www.arxiv.org":        true,
	"export.arxiv.org":     true,
	"ar5iv.org":            true,
	"www.ar5iv.org":        true,
	"ar5iv.labs.arxiv.org": true,
}

// ParseInput accepts a bare arXiv ID ("2501.11120v1", "cs/9901001v2") or
// an arXiv URL (abs/pdf/html/e-print forms) and returns a normalized
// Query.
func ParseInput(input string) (*Query, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty arXiv input")
	}

	id := input
	if strings.Contains(input, "://") {
		extracted, err := idFromURL(input)
		if err != nil {
			return nil, err
		}
		id = extracted
	}

	if !modernIDRe.MatchString(id) && !legacyIDRe.MatchString(id) {
		return nil, fmt.Errorf("unrecognized arXiv identifier: %q", id)
	}

	return &Query{
		InputText: input,
		ArxivID:   id,
		Version:   versionRe.FindString(id),
		HTMLURL:   "https://arxiv.org/html/" + id,
		Ar5ivURL:  "https://ar5iv.labs.arxiv.org/html/" + id,
		LatexURL:  "https://arxiv.org/e-print/" + id,
		PDFURL:    "https://arxiv.org/pdf/" + id,
		AbsURL:    "https://arxiv.org/abs/" + id,
	}, nil
}

func idFromURL(input string) (string, error) {
	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	if u.User != nil {
		return "", fmt.Errorf("URLs with credentials are not allowed")
	}
	host := strings.ToLower(u.Hostname())
	if !allowedHosts[host] {
		return "", fmt.Errorf("unsupported host: %q", host)
	}

	path := strings.Trim(u.Path, "/")
	segments := strings.SplitN(path, "/", 2)
	if len(segments) != 2 {
		return "", fmt.Errorf("no arXiv identifier in URL path: %q", u.Path)
	}

	kind, id := segments[0], segments[1]
	switch kind {
	case "abs", "pdf", "html", "e-print":
	default:
		return "", fmt.Errorf("unrecognized arXiv URL form: %q", kind)
	}

	id = strings.TrimSuffix(id, ".pdf")
	return strings.Trim(id, "/"), nil
}
