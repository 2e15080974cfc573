package adapters

import (
	"regexp"
	"strings"

	"github.com/ppiankov/casefile/internal/model"
)

var (
	mdHeading    = regexp.MustCompile(`^\s{0,3}#{1,6}\s+`)
	mdQuote      = regexp.MustCompile(`^\s*>\s?`)
	mdBullet     = regexp.MustCompile(`^\s*[-*+]\s+`)
	mdRule       = regexp.MustCompile(`^\s*(?:[-*_]\s*){3,}$`)
	mdLink       = regexp.MustCompile(`!?\[([^\]]*)\]\([^)]*\)`)
	mdEmphasis   = regexp.MustCompile(`\*\*|__|~~|` + "`")
	mdFence      = regexp.MustCompile("^\\s*(?:```|~~~)")
	mdTableRule  = regexp.MustCompile(`^\s*\|?\s*:?-{3,}`)
	mdTableCells = regexp.MustCompile(`\s*\|\s*`)
)

// MarkdownAdapter strips Markdown markup, keeping one line per source line
type MarkdownAdapter struct{}

// NewMarkdownAdapter creates a new Markdown adapter
func NewMarkdownAdapter() *MarkdownAdapter {
	return &MarkdownAdapter{}
}

// Name returns the adapter name
func (a *MarkdownAdapter) Name() string {
	return "markdown"
}

// CanHandle checks the markdown tag or a leading heading
func (a *MarkdownAdapter) CanHandle(doc model.SourceDocument) bool {
	if hasTag(doc, "markdown", "md") {
		return true
	}
	first := strings.TrimSpace(invisibles.Replace(doc.Content))
	if i := strings.IndexByte(first, '\n'); i >= 0 {
		first = first[:i]
	}
	return mdHeading.MatchString(first)
}

// Text removes headings, quotes, bullets, emphasis, links and table pipes
func (a *MarkdownAdapter) Text(doc model.SourceDocument) (string, error) {
	var out []string
	for _, line := range strings.Split(invisibles.Replace(doc.Content), "\n") {
		if mdFence.MatchString(line) || mdRule.MatchString(line) || mdTableRule.MatchString(line) {
			continue
		}
		line = mdHeading.ReplaceAllString(line, "")
		line = mdQuote.ReplaceAllString(line, "")
		line = mdBullet.ReplaceAllString(line, "")
		line = mdLink.ReplaceAllString(line, "$1")
		line = mdEmphasis.ReplaceAllString(line, "")
		if strings.Contains(line, "|") {
			line = strings.Trim(mdTableCells.ReplaceAllString(line, ", "), ", ")
		}
		out = append(out, line)
	}
	return cleanLines(strings.Join(out, "\n")), nil
}
