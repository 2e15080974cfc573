package adapters

import (
	"strings"

	"github.com/ppiankov/casefile/internal/model"
	"golang.org/x/net/html"
)

// blockElements end a line of text
var blockElements = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "tr": true, "td": true, "th": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"section": true, "article": true, "header": true, "footer": true, "table": true,
	"blockquote": true, "pre": true, "dt": true, "dd": true, "address": true, "hr": true,
}

// skippedElements never contribute text
var skippedElements = map[string]bool{
	"script": true, "style": true, "noscript": true, "iframe": true, "head": true, "template": true,
}

// HTMLAdapter converts HTML documents, such as decisions exported from court
// databases, into plain text
type HTMLAdapter struct {
	BaseAdapter
}

// NewHTMLAdapter creates a new HTML adapter
func NewHTMLAdapter() *HTMLAdapter {
	return &HTMLAdapter{}
}

// Name returns the adapter name
func (a *HTMLAdapter) Name() string {
	return "html"
}

// CanHandle checks the html tag or sniffs the content for markup
func (a *HTMLAdapter) CanHandle(doc model.SourceDocument) bool {
	if hasTag(doc, "html") {
		return true
	}
	head := strings.ToLower(strings.TrimSpace(doc.Content))
	if len(head) > 512 {
		head = head[:512]
	}
	return strings.HasPrefix(head, "<!doctype html") ||
		strings.HasPrefix(head, "<html") ||
		strings.Contains(head, "<body") ||
		(strings.HasPrefix(head, "<") && (strings.Contains(head, "<p>") || strings.Contains(head, "<div")))
}

// Text renders the main content of the page with one line per block element
func (a *HTMLAdapter) Text(doc model.SourceDocument) (string, error) {
	root, err := a.ParseHTML(doc.Content)
	if err != nil {
		return "", err
	}

	// Focus on main content areas
	content := a.FindFirst(root, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "main"
	})
	if content == nil {
		content = a.FindFirst(root, func(n *html.Node) bool {
			return n.Type == html.ElementNode &&
				(n.Data == "article" || a.GetAttribute(n, "role") == "main")
		})
	}
	if content == nil {
		content = root
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedElements[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			buf.WriteString("\n")
		}
	}
	walk(content)

	return cleanLines(invisibles.Replace(buf.String())), nil
}
