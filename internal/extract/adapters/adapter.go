package adapters

import (
	"strings"

	"github.com/ppiankov/casefile/internal/model"
	"golang.org/x/net/html"
)

// Adapter converts a source document into plain text for line-based extraction
type Adapter interface {
	// Name returns the adapter name
	Name() string

	// CanHandle checks if this adapter understands the document's format
	CanHandle(doc model.SourceDocument) bool

	// Text returns the document content as plain text, one logical line per line
	Text(doc model.SourceDocument) (string, error)
}

// Registry manages format adapters
type Registry struct {
	adapters []Adapter
	generic  Adapter
}

// NewRegistry creates a new adapter registry
func NewRegistry() *Registry {
	registry := &Registry{
		adapters: make([]Adapter, 0),
	}

	// Register built-in adapters
	registry.Register(NewHTMLAdapter())
	registry.Register(NewMarkdownAdapter())

	// Plain text is the fallback
	registry.generic = NewGenericAdapter()

	return registry
}

// Register registers a new adapter
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
}

// FindAdapter finds the first adapter that can handle the document
func (r *Registry) FindAdapter(doc model.SourceDocument) Adapter {
	for _, adapter := range r.adapters {
		if adapter.CanHandle(doc) {
			return adapter
		}
	}
	return r.generic
}

// Normalize returns the plain text of a document and the adapter that produced
// it. A failing adapter falls back to the raw content.
func (r *Registry) Normalize(doc model.SourceDocument) (string, string) {
	adapter := r.FindAdapter(doc)
	text, err := adapter.Text(doc)
	if err != nil {
		return doc.Content, r.generic.Name()
	}
	return text, adapter.Name()
}

// hasTag reports whether the document carries one of the tags (case-insensitive)
func hasTag(doc model.SourceDocument, tags ...string) bool {
	for _, t := range doc.Tags {
		for _, want := range tags {
			if strings.EqualFold(strings.TrimSpace(t), want) {
				return true
			}
		}
	}
	return false
}

// BaseAdapter provides common functionality for adapters
type BaseAdapter struct{}

// ParseHTML parses HTML string into a node tree
func (b *BaseAdapter) ParseHTML(htmlContent string) (*html.Node, error) {
	return html.Parse(strings.NewReader(htmlContent))
}

// GetAttribute gets an attribute value from a node
func (b *BaseAdapter) GetAttribute(n *html.Node, attrKey string) string {
	for _, attr := range n.Attr {
		if attr.Key == attrKey {
			return attr.Val
		}
	}
	return ""
}

// FindFirst finds the first node matching a predicate
func (b *BaseAdapter) FindFirst(n *html.Node, predicate func(*html.Node) bool) *html.Node {
	var result *html.Node

	var walk func(*html.Node) bool
	walk = func(node *html.Node) bool {
		if predicate(node) {
			result = node
			return true
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	walk(n)
	return result
}

// cleanLines collapses whitespace inside each line and drops blank lines
func cleanLines(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}
