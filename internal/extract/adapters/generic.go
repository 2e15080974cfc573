package adapters

import (
	"strings"

	"github.com/ppiankov/casefile/internal/model"
)

// invisibles are replaced before scanning: BOM, zero-width characters,
// no-break spaces and soft hyphens
var invisibles = strings.NewReplacer(
	"\ufeff", "",
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\u00ad", "",
	"\u00a0", " ",
	"\u202f", " ",
	"\t", " ",
	"\r\n", "\n",
	"\r", "\n",
)

// GenericAdapter is the fallback adapter for plain text
type GenericAdapter struct{}

// NewGenericAdapter creates a new plain text adapter
func NewGenericAdapter() *GenericAdapter {
	return &GenericAdapter{}
}

// Name returns the adapter name
func (a *GenericAdapter) Name() string {
	return "plain"
}

// CanHandle always returns true (fallback adapter)
func (a *GenericAdapter) CanHandle(doc model.SourceDocument) bool {
	return true
}

// Text normalises line endings and invisible characters
func (a *GenericAdapter) Text(doc model.SourceDocument) (string, error) {
	return invisibles.Replace(doc.Content), nil
}
