package collect

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ppiankov/casefile/internal/model"
)

// excerptLength is the number of characters kept from the start of a document
const excerptLength = 280

// entityNamespace scopes the name-based ids of deadlines, issues and memory events
var entityNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/ppiankov/casefile"))

// EntityID derives a stable id from the case, the document and a discriminator
func EntityID(caseID, docID string, parts ...string) string {
	name := strings.Join(append([]string{caseID, docID}, parts...), "|")
	return uuid.NewSHA1(entityNamespace, []byte(name)).String()
}

// Excerpt takes the first 280 characters of content and collapses whitespace
func Excerpt(content string) string {
	r := []rune(content)
	if len(r) > excerptLength {
		r = r[:excerptLength]
	}
	return strings.Join(strings.Fields(string(r)), " ")
}

// BuildMemoryEvent logs the ingestion of one document
func BuildMemoryEvent(caseID string, doc model.SourceDocument, excerpt string, now time.Time) model.CaseMemoryEvent {
	return model.CaseMemoryEvent{
		ID:           EntityID(caseID, doc.ID, "memory"),
		CaseID:       caseID,
		Summary:      fmt.Sprintf("Document %q ingested: %s", doc.Title, excerpt),
		SourceDocIDs: []string{doc.ID},
		CreatedAt:    now,
	}
}
