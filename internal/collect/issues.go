package collect

import (
	"strings"

	"github.com/ppiankov/casefile/internal/model"
)

// issueRule raises one issue when any of its keywords occurs in a document
type issueRule struct {
	category    model.IssueCategory
	keywords    []string
	title       string
	description string
	priority    model.Priority
	confidence  float64
}

var issueRules = []issueRule{
	{
		category:    model.IssueContradiction,
		keywords:    []string{"widerspruch"},
		title:       "Possible contradiction",
		description: "The document mentions a contradiction (Widerspruch) that should be checked against the other case documents.",
		priority:    model.PriorityHigh,
		confidence:  0.72,
	},
	{
		category:    model.IssueLiability,
		keywords:    []string{"amtshaftung", "amtspflichtverletzung"},
		title:       "Potential state liability",
		description: "The document mentions official liability (Amtshaftung) or a breach of official duty.",
		priority:    model.PriorityCritical,
		confidence:  0.70,
	},
}

// DetectIssues applies the issue rules to a document's content
func DetectIssues(content string) []model.IssueHit {
	lower := strings.ToLower(content)
	var hits []model.IssueHit
	for _, rule := range issueRules {
		for _, k := range rule.keywords {
			if !strings.Contains(lower, k) {
				continue
			}
			hits = append(hits, model.IssueHit{
				Category:    rule.category,
				Title:       rule.title,
				Description: rule.description,
				Priority:    rule.priority,
				Confidence:  rule.confidence,
				Keyword:     k,
			})
			break
		}
	}
	return hits
}

// BuildIssue turns a hit on a document into a case issue with a deterministic id
func BuildIssue(caseID, docID, docTitle string, hit model.IssueHit) model.CaseIssue {
	title := hit.Title
	if docTitle != "" {
		title += " in " + docTitle
	}
	return model.CaseIssue{
		ID:           EntityID(caseID, docID, "issue", string(hit.Category)),
		CaseID:       caseID,
		Category:     hit.Category,
		Title:        title,
		Description:  hit.Description,
		Priority:     hit.Priority,
		Confidence:   hit.Confidence,
		SourceDocIDs: []string{docID},
	}
}
