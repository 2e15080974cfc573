package collect

import "github.com/ppiankov/casefile/internal/model"

// BuildDeadline creates the open, critical deadline for an instant found in a document
func BuildDeadline(caseID string, doc model.SourceDocument, dueAt string) model.CaseDeadline {
	return model.CaseDeadline{
		ID:                       EntityID(caseID, doc.ID, "deadline", dueAt),
		CaseID:                   caseID,
		Title:                    "Deadline from " + doc.Title,
		DueAt:                    dueAt,
		SourceDocIDs:             []string{doc.ID},
		Status:                   model.DeadlineOpen,
		Priority:                 model.PriorityCritical,
		ReminderOffsetsInMinutes: append([]int(nil), model.DefaultReminderOffsets...),
	}
}
