package model

import "time"

// SourceDocument is a raw legal document handed to ingestion
type SourceDocument struct {
	ID      string   `json:"id" yaml:"id"`
	Title   string   `json:"title" yaml:"title"`
	Content string   `json:"content" yaml:"-"`
	Tags    []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// DeadlineStatus tracks a deadline through its lifecycle
type DeadlineStatus string

const (
	DeadlineOpen DeadlineStatus = "open"
	DeadlineDone DeadlineStatus = "done"
)

// Priority is shared by deadlines and issues
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// DefaultReminderOffsets are the reminder offsets (minutes before due) of every extracted deadline:
// 14 days, 7 days, 3 days, 1 day, 3 hours, 1 hour
var DefaultReminderOffsets = []int{20160, 10080, 4320, 1440, 180, 60}

// CaseDeadline is a dated obligation found in a document
type CaseDeadline struct {
	ID                       string         `json:"id"`
	CaseID                   string         `json:"caseId"`
	Title                    string         `json:"title"`
	DueAt                    string         `json:"dueAt"` // ISO-8601 instant
	SourceDocIDs             []string       `json:"sourceDocIds"`
	Status                   DeadlineStatus `json:"status"`
	Priority                 Priority       `json:"priority"`
	ReminderOffsetsInMinutes []int          `json:"reminderOffsetsInMinutes"`
}

// IssueCategory classifies a flagged issue
type IssueCategory string

const (
	IssueContradiction IssueCategory = "contradiction"
	IssueLiability     IssueCategory = "liability"
)

// CaseIssue is a keyword-triggered flag raised on a document
type CaseIssue struct {
	ID           string        `json:"id"`
	CaseID       string        `json:"caseId"`
	Category     IssueCategory `json:"category"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Priority     Priority      `json:"priority"`
	Confidence   float64       `json:"confidence"`
	SourceDocIDs []string      `json:"sourceDocIds"`
}

// CaseMemoryEvent logs that a document was ingested, with an excerpt
type CaseMemoryEvent struct {
	ID           string    `json:"id"`
	CaseID       string    `json:"caseId"`
	Summary      string    `json:"summary"`
	SourceDocIDs []string  `json:"sourceDocIds"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CaseFile is the aggregate root of a case
type CaseFile struct {
	ID             string        `json:"id"`
	WorkspaceID    string        `json:"workspaceId"`
	Title          string        `json:"title"`
	Tags           []string      `json:"tags,omitempty"`
	ExternalRef    string        `json:"externalRef,omitempty"`
	ProcedureType  ProcedureType `json:"procedureType"`
	DocumentIDs    []string      `json:"documentIds"`
	ActorIDs       []string      `json:"actorIds"`
	IssueIDs       []string      `json:"issueIds"`
	DeadlineIDs    []string      `json:"deadlineIds"`
	MemoryEventIDs []string      `json:"memoryEventIds"`
	Summary        string        `json:"summary"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}

// CaseIngestionResult is everything one ingestion call produced
type CaseIngestionResult struct {
	CaseFile     CaseFile          `json:"caseFile"`
	Actors       []CaseActor       `json:"actors"`
	Issues       []CaseIssue       `json:"issues"`
	Deadlines    []CaseDeadline    `json:"deadlines"`
	MemoryEvents []CaseMemoryEvent `json:"memoryEvents"`
}

// DocumentScan is the per-document output of the scan phase, before cross-document resolution
type DocumentScan struct {
	DocumentID    string                  `json:"documentId"`
	Weight        float64                 `json:"weight"`
	Reliability   []Signal                `json:"reliability,omitempty"`
	ProcedureType ProcedureType           `json:"procedureType"`
	Profiles      []ExtractedActorProfile `json:"profiles"`
	Deadlines     []string                `json:"deadlines,omitempty"` // ISO-8601 instants
	Issues        []IssueHit              `json:"issues,omitempty"`
	Excerpt       string                  `json:"excerpt"`
}

// IssueHit is an issue rule that fired on a document, before ids are assigned
type IssueHit struct {
	Category    IssueCategory `json:"category"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Priority    Priority      `json:"priority"`
	Confidence  float64       `json:"confidence"`
	Keyword     string        `json:"keyword"`
}
