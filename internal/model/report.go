package model

// Signal records one scoring rule that fired, with the data it used
type Signal struct {
	Type        SignalType             `json:"type"`           // Rule classification
	Severity    SignalSeverity         `json:"severity"`       // info, warning, critical
	Description string                 `json:"description"`    // Human-readable description
	Delta       float64                `json:"delta"`          // Weight adjustment applied
	Data        map[string]interface{} `json:"data,omitempty"` // Transparent scoring data
}

// SignalType classifies the reliability rule behind a signal
type SignalType string

const (
	SignalHighAuthorityTitle  SignalType = "high_authority_title" // Judgment, order, indictment ...
	SignalNamedInstitution    SignalType = "named_institution"    // Named court or prosecutor in the header
	SignalFormalSubmission    SignalType = "formal_submission"    // Statement of claim, appeal, brief
	SignalInformalTitle       SignalType = "informal_title"       // Note, memo, draft, chat
	SignalCorrespondenceTitle SignalType = "correspondence_title" // Email, letter
	SignalOCRNoise            SignalType = "ocr_noise"            // Low letter ratio
	SignalOfficialTag         SignalType = "official_tag"         // Tagged as authority/official
	SignalDraftTag            SignalType = "draft_tag"            // Tagged as draft/note
)

// SignalSeverity indicates the direction and weight of the signal
type SignalSeverity string

const (
	SeverityInfo     SignalSeverity = "info"
	SeverityWarning  SignalSeverity = "warning"
	SeverityCritical SignalSeverity = "critical"
)
