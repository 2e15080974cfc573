package model

import "time"

// ActorRole classifies the part an actor plays in a proceeding
type ActorRole string

const (
	RoleJudge            ActorRole = "judge"
	RoleProsecutor       ActorRole = "prosecutor"
	RoleLawyer           ActorRole = "lawyer"
	RoleCourt            ActorRole = "court"
	RoleAuthority        ActorRole = "authority"
	RoleVictim           ActorRole = "victim"
	RolePrivatePlaintiff ActorRole = "private_plaintiff"
	RoleWitness          ActorRole = "witness"
	RoleSuspect          ActorRole = "suspect"
	RoleClient           ActorRole = "client"
	RoleOpposingParty    ActorRole = "opposing_party"
	RoleOrganization     ActorRole = "organization"
	RoleEmployee         ActorRole = "employee"
	RoleOther            ActorRole = "other"
)

// rolePriority orders roles by how specific they are. Merges only move up.
var rolePriority = map[ActorRole]int{
	RoleJudge:            100,
	RoleProsecutor:       95,
	RoleLawyer:           90,
	RoleCourt:            85,
	RoleAuthority:        80,
	RoleVictim:           75,
	RolePrivatePlaintiff: 72,
	RoleWitness:          70,
	RoleSuspect:          68,
	RoleClient:           65,
	RoleOpposingParty:    62,
	RoleOrganization:     60,
	RoleEmployee:         50,
	RoleOther:            10,
}

// Priority returns the merge priority of the role (unknown roles rank lowest)
func (r ActorRole) Priority() int {
	if p, ok := rolePriority[r]; ok {
		return p
	}
	return 0
}

// IsInstitution reports whether the role identifies an institution rather than a person
func (r ActorRole) IsInstitution() bool {
	switch r {
	case RoleOrganization, RoleAuthority, RoleCourt:
		return true
	default:
		return false
	}
}

// IsProfessional reports whether the role is a legal professional acting for others
func (r ActorRole) IsProfessional() bool {
	switch r {
	case RoleJudge, RoleProsecutor, RoleLawyer:
		return true
	default:
		return false
	}
}

// ProcedureType is a coarse classification of the proceeding a document belongs to
type ProcedureType string

const (
	ProcedureCriminal       ProcedureType = "criminal"
	ProcedureCivil          ProcedureType = "civil"
	ProcedureAdministrative ProcedureType = "administrative"
	ProcedureLabor          ProcedureType = "labor"
	ProcedureUnknown        ProcedureType = "unknown"
)

// ParseProcedureType maps a string onto a ProcedureType, returning false for unknown input
func ParseProcedureType(s string) (ProcedureType, bool) {
	switch ProcedureType(s) {
	case ProcedureCriminal, ProcedureCivil, ProcedureAdministrative, ProcedureLabor, ProcedureUnknown:
		return ProcedureType(s), true
	}
	return ProcedureUnknown, false
}

// ExtractedActorProfile is one actor as seen in a single document scan
type ExtractedActorProfile struct {
	Name               string    `json:"name"`
	Role               ActorRole `json:"role"`
	OrganizationName   string    `json:"organizationName,omitempty"`
	RepresentedBy      string    `json:"representedBy,omitempty"`
	RepresentedParties []string  `json:"representedParties,omitempty"`
	Phones             []string  `json:"phones,omitempty"`
	Emails             []string  `json:"emails,omitempty"`
	Addresses          []string  `json:"addresses,omitempty"`
	Demands            []string  `json:"demands,omitempty"`
	ClaimAmounts       []string  `json:"claimAmounts,omitempty"`
	Confidence         float64   `json:"confidence"`
	ExtractedFromText  []string  `json:"extractedFromText"`
}

// CaseActor is the identity-merged, case-scoped view of an actor
type CaseActor struct {
	ID                     string    `json:"id"`
	CaseID                 string    `json:"caseId"`
	Name                   string    `json:"name"`
	Role                   ActorRole `json:"role"`
	Aliases                []string  `json:"aliases,omitempty"`
	OrganizationName       string    `json:"organizationName,omitempty"`
	RepresentedBy          string    `json:"representedBy,omitempty"`
	RepresentedByConflicts []string  `json:"representedByConflicts,omitempty"`
	RepresentedParties     []string  `json:"representedParties,omitempty"`
	Phones                 []string  `json:"phones,omitempty"`
	Emails                 []string  `json:"emails,omitempty"`
	Addresses              []string  `json:"addresses,omitempty"`
	Demands                []string  `json:"demands,omitempty"`
	ClaimAmounts           []string  `json:"claimAmounts,omitempty"`
	Confidence             float64   `json:"confidence"`
	ExtractedFromText      []string  `json:"extractedFromText"`
	SourceDocIDs           []string  `json:"sourceDocIds"`
	Notes                  string    `json:"notes,omitempty"`
	UpdatedAt              time.Time `json:"updatedAt"`
}
