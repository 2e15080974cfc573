package resolve

import (
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/casefile/internal/model"
)

// DocumentProfiles are the profiles extracted from one document
type DocumentProfiles struct {
	DocumentID string
	Profiles   []model.ExtractedActorProfile
}

// Resolve folds the profiles of all documents of a case into one actor per
// identity key. Documents are merged in the order given.
func Resolve(caseID string, docs []DocumentProfiles, now time.Time) []model.CaseActor {
	r := newResolver(caseID, now)
	for _, doc := range docs {
		for _, p := range doc.Profiles {
			r.add(doc.DocumentID, p)
		}
	}
	return r.actors()
}

// resolver owns the actor map for the duration of one Resolve call
type resolver struct {
	caseID string
	now    time.Time
	byID   map[string]*model.CaseActor
	order  []string
}

func newResolver(caseID string, now time.Time) *resolver {
	return &resolver{
		caseID: caseID,
		now:    now,
		byID:   make(map[string]*model.CaseActor),
	}
}

func (r *resolver) add(docID string, p model.ExtractedActorProfile) string {
	id := ActorID(IdentityKey(p))
	if actor, ok := r.byID[id]; ok {
		merge(actor, p, docID, r.now)
		return id
	}

	r.byID[id] = &model.CaseActor{
		ID:                 id,
		CaseID:             r.caseID,
		Name:               p.Name,
		Role:               p.Role,
		OrganizationName:   p.OrganizationName,
		RepresentedBy:      p.RepresentedBy,
		RepresentedParties: model.AppendUnique(nil, p.RepresentedParties...),
		Phones:             model.AppendUnique(nil, p.Phones...),
		Emails:             model.AppendUnique(nil, p.Emails...),
		Addresses:          model.AppendUnique(nil, p.Addresses...),
		Demands:            model.AppendUnique(nil, p.Demands...),
		ClaimAmounts:       model.AppendUnique(nil, p.ClaimAmounts...),
		Confidence:         p.Confidence,
		ExtractedFromText:  model.AppendUnique(nil, p.ExtractedFromText...),
		SourceDocIDs:       model.AppendUnique(nil, docID),
		UpdatedAt:          r.now,
	}
	r.order = append(r.order, id)
	return id
}

// merge folds a profile into an existing actor. Roles only move up the
// priority table and representation is never overwritten.
func merge(a *model.CaseActor, p model.ExtractedActorProfile, docID string, now time.Time) {
	if p.Role.Priority() > a.Role.Priority() {
		a.Role = p.Role
	}
	if p.Name != a.Name {
		a.Aliases = model.AppendUnique(a.Aliases, p.Name)
	}
	if a.OrganizationName == "" {
		a.OrganizationName = p.OrganizationName
	}
	mergeRepresentation(a, p.RepresentedBy, docID)

	a.RepresentedParties = model.AppendUnique(a.RepresentedParties, p.RepresentedParties...)
	a.Phones = model.AppendUnique(a.Phones, p.Phones...)
	a.Emails = model.AppendUnique(a.Emails, p.Emails...)
	a.Addresses = model.AppendUnique(a.Addresses, p.Addresses...)
	a.Demands = model.AppendUnique(a.Demands, p.Demands...)
	a.ClaimAmounts = model.AppendUnique(a.ClaimAmounts, p.ClaimAmounts...)
	a.ExtractedFromText = model.AppendUnique(a.ExtractedFromText, p.ExtractedFromText...)
	if p.Confidence > a.Confidence {
		a.Confidence = p.Confidence
	}
	a.SourceDocIDs = model.AppendUnique(a.SourceDocIDs, docID)
	a.UpdatedAt = now
}

// mergeRepresentation keeps the first counsel and records any different one
// as a conflict, with a note the first time each value shows up
func mergeRepresentation(a *model.CaseActor, representedBy, docID string) {
	representedBy = strings.TrimSpace(representedBy)
	switch {
	case representedBy == "":
		return
	case a.RepresentedBy == "":
		a.RepresentedBy = representedBy
		return
	case CanonicalPerson(a.RepresentedBy) == CanonicalPerson(representedBy):
		return
	}

	if model.Contains(a.RepresentedByConflicts, representedBy) {
		return
	}
	a.RepresentedByConflicts = model.AppendUnique(a.RepresentedByConflicts, a.RepresentedBy, representedBy)
	note := fmt.Sprintf("Representation conflict: document %s names %q, previously recorded %q.", docID, representedBy, a.RepresentedBy)
	if a.Notes == "" {
		a.Notes = note
	} else {
		a.Notes += "\n" + note
	}
}

func (r *resolver) actors() []model.CaseActor {
	out := make([]model.CaseActor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.byID[id])
	}
	return out
}
