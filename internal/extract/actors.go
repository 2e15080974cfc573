package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/ppiankov/casefile/internal/model"
)

const (
	// minNameLength drops fragments such as initials
	minNameLength = 3

	// snippetLimit caps each provenance snippet
	snippetLimit = 220

	minSourceWeight = 0.6
	maxSourceWeight = 1.25
)

// ExtractOptions parameterise one document scan
type ExtractOptions struct {
	ProcedureType model.ProcedureType // empty or unknown: detect from content
	SourceWeight  float64             // reliability weight, clamped to [0.6, 1.25]; 0 means 1.0
}

// ActorExtractor turns the text of one document into actor profiles
type ActorExtractor struct {
	patterns *Patterns
}

// NewActorExtractor creates an extractor over a Pattern Library
func NewActorExtractor(p *Patterns) *ActorExtractor {
	return &ActorExtractor{patterns: p}
}

// Extract scans content line by line and returns one profile per distinct
// (case-insensitive) name, in order of first mention
func (e *ActorExtractor) Extract(content string, opts ExtractOptions) []model.ExtractedActorProfile {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	procedure := opts.ProcedureType
	if procedure == "" || procedure == model.ProcedureUnknown {
		procedure = DetectProcedureType(content)
	}
	weight := opts.SourceWeight
	if weight == 0 {
		weight = 1.0
	}

	s := &documentScan{
		patterns:  e.patterns,
		procedure: procedure,
		weight:    clamp(weight, minSourceWeight, maxSourceWeight),
		byKey:     make(map[string]*model.ExtractedActorProfile),
	}
	for _, line := range splitLines(content) {
		s.scanLine(strings.TrimSpace(line))
	}
	return s.result()
}

// documentScan is the per-document dedup state, keyed by lower-cased name
type documentScan struct {
	patterns  *Patterns
	procedure model.ProcedureType
	weight    float64

	byKey     map[string]*model.ExtractedActorProfile
	order     []string
	lastParty string // most recent person registration, for address lookback
}

func (s *documentScan) scanLine(line string) {
	if line == "" {
		return
	}
	p := s.patterns

	// Address continuation line for the last person seen
	if s.lastParty != "" && p.IsAddressLine(line) {
		prof := s.byKey[s.lastParty]
		prof.Addresses = model.AppendUnique(prof.Addresses, p.Addresses(line)...)
	}

	var keys []string
	add := func(name string, seed model.ActorRole, organization string) {
		if key := s.register(name, line, seed, organization); key != "" {
			keys = model.AppendUnique(keys, key)
		}
	}

	for _, m := range p.RolePrefixedNames(line) {
		add(m.Text, seedForKeyword(m.Keyword, s.procedure), s.organizationAfter(line, m.End))
	}
	for _, m := range p.HonorificNames(line) {
		add(m.Text, model.RoleOther, s.organizationAfter(line, m.End))
	}
	for _, m := range p.LawyerNames(line) {
		add(m.Text, model.RoleLawyer, s.organizationAfter(line, m.End))
	}
	for _, m := range p.JudgeNames(line) {
		add(m.Text, model.RoleJudge, "")
	}
	for _, m := range p.ProsecutorNames(line) {
		add(m.Text, model.RoleProsecutor, "")
	}
	for _, name := range s.organizations(line) {
		add(name, model.RoleOrganization, name)
	}
	for _, m := range p.Authorities(line) {
		add(m.Text, model.RoleAuthority, "")
	}
	for _, m := range p.AuthorityAbbreviations(line) {
		add(m.Text, model.RoleAuthority, "")
	}
	for _, m := range p.Courts(line) {
		add(m.Text, model.RoleCourt, "")
	}
	for _, m := range p.CourtAbbreviations(line) {
		add(m.Text, model.RoleCourt, "")
	}

	s.linkRepresentation(line, keys)
}

// register records one name occurrence and returns its key, or "" when the name is too short
func (s *documentScan) register(name, context string, seed model.ActorRole, organization string) string {
	name = normalizeSpace(name)
	if utf8.RuneCountInString(name) < minNameLength {
		return ""
	}
	p := s.patterns
	role := inferRole(p.roles, context, seed, s.procedure)
	conf := confidence(p.roles, role, context, s.procedure, s.weight)

	key := strings.ToLower(name)
	prof, ok := s.byKey[key]
	if !ok {
		prof = &model.ExtractedActorProfile{Name: name, Role: role, Confidence: conf}
		s.byKey[key] = prof
		s.order = append(s.order, key)
	} else {
		if prof.Role == model.RoleOther && role != model.RoleOther {
			prof.Role = role
		}
		if conf > prof.Confidence {
			prof.Confidence = conf
		}
	}
	if prof.OrganizationName == "" && organization != "" {
		prof.OrganizationName = organization
	}

	prof.Phones = model.AppendUnique(prof.Phones, p.Phones(context)...)
	prof.Emails = model.AppendUnique(prof.Emails, p.Emails(context)...)
	prof.Addresses = model.AppendUnique(prof.Addresses, p.Addresses(context)...)
	prof.Demands = model.AppendUnique(prof.Demands, p.Demands(context)...)
	prof.ClaimAmounts = model.AppendUnique(prof.ClaimAmounts, p.Amounts(context)...)
	prof.ExtractedFromText = model.AppendUnique(prof.ExtractedFromText, truncateRunes(context, snippetLimit))

	if !prof.Role.IsInstitution() {
		s.lastParty = key
	}
	return key
}

// organizationAfter returns the organisation in a ", Firma GmbH" segment right after a name
func (s *documentScan) organizationAfter(line string, end int) string {
	rest := strings.TrimLeft(line[end:], " \t")
	if !strings.HasPrefix(rest, ",") {
		return ""
	}
	name, _ := s.patterns.OrganizationAt(strings.TrimLeft(rest[1:], " \t"))
	return name
}

// organizations scans the whole line and each comma-separated trailing segment
func (s *documentScan) organizations(line string) []string {
	var names []string
	for _, m := range s.patterns.Organizations(line) {
		names = model.AppendUnique(names, m.Text)
	}
	segments := strings.Split(line, ",")
	for _, segment := range segments[1:] {
		for _, m := range s.patterns.Organizations(strings.TrimSpace(segment)) {
			names = model.AppendUnique(names, m.Text)
		}
	}
	return names
}

// linkRepresentation connects the parties on a "vertreten durch" line with
// the counsel named there
func (s *documentScan) linkRepresentation(line string, keys []string) {
	rep := s.patterns.Representation(line)
	if rep == "" || len(keys) == 0 {
		return
	}
	repLower := strings.ToLower(rep)

	var parties []string
	for _, key := range keys {
		prof := s.byKey[key]
		if prof.Role.IsInstitution() || prof.Role.IsProfessional() || strings.Contains(repLower, key) {
			continue
		}
		if prof.RepresentedBy == "" {
			prof.RepresentedBy = rep
		}
		parties = append(parties, prof.Name)
	}
	if len(parties) == 0 {
		return
	}
	for _, key := range keys {
		prof := s.byKey[key]
		if prof.Role == model.RoleLawyer && strings.Contains(repLower, key) {
			prof.RepresentedParties = model.AppendUnique(prof.RepresentedParties, parties...)
		}
	}
}

func (s *documentScan) result() []model.ExtractedActorProfile {
	out := make([]model.ExtractedActorProfile, 0, len(s.order))
	for _, key := range s.order {
		out = append(out, *s.byKey[key])
	}
	return out
}
