package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/casefile/internal/model"
)

// Keyword templates for role inference from a line of context, all case-insensitive
const (
	prosecutorKeywords       = `(?i)staatsanw(?:alt|ältin|altin)(?:[^{L}]|$)|prosecutor`
	judgeKeywords            = `(?i)richter(?:in)?(?:[^{L}]|$)|vorsitzende[rn]?(?:[^{L}]|$)|senatspräsident|judge`
	lawyerKeywords           = `(?i)rechtsanw(?:alt|ältin|älte)|(?:^|[^{L}])(?:ra|rain)(?:[^{L}]|$)|(?:^|[^{L}])anw(?:alt|ältin)|verteidiger|kanzlei|counsel|attorney|lawyer`
	victimKeywords           = `(?i)opfer|geschädigt|victim`
	privatePlaintiffKeywords = `(?i)privatbeteiligt|nebenkläger|privatankläger|anschlusserklärung|private plaintiff|joint plaintiff`
	plaintiffKeywords        = `(?i)kläger|antragsteller|claimant|plaintiff`
	clientKeywords           = `(?i)mandant|auftraggeber|client`
	opposingKeywords         = `(?i)beklagt|antragsgegner|gegenpartei|gegner(?:in)?(?:[^{L}]|$)|defendant|respondent|opposing party`
	witnessKeywords          = `(?i)zeug(?:e|in|en|innen)(?:[^{L}]|$)|witness`
	suspectKeywords          = `(?i)beschuldigt|angeklagt|verdächtig|täter|accused|suspect`
	authorityKeywords        = `(?i)behörde|staatsanwaltschaft|finanzamt|magistrat|polizei|ministerium|bezirkshauptmannschaft|authority|agency`
	courtKeywords            = `(?i)gericht|senat(?:[^{L}]|$)|kammer|court|chamber|tribunal`
)

// roleRule maps a keyword family onto a role. A procedural rule resolves its
// role from the procedure type instead.
type roleRule struct {
	role       model.ActorRole
	procedural bool
	party      bool
	pattern    *regexp.Regexp
}

// buildRoleRules returns the rules in inference order. Lines often hit several families, the first wins.
func buildRoleRules(b *patternBuilder) []roleRule {
	return []roleRule{
		{role: model.RoleProsecutor, pattern: b.build(prosecutorKeywords)},
		{role: model.RoleJudge, pattern: b.build(judgeKeywords)},
		{role: model.RoleLawyer, pattern: b.build(lawyerKeywords)},
		{role: model.RoleVictim, party: true, pattern: b.build(victimKeywords)},
		{role: model.RolePrivatePlaintiff, party: true, pattern: b.build(privatePlaintiffKeywords)},
		{procedural: true, party: true, pattern: b.build(plaintiffKeywords)},
		{role: model.RoleClient, party: true, pattern: b.build(clientKeywords)},
		{role: model.RoleOpposingParty, party: true, pattern: b.build(opposingKeywords)},
		{role: model.RoleWitness, party: true, pattern: b.build(witnessKeywords)},
		{role: model.RoleSuspect, party: true, pattern: b.build(suspectKeywords)},
		{role: model.RoleAuthority, pattern: b.build(authorityKeywords)},
		{role: model.RoleCourt, pattern: b.build(courtKeywords)},
	}
}

// plaintiffRole is the role of a claimant: joined plaintiff in criminal
// proceedings, the client everywhere else
func plaintiffRole(procedure model.ProcedureType) model.ActorRole {
	if procedure == model.ProcedureCriminal {
		return model.RolePrivatePlaintiff
	}
	return model.RoleClient
}

// seedForKeyword maps a party designation in front of a name to a role seed
func seedForKeyword(keyword string, procedure model.ProcedureType) model.ActorRole {
	k := strings.ToLower(keyword)
	switch {
	case strings.HasPrefix(k, "privatbeteiligt"), strings.HasPrefix(k, "nebenkläger"), strings.HasPrefix(k, "privatankläger"):
		return model.RolePrivatePlaintiff
	case strings.HasPrefix(k, "opfer"), strings.HasPrefix(k, "geschädigt"):
		return model.RoleVictim
	case strings.HasPrefix(k, "kläger"), strings.HasPrefix(k, "antragsteller"):
		return plaintiffRole(procedure)
	case strings.HasPrefix(k, "beklagt"), strings.HasPrefix(k, "antragsgegner"):
		return model.RoleOpposingParty
	case strings.HasPrefix(k, "zeug"):
		return model.RoleWitness
	case strings.HasPrefix(k, "beschuldigt"), strings.HasPrefix(k, "angeklagt"), strings.HasPrefix(k, "verdächtig"):
		return model.RoleSuspect
	case strings.HasPrefix(k, "mandant"):
		return model.RoleClient
	}
	return model.RoleOther
}

// inferRole returns the seed when it is specific, else the first keyword family found in context
func inferRole(rules []roleRule, context string, seed model.ActorRole, procedure model.ProcedureType) model.ActorRole {
	if seed != "" && seed != model.RoleOther {
		return seed
	}
	for _, rule := range rules {
		if !rule.pattern.MatchString(context) {
			continue
		}
		if rule.procedural {
			return plaintiffRole(procedure)
		}
		return rule.role
	}
	return model.RoleOther
}

// hasDirectTitle reports whether a judge, prosecutor or lawyer is named by title in context
func hasDirectTitle(rules []roleRule, role model.ActorRole, context string) bool {
	if !role.IsProfessional() {
		return false
	}
	for _, rule := range rules {
		if rule.role == role && !rule.procedural {
			return rule.pattern.MatchString(context)
		}
	}
	return false
}

func hasPartyKeyword(rules []roleRule, context string) bool {
	for _, rule := range rules {
		if rule.party && rule.pattern.MatchString(context) {
			return true
		}
	}
	return false
}

// confidence scores one registration. Direct professional titles count most;
// the result is scaled by the source weight and kept within [0.35, 0.99].
func confidence(rules []roleRule, role model.ActorRole, context string, procedure model.ProcedureType, weight float64) float64 {
	base := 0.45
	if role != model.RoleOther {
		score := 0.55
		if hasDirectTitle(rules, role, context) {
			score += 0.25
		}
		if hasPartyKeyword(rules, context) {
			score += 0.10
		}
		if procedure != model.ProcedureUnknown && hasProcedureSignal(strings.ToLower(context), procedure) {
			score += 0.05
		}
		base = clamp(score, 0.40, 0.98)
	}
	return clamp(base*weight, 0.35, 0.99)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
