package extract

import (
	"strings"

	"github.com/ppiankov/casefile/internal/model"
)

// procedureFamily is one procedure type with its keyword groups. Each group
// scores at most one point, however often its keywords occur.
type procedureFamily struct {
	procedure model.ProcedureType
	groups    [][]string
}

// procedureFamilies in tie-break order
var procedureFamilies = []procedureFamily{
	{
		procedure: model.ProcedureCriminal,
		groups: [][]string{
			{"staatsanwalt", "staatsanwältin", "anklage", "strafantrag", "stpo", "stgb", "strafverfahren",
				"strafanzeige", "ermittlungsverfahren", "prosecutor", "indictment"},
			{"opfer", "privatbeteiligt", "nebenkläger", "geschädigte", "victim"},
		},
	},
	{
		procedure: model.ProcedureCivil,
		groups: [][]string{
			{"vertrag", "schadenersatz", "schadensersatz", "zpo", "abgb", "bgb", "kaufpreis", "contract", "damages"},
			{"kläger", "klägerin", "beklagte", "klagebegehren", "plaintiff", "defendant"},
		},
	},
	{
		procedure: model.ProcedureAdministrative,
		groups: [][]string{
			{"verwaltungsgericht", "bescheid", "behörde", "verwaltungsverfahren", "administrative"},
		},
	},
	{
		procedure: model.ProcedureLabor,
		groups: [][]string{
			{"arbeitsgericht", "kündigung", "betriebsrat", "arbeitsverhältnis", "dienstverhältnis", "entlassung",
				"labor court", "employment"},
		},
	},
}

// DetectProcedureType classifies text as criminal, civil, administrative or
// labor. Ties at the top go to the family listed first; no signal at all
// yields unknown.
func DetectProcedureType(text string) model.ProcedureType {
	if strings.TrimSpace(text) == "" {
		return model.ProcedureUnknown
	}
	lower := strings.ToLower(text)

	best, bestScore := model.ProcedureUnknown, 0
	for _, family := range procedureFamilies {
		score := 0
		for _, group := range family.groups {
			if containsAny(lower, group) {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = family.procedure, score
		}
	}
	return best
}

// hasProcedureSignal reports whether the lower-cased line carries a keyword
// of the given procedure family
func hasProcedureSignal(lower string, procedure model.ProcedureType) bool {
	for _, family := range procedureFamilies {
		if family.procedure != procedure {
			continue
		}
		for _, group := range family.groups {
			if containsAny(lower, group) {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
