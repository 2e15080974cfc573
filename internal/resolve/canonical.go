package resolve

import (
	"strings"
	"unicode"

	"github.com/ppiankov/casefile/internal/model"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// personTokens are honorifics and role titles that do not identify a person
var personTokens = map[string]bool{
	"herr": true, "herrn": true, "frau": true, "dr": true, "prof": true, "mag": true,
	"ra": true, "rain": true, "rechtsanwalt": true, "rechtsanwaltin": true,
	"richter": true, "richterin": true, "staatsanwalt": true, "staatsanwaltin": true,
}

// institutionCodes shorten common institution words
var institutionCodes = map[string]string{
	"staatsanwaltschaft": "sta",
	"landesgericht":      "lg",
	"oberlandesgericht":  "olg",
	"amtsgericht":        "ag",
	"bezirksgericht":     "bg",
}

// legalForms are stripped from the end of organisation names
var legalForms = map[string]bool{
	"gmbh": true, "ag": true, "kg": true, "ug": true, "ohg": true, "gbr": true, "ev": true,
	"ltd": true, "inc": true, "se": true, "kgaa": true, "og": true, "gesbr": true,
}

// Fold strips diacritics, lower-cases, removes everything but letters, digits
// and spaces, and collapses whitespace
func Fold(s string) string {
	s = strings.ReplaceAll(s, "ß", "ss")
	s = strings.ReplaceAll(s, "ẞ", "SS")
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(folded)

	var b strings.Builder
	for _, r := range folded {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// CanonicalPerson folds a person name and drops honorifics and titles.
// A name made only of titles keeps its folded form.
func CanonicalPerson(name string) string {
	folded := Fold(name)
	var kept []string
	for _, tok := range strings.Fields(folded) {
		if !personTokens[tok] {
			kept = append(kept, tok)
		}
	}
	if len(kept) == 0 {
		return folded
	}
	return strings.Join(kept, " ")
}

// CanonicalInstitution folds an institution name, shortens institution words
// and drops trailing legal forms
func CanonicalInstitution(name string) string {
	tokens := strings.Fields(Fold(name))
	for i, tok := range tokens {
		if code, ok := institutionCodes[tok]; ok {
			tokens[i] = code
		}
	}
	for len(tokens) > 1 && legalForms[tokens[len(tokens)-1]] {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

// IdentityKey is the merge boundary of an actor: org:<canonical organisation>
// for institutions, person:<canonical name> otherwise
func IdentityKey(p model.ExtractedActorProfile) string {
	if p.Role.IsInstitution() {
		name := p.OrganizationName
		if strings.TrimSpace(name) == "" {
			name = p.Name
		}
		return "org:" + CanonicalInstitution(name)
	}
	return "person:" + CanonicalPerson(p.Name)
}

// ActorID derives the actor id from an identity key
func ActorID(key string) string {
	return "actor:" + strings.Join(strings.Fields(key), "-")
}
