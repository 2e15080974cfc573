package extract

import (
	"regexp"
	"strings"
)

// Character classes substituted into pattern templates. Templates use {U} for
// upper-case letters and {L} for any letter, always inside a bracket expression.
// The Unicode variants are tried first; the fallback variants spell out the
// Latin-1 letters (including ä ö ü ß Ä Ö Ü) for engines without \p support.
const (
	unicodeUpper   = `\p{Lu}`
	unicodeLetter  = `\p{L}`
	fallbackUpper  = `A-ZÄÖÜÀ-ÖØ-Þ`
	fallbackLetter = `A-Za-zÄÖÜäöüßÀ-ÖØ-öø-ÿ`
)

// compileRegexp compiles the Unicode variant of a template (injectable for tests)
var compileRegexp = regexp.Compile

// Pattern templates
const (
	// nameTemplate matches one to four capitalised words
	nameTemplate = `[{U}][{L}'’-]+(?:[ \t]+[{U}][{L}'’-]+){0,3}`

	// titlesTemplate consumes academic and professional titles in front of a name
	titlesTemplate = `(?:(?:Dr|DDr|Mag|MMag|Prof|Ing|Dipl\.-Ing)\.[ \t]*|(?:Rechtsanwältin|Rechtsanwalt|Richterin|Richter|Staatsanwältin|Staatsanwalt)[ \t]+)*`

	honorificNameTemplate = `\b(?:Herrn?|Frau|Hr\.|Fr\.|Dr\.|DDr\.|Prof\.|Mag\.)[ \t]*` + titlesTemplate + `(` + nameTemplate + `)`

	lawyerNameTemplate = `\b(?:Rechtsanw(?:alt|ältin)|RAin|RA|Anw(?:alt|ältin)|Strafverteidiger(?:in)?|Verteidiger(?:in)?)\.?[ \t]+` +
		`(?:(?:Herrn?|Frau)[ \t]+)?` + titlesTemplate + `(` + nameTemplate + `)`

	judgeNameTemplate = `\b(?:Einzelrichter(?:in)?|Richter(?:in)?|Vorsitzende[rn]?|Senatspräsident(?:in)?)[ \t]+` +
		`(?:(?:Herrn?|Frau)[ \t]+)?` + titlesTemplate + `(` + nameTemplate + `)`

	prosecutorNameTemplate = `\b(?:Oberstaatsanw(?:alt|ältin)|Staatsanw(?:alt|ältin))[ \t]+` +
		`(?:(?:Herrn?|Frau)[ \t]+)?` + titlesTemplate + `(` + nameTemplate + `)`

	rolePrefixedNameTemplate = `\b(Opfer|Geschädigte[rn]?|Privatbeteiligte[rn]?|Privatankläger(?:in)?|Nebenkläger(?:in)?|` +
		`Kläger(?:in)?|Antragsteller(?:in)?|Beklagte[rn]?|Antragsgegner(?:in)?|Zeug(?:e|in)|` +
		`Beschuldigte[rn]?|Angeklagte[rn]?|Verdächtige[rn]?|Mandant(?:in)?)[ \t]*:?[ \t]+` +
		`(?:(?:Herrn?|Frau)[ \t]+)?` + titlesTemplate + `(` + nameTemplate + `)`

	// Words may be joined by "&", "+", "und Partner" or "und Söhne"; a bare "und"
	// would merge lists of parties into one firm
	organizationTemplate = `((?:[{U}][{L}\d&.'’-]*[ \t]+(?:[&+][ \t]+|und[ \t]+(?:Partner|Söhne)[ \t]+)?){1,4}` +
		`(?:GmbH[ \t]+&[ \t]+Co\.?[ \t]+KG|GmbH|GesmbH|GesbR|KGaA|OHG|GbR|AG|KG|OG|UG|SE|e\.[ \t]?V\.|Ltd\.?|Inc\.?|LLC))(?:[^{L}]|$)`

	authorityTemplate = `\b((?:Wirtschafts- und Korruptionsstaatsanwaltschaft|Oberstaatsanwaltschaft|Staatsanwaltschaft|` +
		`Finanzamt|Zollamt|Magistrat|Bezirkshauptmannschaft|Landespolizeidirektion|Polizeiinspektion|` +
		`Bundesamt für [{U}][{L}]+(?:[ \t]+und[ \t]+[{U}][{L}]+)?|Bundesministerium für [{U}][{L}]+|` +
		`Jugendamt|Arbeitsmarktservice|Landesregierung|Stadtgemeinde|Marktgemeinde|Gemeinde)` +
		`(?:[ \t]+[{U}][{L}-]+){0,2})`

	authorityAbbreviationTemplate = `\bStA[ \t]+([{U}][{L}-]+)`

	courtTemplate = `\b((?:Oberster Gerichtshof|Verfassungsgerichtshof|Verwaltungsgerichtshof|Bundesverwaltungsgericht|` +
		`Bundesgerichtshof|Bundesfinanzgericht|Landesverwaltungsgericht|Oberlandesgericht|Landesgericht|` +
		`Amtsgericht|Bezirksgericht|Arbeits- und Sozialgericht|Arbeitsgericht|Handelsgericht|` +
		`Verwaltungsgericht|Sozialgericht)` +
		`(?:[ \t]+für[ \t]+[{U}][{L}]+)?(?:[ \t]+[{U}][{L}-]+){0,2})`

	courtAbbreviationTemplate     = `\b(OGH|VfGH|VwGH|BVwG|BVerfG|BGH|BFG|BAG)\b`
	courtAbbreviationCityTemplate = `\b(OLG|LGZ|LGSt|LG|BG|AG|ASG|HG|LVwG|VG|ArbG|LSG|SG)[ \t]+([{U}][{L}-]+)`

	emailTemplate        = `[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`
	phoneLabeledTemplate = `(?i)(?:tel(?:efon)?|phone|mobil(?:telefon)?|handy|fax)\.?[ \t]*:?[ \t]*(\+?\d[\d \t/().-]{5,}\d)`
	phoneIntlTemplate    = `(\+\d[\d \t/().-]{5,}\d)`

	addressTemplate = `((?:[{U}][{L}-]*[ \t])?[{L}.-]*(?:[Ss]traße|[Ss]trasse|[Gg]asse|[Ww]eg|[Pp]latz|[Aa]llee|[Rr]ing|[Ss]tr\.|[Kk]ai|[Uu]fer)` +
		`[ \t]*\d+[a-zA-Z]?(?:/\d+)*(?:,?[ \t]*(?:[A-Z]-)?\d{4,5}[ \t]+[{U}][{L}-]+(?:[ \t][{U}][{L}-]+)?)?)`

	amountNumber   = `(?:\d{1,3}(?:[.'’]\d{3})+|\d+)(?:,\d{1,2}|,-)?`
	amountTemplate = `(?i)((?:EUR|€|Euro|USD|CHF)[ \t]?` + amountNumber + `|` + amountNumber + `[ \t]?(?:EUR|€|Euro|USD|CHF))`

	demandTemplate = `(?i)(?:fordert|begehrt|beantragt|verlangt|macht[ \t]+geltend|claims|demands)[ \t]+([^;\n]{3,160}?)(?:[.;](?:[ \t]|$)|$)`

	representationTemplate = `(?i)(?:vertreten[ \t]+durch|vertreten[ \t]+von|represented[ \t]+by)[ \t]+([^,;\n]+?)` +
		`(?:[ \t]*[,;]|[ \t]+(?:und|sowie|als|wegen|mit|fordert|begehrt|beantragt|verlangt)[ \t]|\.?[ \t]*$)`

	dateTemplate           = `(\d{1,2}\.\d{1,2}\.(?:\d{4}|\d{2}))`
	deadlineBeforeTemplate = `(?i)(?:frist|deadline|fällig|bis spätestens)[ \t]*:?[ \t]*(?:am[ \t]+|bis[ \t]+(?:zum[ \t]+)?)?` + dateTemplate + `(?:\D|$)`
	deadlineAfterTemplate  = `(?i)` + dateTemplate + `[ \t]*(?:ist[ \t]+|als[ \t]+)?(?:die[ \t]+)?(?:frist|deadline|fällig)`

	addressLineTemplate = `(?i)^(?:anschrift|adresse)[ \t]*:`
)

// partyRoleWords mark organisation matches that swallowed a party designation
var partyRoleWords = []string{
	"opfer", "kläger", "beklagte", "privatbeteiligte", "nebenkläger", "geschädigte",
	"zeuge", "zeugin", "beschuldigte", "angeklagte", "verdächtige", "mandant", "antragsteller", "antragsgegner",
}

// institutionWords open an institution name; a person's name ends before them
var institutionWords = map[string]bool{
	"staatsanwaltschaft": true, "oberstaatsanwaltschaft": true, "finanzamt": true, "zollamt": true,
	"magistrat": true, "bezirkshauptmannschaft": true, "landespolizeidirektion": true, "polizeiinspektion": true,
	"jugendamt": true, "arbeitsmarktservice": true, "landesregierung": true, "bundesamt": true,
	"bundesministerium": true, "kanzlei": true,
}

// institutionAbbreviations are matched case-sensitively, as written in headers
var institutionAbbreviations = map[string]bool{
	"StA": true, "OGH": true, "VfGH": true, "VwGH": true, "BVwG": true, "OLG": true, "LG": true, "LGZ": true,
	"LGSt": true, "BG": true, "ASG": true, "HG": true, "LVwG": true, "ArbG": true,
}

// trailingRoleWords are stripped from the end of institution names
var trailingRoleWords = map[string]bool{
	"richter": true, "richterin": true, "staatsanwalt": true, "staatsanwältin": true,
	"rechtsanwalt": true, "rechtsanwältin": true, "vorsitzende": true, "vorsitzender": true,
	"opfer": true, "kläger": true, "klägerin": true, "zeuge": true, "zeugin": true,
}

// Match is one pattern hit in a line
type Match struct {
	Text    string // captured text, whitespace-normalised
	Keyword string // leading keyword, when the pattern has one
	Start   int    // byte offset of the capture in the line
	End     int
}

// Patterns holds the compiled Pattern Library
type Patterns struct {
	unicode bool

	honorificName    *regexp.Regexp
	lawyerName       *regexp.Regexp
	judgeName        *regexp.Regexp
	prosecutorName   *regexp.Regexp
	rolePrefixedName *regexp.Regexp

	organization          *regexp.Regexp
	authority             *regexp.Regexp
	authorityAbbreviation *regexp.Regexp
	court                 *regexp.Regexp
	courtAbbreviation     *regexp.Regexp
	courtAbbreviationCity *regexp.Regexp

	email          *regexp.Regexp
	phoneLabeled   *regexp.Regexp
	phoneIntl      *regexp.Regexp
	address        *regexp.Regexp
	amount         *regexp.Regexp
	demand         *regexp.Regexp
	representation *regexp.Regexp
	addressLine    *regexp.Regexp

	deadlineBefore *regexp.Regexp
	deadlineAfter  *regexp.Regexp

	roles []roleRule
}

// NewPatterns compiles the Pattern Library, falling back to explicit
// diacritic classes when Unicode property escapes are rejected
func NewPatterns() *Patterns {
	b := &patternBuilder{unicode: true}
	p := &Patterns{
		honorificName:    b.build(honorificNameTemplate),
		lawyerName:       b.build(lawyerNameTemplate),
		judgeName:        b.build(judgeNameTemplate),
		prosecutorName:   b.build(prosecutorNameTemplate),
		rolePrefixedName: b.build(rolePrefixedNameTemplate),

		organization:          b.build(organizationTemplate),
		authority:             b.build(authorityTemplate),
		authorityAbbreviation: b.build(authorityAbbreviationTemplate),
		court:                 b.build(courtTemplate),
		courtAbbreviation:     b.build(courtAbbreviationTemplate),
		courtAbbreviationCity: b.build(courtAbbreviationCityTemplate),

		email:          b.build(emailTemplate),
		phoneLabeled:   b.build(phoneLabeledTemplate),
		phoneIntl:      b.build(phoneIntlTemplate),
		address:        b.build(addressTemplate),
		amount:         b.build(amountTemplate),
		demand:         b.build(demandTemplate),
		representation: b.build(representationTemplate),
		addressLine:    b.build(addressLineTemplate),

		deadlineBefore: b.build(deadlineBeforeTemplate),
		deadlineAfter:  b.build(deadlineAfterTemplate),
	}
	p.roles = buildRoleRules(b)
	p.unicode = b.unicode
	return p
}

// Unicode reports whether every pattern compiled with Unicode property classes
func (p *Patterns) Unicode() bool {
	return p.unicode
}

// patternBuilder expands templates and remembers whether any fallback was needed
type patternBuilder struct {
	unicode bool
}

func (b *patternBuilder) build(template string) *regexp.Regexp {
	re, err := compileRegexp(expandTemplate(template, unicodeUpper, unicodeLetter))
	if err == nil {
		return re
	}
	b.unicode = false
	return regexp.MustCompile(expandTemplate(template, fallbackUpper, fallbackLetter))
}

func expandTemplate(template, upper, letter string) string {
	return strings.NewReplacer("{U}", upper, "{L}", letter).Replace(template)
}

// HonorificNames finds names introduced by Herr/Frau or an academic title
func (p *Patterns) HonorificNames(line string) []Match {
	return findNames(p.honorificName, line)
}

// LawyerNames finds names introduced by a counsel designation
func (p *Patterns) LawyerNames(line string) []Match {
	return findNames(p.lawyerName, line)
}

// JudgeNames finds names introduced by a judicial designation
func (p *Patterns) JudgeNames(line string) []Match {
	return findNames(p.judgeName, line)
}

// ProsecutorNames finds names introduced by a prosecutor designation
func (p *Patterns) ProsecutorNames(line string) []Match {
	return findNames(p.prosecutorName, line)
}

// RolePrefixedNames finds names introduced by a party designation; Keyword holds the designation
func (p *Patterns) RolePrefixedNames(line string) []Match {
	var matches []Match
	for _, idx := range p.rolePrefixedName.FindAllStringSubmatchIndex(line, -1) {
		matches = append(matches, cutAtInstitution(line, Match{
			Text:    normalizeSpace(line[idx[4]:idx[5]]),
			Keyword: line[idx[2]:idx[3]],
			Start:   idx[4],
			End:     idx[5],
		}))
	}
	return matches
}

// Organizations finds names ending in a legal-form suffix, dropping hits that
// swallowed a party designation
func (p *Patterns) Organizations(line string) []Match {
	var matches []Match
	for _, m := range findGroup(p.organization, line, 1) {
		if containsPartyRoleWord(m.Text) {
			continue
		}
		matches = append(matches, m)
	}
	return matches
}

// OrganizationAt returns the organisation starting exactly at the beginning of s
func (p *Patterns) OrganizationAt(s string) (string, bool) {
	idx := p.organization.FindStringSubmatchIndex(s)
	if idx == nil || idx[2] != 0 {
		return "", false
	}
	name := normalizeSpace(s[idx[2]:idx[3]])
	if containsPartyRoleWord(name) {
		return "", false
	}
	return name, true
}

// Authorities finds public authorities by institutional keyword
func (p *Patterns) Authorities(line string) []Match {
	matches := findGroup(p.authority, line, 1)
	for i := range matches {
		matches[i].Text = trimTrailingRoleWords(matches[i].Text)
	}
	return matches
}

// AuthorityAbbreviations finds "StA <City>" and expands it to the full name
func (p *Patterns) AuthorityAbbreviations(line string) []Match {
	matches := findGroup(p.authorityAbbreviation, line, 1)
	for i := range matches {
		matches[i].Keyword = "StA"
		matches[i].Text = "Staatsanwaltschaft " + matches[i].Text
	}
	return matches
}

// Courts finds courts by institutional keyword
func (p *Patterns) Courts(line string) []Match {
	matches := findGroup(p.court, line, 1)
	for i := range matches {
		matches[i].Text = trimTrailingRoleWords(matches[i].Text)
	}
	return matches
}

// CourtAbbreviations finds abbreviated courts, with or without a seat
func (p *Patterns) CourtAbbreviations(line string) []Match {
	matches := findGroup(p.courtAbbreviation, line, 1)
	for _, idx := range p.courtAbbreviationCity.FindAllStringSubmatchIndex(line, -1) {
		matches = append(matches, Match{
			Text:    line[idx[2]:idx[3]] + " " + line[idx[4]:idx[5]],
			Keyword: line[idx[2]:idx[3]],
			Start:   idx[0],
			End:     idx[1],
		})
	}
	return matches
}

// Emails returns lower-cased e-mail addresses
func (p *Patterns) Emails(line string) []string {
	var out []string
	for _, m := range p.email.FindAllString(line, -1) {
		out = appendUniqueString(out, strings.ToLower(m))
	}
	return out
}

// Phones returns normalised phone numbers; candidates outside 7..15 digits are dropped
func (p *Patterns) Phones(line string) []string {
	var out []string
	for _, re := range []*regexp.Regexp{p.phoneLabeled, p.phoneIntl} {
		for _, m := range findGroup(re, line, 1) {
			if phone, ok := NormalizePhone(m.Text); ok {
				out = appendUniqueString(out, phone)
			}
		}
	}
	return out
}

// Addresses returns street addresses
func (p *Patterns) Addresses(line string) []string {
	var out []string
	for _, m := range findGroup(p.address, line, 1) {
		out = appendUniqueString(out, m.Text)
	}
	return out
}

// Amounts returns monetary amounts as written
func (p *Patterns) Amounts(line string) []string {
	var out []string
	for _, m := range findGroup(p.amount, line, 1) {
		out = appendUniqueString(out, m.Text)
	}
	return out
}

// Demands returns what a party demands, requests or claims
func (p *Patterns) Demands(line string) []string {
	var out []string
	for _, m := range findGroup(p.demand, line, 1) {
		out = appendUniqueString(out, strings.TrimRight(m.Text, " .,;"))
	}
	return out
}

// Representation returns the counsel named after "vertreten durch", or ""
func (p *Patterns) Representation(line string) string {
	m := p.representation.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	return normalizeSpace(strings.TrimRight(m[1], " ."))
}

// IsAddressLine reports whether the line starts with "Anschrift:" or "Adresse:"
func (p *Patterns) IsAddressLine(line string) bool {
	return p.addressLine.MatchString(line)
}

// DeadlineDates returns the raw dd.mm.yyyy strings of both deadline phrase shapes
func (p *Patterns) DeadlineDates(text string) []string {
	var out []string
	for _, re := range []*regexp.Regexp{p.deadlineBefore, p.deadlineAfter} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			out = append(out, m[1])
		}
	}
	return out
}

func findGroup(re *regexp.Regexp, line string, group int) []Match {
	var matches []Match
	for _, idx := range re.FindAllStringSubmatchIndex(line, -1) {
		start, end := idx[2*group], idx[2*group+1]
		if start < 0 {
			continue
		}
		matches = append(matches, Match{
			Text:  normalizeSpace(line[start:end]),
			Start: start,
			End:   end,
		})
	}
	return matches
}

// findNames is findGroup for person names, cut before any institution
func findNames(re *regexp.Regexp, line string) []Match {
	matches := findGroup(re, line, 1)
	for i := range matches {
		matches[i] = cutAtInstitution(line, matches[i])
	}
	return matches
}

// cutAtInstitution ends a name before the first word that opens an institution
// name ("Max Müller Landesgericht Wien" becomes "Max Müller"). The first word
// is always kept.
func cutAtInstitution(line string, m Match) Match {
	raw := line[m.Start:m.End]
	offset := 0
	for i, word := range strings.Fields(raw) {
		pos := offset + strings.Index(raw[offset:], word)
		if i > 0 && isInstitutionWord(word) {
			m.End = m.Start + len(strings.TrimRight(raw[:pos], " \t"))
			m.Text = normalizeSpace(line[m.Start:m.End])
			return m
		}
		offset = pos + len(word)
	}
	return m
}

func isInstitutionWord(word string) bool {
	if institutionAbbreviations[word] {
		return true
	}
	lower := strings.ToLower(word)
	return institutionWords[lower] ||
		strings.HasSuffix(lower, "gericht") ||
		strings.HasSuffix(lower, "gerichtshof")
}

func containsPartyRoleWord(s string) bool {
	lower := strings.ToLower(s)
	for _, w := range partyRoleWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

func trimTrailingRoleWords(name string) string {
	words := strings.Fields(name)
	for len(words) > 1 && trailingRoleWords[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

func appendUniqueString(list []string, v string) []string {
	v = normalizeSpace(v)
	if v == "" {
		return list
	}
	for _, item := range list {
		if item == v {
			return list
		}
	}
	return append(list, v)
}
