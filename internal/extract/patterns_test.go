package extract

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"testing"
)

// withoutUnicodeClasses makes every Unicode-class pattern fail to compile,
// forcing the diacritic fallback
func withoutUnicodeClasses(t *testing.T) {
	t.Helper()
	orig := compileRegexp
	compileRegexp = func(expr string) (*regexp.Regexp, error) {
		if strings.Contains(expr, `\p{`) {
			return nil, errors.New("unicode property classes unsupported")
		}
		return regexp.Compile(expr)
	}
	t.Cleanup(func() { compileRegexp = orig })
}

func texts(matches []Match) []string {
	var out []string
	for _, m := range matches {
		out = append(out, m.Text)
	}
	return out
}

type patternCase struct {
	name string
	run  func(p *Patterns) []string
	want []string
}

var patternCases = []patternCase{
	{
		name: "honorific with umlauts",
		run:  func(p *Patterns) []string { return texts(p.HonorificNames("Frau Dr. Jürgen Öztürk erscheint.")) },
		want: []string{"Jürgen Öztürk"},
	},
	{
		name: "lawyer",
		run:  func(p *Patterns) []string { return texts(p.LawyerNames("vertreten durch RA Mag. Stefan Wörle")) },
		want: []string{"Stefan Wörle"},
	},
	{
		name: "judge",
		run:  func(p *Patterns) []string { return texts(p.JudgeNames("Richterin Dr. Anna Berger verkündet")) },
		want: []string{"Anna Berger"},
	},
	{
		name: "prosecutor",
		run:  func(p *Patterns) []string { return texts(p.ProsecutorNames("Staatsanwältin Mag. Petra Klein")) },
		want: []string{"Petra Klein"},
	},
	{
		name: "role prefixed",
		run:  func(p *Patterns) []string { return texts(p.RolePrefixedNames("Die Zeugin Frau Lena Böhm gibt an")) },
		want: []string{"Lena Böhm"},
	},
	{
		name: "organization",
		run:  func(p *Patterns) []string { return texts(p.Organizations("Lieferant ist die Müller Bäckerei GmbH, Wien")) },
		want: []string{"Müller Bäckerei GmbH"},
	},
	{
		name: "organization with party word is discarded",
		run:  func(p *Patterns) []string { return texts(p.Organizations("Beklagte Muster GmbH")) },
		want: nil,
	},
	{
		name: "role prefixed with colon",
		run:  func(p *Patterns) []string { return texts(p.RolePrefixedNames("Kläger: Hans Beispiel")) },
		want: []string{"Hans Beispiel"},
	},
	{
		name: "judge name stops before court",
		run:  func(p *Patterns) []string { return texts(p.JudgeNames("Richter Max Müller Landesgericht Wien")) },
		want: []string{"Max Müller"},
	},
	{
		name: "prosecutor name stops before office abbreviation",
		run:  func(p *Patterns) []string { return texts(p.ProsecutorNames("Staatsanwalt Peter Gruber StA Wien")) },
		want: []string{"Peter Gruber"},
	},
	{
		name: "organization joined by ampersand",
		run:  func(p *Patterns) []string { return texts(p.Organizations("Kanzlei Lang & Partner OG, Wien")) },
		want: []string{"Kanzlei Lang & Partner OG"},
	},
	{
		name: "organization joined by und Söhne",
		run:  func(p *Patterns) []string { return texts(p.Organizations("Lieferant ist Berger und Söhne KG")) },
		want: []string{"Berger und Söhne KG"},
	},
	{
		name: "bare und does not merge parties",
		run:  func(p *Patterns) []string { return texts(p.Organizations("Maria Huber und Karl Schmid Bau GmbH")) },
		want: []string{"Karl Schmid Bau GmbH"},
	},
	{
		name: "authority",
		run:  func(p *Patterns) []string { return texts(p.Authorities("Das Finanzamt Österreich teilt mit")) },
		want: []string{"Finanzamt Österreich"},
	},
	{
		name: "authority abbreviation",
		run:  func(p *Patterns) []string { return texts(p.AuthorityAbbreviations("Zl. 12 St 34/25, StA Wien")) },
		want: []string{"Staatsanwaltschaft Wien"},
	},
	{
		name: "court",
		run:  func(p *Patterns) []string { return texts(p.Courts("Oberlandesgericht Wien Richter")) },
		want: []string{"Oberlandesgericht Wien"},
	},
	{
		name: "court abbreviations",
		run:  func(p *Patterns) []string { return texts(p.CourtAbbreviations("OGH bestätigt Urteil des LG Linz")) },
		want: []string{"OGH", "LG Linz"},
	},
	{
		name: "emails are lower-cased",
		run:  func(p *Patterns) []string { return p.Emails("Kontakt: Office@Kanzlei-Lang.at") },
		want: []string{"office@kanzlei-lang.at"},
	},
	{
		name: "phones are normalised",
		run:  func(p *Patterns) []string { return p.Phones("Tel.: 0664/123 45 67, Fax +49 (0) 30 123456") },
		want: []string{"06641234567", "+49030123456"},
	},
	{
		name: "short phone numbers are dropped",
		run:  func(p *Patterns) []string { return p.Phones("Tel. 123 45 6") },
		want: nil,
	},
	{
		name: "address",
		run:  func(p *Patterns) []string { return p.Addresses("wohnhaft in der Mariahilfer Straße 45/3, 1060 Wien") },
		want: []string{"Mariahilfer Straße 45/3, 1060 Wien"},
	},
	{
		name: "amounts",
		run:  func(p *Patterns) []string { return p.Amounts("Streitwert EUR 12.500,00 sowie 3.000 € und CHF 250") },
		want: []string{"EUR 12.500,00", "3.000 €", "CHF 250"},
	},
	{
		name: "demands",
		run:  func(p *Patterns) []string { return p.Demands("Die Klägerin begehrt die Zahlung von EUR 5.000; weiters") },
		want: []string{"die Zahlung von EUR 5.000"},
	},
	{
		name: "representation",
		run: func(p *Patterns) []string {
			return []string{p.Representation("vertreten durch Kanzlei Lang & Partner, Wien")}
		},
		want: []string{"Kanzlei Lang & Partner"},
	},
}

func TestPatterns_Unicode(t *testing.T) {
	p := NewPatterns()
	if !p.Unicode() {
		t.Fatal("Expected Unicode property classes to compile")
	}
	for _, tc := range patternCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.run(p); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPatterns_Fallback(t *testing.T) {
	withoutUnicodeClasses(t)

	p := NewPatterns()
	if p.Unicode() {
		t.Fatal("Expected fallback patterns")
	}
	for _, tc := range patternCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.run(p); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestPatterns_AddressLine(t *testing.T) {
	p := NewPatterns()
	for _, line := range []string{"Anschrift: Hauptstraße 12", "adresse : Ring 3", "ANSCHRIFT:"} {
		if !p.IsAddressLine(line) {
			t.Errorf("Expected %q to be an address line", line)
		}
	}
	if p.IsAddressLine("Die Anschrift lautet Hauptstraße 12") {
		t.Error("Expected mid-line mention not to count")
	}
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"+43 664 1234567", "+436641234567", true},
		{"0043 (1) 534-00", "0043153400", true},
		{"123 456", "", false},
		{"+1234567890123456", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizePhone(tt.raw)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("NormalizePhone(%q) = (%q, %v), want (%q, %v)", tt.raw, got, ok, tt.want, tt.wantOK)
		}
	}
}
