package score

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/casefile/internal/extract"
	"github.com/ppiankov/casefile/internal/model"
)

const (
	// BaseWeight is the weight of a document no rule fires on
	BaseWeight = 1.0
	MinWeight  = 0.6
	MaxWeight  = 1.25

	// headLength bounds the content rules to the start of the document
	headLength = 2000

	// minLetterRatio below which the text is treated as OCR noise
	minLetterRatio = 0.45
)

var (
	highAuthorityTitle = regexp.MustCompile(`(?i)urteil|beschluss|anklageschrift|strafantrag|strafverfügung|strafbefehl|bescheid|erkenntnis|entscheidung|protokoll|judgment|judgement|indictment|penal order|decision|ruling|minutes|(?:^|[^\p{L}])order(?:[^\p{L}]|$)`)
	formalTitle        = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(?:klage|klageschrift|klagebeantwortung|berufung|revision|beschwerde|einspruch|rekurs|schriftsatz|antrag|stellungnahme)|statement of claim|appeal|brief of`)
	informalTitle      = regexp.MustCompile(`(?i)notiz|memo|entwurf|draft|chat|whatsapp|(?:^|[^\p{L}])notes?(?:[^\p{L}]|$)`)
	correspondence     = regexp.MustCompile(`(?i)e-?mail|(?:^|[^\p{L}])mail(?:[^\p{L}]|$)|(?:^|[^\p{L}])brief(?:[^\p{L}]|$)|schreiben|korrespondenz|letter|correspondence`)
)

var (
	officialTags = []string{"official", "amtlich", "behörde", "authority", "gericht", "court"}
	draftTags    = []string{"draft", "entwurf", "note", "notiz"}
)

// Reliability is the weight of one document and the signals that produced it
type Reliability struct {
	Weight  float64        `json:"weight"`
	Signals []model.Signal `json:"signals,omitempty"`
}

// rule is one row of the scoring table
type rule struct {
	signal      model.SignalType
	delta       float64
	description string
	fires       func(s *Scorer, doc model.SourceDocument, head string) (bool, map[string]interface{})
}

// Scorer calculates the source reliability weight of documents
type Scorer struct {
	patterns *extract.Patterns
	rules    []rule
}

// NewScorer creates a new scorer
func NewScorer(patterns *extract.Patterns) *Scorer {
	return &Scorer{patterns: patterns, rules: reliabilityRules}
}

var reliabilityRules = []rule{
	{
		signal:      model.SignalHighAuthorityTitle,
		delta:       0.18,
		description: "Title names a court decision, indictment or protocol",
		fires:       titleMatches(highAuthorityTitle),
	},
	{
		signal:      model.SignalNamedInstitution,
		delta:       0.12,
		description: "Document opens with a named court or prosecutor",
		fires: func(s *Scorer, doc model.SourceDocument, head string) (bool, map[string]interface{}) {
			names := s.namedInstitutions(head)
			return len(names) > 0, map[string]interface{}{"institutions": names}
		},
	},
	{
		signal:      model.SignalFormalSubmission,
		delta:       0.08,
		description: "Title names a formal submission",
		fires:       titleMatches(formalTitle),
	},
	{
		signal:      model.SignalInformalTitle,
		delta:       -0.18,
		description: "Title names a note, memo, draft or chat",
		fires:       titleMatches(informalTitle),
	},
	{
		signal:      model.SignalCorrespondenceTitle,
		delta:       -0.08,
		description: "Title names an e-mail or letter",
		fires:       titleMatches(correspondence),
	},
	{
		signal:      model.SignalOCRNoise,
		delta:       -0.08,
		description: "Low share of letters, probably OCR noise",
		fires: func(s *Scorer, doc model.SourceDocument, head string) (bool, map[string]interface{}) {
			if strings.TrimSpace(head) == "" {
				return false, nil
			}
			ratio := letterRatio(head)
			return ratio < minLetterRatio, map[string]interface{}{
				"letter_ratio": ratio,
				"threshold":    minLetterRatio,
			}
		},
	},
	{
		signal:      model.SignalOfficialTag,
		delta:       0.06,
		description: "Tagged as official",
		fires:       tagMatches(officialTags),
	},
	{
		signal:      model.SignalDraftTag,
		delta:       -0.06,
		description: "Tagged as draft or note",
		fires:       tagMatches(draftTags),
	},
}

// Calculate applies every rule and clamps the summed weight to [0.6, 1.25]
func (s *Scorer) Calculate(doc model.SourceDocument) Reliability {
	head := headOf(doc.Content, headLength)
	weight := BaseWeight
	var signals []model.Signal

	for _, r := range s.rules {
		fired, data := r.fires(s, doc, head)
		if !fired {
			continue
		}
		weight += r.delta
		severity := model.SeverityInfo
		if r.delta < 0 {
			severity = model.SeverityWarning
		}
		signals = append(signals, model.Signal{
			Type:        r.signal,
			Severity:    severity,
			Description: r.description,
			Delta:       r.delta,
			Data:        data,
		})
	}

	return Reliability{Weight: clampWeight(weight), Signals: signals}
}

// Weight is Calculate without the signals
func (s *Scorer) Weight(doc model.SourceDocument) float64 {
	return s.Calculate(doc).Weight
}

// namedInstitutions lists courts with a seat, supreme courts and public prosecutors in text
func (s *Scorer) namedInstitutions(text string) []string {
	var names []string
	for _, m := range s.patterns.Courts(text) {
		if strings.Contains(m.Text, " ") {
			names = append(names, m.Text)
		}
	}
	for _, m := range s.patterns.CourtAbbreviations(text) {
		names = append(names, m.Text)
	}
	for _, m := range s.patterns.AuthorityAbbreviations(text) {
		names = append(names, m.Text)
	}
	for _, m := range s.patterns.Authorities(text) {
		if strings.Contains(strings.ToLower(m.Text), "staatsanwaltschaft") && strings.Contains(m.Text, " ") {
			names = append(names, m.Text)
		}
	}
	return names
}

func titleMatches(re *regexp.Regexp) func(*Scorer, model.SourceDocument, string) (bool, map[string]interface{}) {
	return func(_ *Scorer, doc model.SourceDocument, _ string) (bool, map[string]interface{}) {
		m := re.FindString(doc.Title)
		if m == "" {
			return false, nil
		}
		return true, map[string]interface{}{"title": doc.Title, "match": strings.TrimSpace(m)}
	}
}

func tagMatches(tags []string) func(*Scorer, model.SourceDocument, string) (bool, map[string]interface{}) {
	return func(_ *Scorer, doc model.SourceDocument, _ string) (bool, map[string]interface{}) {
		for _, t := range doc.Tags {
			lower := strings.ToLower(strings.TrimSpace(t))
			for _, want := range tags {
				if lower == want {
					return true, map[string]interface{}{"tag": t}
				}
			}
		}
		return false, nil
	}
}

// headOf returns the first n runes of s
func headOf(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// letterRatio is the share of letters among all characters
func letterRatio(s string) float64 {
	letters, total := 0, 0
	for _, r := range s {
		total++
		if unicode.IsLetter(r) {
			letters++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(letters) / float64(total)
}

func clampWeight(w float64) float64 {
	if w < MinWeight {
		return MinWeight
	}
	if w > MaxWeight {
		return MaxWeight
	}
	return w
}

// Describe renders the signals as "type (+0.18)" for terminal output
func Describe(r Reliability) string {
	parts := make([]string, 0, len(r.Signals))
	for _, sig := range r.Signals {
		parts = append(parts, fmt.Sprintf("%s (%+.2f)", sig.Type, sig.Delta))
	}
	return strings.Join(parts, ", ")
}
