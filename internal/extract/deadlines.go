package extract

import (
	"regexp"
	"strconv"
	"time"
)

// ISOLayout is the instant format of extracted deadlines
const ISOLayout = "2006-01-02T15:04:05.000Z"

// deadlineHour is the time of day assumed when a date carries none
const deadlineHour = 9

var strictDate = regexp.MustCompile(`^(\d{1,2})\.(\d{1,2})\.(\d{4}|\d{2})$`)

// ToISODate converts dd.mm.yyyy (or dd.mm.yy, read as 20yy) into an ISO-8601
// instant at 09:00 UTC. Malformed or impossible dates return false.
func ToISODate(s string) (string, bool) {
	m := strictDate.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 {
		return "", false
	}

	t := time.Date(year, time.Month(month), day, deadlineHour, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return "", false
	}
	return t.Format(ISOLayout), true
}

// DeadlineExtractor finds deadline phrases and converts their dates
type DeadlineExtractor struct {
	patterns *Patterns
}

// NewDeadlineExtractor creates a deadline extractor over a Pattern Library
func NewDeadlineExtractor(p *Patterns) *DeadlineExtractor {
	return &DeadlineExtractor{patterns: p}
}

// Extract returns the distinct deadline instants of a document in order of appearance per phrase shape
func (e *DeadlineExtractor) Extract(content string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, raw := range e.patterns.DeadlineDates(content) {
		iso, ok := ToISODate(raw)
		if !ok || seen[iso] {
			continue
		}
		seen[iso] = true
		out = append(out, iso)
	}
	return out
}
