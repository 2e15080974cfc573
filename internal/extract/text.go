package extract

import (
	"regexp"
	"strings"
)

var lineBreak = regexp.MustCompile(`\r\n|\r|\n`)

// splitLines splits on any newline form
func splitLines(content string) []string {
	return lineBreak.Split(content, -1)
}

// normalizeSpace collapses runs of whitespace and trims
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes cuts s to at most n runes
func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// NormalizePhone reduces a phone candidate to its digits, keeping a leading
// plus. Numbers with fewer than 7 or more than 15 digits are rejected.
func NormalizePhone(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	var b strings.Builder
	if strings.HasPrefix(raw, "+") {
		b.WriteByte('+')
	}
	digits := 0
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			digits++
		}
	}
	if digits < 7 || digits > 15 {
		return "", false
	}
	return b.String(), true
}
