package normalize

import (
	"regexp"
	"strings"
	"unicode"
)

const maxDescriptionLen = 200

var repeatedSeparators = regexp.MustCompile(`([\s.\-_/*]){3,}`)

// CleanDescription trims whitespace, collapses runs of repeated separator
// characters, and strips control characters. Case is preserved; no lossy
// cleanup beyond separator collapse is applied.
func CleanDescription(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)

	s = strings.Join(strings.Fields(s), " ")
	s = repeatedSeparators.ReplaceAllString(s, "$1")
	s = strings.Trim(s, " .,-_:;@#")

	if len(s) > maxDescriptionLen {
		s = s[:maxDescriptionLen]
	}
	return s
}

// trailingLocation matches a trailing "City IN" location token that card
// networks append to merchant names.
var trailingLocation = regexp.MustCompile(`\s+[A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*)?\s+(?:IN|IND|INDIA)$`)

// CleanMerchant cleans a merchant string the same way as a description and
// additionally trims a trailing location suffix. The untrimmed form should
// be kept in the narration field.
func CleanMerchant(s string) string {
	s = CleanDescription(s)
	return strings.TrimSpace(trailingLocation.ReplaceAllString(s, ""))
}
