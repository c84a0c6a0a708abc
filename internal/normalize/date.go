// Package normalize canonicalizes the raw field values produced by the
// extractors: dates, monetary amounts, and description strings. All
// functions are deterministic and perform no I/O.
package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TwoDigitYearPivot resolves two-digit years: values >= pivot become 19xx,
// values below it become 20xx.
const TwoDigitYearPivot = 50

// CanonicalDateLayout is the single output date format, DD/MM/YYYY.
const CanonicalDateLayout = "02/01/2006"

var (
	dateSlashPattern = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})$`)
	dateMonthPattern = regexp.MustCompile(`^(\d{1,2})[\s-]+([A-Za-z]{3,9})[\s-]+(\d{2,4})$`)
	dateISOPattern   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
)

var monthNames = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

// ParseDate parses the date formats that appear across supported
// statements (DD/MM/YYYY, DD/MM/YY, DD-MM-YY, "DD Mon YYYY", YYYY-MM-DD)
// and returns the calendar date. Day always precedes month in ambiguous
// numeric forms, matching Indian statement conventions.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}

	if m := dateSlashPattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		year, err := resolveYear(m[3])
		if err != nil {
			return time.Time{}, err
		}
		return makeDate(year, time.Month(month), day)
	}

	if m := dateMonthPattern.FindStringSubmatch(s); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, ok := monthNames[strings.ToLower(m[2])]
		if !ok {
			return time.Time{}, fmt.Errorf("unknown month %q", m[2])
		}
		year, err := resolveYear(m[3])
		if err != nil {
			return time.Time{}, err
		}
		return makeDate(year, month, day)
	}

	if m := dateISOPattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		return makeDate(year, time.Month(month), day)
	}

	return time.Time{}, fmt.Errorf("unrecognized date format %q", s)
}

// FormatDate renders a date in the canonical DD/MM/YYYY form. ParseDate is
// a left-inverse: parsing a formatted canonical date reproduces it.
func FormatDate(t time.Time) string {
	return t.Format(CanonicalDateLayout)
}

func resolveYear(s string) (int, error) {
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	if len(s) == 2 {
		if year >= TwoDigitYearPivot {
			return 1900 + year, nil
		}
		return 2000 + year, nil
	}
	return year, nil
}

// makeDate builds the date and rejects values that normalize away, such
// as 31/02/2024, which time.Date would silently roll into March.
func makeDate(year int, month time.Month, day int) (time.Time, error) {
	if month < time.January || month > time.December {
		return time.Time{}, fmt.Errorf("invalid month %d", month)
	}
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || t.Month() != month || t.Year() != year {
		return time.Time{}, fmt.Errorf("invalid calendar date %04d-%02d-%02d", year, month, day)
	}
	return t, nil
}
