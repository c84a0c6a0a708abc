package normalize

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// SignMarker is the direction indicated by a suffix or wrapper on an
// amount string ("Dr"/"Cr", parentheses, trailing minus).
type SignMarker int

// Sign marker values.
const (
	SignNone SignMarker = iota
	SignDebit
	SignCredit
)

var (
	currencyPattern = regexp.MustCompile(`(?i)(₹|INR|Rs\.?|\$|£)`)
	drCrPattern     = regexp.MustCompile(`(?i)\s*\b(Dr|Cr|D|C)\b\.?\s*$`)
	amountPattern   = regexp.MustCompile(`^-?[0-9][0-9,]*(\.[0-9]+)?$`)
)

// ParseAmount parses a monetary amount string into its magnitude and sign
// marker. It strips currency symbols and thousands separators (both
// standard and Indian lakh grouping), and interprets Dr/Cr suffixes,
// parentheses, and a trailing minus as direction markers.
func ParseAmount(s string) (decimal.Decimal, SignMarker, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, SignNone, fmt.Errorf("empty amount")
	}

	marker := SignNone

	// Parenthesized amounts are debits: (1,234.00)
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		marker = SignDebit
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	if m := drCrPattern.FindStringSubmatch(s); m != nil {
		switch strings.ToUpper(m[1]) {
		case "DR", "D":
			marker = SignDebit
		case "CR", "C":
			marker = SignCredit
		}
		s = strings.TrimSpace(drCrPattern.ReplaceAllString(s, ""))
	}

	s = strings.TrimSpace(currencyPattern.ReplaceAllString(s, ""))

	// Trailing minus: "1,234.00-"
	if strings.HasSuffix(s, "-") {
		marker = SignDebit
		s = strings.TrimSpace(strings.TrimSuffix(s, "-"))
	}
	if strings.HasPrefix(s, "-") {
		if marker == SignNone {
			marker = SignDebit
		}
		s = strings.TrimSpace(strings.TrimPrefix(s, "-"))
	}

	if !amountPattern.MatchString(s) {
		return decimal.Zero, SignNone, fmt.Errorf("unrecognized amount %q", s)
	}

	// Commas are grouping separators in both 1,000.50 and 1,00,000.50.
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, SignNone, fmt.Errorf("invalid amount %q: %w", s, err)
	}

	return d, marker, nil
}
