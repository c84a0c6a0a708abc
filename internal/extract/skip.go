package extract

import (
	"regexp"
	"strings"
)

// Non-transaction lines that appear inside the transaction section of real
// statements: headers, totals, page furniture, legal footers.
var skipKeywords = []string{
	"opening balance",
	"closing balance",
	"statement summary",
	"statement of account",
	"page no",
	"page ",
	"carried forward",
	"brought forward",
	"total debits",
	"total credits",
	"grand total",
	"minimum amount due",
	"payment due date",
	"reward points",
	"this is a system generated",
	"registered office",
	"generated on",
	"date narration",
	"date description",
	"txn date",
	"transaction date",
	"value dt",
}

var separatorLine = regexp.MustCompile(`^[\s*=_.\-]+$`)

// skipLine reports whether a line is statement furniture rather than a
// transaction row or a narration continuation.
func skipLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true
	}
	if separatorLine.MatchString(trimmed) {
		return true
	}
	lower := strings.ToLower(trimmed)
	for _, kw := range skipKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
