package extract

import (
	"regexp"
	"strings"

	"github.com/ledgerparse/ledgerparse/internal/model"
	"github.com/ledgerparse/ledgerparse/internal/registry"
)

// HDFCExtractor parses HDFC bank statements and HDFC credit card
// statements.
//
// Bank rows are fixed-width: date, narration, reference, value date, then
// the withdrawal/deposit/balance amount columns. Whichever of withdrawal
// and deposit is empty collapses out of the extracted text, so direction is
// recovered from the horizontal gap between the value date and the first
// amount: the withdrawal column sits directly after the value date, the
// deposit column further right.
type HDFCExtractor struct{}

// creditGapThreshold is the minimum gap, in spaces, between the value date
// and the first amount for that amount to be in the deposit column.
const creditGapThreshold = 5

var (
	hdfcDatePattern   = regexp.MustCompile(`\b\d{2}/\d{2}/\d{2,4}\b`)
	hdfcAmountPattern = regexp.MustCompile(`[0-9][0-9,]*\.\d{2}`)
	hdfcRefPattern    = regexp.MustCompile(`^[A-Za-z0-9/]{5,}$`)

	hdfcCardRowPattern = regexp.MustCompile(
		`^(\d{2}/\d{2}/\d{4})\s+(\d{2}:\d{2}:\d{2})\s+(.+?)\s+([0-9][0-9,]*\.\d{2})\s*(Cr)?\s*$`)
	hdfcCardNoPattern = regexp.MustCompile(`(?i)(?:x{4}[\s-]?){2,3}(\d{4})`)
)

// Narration substrings that mark a deposit when the row's column layout
// has been collapsed to single spaces and the gap carries no signal.
var hdfcCreditKeywords = []string{
	"NEFT CR", "IMPS CR", "RTGS CR", "-CR-", "UPI CR",
	"SALARY", "REFUND", "REVERSAL", "INT.PD", "INTEREST PAID", "CASH DEP",
}

// Name identifies the extractor in parse metadata.
func (e *HDFCExtractor) Name() string { return "hdfc" }

// Extract applies the HDFC recipes in rule order.
func (e *HDFCExtractor) Extract(text string, rules []model.PatternRule) Result {
	return runRecipes(text, rules, map[string]recipeFunc{
		registry.RecipeHDFCBankRows: e.extractBankRows,
		registry.RecipeHDFCCardRows: e.extractCardRows,
	})
}

func (e *HDFCExtractor) extractBankRows(text string) ([]model.RawTransaction, []string) {
	var (
		txns     []model.RawTransaction
		warnings []string
	)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if skipLine(line) {
			continue
		}

		dates := hdfcDatePattern.FindAllStringIndex(line, 2)
		lead := len(line) - len(strings.TrimLeft(line, " \t"))
		if len(dates) == 0 || dates[0][0] != lead {
			// Continuation of the previous row's narration.
			if len(txns) > 0 {
				last := &txns[len(txns)-1]
				last.Fields["narration"] += " " + strings.TrimSpace(line)
			}
			continue
		}

		raw, ok := e.parseBankRow(line, dates, i+1)
		if !ok {
			warnings = append(warnings, warnf("line %d: unparseable bank row", i+1))
			continue
		}
		txns = append(txns, raw)
	}
	return txns, warnings
}

// parseBankRow splits one statement row around its two dates.
func (e *HDFCExtractor) parseBankRow(line string, dates [][]int, lineNo int) (model.RawTransaction, bool) {
	if len(dates) < 2 {
		return model.RawTransaction{}, false
	}
	dateEnd := dates[0][1]
	valueStart, valueEnd := dates[1][0], dates[1][1]

	// Everything between the two dates is narration, possibly with a
	// trailing reference token.
	middle := strings.TrimSpace(line[dateEnd:valueStart])
	narration, reference := splitTrailingReference(middle)
	if narration == "" {
		return model.RawTransaction{}, false
	}

	tail := line[valueEnd:]
	amounts := hdfcAmountPattern.FindAllStringIndex(tail, -1)
	if len(amounts) == 0 {
		return model.RawTransaction{}, false
	}

	fields := map[string]string{
		"date":       line[dates[0][0]:dateEnd],
		"value_date": line[valueStart:valueEnd],
		"narration":  narration,
		"reference":  reference,
	}

	amount := tail[amounts[0][0]:amounts[0][1]]
	if len(amounts) > 1 {
		last := amounts[len(amounts)-1]
		fields["balance"] = tail[last[0]:last[1]]
	}

	if e.isCreditRow(amounts[0][0], narration) {
		fields["credit"] = amount
	} else {
		fields["debit"] = amount
	}
	return model.RawTransaction{Fields: fields, Line: lineNo}, true
}

// isCreditRow decides the amount column from the gap to the value date,
// falling back to narration keywords when the layout is collapsed.
func (e *HDFCExtractor) isCreditRow(gap int, narration string) bool {
	if gap >= creditGapThreshold {
		return true
	}
	upper := strings.ToUpper(narration)
	for _, kw := range hdfcCreditKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

func (e *HDFCExtractor) extractCardRows(text string) ([]model.RawTransaction, []string) {
	var (
		txns     []model.RawTransaction
		warnings []string
	)

	cardNo := ""
	if m := hdfcCardNoPattern.FindStringSubmatch(text); m != nil {
		cardNo = m[1]
	}

	for i, line := range strings.Split(text, "\n") {
		if skipLine(line) {
			continue
		}
		m := hdfcCardRowPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		fields := map[string]string{
			"date":     m[1],
			"merchant": m[3],
			"amount":   m[4],
			"card_no":  cardNo,
		}
		if m[5] != "" {
			fields["type"] = string(model.TypeCredit)
		}
		txns = append(txns, model.RawTransaction{Fields: fields, Line: i + 1})
	}

	if len(txns) == 0 {
		warnings = append(warnings, "no card rows matched")
	}
	return txns, warnings
}

// splitTrailingReference peels a reference number off the end of the
// narration segment. References are compact alphanumeric tokens containing
// at least one digit; plain words stay in the narration.
func splitTrailingReference(middle string) (narration, reference string) {
	fields := strings.Fields(middle)
	if len(fields) < 2 {
		return middle, ""
	}
	last := fields[len(fields)-1]
	if hdfcRefPattern.MatchString(last) && strings.ContainsAny(last, "0123456789") {
		return strings.Join(fields[:len(fields)-1], " "), last
	}
	return middle, ""
}
