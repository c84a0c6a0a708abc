package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ledgerparse/ledgerparse/internal/model"
	"github.com/ledgerparse/ledgerparse/internal/registry"
)

// UPIExtractor parses app-exported UPI transaction statements. Each
// transaction spans a block of three lines: the counterparty name, then
// the day-of-month with the amount, then the month, two-digit year, and
// direction tag. A reference line may follow the block.
type UPIExtractor struct{}

var (
	upiAmountLinePattern = regexp.MustCompile(
		`^(\d{1,2})\s*₹?\s*([0-9][0-9,]*\.\d{2})\s*(Dr|Cr)?$`)
	upiMonthLinePattern = regexp.MustCompile(
		`^([A-Za-z]{3})\s+(\d{1,2})\s+(Dr|Cr)$`)
	upiRefLinePattern = regexp.MustCompile(
		`(?i)UPI\s+Ref(?:\s*No)?\.?\s*:?\s*([A-Za-z0-9]{8,20})`)
	upiBareRefPattern = regexp.MustCompile(`^\d{12}$`)
)

// Name identifies the extractor in parse metadata.
func (e *UPIExtractor) Name() string { return "upi" }

// Extract applies the UPI block recipe in rule order.
func (e *UPIExtractor) Extract(text string, rules []model.PatternRule) Result {
	return runRecipes(text, rules, map[string]recipeFunc{
		registry.RecipeUPIBlocks: e.extractBlocks,
	})
}

func (e *UPIExtractor) extractBlocks(text string) ([]model.RawTransaction, []string) {
	var (
		txns     []model.RawTransaction
		warnings []string
	)

	lines := strings.Split(text, "\n")
	for i := 0; i+2 < len(lines); i++ {
		merchant := strings.TrimSpace(lines[i])
		if merchant == "" || skipLine(lines[i]) {
			continue
		}

		amt := upiAmountLinePattern.FindStringSubmatch(strings.TrimSpace(lines[i+1]))
		if amt == nil {
			continue
		}
		mon := upiMonthLinePattern.FindStringSubmatch(strings.TrimSpace(lines[i+2]))
		if mon == nil {
			warnings = append(warnings, warnf("line %d: amount line without month line", i+2))
			continue
		}

		// The day comes from the amount line, month and two-digit year
		// from the closing line. Recomposed in "D Mon YY" form for the
		// normalizer.
		fields := map[string]string{
			"merchant": merchant,
			"date":     fmt.Sprintf("%s %s %s", amt[1], mon[1], mon[2]),
			"amount":   amt[2],
		}

		direction := amt[3]
		if direction == "" {
			direction = mon[3]
		}
		if strings.EqualFold(direction, "Cr") {
			fields["type"] = string(model.TypeCredit)
		}

		// A reference may trail the block on its own line.
		if i+3 < len(lines) {
			next := strings.TrimSpace(lines[i+3])
			if m := upiRefLinePattern.FindStringSubmatch(next); m != nil {
				fields["upi_ref"] = m[1]
				fields["reference"] = m[1]
			} else if upiBareRefPattern.MatchString(next) {
				fields["upi_ref"] = next
				fields["reference"] = next
			}
		}

		txns = append(txns, model.RawTransaction{Fields: fields, Line: i + 1})
		i += 2
	}

	if len(txns) == 0 {
		warnings = append(warnings, "no transaction blocks matched")
	}
	return txns, warnings
}
