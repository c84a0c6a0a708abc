package extract

import (
	"regexp"
	"strings"

	"github.com/ledgerparse/ledgerparse/internal/model"
	"github.com/ledgerparse/ledgerparse/internal/registry"
)

// SBIExtractor parses SBI bank statements. Rows use a "DD Mon YY" date and
// tag every amount with a single D or C direction letter.
type SBIExtractor struct{}

var sbiRowPattern = regexp.MustCompile(
	`^(\d{1,2}\s+[A-Za-z]{3}\s+\d{2})\s+(.+?)\s+([0-9][0-9,]*(?:\.\d{2})?)\s*([DC])\s*$`)

// Name identifies the extractor in parse metadata.
func (e *SBIExtractor) Name() string { return "sbi" }

// Extract applies the SBI recipe in rule order.
func (e *SBIExtractor) Extract(text string, rules []model.PatternRule) Result {
	return runRecipes(text, rules, map[string]recipeFunc{
		registry.RecipeSBIBankRows: e.extractRows,
	})
}

func (e *SBIExtractor) extractRows(text string) ([]model.RawTransaction, []string) {
	var (
		txns     []model.RawTransaction
		warnings []string
	)

	for i, line := range strings.Split(text, "\n") {
		if skipLine(line) {
			continue
		}
		m := sbiRowPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}

		narration, reference := splitTrailingReference(m[2])
		fields := map[string]string{
			"date":      m[1],
			"narration": narration,
			"reference": reference,
		}
		if m[4] == "C" {
			fields["credit"] = m[3]
		} else {
			fields["debit"] = m[3]
		}
		txns = append(txns, model.RawTransaction{Fields: fields, Line: i + 1})
	}

	if len(txns) == 0 {
		warnings = append(warnings, "no rows matched")
	}
	return txns, warnings
}
