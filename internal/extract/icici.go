package extract

import (
	"regexp"
	"strings"

	"github.com/ledgerparse/ledgerparse/internal/model"
	"github.com/ledgerparse/ledgerparse/internal/registry"
)

// ICICIExtractor parses ICICI bank statements. Rows carry a full date, a
// numeric transaction ID, free-text remarks, one amount, and an optional
// CR tag; untagged amounts are withdrawals.
type ICICIExtractor struct{}

var iciciRowPattern = regexp.MustCompile(
	`^(\d{2}/\d{2}/\d{4})\s+(\d{10,12})\s+(.+?)\s+([0-9][0-9,]*(?:\.\d{2})?)\s*(CR)?\s*$`)

// Name identifies the extractor in parse metadata.
func (e *ICICIExtractor) Name() string { return "icici" }

// Extract applies the ICICI recipe in rule order.
func (e *ICICIExtractor) Extract(text string, rules []model.PatternRule) Result {
	return runRecipes(text, rules, map[string]recipeFunc{
		registry.RecipeICICIBankRows: e.extractRows,
	})
}

func (e *ICICIExtractor) extractRows(text string) ([]model.RawTransaction, []string) {
	var (
		txns     []model.RawTransaction
		warnings []string
	)

	for i, line := range strings.Split(text, "\n") {
		if skipLine(line) {
			continue
		}
		m := iciciRowPattern.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			// Remarks wrap onto the following line on long narrations.
			if len(txns) > 0 && !strings.ContainsAny(line, "0123456789") {
				last := &txns[len(txns)-1]
				last.Fields["narration"] += " " + strings.TrimSpace(line)
			}
			continue
		}

		fields := map[string]string{
			"date":      m[1],
			"reference": m[2],
			"narration": m[3],
		}
		if m[5] == "CR" {
			fields["credit"] = m[4]
		} else {
			fields["debit"] = m[4]
		}
		txns = append(txns, model.RawTransaction{Fields: fields, Line: i + 1})
	}

	if len(txns) == 0 {
		warnings = append(warnings, "no rows matched")
	}
	return txns, warnings
}
