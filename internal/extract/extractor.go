// Package extract turns detected statement text into raw transaction
// records. Each supported issuer has a dedicated extractor that knows the
// row shapes of that issuer's statements; a generic extractor handles
// everything else. Extractors apply the pattern rules handed to them in
// order, report per-rule outcomes, and never normalize field values.
package extract

import (
	"fmt"

	"github.com/ledgerparse/ledgerparse/internal/model"
)

// Result is the output of one extraction pass.
type Result struct {
	// Columns records the header-to-field mapping the extractor settled
	// on, when it performed column detection.
	Columns      map[string]string
	Transactions []model.RawTransaction
	Outcomes     []model.RuleOutcome
	Warnings     []string
}

// Extractor extracts raw transactions from statement text. The rules slice
// arrives ordered by descending confidence; the extractor tries each rule's
// recipe in turn and stops at the first one that yields transactions.
type Extractor interface {
	Name() string
	Extract(text string, rules []model.PatternRule) Result
}

// recipeFunc parses text according to one extraction recipe.
type recipeFunc func(text string) ([]model.RawTransaction, []string)

// runRecipes executes the rules' recipes in order. The first recipe that
// produces transactions is recorded as a hit; every recipe attempted before
// it is recorded as a miss. Rules whose recipe the extractor does not
// implement are skipped without an outcome.
func runRecipes(text string, rules []model.PatternRule, recipes map[string]recipeFunc) Result {
	var res Result
	for _, rule := range rules {
		fn, ok := recipes[rule.Recipe]
		if !ok {
			continue
		}

		txns, warnings := fn(text)
		res.Outcomes = append(res.Outcomes, model.RuleOutcome{
			RuleID:           rule.ID,
			Matched:          len(txns) > 0,
			TransactionCount: len(txns),
		})
		if len(txns) > 0 {
			res.Transactions = txns
			res.Warnings = append(res.Warnings, warnings...)
			return res
		}
	}
	res.Warnings = append(res.Warnings, "no extraction recipe produced transactions")
	return res
}

// ForDetection picks the extractor for a detection result. Unrecognized
// issuers fall through to the generic extractor.
func ForDetection(det model.DetectionResult) Extractor {
	switch det.Issuer {
	case "HDFC":
		return &HDFCExtractor{}
	case "ICICI":
		return &ICICIExtractor{}
	case "SBI":
		return &SBIExtractor{}
	case "Ixigo":
		return &UPIExtractor{}
	default:
		return &GenericExtractor{}
	}
}

func warnf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
