// Package dedupe removes duplicate transactions from a parsed statement.
// Statements exported twice, or pages that repeat a carried-forward row,
// produce records that are byte-identical in everything that matters; the
// fingerprint collapses them while keeping legitimate repeats apart via
// their reference numbers.
package dedupe

import (
	"github.com/ledgerparse/ledgerparse/internal/model"
)

// Deduplicate returns the transactions with duplicates removed. The first
// occurrence of each fingerprint wins and input order is preserved, so the
// operation is idempotent: deduplicating an already-deduplicated slice
// returns it unchanged.
func Deduplicate(txns []model.Transaction) []model.Transaction {
	if len(txns) < 2 {
		return txns
	}

	seen := make(map[string]struct{}, len(txns))
	out := make([]model.Transaction, 0, len(txns))
	for i := range txns {
		fp := txns[i].Fingerprint()
		if _, dup := seen[fp]; dup {
			continue
		}
		seen[fp] = struct{}{}
		out = append(out, txns[i])
	}
	return out
}
