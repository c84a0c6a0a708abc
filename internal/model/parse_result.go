package model

import (
	"github.com/shopspring/decimal"
)

// Metadata keys populated by the parser.
const (
	MetaParser          = "parser"
	MetaTxnCount        = "transaction_count"
	MetaColumnsDetected = "columns_detected"
	MetaStatementPeriod = "statement_period"
)

// ParseResult is the outcome of one parse call. It is immutable after
// construction: the learner feedback loop updates registry state, never
// the result itself.
type ParseResult struct {
	Metadata      map[string]any
	StatementType StatementType
	RawText       string
	Transactions  []Transaction
	// Raw holds the unnormalized records when normalization is disabled.
	Raw      []RawTransaction
	Errors   []string
	Warnings []string
}

// Summary aggregates totals over the parsed transactions.
type Summary struct {
	TotalCredits      decimal.Decimal
	TotalDebits       decimal.Decimal
	NetAmount         decimal.Decimal
	TotalTransactions int
	ErrorCount        int
	WarningCount      int
}

// Summarize computes credit/debit totals across the result's transactions.
// Card and UPI rows contribute their single amount to the side named by
// their direction.
func (r *ParseResult) Summarize() Summary {
	s := Summary{
		TotalTransactions: len(r.Transactions),
		ErrorCount:        len(r.Errors),
		WarningCount:      len(r.Warnings),
	}

	for i := range r.Transactions {
		t := &r.Transactions[i]
		switch {
		case !t.Credit.IsZero():
			s.TotalCredits = s.TotalCredits.Add(t.Credit)
		case !t.Debit.IsZero():
			s.TotalDebits = s.TotalDebits.Add(t.Debit)
		case t.Type == TypeCredit:
			s.TotalCredits = s.TotalCredits.Add(t.Amount)
		default:
			s.TotalDebits = s.TotalDebits.Add(t.Amount)
		}
	}

	s.NetAmount = s.TotalCredits.Sub(s.TotalDebits)
	return s
}
