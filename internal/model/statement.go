// Package model defines the core data structures for the ledgerparse pipeline.
package model

// StatementType is the top-level category of a financial statement.
type StatementType string

// Statement type constants.
const (
	StatementBank       StatementType = "bank"
	StatementCreditCard StatementType = "credit_card"
	StatementUPI        StatementType = "upi"
	StatementUnknown    StatementType = "unknown"
)

// Candidate is a ranked (issuer, type) detection candidate.
type Candidate struct {
	Issuer     string
	Type       StatementType
	Confidence float64
}

// DetectionResult is the outcome of classifying raw statement text.
// A zero-confidence result with StatementUnknown means total ambiguity;
// the caller falls through to the generic extractor.
type DetectionResult struct {
	Type       StatementType
	Issuer     string
	Confidence float64
	Candidates []Candidate
}
