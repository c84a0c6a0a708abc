package model

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType marks the direction of a card or UPI transaction.
type TransactionType string

// Transaction direction constants.
const (
	TypeDebit  TransactionType = "debit"
	TypeCredit TransactionType = "credit"
)

// RawTransaction is the unnormalized output of an extractor: a loose field
// map keyed by canonical field names ("date", "narration", "debit", ...).
// Values are verbatim text from the statement; normalization happens later.
type RawTransaction struct {
	Fields map[string]string
	Line   int
}

// Field returns the named raw field, or empty string when absent.
func (r RawTransaction) Field(name string) string {
	if r.Fields == nil {
		return ""
	}
	return r.Fields[name]
}

// Transaction is a canonical, schema-conformant transaction record.
// Field presence is governed by the statement type: bank statements carry
// Narration/ValueDate/Debit/Credit/Balance, card statements carry
// Merchant/Amount/Type/CardNo, UPI statements add UPIRef.
type Transaction struct {
	Date      time.Time
	ValueDate time.Time
	Narration string
	Merchant  string
	Reference string
	CardNo    string // last 4 digits only
	UPIRef    string
	Type      TransactionType
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Amount    decimal.Decimal
	Balance   decimal.Decimal
}

// fingerprintPrefixLen bounds the description portion of the duplicate
// fingerprint so trailing location tokens don't defeat matching.
const fingerprintPrefixLen = 24

// Fingerprint derives the duplicate-detection key for a transaction.
// Two transactions with identical fingerprints are duplicates. A non-empty
// reference participates in the key, so distinct references never merge
// even when date, amount, and description collide.
func (t *Transaction) Fingerprint() string {
	desc := t.Narration
	if desc == "" {
		desc = t.Merchant
	}
	desc = strings.ToLower(desc)
	if len(desc) > fingerprintPrefixLen {
		desc = desc[:fingerprintPrefixLen]
	}

	data := fmt.Sprintf("%s:%s:%s:%s",
		t.Date.Format("2006-01-02"),
		t.signedAmount().StringFixed(2),
		desc,
		t.Reference)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// signedAmount collapses the amount representation across statement types:
// bank rows carry debit/credit columns, card and UPI rows carry a single
// amount plus a direction.
func (t *Transaction) signedAmount() decimal.Decimal {
	if !t.Debit.IsZero() {
		return t.Debit.Neg()
	}
	if !t.Credit.IsZero() {
		return t.Credit
	}
	if t.Type == TypeDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}
