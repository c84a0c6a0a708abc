package normalize

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ledgerparse/ledgerparse/internal/model"
)

// Normalize converts a raw extractor transaction into the canonical schema
// for the given statement type. A non-nil error is a rejection reason; the
// caller records it as a warning and drops the record.
func Normalize(raw model.RawTransaction, st model.StatementType) (model.Transaction, error) {
	var txn model.Transaction

	date, err := ParseDate(raw.Field("date"))
	if err != nil {
		return txn, fmt.Errorf("line %d: %w", raw.Line, err)
	}
	txn.Date = date

	txn.ValueDate = date
	if v := raw.Field("value_date"); v != "" {
		if vd, vdErr := ParseDate(v); vdErr == nil {
			txn.ValueDate = vd
		}
	}

	desc := CleanDescription(raw.Field("narration"))
	if desc == "" {
		desc = CleanDescription(raw.Field("merchant"))
	}
	if desc == "" {
		return txn, fmt.Errorf("line %d: empty description", raw.Line)
	}
	txn.Narration = desc
	txn.Merchant = CleanMerchant(desc)
	if m := raw.Field("merchant"); m != "" {
		txn.Merchant = CleanMerchant(m)
	}

	txn.Reference = CleanDescription(raw.Field("reference"))
	txn.UPIRef = CleanDescription(raw.Field("upi_ref"))
	txn.CardNo = lastFour(raw.Field("card_no"))

	if v := raw.Field("balance"); v != "" {
		if bal, _, balErr := ParseAmount(v); balErr == nil {
			txn.Balance = bal
		}
	}

	switch st {
	case model.StatementBank:
		return normalizeBank(raw, txn)
	case model.StatementCreditCard, model.StatementUPI:
		return normalizeAmountType(raw, txn)
	case model.StatementUnknown:
		// Column shape decides the schema when the type is unresolved.
		if raw.Field("debit") != "" || raw.Field("credit") != "" {
			return normalizeBank(raw, txn)
		}
		return normalizeAmountType(raw, txn)
	default:
		return txn, fmt.Errorf("line %d: unknown statement type %q", raw.Line, st)
	}
}

// normalizeBank resolves the debit/credit column pair. Exactly one side is
// nonzero on a valid bank row; rows that name a single amount plus a
// direction indicator are routed to the indicated side.
func normalizeBank(raw model.RawTransaction, txn model.Transaction) (model.Transaction, error) {
	var debit, credit decimal.Decimal

	if v := raw.Field("debit"); v != "" {
		d, _, err := ParseAmount(v)
		if err != nil {
			return txn, fmt.Errorf("line %d: debit: %w", raw.Line, err)
		}
		debit = d
	}
	if v := raw.Field("credit"); v != "" {
		c, _, err := ParseAmount(v)
		if err != nil {
			return txn, fmt.Errorf("line %d: credit: %w", raw.Line, err)
		}
		credit = c
	}

	// Combined single-amount column: the sign marker or an explicit type
	// field says which side the amount belongs to.
	if debit.IsZero() && credit.IsZero() {
		v := raw.Field("amount")
		if v == "" {
			return txn, fmt.Errorf("line %d: no amount in bank row", raw.Line)
		}
		amt, marker, err := ParseAmount(v)
		if err != nil {
			return txn, fmt.Errorf("line %d: amount: %w", raw.Line, err)
		}
		if marker == SignCredit || raw.Field("type") == string(model.TypeCredit) {
			credit = amt
		} else {
			debit = amt
		}
	}

	if !debit.IsZero() && !credit.IsZero() {
		return txn, fmt.Errorf("line %d: both debit and credit are nonzero", raw.Line)
	}
	if debit.IsZero() && credit.IsZero() {
		return txn, fmt.Errorf("line %d: zero-amount bank row", raw.Line)
	}

	txn.Debit = debit
	txn.Credit = credit
	if credit.IsZero() {
		txn.Type = model.TypeDebit
		txn.Amount = debit
	} else {
		txn.Type = model.TypeCredit
		txn.Amount = credit
	}
	return txn, nil
}

// normalizeAmountType handles card and UPI rows: a single amount plus a
// direction, defaulting to debit when no marker is present (spends
// dominate card statements; credits are always explicitly marked).
func normalizeAmountType(raw model.RawTransaction, txn model.Transaction) (model.Transaction, error) {
	v := raw.Field("amount")
	if v == "" {
		return txn, fmt.Errorf("line %d: missing amount", raw.Line)
	}
	amt, marker, err := ParseAmount(v)
	if err != nil {
		return txn, fmt.Errorf("line %d: amount: %w", raw.Line, err)
	}
	if amt.IsZero() {
		return txn, fmt.Errorf("line %d: zero amount", raw.Line)
	}

	txn.Amount = amt
	txn.Type = model.TypeDebit
	if marker == SignCredit || raw.Field("type") == string(model.TypeCredit) {
		txn.Type = model.TypeCredit
	}
	return txn, nil
}

// lastFour masks a card number down to its final four digits.
func lastFour(s string) string {
	digits := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) < 4 {
		return ""
	}
	return string(digits[len(digits)-4:])
}
