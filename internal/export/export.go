// Package export renders parse results as CSV, JSON, or Excel workbooks.
// Output columns follow the canonical schema of the statement type.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/ledgerparse/ledgerparse/internal/model"
)

// Format selects an output encoding.
type Format string

// Supported output formats.
const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatExcel Format = "xlsx"
)

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatCSV:
		return FormatCSV, nil
	case FormatJSON:
		return FormatJSON, nil
	case FormatExcel, "excel":
		return FormatExcel, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want csv, json, or xlsx)", s)
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	return string(f)
}

// Write renders the result to w in the given format.
func Write(result *model.ParseResult, format Format, w io.Writer) error {
	switch format {
	case FormatCSV:
		return writeCSV(result, w)
	case FormatJSON:
		return writeJSON(result, w)
	case FormatExcel:
		return writeExcel(result, w)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// row is the flattened, type-appropriate view of a transaction used by
// every encoder. Fields irrelevant to the statement type are omitted.
type row struct {
	Date      string `csv:"date" json:"date"`
	ValueDate string `csv:"value_date,omitempty" json:"value_date,omitempty"`
	Narration string `csv:"narration,omitempty" json:"narration,omitempty"`
	Merchant  string `csv:"merchant,omitempty" json:"merchant,omitempty"`
	Debit     string `csv:"debit,omitempty" json:"debit,omitempty"`
	Credit    string `csv:"credit,omitempty" json:"credit,omitempty"`
	Amount    string `csv:"amount,omitempty" json:"amount,omitempty"`
	Type      string `csv:"type,omitempty" json:"type,omitempty"`
	Balance   string `csv:"balance,omitempty" json:"balance,omitempty"`
	CardNo    string `csv:"card_no,omitempty" json:"card_no,omitempty"`
	Reference string `csv:"reference,omitempty" json:"reference,omitempty"`
	UPIRef    string `csv:"upi_ref,omitempty" json:"upi_ref,omitempty"`
}

func rowsFor(result *model.ParseResult) []row {
	rows := make([]row, 0, len(result.Transactions))
	for i := range result.Transactions {
		t := &result.Transactions[i]
		r := row{
			Date:      t.Date.Format("02/01/2006"),
			Reference: t.Reference,
		}

		switch result.StatementType {
		case model.StatementCreditCard:
			r.Merchant = t.Merchant
			r.Amount = t.Amount.StringFixed(2)
			r.Type = string(t.Type)
			r.CardNo = t.CardNo
		case model.StatementUPI:
			r.Merchant = t.Merchant
			r.Amount = t.Amount.StringFixed(2)
			r.Type = string(t.Type)
			r.UPIRef = t.UPIRef
		default:
			r.Narration = t.Narration
			if !t.ValueDate.IsZero() {
				r.ValueDate = t.ValueDate.Format("02/01/2006")
			}
			if !t.Debit.IsZero() {
				r.Debit = t.Debit.StringFixed(2)
			}
			if !t.Credit.IsZero() {
				r.Credit = t.Credit.StringFixed(2)
			}
			if !t.Balance.IsZero() {
				r.Balance = t.Balance.StringFixed(2)
			}
		}
		rows = append(rows, r)
	}
	return rows
}
