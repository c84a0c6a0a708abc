package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ledgerparse/ledgerparse/internal/model"
)

const (
	transactionsSheet = "Transactions"
	summarySheet      = "Summary"
)

// Column order for the Transactions sheet, per statement type.
var (
	bankColumns = []struct{ header, field string }{
		{"Date", "date"}, {"Narration", "narration"}, {"Value Date", "value_date"},
		{"Debit", "debit"}, {"Credit", "credit"}, {"Balance", "balance"}, {"Reference", "reference"},
	}
	cardColumns = []struct{ header, field string }{
		{"Date", "date"}, {"Merchant", "merchant"}, {"Amount", "amount"},
		{"Type", "type"}, {"Card No", "card_no"}, {"Reference", "reference"},
	}
	upiColumns = []struct{ header, field string }{
		{"Date", "date"}, {"Merchant", "merchant"}, {"Amount", "amount"},
		{"Type", "type"}, {"UPI Ref", "upi_ref"}, {"Reference", "reference"},
	}
)

func writeExcel(result *model.ParseResult, w io.Writer) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", transactionsSheet); err != nil {
		return fmt.Errorf("renaming sheet: %w", err)
	}

	columns := columnsFor(result.StatementType)
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(transactionsSheet, cell, col.header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for rowIdx, r := range rowsFor(result) {
		values := fieldValues(r)
		for colIdx, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(transactionsSheet, cell, values[col.field]); err != nil {
				return fmt.Errorf("writing row %d: %w", rowIdx+1, err)
			}
		}
	}

	if err := writeSummarySheet(f, result); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, result *model.ParseResult) error {
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("creating summary sheet: %w", err)
	}

	summary := result.Summarize()
	entries := []struct {
		label string
		value any
	}{
		{"Statement Type", string(result.StatementType)},
		{"Transactions", summary.TotalTransactions},
		{"Total Credits", summary.TotalCredits.StringFixed(2)},
		{"Total Debits", summary.TotalDebits.StringFixed(2)},
		{"Net Amount", summary.NetAmount.StringFixed(2)},
		{"Warnings", summary.WarningCount},
		{"Errors", summary.ErrorCount},
	}
	if period, ok := result.Metadata[model.MetaStatementPeriod].(string); ok {
		entries = append(entries, struct {
			label string
			value any
		}{"Statement Period", period})
	}

	for i, e := range entries {
		labelCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		if err := f.SetCellValue(summarySheet, labelCell, e.label); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
		if err := f.SetCellValue(summarySheet, valueCell, e.value); err != nil {
			return fmt.Errorf("writing summary: %w", err)
		}
	}
	return nil
}

func columnsFor(st model.StatementType) []struct{ header, field string } {
	switch st {
	case model.StatementCreditCard:
		return cardColumns
	case model.StatementUPI:
		return upiColumns
	default:
		return bankColumns
	}
}

func fieldValues(r row) map[string]string {
	return map[string]string{
		"date":       r.Date,
		"value_date": r.ValueDate,
		"narration":  r.Narration,
		"merchant":   r.Merchant,
		"debit":      r.Debit,
		"credit":     r.Credit,
		"amount":     r.Amount,
		"type":       r.Type,
		"balance":    r.Balance,
		"card_no":    r.CardNo,
		"reference":  r.Reference,
		"upi_ref":    r.UPIRef,
	}
}
