package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ledgerparse/ledgerparse/internal/model"
)

func bankResult() *model.ParseResult {
	return &model.ParseResult{
		StatementType: model.StatementBank,
		Metadata:      map[string]any{model.MetaStatementPeriod: "01/03/2024 - 02/03/2024"},
		Transactions: []model.Transaction{
			{
				Date:      time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
				ValueDate: time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
				Narration: "UPI-SWIGGY-PAYMENT",
				Reference: "0000123456",
				Type:      model.TypeDebit,
				Debit:     decimal.RequireFromString("450"),
				Balance:   decimal.RequireFromString("12550"),
			},
			{
				Date:      time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC),
				ValueDate: time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC),
				Narration: "NEFT CR-SALARY",
				Type:      model.TypeCredit,
				Credit:    decimal.RequireFromString("85000"),
				Balance:   decimal.RequireFromString("97550"),
			},
		},
	}
}

func cardResult() *model.ParseResult {
	return &model.ParseResult{
		StatementType: model.StatementCreditCard,
		Transactions: []model.Transaction{
			{
				Date:     time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
				Merchant: "SWIGGY",
				CardNo:   "9012",
				Type:     model.TypeDebit,
				Amount:   decimal.RequireFromString("450"),
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{
		"csv": FormatCSV, "JSON": FormatJSON, "xlsx": FormatExcel, "Excel": FormatExcel,
	} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}

func TestWriteCSVBank(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(bankResult(), FormatCSV, &buf))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3, "header plus two rows")
	assert.Contains(t, lines[0], "narration")
	assert.Contains(t, lines[1], "01/03/2024")
	assert.Contains(t, lines[1], "450.00")
	assert.Contains(t, lines[2], "85000.00")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(cardResult(), FormatJSON, &buf))

	var doc struct {
		StatementType string `json:"statement_type"`
		Transactions  []struct {
			Date     string `json:"date"`
			Merchant string `json:"merchant"`
			Amount   string `json:"amount"`
			Type     string `json:"type"`
			CardNo   string `json:"card_no"`
		} `json:"transactions"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "credit_card", doc.StatementType)
	require.Len(t, doc.Transactions, 1)
	assert.Equal(t, "SWIGGY", doc.Transactions[0].Merchant)
	assert.Equal(t, "450.00", doc.Transactions[0].Amount)
	assert.Equal(t, "9012", doc.Transactions[0].CardNo)
}

func TestWriteExcel(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(bankResult(), FormatExcel, &buf))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(transactionsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "UPI-SWIGGY-PAYMENT", rows[1][1])

	summary, err := f.GetRows(summarySheet)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(summary), 7)

	found := map[string]string{}
	for _, r := range summary {
		if len(r) >= 2 {
			found[r[0]] = r[1]
		}
	}
	assert.Equal(t, "85000.00", found["Total Credits"])
	assert.Equal(t, "450.00", found["Total Debits"])
	assert.Equal(t, "01/03/2024 - 02/03/2024", found["Statement Period"])
}
