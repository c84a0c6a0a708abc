package parser

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerparse/ledgerparse/internal/common"
	"github.com/ledgerparse/ledgerparse/internal/learner"
	"github.com/ledgerparse/ledgerparse/internal/model"
	"github.com/ledgerparse/ledgerparse/internal/registry"
)

const hdfcStatement = `HDFC BANK Ltd.
Statement of account

Date       Narration                    Chq./Ref.No.   Value Dt    Withdrawal Amt   Deposit Amt   Closing Balance
01/03/24   UPI-SWIGGY-PAYMENT           0000123456     01/03/24    450.00                         12,550.00
02/03/24   NEFT CR-ACME CORP-SALARY     N045122        02/03/24                     85,000.00     97,550.00
03/03/24   POS 416021XXXXXX AMAZON      7010203040     03/03/24    1,299.00                       96,251.00
STATEMENT SUMMARY :-
`

const unknownBankStatement = `Some Unknown Bank
Account Number 00110022
01/03/2024 POS AMAZON RETAIL 1,299.00 Dr 96,251.00
02/03/2024 SALARY CREDIT 85,000.00 Cr 1,81,251.00
`

func newTestParser(t *testing.T, opts Options) (*Parser, *registry.Registry) {
	t.Helper()
	reg, err := registry.New(registry.DefaultRules())
	require.NoError(t, err)
	return New(reg, learner.New(reg, nil), nil, opts), reg
}

func TestParseHDFCBankStatement(t *testing.T) {
	p, _ := newTestParser(t, DefaultOptions())

	result, err := p.Parse(context.Background(), hdfcStatement)
	require.NoError(t, err)

	assert.Equal(t, model.StatementBank, result.StatementType)
	assert.Equal(t, "hdfc", result.Metadata[model.MetaParser])
	require.Len(t, result.Transactions, 3)

	swiggy := result.Transactions[0]
	assert.Equal(t, model.TypeDebit, swiggy.Type)
	assert.True(t, swiggy.Debit.Equal(decimal.RequireFromString("450")))
	assert.Equal(t, "UPI-SWIGGY-PAYMENT", swiggy.Narration)
	assert.Equal(t, "0000123456", swiggy.Reference)

	salary := result.Transactions[1]
	assert.Equal(t, model.TypeCredit, salary.Type)
	assert.True(t, salary.Credit.Equal(decimal.RequireFromString("85000")))

	assert.Equal(t, 3, result.Metadata[model.MetaTxnCount])
	assert.Equal(t, "01/03/2024 - 03/03/2024", result.Metadata[model.MetaStatementPeriod])
	assert.Empty(t, result.Errors)

	summary := result.Summarize()
	assert.True(t, summary.TotalCredits.Equal(decimal.RequireFromString("85000")))
	assert.True(t, summary.TotalDebits.Equal(decimal.RequireFromString("1749")))
}

func TestParseFallsBackToGeneric(t *testing.T) {
	p, _ := newTestParser(t, DefaultOptions())

	result, err := p.Parse(context.Background(), unknownBankStatement)
	require.NoError(t, err)

	assert.Equal(t, "generic", result.Metadata[model.MetaParser])
	require.Len(t, result.Transactions, 2)
	assert.Equal(t, model.TypeDebit, result.Transactions[0].Type)
	assert.Equal(t, model.TypeCredit, result.Transactions[1].Type)

	columns, ok := result.Metadata[model.MetaColumnsDetected].(map[string]string)
	require.True(t, ok, "the generic path must report the columns it inferred")
	assert.NotEmpty(t, columns["date"])
}

func TestParseHDFCColumnsOnlyStatement(t *testing.T) {
	// No bank name anywhere: the column header alone must route the
	// statement to the issuer parser, not the generic one.
	text := `Date       Narration                    Value Dt    Debit        Credit       Balance
01/03/24   UPI-SWIGGY-PAYMENT           01/03/24    450.00                    12,550.00
02/03/24   NEFT CR-ACME CORP-SALARY     02/03/24                 85,000.00    97,550.00
03/03/24   POS AMAZON RETAIL            03/03/24    1,299.00                  96,251.00
`
	p, _ := newTestParser(t, DefaultOptions())

	result, err := p.Parse(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, model.StatementBank, result.StatementType)
	assert.Equal(t, "hdfc", result.Metadata[model.MetaParser])
	require.Len(t, result.Transactions, 3)
	assert.Empty(t, result.Errors)

	assert.Equal(t, model.TypeDebit, result.Transactions[0].Type)
	assert.Equal(t, model.TypeCredit, result.Transactions[1].Type)
	assert.Equal(t, model.TypeDebit, result.Transactions[2].Type)
}

func TestParseFallbackTrainsGenericRules(t *testing.T) {
	// Strong HDFC markers over rows missing the value date column: the
	// issuer recipe misses and the generic line-shape recipe carries the
	// statement. Both outcomes must reach the learner, and the issuer
	// extractor's warnings must survive the handoff.
	text := `HDFC BANK Ltd.
Narration Value Dt Withdrawal Amt Deposit Amt Closing Balance
01/03/2024 POS AMAZON RETAIL 1,299.00
02/03/2024 SALARY CREDIT 85,000.00 Cr
`
	p, reg := newTestParser(t, DefaultOptions())
	hdfcBefore := confidenceOf(t, reg, "hdfc-bank-classic")
	linesBefore := confidenceOf(t, reg, "generic-bank-lines")

	result, err := p.Parse(context.Background(), text)
	require.NoError(t, err)

	assert.Equal(t, "generic", result.Metadata[model.MetaParser])
	require.Len(t, result.Transactions, 2)
	assert.Empty(t, result.Errors)

	joined := strings.Join(result.Warnings, "\n")
	assert.Contains(t, joined, "falling back to generic")
	assert.Contains(t, joined, "no extraction recipe produced transactions",
		"the issuer extractor's own warnings must be kept through the fallback")

	assert.Less(t, confidenceOf(t, reg, "hdfc-bank-classic"), hdfcBefore,
		"the issuer miss must lower its rule confidence")
	assert.Greater(t, confidenceOf(t, reg, "generic-bank-lines"), linesBefore,
		"the generic recipe that carried the fallback must gain confidence")
}

func TestParseEmptyInput(t *testing.T) {
	p, _ := newTestParser(t, DefaultOptions())

	_, err := p.Parse(context.Background(), "   \n\t  ")
	assert.ErrorIs(t, err, common.ErrEmptyInput)
}

func TestParseCancelledContext(t *testing.T) {
	p, _ := newTestParser(t, DefaultOptions())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := p.Parse(ctx, hdfcStatement)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseDeduplication(t *testing.T) {
	duplicated := `HDFC BANK Ltd.
Date       Narration                    Chq./Ref.No.   Value Dt    Withdrawal Amt   Deposit Amt   Closing Balance
01/03/24   UPI-SWIGGY-PAYMENT           0000123456     01/03/24    450.00                         12,550.00
01/03/24   UPI-SWIGGY-PAYMENT           0000123456     01/03/24    450.00                         12,550.00
`

	t.Run("enabled", func(t *testing.T) {
		p, _ := newTestParser(t, DefaultOptions())
		result, err := p.Parse(context.Background(), duplicated)
		require.NoError(t, err)
		assert.Len(t, result.Transactions, 1)
	})

	t.Run("disabled", func(t *testing.T) {
		p, _ := newTestParser(t, Options{Normalize: true, Deduplicate: false})
		result, err := p.Parse(context.Background(), duplicated)
		require.NoError(t, err)
		assert.Len(t, result.Transactions, 2)
	})
}

func TestParseMalformedDateBecomesWarning(t *testing.T) {
	withBadDate := `HDFC BANK Ltd.
Date       Narration                    Chq./Ref.No.   Value Dt    Withdrawal Amt   Deposit Amt   Closing Balance
31/02/24   GHOST ROW                    0000000001     31/02/24    100.00                         12,550.00
02/03/24   NEFT CR-ACME CORP-SALARY     N045122        02/03/24                     85,000.00     97,550.00
`
	p, _ := newTestParser(t, DefaultOptions())

	result, err := p.Parse(context.Background(), withBadDate)
	require.NoError(t, err, "a bad row must not fail the statement")
	assert.Len(t, result.Transactions, 1)
	assert.NotEmpty(t, result.Warnings)
}

func TestParseNoNormalizeKeepsRawRecords(t *testing.T) {
	p, _ := newTestParser(t, Options{Normalize: false, Deduplicate: true})

	result, err := p.Parse(context.Background(), hdfcStatement)
	require.NoError(t, err)

	assert.Empty(t, result.Transactions)
	require.Len(t, result.Raw, 3)
	assert.Equal(t, "450.00", result.Raw[0].Field("debit"))
}

func TestParseFeedsLearner(t *testing.T) {
	p, reg := newTestParser(t, DefaultOptions())

	before := confidenceOf(t, reg, "hdfc-bank-classic")
	_, err := p.Parse(context.Background(), hdfcStatement)
	require.NoError(t, err)
	after := confidenceOf(t, reg, "hdfc-bank-classic")

	assert.Greater(t, after, before, "a successful extraction must raise the rule's confidence")
}

func confidenceOf(t *testing.T, reg *registry.Registry, id string) float64 {
	t.Helper()
	for _, rule := range reg.All() {
		if rule.ID == id {
			return rule.Confidence
		}
	}
	t.Fatalf("rule %s not found", id)
	return 0
}
