package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerparse/ledgerparse/internal/model"
	"github.com/ledgerparse/ledgerparse/internal/registry"
)

func genericRules() []model.PatternRule {
	return []model.PatternRule{
		{ID: "generic-bank-delimited", Recipe: registry.RecipeDelimited, Confidence: 0.5},
		{ID: "generic-bank-lines", Recipe: registry.RecipeLineShapes, Confidence: 0.4},
	}
}

func TestGenericDelimited(t *testing.T) {
	text := "Date~Description~Debit~Credit~Balance\n" +
		"01/03/2024~POS AMAZON RETAIL~1,299.00~~96,251.00\n" +
		"02/03/2024~SALARY CREDIT~~85,000.00~1,81,251.00\n"

	e := &GenericExtractor{}
	res := e.Extract(text, genericRules())

	require.Len(t, res.Transactions, 2)

	first := res.Transactions[0]
	assert.Equal(t, "01/03/2024", first.Field("date"))
	assert.Equal(t, "POS AMAZON RETAIL", first.Field("narration"))
	assert.Equal(t, "1,299.00", first.Field("debit"))
	assert.Empty(t, first.Field("credit"))

	second := res.Transactions[1]
	assert.Equal(t, "85,000.00", second.Field("credit"))
	assert.Equal(t, "1,81,251.00", second.Field("balance"))

	require.NotNil(t, res.Columns)
	assert.Equal(t, "Description", res.Columns["narration"])
	assert.Equal(t, "Date", res.Columns["date"])
}

func TestGenericDelimitedFuzzyHeaders(t *testing.T) {
	// Misspelled and abbreviated headers still map via fuzzy matching.
	text := "Txn Dt\tNaration\tWithdrawl\tDeposit\n" +
		"01/03/2024\tATM WDL\t500.00\t\n"

	e := &GenericExtractor{}
	res := e.Extract(text, genericRules())

	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "ATM WDL", res.Transactions[0].Field("narration"))
	assert.Equal(t, "500.00", res.Transactions[0].Field("debit"))
}

func TestGenericLineShapes(t *testing.T) {
	text := `Some Unknown Bank
01/03/2024 POS AMAZON RETAIL 1,299.00 Dr 96,251.00
02/03/2024 SALARY CREDIT 85,000.00 Cr 1,81,251.00
03/03/2024 note without amount
`
	e := &GenericExtractor{}
	res := e.Extract(text, genericRules())

	require.Len(t, res.Transactions, 2)

	first := res.Transactions[0]
	assert.Equal(t, "01/03/2024", first.Field("date"))
	assert.Equal(t, "POS AMAZON RETAIL", first.Field("narration"))
	assert.Contains(t, first.Field("amount"), "1,299.00")
	assert.Contains(t, first.Field("balance"), "96,251.00")

	assert.NotEmpty(t, res.Warnings, "the amount-less dated line must be warned about")
}

func TestGenericOutcomesRecordMissThenHit(t *testing.T) {
	// No delimiter in the text: the delimited recipe misses, line shapes hit.
	text := "01/03/2024 COFFEE SHOP 120.00\n02/03/2024 BOOKSTORE 450.00\n"

	e := &GenericExtractor{}
	res := e.Extract(text, genericRules())

	require.Len(t, res.Transactions, 2)
	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, "generic-bank-delimited", res.Outcomes[0].RuleID)
	assert.False(t, res.Outcomes[0].Matched)
	assert.Equal(t, "generic-bank-lines", res.Outcomes[1].RuleID)
	assert.True(t, res.Outcomes[1].Matched)
	assert.Equal(t, 2, res.Outcomes[1].TransactionCount)
}
