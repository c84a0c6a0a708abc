package dedupe

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/ledgerparse/ledgerparse/internal/model"
)

func bankTxn(day int, narration, reference string, debit string) model.Transaction {
	return model.Transaction{
		Date:      time.Date(2024, time.March, day, 0, 0, 0, 0, time.UTC),
		Narration: narration,
		Reference: reference,
		Type:      model.TypeDebit,
		Debit:     decimal.RequireFromString(debit),
	}
}

func TestDeduplicate(t *testing.T) {
	t.Run("removes exact duplicates keeping first", func(t *testing.T) {
		a := bankTxn(1, "POS AMAZON", "R1", "100.00")
		b := bankTxn(2, "NEFT SALARY", "R2", "50.00")

		got := Deduplicate([]model.Transaction{a, b, a})
		assert.Len(t, got, 2)
		assert.Equal(t, "POS AMAZON", got[0].Narration)
		assert.Equal(t, "NEFT SALARY", got[1].Narration)
	})

	t.Run("distinct references never merge", func(t *testing.T) {
		a := bankTxn(1, "UPI COFFEE", "R1", "120.00")
		b := bankTxn(1, "UPI COFFEE", "R2", "120.00")

		got := Deduplicate([]model.Transaction{a, b})
		assert.Len(t, got, 2)
	})

	t.Run("same day same amount no reference merges", func(t *testing.T) {
		a := bankTxn(1, "UPI COFFEE", "", "120.00")
		b := bankTxn(1, "UPI COFFEE", "", "120.00")

		got := Deduplicate([]model.Transaction{a, b})
		assert.Len(t, got, 1)
	})

	t.Run("idempotent", func(t *testing.T) {
		in := []model.Transaction{
			bankTxn(1, "POS AMAZON", "R1", "100.00"),
			bankTxn(1, "POS AMAZON", "R1", "100.00"),
			bankTxn(3, "ATM WDL", "", "500.00"),
		}
		once := Deduplicate(in)
		twice := Deduplicate(once)
		assert.Equal(t, once, twice)
	})

	t.Run("empty and single element pass through", func(t *testing.T) {
		assert.Empty(t, Deduplicate(nil))
		one := []model.Transaction{bankTxn(1, "X", "", "1.00")}
		assert.Equal(t, one, Deduplicate(one))
	})
}
