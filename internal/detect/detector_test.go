package detect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerparse/ledgerparse/internal/model"
	"github.com/ledgerparse/ledgerparse/internal/registry"
)

func newTestDetector(t *testing.T) (*Detector, *registry.Registry) {
	t.Helper()
	reg, err := registry.New(registry.DefaultRules())
	require.NoError(t, err)
	return NewDetector(reg), reg
}

const hdfcBankText = `HDFC BANK Ltd.
Statement of account

Date       Narration                    Chq./Ref.No.   Value Dt    Withdrawal Amt   Deposit Amt   Closing Balance
01/03/24   UPI-SWIGGY-PAYMENT           0000123456     01/03/24    450.00                         12,550.00
02/03/24   NEFT CR-SALARY               N045122        02/03/24                     85,000.00     97,550.00
`

const upiText = `UPI Transaction Statement
ixigo AU Small Finance Bank

Swiggy
15 ₹450.00 Dr
Mar 24 Dr
UPI Ref No 404912341234
`

func TestDetectHDFCBank(t *testing.T) {
	d, _ := newTestDetector(t)

	got := d.Detect(hdfcBankText)
	assert.Equal(t, model.StatementBank, got.Type)
	assert.Equal(t, "HDFC", got.Issuer)
	assert.Greater(t, got.Confidence, 0.5)
	assert.NotEmpty(t, got.Candidates)
	assert.Equal(t, got.Issuer, got.Candidates[0].Issuer)
}

func TestDetectUPI(t *testing.T) {
	d, _ := newTestDetector(t)

	got := d.Detect(upiText)
	assert.Equal(t, model.StatementUPI, got.Type)
	assert.Equal(t, "Ixigo", got.Issuer)
	assert.Greater(t, got.Confidence, 0.4)
}

func TestDetectUnknown(t *testing.T) {
	d, _ := newTestDetector(t)

	got := d.Detect("the quick brown fox jumps over the lazy dog")
	assert.Equal(t, model.StatementUnknown, got.Type)
	assert.Zero(t, got.Confidence)
	assert.Empty(t, got.Candidates)
}

func TestDetectConfidenceMonotonic(t *testing.T) {
	d, _ := newTestDetector(t)

	// Each added marker must never lower the score for that candidate.
	partial := "HDFC BANK\n"
	fuller := partial + "Narration  Chq./Ref.No.  Value Dt\n"
	fullest := fuller + "Withdrawal Amt  Deposit Amt  Closing Balance\n"

	c1 := d.Detect(partial).Confidence
	c2 := d.Detect(fuller).Confidence
	c3 := d.Detect(fullest).Confidence

	assert.GreaterOrEqual(t, c2, c1)
	assert.GreaterOrEqual(t, c3, c2)
	assert.Greater(t, c3, c1, "adding markers must raise confidence overall")
}

func TestDetectHeaderMarkersWeighHigher(t *testing.T) {
	d, _ := newTestDetector(t)

	inHead := "HDFC BANK\nNarration\n"
	buried := "line\nline\nline\nline\nline\nline\nline\nline\nline\nline\nline\nline\nline\nline\nline\nHDFC BANK\nNarration\n"

	assert.Greater(t, d.Detect(inHead).Confidence, d.Detect(buried).Confidence,
		"markers in the leading lines must score higher than the same markers buried mid-document")
}

func TestDetectHDFCColumnsWithoutBankName(t *testing.T) {
	// No bank name anywhere; only the column header gives the issuer away.
	headerOnly := `Date       Narration                    Value Dt    Debit        Credit       Balance
01/03/24   UPI-SWIGGY-PAYMENT           01/03/24    450.00                    12,550.00
02/03/24   NEFT CR-ACME CORP-SALARY     02/03/24                 85,000.00    97,550.00
03/03/24   POS AMAZON RETAIL            03/03/24    1,299.00                  96,251.00
`
	d, _ := newTestDetector(t)

	got := d.Detect(headerOnly)
	assert.Equal(t, model.StatementBank, got.Type)
	assert.Equal(t, "HDFC", got.Issuer,
		"distinctive issuer columns must outrank the shared Date/Debit/Credit/Balance labels")
	assert.GreaterOrEqual(t, got.Confidence, 0.35)
}

func TestDetectGenericLeadYieldsToCloseSpecific(t *testing.T) {
	// The generic rule's marker is heavy enough to put it narrowly ahead
	// of the issuer rule, beyond an exact-tie margin but close.
	reg, err := registry.New([]model.PatternRule{
		{
			ID: "specific", Type: model.StatementBank, Issuer: "HDFC", Confidence: 1.0,
			Markers: []model.Marker{{Token: "special column", Weight: 2.4}},
		},
		{
			ID: "generic", Type: model.StatementBank, Issuer: "", Confidence: 1.0,
			Markers: []model.Marker{{Token: "common header", Weight: 2.8}},
		},
	})
	require.NoError(t, err)
	d := NewDetector(reg)

	got := d.Detect("common header special column\nsome body\n")
	assert.Equal(t, "HDFC", got.Issuer,
		"a generic candidate narrowly ahead of a specific one must yield")
	require.Len(t, got.Candidates, 2)
	assert.Equal(t, "", got.Candidates[1].Issuer)
	assert.Greater(t, got.Candidates[1].Confidence, got.Candidates[0].Confidence,
		"the raw scores keep their order; only the verdict is promoted")
}

func TestDetectNearTiePrefersSpecificIssuer(t *testing.T) {
	reg, err := registry.New([]model.PatternRule{
		{
			ID: "specific", Type: model.StatementBank, Issuer: "HDFC", Confidence: 0.6,
			Markers: []model.Marker{{Token: "shared header", Weight: model.MarkerWeightHeader}},
		},
		{
			ID: "generic", Type: model.StatementBank, Issuer: "", Confidence: 0.6,
			Markers: []model.Marker{{Token: "shared header", Weight: model.MarkerWeightHeader}},
		},
	})
	require.NoError(t, err)
	d := NewDetector(reg)

	got := d.Detect("shared header\nsome body\n")
	assert.Equal(t, "HDFC", got.Issuer, "equal scores must resolve to the issuer-specific candidate")
	require.Len(t, got.Candidates, 2)
	assert.Equal(t, "", got.Candidates[1].Issuer)
}

func TestDetectReflectsLearnedConfidence(t *testing.T) {
	d, reg := newTestDetector(t)

	before := d.Detect(hdfcBankText).Confidence

	// Drive the HDFC rule's confidence down and detect again. The same
	// detector must pick up the new confidence without rebuilding.
	for i := 0; i < 20; i++ {
		require.NoError(t, reg.RecordOutcome("hdfc-bank-classic", false, 0.15))
	}
	after := d.Detect(hdfcBankText).Confidence

	assert.Less(t, after, before, "detection must track learned rule confidence")
}
