package registry

import (
	"github.com/ledgerparse/ledgerparse/internal/model"
)

// Recipe names understood by the extractors. A rule's recipe selects which
// row-parsing strategy the owning extractor applies when the rule matches.
const (
	RecipeHDFCBankRows  = "hdfc_bank_rows"
	RecipeHDFCCardRows  = "hdfc_card_rows"
	RecipeICICIBankRows = "icici_bank_rows"
	RecipeSBIBankRows   = "sbi_bank_rows"
	RecipeUPIBlocks     = "upi_blocks"
	RecipeDelimited     = "generic_delimited"
	RecipeLineShapes    = "generic_line_shapes"
)

// DefaultRules is the built-in rule set. Confidence values are priors; the
// adaptive learner moves them as statements are parsed.
func DefaultRules() []model.PatternRule {
	header := func(t string) model.Marker { return model.Marker{Token: t, Weight: model.MarkerWeightHeader} }
	column := func(t string) model.Marker { return model.Marker{Token: t, Weight: model.MarkerWeightColumn} }
	text := func(t string) model.Marker { return model.Marker{Token: t, Weight: model.MarkerWeightText} }

	return []model.PatternRule{
		{
			ID:     "hdfc-bank-classic",
			Type:   model.StatementBank,
			Issuer: "HDFC",
			Recipe: RecipeHDFCBankRows,
			Markers: []model.Marker{
				header("HDFC BANK"),
				header("HDFC BANK LTD"),
				column("Narration"),
				column("Chq./Ref.No."),
				column("Value Dt"),
				column("Withdrawal Amt"),
				column("Deposit Amt"),
				column("Closing Balance"),
				text("STATEMENT SUMMARY"),
			},
			Confidence: 0.85,
		},
		{
			ID:     "hdfc-card-domestic",
			Type:   model.StatementCreditCard,
			Issuer: "HDFC",
			Recipe: RecipeHDFCCardRows,
			Markers: []model.Marker{
				header("HDFC Bank Credit Card"),
				header("Statement of Account"),
				column("Domestic Transactions"),
				column("Date & Time"),
				text("Reward Points"),
				text("Minimum Amount Due"),
			},
			Confidence: 0.8,
		},
		{
			ID:     "icici-bank-remarks",
			Type:   model.StatementBank,
			Issuer: "ICICI",
			Recipe: RecipeICICIBankRows,
			Markers: []model.Marker{
				header("ICICI Bank"),
				header("ICICI BANK LIMITED"),
				column("Transaction Remarks"),
				column("Tran. Id"),
				column("Withdrawal (Dr)"),
				column("Deposit (Cr)"),
				text("DETAILED STATEMENT"),
			},
			Confidence: 0.8,
		},
		{
			ID:     "sbi-bank-txn-date",
			Type:   model.StatementBank,
			Issuer: "SBI",
			Recipe: RecipeSBIBankRows,
			Markers: []model.Marker{
				header("State Bank of India"),
				header("STATE BANK OF INDIA"),
				column("Txn Date"),
				column("Ref No./Cheque No."),
				text("Debit"),
				text("Credit"),
				text("Account Statement"),
			},
			Confidence: 0.8,
		},
		{
			ID:     "au-upi-blocks",
			Type:   model.StatementUPI,
			Issuer: "Ixigo",
			Recipe: RecipeUPIBlocks,
			Markers: []model.Marker{
				header("UPI Transaction Statement"),
				header("ixigo"),
				header("AU Small Finance Bank"),
				column("UPI Ref No"),
				text("VPA"),
				text("@aubank"),
			},
			Confidence: 0.75,
		},
		// Generic rules match labels nearly every statement shares, so
		// those labels carry the lowest weight. Column weight is reserved
		// for labels distinctive enough to identify an issuer.
		{
			ID:     "generic-bank-delimited",
			Type:   model.StatementBank,
			Issuer: "",
			Recipe: RecipeDelimited,
			Markers: []model.Marker{
				text("Date"),
				text("Description"),
				text("Debit"),
				text("Credit"),
				text("Balance"),
				text("Account Number"),
			},
			Confidence: 0.5,
		},
		{
			ID:     "generic-bank-lines",
			Type:   model.StatementBank,
			Issuer: "",
			Recipe: RecipeLineShapes,
			Markers: []model.Marker{
				text("Opening Balance"),
				text("Closing Balance"),
				text("IFSC"),
			},
			Confidence: 0.4,
		},
		{
			ID:     "generic-card-delimited",
			Type:   model.StatementCreditCard,
			Issuer: "",
			Recipe: RecipeDelimited,
			Markers: []model.Marker{
				text("Transaction Date"),
				text("Merchant"),
				text("Amount"),
				text("Credit Card Statement"),
				text("Total Amount Due"),
			},
			Confidence: 0.5,
		},
		{
			ID:     "generic-card-lines",
			Type:   model.StatementCreditCard,
			Issuer: "",
			Recipe: RecipeLineShapes,
			Markers: []model.Marker{
				text("Payment Due Date"),
				text("Credit Limit"),
			},
			Confidence: 0.4,
		},
		{
			ID:     "generic-upi-lines",
			Type:   model.StatementUPI,
			Issuer: "",
			Recipe: RecipeLineShapes,
			Markers: []model.Marker{
				column("UPI Ref"),
				text("UPI"),
				text("VPA"),
			},
			Confidence: 0.4,
		},
	}
}
