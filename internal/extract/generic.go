package extract

import (
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/ledgerparse/ledgerparse/internal/model"
	"github.com/ledgerparse/ledgerparse/internal/registry"
)

// GenericExtractor handles statements with no issuer-specific extractor.
// It tries delimited tables with a recognizable header first, then falls
// back to shape-based line parsing: a leading date, trailing amounts, and
// narration in between.
type GenericExtractor struct {
	columns map[string]string
}

// candidateDelimiters are tried in order when sniffing a table layout.
var candidateDelimiters = []string{"\t", "~", "|", ";"}

// headerSynonyms maps the header labels seen across statements to
// canonical field names. Lookup is case-insensitive with a fuzzy fallback
// for near-misses like "Withdrawl".
var headerSynonyms = map[string]string{
	"date":                "date",
	"txn date":            "date",
	"tran date":           "date",
	"transaction date":    "date",
	"posting date":        "date",
	"value date":          "value_date",
	"value dt":            "value_date",
	"narration":           "narration",
	"description":         "narration",
	"particulars":         "narration",
	"details":             "narration",
	"transaction details": "narration",
	"remarks":             "narration",
	"transaction remarks": "narration",
	"debit":               "debit",
	"withdrawal":          "debit",
	"withdrawal amt":      "debit",
	"debit amount":        "debit",
	"dr":                  "debit",
	"credit":              "credit",
	"deposit":             "credit",
	"deposits":            "credit",
	"withdrawals":         "debit",
	"deposit amt":         "credit",
	"credit amount":       "credit",
	"cr":                  "credit",
	"balance":             "balance",
	"closing balance":     "balance",
	"running balance":     "balance",
	"amount":              "amount",
	"transaction amount":  "amount",
	"amt":                 "amount",
	"reference":           "reference",
	"ref no":              "reference",
	"ref":                 "reference",
	"reference number":    "reference",
	"cheque no":           "reference",
	"chq/ref number":      "reference",
	"chq/ref no":          "reference",
	"merchant":            "merchant",
	"merchant name":       "merchant",
	"type":                "type",
	"dr/cr":               "type",
	"transaction type":    "type",
	"upi ref":             "upi_ref",
	"upi ref no":          "upi_ref",
	"card no":             "card_no",
	"card number":         "card_no",
}

var (
	genericDatePattern = regexp.MustCompile(
		`^(\d{1,2}[/-]\d{1,2}[/-]\d{2,4}|\d{4}-\d{1,2}-\d{1,2}|\d{1,2}\s+[A-Za-z]{3,9}\s+\d{2,4})\b`)
	genericAmountPattern = regexp.MustCompile(
		`[0-9][0-9,]*\.\d{2}\s*(?:Dr|Cr|D|C)?\.?(?:\s|$)`)
)

// Name identifies the extractor in parse metadata.
func (e *GenericExtractor) Name() string { return "generic" }

// Columns returns the header-to-field mapping settled on by the last
// delimited extraction, or nil when line-shape parsing was used.
func (e *GenericExtractor) Columns() map[string]string { return e.columns }

// Extract applies the generic recipes in rule order.
func (e *GenericExtractor) Extract(text string, rules []model.PatternRule) Result {
	res := runRecipes(text, rules, map[string]recipeFunc{
		registry.RecipeDelimited:  e.extractDelimited,
		registry.RecipeLineShapes: e.extractLineShapes,
	})
	res.Columns = e.columns
	return res
}

func (e *GenericExtractor) extractDelimited(text string) ([]model.RawTransaction, []string) {
	e.columns = nil
	lines := strings.Split(text, "\n")

	delim := sniffDelimiter(lines)
	if delim == "" {
		return nil, nil
	}

	var (
		txns     []model.RawTransaction
		warnings []string
		fieldFor []string
	)

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := splitCells(line, delim)
		if len(cells) < 2 {
			continue
		}

		if fieldFor == nil {
			mapping, byName := mapHeader(cells)
			if mapping != nil {
				fieldFor = mapping
				e.columns = byName
			}
			continue
		}

		fields := make(map[string]string)
		for col, cell := range cells {
			if col >= len(fieldFor) || fieldFor[col] == "" || cell == "" {
				continue
			}
			fields[fieldFor[col]] = cell
		}
		if fields["date"] == "" {
			continue
		}
		txns = append(txns, model.RawTransaction{Fields: fields, Line: i + 1})
	}

	if fieldFor == nil {
		return nil, nil
	}
	if len(txns) == 0 {
		warnings = append(warnings, "delimited header found but no data rows")
	}
	return txns, warnings
}

func (e *GenericExtractor) extractLineShapes(text string) ([]model.RawTransaction, []string) {
	e.columns = nil
	var (
		txns     []model.RawTransaction
		warnings []string
	)

	for i, line := range strings.Split(text, "\n") {
		if skipLine(line) {
			continue
		}
		trimmed := strings.TrimSpace(line)

		date := genericDatePattern.FindString(trimmed)
		if date == "" {
			continue
		}
		rest := strings.TrimSpace(trimmed[len(date):])

		amounts := genericAmountPattern.FindAllStringIndex(rest, -1)
		if len(amounts) == 0 {
			warnings = append(warnings, warnf("line %d: date without amount", i+1))
			continue
		}

		first := amounts[0]
		narration := strings.TrimSpace(rest[:first[0]])
		if narration == "" {
			continue
		}

		fields := map[string]string{
			"date":      date,
			"narration": narration,
			"amount":    strings.TrimSpace(rest[first[0]:first[1]]),
		}
		if len(amounts) > 1 {
			last := amounts[len(amounts)-1]
			fields["balance"] = strings.TrimSpace(rest[last[0]:last[1]])
		}
		txns = append(txns, model.RawTransaction{Fields: fields, Line: i + 1})
	}

	if len(txns) > 0 {
		e.columns = map[string]string{
			"date":      "line start",
			"narration": "between date and first amount",
			"amount":    "first trailing amount",
		}
		for _, t := range txns {
			if t.Field("balance") != "" {
				e.columns["balance"] = "last trailing amount"
				break
			}
		}
	}
	return txns, warnings
}

// sniffDelimiter picks the first delimiter that splits at least two lines
// into three or more cells.
func sniffDelimiter(lines []string) string {
	for _, delim := range candidateDelimiters {
		count := 0
		for _, line := range lines {
			if len(splitCells(line, delim)) >= 3 {
				count++
				if count >= 2 {
					return delim
				}
			}
		}
	}
	return ""
}

func splitCells(line, delim string) []string {
	parts := strings.Split(line, delim)
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// mapHeader maps a candidate header row to canonical field names. It
// succeeds when a date column and at least one other field are recognized.
func mapHeader(cells []string) (fieldFor []string, byName map[string]string) {
	fieldFor = make([]string, len(cells))
	byName = make(map[string]string)
	mapped := 0

	for i, cell := range cells {
		field := matchHeaderLabel(cell)
		if field == "" {
			continue
		}
		// First column wins when two headers map to the same field.
		if _, taken := byName[field]; taken {
			continue
		}
		fieldFor[i] = field
		byName[field] = cell
		mapped++
	}

	if byName["date"] == "" || mapped < 2 {
		return nil, nil
	}
	return fieldFor, byName
}

// matchHeaderLabel resolves one header cell to a canonical field, trying
// an exact lookup before fuzzy matching.
func matchHeaderLabel(cell string) string {
	label := strings.ToLower(strings.TrimSpace(cell))
	label = strings.Trim(label, ".:")
	if label == "" {
		return ""
	}
	if field, ok := headerSynonyms[label]; ok {
		return field
	}

	best := ""
	bestRank := -1
	for syn, field := range headerSynonyms {
		// Try both directions so abbreviations ("Txn Dt") and misspellings
		// ("Withdrawl") both resolve.
		rank := fuzzy.RankMatchNormalizedFold(label, syn)
		if r := fuzzy.RankMatchNormalizedFold(syn, label); r >= 0 && (rank < 0 || r < rank) {
			rank = r
		}
		if rank < 0 {
			continue
		}
		if bestRank < 0 || rank < bestRank {
			best = field
			bestRank = rank
		}
	}
	// Anything needing more than a few edits is a different label.
	if bestRank < 0 || bestRank > 3 {
		return ""
	}
	return best
}
