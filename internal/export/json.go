package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ledgerparse/ledgerparse/internal/model"
)

// document is the JSON output shape: the transactions plus the parse
// metadata a consumer needs to judge them.
type document struct {
	Metadata      map[string]any      `json:"metadata,omitempty"`
	StatementType model.StatementType `json:"statement_type"`
	Transactions  []row               `json:"transactions"`
	Warnings      []string            `json:"warnings,omitempty"`
	Errors        []string            `json:"errors,omitempty"`
}

func writeJSON(result *model.ParseResult, w io.Writer) error {
	doc := document{
		Metadata:      result.Metadata,
		StatementType: result.StatementType,
		Transactions:  rowsFor(result),
		Warnings:      result.Warnings,
		Errors:        result.Errors,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("writing json: %w", err)
	}
	return nil
}
