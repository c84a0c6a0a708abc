package export

import (
	"fmt"
	"io"

	"github.com/gocarina/gocsv"

	"github.com/ledgerparse/ledgerparse/internal/model"
)

func writeCSV(result *model.ParseResult, w io.Writer) error {
	rows := rowsFor(result)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}
	return nil
}
