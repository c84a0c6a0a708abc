// Package pdftext reads statement input files. PDF files go through
// structured text extraction that preserves the horizontal layout; the
// column gaps carry meaning for fixed-width bank statements. Anything
// else is read as plain text.
package pdftext

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/ledgerparse/ledgerparse/internal/common"
)

// approxCharWidth is the point width assumed per character when turning
// horizontal gaps between PDF words back into spaces.
const approxCharWidth = 5.0

// ExtractFile reads the statement text from a file. PDFs are extracted
// page by page; all other files are read verbatim.
func ExtractFile(path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extractPDF(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", path, common.ErrEmptyInput)
	}
	return text, nil
}

// extractPDF pulls row-structured text out of a PDF. The library panics on
// some malformed files, so the whole pass runs under a recover.
func extractPDF(path string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: pdf extraction crashed (%v): %w", path, r, common.ErrUnreadableInput)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	numPages := reader.NumPage()
	if numPages == 0 {
		return "", fmt.Errorf("%s has no pages: %w", path, common.ErrUnreadableInput)
	}

	var pages []string
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, rowErr := page.GetTextByRow()
		if rowErr != nil {
			continue
		}

		var lines []string
		for _, row := range rows {
			line := joinRow(row.Content)
			if line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) > 0 {
			pages = append(pages, strings.Join(lines, "\n"))
		}
	}

	combined := strings.Join(pages, "\n\n")
	if strings.TrimSpace(combined) == "" {
		return "", fmt.Errorf("%s yielded no text, may be image-based or scanned: %w", path, common.ErrUnreadableInput)
	}
	return combined, nil
}

// joinRow reassembles one text row, converting horizontal gaps between
// words back into runs of spaces so that column positions survive.
func joinRow(words []pdf.Text) string {
	var sb strings.Builder
	prevEnd := 0.0
	for i, word := range words {
		if strings.TrimSpace(word.S) == "" {
			continue
		}
		if i > 0 {
			gap := word.X - prevEnd
			spaces := int(math.Round(gap / approxCharWidth))
			if spaces < 1 {
				spaces = 1
			}
			sb.WriteString(strings.Repeat(" ", spaces))
		}
		sb.WriteString(word.S)
		prevEnd = word.X + word.W
	}
	return strings.TrimRight(sb.String(), " ")
}
