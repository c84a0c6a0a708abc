package pdftext

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerparse/ledgerparse/internal/common"
)

func TestExtractFilePlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.txt")
	content := "HDFC BANK Ltd.\n01/03/24 UPI-SWIGGY 450.00\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	got, err := ExtractFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, got)
}

func TestExtractFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.txt")
	require.NoError(t, os.WriteFile(path, []byte("   \n"), 0600))

	_, err := ExtractFile(path)
	assert.ErrorIs(t, err, common.ErrEmptyInput)
}

func TestExtractFileMissing(t *testing.T) {
	_, err := ExtractFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestExtractFileBrokenPDF(t *testing.T) {
	// Not a real PDF; extraction must fail cleanly rather than panic.
	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 garbage"), 0600))

	_, err := ExtractFile(path)
	assert.Error(t, err)
}
