package xlsx

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
)

func readRows(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	return rows
}

func trimTrailing(row []string) []string {
	for len(row) > 0 && row[len(row)-1] == "" {
		row = row[:len(row)-1]
	}
	return row
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	w, err := New(Config{FilePath: path}, nil)
	require.NoError(t, err)

	rec := api.Record{
		Date: "2024-01-10 00:00 UTC", ReceivedAmount: "0.015000", ReceivedCurrency: "BTC",
		FeeAmount: "5.00", FeeCurrency: "BRL", Label: "deposit", Description: "Depósito",
	}
	require.NoError(t, w.Write(context.Background(), []api.Record{rec}))

	rows := readRows(t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, api.Header, rows[0])
	assert.Equal(t, trimTrailing(rec.Row()), trimTrailing(rows[1]))
}

func TestWriteReplacesWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	w, err := New(Config{FilePath: path}, nil)
	require.NoError(t, err)

	require.NoError(t, w.Write(context.Background(), make([]api.Record, 3)))
	require.NoError(t, w.Write(context.Background(), nil))

	rows := readRows(t, path)
	assert.Equal(t, [][]string{api.Header}, rows)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNewRequiresPath(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}
