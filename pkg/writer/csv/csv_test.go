package csv

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
)

const header = "Date,Sent Amount,Sent Currency,Received Amount,Received Currency,Fee Amount,Fee Currency,Net Worth Amount,Net Worth Currency,Label,Description,TxHash"

var records = []api.Record{
	{
		Date: "2024-01-10 00:00 UTC", ReceivedAmount: "0.015000", ReceivedCurrency: "BTC",
		FeeAmount: "5.00", FeeCurrency: "BRL", Label: "deposit", Description: "Depósito",
	},
	{
		Date: "2024-01-12 00:00 UTC", SentAmount: "2.500000", SentCurrency: "ETH",
		ReceivedAmount: "25000.00", ReceivedCurrency: "BRL", FeeAmount: "25.00", FeeCurrency: "BRL",
		Description: "Venda",
	},
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, records, false))

	want := header + "\n" +
		"2024-01-10 00:00 UTC,,,0.015000,BTC,5.00,BRL,,,deposit,Depósito,\n" +
		"2024-01-12 00:00 UTC,2.500000,ETH,25000.00,BRL,25.00,BRL,,,,Venda,\n"
	assert.Equal(t, want, buf.String())
}

func TestEncodeCRLF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil, true))
	assert.Equal(t, header+"\r\n", buf.String())
}

func TestEncodeQuotesFields(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, []api.Record{{Date: "x", Description: "Venda, parcial"}}, false))
	assert.Contains(t, buf.String(), `"Venda, parcial"`)
}

func TestWriteTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale contents that are longer than the header row ......................................................................"), 0o644))

	w, err := New(Config{FilePath: path}, nil)
	require.NoError(t, err)

	require.NoError(t, w.Write(context.Background(), records))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, w.Write(context.Background(), records))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, bytes.HasPrefix(first, []byte(header+"\n")))
	assert.NotContains(t, string(first), "stale")
}

func TestWriteEmptyLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.csv")
	w, err := New(Config{FilePath: path}, nil)
	require.NoError(t, err)

	require.NoError(t, w.Write(context.Background(), nil))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, header+"\n", string(got))
}

func TestWriteStdout(t *testing.T) {
	w, err := New(Config{FilePath: Stdout}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	w.stdout = &buf
	require.NoError(t, w.Write(context.Background(), records[:1]))
	assert.Equal(t, header+"\n2024-01-10 00:00 UTC,,,0.015000,BTC,5.00,BRL,,,deposit,Depósito,\n", buf.String())
}

func TestWriteErrors(t *testing.T) {
	_, err := New(Config{}, nil)
	require.Error(t, err)

	w, err := New(Config{FilePath: filepath.Join(t.TempDir(), "missing", "ledger.csv")}, nil)
	require.NoError(t, err)
	assert.ErrorContains(t, w.Write(context.Background(), records), "opening csv file")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, w.Write(ctx, records), context.Canceled)
}
