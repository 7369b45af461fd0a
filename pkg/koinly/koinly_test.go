package koinly

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
	"github.com/ArionMiles/mynt2koinly/pkg/extract"
	"github.com/ArionMiles/mynt2koinly/pkg/normalize"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		op   string
		want Kind
	}{
		{"Venda", KindSale},
		{"VENDIDO", KindSale},
		{"Depósito", KindDeposit},
		{"Deposito", KindDeposit},
		{"DEPÓSITO PIX", KindDeposit},
		{"Compra", KindUnknown},
		{"", KindUnknown},
	}

	for _, tc := range tests {
		t.Run(tc.op, func(t *testing.T) {
			assert.Equal(t, tc.want, KindOf(tc.op))
		})
	}
}

func TestMapLines(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "deposit",
			line: "Depósito 10/01/2024 BTC 0,015000 R$ 250.000,00 R$ 5,00 R$ 3.750,00",
			want: []string{"2024-01-10 00:00 UTC", "", "", "0.015000", "BTC", "5.00", "BRL", "", "", "deposit", "Depósito", ""},
		},
		{
			name: "sale",
			line: "Venda 12/01/2024 ETH 2,500000 R$ 10.000,00 R$ 25,00 R$ 25.000,00",
			want: []string{"2024-01-12 00:00 UTC", "2.500000", "ETH", "25000.00", "BRL", "25.00", "BRL", "", "", "", "Venda", ""},
		},
		{
			name: "deposit with zero fee omits fee columns",
			line: "Deposito 02/03/2024 SOL 10,5 R$ 500,00 R$ 0,00 R$ 5.250,00",
			want: []string{"2024-03-02 00:00 UTC", "", "", "10.5", "SOL", "", "", "", "", "deposit", "Deposito", ""},
		},
		{
			name: "invalid date is kept as sentinel",
			line: "Venda 31/02/2024 ETH 1,0 R$ 1,00 R$ 0,00 R$ 1,00",
			want: []string{normalize.InvalidDate, "1.0", "ETH", "1.00", "BRL", "", "", "", "", "", "Venda", ""},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			fields, ok := extract.Classify(tc.line)
			require.True(t, ok)
			assert.Equal(t, tc.want, Map(fields).Row())
		})
	}
}

func TestMapUnknownOperation(t *testing.T) {
	rec := Map(api.Fields{
		Operation: "Compra",
		Date:      "05/05/2024",
		Asset:     "BTC",
		Quantity:  "1,0",
		Fee:       "1,50",
		Total:     "100,00",
	})

	assert.Equal(t, api.Record{
		Date:        "2024-05-05 00:00 UTC",
		FeeAmount:   "1.50",
		FeeCurrency: FiatCurrency,
		Description: "Compra",
	}, rec)
}

func TestMapLegs(t *testing.T) {
	fields := []api.Fields{
		{Operation: "Depósito", Date: "01/01/2024", Asset: "BTC", Quantity: "0,1", Fee: "", Total: "1,00"},
		{Operation: "Deposito", Date: "bad", Asset: "ADA", Quantity: "", Fee: "abc", Total: ""},
		{Operation: "Venda", Date: "01/01/2024", Asset: "ETH", Quantity: "0,1", Fee: "-3,00", Total: ""},
		{Operation: "Vendido", Date: "01/01/2024", Asset: "SOL", Quantity: "x", Fee: "0,001", Total: "9,99"},
	}

	for _, f := range fields {
		rec := Map(f)
		switch KindOf(f.Operation) {
		case KindDeposit:
			assert.Equal(t, f.Asset, rec.ReceivedCurrency)
			assert.Empty(t, rec.SentAmount)
			assert.Empty(t, rec.SentCurrency)
			assert.Equal(t, DepositLabel, rec.Label)
		case KindSale:
			assert.Equal(t, f.Asset, rec.SentCurrency)
			assert.Equal(t, FiatCurrency, rec.ReceivedCurrency)
			assert.Empty(t, rec.Label)
		default:
			t.Fatalf("unexpected kind for %q", f.Operation)
		}

		if rec.FeeAmount == "" {
			assert.Empty(t, rec.FeeCurrency)
		} else {
			assert.True(t, normalize.IsPositive(rec.FeeAmount))
			assert.Equal(t, FiatCurrency, rec.FeeCurrency)
		}
		assert.Empty(t, rec.NetWorthAmount)
		assert.Empty(t, rec.NetWorthCurrency)
		assert.Empty(t, rec.TxHash)
	}
}
