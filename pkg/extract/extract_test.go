package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ArionMiles/mynt2koinly/pkg/api"
)

func TestIsCandidate(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"Depósito 10/01/2024 BTC 0,015000 R$ 250.000,00 R$ 5,00 R$ 3.750,00", true},
		{"Deposito 10/01/2024 BTC", true},
		{"Venda 12/01/2024 ETH", true},
		{"Vendido 12/01/2024 ETH", true},
		{"Total de Vendas no período", true},
		{"deposito em conta", false},
		{"VENDA", false},
		{"Saldo final R$ 1.000,00", false},
		{"", false},
	}

	for _, tc := range tests {
		t.Run(tc.line, func(t *testing.T) {
			assert.Equal(t, tc.want, IsCandidate(tc.line))
		})
	}
}

func TestCollapseSpaces(t *testing.T) {
	assert.Equal(t, "Venda 12/01/2024 ETH", CollapseSpaces("  Venda\t12/01/2024    ETH \r"))
	assert.Equal(t, "", CollapseSpaces(" \t "))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		line   string
		want   api.Fields
		wantOK bool
	}{
		{
			name: "deposit",
			line: "Depósito 10/01/2024 BTC 0,015000 R$ 250.000,00 R$ 5,00 R$ 3.750,00",
			want: api.Fields{
				Operation: "Depósito", Date: "10/01/2024", Asset: "BTC", Quantity: "0,015000",
				UnitPrice: "250.000,00", Fee: "5,00", Total: "3.750,00",
			},
			wantOK: true,
		},
		{
			name: "deposit with non-ascii ticker",
			line: "Deposito 10/01/2024 ÉTH 1,0 R$ 1,00 R$ 1,00 R$ 1,00",
			want: api.Fields{
				Operation: "Deposito", Date: "10/01/2024", Asset: "ÉTH", Quantity: "1,0",
				UnitPrice: "1,00", Fee: "1,00", Total: "1,00",
			},
			wantOK: true,
		},
		{
			name: "deposit without accent and tight markers",
			line: "Deposito 02/03/2024 SOL 10,5 R$500,00 R$0,00 R$5.250,00",
			want: api.Fields{
				Operation: "Deposito", Date: "02/03/2024", Asset: "SOL", Quantity: "10,5",
				UnitPrice: "500,00", Fee: "0,00", Total: "5.250,00",
			},
			wantOK: true,
		},
		{
			name: "deposit embedded after a prefix and irregular spacing",
			line: "  001   Depósito  10/01/2024   BTC 0,015000  R$ 250.000,00 R$ 5,00 R$ 3.750,00 Concluído",
			want: api.Fields{
				Operation: "Depósito", Date: "10/01/2024", Asset: "BTC", Quantity: "0,015000",
				UnitPrice: "250.000,00", Fee: "5,00", Total: "3.750,00",
			},
			wantOK: true,
		},
		{
			name: "sale",
			line: "Venda 12/01/2024 ETH 2,500000 R$ 10.000,00 R$ 25,00 R$ 25.000,00",
			want: api.Fields{
				Operation: "Venda", Date: "12/01/2024", Asset: "ETH", Quantity: "2,500000",
				UnitPrice: "10.000,00", Fee: "25,00", Total: "25.000,00",
			},
			wantOK: true,
		},
		{
			name: "sale spelling is reported as Venda",
			line: "Vendido   12/01/2024 ETH  2,500000 R$ 10.000,00   R$ 25,00 R$ 25.000,00",
			want: api.Fields{
				Operation: SaleOperation, Date: "12/01/2024", Asset: "ETH", Quantity: "2,500000",
				UnitPrice: "10.000,00", Fee: "25,00", Total: "25.000,00",
			},
			wantOK: true,
		},
		{
			name: "sale takes only the first three amounts",
			line: "Venda 12/01/2024 ETH 1,0 R$ 1,00 R$ 2,00 R$ 3,00 R$ 4,00",
			want: api.Fields{
				Operation: "Venda", Date: "12/01/2024", Asset: "ETH", Quantity: "1,0",
				UnitPrice: "1,00", Fee: "2,00", Total: "3,00",
			},
			wantOK: true,
		},
		{
			name: "sale with two amounts fails closed",
			line: "Venda 12/01/2024 ETH 2,500000 R$ 10.000,00 R$ 25,00",
		},
		{
			name: "sale with dangling marker fails closed",
			line: "Venda 12/01/2024 ETH 2,500000 R$ 10.000,00 R$ 25,00 R$",
		},
		{
			name: "sale with attached markers fails closed",
			line: "Venda 12/01/2024 ETH 2,500000 R$10.000,00 R$25,00 R$25.000,00",
		},
		{
			name: "sale keyword alone",
			line: "Venda",
		},
		{
			name: "sale too short for positional fields",
			line: "Venda R$ R$ R$",
		},
		{
			name: "sale keyword not leading",
			line: "Total Venda 12/01/2024 ETH 2,5 R$ 1,00 R$ 2,00 R$ 3,00",
		},
		{
			name: "deposit with single digit day",
			line: "Depósito 1/01/2024 BTC 0,015000 R$ 250.000,00 R$ 5,00 R$ 3.750,00",
		},
		{
			name: "deposit missing total",
			line: "Depósito 10/01/2024 BTC 0,015000 R$ 250.000,00 R$ 5,00",
		},
		{
			name: "not a transaction",
			line: "Extrato de movimentações",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Classify(tc.line)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
