package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Depósito", "deposito"},
		{"Deposito", "deposito"},
		{"VENDA", "venda"},
		{"Ação Preço", "acao preco"},
		{"", ""},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Text(tc.in))
		})
	}
}

func TestDate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"valid", "15/03/2023", "2023-03-15 00:00 UTC"},
		{"surrounding spaces", "  10/01/2024 ", "2024-01-10 00:00 UTC"},
		{"single digit day and month", "5/3/2023", "2023-03-05 00:00 UTC"},
		{"leap day", "29/02/2024", "2024-02-29 00:00 UTC"},
		{"invalid calendar date", "31/02/2023", InvalidDate},
		{"not a leap year", "29/02/2023", InvalidDate},
		{"month out of range", "01/13/2023", InvalidDate},
		{"iso order", "2023-03-15", InvalidDate},
		{"two digit year", "15/03/23", InvalidDate},
		{"empty", "", InvalidDate},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Date(tc.in))
		})
	}
}

func TestCurrencyMajor(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"marker and thousands", "R$ 30.000,00", "30000.00"},
		{"marker without space", "R$3.750,00", "3750.00"},
		{"plain", "25,00", "25.00"},
		{"integer", "250", "250.00"},
		{"one fractional digit", "5,5", "5.50"},
		{"millions", "1.234.567,89", "1234567.89"},
		{"extra fractional digits are rounded", "0,125", "0.13"},
		{"sign is dropped", "-10,00", "10.00"},
		{"stray characters", "R$ 1.000,00*", "1000.00"},
		{"empty", "", ZeroAmount},
		{"marker only", "R$", ZeroAmount},
		{"letters only", "n/a", ZeroAmount},
		{"two decimal separators", "1,2,3", ZeroAmount},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CurrencyMajor(tc.in))
		})
	}
}

func TestCryptoQuantity(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"comma decimal", "1,714000", "1.714000"},
		{"keeps precision", "0,015000", "0.015000"},
		{"already dotted", "2.5", "2.5"},
		{"stray characters", " 1,5 BTC ", "1.5"},
		{"leading minus", "-0,5", "-0.5"},
		{"inner minus dropped", "1-0,5", "10.5"},
		{"empty", "", ""},
		{"no digits", "abc", ""},
		{"minus only", "-", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CryptoQuantity(tc.in))
		})
	}
}

func TestIsPositive(t *testing.T) {
	assert.True(t, IsPositive("5.00"))
	assert.True(t, IsPositive("0.01"))
	assert.False(t, IsPositive("0.00"))
	assert.False(t, IsPositive(ZeroAmount))
	assert.False(t, IsPositive(""))
	assert.False(t, IsPositive("abc"))
}
