package money_test

import (
	"testing"

	dec "github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogelioGuerrero/dte-pro-sub002/internal/money"
)

func TestFromFloat(t *testing.T) {
	d := money.FromFloat(100.555)
	// Rounds to summary precision
	assert.True(t, d.Equal(dec.NewFromFloat(100.56)))
}

func TestMustFromString(t *testing.T) {
	d := money.MustFromString("999.99")
	assert.True(t, d.Equal(dec.RequireFromString("999.99")))

	assert.Panics(t, func() {
		money.MustFromString("invalid")
	})
}

func TestRoundLine(t *testing.T) {
	d := dec.RequireFromString("1.123456789")
	assert.True(t, money.RoundLine(d).Equal(dec.RequireFromString("1.12345679")))
}

func TestRoundSummary(t *testing.T) {
	d := dec.RequireFromString("10.005")
	assert.True(t, money.RoundSummary(d).Equal(dec.RequireFromString("10.01")))
}

func TestCalculateIVA(t *testing.T) {
	tests := []struct {
		name     string
		taxed    string
		expected string
	}{
		{"13% of 100", "100", "13.00"},
		{"13% of 1", "1", "0.13"},
		{"13% of 0.05 rounds", "0.05", "0.01"},
		{"13% of 1095", "1095", "142.35"},
		{"zero", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := money.CalculateIVA(dec.RequireFromString(tt.taxed))
			assert.True(t, got.Equal(dec.RequireFromString(tt.expected)),
				"taxed=%s: got %s, want %s", tt.taxed, got.String(), tt.expected)
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	a := dec.RequireFromString("13.00")
	b := dec.RequireFromString("13.02")

	assert.True(t, money.WithinTolerance(a, b, money.TaxTolerance))
	assert.False(t, money.WithinTolerance(a, b, money.ItemTolerance))
	assert.True(t, money.WithinTolerance(b, a, money.TaxTolerance))
}

func TestIsQuantized(t *testing.T) {
	assert.True(t, money.IsQuantized(dec.RequireFromString("12.34"), 2))
	assert.True(t, money.IsQuantized(dec.RequireFromString("12"), 2))
	assert.False(t, money.IsQuantized(dec.RequireFromString("12.345"), 2))
	assert.True(t, money.IsQuantized(dec.RequireFromString("0.12345678"), 8))
	assert.False(t, money.IsQuantized(dec.RequireFromString("0.123456789"), 8))
}

func TestSum(t *testing.T) {
	values := []dec.Decimal{
		dec.NewFromInt(100),
		dec.NewFromInt(200),
		dec.NewFromInt(300),
	}
	result := money.Sum(values)
	assert.True(t, result.Equal(dec.NewFromInt(600)))
}

func TestSum_Empty(t *testing.T) {
	require.True(t, money.Sum(nil).IsZero())
}

func TestIsNonNegative(t *testing.T) {
	assert.True(t, money.IsNonNegative(dec.NewFromInt(1)))
	assert.True(t, money.IsNonNegative(dec.Zero))
	assert.False(t, money.IsNonNegative(dec.NewFromInt(-1)))
}
