package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDecompose(t *testing.T) {
	tests := []struct {
		name         string
		total        string
		wantSubtotal string
		wantTax      string
	}{
		{name: "round figure", total: "115", wantSubtotal: "100", wantTax: "15"},
		{name: "two items tax inclusive", total: "150", wantSubtotal: "130.43", wantTax: "19.57"},
		{name: "zero", total: "0", wantSubtotal: "0", wantTax: "0"},
		{name: "single cent", total: "0.01", wantSubtotal: "0.01", wantTax: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subtotal, tax := Decompose(decimal.RequireFromString(tt.total))
			assert.True(t, subtotal.Equal(decimal.RequireFromString(tt.wantSubtotal)),
				"subtotal = %s, want %s", subtotal, tt.wantSubtotal)
			assert.True(t, tax.Equal(decimal.RequireFromString(tt.wantTax)),
				"tax = %s, want %s", tax, tt.wantTax)
		})
	}
}

func TestDecomposeComposeRoundTrip(t *testing.T) {
	tolerance := decimal.RequireFromString("0.01")
	for _, raw := range []string{"0", "0.01", "1", "99.99", "115", "150", "134.99", "1234.56", "100000"} {
		total := decimal.RequireFromString(raw)
		subtotal, _ := Decompose(total)
		back := Compose(subtotal)
		diff := back.Sub(total).Abs()
		assert.True(t, diff.LessThanOrEqual(tolerance),
			"round trip of %s drifted by %s", total, diff)
	}
}

func TestComposeAddsTaxOnDiscountedBase(t *testing.T) {
	// (100 - 7.50) * 1.15
	got := Compose(decimal.RequireFromString("92.5"))
	assert.True(t, got.Equal(decimal.RequireFromString("106.38")), "got %s", got)
}
