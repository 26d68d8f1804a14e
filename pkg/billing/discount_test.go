package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestDiscountAmount(t *testing.T) {
	tests := []struct {
		name     string
		discount Discount
		subtotal string
		want     string
		wantErr  bool
	}{
		{name: "ten percent", discount: Discount{Type: DiscountPercentage, Value: d("10")}, subtotal: "100", want: "10"},
		{name: "zero percent", discount: Discount{Type: DiscountPercentage, Value: d("0")}, subtotal: "100", want: "0"},
		{name: "full percent", discount: Discount{Type: DiscountPercentage, Value: d("100")}, subtotal: "250", want: "250"},
		{name: "percent over 100 rejected", discount: Discount{Type: DiscountPercentage, Value: d("100.01")}, subtotal: "100", wantErr: true},
		{name: "negative percent rejected", discount: Discount{Type: DiscountPercentage, Value: d("-1")}, subtotal: "100", wantErr: true},
		{name: "absolute within subtotal", discount: Discount{Type: DiscountAbsolute, Value: d("7.5")}, subtotal: "100", want: "7.5"},
		{name: "absolute equal to subtotal", discount: Discount{Type: DiscountAbsolute, Value: d("100")}, subtotal: "100", want: "100"},
		{name: "absolute over subtotal rejected", discount: Discount{Type: DiscountAbsolute, Value: d("100.01")}, subtotal: "100", wantErr: true},
		{name: "negative absolute rejected", discount: Discount{Type: DiscountAbsolute, Value: d("-5")}, subtotal: "100", wantErr: true},
		{name: "unknown type rejected", discount: Discount{Type: "bogus", Value: d("5")}, subtotal: "100", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.discount.Amount(d(tt.subtotal))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(d(tt.want)), "amount = %s, want %s", got, tt.want)
		})
	}
}

func TestDiscountCappedAmountClampsForDisplayOnly(t *testing.T) {
	over := Discount{Type: DiscountAbsolute, Value: d("150")}

	// The display path clamps to the subtotal so a form never renders a
	// negative base.
	capped := over.CappedAmount(d("100"))
	assert.True(t, capped.Equal(d("100")), "capped = %s", capped)

	// The authoritative path still rejects.
	_, err := over.Amount(d("100"))
	assert.Error(t, err)
}
