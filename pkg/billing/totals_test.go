package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeNoDiscount(t *testing.T) {
	totals, err := Compute(d("115"), nil)
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(d("100")), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.DiscountAmount.IsZero())
	assert.True(t, totals.Tax.Equal(d("15")), "tax = %s", totals.Tax)
	assert.True(t, totals.Total.Equal(d("115")), "total = %s", totals.Total)
}

func TestComputeDiscountBeforeTax(t *testing.T) {
	// Percentage: 115 inclusive -> 100 base, 10% off -> 90, plus 15% -> 103.50.
	totals, err := Compute(d("115"), &Discount{Type: DiscountPercentage, Value: d("10")})
	require.NoError(t, err)
	assert.True(t, totals.DiscountAmount.Equal(d("10")), "discount = %s", totals.DiscountAmount)
	assert.True(t, totals.DiscountedSubtotal.Equal(d("90")))
	assert.True(t, totals.Tax.Equal(d("13.5")), "tax = %s", totals.Tax)
	assert.True(t, totals.Total.Equal(d("103.5")), "total = %s", totals.Total)

	// Absolute 7.50 distinguishes the ordering: (100 - 7.50) * 1.15,
	// not 115 - 7.50 taxed the other way around.
	totals, err = Compute(d("115"), &Discount{Type: DiscountAbsolute, Value: d("7.5")})
	require.NoError(t, err)
	assert.True(t, totals.Total.Equal(d("106.38")), "total = %s", totals.Total)
}

func TestComputeRejectsInvalidDiscount(t *testing.T) {
	_, err := Compute(d("115"), &Discount{Type: DiscountAbsolute, Value: d("500")})
	assert.Error(t, err)

	_, err = Compute(d("115"), &Discount{Type: DiscountPercentage, Value: d("101")})
	assert.Error(t, err)
}

func TestComputeEndToEndScenario(t *testing.T) {
	// Two items, qty 1 @ L100 and qty 2 @ L25, both tax inclusive.
	totals, err := Compute(d("150"), &Discount{Type: DiscountPercentage, Value: d("10")})
	require.NoError(t, err)

	assert.True(t, totals.Subtotal.Equal(d("130.43")), "subtotal = %s", totals.Subtotal)
	assert.True(t, totals.DiscountAmount.Equal(d("13.04")), "discount = %s", totals.DiscountAmount)
	assert.True(t, totals.DiscountedSubtotal.Equal(d("117.39")))
	assert.True(t, totals.Total.Equal(d("135")), "total = %s", totals.Total)

	// A cashier typing 134.99 still reconciles within tolerance.
	result, err := Reconcile(totals.Total, SingleAllocation("efectivo", d("134.99")))
	require.NoError(t, err)
	assert.True(t, result.Balanced, "remaining = %s", result.Remaining)
}
