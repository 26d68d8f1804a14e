package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DiscountType identifies how a discount value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountAbsolute   DiscountType = "absolute"
)

// Discount is a single reduction applied to the tax-exclusive subtotal
// before tax is recomputed. A payment carries at most one.
type Discount struct {
	Type   DiscountType
	Value  decimal.Decimal
	Reason string
}

var hundred = decimal.NewFromInt(100)

// Validate checks the discount against the tax-exclusive subtotal it
// will be applied to. Percentage values must lie in [0,100]; absolute
// values may not exceed the subtotal. Out-of-range values are rejected,
// never clamped.
func (d *Discount) Validate(subtotal decimal.Decimal) error {
	switch d.Type {
	case DiscountPercentage:
		if d.Value.IsNegative() || d.Value.GreaterThan(hundred) {
			return fmt.Errorf("percentage discount must be between 0 and 100, got %s", d.Value)
		}
	case DiscountAbsolute:
		if d.Value.IsNegative() {
			return fmt.Errorf("absolute discount must not be negative, got %s", d.Value)
		}
		if d.Value.GreaterThan(subtotal) {
			return fmt.Errorf("absolute discount %s exceeds subtotal %s", d.Value, subtotal)
		}
	default:
		return fmt.Errorf("unknown discount type %q", d.Type)
	}
	return nil
}

// Amount validates the discount and returns the amount to subtract from
// the subtotal, rounded to cents.
func (d *Discount) Amount(subtotal decimal.Decimal) (decimal.Decimal, error) {
	if err := d.Validate(subtotal); err != nil {
		return decimal.Zero, err
	}
	if d.Type == DiscountPercentage {
		return subtotal.Mul(d.Value).Div(hundred).Round(2), nil
	}
	return d.Value.Round(2), nil
}

// CappedAmount is the display-time variant of Amount: an absolute
// discount larger than the subtotal is capped at the subtotal instead
// of rejected, so a live form can never show a negative base. It must
// not be used for anything that is persisted.
func (d *Discount) CappedAmount(subtotal decimal.Decimal) decimal.Decimal {
	if d.Type == DiscountAbsolute && d.Value.GreaterThan(subtotal) {
		return subtotal
	}
	amount, err := d.Amount(subtotal)
	if err != nil {
		return decimal.Zero
	}
	return amount
}
