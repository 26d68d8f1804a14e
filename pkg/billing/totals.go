package billing

import "github.com/shopspring/decimal"

// Totals is the full monetary breakdown of a transaction. All figures
// are rounded to cents at the point they become externally visible.
type Totals struct {
	SubtotalInclusive  decimal.Decimal // sum of line totals, tax included
	Subtotal           decimal.Decimal // tax-exclusive base
	DiscountAmount     decimal.Decimal
	DiscountedSubtotal decimal.Decimal
	Tax                decimal.Decimal
	Total              decimal.Decimal // amount the patient actually pays
}

// Compute derives the transaction totals from the tax-inclusive line
// sum and an optional discount. The order of operations is fixed:
// decompose the tax out of the line sum, subtract the discount from the
// tax-exclusive base, then recompute tax on the discounted base.
// Discounting after tax would change the legally reported ISV amount.
func Compute(subtotalInclusive decimal.Decimal, d *Discount) (*Totals, error) {
	subtotal, _ := Decompose(subtotalInclusive)

	discountAmount := decimal.Zero
	if d != nil {
		var err error
		discountAmount, err = d.Amount(subtotal)
		if err != nil {
			return nil, err
		}
	}

	discounted := subtotal.Sub(discountAmount)
	total := Compose(discounted)

	return &Totals{
		SubtotalInclusive:  subtotalInclusive,
		Subtotal:           subtotal,
		DiscountAmount:     discountAmount,
		DiscountedSubtotal: discounted,
		Tax:                total.Sub(discounted),
		Total:              total,
	}, nil
}
