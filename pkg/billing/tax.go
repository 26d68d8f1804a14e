package billing

import "github.com/shopspring/decimal"

// TaxRate is the ISV rate embedded in every displayed price (15%).
// A rate change is a deployment, not a runtime setting.
var TaxRate = decimal.NewFromFloat(0.15)

// taxFactor is 1 + TaxRate, the divisor used to back the tax out of
// a tax-inclusive amount.
var taxFactor = decimal.NewFromInt(1).Add(TaxRate)

// Decompose splits a tax-inclusive amount into its tax-exclusive
// subtotal and the ISV portion. It operates on transaction totals,
// never per line item, so rounding error does not compound across
// many lines.
func Decompose(totalInclusive decimal.Decimal) (subtotal, tax decimal.Decimal) {
	subtotal = totalInclusive.Div(taxFactor).Round(2)
	tax = totalInclusive.Sub(subtotal)
	return subtotal, tax
}

// Compose returns the tax-inclusive total for a tax-exclusive subtotal.
func Compose(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxFactor).Round(2)
}
