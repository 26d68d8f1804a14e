package billing

import "github.com/shopspring/decimal"

// NetTotal returns the externally reported total after subtracting all
// prior refunds and a proposed new one from the invoiced total. The
// result may be negative; refusing (rather than clamping) a refund that
// drives it below zero is the caller's responsibility, since clamping
// would misstate the ledger.
func NetTotal(invoiceTotal decimal.Decimal, priorRefunds []decimal.Decimal, amount decimal.Decimal) decimal.Decimal {
	net := invoiceTotal
	for _, r := range priorRefunds {
		net = net.Sub(r)
	}
	return net.Sub(amount)
}
