package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Tolerance is the cent-level slack allowed when verifying that
// payment allocations cover a computed total. It absorbs the rounding
// artifacts of the tax division.
var Tolerance = decimal.New(1, -2) // 0.01

// ErrNoAllocations is returned when a split payment carries no
// allocations at all.
var ErrNoAllocations = errors.New("at least one payment allocation is required")

// Allocation is one payment-method/amount pair proposed against a
// transaction total.
type Allocation struct {
	Method string
	Amount decimal.Decimal
}

// ReconcileResult reports whether proposed allocations cover the total.
// Remaining is positive when underpaid and negative when overpaid.
type ReconcileResult struct {
	Balanced  bool
	Remaining decimal.Decimal
}

// Reconcile verifies that the allocations sum to the total within
// Tolerance. Malformed allocations are errors; an out-of-tolerance sum
// is not. The caller reads Balanced/Remaining and decides how to
// surface the delta.
func Reconcile(total decimal.Decimal, allocations []Allocation) (*ReconcileResult, error) {
	if len(allocations) == 0 {
		return nil, ErrNoAllocations
	}

	sum := decimal.Zero
	for i, a := range allocations {
		if !a.Amount.IsPositive() {
			return nil, fmt.Errorf("allocation %d: amount must be greater than zero, got %s", i+1, a.Amount)
		}
		sum = sum.Add(a.Amount)
	}

	remaining := total.Sub(sum)
	return &ReconcileResult{
		Balanced:  remaining.Abs().LessThanOrEqual(Tolerance),
		Remaining: remaining,
	}, nil
}

// SingleAllocation models a single-method payment as one synthetic
// allocation of the full total, so single and split payments reconcile
// through the same path.
func SingleAllocation(method string, total decimal.Decimal) []Allocation {
	return []Allocation{{Method: method, Amount: total}}
}
