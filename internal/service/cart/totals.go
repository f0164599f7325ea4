package cart

import (
	"storefront-cart/internal/domain"
)

// recompute derives totalQuantity and cost from the current lines and
// applied coupons. It runs on every mutation and every read and is never
// cached across calls. Each applied coupon's cached amount is rewritten as a
// side effect of evaluation.
func (s *Service) recompute(cart *domain.Cart) {
	totalQuantity := 0
	for _, line := range cart.Lines {
		totalQuantity += line.Quantity
	}

	// Line totals are summed in floating point and rounded once at the end,
	// not rounded per line first.
	subtotal := lineSubtotal(cart.Lines)
	currency := domain.ResolveCurrency(cart.Lines, cart.AppliedCoupons, s.currency)

	totalDiscount := 0.0
	for i := range cart.AppliedCoupons {
		discount := evaluateCoupon(cart.AppliedCoupons[i].Coupon, subtotal)
		cart.AppliedCoupons[i].Amount = domain.NewMoney(discount, currency)
		totalDiscount += discount
	}

	total := subtotal - totalDiscount
	if total < 0 {
		total = 0
	}

	cart.TotalQuantity = totalQuantity
	cart.Cost = domain.CartCost{
		SubtotalAmount: domain.NewMoney(subtotal, currency),
		TotalAmount:    domain.NewMoney(total, currency),
		TotalTaxAmount: domain.NewMoney(0, currency),
		DiscountAmount: domain.NewMoney(totalDiscount, currency),
	}
}

func lineSubtotal(lines []domain.CartItem) float64 {
	subtotal := 0.0
	for _, line := range lines {
		subtotal += line.Cost.TotalAmount.Float()
	}
	return subtotal
}

// evaluateCoupon computes one coupon's discount contribution against the
// current subtotal. A coupon below its minimum subtotal contributes zero but
// stays applied; it silently reactivates when the subtotal rises again. The
// result is clamped to [0, subtotal].
func evaluateCoupon(c domain.Coupon, subtotal float64) float64 {
	if c.MinimumSubtotal != nil && subtotal < *c.MinimumSubtotal {
		return 0
	}

	var discount float64
	switch c.Type {
	case domain.CouponPercentage:
		discount = subtotal * c.Value / 100
	case domain.CouponFixedAmount:
		discount = c.Value
	case domain.CouponFreeShipping:
		// Shipping is outside this pricing model; the coupon is purely
		// informational here.
		discount = 0
	}

	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		discount = 0
	}
	return discount
}
