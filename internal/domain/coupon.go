package domain

import "time"

// CouponType discriminates how a coupon's value is interpreted.
type CouponType string

const (
	CouponPercentage   CouponType = "percentage"
	CouponFixedAmount  CouponType = "fixed_amount"
	CouponFreeShipping CouponType = "free_shipping"
)

// Coupon is an immutable discount definition from the coupon catalog. The
// cart never mutates coupons. Scoping fields are informational here; they are
// enforced by upstream selection, not by the pricing engine.
type Coupon struct {
	Code                 string     `json:"code"`
	Title                string     `json:"title"`
	Type                 CouponType `json:"type"`
	Value                float64    `json:"value"`
	CurrencyCode         string     `json:"currencyCode,omitempty"`
	MinimumSubtotal      *float64   `json:"minimumSubtotal,omitempty"`
	StartsAt             *time.Time `json:"startsAt,omitempty"`
	ExpiresAt            *time.Time `json:"expiresAt,omitempty"`
	AppliesToProducts    []string   `json:"appliesToProducts,omitempty"`
	AppliesToCollections []string   `json:"appliesToCollections,omitempty"`
}

// AppliedCoupon attaches a coupon to a cart. Amount is a cached discount
// contribution recomputed on every totals pass, never user input.
type AppliedCoupon struct {
	Coupon Coupon `json:"coupon"`
	Amount Money  `json:"amount"`
}
