package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrCouponNotFound indicates the coupon code does not exist in the
	// coupon catalog (or is outside its validity window).
	ErrCouponNotFound = errors.New("coupon not found")

	// ErrCouponRequirementsNotMet indicates the coupon's minimum subtotal
	// was not met at the moment of first application.
	ErrCouponRequirementsNotMet = errors.New("coupon requirements not met")
)
