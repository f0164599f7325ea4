package coupon

import (
	"context"

	"storefront-cart/internal/domain"
)

// Repository is the coupon catalog. Coupons are immutable reference data;
// the cart engine only reads them.
type Repository interface {
	// FindByCode looks up a coupon by case-insensitive code. Coupons outside
	// their validity window read as absent (domain.ErrNotFound).
	FindByCode(ctx context.Context, code string) (*domain.Coupon, error)
}

// Writer upserts coupon definitions. Used by the seeder.
type Writer interface {
	Upsert(ctx context.Context, coupon domain.Coupon) error
}

// Catalog combines the read and write halves of the coupon catalog.
type Catalog interface {
	Repository
	Writer
}
