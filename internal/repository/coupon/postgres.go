package coupon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-cart/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a coupon catalog backed by the coupons table.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Catalog {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

func (r *postgresRepo) FindByCode(ctx context.Context, code string) (*domain.Coupon, error) {
	const q = `
SELECT code, title, type, value, COALESCE(currency, ''), minimum_subtotal_cents, starts_at, expires_at, product_ids, collection_handles
FROM coupons
WHERE lower(code) = lower($1)
  AND (starts_at IS NULL OR starts_at <= now())
  AND (expires_at IS NULL OR expires_at > now())
`
	var (
		c            domain.Coupon
		couponType   string
		minimumCents *int64
		productIDs   []string
		collections  []string
	)
	err := r.pool.QueryRow(ctx, q, strings.TrimSpace(code)).Scan(
		&c.Code,
		&c.Title,
		&couponType,
		&c.Value,
		&c.CurrencyCode,
		&minimumCents,
		&c.StartsAt,
		&c.ExpiresAt,
		&productIDs,
		&collections,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("coupon repo: code=%s not found", code)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("coupon repo: code=%s error=%v", code, err)
		return nil, err
	}

	c.Type = domain.CouponType(couponType)
	if minimumCents != nil {
		minimum := float64(*minimumCents) / 100
		c.MinimumSubtotal = &minimum
	}
	c.AppliesToProducts = productIDs
	c.AppliesToCollections = collections
	return &c, nil
}

func (r *postgresRepo) Upsert(ctx context.Context, coupon domain.Coupon) error {
	const q = `
INSERT INTO coupons (code, title, type, value, currency, minimum_subtotal_cents, starts_at, expires_at, product_ids, collection_handles)
VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, COALESCE($9, '{}'), COALESCE($10, '{}'))
ON CONFLICT (code) DO UPDATE SET
    title = EXCLUDED.title,
    type = EXCLUDED.type,
    value = EXCLUDED.value,
    currency = EXCLUDED.currency,
    minimum_subtotal_cents = EXCLUDED.minimum_subtotal_cents,
    starts_at = EXCLUDED.starts_at,
    expires_at = EXCLUDED.expires_at,
    product_ids = EXCLUDED.product_ids,
    collection_handles = EXCLUDED.collection_handles
`
	var minimumCents *int64
	if coupon.MinimumSubtotal != nil {
		cents := int64(math.Round(*coupon.MinimumSubtotal * 100))
		minimumCents = &cents
	}
	_, err := r.pool.Exec(ctx, q,
		coupon.Code,
		coupon.Title,
		string(coupon.Type),
		coupon.Value,
		coupon.CurrencyCode,
		minimumCents,
		coupon.StartsAt,
		coupon.ExpiresAt,
		coupon.AppliesToProducts,
		coupon.AppliesToCollections,
	)
	if err != nil {
		r.logger.Printf("coupon repo: upsert code=%s error=%v", coupon.Code, err)
		return fmt.Errorf("upsert coupon %q: %w", coupon.Code, err)
	}
	r.logger.Printf("coupon repo: upserted code=%s type=%s", coupon.Code, coupon.Type)
	return nil
}
