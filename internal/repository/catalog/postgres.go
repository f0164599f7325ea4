package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-cart/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a Repository backed by the catalog tables.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

const resolutionColumns = `
v.id, v.product_id::text, v.title, v.sku, v.price_cents, v.currency, v.options, v.backend_object_id, v.created_at,
p.id::text, p.handle, p.title, COALESCE(p.description, ''), COALESCE(p.featured_image_url, ''), COALESCE(p.featured_image_alt, ''), p.created_at`

func (r *postgresRepo) ResolveByMerchandiseID(ctx context.Context, merchandiseID string) (*Resolution, error) {
	const q = `
SELECT ` + resolutionColumns + `
FROM product_variants v
JOIN products p ON p.id = v.product_id
WHERE v.id = $1
`
	res, err := r.fetchResolution(ctx, q, merchandiseID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("catalog repo: merchandise id=%s not found", merchandiseID)
		} else {
			r.logger.Printf("catalog repo: merchandise id=%s error=%v", merchandiseID, err)
		}
		return nil, err
	}
	return res, nil
}

func (r *postgresRepo) ResolveByBackendObjectID(ctx context.Context, objectID int64) (*Resolution, error) {
	const q = `
SELECT ` + resolutionColumns + `
FROM product_variants v
JOIN products p ON p.id = v.product_id
WHERE v.backend_object_id = $1
`
	res, err := r.fetchResolution(ctx, q, objectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			r.logger.Printf("catalog repo: backend object_id=%d not found", objectID)
		} else {
			r.logger.Printf("catalog repo: backend object_id=%d error=%v", objectID, err)
		}
		return nil, err
	}
	return res, nil
}

func (r *postgresRepo) fetchResolution(ctx context.Context, query string, arg any) (*Resolution, error) {
	var (
		res        Resolution
		priceCents int64
		currency   string
		options    []byte
		objectID   *int64
	)
	err := r.pool.QueryRow(ctx, query, arg).Scan(
		&res.Variant.ID,
		&res.Variant.ProductID,
		&res.Variant.Title,
		&res.Variant.SKU,
		&priceCents,
		&currency,
		&options,
		&objectID,
		&res.Variant.CreatedAt,
		&res.Product.ID,
		&res.Product.Handle,
		&res.Product.Title,
		&res.Product.Description,
		&res.Product.FeaturedImage.URL,
		&res.Product.FeaturedImage.AltText,
		&res.Product.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	res.Variant.Price = domain.NewMoney(float64(priceCents)/100, currency)
	if objectID != nil {
		res.Variant.BackendObjectID = *objectID
	}
	if len(options) > 0 {
		if err := json.Unmarshal(options, &res.Variant.SelectedOptions); err != nil {
			return nil, fmt.Errorf("decode variant options: %w", err)
		}
	}
	return &res, nil
}

func (r *postgresRepo) UpsertProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, handle, title, description, featured_image_url, featured_image_alt)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
ON CONFLICT (handle) DO UPDATE SET
    title = EXCLUDED.title,
    description = EXCLUDED.description,
    featured_image_url = EXCLUDED.featured_image_url,
    featured_image_alt = EXCLUDED.featured_image_alt
RETURNING id::text, created_at
`
	res := product
	err := r.pool.QueryRow(ctx, q,
		product.ID,
		product.Handle,
		product.Title,
		product.Description,
		product.FeaturedImage.URL,
		product.FeaturedImage.AltText,
	).Scan(&res.ID, &res.CreatedAt)
	if err != nil {
		r.logger.Printf("catalog repo: upsert product handle=%s error=%v", product.Handle, err)
		return nil, err
	}
	r.logger.Printf("catalog repo: upserted product handle=%s id=%s", res.Handle, res.ID)
	return &res, nil
}

func (r *postgresRepo) UpsertVariant(ctx context.Context, variant domain.Variant) (*domain.Variant, error) {
	const q = `
INSERT INTO product_variants (id, product_id, title, sku, price_cents, currency, options, backend_object_id)
VALUES ($1, $2::uuid, $3, $4, $5, $6, COALESCE($7, '[]'::jsonb), NULLIF($8, 0))
ON CONFLICT (id) DO UPDATE SET
    product_id = EXCLUDED.product_id,
    title = EXCLUDED.title,
    sku = EXCLUDED.sku,
    price_cents = EXCLUDED.price_cents,
    currency = EXCLUDED.currency,
    options = EXCLUDED.options,
    backend_object_id = EXCLUDED.backend_object_id
RETURNING created_at
`
	options, err := json.Marshal(variant.SelectedOptions)
	if err != nil {
		return nil, fmt.Errorf("encode variant options: %w", err)
	}
	priceCents := int64(math.Round(variant.Price.Float() * 100))

	res := variant
	err = r.pool.QueryRow(ctx, q,
		variant.ID,
		variant.ProductID,
		variant.Title,
		variant.SKU,
		priceCents,
		variant.Price.CurrencyCode,
		options,
		variant.BackendObjectID,
	).Scan(&res.CreatedAt)
	if err != nil {
		r.logger.Printf("catalog repo: upsert variant id=%s error=%v", variant.ID, err)
		return nil, err
	}
	r.logger.Printf("catalog repo: upserted variant id=%s sku=%s", res.ID, res.SKU)
	return &res, nil
}
