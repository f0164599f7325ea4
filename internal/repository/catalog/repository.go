package catalog

import (
	"context"

	"storefront-cart/internal/domain"
)

// Resolution pairs a variant with its owning product.
type Resolution struct {
	Product domain.Product
	Variant domain.Variant
}

// Resolver looks up merchandise. Absence is a normal, expected outcome
// reported as domain.ErrNotFound, not a failure.
type Resolver interface {
	ResolveByMerchandiseID(ctx context.Context, merchandiseID string) (*Resolution, error)
	ResolveByBackendObjectID(ctx context.Context, objectID int64) (*Resolution, error)
}

// Writer upserts catalog rows. Used by the seeder and the CSV importer.
type Writer interface {
	UpsertProduct(ctx context.Context, product domain.Product) (*domain.Product, error)
	UpsertVariant(ctx context.Context, variant domain.Variant) (*domain.Variant, error)
}

// Repository combines the read and write halves of the catalog.
type Repository interface {
	Resolver
	Writer
}
