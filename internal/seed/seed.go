package seed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-cart/internal/domain"
	"storefront-cart/internal/repository/catalog"
	couponrepo "storefront-cart/internal/repository/coupon"
)

type variantSeed struct {
	ID       string
	Title    string
	SKU      string
	Price    float64
	ObjectID int64
	Options  []domain.SelectedOption
}

type productSeed struct {
	Handle      string
	Title       string
	Description string
	ImageURL    string
	Variants    []variantSeed
}

// Apply inserts demo catalog and coupon data for manual testing. It is
// idempotent via the repositories' upserts.
func Apply(ctx context.Context, pool *pgxpool.Pool, logger *log.Logger) error {
	products := catalog.NewPostgres(pool, logger)
	coupons := couponrepo.NewPostgres(pool, logger)

	seeds := []productSeed{
		{
			Handle:      "demo-shirt",
			Title:       "Demo T-Shirt",
			Description: "Soft cotton tee for demo purposes",
			ImageURL:    "https://cdn.example.com/demo-shirt.jpg",
			Variants: []variantSeed{
				{ID: "demo-shirt-s", Title: "Small", SKU: "SKU-DEMO-TSHIRT-S", Price: 19.99, ObjectID: 1001, Options: []domain.SelectedOption{{Name: "Size", Value: "S"}}},
				{ID: "demo-shirt-m", Title: "Medium", SKU: "SKU-DEMO-TSHIRT-M", Price: 19.99, ObjectID: 1002, Options: []domain.SelectedOption{{Name: "Size", Value: "M"}}},
			},
		},
		{
			Handle:      "demo-mug",
			Title:       "Demo Mug",
			Description: "Ceramic mug with demo logo",
			ImageURL:    "https://cdn.example.com/demo-mug.jpg",
			Variants: []variantSeed{
				{ID: "demo-mug-std", Title: "Standard", SKU: "SKU-DEMO-MUG", Price: 12.99, ObjectID: 1003},
			},
		},
	}

	for _, p := range seeds {
		stored, err := products.UpsertProduct(ctx, domain.Product{
			Handle:        p.Handle,
			Title:         p.Title,
			Description:   p.Description,
			FeaturedImage: domain.Image{URL: p.ImageURL, AltText: p.Title},
		})
		if err != nil {
			return fmt.Errorf("upsert product %s: %w", p.Handle, err)
		}
		for _, v := range p.Variants {
			if _, err := products.UpsertVariant(ctx, domain.Variant{
				ID:              v.ID,
				ProductID:       stored.ID,
				Title:           v.Title,
				SKU:             v.SKU,
				Price:           domain.NewMoney(v.Price, "USD"),
				SelectedOptions: v.Options,
				BackendObjectID: v.ObjectID,
			}); err != nil {
				return fmt.Errorf("upsert variant %s: %w", v.ID, err)
			}
		}
	}

	minimum := 500.0
	nextYear := time.Now().UTC().AddDate(1, 0, 0)
	demoCoupons := []domain.Coupon{
		{Code: "SAVE10", Title: "Save 10%", Type: domain.CouponPercentage, Value: 10},
		{Code: "FREESHIP", Title: "Free shipping", Type: domain.CouponFreeShipping},
		{Code: "BIG50", Title: "50 off big orders", Type: domain.CouponFixedAmount, Value: 50, CurrencyCode: "USD", MinimumSubtotal: &minimum, ExpiresAt: &nextYear},
	}
	for _, c := range demoCoupons {
		if err := coupons.Upsert(ctx, c); err != nil {
			return fmt.Errorf("upsert coupon %s: %w", c.Code, err)
		}
	}

	return nil
}
