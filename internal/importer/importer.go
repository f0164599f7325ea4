package importer

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"storefront-cart/internal/domain"
	"storefront-cart/internal/repository/catalog"
	couponrepo "storefront-cart/internal/repository/coupon"
)

// Kind names the shape of a CSV file.
type Kind string

const (
	KindProducts Kind = "products"
	KindCoupons  Kind = "coupons"
)

// DetectKind sniffs the header row to decide what a CSV file contains.
func DetectKind(r io.Reader) (Kind, error) {
	headers, err := csv.NewReader(bufio.NewReader(r)).Read()
	if err != nil {
		return "", fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["handle"]; ok {
		return KindProducts, nil
	}
	if _, ok := index["code"]; ok {
		return KindCoupons, nil
	}
	return "", fmt.Errorf("unrecognized csv headers: %v", headers)
}

// CSVImporter reads catalog or coupon CSV exports and upserts them.
type CSVImporter struct {
	reader  *csv.Reader
	catalog catalog.Writer
	coupons couponrepo.Writer
}

func NewCSVImporter(r io.Reader, cat catalog.Writer, coupons couponrepo.Writer) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:  csvr,
		catalog: cat,
		coupons: coupons,
	}
}

type productRow struct {
	Handle      string
	Title       string
	Description string
	ImageURL    string
	Variants    []variantRow
}

type variantRow struct {
	ID       string
	Title    string
	SKU      string
	Price    float64
	Currency string
	ObjectID int64
	Options  []domain.SelectedOption
}

// Run parses CSV rows and upserts them, detecting the kind from the header
// row. It returns the number of top-level records imported.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	if _, ok := index["handle"]; ok {
		return i.runProducts(ctx, index)
	}
	if _, ok := index["code"]; ok {
		return i.runCoupons(ctx, index)
	}
	return 0, fmt.Errorf("unrecognized csv headers: %v", headers)
}

// runProducts groups rows by handle: a row with a handle starts a product,
// and continuation rows with an empty handle add variants to it.
func (i *CSVImporter) runProducts(ctx context.Context, index map[string]int) (int, error) {
	var (
		current  *productRow
		imported int
	)

	flush := func() error {
		if current == nil {
			return nil
		}
		if err := i.saveProduct(ctx, current); err != nil {
			return err
		}
		imported++
		current = nil
		return nil
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		handle := pick(record, index, "handle")
		variant, hasVariant := parseVariant(record, index)

		if handle != "" {
			if err := flush(); err != nil {
				return imported, err
			}
			current = &productRow{
				Handle:      handle,
				Title:       pick(record, index, "title"),
				Description: pick(record, index, "description"),
				ImageURL:    pick(record, index, "image.url"),
			}
		}
		if current != nil && hasVariant {
			current.Variants = append(current.Variants, variant)
		}
	}

	if err := flush(); err != nil {
		return imported, err
	}
	return imported, nil
}

func (i *CSVImporter) saveProduct(ctx context.Context, row *productRow) error {
	if row.Title == "" || len(row.Variants) == 0 {
		return fmt.Errorf("invalid product row (missing title or variants) for handle %q", row.Handle)
	}

	stored, err := i.catalog.UpsertProduct(ctx, domain.Product{
		Handle:        row.Handle,
		Title:         row.Title,
		Description:   row.Description,
		FeaturedImage: domain.Image{URL: row.ImageURL, AltText: row.Title},
	})
	if err != nil {
		return fmt.Errorf("upsert product %q: %w", row.Handle, err)
	}

	for _, v := range row.Variants {
		currency := v.Currency
		if currency == "" {
			currency = "USD"
		}
		if _, err := i.catalog.UpsertVariant(ctx, domain.Variant{
			ID:              v.ID,
			ProductID:       stored.ID,
			Title:           v.Title,
			SKU:             v.SKU,
			Price:           domain.NewMoney(v.Price, currency),
			SelectedOptions: v.Options,
			BackendObjectID: v.ObjectID,
		}); err != nil {
			return fmt.Errorf("upsert variant %q: %w", v.ID, err)
		}
	}
	return nil
}

func (i *CSVImporter) runCoupons(ctx context.Context, index map[string]int) (int, error) {
	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		code := pick(record, index, "code")
		if code == "" {
			continue
		}
		coupon := domain.Coupon{
			Code:         code,
			Title:        pick(record, index, "title"),
			Type:         domain.CouponType(pick(record, index, "type")),
			CurrencyCode: pick(record, index, "currency"),
		}
		switch coupon.Type {
		case domain.CouponPercentage, domain.CouponFixedAmount, domain.CouponFreeShipping:
		default:
			return imported, fmt.Errorf("invalid coupon type %q for code %q", coupon.Type, code)
		}
		if v := pick(record, index, "value"); v != "" {
			coupon.Value, err = strconv.ParseFloat(v, 64)
			if err != nil {
				return imported, fmt.Errorf("invalid value for coupon %q: %w", code, err)
			}
		}
		if v := pick(record, index, "minimum_subtotal"); v != "" {
			minimum, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return imported, fmt.Errorf("invalid minimum_subtotal for coupon %q: %w", code, err)
			}
			coupon.MinimumSubtotal = &minimum
		}
		if coupon.StartsAt, err = parseTime(pick(record, index, "starts_at")); err != nil {
			return imported, fmt.Errorf("invalid starts_at for coupon %q: %w", code, err)
		}
		if coupon.ExpiresAt, err = parseTime(pick(record, index, "expires_at")); err != nil {
			return imported, fmt.Errorf("invalid expires_at for coupon %q: %w", code, err)
		}

		if err := i.coupons.Upsert(ctx, coupon); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, nil
}

func parseVariant(record []string, index map[string]int) (variantRow, bool) {
	id := pick(record, index, "variant.id")
	if id == "" {
		return variantRow{}, false
	}

	price, _ := strconv.ParseFloat(pick(record, index, "variant.price"), 64)
	objectID, _ := strconv.ParseInt(pick(record, index, "variant.objectId"), 10, 64)

	return variantRow{
		ID:       id,
		Title:    pick(record, index, "variant.title"),
		SKU:      pick(record, index, "variant.sku"),
		Price:    price,
		Currency: pick(record, index, "variant.currency"),
		ObjectID: objectID,
		Options:  parseOptions(pick(record, index, "variant.options")),
	}, true
}

// parseOptions decodes "Size=M;Color=Blue" pairs.
func parseOptions(raw string) []domain.SelectedOption {
	if raw == "" {
		return nil
	}
	var options []domain.SelectedOption
	for _, pair := range strings.Split(raw, ";") {
		name, value, ok := strings.Cut(pair, "=")
		name, value = strings.TrimSpace(name), strings.TrimSpace(value)
		if !ok || name == "" {
			continue
		}
		options = append(options, domain.SelectedOption{Name: name, Value: value})
	}
	return options
}

func parseTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
