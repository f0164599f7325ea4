package snapshot

import (
	"encoding/base64"
	"testing"
	"time"

	"storefront-cart/internal/domain"
)

func sampleCart() domain.Cart {
	return domain.Cart{
		ID: "cart-1",
		Lines: []domain.CartItem{
			{
				ID:       "V1",
				Quantity: 2,
				Merchandise: domain.Merchandise{
					ID:    "V1",
					Title: "Blue / M",
					Product: domain.ProductRef{
						ID:     "P1",
						Handle: "shirt",
						Title:  "Shirt",
					},
				},
			},
			{
				ID:       "line-9",
				Quantity: 1,
				Merchandise: domain.Merchandise{
					ID: "V2",
				},
				Backend: &domain.BackendMeta{LineID: "line-9", ObjectID: 42},
			},
		},
		AppliedCoupons: []domain.AppliedCoupon{
			{Coupon: domain.Coupon{Code: "SAVE10"}},
		},
		UpdatedAt: time.Unix(1700000000, 0).UTC(),
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	snap := FromCart(sampleCart())
	token := Encode(snap)
	if token == "" {
		t.Fatalf("expected non-empty token")
	}

	decoded := Decode(token)
	if decoded == nil {
		t.Fatalf("expected snapshot, got nil")
	}
	if decoded.ID != "cart-1" {
		t.Fatalf("unexpected id %q", decoded.ID)
	}
	if len(decoded.Lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(decoded.Lines))
	}
	if decoded.Lines[0].MerchandiseID != "V1" || decoded.Lines[0].Quantity != 2 {
		t.Fatalf("unexpected first line %+v", decoded.Lines[0])
	}
	if decoded.Lines[0].LineID != "" {
		t.Fatalf("line id should be omitted when it equals the merchandise id")
	}
	if decoded.Lines[1].LineID != "line-9" {
		t.Fatalf("expected explicit line id, got %q", decoded.Lines[1].LineID)
	}
	if decoded.Lines[1].Backend == nil || decoded.Lines[1].Backend.ObjectID != 42 {
		t.Fatalf("backend metadata not preserved: %+v", decoded.Lines[1].Backend)
	}
	if len(decoded.Coupons) != 1 || decoded.Coupons[0] != "SAVE10" {
		t.Fatalf("unexpected coupons %v", decoded.Coupons)
	}
	if decoded.UpdatedAt != 1700000000 {
		t.Fatalf("unexpected timestamp %d", decoded.UpdatedAt)
	}
}

func TestEncodeDeterministic(t *testing.T) {
	snap := FromCart(sampleCart())
	if Encode(snap) != Encode(snap) {
		t.Fatalf("expected byte-identical encodings of the same snapshot")
	}
}

func TestDecodeNeverFails(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"not base64 at all!!",
		"dHJ1bmNhdGVk",
		base64.RawURLEncoding.EncodeToString([]byte("{invalid json")),
		base64.RawURLEncoding.EncodeToString([]byte(`"just a string"`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"ln":[],"ts":0}`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"id":"","ln":[]}`)),
		base64.RawURLEncoding.EncodeToString([]byte(`{"id":42}`)),
	}
	for _, in := range inputs {
		if snap := Decode(in); snap != nil {
			t.Fatalf("expected nil for %q, got %+v", in, snap)
		}
	}
}

func TestDecodeCorruptedToken(t *testing.T) {
	token := Encode(FromCart(sampleCart()))
	mid := len(token) / 2
	corrupted := token[:mid] + "!" + token[mid+1:]
	if snap := Decode(corrupted); snap != nil {
		t.Fatalf("expected nil for corrupted token, got %+v", snap)
	}
}

func TestDecodeDropsInvalidLines(t *testing.T) {
	raw := `{"id":"cart-1","ln":[` +
		`{"m":"V1","q":2},` +
		`{"m":"","q":1},` +
		`{"m":"V2","q":0},` +
		`{"m":"V3","q":-4},` +
		`{"m":"V4","q":1.5},` +
		`{"m":"V5","q":3}` +
		`],"cp":["SAVE10","","x"],"ts":12}`
	token := base64.RawURLEncoding.EncodeToString([]byte(raw))

	snap := Decode(token)
	if snap == nil {
		t.Fatalf("expected snapshot")
	}
	if len(snap.Lines) != 2 {
		t.Fatalf("expected invalid lines dropped, got %+v", snap.Lines)
	}
	if snap.Lines[0].MerchandiseID != "V1" || snap.Lines[1].MerchandiseID != "V5" {
		t.Fatalf("unexpected surviving lines %+v", snap.Lines)
	}
	if len(snap.Coupons) != 2 {
		t.Fatalf("expected empty coupon codes dropped, got %v", snap.Coupons)
	}
}
