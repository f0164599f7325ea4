package httpserver

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"storefront-cart/internal/domain"
	"storefront-cart/internal/repository/catalog"
	cartsvc "storefront-cart/internal/service/cart"
)

type stubCatalog struct {
	byMerchandise map[string]catalog.Resolution
}

func (s *stubCatalog) ResolveByMerchandiseID(_ context.Context, id string) (*catalog.Resolution, error) {
	if res, ok := s.byMerchandise[id]; ok {
		dup := res
		return &dup, nil
	}
	return nil, domain.ErrNotFound
}

func (s *stubCatalog) ResolveByBackendObjectID(_ context.Context, objectID int64) (*catalog.Resolution, error) {
	for _, res := range s.byMerchandise {
		if res.Variant.BackendObjectID == objectID {
			dup := res
			return &dup, nil
		}
	}
	return nil, domain.ErrNotFound
}

type stubCoupons struct {
	coupons map[string]domain.Coupon
}

func (s *stubCoupons) FindByCode(_ context.Context, code string) (*domain.Coupon, error) {
	for k, c := range s.coupons {
		if strings.EqualFold(k, code) {
			dup := c
			return &dup, nil
		}
	}
	return nil, domain.ErrNotFound
}

func minPtr(v float64) *float64 { return &v }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat := &stubCatalog{byMerchandise: map[string]catalog.Resolution{
		"V1": {
			Product: domain.Product{ID: "P1", Handle: "tee", Title: "Tee"},
			Variant: domain.Variant{
				ID:              "V1",
				ProductID:       "P1",
				Title:           "Tee / M",
				Price:           domain.NewMoney(100, "USD"),
				BackendObjectID: 11,
			},
		},
	}}
	coupons := &stubCoupons{coupons: map[string]domain.Coupon{
		"SAVE10": {Code: "SAVE10", Type: domain.CouponPercentage, Value: 10},
		"BIG50":  {Code: "BIG50", Type: domain.CouponFixedAmount, Value: 50, MinimumSubtotal: minPtr(500)},
	}}

	logger := log.New(io.Discard, "", 0)
	svc := cartsvc.New(cartsvc.Deps{Catalog: cat, Coupons: coupons, Logger: logger})

	router, err := buildRouter(logger, nil, Deps{
		CartSvc: svc,
		Cookies: CookieConfig{CartName: "cart", IDName: "cartId", MaxAge: 3600},
	})
	if err != nil {
		t.Fatalf("buildRouter: %v", err)
	}
	return router
}

// client carries the cart cookies across requests like a browser would.
type client struct {
	router  *gin.Engine
	cookies []*http.Cookie
}

func (cl *client) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cl.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	cl.router.ServeHTTP(rec, req)
	if set := rec.Result().Cookies(); len(set) > 0 {
		cl.cookies = set
	}
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) domain.Cart {
	t.Helper()
	var cart domain.Cart
	if err := json.Unmarshal(rec.Body.Bytes(), &cart); err != nil {
		t.Fatalf("decode cart: %v", err)
	}
	return cart
}

func TestCreateCartSetsCookies(t *testing.T) {
	cl := &client{router: newTestRouter(t)}

	rec := cl.do(t, http.MethodPost, "/cart", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	cart := decodeCart(t, rec)
	if cart.ID == "" {
		t.Fatalf("expected cart id, got %+v", cart)
	}

	names := map[string]bool{}
	for _, c := range cl.cookies {
		names[c.Name] = true
	}
	if !names["cart"] || !names["cartId"] {
		t.Fatalf("expected cart and cartId cookies, got %v", names)
	}
}

func TestGetCartWithoutCookie(t *testing.T) {
	cl := &client{router: newTestRouter(t)}
	rec := cl.do(t, http.MethodGet, "/cart", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestAddLinesAndReload(t *testing.T) {
	cl := &client{router: newTestRouter(t)}

	rec := cl.do(t, http.MethodPost, "/cart/lines", `{"lines":[{"merchandiseId":"V1","quantity":2}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	cart := decodeCart(t, rec)
	if cart.TotalQuantity != 2 || cart.Cost.TotalAmount.Amount != "200.00" {
		t.Fatalf("unexpected cart: %+v", cart.Cost)
	}

	rec = cl.do(t, http.MethodGet, "/cart", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on reload, got %d", rec.Code)
	}
	reloaded := decodeCart(t, rec)
	if reloaded.ID != cart.ID || reloaded.TotalQuantity != 2 {
		t.Fatalf("cart not persisted across requests: %+v", reloaded)
	}
}

func TestAddLinesBackendShape(t *testing.T) {
	cl := &client{router: newTestRouter(t)}

	rec := cl.do(t, http.MethodPost, "/cart/lines", `{"lines":[{"objectId":11,"quantity":1}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	cart := decodeCart(t, rec)
	if len(cart.Lines) != 1 || cart.Lines[0].Merchandise.ID != "V1" {
		t.Fatalf("backend shape did not resolve: %+v", cart.Lines)
	}
	if cart.Lines[0].Backend == nil || cart.Lines[0].Backend.ObjectID != 11 {
		t.Fatalf("backend metadata not stored: %+v", cart.Lines[0].Backend)
	}
}

func TestUpdateLinesToZeroRemoves(t *testing.T) {
	cl := &client{router: newTestRouter(t)}

	cl.do(t, http.MethodPost, "/cart/lines", `{"lines":[{"merchandiseId":"V1","quantity":2}]}`)
	rec := cl.do(t, http.MethodPut, "/cart/lines", `{"lines":[{"merchandiseId":"V1","quantity":0}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cart := decodeCart(t, rec)
	if len(cart.Lines) != 0 || cart.Cost.TotalAmount.Amount != "0.00" {
		t.Fatalf("expected emptied cart, got %+v", cart)
	}
}

func TestRemoveLines(t *testing.T) {
	cl := &client{router: newTestRouter(t)}

	cl.do(t, http.MethodPost, "/cart/lines", `{"lines":[{"merchandiseId":"V1","quantity":2}]}`)
	rec := cl.do(t, http.MethodDelete, "/cart/lines", `{"lineIds":["V1"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cart := decodeCart(t, rec)
	if len(cart.Lines) != 0 {
		t.Fatalf("expected line removed, got %+v", cart.Lines)
	}
}

func TestRemoveLinesStructuredEntries(t *testing.T) {
	cl := &client{router: newTestRouter(t)}

	cl.do(t, http.MethodPost, "/cart/lines", `{"lines":[{"merchandiseId":"V1","quantity":2}]}`)
	rec := cl.do(t, http.MethodDelete, "/cart/lines", `{"lines":[{"merchandiseId":"V1"}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cart := decodeCart(t, rec)
	if len(cart.Lines) != 0 {
		t.Fatalf("expected line removed via structured entry, got %+v", cart.Lines)
	}
}

func TestApplyCouponStatuses(t *testing.T) {
	cl := &client{router: newTestRouter(t)}
	cl.do(t, http.MethodPost, "/cart/lines", `{"lines":[{"merchandiseId":"V1","quantity":2}]}`)

	rec := cl.do(t, http.MethodPost, "/cart/coupons", `{"code":"NOPE"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown coupon: expected 404, got %d", rec.Code)
	}

	rec = cl.do(t, http.MethodPost, "/cart/coupons", `{"code":"BIG50"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("below minimum: expected 422, got %d", rec.Code)
	}

	rec = cl.do(t, http.MethodPost, "/cart/coupons", `{"code":"SAVE10"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid coupon: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	cart := decodeCart(t, rec)
	if cart.Cost.DiscountAmount.Amount != "20.00" || cart.Cost.TotalAmount.Amount != "180.00" {
		t.Fatalf("unexpected totals: %+v", cart.Cost)
	}
}

func TestRemoveCoupon(t *testing.T) {
	cl := &client{router: newTestRouter(t)}
	cl.do(t, http.MethodPost, "/cart/lines", `{"lines":[{"merchandiseId":"V1","quantity":2}]}`)
	cl.do(t, http.MethodPost, "/cart/coupons", `{"code":"SAVE10"}`)

	rec := cl.do(t, http.MethodDelete, "/cart/coupons/save10", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	cart := decodeCart(t, rec)
	if len(cart.AppliedCoupons) != 0 || cart.Cost.TotalAmount.Amount != "200.00" {
		t.Fatalf("expected coupon removed, got %+v", cart)
	}
}

func TestAddLinesBadJSON(t *testing.T) {
	cl := &client{router: newTestRouter(t)}
	rec := cl.do(t, http.MethodPost, "/cart/lines", `{"lines":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestApplyCouponMissingCode(t *testing.T) {
	cl := &client{router: newTestRouter(t)}
	rec := cl.do(t, http.MethodPost, "/cart/coupons", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHealthAndReadiness(t *testing.T) {
	cl := &client{router: newTestRouter(t)}

	rec := cl.do(t, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: expected 200, got %d", rec.Code)
	}

	// No pool configured in tests.
	rec = cl.do(t, http.MethodGet, "/readyz", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz: expected 503, got %d", rec.Code)
	}
}
