package domain

import "testing"

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{100, "100.00"},
		{19.99, "19.99"},
		{0.125, "0.13"},
		{-0.125, "-0.13"},
		{199.999999, "200.00"},
		{0.1 + 0.2, "0.30"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.in); got != tc.want {
			t.Fatalf("FormatAmount(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMoneyFloat(t *testing.T) {
	if got := (Money{Amount: "19.99"}).Float(); got != 19.99 {
		t.Fatalf("expected 19.99, got %v", got)
	}
	if got := (Money{Amount: "garbage"}).Float(); got != 0 {
		t.Fatalf("expected 0 for malformed amount, got %v", got)
	}
}

func TestResolveCurrency(t *testing.T) {
	lines := []CartItem{{Cost: LineCost{TotalAmount: Money{Amount: "10.00", CurrencyCode: "EUR"}}}}
	coupons := []AppliedCoupon{{Amount: Money{Amount: "1.00", CurrencyCode: "GBP"}}}

	if got := ResolveCurrency(lines, coupons, "USD"); got != "EUR" {
		t.Fatalf("expected first line currency, got %s", got)
	}
	if got := ResolveCurrency(nil, coupons, "USD"); got != "GBP" {
		t.Fatalf("expected first coupon currency, got %s", got)
	}
	if got := ResolveCurrency(nil, nil, "USD"); got != "USD" {
		t.Fatalf("expected fallback currency, got %s", got)
	}

	// A just-applied coupon has no cached amount yet.
	fresh := []AppliedCoupon{{}}
	if got := ResolveCurrency(nil, fresh, "USD"); got != "USD" {
		t.Fatalf("expected fallback for uncomputed coupon amount, got %s", got)
	}
}

func TestNormalizeCurrency(t *testing.T) {
	code, err := NormalizeCurrency(" usd ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "USD" {
		t.Fatalf("expected USD, got %s", code)
	}
	if _, err := NormalizeCurrency("nope"); err == nil {
		t.Fatalf("expected error for invalid code")
	}
}
