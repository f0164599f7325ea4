package domain

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/currency"
)

// Money is a fixed-point decimal amount with exactly two fraction digits,
// paired with an ISO 4217 currency code.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// FormatAmount rounds value to two decimal places using standard fixed-point
// rounding (half away from zero). NaN and Infinity inputs are a caller
// contract violation.
func FormatAmount(value float64) string {
	return strconv.FormatFloat(math.Round(value*100)/100, 'f', 2, 64)
}

// NewMoney builds a Money from a floating intermediate and a currency code.
func NewMoney(value float64, currencyCode string) Money {
	return Money{Amount: FormatAmount(value), CurrencyCode: currencyCode}
}

// Float parses the fixed-point amount back into a float64. Malformed amounts
// read as zero.
func (m Money) Float() float64 {
	v, err := strconv.ParseFloat(m.Amount, 64)
	if err != nil {
		return 0
	}
	return v
}

// ResolveCurrency returns the currency of the first line if any lines exist,
// else the currency of the first applied coupon's cached amount when one has
// been computed, else the fallback.
func ResolveCurrency(lines []CartItem, appliedCoupons []AppliedCoupon, fallback string) string {
	if len(lines) > 0 {
		return lines[0].Cost.TotalAmount.CurrencyCode
	}
	if len(appliedCoupons) > 0 && appliedCoupons[0].Amount.CurrencyCode != "" {
		return appliedCoupons[0].Amount.CurrencyCode
	}
	return fallback
}

// NormalizeCurrency upper-cases and validates an ISO 4217 currency code.
func NormalizeCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", err
	}
	return unit.String(), nil
}
