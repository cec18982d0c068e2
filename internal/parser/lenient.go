package parser

import (
	"regexp"
	"strconv"
	"strings"

	"cafe-dashboard/internal/models"

	"github.com/shopspring/decimal"
)

var (
	intPrefixRe     = regexp.MustCompile(`^[+-]?\d+`)
	decimalPrefixRe = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)`)
)

// LenientInt reads the leading integer of s ("12 cups" -> 12, "2.9" -> 2).
// Anything without a leading integer is 0.
func LenientInt(s string) int {
	m := intPrefixRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return n
}

// LenientDecimal reads the leading decimal number of s; otherwise zero.
func LenientDecimal(s string) decimal.Decimal {
	m := decimalPrefixRe.FindString(strings.TrimSpace(s))
	if m == "" {
		return decimal.Zero
	}
	sign := ""
	if m[0] == '-' || m[0] == '+' {
		sign, m = strings.TrimPrefix(m[:1], "+"), m[1:]
	}
	if strings.HasPrefix(m, ".") {
		m = "0" + m
	}
	d, err := decimal.NewFromString(sign + m)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// LenientPaymentType maps unknown or empty values to Cash.
func LenientPaymentType(s string) models.PaymentType {
	s = strings.TrimSpace(s)
	switch {
	case strings.EqualFold(s, string(models.PaymentUPI)):
		return models.PaymentUPI
	default:
		return models.PaymentCash
	}
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

func nonNegativeDecimal(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

func trim(f flexString) string {
	return strings.TrimSpace(string(f))
}
