// Package pricing holds the checkout arithmetic shared by the cart page, the
// checkout page and the order service.
package pricing

import (
	"strings"

	"github.com/shopspring/decimal"

	"go-cosmetics/internal/models"
)

var (
	// FreeShippingThreshold is the subtotal from which shipping is waived.
	FreeShippingThreshold = decimal.NewFromInt(500000)
	// ShippingFee is the flat fee charged below the threshold.
	ShippingFee = decimal.NewFromInt(30000)
)

type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

// ShippingFor returns the fee for a non-empty order: zero at or above the
// free shipping threshold, the flat fee otherwise. A zero subtotal still
// ships, so it pays the fee.
func ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(FreeShippingThreshold) {
		return decimal.Zero
	}
	return ShippingFee
}

// Compute totals the lines. An order with no lines costs nothing.
func Compute(lines []Line) Totals {
	if len(lines) == 0 {
		return Totals{Subtotal: decimal.Zero, Shipping: decimal.Zero, Total: decimal.Zero}
	}
	sub := Subtotal(lines)
	ship := ShippingFor(sub)
	return Totals{Subtotal: sub, Shipping: ship, Total: sub.Add(ship)}
}

// FromCart prices cart items from their product snapshot. Items without a
// snapshot are skipped.
func FromCart(items []models.CartItem) []Line {
	lines := make([]Line, 0, len(items))
	for _, it := range items {
		if it.Product == nil {
			continue
		}
		lines = append(lines, Line{UnitPrice: it.Product.UnitPrice(), Quantity: it.Quantity})
	}
	return lines
}

// FormatVND renders an amount as "1.250.000đ".
func FormatVND(amount decimal.Decimal) string {
	digits := amount.Round(0).Abs().String()
	var b strings.Builder
	if amount.IsNegative() {
		b.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	b.WriteString("đ")
	return b.String()
}
