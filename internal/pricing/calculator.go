package pricing

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

type Line struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// Rules are the store-wide figures served by GET /config/.
type Rules struct {
	TaxRate               decimal.Decimal `json:"taxRate"`
	FreeShippingThreshold decimal.Decimal `json:"freeShippingThreshold"`
	StandardShippingFee   decimal.Decimal `json:"standardShippingFee"`
}

type Breakdown struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
	Taxes    decimal.Decimal
	Total    decimal.Decimal
	Count    int

	Kind            Kind
	CouponCode      string
	DiscountPercent decimal.Decimal
	PromoCode       string
	Labels          []string
}

// Round2 rounds half away from zero to two places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Subtotal is the exact sum of unit price times quantity.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}

func Count(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func percentOf(amount, percent decimal.Decimal) decimal.Decimal {
	return amount.Mul(percent).Div(hundred)
}

// DiscountedTotal applies a percentage discount and rounds the result.
func DiscountedTotal(lines []Line, percent decimal.Decimal) decimal.Decimal {
	subtotal := Subtotal(lines)
	return Round2(subtotal.Sub(percentOf(subtotal, percent)))
}

func PromoTotal(subtotal, discount, shipping, taxes decimal.Decimal) decimal.Decimal {
	return Round2(subtotal.Sub(discount).Add(shipping).Add(taxes))
}

// Compute derives the cart figures for the given mode. Shipping and taxes are
// only known under a server promo; other modes leave them at zero.
func Compute(lines []Line, mode Mode) Breakdown {
	subtotal := Subtotal(lines)
	b := Breakdown{
		Subtotal: subtotal,
		Discount: decimal.Zero,
		Shipping: decimal.Zero,
		Taxes:    decimal.Zero,
		Count:    Count(lines),
		Kind:     KindNone,
	}

	switch m := mode.(type) {
	case LegacyPercent:
		b.Kind = KindLegacy
		b.CouponCode = m.Code
		b.DiscountPercent = m.Percent
		b.Total = DiscountedTotal(lines, m.Percent)
		// derived from the rounded total so Subtotal - Discount == Total
		b.Discount = subtotal.Sub(b.Total)
	case ServerPromo:
		b.Kind = KindPromo
		b.PromoCode = m.Code
		b.Labels = append([]string(nil), m.Labels...)
		b.Discount = m.Discount
		b.Shipping = m.Shipping
		b.Taxes = m.Taxes
		b.Total = PromoTotal(subtotal, m.Discount, m.Shipping, m.Taxes)
	default:
		b.Total = Round2(subtotal)
	}
	return b
}

// Checkout produces the figures submitted with an order. Under a server promo
// they are the promo figures; otherwise tax and shipping come from the store
// rules, applied to the discounted amount.
func Checkout(lines []Line, mode Mode, rules Rules) Breakdown {
	b := Compute(lines, mode)
	if b.Kind == KindPromo {
		return b
	}

	base := b.Total
	b.Taxes = Round2(base.Mul(rules.TaxRate))
	if base.GreaterThan(rules.FreeShippingThreshold) {
		b.Shipping = decimal.Zero
	} else {
		b.Shipping = rules.StandardShippingFee
	}
	b.Total = Round2(base.Add(b.Taxes).Add(b.Shipping))
	return b
}
