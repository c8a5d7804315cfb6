package pricing

import "github.com/shopspring/decimal"

type Kind string

const (
	KindNone   Kind = "none"
	KindLegacy Kind = "legacy"
	KindPromo  Kind = "promo"
)

// Mode is the active pricing mode of a cart. Exactly one is in effect at a time.
type Mode interface {
	Kind() Kind
	sealed()
}

type NoDiscount struct{}

func (NoDiscount) Kind() Kind { return KindNone }
func (NoDiscount) sealed()    {}

// LegacyPercent is a client-side coupon giving a flat percentage off the subtotal.
type LegacyPercent struct {
	Code    string
	Percent decimal.Decimal
}

func (LegacyPercent) Kind() Kind { return KindLegacy }
func (LegacyPercent) sealed()    {}

// ServerPromo carries the figures chosen by the promo service. They are never
// recomputed locally so the displayed total matches what will be charged.
type ServerPromo struct {
	Code       string
	ItemsTotal decimal.Decimal
	Discount   decimal.Decimal
	Shipping   decimal.Decimal
	Taxes      decimal.Decimal
	GrandTotal decimal.Decimal
	Labels     []string
}

func (ServerPromo) Kind() Kind { return KindPromo }
func (ServerPromo) sealed()    {}
