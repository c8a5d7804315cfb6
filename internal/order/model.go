package order

import (
	"strings"
	"time"

	"storefront/internal/checkout"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
)

// Cancellable reports whether an order in this status may still be cancelled.
func (s Status) Cancellable() bool {
	return s == StatusConfirmed || s == StatusProcessing
}

type Item struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Order is immutable once placed, apart from its status.
type Order struct {
	OrderID            string           `json:"orderId"`
	ConfirmationNumber string           `json:"confirmationNumber"`
	Items              []Item           `json:"items"`
	ShippingAddress    checkout.Address `json:"shippingAddress"`

	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`

	Discount      decimal.Decimal `json:"discount"`
	CouponCode    string          `json:"couponCode,omitempty"`
	PromoCode     string          `json:"promoCode,omitempty"`
	PromoDiscount decimal.Decimal `json:"promoDiscount"`
	AppliedPromos []string        `json:"appliedPromos,omitempty"`

	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
	EstimatedDelivery time.Time `json:"estimatedDelivery"`
	// Message is the server's confirmation text; not persisted.
	Message string `json:"-"`
}

// StockPolicy decides when lines are checked against the stock service
// before an order is submitted.
type StockPolicy string

const (
	StockAlways StockPolicy = "always"
	// StockLegacyOnly skips the check while a server promo prices the cart.
	StockLegacyOnly StockPolicy = "legacy-only"
	StockNever      StockPolicy = "never"
)

func ParseStockPolicy(s string) (StockPolicy, error) {
	switch p := StockPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case StockAlways, StockLegacyOnly, StockNever:
		return p, nil
	case "":
		return StockAlways, nil
	default:
		return "", ErrInvalidStockPolicy
	}
}
