package cart

import (
	"storefront/internal/pricing"

	"github.com/shopspring/decimal"
)

// LineItem is one product entry in the cart. Quantity is always >= 1 while stored.
type LineItem struct {
	ProductID  int64           `json:"productId"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"price"`
	Quantity   int             `json:"quantity"`
	StockLimit *int            `json:"stock,omitempty"`
	ImageURL   string          `json:"imageUrl,omitempty"`
}

// Product is what a caller adds to the cart.
type Product struct {
	ID       int64
	Name     string
	Price    decimal.Decimal
	Stock    *int
	ImageURL string
}

// PromoItem is the line shape the promo service understands.
type PromoItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// PromoResult is the pricing decision returned by the promo service.
type PromoResult struct {
	Code       string
	ItemsTotal decimal.Decimal
	Discount   decimal.Decimal
	Shipping   decimal.Decimal
	Taxes      decimal.Decimal
	GrandTotal decimal.Decimal
	Labels     []string
}

func (r PromoResult) toMode(code string) pricing.ServerPromo {
	if r.Code != "" {
		code = r.Code
	}
	return pricing.ServerPromo{
		Code:       code,
		ItemsTotal: r.ItemsTotal,
		Discount:   r.Discount,
		Shipping:   r.Shipping,
		Taxes:      r.Taxes,
		GrandTotal: r.GrandTotal,
		Labels:     append([]string(nil), r.Labels...),
	}
}

// Snapshot is an immutable view of the cart at sequence Seq.
type Snapshot struct {
	Items []LineItem
	Mode  pricing.Mode
	Seq   uint64
	// PromoStale is set when the server promo was computed for an older cart.
	PromoStale bool
	// ManualPromo is the code the shopper typed, if any.
	ManualPromo string

	Breakdown pricing.Breakdown
}

func (s Snapshot) IsEmpty() bool {
	return len(s.Items) == 0
}

func (s Snapshot) Item(productID int64) (LineItem, bool) {
	for _, it := range s.Items {
		if it.ProductID == productID {
			return it, true
		}
	}
	return LineItem{}, false
}
