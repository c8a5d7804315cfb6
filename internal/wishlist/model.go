package wishlist

import (
	"time"

	"storefront/internal/cart"

	"github.com/shopspring/decimal"
)

type Item struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	AddedAt   time.Time       `json:"addedAt"`
	Stock     *int            `json:"stock,omitempty"`
}

func (i Item) product() cart.Product {
	return cart.Product{
		ID:       i.ProductID,
		Name:     i.Name,
		Price:    i.Price,
		Stock:    i.Stock,
		ImageURL: i.ImageURL,
	}
}
