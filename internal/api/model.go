package api

import (
	"time"

	"storefront/internal/checkout"

	"github.com/shopspring/decimal"
)

// Amount is a money value sent to the server as a JSON number with two decimals.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(2)), nil
}

// -- Promo --

type promoRequest struct {
	PromoCode string      `json:"promoCode,omitempty"`
	Items     []promoItem `json:"items"`
}

type promoItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type promoResponse struct {
	PromoCode     string          `json:"promoCode"`
	ItemsTotal    decimal.Decimal `json:"itemsTotal"`
	Discount      decimal.Decimal `json:"discount"`
	Shipping      decimal.Decimal `json:"shipping"`
	Taxes         decimal.Decimal `json:"taxes"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	AppliedPromos []string        `json:"appliedPromos"`
}

// -- Cart validation --

type CartValidationItem struct {
	ProductID  int64           `json:"product_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Available  bool            `json:"available"`
}

type CartValidation struct {
	Items    []CartValidationItem `json:"items"`
	Subtotal decimal.Decimal      `json:"subtotal"`
	Tax      decimal.Decimal      `json:"tax"`
	Shipping decimal.Decimal      `json:"shipping"`
	Total    decimal.Decimal      `json:"total"`
	Currency string               `json:"currency"`
}

type cartValidationRequest struct {
	Items      []promoItem `json:"items"`
	CouponCode string      `json:"coupon_code,omitempty"`
}

// StockReport is the outcome of a stock check. OK is false when at least one
// line cannot be fulfilled; Errors then holds one message per line.
type StockReport struct {
	OK      bool
	Message string
	Errors  []string
}

type stockResponse struct {
	Message string `json:"message"`
}

// -- Orders --

type OrderItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

type ShippingAddress struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

type OrderRequest struct {
	Items           []OrderItem     `json:"items"`
	ShippingAddress ShippingAddress `json:"shipping_address"`
	Subtotal        Amount          `json:"subtotal"`
	Shipping        Amount          `json:"shipping"`
	Tax             Amount          `json:"tax"`
	Total           Amount          `json:"total"`
	Discount        *Amount         `json:"discount,omitempty"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	PromoCode       string          `json:"promo_code,omitempty"`
	PromoDiscount   *Amount         `json:"promo_discount,omitempty"`
	AppliedPromos   []string        `json:"applied_promos,omitempty"`
}

type OrderResponse struct {
	OrderID            string          `json:"order_id"`
	ConfirmationNumber string          `json:"confirmation_number"`
	Status             string          `json:"status"`
	CreatedAt          time.Time       `json:"created_at"`
	EstimatedDelivery  time.Time       `json:"estimated_delivery"`
	Total              decimal.Decimal `json:"total"`
	Message            string          `json:"message"`
}

type OrderViewItem struct {
	ProductID int64           `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// OrderView is an order as returned by GET /me/orders/ and GET /orders/:id/.
type OrderView struct {
	OrderID            string           `json:"orderId"`
	ConfirmationNumber string           `json:"confirmationNumber"`
	Status             string           `json:"status"`
	CreatedAt          time.Time        `json:"createdAt"`
	EstimatedDelivery  time.Time        `json:"estimatedDelivery"`
	Items              []OrderViewItem  `json:"items"`
	ShippingAddress    checkout.Address `json:"shippingAddress"`
	Subtotal           decimal.Decimal  `json:"subtotal"`
	Tax                decimal.Decimal  `json:"tax"`
	Shipping           decimal.Decimal  `json:"shipping"`
	Discount           decimal.Decimal  `json:"discount"`
	Total              decimal.Decimal  `json:"total"`
	CouponCode         *string          `json:"couponCode"`
	PromoCode          *string          `json:"promoCode"`
	PromoDiscount      decimal.Decimal  `json:"promoDiscount"`
	AppliedPromos      []string         `json:"appliedPromos"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// -- Catalog --

type ProductPromo struct {
	Type  string          `json:"type"`
	Value decimal.Decimal `json:"value"`
	Label string          `json:"label"`
}

type ProductSummary struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	Price             decimal.Decimal `json:"price"`
	Stock             int             `json:"stock"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	AvgRating         float64         `json:"_avg"`
	Promo             *ProductPromo   `json:"promo"`
}

type ProductPage struct {
	Count    int              `json:"count"`
	Next     *string          `json:"next"`
	Previous *string          `json:"previous"`
	Results  []ProductSummary `json:"results"`
}

type ProductDetail struct {
	ID                int64           `json:"id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	CreatedAt         string          `json:"created_at"`
	AvgRating         float64         `json:"avg_rating"`
	RatingsCount      int             `json:"ratings_count"`
	Description       string          `json:"description"`
	Stock             int             `json:"stock"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	Category          string          `json:"category"`
	Promo             *ProductPromo   `json:"promo"`
}

type ProductRating struct {
	ProductID int64   `json:"product_id"`
	AvgRating float64 `json:"avg_rating"`
	Count     int     `json:"count"`
}

type Review struct {
	ID        string `json:"id,omitempty"`
	ProductID int64  `json:"productId"`
	UserID    string `json:"userId,omitempty"`
	Username  string `json:"username,omitempty"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// ListParams are the optional GET /products/ query parameters.
type ListParams struct {
	Page      int
	PageSize  int
	MinRating float64
	Ordering  string
}

// -- Account --

type Preferences struct {
	Newsletter       bool    `json:"newsletter"`
	DefaultMinRating float64 `json:"defaultMinRating,omitempty"`
}

type UserProfile struct {
	ID             string             `json:"id,omitempty"`
	Username       string             `json:"username"`
	Email          string             `json:"email,omitempty"`
	FullName       string             `json:"fullName,omitempty"`
	DefaultAddress *checkout.Address  `json:"defaultAddress,omitempty"`
	Addresses      []checkout.Address `json:"addresses,omitempty"`
	Preferences    *Preferences       `json:"preferences,omitempty"`
}

// ProfileUpdate is the PATCH /me/ body; nil fields are left unchanged.
type ProfileUpdate struct {
	FullName       *string            `json:"fullName,omitempty"`
	DefaultAddress *checkout.Address  `json:"defaultAddress,omitempty"`
	Addresses      []checkout.Address `json:"addresses,omitempty"`
	Preferences    *Preferences       `json:"preferences,omitempty"`
}

type LoginResponse struct {
	Access  string      `json:"access"`
	Refresh string      `json:"refresh"`
	User    UserProfile `json:"user"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AddressBook struct {
	Addresses      []checkout.Address `json:"addresses"`
	DefaultAddress *checkout.Address  `json:"defaultAddress"`
}

// -- Admin --

type TopProduct struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Sold      int             `json:"sold"`
	Revenue   decimal.Decimal `json:"revenue"`
}

type RecentOrder struct {
	ID        string          `json:"id"`
	User      string          `json:"user"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt string          `json:"createdAt"`
	Status    string          `json:"status"`
}

type AdminStats struct {
	TotalUsers        int             `json:"totalUsers"`
	TotalOrders       int             `json:"totalOrders"`
	TotalRevenue      decimal.Decimal `json:"totalRevenue"`
	TotalProductsSold int             `json:"totalProductsSold"`
	TopProducts       []TopProduct    `json:"topProducts"`
	RecentOrders      []RecentOrder   `json:"recentOrders"`
}
