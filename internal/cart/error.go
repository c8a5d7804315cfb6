package cart

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidQuantity = errors.New("invalid cart quantity")
	ErrEmptyPromoCode  = errors.New("promo code is empty")

	// -- Business Rules --
	ErrInvalidCoupon = errors.New("invalid coupon code")

	// -- Resource State --
	ErrCartEmpty = errors.New("cart is empty")
	// ErrStalePromo means the cart changed while a promo request was in flight.
	ErrStalePromo = errors.New("promo response is stale")

	// -- Storage --
	ErrFailedPersistCart = errors.New("failed to persist cart")
	ErrFailedLoadCart    = errors.New("failed to load cart")
)

// ErrPromoRejected is matched (errors.Is) by resolver errors that carry a
// business-rule rejection: unknown code, minimum purchase not met.
var ErrPromoRejected = errors.New("promo code rejected")
