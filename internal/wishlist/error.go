package wishlist

import "errors"

var (
	ErrNotInWishlist      = errors.New("product is not in the wishlist")
	ErrFailedLoadWishlist = errors.New("failed to load wishlist")
	ErrFailedSaveWishlist = errors.New("failed to save wishlist")
)
