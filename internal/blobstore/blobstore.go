// Package blobstore is the key-value blob storage used for client-side state
// (cart, wishlist, addresses, session). Writes are last-write-wins.
package blobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// Keys of the persisted client state.
const (
	KeyCart            = "shopping_cart"
	KeyCartPricing     = "cart_pricing"
	KeyWishlist        = "shopping_wishlist"
	KeySavedAddresses  = "saved_addresses"
	KeyDefaultAddress  = "default_address"
	KeyCheckoutAddress = "checkout_address"
	KeySession         = "auth_session"
	KeyOrderHistory    = "order_history"
)

var (
	ErrNotFound = errors.New("blob not found")
	ErrEmptyKey = errors.New("blob key is empty")
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for missing keys.
	Delete(ctx context.Context, key string) error
	Close() error
}

// GetJSON decodes the blob under key into v. A missing key yields ErrNotFound;
// a blob that is not valid JSON yields a *DecodeError.
func GetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := s.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &DecodeError{Key: key, Err: err}
	}
	return nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, raw)
}

type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("malformed blob %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
