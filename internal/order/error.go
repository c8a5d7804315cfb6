package order

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// -- Validation & Input --
	ErrCartEmpty          = errors.New("cannot place an order with an empty cart")
	ErrInvalidStockPolicy = errors.New("invalid stock validation policy")

	// -- Business Rules --
	ErrStockUnavailable = errors.New("insufficient stock")
	ErrNotCancellable   = errors.New("order can no longer be cancelled")

	// -- Resource State --
	ErrOrderNotFound = errors.New("order not found")

	// -- Transport --
	ErrSubmitFailed = errors.New("order submission failed")
)

// StockError carries one message per line that cannot be fulfilled.
type StockError struct {
	Messages []string
}

func (e *StockError) Error() string {
	return fmt.Sprintf("%s: %s", ErrStockUnavailable, strings.Join(e.Messages, " "))
}

func (e *StockError) Unwrap() error { return ErrStockUnavailable }
