package address

import "storefront/internal/checkout"

// Book is the shopper's saved addresses. Default is kept separately and is
// not necessarily one of Addresses.
type Book struct {
	Addresses []checkout.Address `json:"addresses"`
	Default   *checkout.Address  `json:"defaultAddress,omitempty"`
}

func (b Book) at(index int) (checkout.Address, error) {
	if index < 0 || index >= len(b.Addresses) {
		return checkout.Address{}, ErrInvalidIndex
	}
	return b.Addresses[index], nil
}

// IsDefault reports whether the address at index equals the default address.
func (b Book) IsDefault(index int) bool {
	addr, err := b.at(index)
	return err == nil && b.Default != nil && *b.Default == addr
}
