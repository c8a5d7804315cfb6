package address

import "errors"

var (
	// -- Validation & Input --
	ErrInvalidIndex = errors.New("no saved address at that position")

	// -- Storage --
	ErrFailedLoadAddresses = errors.New("failed to load saved addresses")
	ErrFailedSaveAddresses = errors.New("failed to save addresses")
)
