package cart

import "errors"

var (
	// -- Authentication/Authorization --
	ErrUserNotAuthenticated = errors.New("user not authenticated")

	// -- Validation & Input --
	ErrInvalidProductID = errors.New("invalid cart product id")
	ErrInvalidPrice     = errors.New("invalid cart item price")

	// -- Persistence --
	ErrCorruptCart     = errors.New("stored cart is corrupt")
	ErrFailedLoadCart  = errors.New("failed to load cart")
	ErrFailedStoreCart = errors.New("failed to store cart")
)
