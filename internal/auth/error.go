package auth

import "errors"

var (
	// -- Authentication/Authorization --
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrSellerRequired   = errors.New("seller session required")

	// -- Validation & Input --
	ErrInvalidUser   = errors.New("invalid user session")
	ErrInvalidSeller = errors.New("invalid seller session")
)
