package wishlist

import "errors"

var (
	// -- Authentication/Authorization --
	ErrLoginRequired = errors.New("login required to save wishlist items")

	// -- Validation & Input --
	ErrInvalidProductID = errors.New("invalid wishlist product id")

	// -- Persistence --
	ErrCorruptWishlist     = errors.New("stored wishlist is corrupt")
	ErrFailedLoadWishlist  = errors.New("failed to load wishlist")
	ErrFailedStoreWishlist = errors.New("failed to store wishlist")
	ErrFailedPending       = errors.New("failed to access pending wishlist item")
)
