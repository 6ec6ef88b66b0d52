package checkout

import "errors"

var (
	// -- Authentication/Authorization --
	ErrNotAuthenticated = errors.New("login required to check out")

	// -- Validation --
	ErrEmptyCart            = errors.New("your cart is empty")
	ErrLocationRequired     = errors.New("please select a delivery location first")
	ErrIncompleteVariant    = errors.New("please select color and size for every item")
	ErrInvalidItem          = errors.New("cart item has no valid product")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")

	// -- State --
	ErrWrongStep      = errors.New("checkout is not at the payment step")
	ErrSubmitInFlight = errors.New("order is already being placed")

	// -- Backend --
	ErrSubmitFailed = errors.New("failed to place order")
)

const FailedOrderMessage = "Failed to place order. Please try again."
