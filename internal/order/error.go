package order

import "errors"

var (
	// -- Authentication/Authorization --
	ErrUserRequired = errors.New("user required")

	// -- Validation & Input --
	ErrReasonRequired = errors.New("please select a reason for return")

	// -- Resource State --
	ErrOrderItemNotFound      = errors.New("order item not found")
	ErrAlreadyDelivered       = errors.New("order item already delivered")
	ErrNotReturnable          = errors.New("only delivered items can be returned")
	ErrReturnAlreadyRequested = errors.New("return already requested for this item")
)
