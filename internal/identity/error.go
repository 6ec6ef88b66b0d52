package identity

import "errors"

var (
	ErrInvalidProductID = errors.New("cannot derive product id")
	ErrInvalidOptionID  = errors.New("invalid option id")
)
