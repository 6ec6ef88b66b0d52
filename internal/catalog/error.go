package catalog

import "errors"

var (
	ErrInvalidProductID  = errors.New("invalid product id")
	ErrOptionUnavailable = errors.New("selected option not available")
	ErrMasterData        = errors.New("failed to load variant master data")
)
