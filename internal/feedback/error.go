package feedback

import "errors"

var (
	// -- Authentication/Authorization --
	ErrUserRequired = errors.New("user required")

	// -- Validation & Input --
	ErrInvalidProductID = errors.New("invalid product id")
	ErrInvalidReviewID  = errors.New("invalid review id")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
	ErrCommentRequired  = errors.New("please write a review")
	ErrTooManyImages    = errors.New("too many review images")
)
