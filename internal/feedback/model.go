package feedback

import "github.com/shopspring/decimal"

const (
	MinRating = 1
	MaxRating = 5
	MaxImages = 5
)

type Review struct {
	ID        int64    `json:"id"`
	UserID    int64    `json:"user_id"`
	UserName  string   `json:"user_name,omitempty"`
	Rating    int      `json:"rating"`
	Comment   string   `json:"comment"`
	Images    []string `json:"images"`
	CreatedAt string   `json:"created_at"`
	// Own marks reviews written by the viewer; only those can be deleted.
	Own bool `json:"own"`
}

type Reviews struct {
	ProductID            int64           `json:"product_id"`
	Reviews              []Review        `json:"reviews"`
	AverageRating        decimal.Decimal `json:"average_rating"`
	AverageRatingDisplay string          `json:"average_rating_display"`
	ReviewCount          int             `json:"review_count"`
}

type ReviewInput struct {
	UserID    int64
	ProductID int64
	Rating    int
	Comment   string
	Images    []string
}
